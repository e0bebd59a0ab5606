package snapshot

import (
	"context"
	"image"
	"image/draw"

	"github.com/jamesrr39/go-tracing"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/ownmap-snapshot/ownmap"
	"github.com/jamesrr39/ownmap-snapshot/ownmaprenderer"
	"github.com/jamesrr39/ownmap-snapshot/tilefetch"
	"github.com/paulmach/orb"
)

// Snapshotter renders geometries on top of map tiles. It is safe for concurrent use.
type Snapshotter struct {
	logger       *logpkg.Logger
	viewport     ownmap.Viewport
	zoom         ZoomPolicy
	orchestrator *tilefetch.Orchestrator
	renderer     *ownmaprenderer.Renderer
}

// Result is a snapshot image, along with how it was made.
type Result struct {
	Image  *image.RGBA
	Zoom   uint8
	Center orb.Point
	Tiles  []TilePlacement
}

func (s *Snapshotter) Viewport() ownmap.Viewport {
	return s.viewport
}

func (s *Snapshotter) ZoomPolicy() ZoomPolicy {
	return s.zoom
}

func (s *Snapshotter) Close() {
	s.orchestrator.Close()
}

func (s *Snapshotter) Snapshot(ctx context.Context, drawables ...ownmaprenderer.Drawable) (*image.RGBA, errorsx.Error) {
	result, err := s.SnapshotWithResult(ctx, drawables...)
	if err != nil {
		return nil, err
	}

	return result.Image, nil
}

// SnapshotGeometries draws plain geometries with the ambient and default styles.
func (s *Snapshotter) SnapshotGeometries(ctx context.Context, geometries ...orb.Geometry) (*image.RGBA, errorsx.Error) {
	drawables := make([]ownmaprenderer.Drawable, len(geometries))
	for i, geometry := range geometries {
		drawable, err := ownmaprenderer.FromGeometry(geometry)
		if err != nil {
			return nil, errorsx.Wrap(err, "geometryIndex", i)
		}
		drawables[i] = drawable
	}

	return s.Snapshot(ctx, drawables...)
}

// SnapshotWithResult centres the canvas on the centroid of the drawables, picks the zoom level,
// fetches and assembles the tiles, then draws the drawables over them in order.
func (s *Snapshotter) SnapshotWithResult(ctx context.Context, drawables ...ownmaprenderer.Drawable) (*Result, errorsx.Error) {
	geometries := ownmaprenderer.Geometries(drawables)

	span := startSpan(ctx, "select zoom")
	center, zoomLevel, err := s.selectCenterAndZoom(geometries)
	endSpan(ctx, span)
	if err != nil {
		return nil, err
	}

	renderContext := ownmap.NewRenderContext(s.viewport, zoomLevel, center)
	plan := PlanTiles(s.viewport, zoomLevel, renderContext.CenterWorld)

	s.logger.Debug("snapshot of %d drawables: center %v, zoom %d, %d tiles", len(drawables), center, zoomLevel, len(plan.Placements))

	span = startSpan(ctx, "fetch tiles")
	tiles, err := s.orchestrator.FetchTiles(ctx, plan.Coords(), zoomLevel)
	endSpan(ctx, span)
	if err != nil {
		return nil, err
	}

	base := assembleMosaic(s.viewport, plan, tiles)

	span = startSpan(ctx, "draw geometries")
	overlay, err := s.drawOverlay(base.Bounds(), drawables, renderContext)
	endSpan(ctx, span)
	if err != nil {
		return nil, err
	}

	span = startSpan(ctx, "composite")
	draw.Draw(base, base.Bounds(), overlay, image.Point{}, draw.Over)
	endSpan(ctx, span)

	return &Result{
		Image:  base,
		Zoom:   zoomLevel,
		Center: center,
		Tiles:  plan.Placements,
	}, nil
}

func (s *Snapshotter) selectCenterAndZoom(geometries []orb.Geometry) (orb.Point, uint8, errorsx.Error) {
	center, err := ownmap.CentroidOf(geometries)
	if err != nil {
		return orb.Point{}, 0, err
	}

	zoomLevel, err := s.selectZoom(geometries)
	if err != nil {
		return orb.Point{}, 0, err
	}

	return center, zoomLevel, nil
}

// drawOverlay draws the drawables in order onto a transparent layer.
func (s *Snapshotter) drawOverlay(bounds image.Rectangle, drawables []ownmaprenderer.Drawable, renderContext ownmap.RenderContext) (*image.RGBA, errorsx.Error) {
	overlay := image.NewRGBA(bounds)
	canvas := ownmaprenderer.NewCanvas(overlay)
	for i, drawable := range drawables {
		err := s.renderer.Draw(canvas, drawable, renderContext.WithIndex(i))
		if err != nil {
			return nil, errorsx.Wrap(err, "drawableIndex", i)
		}
	}

	return overlay, nil
}

func (s *Snapshotter) selectZoom(geometries []orb.Geometry) (uint8, errorsx.Error) {
	if !s.zoom.IsAutomatic() {
		return s.zoom.Level(), nil
	}

	bound, err := ownmap.BoundOf(geometries)
	if err != nil {
		return 0, err
	}

	return SelectZoom(bound, s.zoom.Level(), s.viewport), nil
}

// spans are only recorded when the context carries both a tracer and a trace
func tracingEnabled(ctx context.Context) bool {
	return ctx.Value(tracing.TracerCtxKey) != nil && ctx.Value(tracing.TraceCtxKey) != nil
}

func startSpan(ctx context.Context, name string) *tracing.Span {
	if !tracingEnabled(ctx) {
		return nil
	}
	return tracing.StartSpan(ctx, name)
}

func endSpan(ctx context.Context, span *tracing.Span) {
	if span == nil {
		return
	}
	span.End(ctx)
}
