package ownmaprenderer

import (
	"image"
	"math"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/ownmap-snapshot/ownmap"
	"github.com/jamesrr39/ownmap-snapshot/styling"
	"github.com/paulmach/orb"
)

// Renderer draws styled geometries. Each geometry's style is resolved as
// defaults, then the ambient styles, then the geometry's own style, and finally its effect.
type Renderer struct {
	styles styling.Styles
}

func NewRenderer(ambient styling.Styles) *Renderer {
	return &Renderer{
		styles: styling.Merge(styling.DefaultStyles(), ambient),
	}
}

// Draw draws a drawable. The children of multi geometries and collections are drawn with their
// position in the parent as the render context index.
func (r *Renderer) Draw(canvas *Canvas, drawable Drawable, renderContext ownmap.RenderContext) errorsx.Error {
	switch d := drawable.(type) {
	case StyledPoint:
		return r.drawPoint(canvas, d.Point, styling.Merge(r.styles.Point, d.Style), renderContext)
	case StyledMultiPoint:
		style := styling.Merge(r.styles.Point, d.Style)
		for i, point := range d.MultiPoint {
			err := r.drawPoint(canvas, point, style, renderContext.WithIndex(i))
			if err != nil {
				return err
			}
		}
		return nil
	case StyledLine:
		return r.drawLineString(canvas, d.Line.ToLineString(), styling.Merge(r.styles.Line, d.Style), renderContext)
	case StyledLineString:
		return r.drawLineString(canvas, d.LineString, styling.Merge(r.styles.Line, d.Style), renderContext)
	case StyledMultiLineString:
		style := styling.Merge(r.styles.Line, d.Style)
		for i, lineString := range d.MultiLineString {
			err := r.drawLineString(canvas, lineString, style, renderContext.WithIndex(i))
			if err != nil {
				return err
			}
		}
		return nil
	case StyledPolygon:
		return r.drawPolygon(canvas, d.Polygon, styling.Merge(r.styles.Polygon, d.Style), renderContext)
	case StyledMultiPolygon:
		style := styling.Merge(r.styles.Polygon, d.Style)
		for i, polygon := range d.MultiPolygon {
			err := r.drawPolygon(canvas, polygon, style, renderContext.WithIndex(i))
			if err != nil {
				return err
			}
		}
		return nil
	case StyledRect:
		return r.drawPolygon(canvas, ownmap.RectToPolygon(d.Rect), styling.Merge(r.styles.Polygon, d.Style), renderContext)
	case StyledTriangle:
		return r.drawPolygon(canvas, d.Triangle.ToPolygon(), styling.Merge(r.styles.Polygon, d.Style), renderContext)
	case Collection:
		for i, child := range d {
			err := r.Draw(canvas, child, renderContext.WithIndex(i))
			if err != nil {
				return err
			}
		}
		return nil
	default:
		return errorsx.Errorf("didn't understand drawable %#v", drawable)
	}
}

// drawPoint draws a point with an already resolved style.
func (r *Renderer) drawPoint(canvas *Canvas, point orb.Point, style styling.PointStyle, renderContext ownmap.RenderContext) errorsx.Error {
	if !isFinitePoint(point) {
		return errorsx.Wrap(ownmap.ErrPathConstruction, "point", point)
	}

	if style.Effect != nil {
		style = style.Effect(style, point, renderContext)
	}

	pixel := renderContext.ToPixel(point)
	antiAlias := style.IsAntiAlias()

	switch representation := style.Representation.(type) {
	case styling.SVG:
		err := canvas.DrawSVG(representation.Markup, pixel.Sub(representation.Offset), antiAlias)
		if err != nil {
			return errorsx.Wrap(err, "point", point)
		}
	default:
		radius := styling.DefaultPointStyle().Representation.(styling.Circle).Radius
		if circle, ok := representation.(styling.Circle); ok {
			radius = circle.Radius
		}

		canvas.FillCircle(pixel, radius, style.ForegroundOrDefault(), antiAlias)

		border, hasBorder := style.BorderWidth()
		if hasBorder {
			canvas.StrokeCircle(pixel, radius, style.BackgroundOrDefault(), border, antiAlias)
		}
	}

	if style.Label != nil {
		err := canvas.DrawLabel(*style.Label, pixel.Sub(style.Label.PointOffset()))
		if err != nil {
			return errorsx.Wrap(err, "point", point)
		}
	}

	return nil
}

func (r *Renderer) drawLineString(canvas *Canvas, lineString orb.LineString, style styling.LineStyle, renderContext ownmap.RenderContext) errorsx.Error {
	if style.Effect != nil {
		style = style.Effect(style, lineString, renderContext)
	}

	pixels, err := toPixelPath(lineString, renderContext)
	if err != nil {
		return errorsx.Wrap(err, "vertices", len(lineString))
	}

	strokeOutline(canvas, pixels, false, style)

	for index, point := range lineString {
		err := r.drawPoint(canvas, point, style.PointStyle, renderContext.WithIndex(index))
		if err != nil {
			return err
		}
	}

	return nil
}

// drawPolygon draws the exterior ring. Holes are not drawn.
func (r *Renderer) drawPolygon(canvas *Canvas, polygon orb.Polygon, style styling.PolygonStyle, renderContext ownmap.RenderContext) errorsx.Error {
	if style.Effect != nil {
		style = style.Effect(style, polygon, renderContext)
	}

	if len(polygon) == 0 {
		return errorsx.Wrap(ownmap.ErrPathConstruction, "reason", "polygon has no exterior ring")
	}

	exterior := openRing(polygon[0])
	pixels, err := toPixelPath(orb.LineString(exterior), renderContext)
	if err != nil {
		return errorsx.Wrap(err, "vertices", len(exterior))
	}

	antiAlias := style.IsAntiAlias()
	canvas.FillPath(pixels, style.ForegroundOrDefault(), antiAlias)

	border, hasBorder := style.BorderWidth()
	if hasBorder {
		canvas.StrokePath(pixels, true, style.BackgroundOrDefault(), border, antiAlias)
	}

	strokeOutline(canvas, pixels, true, style.LineStyle)

	for index, point := range exterior {
		err := r.drawPoint(canvas, point, style.PointStyle, renderContext.WithIndex(index))
		if err != nil {
			return err
		}
	}

	return nil
}

// strokeOutline strokes the path twice: the wider background border first, then the foreground line on top.
func strokeOutline(canvas *Canvas, pixels []image.Point, closed bool, style styling.LineStyle) {
	antiAlias := style.IsAntiAlias()

	border, hasBorder := style.BorderWidth()
	if hasBorder {
		canvas.StrokePath(pixels, closed, style.BackgroundOrDefault(), border, antiAlias)
	}

	if style.Width > 0 {
		canvas.StrokePath(pixels, closed, style.ForegroundOrDefault(), style.Width, antiAlias)
	}
}

func toPixelPath(lineString orb.LineString, renderContext ownmap.RenderContext) ([]image.Point, errorsx.Error) {
	var pixels []image.Point
	for _, point := range lineString {
		if !isFinitePoint(point) {
			continue
		}
		pixels = append(pixels, renderContext.ToPixel(point))
	}

	if len(pixels) < 2 {
		return nil, errorsx.Wrap(ownmap.ErrPathConstruction, "drawablePoints", len(pixels))
	}

	return pixels, nil
}

// openRing drops the closing point of a ring, if it repeats the first.
func openRing(ring orb.Ring) orb.Ring {
	if len(ring) > 1 && ring[0].Equal(ring[len(ring)-1]) {
		return ring[:len(ring)-1]
	}
	return ring
}

func isFinitePoint(point orb.Point) bool {
	for _, v := range point {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
