package snapshot

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"io"
	"testing"

	"github.com/jamesrr39/go-tracing"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/ownmap-snapshot/ownmap"
	"github.com/jamesrr39/ownmap-snapshot/ownmaprenderer"
	"github.com/jamesrr39/ownmap-snapshot/styling"
	"github.com/jamesrr39/ownmap-snapshot/tilefetch"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = logpkg.NewLogger(io.Discard, logpkg.LogLevelError)

// tileColor encodes a (wrapped) tile coordinate as a colour.
func tileColor(x, y int) color.RGBA {
	return color.RGBA{uint8(10 + x), uint8(10 + y), 0, 255}
}

func solidTileSource(tileSize int) tilefetch.Source {
	return tilefetch.Individual(tilefetch.IndividualFetcherFunc(func(x, y int, zoomLevel uint8) (image.Image, error) {
		img := image.NewRGBA(image.Rect(0, 0, tileSize, tileSize))
		c := tileColor(x, y)
		for i := 0; i < len(img.Pix); i += 4 {
			img.Pix[i] = c.R
			img.Pix[i+1] = c.G
			img.Pix[i+2] = c.B
			img.Pix[i+3] = c.A
		}
		return img, nil
	}))
}

func newTestSnapshotter(t *testing.T, config Config) *Snapshotter {
	config.Logger = testLogger
	if config.Source.IsZero() {
		config.Source = solidTileSource(256)
	}

	snapshotter, err := config.Finalize()
	require.NoError(t, err)
	t.Cleanup(snapshotter.Close)

	return snapshotter
}

func TestConfig_Finalize(t *testing.T) {
	t.Run("missing source", func(t *testing.T) {
		_, err := Config{}.Finalize()
		require.Error(t, err)

		configErr, ok := errorsx.Cause(err).(*ownmap.ConfigError)
		require.True(t, ok)
		assert.Equal(t, []string{"Source"}, configErr.MissingFields)
	})

	t.Run("defaults", func(t *testing.T) {
		snapshotter := newTestSnapshotter(t, Config{})

		assert.Equal(t, ownmap.Viewport{TileSize: 256, Width: 800, Height: 600}, snapshotter.Viewport())
		assert.Equal(t, Automatic(17), snapshotter.zoom)
	})

	t.Run("zoom level too deep", func(t *testing.T) {
		_, err := Config{Source: solidTileSource(256), Zoom: Constant(MaxZoomLevel + 1)}.Finalize()
		require.Error(t, err)
	})
}

func TestSnapshotter_SnapshotWithResult(t *testing.T) {
	snapshotter := newTestSnapshotter(t, Config{Zoom: Constant(2)})

	result, err := snapshotter.SnapshotWithResult(context.Background(), ownmaprenderer.StyledPoint{
		Point: orb.Point{0, 0},
		Style: styling.PointStyle{ColorOptions: styling.ColorOptions{Foreground: color.RGBA{255, 0, 0, 255}}},
	})
	require.NoError(t, err)

	assert.Equal(t, uint8(2), result.Zoom)
	assert.Equal(t, orb.Point{0, 0}, result.Center)
	assert.Len(t, result.Tiles, 25)
	assert.Equal(t, image.Rect(0, 0, 800, 600), result.Image.Bounds())

	// the point is drawn over the tiles at the centre of the canvas
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, result.Image.RGBAAt(400, 300))

	tests := []struct {
		pixel    image.Point
		expected color.RGBA
	}{
		{image.Pt(0, 0), tileColor(0, 0)},
		{image.Pt(143, 43), tileColor(0, 0)},
		{image.Pt(144, 44), tileColor(1, 1)},
		{image.Pt(380, 280), tileColor(1, 1)},
		{image.Pt(500, 100), tileColor(2, 1)},
		{image.Pt(799, 599), tileColor(3, 3)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, result.Image.RGBAAt(tt.pixel.X, tt.pixel.Y), "pixel %s", tt.pixel)
	}
}

func TestSnapshotter_Snapshot_automaticZoom(t *testing.T) {
	snapshotter := newTestSnapshotter(t, Config{})

	result, err := snapshotter.SnapshotWithResult(
		context.Background(),
		ownmaprenderer.StyledPoint{Point: orb.Point{-20, 0}},
		ownmaprenderer.StyledPoint{Point: orb.Point{20, 0}},
	)
	require.NoError(t, err)

	assert.Equal(t, uint8(4), result.Zoom)
	assert.InDelta(t, 0, result.Center.Lon(), 1e-9)
	assert.InDelta(t, 0, result.Center.Lat(), 1e-9)
}

func TestSnapshotter_SnapshotWithResult_awayFromOrigin(t *testing.T) {
	red := color.RGBA{255, 0, 0, 255}
	redPoints := styling.PointStyle{ColorOptions: styling.ColorOptions{Foreground: red}}

	t.Run("single point is drawn at the canvas centre", func(t *testing.T) {
		snapshotter := newTestSnapshotter(t, Config{Zoom: Constant(10)})

		result, err := snapshotter.SnapshotWithResult(context.Background(), ownmaprenderer.StyledPoint{
			Point: orb.Point{10, 50},
			Style: redPoints,
		})
		require.NoError(t, err)

		assert.Equal(t, orb.Point{10, 50}, result.Center)
		assert.Equal(t, red, result.Image.RGBAAt(400, 300))
	})

	t.Run("line is centred on its midpoint", func(t *testing.T) {
		snapshotter := newTestSnapshotter(t, Config{Zoom: Constant(10)})

		result, err := snapshotter.SnapshotWithResult(context.Background(), ownmaprenderer.StyledLineString{
			LineString: orb.LineString{{10, 50}, {12, 50}},
		})
		require.NoError(t, err)

		assert.InDelta(t, 11, result.Center.Lon(), 1e-9)
		assert.InDelta(t, 50, result.Center.Lat(), 1e-9)
		assert.Equal(t, color.RGBA{196, 196, 196, 255}, result.Image.RGBAAt(400, 300))
	})

	t.Run("multi point with automatic zoom", func(t *testing.T) {
		snapshotter := newTestSnapshotter(t, Config{})
		points := orb.MultiPoint{{10, 50}, {10.1, 50.05}}

		result, err := snapshotter.SnapshotWithResult(context.Background(), ownmaprenderer.StyledMultiPoint{
			MultiPoint: points,
			Style:      redPoints,
		})
		require.NoError(t, err)

		assert.InDelta(t, 10.05, result.Center.Lon(), 1e-9)
		assert.InDelta(t, 50.025, result.Center.Lat(), 1e-9)
		assert.Less(t, result.Zoom, uint8(17))

		for _, point := range points {
			pixel := ownmap.GeoToPixel(snapshotter.Viewport(), result.Zoom, result.Center, point)
			require.True(t, pixel.In(result.Image.Bounds()), "point %v at pixel %v", point, pixel)
			assert.Equal(t, red, result.Image.RGBAAt(pixel.X, pixel.Y), "point %v", point)
		}
	})
}

func TestSnapshotter_SnapshotGeometries(t *testing.T) {
	snapshotter := newTestSnapshotter(t, Config{Width: 200, Height: 100, Zoom: Constant(2)})

	img, err := snapshotter.SnapshotGeometries(context.Background(), orb.LineString{{-20, 0}, {20, 0}})
	require.NoError(t, err)

	// default line colour along the line, tiles elsewhere
	assert.Equal(t, color.RGBA{196, 196, 196, 255}, img.RGBAAt(75, 50))
	assert.Equal(t, tileColor(1, 1), img.RGBAAt(75, 10))

	_, err = snapshotter.SnapshotGeometries(context.Background(), orb.LineString{{0, 0}, {1, 1}}, nil)
	require.Error(t, err)
}

func TestSnapshotter_Snapshot_errors(t *testing.T) {
	smallTiles := solidTileSource(128)

	tests := []struct {
		name      string
		config    Config
		drawables []ownmaprenderer.Drawable
		check     func(t *testing.T, err error)
	}{
		{
			name:   "no geometries",
			config: Config{},
			check: func(t *testing.T, err error) {
				assert.Equal(t, ownmap.ErrCentroidCalculation, err)
			},
		}, {
			name:   "wrong tile size",
			config: Config{Source: smallTiles, Zoom: Constant(3)},
			drawables: []ownmaprenderer.Drawable{
				ownmaprenderer.StyledPoint{Point: orb.Point{10, 10}},
			},
			check: func(t *testing.T, err error) {
				tileSizeErr, ok := err.(*ownmap.IncorrectTileSizeError)
				require.True(t, ok)
				assert.Equal(t, 256, tileSizeErr.Expected)
				assert.Equal(t, 128, tileSizeErr.Received)
			},
		}, {
			name:   "polygon without a ring",
			config: Config{Zoom: Constant(3)},
			drawables: []ownmaprenderer.Drawable{
				ownmaprenderer.StyledPoint{Point: orb.Point{10, 10}},
				ownmaprenderer.StyledPolygon{Polygon: orb.Polygon{}},
			},
			check: func(t *testing.T, err error) {
				assert.Equal(t, ownmap.ErrPathConstruction, err)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshotter := newTestSnapshotter(t, tt.config)

			img, err := snapshotter.Snapshot(context.Background(), tt.drawables...)
			require.Error(t, err)
			assert.Nil(t, img)

			tt.check(t, errorsx.Cause(err))
		})
	}
}

func TestSnapshotter_Snapshot_tracing(t *testing.T) {
	snapshotter := newTestSnapshotter(t, Config{Zoom: Constant(1)})

	tracer := tracing.NewTracer(bytes.NewBuffer(nil))
	trace := tracing.StartTrace(tracer, "test")

	ctx := context.WithValue(context.Background(), tracing.TracerCtxKey, tracer)
	ctx = context.WithValue(ctx, tracing.TraceCtxKey, trace)

	_, err := snapshotter.Snapshot(ctx, ownmaprenderer.StyledPoint{Point: orb.Point{1, 1}})
	require.NoError(t, err)

	var spanNames []string
	for _, span := range trace.Spans {
		spanNames = append(spanNames, span.Name)
	}
	assert.Equal(t, []string{"select zoom", "fetch tiles", "draw geometries", "composite"}, spanNames)
}

func TestSnapshotter_Snapshot_tracingOnError(t *testing.T) {
	failingSource := tilefetch.Individual(tilefetch.IndividualFetcherFunc(func(x, y int, zoomLevel uint8) (image.Image, error) {
		return nil, io.ErrUnexpectedEOF
	}))
	snapshotter := newTestSnapshotter(t, Config{Source: failingSource, Zoom: Constant(1)})

	tracer := tracing.NewTracer(bytes.NewBuffer(nil))
	trace := tracing.StartTrace(tracer, "test")

	ctx := context.WithValue(context.Background(), tracing.TracerCtxKey, tracer)
	ctx = context.WithValue(ctx, tracing.TraceCtxKey, trace)

	_, err := snapshotter.Snapshot(ctx, ownmaprenderer.StyledPoint{Point: orb.Point{1, 1}})
	require.Error(t, err)

	var spanNames []string
	for _, span := range trace.Spans {
		spanNames = append(spanNames, span.Name)
	}
	assert.Equal(t, []string{"select zoom", "fetch tiles"}, spanNames)
}

func TestSelectZoom(t *testing.T) {
	viewport := ownmap.Viewport{TileSize: 256, Width: 800, Height: 600}

	tests := []struct {
		name     string
		bound    orb.Bound
		maxLevel uint8
		viewport ownmap.Viewport
		expected uint8
	}{
		{"single point takes the max level", orb.Point{10, 10}.Bound(), 17, viewport, 17},
		{"40 degrees wide", orb.Bound{Min: orb.Point{-20, 0}, Max: orb.Point{20, 0}}, 17, viewport, 4},
		{"capped by max level", orb.Bound{Min: orb.Point{-20, 0}, Max: orb.Point{20, 0}}, 3, viewport, 3},
		{"whole world fits at zoom 0", orb.Bound{Min: orb.Point{-180, 0}, Max: orb.Point{180, 0}}, 17, ownmap.Viewport{TileSize: 256, Width: 300, Height: 300}, 0},
		{"never fits falls back to 1", orb.Bound{Min: orb.Point{-180, 0}, Max: orb.Point{180, 0}}, 17, ownmap.Viewport{TileSize: 256, Width: 100, Height: 100}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SelectZoom(tt.bound, tt.maxLevel, tt.viewport))
		})
	}
}

func TestSelectZoom_monotonicInViewport(t *testing.T) {
	bound := orb.Bound{Min: orb.Point{5, 50}, Max: orb.Point{12, 58}}

	previous := uint8(0)
	for _, size := range []int{200, 400, 800, 1600, 3200} {
		zoomLevel := SelectZoom(bound, 17, ownmap.Viewport{TileSize: 256, Width: size, Height: size})
		assert.GreaterOrEqual(t, zoomLevel, previous, "size %d", size)
		previous = zoomLevel
	}
}
