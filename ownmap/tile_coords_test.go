package ownmap

import (
	"image"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestGeoToWorld(t *testing.T) {
	type args struct {
		zoomLevel uint8
		point     orb.Point
	}
	tests := []struct {
		name string
		args args
		want orb.Point
	}{
		{"null island at zoom 0", args{0, orb.Point{0, 0}}, orb.Point{0.5, 0.5}},
		{"null island at zoom 2", args{2, orb.Point{0, 0}}, orb.Point{2, 2}},
		{"antimeridian west", args{1, orb.Point{-180, 0}}, orb.Point{0, 1}},
		{"antimeridian east", args{1, orb.Point{180, 0}}, orb.Point{2, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GeoToWorld(tt.args.zoomLevel, tt.args.point)
			assert.InDelta(t, tt.want.X(), got.X(), 1e-9)
			assert.InDelta(t, tt.want.Y(), got.Y(), 1e-9)
		})
	}
}

func TestGeoToWorld_northIsUp(t *testing.T) {
	north := GeoToWorld(10, orb.Point{10, 60})
	south := GeoToWorld(10, orb.Point{10, -60})

	assert.Less(t, north.Y(), south.Y())
}

func TestWorldToGeo(t *testing.T) {
	for _, point := range []orb.Point{{0, 0}, {13.405, 52.52}, {-122.4194, 37.7749}, {151.2093, -33.8688}} {
		got := WorldToGeo(12, GeoToWorld(12, point))
		assert.InDelta(t, point.Lon(), got.Lon(), 1e-9)
		assert.InDelta(t, point.Lat(), got.Lat(), 1e-9)
	}
}

func TestGeoToPixel_centerProjectsToCanvasCenter(t *testing.T) {
	viewports := []Viewport{
		{TileSize: 256, Width: 800, Height: 600},
		{TileSize: 512, Width: 1024, Height: 768},
		{TileSize: 256, Width: 301, Height: 199},
	}
	points := []orb.Point{{0, 0}, {13.405, 52.52}, {-179.9, -80}, {179.9, 84}}

	for _, viewport := range viewports {
		for _, point := range points {
			for zoomLevel := uint8(0); zoomLevel <= 18; zoomLevel += 3 {
				got := GeoToPixel(viewport, zoomLevel, point, point)
				assert.Equal(t, viewport.Center(), got, "viewport %v, point %v, zoom %d", viewport, point, zoomLevel)
			}
		}
	}
}

func TestGeoToPixel(t *testing.T) {
	viewport := Viewport{TileSize: 256, Width: 800, Height: 600}

	// at zoom 0 the whole world is one tile, so 90 degrees of longitude is a quarter of a tile
	got := GeoToPixel(viewport, 0, orb.Point{0, 0}, orb.Point{90, 0})
	assert.Equal(t, image.Point{X: 464, Y: 300}, got)

	got = GeoToPixel(viewport, 1, orb.Point{0, 0}, orb.Point{-90, 0})
	assert.Equal(t, image.Point{X: 272, Y: 300}, got)
}

func TestWrapTileIndex(t *testing.T) {
	type args struct {
		index     int
		zoomLevel uint8
	}
	tests := []struct {
		name string
		args args
		want int
	}{
		{"in range", args{3, 2}, 3},
		{"minus one wraps to last", args{-1, 2}, 3},
		{"minus one at zoom 5", args{-1, 5}, 31},
		{"one past the end wraps to first", args{4, 2}, 0},
		{"far negative", args{-9, 2}, 3},
		{"zoom 0", args{-3, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WrapTileIndex(tt.args.index, tt.args.zoomLevel))
		})
	}
}

func TestTileBounds(t *testing.T) {
	bound := TileBounds(0, 0, 1)

	assert.InDelta(t, -180, bound.Min.Lon(), 1e-9)
	assert.InDelta(t, 0, bound.Max.Lon(), 1e-9)
	assert.InDelta(t, 0, bound.Min.Lat(), 1e-9)
	assert.InDelta(t, 85.0511287798, bound.Max.Lat(), 1e-6)

	assert.Equal(t, TileBounds(-1, 0, 1), TileBounds(1, 0, 1))
}
