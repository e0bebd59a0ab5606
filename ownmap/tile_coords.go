package ownmap

import (
	"image"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// Viewport describes the output canvas of a snapshot and the size of the tiles it is built from.
type Viewport struct {
	TileSize int
	Width    int
	Height   int
}

// Center returns the pixel at the middle of the canvas.
func (v Viewport) Center() image.Point {
	return image.Point{
		X: int(math.Round(float64(v.Width) / 2)),
		Y: int(math.Round(float64(v.Height) / 2)),
	}
}

// GeoToWorld projects an EPSG:4326 point (X = longitude, Y = latitude) onto the Web Mercator world
// grid at the given zoom level, measured in tiles.
func GeoToWorld(zoomLevel uint8, point orb.Point) orb.Point {
	n := math.Exp2(float64(zoomLevel))
	latRad := point.Lat() * math.Pi / 180.0

	return orb.Point{
		n * (point.Lon() + 180.0) / 360.0,
		n * (1.0 - math.Log(math.Tan(latRad)+1.0/math.Cos(latRad))/math.Pi) / 2.0,
	}
}

// WorldToGeo is the inverse of GeoToWorld.
func WorldToGeo(zoomLevel uint8, worldPoint orb.Point) orb.Point {
	n := math.Exp2(float64(zoomLevel))
	lon := worldPoint.X()/n*360.0 - 180.0
	latRad := math.Atan(math.Sinh(math.Pi * (1 - 2*worldPoint.Y()/n)))

	return orb.Point{lon, latRad * 180 / math.Pi}
}

// GeoToPixel converts an EPSG:4326 point to a pixel on a snapshot canvas centred on center.
func GeoToPixel(viewport Viewport, zoomLevel uint8, center, point orb.Point) image.Point {
	return WorldToPixel(viewport, GeoToWorld(zoomLevel, center), GeoToWorld(zoomLevel, point))
}

// WorldToPixel is GeoToPixel for points that have already been projected.
func WorldToPixel(viewport Viewport, centerWorld, pointWorld orb.Point) image.Point {
	dx := pointWorld.X() - centerWorld.X()
	dy := pointWorld.Y() - centerWorld.Y()

	return image.Point{
		X: int(math.Round(dx*float64(viewport.TileSize) + float64(viewport.Width)/2)),
		Y: int(math.Round(dy*float64(viewport.TileSize) + float64(viewport.Height)/2)),
	}
}

// WrapTileIndex folds a tile index into [0, 2^zoom), so that tiles either side of the antimeridian
// resolve to real tiles.
func WrapTileIndex(index int, zoomLevel uint8) int {
	n := 1 << zoomLevel
	return ((index % n) + n) % n
}

// TileBounds returns the geographic area covered by a tile.
func TileBounds(x, y int, zoomLevel uint8) orb.Bound {
	return maptile.New(
		uint32(WrapTileIndex(x, zoomLevel)),
		uint32(WrapTileIndex(y, zoomLevel)),
		maptile.Zoom(zoomLevel),
	).Bound()
}
