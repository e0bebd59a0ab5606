package ownmap

import (
	"image"

	"github.com/paulmach/orb"
)

// RenderContext is the state a geometry is drawn with. Index is the zero-based position of the
// geometry (or vertex, when drawing the points of a line or polygon) currently being drawn.
type RenderContext struct {
	Zoom        uint8
	Center      orb.Point
	CenterWorld orb.Point
	Viewport    Viewport
	Index       int
}

func NewRenderContext(viewport Viewport, zoomLevel uint8, center orb.Point) RenderContext {
	return RenderContext{
		Zoom:        zoomLevel,
		Center:      center,
		CenterWorld: GeoToWorld(zoomLevel, center),
		Viewport:    viewport,
	}
}

// WithIndex returns a copy of the context pointing at another index.
func (rc RenderContext) WithIndex(index int) RenderContext {
	rc.Index = index
	return rc
}

// ToPixel converts an EPSG:4326 point to a canvas pixel.
func (rc RenderContext) ToPixel(point orb.Point) image.Point {
	return WorldToPixel(rc.Viewport, rc.CenterWorld, GeoToWorld(rc.Zoom, point))
}
