package styling

import (
	"image/color"
	"strconv"

	"github.com/jamesrr39/ownmap-snapshot/ownmap"
	"github.com/paulmach/orb"
)

// Effects run after a style has been resolved, and the style they return is used as it is.

type PointEffect func(style PointStyle, point orb.Point, renderContext ownmap.RenderContext) PointStyle

type LineEffect func(style LineStyle, lineString orb.LineString, renderContext ownmap.RenderContext) LineStyle

type PolygonEffect func(style PolygonStyle, polygon orb.Polygon, renderContext ownmap.RenderContext) PolygonStyle

// NumberedVertices labels each point with its one-based index. Set on the PointStyle of a line
// or polygon it numbers the vertices.
func NumberedVertices() PointEffect {
	return func(style PointStyle, point orb.Point, renderContext ownmap.RenderContext) PointStyle {
		label := Label{
			ColorOptions: ColorOptions{
				Border: Float(1.25),
			},
			Text: strconv.Itoa(renderContext.Index + 1),
		}
		return style.Merge(PointStyle{Label: &label})
	}
}

// CyclePointColors colours each point by its index, cycling through the palette.
func CyclePointColors(palette ...color.Color) PointEffect {
	return func(style PointStyle, point orb.Point, renderContext ownmap.RenderContext) PointStyle {
		if len(palette) == 0 {
			return style
		}
		return style.WithColor(palette[renderContext.Index%len(palette)])
	}
}
