package styling

import (
	"image/color"
)

type LineStyle struct {
	ColorOptions
	Width float64
	// PointStyle is used for every vertex of the line.
	PointStyle PointStyle
	Effect     LineEffect
}

func DefaultLineStyle() LineStyle {
	colorOptions := DefaultColorOptions()
	colorOptions.Foreground = color.RGBA{196, 196, 196, 255}
	colorOptions.Border = Float(4)

	return LineStyle{
		ColorOptions: colorOptions,
		Width:        3,
		PointStyle:   DefaultPointStyle(),
	}
}

func (l LineStyle) Merge(other LineStyle) LineStyle {
	l.ColorOptions = l.ColorOptions.Merge(other.ColorOptions)
	if other.Width != 0 {
		l.Width = other.Width
	}
	l.PointStyle = l.PointStyle.Merge(other.PointStyle)
	if other.Effect != nil {
		l.Effect = other.Effect
	}

	return l
}

type PolygonStyle struct {
	ColorOptions
	// LineStyle is used for the outline of the exterior ring.
	LineStyle LineStyle
	// PointStyle is used for every vertex of the exterior ring.
	PointStyle PointStyle
	Effect     PolygonEffect
}

func DefaultPolygonStyle() PolygonStyle {
	colorOptions := DefaultColorOptions()
	colorOptions.Foreground = color.RGBA{248, 248, 248, 64}
	colorOptions.Border = Float(0)

	return PolygonStyle{
		ColorOptions: colorOptions,
		LineStyle:    DefaultLineStyle(),
		PointStyle:   DefaultPointStyle(),
	}
}

func (p PolygonStyle) Merge(other PolygonStyle) PolygonStyle {
	p.ColorOptions = p.ColorOptions.Merge(other.ColorOptions)
	p.LineStyle = p.LineStyle.Merge(other.LineStyle)
	p.PointStyle = p.PointStyle.Merge(other.PointStyle)
	if other.Effect != nil {
		p.Effect = other.Effect
	}

	return p
}
