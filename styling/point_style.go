package styling

import (
	"image"
	"image/color"
)

// Representation is how a point is drawn: a Circle or an SVG marker.
type Representation interface {
	isRepresentation()
}

type Circle struct {
	Radius float64
}

func (Circle) isRepresentation() {}

// SVG is a marker drawn centred on the point's pixel, moved up and left by Offset.
type SVG struct {
	Markup string
	Offset image.Point
}

func (SVG) isRepresentation() {}

// Label is text drawn centred on a point's pixel, moved up and left by Offset.
// The background colour is used for a halo of Border pixels around the text.
type Label struct {
	ColorOptions
	FontFamily string
	FontSize   float64
	Offset     *image.Point
	Text       string
}

func DefaultLabel() Label {
	return Label{
		ColorOptions: DefaultColorOptions(),
		FontFamily:   "Go",
		FontSize:     16,
		Offset:       &image.Point{X: 0, Y: 12},
	}
}

func (l Label) Merge(other Label) Label {
	l.ColorOptions = l.ColorOptions.Merge(other.ColorOptions)
	if other.FontFamily != "" {
		l.FontFamily = other.FontFamily
	}
	if other.FontSize != 0 {
		l.FontSize = other.FontSize
	}
	if other.Offset != nil {
		l.Offset = other.Offset
	}
	if other.Text != "" {
		l.Text = other.Text
	}

	return l
}

// PointOffset returns the label offset, (0, 0) if unset.
func (l Label) PointOffset() image.Point {
	if l.Offset == nil {
		return image.Point{}
	}
	return *l.Offset
}

type PointStyle struct {
	ColorOptions
	Representation Representation
	Label          *Label
	Effect         PointEffect
}

func DefaultPointStyle() PointStyle {
	return PointStyle{
		ColorOptions:   DefaultColorOptions(),
		Representation: Circle{Radius: 4},
	}
}

// Merge returns p overridden by every field set in other. Labels are merged field by field,
// starting from DefaultLabel when p has none.
func (p PointStyle) Merge(other PointStyle) PointStyle {
	p.ColorOptions = p.ColorOptions.Merge(other.ColorOptions)
	if other.Representation != nil {
		p.Representation = other.Representation
	}
	if other.Label != nil {
		base := DefaultLabel()
		if p.Label != nil {
			base = *p.Label
		}
		merged := base.Merge(*other.Label)
		p.Label = &merged
	}
	if other.Effect != nil {
		p.Effect = other.Effect
	}

	return p
}

// WithColor returns a copy of the style with the foreground set.
func (p PointStyle) WithColor(c color.Color) PointStyle {
	p.Foreground = c
	return p
}
