package ownmaprenderer

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	"github.com/golang/freetype/truetype"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/ownmap-snapshot/fonts"
	"github.com/jamesrr39/ownmap-snapshot/styling"
	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/llgcode/draw2d/draw2dkit"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Canvas draws paths, markers and labels onto an RGBA image. Every paint is composited over what is
// already there. Paints that are not anti-aliased are traced into a coverage mask first, and the
// mask snapped to fully on or fully off.
type Canvas struct {
	img *image.RGBA
}

func NewCanvas(img *image.RGBA) *Canvas {
	return &Canvas{img}
}

func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// paint runs trace with the fill colour against the canvas, or with opaque white against a
// coverage mask when anti-aliasing is off.
func (c *Canvas) paint(antiAlias bool, fill color.Color, trace func(dst *image.RGBA, src color.Color)) {
	if antiAlias {
		trace(c.img, fill)
		return
	}

	bounds := c.img.Bounds()
	mask := NewImageWithBackground(bounds, color.Transparent)
	trace(mask, color.White)
	SnapAlpha(mask)

	draw.DrawMask(c.img, bounds, image.NewUniform(fill), image.Point{}, mask, bounds.Min, draw.Over)
}

func tracePath(gc *draw2dimg.GraphicContext, points []image.Point, closed bool) {
	gc.BeginPath()
	for i, point := range points {
		if i == 0 {
			gc.MoveTo(float64(point.X), float64(point.Y))
			continue
		}
		gc.LineTo(float64(point.X), float64(point.Y))
	}
	if closed {
		gc.Close()
	}
}

// FillPath fills the closed path through points.
func (c *Canvas) FillPath(points []image.Point, fill color.Color, antiAlias bool) {
	c.paint(antiAlias, fill, func(dst *image.RGBA, src color.Color) {
		gc := draw2dimg.NewGraphicContext(dst)
		defer gc.Close()

		gc.SetFillColor(src)
		tracePath(gc, points, true)
		gc.Fill()
	})
}

// StrokePath strokes the path through points, joining the last point to the first if closed is set.
func (c *Canvas) StrokePath(points []image.Point, closed bool, stroke color.Color, width float64, antiAlias bool) {
	c.paint(antiAlias, stroke, func(dst *image.RGBA, src color.Color) {
		gc := draw2dimg.NewGraphicContext(dst)
		defer gc.Close()

		gc.SetStrokeColor(src)
		gc.SetLineWidth(width)
		tracePath(gc, points, closed)
		gc.Stroke()
	})
}

func (c *Canvas) FillCircle(center image.Point, radius float64, fill color.Color, antiAlias bool) {
	c.paint(antiAlias, fill, func(dst *image.RGBA, src color.Color) {
		gc := draw2dimg.NewGraphicContext(dst)
		defer gc.Close()

		gc.SetFillColor(src)
		gc.BeginPath()
		draw2dkit.Circle(gc, float64(center.X), float64(center.Y), radius)
		gc.Fill()
	})
}

func (c *Canvas) StrokeCircle(center image.Point, radius float64, stroke color.Color, width float64, antiAlias bool) {
	c.paint(antiAlias, stroke, func(dst *image.RGBA, src color.Color) {
		gc := draw2dimg.NewGraphicContext(dst)
		defer gc.Close()

		gc.SetStrokeColor(src)
		gc.SetLineWidth(width)
		gc.BeginPath()
		draw2dkit.Circle(gc, float64(center.X), float64(center.Y), radius)
		gc.Stroke()
	})
}

// DrawSVG draws the SVG markup at its own size (from its viewBox), centred on center.
func (c *Canvas) DrawSVG(markup string, center image.Point, antiAlias bool) errorsx.Error {
	icon, err := oksvg.ReadIconStream(strings.NewReader(markup))
	if err != nil {
		return errorsx.Wrap(err)
	}

	width, height := icon.ViewBox.W, icon.ViewBox.H
	if width <= 0 || height <= 0 {
		return errorsx.Errorf("svg has no size: viewBox is %vx%v", width, height)
	}

	icon.SetTarget(float64(center.X)-width/2, float64(center.Y)-height/2, width, height)

	dst := c.img
	if !antiAlias {
		// markers carry their own colours, so they are snapped as a whole
		dst = NewImageWithBackground(c.img.Bounds(), color.Transparent)
	}

	bounds := dst.Bounds()
	scanner := rasterx.NewScannerGV(bounds.Dx(), bounds.Dy(), dst, bounds)
	dasher := rasterx.NewDasher(bounds.Dx(), bounds.Dy(), scanner)
	icon.Draw(dasher, 1.0)

	if !antiAlias {
		SnapAlpha(dst)
		draw.Draw(c.img, bounds, dst, bounds.Min, draw.Over)
	}

	return nil
}

// DrawLabel draws the label text centred on center. If the label has a border, the text is first
// drawn in the background colour at every offset within the border, giving it a halo.
func (c *Canvas) DrawLabel(label styling.Label, center image.Point) errorsx.Error {
	if label.Text == "" {
		return nil
	}

	fontSize := label.FontSize
	if fontSize <= 0 {
		fontSize = styling.DefaultLabel().FontSize
	}

	face := truetype.NewFace(fonts.ByFamily(label.FontFamily), &truetype.Options{
		Size:    fontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	defer face.Close()

	textWidth := font.MeasureString(face, label.Text).Ceil()
	metrics := face.Metrics()
	ascent := metrics.Ascent.Ceil()
	descent := metrics.Descent.Ceil()

	x := center.X - textWidth/2
	y := center.Y + (ascent-descent)/2

	antiAlias := label.IsAntiAlias()

	border, hasBorder := label.BorderWidth()
	if hasBorder {
		reach := int(math.Round(border))
		if reach < 1 {
			reach = 1
		}
		c.paint(antiAlias, label.BackgroundOrDefault(), func(dst *image.RGBA, src color.Color) {
			for dx := -reach; dx <= reach; dx++ {
				for dy := -reach; dy <= reach; dy++ {
					if dx == 0 && dy == 0 {
						continue
					}
					if dx*dx+dy*dy > reach*reach {
						continue
					}
					drawText(dst, label.Text, x+dx, y+dy, src, face)
				}
			}
		})
	}

	c.paint(antiAlias, label.ForegroundOrDefault(), func(dst *image.RGBA, src color.Color) {
		drawText(dst, label.Text, x, y, src, face)
	})

	return nil
}

func drawText(dst draw.Image, text string, x, y int, src color.Color, face font.Face) {
	drawer := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(src),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	drawer.DrawString(text)
}
