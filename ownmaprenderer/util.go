package ownmaprenderer

import (
	"image"
	"image/color"
	"image/draw"
)

func NewImageWithBackground(r image.Rectangle, c color.Color) *image.RGBA {
	img := image.NewRGBA(r)

	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)

	return img
}

// SnapAlpha makes every pixel either fully opaque or fully transparent, keeping the colour of the
// pixels that stay.
func SnapAlpha(img *image.RGBA) {
	for i := 0; i+3 < len(img.Pix); i += 4 {
		alpha := uint32(img.Pix[i+3])
		switch {
		case alpha == 0xff:
			continue
		case alpha < 0x80:
			img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 0, 0, 0, 0
		default:
			// un-premultiply
			img.Pix[i] = uint8(uint32(img.Pix[i]) * 0xff / alpha)
			img.Pix[i+1] = uint8(uint32(img.Pix[i+1]) * 0xff / alpha)
			img.Pix[i+2] = uint8(uint32(img.Pix[i+2]) * 0xff / alpha)
			img.Pix[i+3] = 0xff
		}
	}
}
