package styling

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
)

// ColorOptions are the colour settings shared by every style kind.
// A nil field is "not set": it is filled in from the style it is merged onto.
type ColorOptions struct {
	Foreground color.Color
	Background color.Color
	AntiAlias  *bool
	// Border is the width of the background outline drawn around a shape. Zero disables it.
	Border *float64
}

func DefaultColorOptions() ColorOptions {
	return ColorOptions{
		Foreground: color.RGBA{248, 248, 248, 255},
		Background: color.RGBA{26, 26, 26, 255},
		AntiAlias:  Bool(true),
		Border:     Float(1),
	}
}

// Merge returns c with every field set in other replaced.
func (c ColorOptions) Merge(other ColorOptions) ColorOptions {
	if other.Foreground != nil {
		c.Foreground = other.Foreground
	}
	if other.Background != nil {
		c.Background = other.Background
	}
	if other.AntiAlias != nil {
		c.AntiAlias = other.AntiAlias
	}
	if other.Border != nil {
		c.Border = other.Border
	}

	return c
}

// IsAntiAlias reports whether the shape should be drawn anti-aliased. Unset means yes.
func (c ColorOptions) IsAntiAlias() bool {
	if c.AntiAlias == nil {
		return true
	}

	return *c.AntiAlias
}

// BorderWidth returns the border width, and whether a border should be drawn at all.
func (c ColorOptions) BorderWidth() (float64, bool) {
	if c.Border == nil || *c.Border <= 0 {
		return 0, false
	}

	return *c.Border, true
}

func (c ColorOptions) ForegroundOrDefault() color.Color {
	if c.Foreground == nil {
		return DefaultColorOptions().Foreground
	}
	return c.Foreground
}

func (c ColorOptions) BackgroundOrDefault() color.Color {
	if c.Background == nil {
		return DefaultColorOptions().Background
	}
	return c.Background
}

// Bool returns a pointer to b, for setting optional style fields.
func Bool(b bool) *bool {
	return &b
}

// Float returns a pointer to f, for setting optional style fields.
func Float(f float64) *float64 {
	return &f
}

// HexCode formats a colour as "#rrggbbaa".
func HexCode(c color.Color) string {
	if c == nil {
		return ""
	}
	nrgba := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x%02x", nrgba.R, nrgba.G, nrgba.B, nrgba.A)
}

// ParseHexCode parses "#rgb", "#rrggbb" or "#rrggbbaa" (the leading # is optional).
func ParseHexCode(s string) (color.NRGBA, errorsx.Error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.NRGBA{}, errorsx.Errorf("invalid colour %q: expected 3, 6 or 8 hex digits", s)
	}

	var channels [4]uint8
	for i := range channels {
		v, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return color.NRGBA{}, errorsx.Wrap(err, "colour", s)
		}
		channels[i] = uint8(v)
	}

	return color.NRGBA{R: channels[0], G: channels[1], B: channels[2], A: channels[3]}, nil
}
