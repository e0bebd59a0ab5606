package mapboxglstyle

import (
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/ownmap-snapshot/styling"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// paintColor is a colour with a separate alpha channel (0 to 1), as written in a style sheet.
type paintColor struct {
	colorful.Color
	Alpha float64
}

func (c paintColor) toNRGBA() color.NRGBA {
	r, g, b := c.Clamped().RGB255()
	alpha := math.Max(0, math.Min(1, c.Alpha))
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(alpha * 255))}
}

func (c paintColor) blend(other paintColor, t float64) paintColor {
	return paintColor{
		Color: c.BlendRgb(other.Color, t),
		Alpha: c.Alpha + (other.Alpha-c.Alpha)*t,
	}
}

// parseColor parses the CSS colour forms used in Mapbox GL styles:
// hex codes, rgb(), rgba(), hsl(), hsla() and colour names.
func parseColor(s string) (paintColor, errorsx.Error) {
	s = strings.TrimSpace(strings.ToLower(s))

	if strings.HasPrefix(s, "#") {
		switch len(s) {
		case 4, 7:
			c, err := colorful.Hex(s)
			if err != nil {
				return paintColor{}, errorsx.Wrap(err, "colour", s)
			}
			return paintColor{Color: c, Alpha: 1}, nil
		default:
			nrgba, err := styling.ParseHexCode(s)
			if err != nil {
				return paintColor{}, err
			}
			return fromNRGBA(nrgba), nil
		}
	}

	openIdx := strings.Index(s, "(")
	if openIdx != -1 && strings.HasSuffix(s, ")") {
		return parseColorFunction(s[:openIdx], s[openIdx+1:len(s)-1])
	}

	named, ok := colornames.Map[s]
	if ok {
		return fromNRGBA(color.NRGBAModel.Convert(named).(color.NRGBA)), nil
	}

	return paintColor{}, errorsx.Errorf("unrecognised colour: %q", s)
}

func fromNRGBA(nrgba color.NRGBA) paintColor {
	opaque := nrgba
	opaque.A = 0xff
	c, _ := colorful.MakeColor(opaque)
	return paintColor{Color: c, Alpha: float64(nrgba.A) / 255}
}

func parseColorFunction(name, argsStr string) (paintColor, errorsx.Error) {
	var args []float64
	for _, arg := range strings.Split(argsStr, ",") {
		arg = strings.TrimSuffix(strings.TrimSpace(arg), "%")
		value, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return paintColor{}, errorsx.Wrap(err, "colourFunction", name, "arguments", argsStr)
		}
		args = append(args, value)
	}

	expectedArgs := 3
	if strings.HasSuffix(name, "a") {
		expectedArgs = 4
	}
	if len(args) != expectedArgs {
		return paintColor{}, errorsx.Errorf("%s() takes %d arguments, but got %d (%q)", name, expectedArgs, len(args), argsStr)
	}

	alpha := 1.0
	if expectedArgs == 4 {
		alpha = args[3]
	}

	switch name {
	case "rgb", "rgba":
		return paintColor{Color: colorful.Color{R: args[0] / 255, G: args[1] / 255, B: args[2] / 255}, Alpha: alpha}, nil
	case "hsl", "hsla":
		return paintColor{Color: colorful.Hsl(args[0], args[1]/100, args[2]/100), Alpha: alpha}, nil
	default:
		return paintColor{}, errorsx.Errorf("unrecognised colour function: %q", name)
	}
}
