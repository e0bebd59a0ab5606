package styling

import (
	"image/color"
)

// CustomBasicStyle draws geometries with the default styles, and colours OSM-tagged features
// (roads, railways, forests, residential areas) the way a basic street map would.
type CustomBasicStyle struct{}

func (_ *CustomBasicStyle) GetStyleID() string {
	return BUILTIN_STYLEID
}

func (_ *CustomBasicStyle) GetAmbientStyles() Styles {
	return Styles{}
}

var forestStyle = PolygonStyle{
	ColorOptions: ColorOptions{
		Foreground: color.RGBA{172, 200, 160, 0xc0},
	},
	LineStyle: LineStyle{
		ColorOptions: ColorOptions{
			Foreground: color.RGBA{120, 150, 110, 0xff},
		},
		Width: 1,
	},
}

var residentialStyle = PolygonStyle{
	ColorOptions: ColorOptions{
		Foreground: color.RGBA{223, 223, 223, 0xc0},
	},
}

func (_ *CustomBasicStyle) GetTaggedStyles(tags map[string]string) Styles {
	if colorCode := tags["color"]; colorCode != "" {
		// explicit colour, e.g. from a GeoJSON "color" property
		c, err := ParseHexCode(colorCode)
		if err == nil {
			return Styles{
				Point:   PointStyle{ColorOptions: ColorOptions{Foreground: c}},
				Line:    LineStyle{ColorOptions: ColorOptions{Foreground: c}},
				Polygon: PolygonStyle{ColorOptions: ColorOptions{Foreground: withAlpha(c, 0x60)}, LineStyle: LineStyle{ColorOptions: ColorOptions{Foreground: c}}},
			}
		}
	}

	if _, ok := tags["railway"]; ok {
		return Styles{
			Line: LineStyle{
				ColorOptions: ColorOptions{Foreground: color.RGBA{190, 190, 190, 0xff}},
				Width:        3,
			},
		}
	}

	switch tags["natural"] {
	case "wood":
		return Styles{Polygon: forestStyle}
	}

	switch tags["landuse"] {
	case "forest":
		return Styles{Polygon: forestStyle}
	case "residential":
		return Styles{Polygon: residentialStyle}
	}

	highwayColor := highwayLineColor(tags["highway"])
	if highwayColor == nil {
		return Styles{}
	}

	return Styles{
		Line: LineStyle{
			ColorOptions: ColorOptions{Foreground: highwayColor},
		},
	}
}

func highwayLineColor(highwayType string) color.Color {
	switch highwayType {
	case "motorway":
		return color.RGBA{0xf3, 0x8d, 0x9e, 0xff}
	case "trunk":
		return color.RGBA{0xff, 0xae, 0x9b, 0xff}
	case "primary", "primary_link":
		return color.RGBA{0xff, 0xd4, 0xa5, 0xff}
	case "secondary":
		return color.RGBA{0xf6, 0xf9, 0xbf, 0xff}
	case "tertiary":
		return color.RGBA{0xf3, 0x8d, 0x9e, 0xff}
	case "unclassified", "residential", "service", "track":
		return color.RGBA{0xbc, 0xac, 0xa5, 0xff}
	case "footway", "path", "steps", "bridleway", "cycleway":
		return color.RGBA{0, 0xff, 0, 0xff}
	default:
		return nil
	}
}

func withAlpha(c color.NRGBA, alpha uint8) color.NRGBA {
	c.A = alpha
	return c
}

// NumberedVerticesStyle numbers the vertices of every line and polygon.
type NumberedVerticesStyle struct {
	CustomBasicStyle
}

func (_ *NumberedVerticesStyle) GetStyleID() string {
	return NUMBERED_VERTICES_STYLEID
}

func (_ *NumberedVerticesStyle) GetAmbientStyles() Styles {
	return Styles{
		Line: LineStyle{
			PointStyle: PointStyle{Effect: NumberedVertices()},
		},
		Polygon: PolygonStyle{
			PointStyle: PointStyle{Effect: NumberedVertices()},
		},
	}
}
