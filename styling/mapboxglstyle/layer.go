package mapboxglstyle

import (
	"image"
	"image/color"
	"math"
	"regexp"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/ownmap-snapshot/styling"
)

type LayerType string

const (
	LayerTypeBackground    LayerType = "background"
	LayerTypeFill          LayerType = "fill"
	LayerTypeLine          LayerType = "line"
	LayerTypeSymbol        LayerType = "symbol"
	LayerTypeRaster        LayerType = "raster"
	LayerTypeCircle        LayerType = "circle"
	LayerTypeFillExtrusion LayerType = "fill-extrusion"
	LayerTypeHeatmap       LayerType = "heatmap"
	LayerTypeHillshade     LayerType = "hillshade"
)

const maxLayerZoom = 24

var textFieldTokenRegexp = regexp.MustCompile(`\{([^}]+)\}`)

type Layer struct {
	Filter      Filter    `json:"filter"`
	ID          string    `json:"id"`
	Layout      Layout    `json:"layout"`
	MaxZoom     *float64  `json:"maxzoom"`
	MinZoom     *float64  `json:"minzoom"`
	Paint       *Paint    `json:"paint"`
	Source      string    `json:"source"`
	SourceLayer string    `json:"source-layer"`
	Type        LayerType `json:"type"`

	isShown filterFunc
}

func (l *Layer) Validate() errorsx.Error {
	if l.MaxZoom != nil && l.MinZoom != nil && *l.MaxZoom < *l.MinZoom {
		return errorsx.Errorf("max zoom (%v) is smaller than min zoom (%v)", *l.MaxZoom, *l.MinZoom)
	}

	for name, zoomLevel := range map[string]*float64{"max zoom": l.MaxZoom, "min zoom": l.MinZoom} {
		if zoomLevel != nil && (*zoomLevel < 0 || *zoomLevel > maxLayerZoom) {
			return errorsx.Errorf("%s must be between 0 and %d (inclusive) but was %v", name, maxLayerZoom, *zoomLevel)
		}
	}

	return nil
}

func (l *Layer) compile() errorsx.Error {
	err := l.Validate()
	if err != nil {
		return err
	}

	l.isShown, err = compileFilter(l.Filter, l.SourceLayer)
	if err != nil {
		return err
	}

	if l.Paint == nil {
		l.Paint = new(Paint)
	}

	return nil
}

func (l *Layer) isInZoomRange(zoomLevel float64) bool {
	if l.MinZoom != nil && zoomLevel < *l.MinZoom {
		return false
	}
	if l.MaxZoom != nil && zoomLevel >= *l.MaxZoom {
		return false
	}
	return true
}

// GetLayerStyles returns the styles this layer gives a feature with the given tags.
// ok is false if the layer doesn't draw the feature.
func (l *Layer) GetLayerStyles(tags map[string]string, zoomLevel float64) (styling.Styles, bool) {
	if !l.Layout.isVisible() || !l.isInZoomRange(zoomLevel) {
		return styling.Styles{}, false
	}

	if !areTagsInSourceLayer(l.SourceLayer, tags) || !l.isShown(tags) {
		return styling.Styles{}, false
	}

	switch l.Type {
	case LayerTypeLine:
		return l.lineStyles(zoomLevel)
	case LayerTypeFill:
		return l.fillStyles(zoomLevel)
	case LayerTypeCircle:
		return l.circleStyles(zoomLevel)
	case LayerTypeSymbol:
		return l.symbolStyles(tags, zoomLevel)
	default:
		return styling.Styles{}, false
	}
}

func (l *Layer) lineStyles(zoomLevel float64) (styling.Styles, bool) {
	opacity := l.Paint.LineOpacity.GetValueAtZoomLevel(zoomLevel, 1)
	lineColor, ok := l.Paint.LineColor.GetColorAtZoomLevel(zoomLevel, opacity)
	if !ok {
		return styling.Styles{}, false
	}

	lineWidth := l.Paint.LineWidth.GetValueAtZoomLevel(zoomLevel, 1)
	if lineWidth <= 0 {
		return styling.Styles{}, false
	}

	return styling.Styles{
		Line: styling.LineStyle{
			ColorOptions: styling.ColorOptions{
				Foreground: lineColor.toNRGBA(),
				Border:     styling.Float(0),
			},
			Width: lineWidth,
		},
	}, true
}

func (l *Layer) fillStyles(zoomLevel float64) (styling.Styles, bool) {
	opacity := l.Paint.FillOpacity.GetValueAtZoomLevel(zoomLevel, 1)
	fillColor, ok := l.Paint.FillColor.GetColorAtZoomLevel(zoomLevel, opacity)
	if !ok {
		return styling.Styles{}, false
	}

	polygonStyle := styling.PolygonStyle{
		ColorOptions: styling.ColorOptions{
			Foreground: fillColor.toNRGBA(),
		},
	}

	outlineColor, ok := l.Paint.FillOutlineColor.GetColorAtZoomLevel(zoomLevel, opacity)
	if ok {
		polygonStyle.LineStyle = styling.LineStyle{
			ColorOptions: styling.ColorOptions{
				Foreground: outlineColor.toNRGBA(),
				Border:     styling.Float(0),
			},
			Width: 1,
		}
	}

	return styling.Styles{Polygon: polygonStyle}, true
}

func (l *Layer) circleStyles(zoomLevel float64) (styling.Styles, bool) {
	opacity := l.Paint.CircleOpacity.GetValueAtZoomLevel(zoomLevel, 1)
	circleColor, ok := l.Paint.CircleColor.GetColorAtZoomLevel(zoomLevel, opacity)
	if !ok {
		return styling.Styles{}, false
	}

	pointStyle := styling.PointStyle{
		ColorOptions: styling.ColorOptions{
			Foreground: circleColor.toNRGBA(),
		},
		Representation: styling.Circle{Radius: l.Paint.CircleRadius.GetValueAtZoomLevel(zoomLevel, 5)},
	}

	strokeColor, ok := l.Paint.CircleStrokeColor.GetColorAtZoomLevel(zoomLevel, 1)
	if ok {
		pointStyle.Background = strokeColor.toNRGBA()
		pointStyle.Border = styling.Float(l.Paint.CircleStrokeWidth.GetValueAtZoomLevel(zoomLevel, 0))
	} else {
		pointStyle.Border = styling.Float(0)
	}

	return styling.Styles{Point: pointStyle}, true
}

// symbolStyles labels points with the text field, e.g. "{name}" is replaced by the "name" tag.
func (l *Layer) symbolStyles(tags map[string]string, zoomLevel float64) (styling.Styles, bool) {
	text := textFieldTokenRegexp.ReplaceAllStringFunc(l.Layout.TextField, func(token string) string {
		return tags[token[1:len(token)-1]]
	})
	if text == "" {
		return styling.Styles{}, false
	}

	fontSize := l.Layout.TextSize.GetValueAtZoomLevel(zoomLevel, 16)
	label := &styling.Label{
		Text:     text,
		FontSize: fontSize,
	}

	textColor, ok := l.Paint.TextColor.GetColorAtZoomLevel(zoomLevel, 1)
	if ok {
		label.Foreground = textColor.toNRGBA()
	} else {
		label.Foreground = color.Black
	}

	haloColor, ok := l.Paint.TextHaloColor.GetColorAtZoomLevel(zoomLevel, 1)
	if ok {
		label.Background = haloColor.toNRGBA()
		label.Border = styling.Float(l.Paint.TextHaloWidth.GetValueAtZoomLevel(zoomLevel, 0))
	}

	if len(l.Layout.TextOffset) == 2 {
		// text-offset is in ems, and moves the label down and right
		label.Offset = &image.Point{
			X: -int(math.Round(l.Layout.TextOffset[0] * fontSize)),
			Y: -int(math.Round(l.Layout.TextOffset[1] * fontSize)),
		}
	}

	return styling.Styles{Point: styling.PointStyle{Label: label}}, true
}
