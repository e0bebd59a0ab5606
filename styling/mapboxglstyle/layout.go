package mapboxglstyle

type Layout struct {
	Visibility string                       `json:"visibility"`
	LineCap    string                       `json:"line-cap"`
	LineJoin   string                       `json:"line-join"`
	TextField  string                       `json:"text-field"` // e.g. "{name}"
	TextFont   []string                     `json:"text-font"`
	TextSize   *NumberOrFunctionWrapperType `json:"text-size"` // float64 or {"base": 1.4, "stops": [[10, 8], [20, 14]]}
	TextOffset []float64                    `json:"text-offset"`
}

func (l Layout) isVisible() bool {
	return l.Visibility != "none"
}

type Paint struct {
	FillColor         *ColorOrFunctionWrapperType  `json:"fill-color"`
	FillOpacity       *NumberOrFunctionWrapperType `json:"fill-opacity"`
	FillOutlineColor  *ColorOrFunctionWrapperType  `json:"fill-outline-color"`
	LineColor         *ColorOrFunctionWrapperType  `json:"line-color"`
	LineOpacity       *NumberOrFunctionWrapperType `json:"line-opacity"`
	LineWidth         *NumberOrFunctionWrapperType `json:"line-width"`
	CircleColor       *ColorOrFunctionWrapperType  `json:"circle-color"`
	CircleOpacity     *NumberOrFunctionWrapperType `json:"circle-opacity"`
	CircleRadius      *NumberOrFunctionWrapperType `json:"circle-radius"`
	CircleStrokeColor *ColorOrFunctionWrapperType  `json:"circle-stroke-color"`
	CircleStrokeWidth *NumberOrFunctionWrapperType `json:"circle-stroke-width"`
	TextColor         *ColorOrFunctionWrapperType  `json:"text-color"`
	TextHaloColor     *ColorOrFunctionWrapperType  `json:"text-halo-color"`
	TextHaloWidth     *NumberOrFunctionWrapperType `json:"text-halo-width"`
}
