package styling

// Mergeable is a style that can be overridden by another style of the same kind.
type Mergeable[S any] interface {
	Merge(other S) S
}

// Merge folds the overrides onto base from left to right. Later values win;
// a field an override leaves unset keeps the value it already had.
func Merge[S Mergeable[S]](base S, overrides ...S) S {
	merged := base
	for _, override := range overrides {
		merged = merged.Merge(override)
	}

	return merged
}

// Styles holds one style per geometry kind.
type Styles struct {
	Point   PointStyle
	Line    LineStyle
	Polygon PolygonStyle
}

func DefaultStyles() Styles {
	return Styles{
		Point:   DefaultPointStyle(),
		Line:    DefaultLineStyle(),
		Polygon: DefaultPolygonStyle(),
	}
}

func (s Styles) Merge(other Styles) Styles {
	return Styles{
		Point:   s.Point.Merge(other.Point),
		Line:    s.Line.Merge(other.Line),
		Polygon: s.Polygon.Merge(other.Polygon),
	}
}
