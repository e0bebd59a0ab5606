package ownmaprenderer

import (
	"image/color"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/ownmap-snapshot/ownmap"
	"github.com/jamesrr39/ownmap-snapshot/styling"
	"github.com/paulmach/orb"
)

// Drawable is a geometry paired with the style for its kind. The implementations are the Styled*
// types in this package and Collection.
type Drawable interface {
	Geometry() orb.Geometry
	isDrawable()
}

type StyledPoint struct {
	Point orb.Point
	Style styling.PointStyle
}

type StyledLine struct {
	Line  ownmap.Line
	Style styling.LineStyle
}

type StyledLineString struct {
	LineString orb.LineString
	Style      styling.LineStyle
}

type StyledPolygon struct {
	Polygon orb.Polygon
	Style   styling.PolygonStyle
}

type StyledMultiPoint struct {
	MultiPoint orb.MultiPoint
	Style      styling.PointStyle
}

type StyledMultiLineString struct {
	MultiLineString orb.MultiLineString
	Style           styling.LineStyle
}

type StyledMultiPolygon struct {
	MultiPolygon orb.MultiPolygon
	Style        styling.PolygonStyle
}

type StyledRect struct {
	Rect  orb.Bound
	Style styling.PolygonStyle
}

type StyledTriangle struct {
	Triangle ownmap.Triangle
	Style    styling.PolygonStyle
}

// Collection is a group of drawables, each drawn with its own style, in order.
type Collection []Drawable

func (d StyledPoint) Geometry() orb.Geometry           { return d.Point }
func (d StyledLine) Geometry() orb.Geometry            { return d.Line.ToLineString() }
func (d StyledLineString) Geometry() orb.Geometry      { return d.LineString }
func (d StyledPolygon) Geometry() orb.Geometry         { return d.Polygon }
func (d StyledMultiPoint) Geometry() orb.Geometry      { return d.MultiPoint }
func (d StyledMultiLineString) Geometry() orb.Geometry { return d.MultiLineString }
func (d StyledMultiPolygon) Geometry() orb.Geometry    { return d.MultiPolygon }
func (d StyledRect) Geometry() orb.Geometry            { return d.Rect }
func (d StyledTriangle) Geometry() orb.Geometry        { return d.Triangle.ToPolygon() }

func (c Collection) Geometry() orb.Geometry {
	collection := make(orb.Collection, 0, len(c))
	for _, drawable := range c {
		collection = append(collection, drawable.Geometry())
	}
	return collection
}

func (StyledPoint) isDrawable()           {}
func (StyledLine) isDrawable()            {}
func (StyledLineString) isDrawable()      {}
func (StyledPolygon) isDrawable()         {}
func (StyledMultiPoint) isDrawable()      {}
func (StyledMultiLineString) isDrawable() {}
func (StyledMultiPolygon) isDrawable()    {}
func (StyledRect) isDrawable()            {}
func (StyledTriangle) isDrawable()        {}
func (Collection) isDrawable()            {}

// FromGeometry wraps a plain geometry with empty styles, so it is drawn with the ambient and
// default styles only.
func FromGeometry(geometry orb.Geometry) (Drawable, errorsx.Error) {
	return FromStyledGeometry(geometry, styling.Styles{})
}

// FromStyledGeometry wraps a geometry with the style of its kind taken from styles. Collections are
// wrapped child by child.
func FromStyledGeometry(geometry orb.Geometry, styles styling.Styles) (Drawable, errorsx.Error) {
	switch g := geometry.(type) {
	case orb.Point:
		return StyledPoint{g, styles.Point}, nil
	case orb.MultiPoint:
		return StyledMultiPoint{g, styles.Point}, nil
	case orb.LineString:
		return StyledLineString{g, styles.Line}, nil
	case orb.MultiLineString:
		return StyledMultiLineString{g, styles.Line}, nil
	case orb.Ring:
		return StyledPolygon{orb.Polygon{g}, styles.Polygon}, nil
	case orb.Polygon:
		return StyledPolygon{g, styles.Polygon}, nil
	case orb.MultiPolygon:
		return StyledMultiPolygon{g, styles.Polygon}, nil
	case orb.Bound:
		return StyledRect{g, styles.Polygon}, nil
	case orb.Collection:
		collection := make(Collection, 0, len(g))
		for _, child := range g {
			drawable, err := FromStyledGeometry(child, styles)
			if err != nil {
				return nil, err
			}
			collection = append(collection, drawable)
		}
		return collection, nil
	default:
		return nil, errorsx.Errorf("unsupported geometry type: %T", geometry)
	}
}

// FromFeature wraps a feature with the styles its tags map to. A named feature is labelled with its
// name: points at each point, lines at their middle vertex and polygons at their centroid.
func FromFeature(feature ownmap.Feature, style styling.Style) (Drawable, errorsx.Error) {
	var styles styling.Styles
	if style != nil {
		styles = style.GetTaggedStyles(feature.Tags)
	}

	if feature.Name == "" {
		return FromStyledGeometry(feature.Geometry, styles)
	}

	nameLabel := styling.PointStyle{Label: &styling.Label{Text: feature.Name}}

	switch feature.Geometry.(type) {
	case orb.Point, orb.MultiPoint:
		styles.Point = styles.Point.Merge(nameLabel)
		return FromStyledGeometry(feature.Geometry, styles)
	}

	drawable, err := FromStyledGeometry(feature.Geometry, styles)
	if err != nil {
		return nil, err
	}

	anchor, ok := labelAnchor(feature.Geometry)
	if !ok {
		return drawable, nil
	}

	// only the label of the anchor is visible
	anchorStyle := styles.Point.Merge(styling.PointStyle{
		ColorOptions: styling.ColorOptions{Foreground: color.Transparent, Border: styling.Float(0)},
	}).Merge(nameLabel)

	return Collection{drawable, StyledPoint{Point: anchor, Style: anchorStyle}}, nil
}

func labelAnchor(geometry orb.Geometry) (orb.Point, bool) {
	switch g := geometry.(type) {
	case orb.LineString:
		if len(g) == 0 {
			return orb.Point{}, false
		}
		return g[len(g)/2], true
	case orb.MultiLineString:
		for _, lineString := range g {
			if len(lineString) != 0 {
				return lineString[len(lineString)/2], true
			}
		}
		return orb.Point{}, false
	}

	centroid, err := ownmap.CentroidOf([]orb.Geometry{geometry})
	if err != nil {
		return orb.Point{}, false
	}
	return centroid, true
}

// Geometries returns the geometry of each drawable.
func Geometries(drawables []Drawable) []orb.Geometry {
	geometries := make([]orb.Geometry, 0, len(drawables))
	for _, drawable := range drawables {
		geometries = append(geometries, drawable.Geometry())
	}
	return geometries
}
