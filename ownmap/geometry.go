package ownmap

import (
	"math"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Line is a single segment between two points.
type Line struct {
	Start orb.Point
	End   orb.Point
}

func (l Line) ToLineString() orb.LineString {
	return orb.LineString{l.Start, l.End}
}

func (l Line) Bound() orb.Bound {
	return l.ToLineString().Bound()
}

// Triangle is a closed three-sided polygon.
type Triangle struct {
	A orb.Point
	B orb.Point
	C orb.Point
}

func (t Triangle) ToPolygon() orb.Polygon {
	return orb.Polygon{orb.Ring{t.A, t.B, t.C, t.A}}
}

func (t Triangle) Bound() orb.Bound {
	return t.ToPolygon().Bound()
}

// RectToPolygon converts a bound into the equivalent closed polygon.
func RectToPolygon(rect orb.Bound) orb.Polygon {
	return orb.Polygon{rect.ToRing()}
}

// BoundOf returns the smallest bound containing every point of every geometry.
func BoundOf(geometries []orb.Geometry) (orb.Bound, errorsx.Error) {
	var bound orb.Bound
	found := false

	for _, geometry := range geometries {
		if geometry == nil {
			continue
		}

		geometryBound := geometry.Bound()
		if geometryBound.IsEmpty() || !isFiniteBound(geometryBound) {
			continue
		}

		if !found {
			bound = geometryBound
			found = true
			continue
		}

		bound = bound.Union(geometryBound)
	}

	if !found {
		return orb.Bound{}, errorsx.Wrap(ErrBoundingBoxCalculation, "geometries", len(geometries))
	}

	return bound, nil
}

// CentroidOf returns the centroid of all geometries taken together. Only the geometries of the
// highest dimension contribute: polygons weighted by area, then lines weighted by length, then the
// mean of the points. Degenerate polygons and lines count as the dimension below.
func CentroidOf(geometries []orb.Geometry) (orb.Point, errorsx.Error) {
	var sums centroidSums
	for _, geometry := range geometries {
		if geometry == nil {
			continue
		}
		sums.addGeometry(geometry)
	}

	for dimension := len(sums) - 1; dimension >= 0; dimension-- {
		if sums[dimension].weight > 0 {
			return sums[dimension].centroid(), nil
		}
	}

	return orb.Point{}, errorsx.Wrap(ErrCentroidCalculation, "geometries", len(geometries))
}

type weightedSum struct {
	x, y, weight float64
}

func (w *weightedSum) add(point orb.Point, weight float64) {
	if !isFinitePoint(point) || math.IsNaN(weight) || math.IsInf(weight, 0) {
		return
	}
	w.x += point.X() * weight
	w.y += point.Y() * weight
	w.weight += weight
}

func (w weightedSum) centroid() orb.Point {
	return orb.Point{w.x / w.weight, w.y / w.weight}
}

// centroidSums is indexed by dimension: points, lines, areas.
type centroidSums [3]weightedSum

func (s *centroidSums) addGeometry(geometry orb.Geometry) {
	switch g := geometry.(type) {
	case orb.Point:
		s[0].add(g, 1)
	case orb.MultiPoint:
		for _, point := range g {
			s[0].add(point, 1)
		}
	case orb.LineString:
		s.addPath(g)
	case orb.MultiLineString:
		for _, lineString := range g {
			s.addPath(lineString)
		}
	case orb.Ring:
		s.addPolygon(orb.Polygon{g})
	case orb.Polygon:
		s.addPolygon(g)
	case orb.MultiPolygon:
		for _, polygon := range g {
			s.addPolygon(polygon)
		}
	case orb.Bound:
		s.addPolygon(orb.Polygon{g.ToRing()})
	case orb.Collection:
		for _, child := range g {
			if child != nil {
				s.addGeometry(child)
			}
		}
	}
}

// addPath adds each segment at its midpoint, weighted by its length.
func (s *centroidSums) addPath(path []orb.Point) {
	var lineSum weightedSum
	for i := 1; i < len(path); i++ {
		length := planar.Distance(path[i-1], path[i])
		if length == 0 {
			continue
		}
		lineSum.add(orb.Point{(path[i-1].X() + path[i].X()) / 2, (path[i-1].Y() + path[i].Y()) / 2}, length)
	}

	if lineSum.weight > 0 {
		s[1].x += lineSum.x
		s[1].y += lineSum.y
		s[1].weight += lineSum.weight
		return
	}

	for _, point := range path {
		s[0].add(point, 1)
	}
}

func (s *centroidSums) addPolygon(polygon orb.Polygon) {
	if len(polygon) == 0 {
		return
	}

	centroid, area := planar.CentroidArea(polygon)
	area = math.Abs(area)
	if area > 0 && isFinitePoint(centroid) {
		s[2].add(centroid, area)
		return
	}

	s.addPath(polygon[0])
}

func isFinitePoint(point orb.Point) bool {
	for _, v := range []float64{point.X(), point.Y()} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	return true
}

func isFiniteBound(b orb.Bound) bool {
	for _, v := range []float64{b.Min.X(), b.Min.Y(), b.Max.X(), b.Max.Y()} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	return true
}
