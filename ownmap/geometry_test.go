package ownmap

import (
	"strings"
	"testing"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundOf(t *testing.T) {
	tests := []struct {
		name       string
		geometries []orb.Geometry
		want       orb.Bound
		wantErr    error
	}{
		{
			"single point",
			[]orb.Geometry{orb.Point{1, 2}},
			orb.Bound{Min: orb.Point{1, 2}, Max: orb.Point{1, 2}},
			nil,
		}, {
			"point and line string",
			[]orb.Geometry{orb.Point{-5, 2}, orb.LineString{{1, 1}, {3, 7}}},
			orb.Bound{Min: orb.Point{-5, 1}, Max: orb.Point{3, 7}},
			nil,
		}, {
			"empty geometries are skipped",
			[]orb.Geometry{orb.LineString{}, orb.Point{4, 4}},
			orb.Bound{Min: orb.Point{4, 4}, Max: orb.Point{4, 4}},
			nil,
		}, {
			"no geometries",
			nil,
			orb.Bound{},
			ErrBoundingBoxCalculation,
		}, {
			"only empty geometries",
			[]orb.Geometry{orb.MultiPoint{}, orb.Collection{}},
			orb.Bound{},
			ErrBoundingBoxCalculation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BoundOf(tt.geometries)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, errorsx.Cause(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCentroidOf(t *testing.T) {
	square := orb.Polygon{orb.Ring{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}}

	tests := []struct {
		name       string
		geometries []orb.Geometry
		want       orb.Point
	}{
		{"mean of points", []orb.Geometry{orb.Point{0, 0}, orb.Point{2, 4}}, orb.Point{1, 2}},
		{"single point away from the origin", []orb.Geometry{orb.Point{10, 50}}, orb.Point{10, 50}},
		{"multi point", []orb.Geometry{orb.MultiPoint{{10, 50}, {12, 52}, {14, 54}}}, orb.Point{12, 52}},
		{"line", []orb.Geometry{orb.LineString{{10, 50}, {12, 50}}}, orb.Point{11, 50}},
		{
			"lines are weighted by length",
			[]orb.Geometry{orb.LineString{{0, 0}, {3, 0}}, orb.LineString{{10, 10}, {10, 11}}},
			// midpoints (1.5,0) weight 3 and (10,10.5) weight 1
			orb.Point{(1.5*3 + 10) / 4, 10.5 / 4},
		},
		{"line outranks point", []orb.Geometry{orb.Point{50, 50}, orb.LineString{{10, 50}, {12, 50}}}, orb.Point{11, 50}},
		{"polygon outranks point", []orb.Geometry{orb.Point{50, 50}, square}, orb.Point{1, 1}},
		{
			"polygons are weighted by area",
			[]orb.Geometry{square, orb.Bound{Min: orb.Point{10, 0}, Max: orb.Point{12, 6}}},
			// (1,1) weight 4 and (11,3) weight 12
			orb.Point{(4 + 11*12) / 16.0, (4 + 3*12) / 16.0},
		},
		{"zero length line counts as points", []orb.Geometry{orb.LineString{{10, 50}, {10, 50}}}, orb.Point{10, 50}},
		{"collection", []orb.Geometry{orb.Collection{orb.Point{10, 50}, orb.LineString{{20, 40}, {22, 40}}}}, orb.Point{21, 40}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CentroidOf(tt.geometries)
			require.NoError(t, err)
			assert.InDelta(t, tt.want.X(), got.X(), 1e-9)
			assert.InDelta(t, tt.want.Y(), got.Y(), 1e-9)
		})
	}
}

func TestCentroidOf_errors(t *testing.T) {
	for _, geometries := range [][]orb.Geometry{nil, {orb.MultiPoint{}}, {orb.Collection{}}, {orb.Polygon{}}} {
		_, err := CentroidOf(geometries)
		require.Error(t, err)
		assert.Equal(t, ErrCentroidCalculation, errorsx.Cause(err))
	}
}

func TestTriangleAndLine(t *testing.T) {
	triangle := Triangle{A: orb.Point{0, 0}, B: orb.Point{1, 0}, C: orb.Point{0, 1}}
	polygon := triangle.ToPolygon()
	require.Len(t, polygon, 1)
	assert.Equal(t, orb.Ring{{0, 0}, {1, 0}, {0, 1}, {0, 0}}, polygon[0])
	assert.Equal(t, orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{1, 1}}, triangle.Bound())

	line := Line{Start: orb.Point{3, 1}, End: orb.Point{1, 3}}
	assert.Equal(t, orb.LineString{{3, 1}, {1, 3}}, line.ToLineString())
	assert.Equal(t, orb.Bound{Min: orb.Point{1, 1}, Max: orb.Point{3, 3}}, line.Bound())
}

const testOSMDocument = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6">
	<node id="1" lat="52.0" lon="13.0"/>
	<node id="2" lat="52.1" lon="13.1"/>
	<node id="3" lat="52.2" lon="13.0"/>
	<node id="4" lat="52.5" lon="13.5">
		<tag k="amenity" v="cafe"/>
		<tag k="name" v="Corner Cafe"/>
	</node>
	<way id="10">
		<nd ref="1"/>
		<nd ref="2"/>
		<tag k="highway" v="residential"/>
		<tag k="name" v="Main Street"/>
	</way>
	<way id="11">
		<nd ref="1"/>
		<nd ref="2"/>
		<nd ref="3"/>
		<nd ref="1"/>
		<tag k="landuse" v="forest"/>
	</way>
	<way id="12">
		<nd ref="1"/>
		<nd ref="99"/>
	</way>
</osm>`

func TestReadOSMFeatures(t *testing.T) {
	features, err := ReadOSMFeatures(strings.NewReader(testOSMDocument))
	require.NoError(t, err)
	require.Len(t, features, 3)

	assert.Equal(t, orb.LineString{{13.0, 52.0}, {13.1, 52.1}}, features[0].Geometry)
	assert.Equal(t, "Main Street", features[0].Name)
	assert.Equal(t, "residential", features[0].Tags["highway"])

	assert.Equal(t, orb.Polygon{orb.Ring{{13.0, 52.0}, {13.1, 52.1}, {13.0, 52.2}, {13.0, 52.0}}}, features[1].Geometry)
	assert.Equal(t, "", features[1].Name)
	assert.Equal(t, "forest", features[1].Tags["landuse"])

	assert.Equal(t, orb.Point{13.5, 52.5}, features[2].Geometry)
	assert.Equal(t, "Corner Cafe", features[2].Name)
}
