package ownmap

import (
	"encoding/xml"
	"io"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

// Feature is a geometry read from an input file, together with the name it should be labelled with (if any)
// and the tags or properties it was read with.
type Feature struct {
	Geometry orb.Geometry
	Name     string
	Tags     map[string]string
}

// ReadOSMFeatures reads an OSM XML document. Tagged nodes become points, open ways become line
// strings and closed ways become polygons. Ways referencing nodes missing from the document are skipped.
func ReadOSMFeatures(reader io.Reader) ([]Feature, errorsx.Error) {
	doc := new(osm.OSM)
	err := xml.NewDecoder(reader).Decode(doc)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	nodeLocations := make(map[osm.NodeID]orb.Point)
	for _, node := range doc.Nodes {
		nodeLocations[node.ID] = orb.Point{node.Lon, node.Lat}
	}

	var features []Feature

	for _, way := range doc.Ways {
		lineString, ok := wayToLineString(way, nodeLocations)
		if !ok {
			continue
		}

		name := way.Tags.Find("name")
		tags := way.Tags.Map()

		if isClosedWay(way) {
			features = append(features, Feature{orb.Polygon{orb.Ring(lineString)}, name, tags})
			continue
		}

		features = append(features, Feature{lineString, name, tags})
	}

	for _, node := range doc.Nodes {
		if len(node.Tags) == 0 {
			// untagged nodes only give ways their shape
			continue
		}

		features = append(features, Feature{orb.Point{node.Lon, node.Lat}, node.Tags.Find("name"), node.Tags.Map()})
	}

	return features, nil
}

func wayToLineString(way *osm.Way, nodeLocations map[osm.NodeID]orb.Point) (orb.LineString, bool) {
	var lineString orb.LineString
	for _, wayNode := range way.Nodes {
		if wayNode.Lat != 0 || wayNode.Lon != 0 {
			lineString = append(lineString, orb.Point{wayNode.Lon, wayNode.Lat})
			continue
		}

		location, ok := nodeLocations[wayNode.ID]
		if !ok {
			return nil, false
		}
		lineString = append(lineString, location)
	}

	return lineString, len(lineString) >= 2
}

func isClosedWay(way *osm.Way) bool {
	if len(way.Nodes) < 4 {
		return false
	}

	return way.Nodes[0].ID == way.Nodes[len(way.Nodes)-1].ID
}
