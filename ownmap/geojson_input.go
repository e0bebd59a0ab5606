package ownmap

import (
	"fmt"
	"io"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/paulmach/orb/geojson"
)

// ReadGeoJSONFeatures reads a GeoJSON FeatureCollection. A feature is labelled with its "label"
// property, or failing that its "name" property. All properties are kept as tags.
func ReadGeoJSONFeatures(reader io.Reader) ([]Feature, errorsx.Error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	featureCollection, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	var features []Feature
	for i, feature := range featureCollection.Features {
		if feature.Geometry == nil {
			return nil, errorsx.Errorf("feature %d has no geometry", i)
		}

		tags := make(map[string]string)
		for key, value := range feature.Properties {
			if value == nil {
				continue
			}
			tags[key] = fmt.Sprint(value)
		}

		name := tags["label"]
		if name == "" {
			name = tags["name"]
		}

		features = append(features, Feature{feature.Geometry, name, tags})
	}

	return features, nil
}
