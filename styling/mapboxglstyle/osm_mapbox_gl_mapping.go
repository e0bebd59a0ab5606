package mapboxglstyle

// tagMatcher matches a feature tag. A Value of "*" matches any value of Key.
type tagMatcher struct {
	Key   string
	Value string
}

func (m tagMatcher) matches(tags map[string]string) bool {
	value, ok := tags[m.Key]
	if !ok {
		return false
	}

	return m.Value == "*" || m.Value == value
}

func anyMatches(matchers []tagMatcher, tags map[string]string) bool {
	for _, matcher := range matchers {
		if matcher.matches(tags) {
			return true
		}
	}
	return false
}

// mapClassToOSMTags returns the OSM tags that make up an OpenMapTiles/Mapbox class in a source layer.
// ok is false if there is no known mapping.
// https://docs.mapbox.com/vector-tiles/reference/mapbox-streets-v8/
func mapClassToOSMTags(className, sourceLayer string) ([]tagMatcher, bool) {
	switch sourceLayer {
	case "landuse", "landcover":
		// according to the docs, "landuse" should be used. However some mapbox styles use "landcover"
		switch className {
		case "agriculture", "farmland":
			return []tagMatcher{
				{"landuse", "farmland"},
				{"landuse", "meadow"},
				{"landuse", "orchard"},
				{"landuse", "agriculture"}, // deprecated by OSM, still may be usages of it though.
			}, true
		case "grass":
			return []tagMatcher{
				{"landuse", "grass"},
				{"natural", "grassland"},
			}, true
		case "wood":
			return []tagMatcher{
				{"natural", "wood"},
				{"landuse", "forest"},
				{"landcover", "trees"},
			}, true
		case "sand":
			return []tagMatcher{{"natural", "sand"}}, true
		case "national_park":
			return []tagMatcher{{"boundary", "national_park"}}, true
		case "residential", "suburb", "neighbourhood":
			return []tagMatcher{{"landuse", "residential"}}, true
		}
	case "transportation":
		switch className {
		case "pier":
			return []tagMatcher{{"man_made", "pier"}}, true
		case "path":
			return []tagMatcher{
				{"highway", "path"},
				{"highway", "footway"},
				{"highway", "cycleway"},
				{"highway", "bridleway"},
				{"highway", "steps"},
			}, true
		case "track":
			return []tagMatcher{
				{"highway", "track"},
				{"leisure", "track"},
				{"cycleway", "track"},
			}, true
		case "minor", "minor_road":
			return []tagMatcher{
				{"highway", "unclassified"},
				{"highway", "residential"},
				{"highway", "living_street"},
			}, true
		case "aeroway":
			return []tagMatcher{{"aeroway", "*"}}, true
		case "trunk", "primary", "service", "secondary", "tertiary", "motorway":
			return []tagMatcher{
				{"highway", className},
				{"highway", className + "_link"},
			}, true
		case "rail":
			return []tagMatcher{{"railway", "rail"}}, true
		case "transit":
			return []tagMatcher{
				{"railway", "*"},
				{"landuse", "railway"},
			}, true
		}
	case "aeroway", "airport_label", "housenum_label", "place", "waterway":
		return []tagMatcher{{sourceLayer, className}}, true
	case "water":
		return []tagMatcher{{"natural", "water"}, {"water", className}}, true
	}

	return nil, false
}

func mapSubclassToOSMTags(subclassName string) ([]tagMatcher, bool) {
	switch subclassName {
	case "ice_shelf":
		return []tagMatcher{{"glacier:type", "shelf"}}, true
	case "glacier":
		return []tagMatcher{{"natural", "glacier"}}, true
	case "forest":
		return []tagMatcher{{"landuse", "forest"}}, true
	case "wood":
		return []tagMatcher{{"natural", "wood"}}, true
	}

	return nil, false
}

// areTagsInSourceLayer reports whether a feature with these tags would be put in the source layer of a vector tile.
// Every feature is in the unnamed source layer.
func areTagsInSourceLayer(sourceLayer string, tags map[string]string) bool {
	if sourceLayer == "" {
		return true
	}

	for key := range tags {
		switch sourceLayer {
		case "transportation":
			switch key {
			case "highway", "railway", "aeroway":
				return true
			}
		case "landcover", "landuse":
			switch key {
			case "landcover", "landuse", "natural":
				return true
			}
		case "water":
			switch key {
			case "water", "natural":
				return true
			}
		default:
			if key == sourceLayer {
				return true
			}
		}
	}
	return false
}
