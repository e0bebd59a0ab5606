package mapboxglstyle

import (
	"fmt"
	"strconv"

	"github.com/jamesrr39/goutil/errorsx"
)

const (
	FilterOperatorEquals   = "=="
	FilterOperatorNotEqual = "!="
	FilterOperatorAny      = "any"
	FilterOperatorAll      = "all"
	FilterOperatorNone     = "none"
	FilterOperatorIn       = "in"
	FilterOperatorNotIn    = "!in"
	FilterOperatorHas      = "has"
	FilterOperatorNotHas   = "!has"
)

const (
	FilterThingType           = "$type"
	FilterThingTypePoint      = "Point"
	FilterThingTypeLineString = "LineString"
	FilterThingTypePolygon    = "Polygon"

	FilterThingClass    = "class"
	FilterThingSubclass = "subclass"
)

/*
	"filter": ["all",["==","$type","Polygon"],["in","class","residential","suburb","neighbourhood"]]
*/

// Filter is a legacy Mapbox GL filter, as decoded from JSON.
type Filter interface{}

// filterFunc reports whether a feature with the given tags is shown.
type filterFunc func(tags map[string]string) bool

func showAll(tags map[string]string) bool {
	return true
}

// compileFilter turns a filter into a filterFunc. "class" and "subclass" are matched against the OSM tags
// the class is made up of in the source layer, falling back to a tag of the same name.
// Any other key is looked up in the tags directly.
// "$type" comparisons always pass: the layer type already decides which kind of geometry the style is for.
func compileFilter(filter Filter, sourceLayer string) (filterFunc, errorsx.Error) {
	if filter == nil {
		return showAll, nil
	}

	base, ok := filter.([]interface{})
	if !ok || len(base) == 0 {
		return nil, errorsx.Errorf("filter should be a non-empty array, but was %v", filter)
	}

	operator, ok := base[0].(string)
	if !ok {
		return nil, errorsx.Errorf("filter operator should be a string, but was %v", base[0])
	}

	switch operator {
	case FilterOperatorAny, FilterOperatorAll, FilterOperatorNone:
		var subFilters []filterFunc
		for _, subFilterComponent := range base[1:] {
			subFilter, err := compileFilter(subFilterComponent, sourceLayer)
			if err != nil {
				return nil, err
			}
			subFilters = append(subFilters, subFilter)
		}

		return combineFilters(operator, subFilters), nil
	case FilterOperatorEquals, FilterOperatorNotEqual, FilterOperatorIn, FilterOperatorNotIn:
		if len(base) < 3 {
			return nil, errorsx.Errorf("filter %q needs a key and at least one value, but was %v", operator, base)
		}
		if (operator == FilterOperatorEquals || operator == FilterOperatorNotEqual) && len(base) != 3 {
			return nil, errorsx.Errorf("filter %q needs a key and exactly one value, but was %v", operator, base)
		}

		thing, ok := base[1].(string)
		if !ok {
			return nil, errorsx.Errorf("filter key should be a string, but was %v", base[1])
		}

		if thing == FilterThingType {
			return showAll, nil
		}

		values, err := filterValues(base[2:])
		if err != nil {
			return nil, err
		}

		isIn := compileMembership(thing, values, sourceLayer)
		if operator == FilterOperatorNotEqual || operator == FilterOperatorNotIn {
			return func(tags map[string]string) bool {
				return !isIn(tags)
			}, nil
		}
		return isIn, nil
	case FilterOperatorHas, FilterOperatorNotHas:
		if len(base) != 2 {
			return nil, errorsx.Errorf("filter %q needs exactly one key, but was %v", operator, base)
		}
		key, ok := base[1].(string)
		if !ok {
			return nil, errorsx.Errorf("filter key should be a string, but was %v", base[1])
		}

		wantPresent := operator == FilterOperatorHas
		return func(tags map[string]string) bool {
			_, ok := tags[key]
			return ok == wantPresent
		}, nil
	default:
		return nil, errorsx.Errorf("filter operator not supported: %q", operator)
	}
}

func combineFilters(operator string, subFilters []filterFunc) filterFunc {
	return func(tags map[string]string) bool {
		for _, subFilter := range subFilters {
			shown := subFilter(tags)
			switch {
			case operator == FilterOperatorAny && shown:
				return true
			case operator == FilterOperatorAll && !shown:
				return false
			case operator == FilterOperatorNone && shown:
				return false
			}
		}

		return operator != FilterOperatorAny
	}
}

func compileMembership(thing string, values []string, sourceLayer string) filterFunc {
	var matchers []tagMatcher
	for _, value := range values {
		var mapped []tagMatcher
		var ok bool
		switch thing {
		case FilterThingClass:
			mapped, ok = mapClassToOSMTags(value, sourceLayer)
		case FilterThingSubclass:
			mapped, ok = mapSubclassToOSMTags(value)
		}

		if ok {
			matchers = append(matchers, mapped...)
		}
		matchers = append(matchers, tagMatcher{Key: thing, Value: value})
	}

	return func(tags map[string]string) bool {
		return anyMatches(matchers, tags)
	}
}

func filterValues(rawValues []interface{}) ([]string, errorsx.Error) {
	var values []string
	for _, rawValue := range rawValues {
		switch value := rawValue.(type) {
		case string:
			values = append(values, value)
		case float64:
			values = append(values, strconv.FormatFloat(value, 'f', -1, 64))
		case bool:
			values = append(values, strconv.FormatBool(value))
		default:
			return nil, errorsx.Errorf("unsupported filter value: %s", fmt.Sprint(rawValue))
		}
	}
	return values, nil
}
