package mapboxglstyle

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/jamesrr39/goutil/errorsx"
)

// zoomFunction is a legacy Mapbox GL zoom function, e.g. {"base": 1.4, "stops": [[10, 8], [20, 14]]}.
type zoomFunction struct {
	Base  float64             `json:"base"`
	Stops [][]json.RawMessage `json:"stops"`
}

// interpolationFactor is how far zoomLevel is between two stops, following the exponential curve of base.
func interpolationFactor(base, zoomLevel, lowerZoom, upperZoom float64) float64 {
	difference := upperZoom - lowerZoom
	if difference == 0 {
		return 0
	}
	progress := zoomLevel - lowerZoom
	if base == 1 || base == 0 {
		return progress / difference
	}

	return (math.Pow(base, progress) - 1) / (math.Pow(base, difference) - 1)
}

// stopIndex returns the index of the last stop at or below zoomLevel, and whether zoomLevel is between two stops.
func stopIndex(stopZooms []float64, zoomLevel float64) (int, bool) {
	idx := sort.Search(len(stopZooms), func(i int) bool {
		return stopZooms[i] > zoomLevel
	}) - 1

	if idx < 0 {
		return 0, false
	}

	return idx, idx < len(stopZooms)-1
}

func (f zoomFunction) stopZooms() ([]float64, errorsx.Error) {
	var zooms []float64
	for i, stop := range f.Stops {
		if len(stop) != 2 {
			return nil, errorsx.Errorf("zoom function stop %d should have 2 elements, but had %d", i, len(stop))
		}

		var zoomLevel float64
		err := json.Unmarshal(stop[0], &zoomLevel)
		if err != nil {
			return nil, errorsx.Wrap(err, "stopIndex", i)
		}

		if i > 0 && zoomLevel < zooms[i-1] {
			return nil, errorsx.Errorf("zoom function stops should be in ascending zoom order")
		}
		zooms = append(zooms, zoomLevel)
	}

	if len(zooms) == 0 {
		return nil, errorsx.Errorf("zoom function has no stops")
	}

	return zooms, nil
}

// NumberOrFunctionWrapperType is a number, or a zoom function returning a number.
// Expressions (arrays) are not supported, and leave the value unset.
type NumberOrFunctionWrapperType struct {
	value     *float64
	stopZooms []float64
	stops     []float64
	base      float64
}

func (n *NumberOrFunctionWrapperType) UnmarshalJSON(data []byte) error {
	var value float64
	err := json.Unmarshal(data, &value)
	if err == nil {
		n.value = &value
		return nil
	}

	var function zoomFunction
	err = json.Unmarshal(data, &function)
	if err != nil {
		return nil
	}

	zooms, zoomErr := function.stopZooms()
	if zoomErr != nil {
		return zoomErr
	}

	for i, stop := range function.Stops {
		var stopValue float64
		err = json.Unmarshal(stop[1], &stopValue)
		if err != nil {
			return errorsx.Wrap(err, "stopIndex", i)
		}
		n.stops = append(n.stops, stopValue)
	}
	n.stopZooms = zooms
	n.base = function.Base

	return nil
}

// GetValueAtZoomLevel returns the value at the zoom level, or fallback if it isn't set.
func (n *NumberOrFunctionWrapperType) GetValueAtZoomLevel(zoomLevel float64, fallback float64) float64 {
	if n == nil {
		return fallback
	}
	if n.value != nil {
		return *n.value
	}
	if len(n.stops) == 0 {
		return fallback
	}

	idx, isBetween := stopIndex(n.stopZooms, zoomLevel)
	if !isBetween {
		return n.stops[idx]
	}

	t := interpolationFactor(n.base, zoomLevel, n.stopZooms[idx], n.stopZooms[idx+1])
	return n.stops[idx] + (n.stops[idx+1]-n.stops[idx])*t
}

// ColorOrFunctionWrapperType is a colour, or a zoom function returning a colour.
// Expressions (arrays) are not supported, and leave the colour unset.
type ColorOrFunctionWrapperType struct {
	value     *paintColor
	stopZooms []float64
	stops     []paintColor
	base      float64
}

func (c *ColorOrFunctionWrapperType) UnmarshalJSON(data []byte) error {
	var str string
	err := json.Unmarshal(data, &str)
	if err == nil {
		value, parseErr := parseColor(str)
		if parseErr != nil {
			return parseErr
		}
		c.value = &value
		return nil
	}

	var function zoomFunction
	err = json.Unmarshal(data, &function)
	if err != nil {
		return nil
	}

	zooms, zoomErr := function.stopZooms()
	if zoomErr != nil {
		return zoomErr
	}

	for i, stop := range function.Stops {
		var stopStr string
		err = json.Unmarshal(stop[1], &stopStr)
		if err != nil {
			return errorsx.Wrap(err, "stopIndex", i)
		}

		stopColor, parseErr := parseColor(stopStr)
		if parseErr != nil {
			return errorsx.Wrap(parseErr, "stopIndex", i)
		}
		c.stops = append(c.stops, stopColor)
	}
	c.stopZooms = zooms
	c.base = function.Base

	return nil
}

// GetColorAtZoomLevel returns the colour at the zoom level, with its alpha multiplied by opacity.
// ok is false if the colour isn't set.
func (c *ColorOrFunctionWrapperType) GetColorAtZoomLevel(zoomLevel float64, opacity float64) (paintColor, bool) {
	if c == nil {
		return paintColor{}, false
	}

	var value paintColor
	switch {
	case c.value != nil:
		value = *c.value
	case len(c.stops) == 0:
		return paintColor{}, false
	default:
		idx, isBetween := stopIndex(c.stopZooms, zoomLevel)
		value = c.stops[idx]
		if isBetween {
			t := interpolationFactor(c.base, zoomLevel, c.stopZooms[idx], c.stopZooms[idx+1])
			value = value.blend(c.stops[idx+1], t)
		}
	}

	value.Alpha *= opacity
	return value, true
}
