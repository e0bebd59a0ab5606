package snapshot

import (
	"math"

	"github.com/jamesrr39/ownmap-snapshot/ownmap"
	"github.com/paulmach/orb"
)

const fallbackZoom = 1

// SelectZoom returns the highest zoom level, at most maxLevel, at which the whole bound fits on the
// canvas. If it fits at no level, it returns 1.
func SelectZoom(bound orb.Bound, maxLevel uint8, viewport ownmap.Viewport) uint8 {
	for level := int(maxLevel); level >= 0; level-- {
		min := ownmap.GeoToWorld(uint8(level), bound.Min)
		max := ownmap.GeoToWorld(uint8(level), bound.Max)

		extentX := math.Abs(max.X()-min.X()) * float64(viewport.TileSize)
		extentY := math.Abs(max.Y()-min.Y()) * float64(viewport.TileSize)

		if extentX > float64(viewport.Width) || extentY > float64(viewport.Height) {
			continue
		}

		return uint8(level)
	}

	return fallbackZoom
}
