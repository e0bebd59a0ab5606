package snapshot

import (
	"fmt"
	"image"
	"image/draw"
	"math"
	"strings"

	"github.com/jamesrr39/ownmap-snapshot/ownmap"
	"github.com/jamesrr39/ownmap-snapshot/tilefetch"
	"github.com/paulmach/orb"
)

// TilePlacement is where the top-left corner of a tile lands on the canvas.
type TilePlacement struct {
	Coord  tilefetch.Coord
	Offset image.Point
}

type TilePlan struct {
	Zoom       uint8
	Placements []TilePlacement
}

// PlanTiles works out which tiles cover a canvas centred on centerWorld. Tile indexes are not
// wrapped here; tiles off either side of the antimeridian keep their out-of-range index.
func PlanTiles(viewport ownmap.Viewport, zoomLevel uint8, centerWorld orb.Point) TilePlan {
	tileSize := float64(viewport.TileSize)
	halfX := 0.5 * float64(viewport.Width) / tileSize
	halfY := 0.5 * float64(viewport.Height) / tileSize

	minX := int(math.Floor(centerWorld.X() - halfX))
	maxX := int(math.Ceil(centerWorld.X() + halfX))
	minY := int(math.Floor(centerWorld.Y() - halfY))
	maxY := int(math.Ceil(centerWorld.Y() + halfY))

	plan := TilePlan{Zoom: zoomLevel}
	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			plan.Placements = append(plan.Placements, TilePlacement{
				Coord: tilefetch.Coord{X: x, Y: y},
				Offset: image.Point{
					X: int((float64(x)-centerWorld.X())*tileSize + float64(viewport.Width)/2),
					Y: int((float64(y)-centerWorld.Y())*tileSize + float64(viewport.Height)/2),
				},
			})
		}
	}

	return plan
}

func (p TilePlan) Coords() []tilefetch.Coord {
	coords := make([]tilefetch.Coord, len(p.Placements))
	for i, placement := range p.Placements {
		coords[i] = placement.Coord
	}
	return coords
}

func (p TilePlan) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("zoom %d, %d tiles\n", p.Zoom, len(p.Placements)))
	for _, placement := range p.Placements {
		sb.WriteString(fmt.Sprintf("%s %s\n", placement.Coord, placement.Offset))
	}
	return sb.String()
}

// assembleMosaic pastes the tiles into a transparent canvas-sized raster. Placements without a
// tile are left transparent.
func assembleMosaic(viewport ownmap.Viewport, plan TilePlan, tiles map[tilefetch.Coord]image.Image) *image.RGBA {
	base := image.NewRGBA(image.Rect(0, 0, viewport.Width, viewport.Height))

	for _, placement := range plan.Placements {
		tile, ok := tiles[placement.Coord]
		if !ok {
			continue
		}

		dstRect := image.Rectangle{
			Min: placement.Offset,
			Max: placement.Offset.Add(image.Pt(viewport.TileSize, viewport.TileSize)),
		}
		draw.Draw(base, dstRect, tile, tile.Bounds().Min, draw.Src)
	}

	return base
}
