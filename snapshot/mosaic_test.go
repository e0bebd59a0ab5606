package snapshot

import (
	"image"
	"image/color"
	"testing"

	snapshotting "github.com/jamesrr39/go-snapshot-testing"
	"github.com/jamesrr39/ownmap-snapshot/ownmap"
	"github.com/jamesrr39/ownmap-snapshot/tilefetch"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanTiles(t *testing.T) {
	viewport := ownmap.Viewport{TileSize: 256, Width: 800, Height: 600}

	plan := PlanTiles(viewport, 2, orb.Point{2, 2})

	snapshotting.AssertMatchesSnapshot(t, "tilePlan_800x600_zoom2", snapshotting.NewTextSnapshot(plan.String()))
}

func TestPlanTiles_coversCanvas(t *testing.T) {
	tests := []struct {
		name        string
		viewport    ownmap.Viewport
		centerWorld orb.Point
	}{
		{"centred on tile corner", ownmap.Viewport{TileSize: 256, Width: 800, Height: 600}, orb.Point{2, 2}},
		{"off-centre", ownmap.Viewport{TileSize: 256, Width: 300, Height: 200}, orb.Point{5.3, 7.9}},
		{"small tiles", ownmap.Viewport{TileSize: 64, Width: 150, Height: 150}, orb.Point{0.25, 0.75}},
		{"west of the antimeridian", ownmap.Viewport{TileSize: 256, Width: 512, Height: 256}, orb.Point{0.1, 1.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := PlanTiles(tt.viewport, 3, tt.centerWorld)

			covered := image.NewAlpha(image.Rect(0, 0, tt.viewport.Width, tt.viewport.Height))
			for _, placement := range plan.Placements {
				rect := image.Rectangle{Min: placement.Offset, Max: placement.Offset.Add(image.Pt(tt.viewport.TileSize, tt.viewport.TileSize))}
				rect = rect.Intersect(covered.Bounds())
				for x := rect.Min.X; x < rect.Max.X; x++ {
					for y := rect.Min.Y; y < rect.Max.Y; y++ {
						covered.SetAlpha(x, y, color.Alpha{A: 255})
					}
				}
			}

			for x := 0; x < tt.viewport.Width; x++ {
				for y := 0; y < tt.viewport.Height; y++ {
					require.Equal(t, uint8(255), covered.AlphaAt(x, y).A, "pixel (%d,%d) not covered", x, y)
				}
			}
		})
	}
}

func TestPlanTiles_keepsUnwrappedIndexes(t *testing.T) {
	viewport := ownmap.Viewport{TileSize: 256, Width: 512, Height: 256}

	plan := PlanTiles(viewport, 1, orb.Point{0.1, 1})

	assert.Equal(t, tilefetch.Coord{X: -1, Y: 0}, plan.Placements[0].Coord)
}

func TestAssembleMosaic(t *testing.T) {
	viewport := ownmap.Viewport{TileSize: 4, Width: 6, Height: 4}
	plan := TilePlan{Placements: []TilePlacement{
		{tilefetch.Coord{X: 0, Y: 0}, image.Pt(-1, 0)},
		{tilefetch.Coord{X: 1, Y: 0}, image.Pt(3, 0)},
	}}

	red := image.NewUniform(color.RGBA{255, 0, 0, 255})
	tile := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			tile.Set(x, y, red)
		}
	}

	// tile 1/0 is missing and stays transparent
	mosaic := assembleMosaic(viewport, plan, map[tilefetch.Coord]image.Image{{X: 0, Y: 0}: tile})

	assert.Equal(t, color.RGBA{255, 0, 0, 255}, mosaic.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, mosaic.RGBAAt(2, 3))
	assert.Equal(t, color.RGBA{}, mosaic.RGBAAt(3, 0))
	assert.Equal(t, color.RGBA{}, mosaic.RGBAAt(5, 3))
}
