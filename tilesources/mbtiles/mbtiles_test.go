package mbtiles

import (
	"bytes"
	"context"
	"database/sql"
	"image"
	"image/color"
	"image/png"
	"io"
	"path/filepath"
	"testing"

	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/ownmap-snapshot/tilefetch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodedTile(t *testing.T, c color.Color) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 256, 256))
	img.Set(0, 0, c)

	buf := bytes.NewBuffer(nil)
	require.NoError(t, png.Encode(buf, img))

	return buf.Bytes()
}

func colorAtOrigin(img image.Image) color.RGBA {
	r, g, b, a := img.At(0, 0).RGBA()
	return color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
}

func newTestTileDB(t *testing.T) *TileDB {
	tileDB, err := OpenSQLite(filepath.Join(t.TempDir(), "tiles.mbtiles"))
	require.NoError(t, err)
	t.Cleanup(func() {
		tileDB.Close()
	})

	require.NoError(t, tileDB.CreateSchema())

	return tileDB
}

func TestFlipRow(t *testing.T) {
	tests := []struct {
		y         int
		zoomLevel uint8
		expected  int
	}{
		{0, 0, 0},
		{0, 1, 1},
		{1, 1, 0},
		{3, 3, 4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, flipRow(tt.y, tt.zoomLevel))
		assert.Equal(t, tt.y, flipRow(flipRow(tt.y, tt.zoomLevel), tt.zoomLevel))
	}
}

func TestTileDB_FetchTiles(t *testing.T) {
	tileDB := newTestTileDB(t)

	require.NoError(t, tileDB.InsertTile(0, 0, 1, encodedTile(t, color.RGBA{1, 0, 0, 255})))
	require.NoError(t, tileDB.InsertTile(1, 1, 1, encodedTile(t, color.RGBA{2, 0, 0, 255})))
	require.NoError(t, tileDB.InsertTile(1, 0, 2, encodedTile(t, color.RGBA{3, 0, 0, 255})))
	require.NoError(t, tileDB.InsertTile(0, 1, 1, encodedTile(t, color.RGBA{4, 0, 0, 255})))

	// 0/1 matches the requested columns and rows, but wasn't asked for. 1/0 isn't stored at zoom 1.
	tiles, err := tileDB.FetchTiles([]tilefetch.Coord{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 1, Y: 0}}, 1)
	require.NoError(t, err)
	require.Len(t, tiles, 2)

	colors := make(map[tilefetch.Coord]color.RGBA)
	for _, tile := range tiles {
		colors[tile.Coord] = colorAtOrigin(tile.Image)
	}
	assert.Equal(t, map[tilefetch.Coord]color.RGBA{
		{X: 0, Y: 0}: {1, 0, 0, 255},
		{X: 1, Y: 1}: {2, 0, 0, 255},
	}, colors)

	tiles, err = tileDB.FetchTiles(nil, 1)
	require.NoError(t, err)
	assert.Empty(t, tiles)
}

func TestTileDB_storesRowsTMSStyle(t *testing.T) {
	tileDB := newTestTileDB(t)

	require.NoError(t, tileDB.InsertTile(2, 0, 2, encodedTile(t, color.White)))

	var row int
	require.NoError(t, tileDB.db.Get(&row, `SELECT tile_row FROM tiles WHERE zoom_level = 2 AND tile_column = 2`))
	assert.Equal(t, 3, row)
}

func TestTileDB_FetchTile(t *testing.T) {
	tileDB := newTestTileDB(t)

	require.NoError(t, tileDB.InsertTile(0, 0, 0, encodedTile(t, color.RGBA{9, 9, 9, 255})))
	require.NoError(t, tileDB.InsertTile(0, 0, 0, encodedTile(t, color.RGBA{7, 7, 7, 255})))

	img, err := tileDB.FetchTile(0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{7, 7, 7, 255}, colorAtOrigin(img))

	_, err = tileDB.FetchTile(0, 0, 5)
	assert.Equal(t, sql.ErrNoRows, err)
}

func TestTileDB_Metadata(t *testing.T) {
	tileDB := newTestTileDB(t)

	require.NoError(t, tileDB.SetMetadata("format", "jpg"))
	require.NoError(t, tileDB.SetMetadata("format", "png"))
	require.NoError(t, tileDB.SetMetadata("name", "test tiles"))

	metadata, err := tileDB.Metadata()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"format": "png", "name": "test tiles"}, metadata)
}

func TestCache_FetchTile(t *testing.T) {
	tileDB := newTestTileDB(t)

	upstreamCalls := 0
	upstream := tilefetch.IndividualFetcherFunc(func(x, y int, zoomLevel uint8) (image.Image, error) {
		upstreamCalls++
		img := image.NewRGBA(image.Rect(0, 0, 256, 256))
		img.Set(0, 0, color.RGBA{uint8(x), uint8(y), zoomLevel, 255})
		return img, nil
	})

	cache := NewCache(logpkg.NewLogger(io.Discard, logpkg.LogLevelError), tileDB, upstream)

	for i := 0; i < 2; i++ {
		img, err := cache.FetchTile(1, 2, 3)
		require.NoError(t, err)
		assert.Equal(t, color.RGBA{1, 2, 3, 255}, colorAtOrigin(img))
	}

	assert.Equal(t, 1, upstreamCalls)
}

func TestTileDB_asBatchSource(t *testing.T) {
	tileDB := newTestTileDB(t)
	require.NoError(t, tileDB.InsertTile(0, 0, 1, encodedTile(t, color.White)))
	require.NoError(t, tileDB.InsertTile(1, 0, 1, encodedTile(t, color.White)))

	orchestrator := tilefetch.NewOrchestrator(nil, tilefetch.Batch(tileDB), 256, 1)

	tiles, err := orchestrator.FetchTiles(context.Background(), []tilefetch.Coord{{X: -1, Y: 0}, {X: 0, Y: 0}, {X: 0, Y: 1}}, 1)
	require.NoError(t, err)

	assert.Len(t, tiles, 2)
	assert.Contains(t, tiles, tilefetch.Coord{X: -1, Y: 0})
	assert.Contains(t, tiles, tilefetch.Coord{X: 0, Y: 0})
}
