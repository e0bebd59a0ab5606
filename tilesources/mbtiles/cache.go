package mbtiles

import (
	"bytes"
	"database/sql"
	"image"
	"image/png"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/ownmap-snapshot/tilefetch"
)

// Cache serves tiles from a TileDB, falling back to an upstream fetcher for tiles it doesn't have
// yet. Fetched tiles are stored as PNGs.
type Cache struct {
	logger   *logpkg.Logger
	tileDB   *TileDB
	upstream tilefetch.IndividualFetcher
}

func NewCache(logger *logpkg.Logger, tileDB *TileDB, upstream tilefetch.IndividualFetcher) *Cache {
	return &Cache{logger, tileDB, upstream}
}

func (c *Cache) FetchTile(x, y int, zoomLevel uint8) (image.Image, error) {
	img, err := c.tileDB.FetchTile(x, y, zoomLevel)
	if err == nil {
		return img, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	img, err = c.upstream.FetchTile(x, y, zoomLevel)
	if err != nil {
		return nil, err
	}

	buf := bytes.NewBuffer(nil)
	err = png.Encode(buf, img)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	insertErr := c.tileDB.InsertTile(x, y, zoomLevel, buf.Bytes())
	if insertErr != nil {
		c.logger.Warn("couldn't cache tile %d/%d/%d in %q. Error: %s", zoomLevel, x, y, c.tileDB.Name(), insertErr)
	}

	return img, nil
}
