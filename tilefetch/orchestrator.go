package tilefetch

import (
	"context"
	"fmt"
	"image"
	"os"
	"sync/atomic"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/ownmap-snapshot/ownmap"
	"github.com/jamesrr39/semaphore"
)

// Orchestrator fetches tiles from a Source of any kind. Tile coordinates are wrapped into the
// valid range for the zoom level and de-duplicated before they reach the source, and every tile is
// checked against the expected tile size.
type Orchestrator struct {
	logger      *logpkg.Logger
	source      Source
	tileSize    int
	parallelism uint
	bridge      *Bridge
}

// NewOrchestrator creates an orchestrator. Individual sources are fetched with up to parallelism
// tiles in flight, or one at a time when parallelism is 1 or less.
func NewOrchestrator(logger *logpkg.Logger, source Source, tileSize int, parallelism int) *Orchestrator {
	if parallelism < 1 {
		parallelism = 1
	}

	if logger == nil {
		logger = logpkg.NewLogger(os.Stderr, logpkg.LogLevelWarn)
	}

	o := &Orchestrator{
		logger:      logger,
		source:      source,
		tileSize:    tileSize,
		parallelism: uint(parallelism),
	}

	switch source.Kind() {
	case KindAsyncIndividual, KindAsyncBatch:
		o.bridge = NewBridge()
	}

	return o
}

// Close releases the async bridge, if there is one.
func (o *Orchestrator) Close() {
	if o.bridge != nil {
		o.bridge.Close()
	}
}

// FetchTiles returns the tile image for every requested coordinate, keyed by the coordinate as it
// was requested (i.e. before wrapping). Coordinates the source did not return a tile for are absent.
func (o *Orchestrator) FetchTiles(ctx context.Context, coords []Coord, zoomLevel uint8) (map[Coord]image.Image, errorsx.Error) {
	var uniqueCoords []Coord
	seen := make(map[Coord]bool)
	for _, coord := range coords {
		wrapped := wrapCoord(coord, zoomLevel)
		if seen[wrapped] {
			continue
		}
		seen[wrapped] = true
		uniqueCoords = append(uniqueCoords, wrapped)
	}

	o.logger.Debug("fetching %d tiles (%d requested) at zoom %d from %s tile source", len(uniqueCoords), len(coords), zoomLevel, o.source.Kind())

	tiles, err := o.fetch(ctx, uniqueCoords, zoomLevel)
	if err != nil {
		return nil, errorsx.Wrap(err, "zoom", zoomLevel, "sourceKind", o.source.Kind().String())
	}

	tilesByCoord := make(map[Coord]image.Image)
	for _, tile := range tiles {
		if tile.Image == nil {
			continue
		}

		err := o.checkTileSize(tile)
		if err != nil {
			return nil, err
		}

		tilesByCoord[wrapCoord(tile.Coord, zoomLevel)] = tile.Image
	}

	results := make(map[Coord]image.Image)
	for _, coord := range coords {
		img, ok := tilesByCoord[wrapCoord(coord, zoomLevel)]
		if !ok {
			o.logger.Warn("tile source returned no tile for %s at zoom %d, leaving it blank", coord, zoomLevel)
			continue
		}
		results[coord] = img
	}

	return results, nil
}

func (o *Orchestrator) fetch(ctx context.Context, coords []Coord, zoomLevel uint8) ([]Tile, errorsx.Error) {
	switch o.source.Kind() {
	case KindIndividual:
		return o.fetchIndividual(ctx, coords, zoomLevel)
	case KindBatch:
		return o.fetchBatch(coords, zoomLevel)
	case KindAsyncIndividual:
		return o.bridge.Do(ctx, func(ctx context.Context) ([]Tile, errorsx.Error) {
			return fetchAsyncIndividual(ctx, o.source.asyncIndividual, coords, zoomLevel)
		})
	case KindAsyncBatch:
		return o.bridge.Do(ctx, func(ctx context.Context) ([]Tile, errorsx.Error) {
			return fetchAsyncBatch(ctx, o.source.asyncBatch, coords, zoomLevel)
		})
	default:
		return nil, errorsx.Errorf("unknown tile source kind: %d", o.source.Kind())
	}
}

func (o *Orchestrator) fetchBatch(coords []Coord, zoomLevel uint8) ([]Tile, errorsx.Error) {
	tiles, err := o.source.batch.FetchTiles(coords, zoomLevel)
	if err != nil {
		return nil, errorsx.Wrap(&ownmap.OpaqueError{Err: err})
	}

	return tiles, nil
}

func (o *Orchestrator) fetchIndividual(ctx context.Context, coords []Coord, zoomLevel uint8) ([]Tile, errorsx.Error) {
	tiles := make([]Tile, len(coords))

	if o.parallelism <= 1 {
		for i, coord := range coords {
			img, err := o.fetchOne(coord, zoomLevel)
			if err != nil {
				return nil, err
			}
			tiles[i] = Tile{coord, img}
		}
		return tiles, nil
	}

	errs := make([]errorsx.Error, len(coords))
	sema := semaphore.NewSemaphore(o.parallelism)

	// no new fetches are started once one has failed
	var failed atomic.Bool

	for i, coord := range coords {
		if ctx.Err() != nil || failed.Load() {
			break
		}

		sema.Add()
		if failed.Load() {
			sema.Done()
			break
		}

		go func(i int, coord Coord) {
			defer sema.Done()

			img, err := o.fetchOneRecovered(coord, zoomLevel)
			if err != nil {
				errs[i] = err
				failed.Store(true)
				return
			}

			tiles[i] = Tile{coord, img}
		}(i, coord)
	}

	sema.Wait()

	err := firstError(errs)
	if err != nil {
		return nil, err
	}

	if ctx.Err() != nil {
		return nil, errorsx.Wrap(ctx.Err())
	}

	return tiles, nil
}

func (o *Orchestrator) fetchOne(coord Coord, zoomLevel uint8) (image.Image, errorsx.Error) {
	img, err := o.source.individual.FetchTile(coord.X, coord.Y, zoomLevel)
	if err != nil {
		return nil, errorsx.Wrap(&ownmap.OpaqueError{Err: err}, "tile", coord.String())
	}

	return img, nil
}

func (o *Orchestrator) fetchOneRecovered(coord Coord, zoomLevel uint8) (img image.Image, err errorsx.Error) {
	defer func() {
		r := recover()
		if r != nil {
			img = nil
			err = errorsx.Wrap(ownmap.ErrAsynchronousTaskPanic, "tile", coord.String(), "panic", fmt.Sprintf("%v", r))
		}
	}()

	return o.fetchOne(coord, zoomLevel)
}

func (o *Orchestrator) checkTileSize(tile Tile) errorsx.Error {
	bounds := tile.Image.Bounds()

	for _, received := range []int{bounds.Dx(), bounds.Dy()} {
		if received != o.tileSize {
			return errorsx.Wrap(&ownmap.IncorrectTileSizeError{Expected: o.tileSize, Received: received}, "tile", tile.Coord.String())
		}
	}

	return nil
}

func wrapCoord(coord Coord, zoomLevel uint8) Coord {
	return Coord{
		X: ownmap.WrapTileIndex(coord.X, zoomLevel),
		Y: ownmap.WrapTileIndex(coord.Y, zoomLevel),
	}
}
