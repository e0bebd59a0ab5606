package tilefetch

import (
	"context"
	"fmt"
	"image"
)

// Coord is the x/y index of a tile at some zoom level.
type Coord struct {
	X int
	Y int
}

func (c Coord) String() string {
	return fmt.Sprintf("%d/%d", c.X, c.Y)
}

type Tile struct {
	Coord Coord
	Image image.Image
}

// IndividualFetcher fetches one tile per call.
type IndividualFetcher interface {
	FetchTile(x, y int, zoomLevel uint8) (image.Image, error)
}

type IndividualFetcherFunc func(x, y int, zoomLevel uint8) (image.Image, error)

func (f IndividualFetcherFunc) FetchTile(x, y int, zoomLevel uint8) (image.Image, error) {
	return f(x, y, zoomLevel)
}

// BatchFetcher fetches every requested tile in one call. Tiles it leaves out are left blank.
type BatchFetcher interface {
	FetchTiles(coords []Coord, zoomLevel uint8) ([]Tile, error)
}

type BatchFetcherFunc func(coords []Coord, zoomLevel uint8) ([]Tile, error)

func (f BatchFetcherFunc) FetchTiles(coords []Coord, zoomLevel uint8) ([]Tile, error) {
	return f(coords, zoomLevel)
}

type TileResult struct {
	Image image.Image
	Err   error
}

// AsyncIndividualFetcher starts fetching one tile and returns a channel that receives its result.
// A channel closed without a result counts as a task that ended abnormally.
type AsyncIndividualFetcher interface {
	FetchTileAsync(ctx context.Context, x, y int, zoomLevel uint8) <-chan TileResult
}

type AsyncIndividualFetcherFunc func(ctx context.Context, x, y int, zoomLevel uint8) <-chan TileResult

func (f AsyncIndividualFetcherFunc) FetchTileAsync(ctx context.Context, x, y int, zoomLevel uint8) <-chan TileResult {
	return f(ctx, x, y, zoomLevel)
}

type BatchResult struct {
	Tiles []Tile
	Err   error
}

// AsyncBatchFetcher starts fetching all requested tiles and returns a channel that receives the batch.
type AsyncBatchFetcher interface {
	FetchTilesAsync(ctx context.Context, coords []Coord, zoomLevel uint8) <-chan BatchResult
}

type AsyncBatchFetcherFunc func(ctx context.Context, coords []Coord, zoomLevel uint8) <-chan BatchResult

func (f AsyncBatchFetcherFunc) FetchTilesAsync(ctx context.Context, coords []Coord, zoomLevel uint8) <-chan BatchResult {
	return f(ctx, coords, zoomLevel)
}

type Kind int

const (
	KindIndividual Kind = iota + 1
	KindBatch
	KindAsyncIndividual
	KindAsyncBatch
)

func (k Kind) String() string {
	switch k {
	case KindIndividual:
		return "individual"
	case KindBatch:
		return "batch"
	case KindAsyncIndividual:
		return "async individual"
	case KindAsyncBatch:
		return "async batch"
	default:
		return "unknown"
	}
}

// Source is a tile source of exactly one of the four kinds.
type Source struct {
	kind            Kind
	individual      IndividualFetcher
	batch           BatchFetcher
	asyncIndividual AsyncIndividualFetcher
	asyncBatch      AsyncBatchFetcher
}

func Individual(fetcher IndividualFetcher) Source {
	return Source{kind: KindIndividual, individual: fetcher}
}

func Batch(fetcher BatchFetcher) Source {
	return Source{kind: KindBatch, batch: fetcher}
}

func AsyncIndividual(fetcher AsyncIndividualFetcher) Source {
	return Source{kind: KindAsyncIndividual, asyncIndividual: fetcher}
}

func AsyncBatch(fetcher AsyncBatchFetcher) Source {
	return Source{kind: KindAsyncBatch, asyncBatch: fetcher}
}

func (s Source) Kind() Kind {
	return s.kind
}

// IsZero reports whether no tile source has been set.
func (s Source) IsZero() bool {
	switch s.kind {
	case KindIndividual:
		return s.individual == nil
	case KindBatch:
		return s.batch == nil
	case KindAsyncIndividual:
		return s.asyncIndividual == nil
	case KindAsyncBatch:
		return s.asyncBatch == nil
	default:
		return true
	}
}
