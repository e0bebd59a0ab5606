package tilefetch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/ownmap-snapshot/ownmap"
)

var errBridgeClosed = errors.New("async bridge has been closed")

type batchTask func(ctx context.Context) ([]Tile, errorsx.Error)

type bridgeRequest struct {
	ctx   context.Context
	task  batchTask
	reply chan bridgeReply
}

type bridgeReply struct {
	tiles []Tile
	err   errorsx.Error
}

// Bridge runs asynchronous fetches on its own goroutine, so that callers can wait on them
// synchronously. Panics in the tasks it runs are returned as ownmap.ErrAsynchronousTaskPanic.
type Bridge struct {
	requests  chan bridgeRequest
	done      chan struct{}
	closeOnce sync.Once
}

func NewBridge() *Bridge {
	b := &Bridge{
		requests: make(chan bridgeRequest),
		done:     make(chan struct{}),
	}

	go b.run()

	return b
}

func (b *Bridge) run() {
	for {
		select {
		case <-b.done:
			return
		case request := <-b.requests:
			go func() {
				tiles, err := runRecovered(request.ctx, request.task)
				request.reply <- bridgeReply{tiles, err}
			}()
		}
	}
}

// Do hands task to the bridge and blocks until it has finished.
func (b *Bridge) Do(ctx context.Context, task batchTask) ([]Tile, errorsx.Error) {
	select {
	case <-b.done:
		return nil, errorsx.Wrap(errBridgeClosed)
	default:
	}

	request := bridgeRequest{ctx, task, make(chan bridgeReply, 1)}

	select {
	case b.requests <- request:
	case <-b.done:
		return nil, errorsx.Wrap(errBridgeClosed)
	case <-ctx.Done():
		return nil, errorsx.Wrap(ctx.Err())
	}

	select {
	case reply := <-request.reply:
		return reply.tiles, reply.err
	case <-ctx.Done():
		return nil, errorsx.Wrap(ctx.Err())
	}
}

// Close stops the bridge. Tasks already handed over still run to completion.
func (b *Bridge) Close() {
	b.closeOnce.Do(func() {
		close(b.done)
	})
}

func runRecovered(ctx context.Context, task batchTask) (tiles []Tile, err errorsx.Error) {
	defer func() {
		r := recover()
		if r != nil {
			tiles = nil
			err = errorsx.Wrap(ownmap.ErrAsynchronousTaskPanic, "panic", fmt.Sprintf("%v", r))
		}
	}()

	return task(ctx)
}

// fetchAsyncIndividual starts every tile fetch at once and joins the results.
// The first error wins, and a fetch whose channel closes without a result is treated as a panicked task.
func fetchAsyncIndividual(ctx context.Context, fetcher AsyncIndividualFetcher, coords []Coord, zoomLevel uint8) ([]Tile, errorsx.Error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tiles := make([]Tile, len(coords))
	errs := make([]errorsx.Error, len(coords))

	var wg sync.WaitGroup
	for i, coord := range coords {
		wg.Add(1)
		go func(i int, coord Coord) {
			defer wg.Done()

			tile, err := runRecovered(ctx, func(ctx context.Context) ([]Tile, errorsx.Error) {
				select {
				case result, ok := <-fetcher.FetchTileAsync(ctx, coord.X, coord.Y, zoomLevel):
					if !ok {
						return nil, errorsx.Wrap(ownmap.ErrAsynchronousTaskPanic, "tile", coord.String(), "reason", "result channel closed without a result")
					}
					if result.Err != nil {
						return nil, errorsx.Wrap(&ownmap.OpaqueError{Err: result.Err}, "tile", coord.String())
					}
					return []Tile{{coord, result.Image}}, nil
				case <-ctx.Done():
					return nil, errorsx.Wrap(ctx.Err(), "tile", coord.String())
				}
			})
			if err != nil {
				errs[i] = err
				cancel()
				return
			}

			tiles[i] = tile[0]
		}(i, coord)
	}

	wg.Wait()

	err := firstError(errs)
	if err != nil {
		return nil, err
	}

	return tiles, nil
}

func fetchAsyncBatch(ctx context.Context, fetcher AsyncBatchFetcher, coords []Coord, zoomLevel uint8) ([]Tile, errorsx.Error) {
	select {
	case result, ok := <-fetcher.FetchTilesAsync(ctx, coords, zoomLevel):
		if !ok {
			return nil, errorsx.Wrap(ownmap.ErrAsynchronousTaskPanic, "reason", "result channel closed without a result")
		}
		if result.Err != nil {
			return nil, errorsx.Wrap(&ownmap.OpaqueError{Err: result.Err})
		}
		return result.Tiles, nil
	case <-ctx.Done():
		return nil, errorsx.Wrap(ctx.Err())
	}
}

// firstError returns the first error that is not a cancellation caused by another error.
func firstError(errs []errorsx.Error) errorsx.Error {
	var cancelled errorsx.Error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if errorsx.Cause(err) == context.Canceled {
			if cancelled == nil {
				cancelled = err
			}
			continue
		}
		return err
	}

	return cancelled
}
