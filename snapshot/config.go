package snapshot

import (
	"fmt"
	"os"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/ownmap-snapshot/ownmap"
	"github.com/jamesrr39/ownmap-snapshot/ownmaprenderer"
	"github.com/jamesrr39/ownmap-snapshot/styling"
	"github.com/jamesrr39/ownmap-snapshot/tilefetch"
)

const (
	DefaultTileSize    = 256
	DefaultWidth       = 800
	DefaultHeight      = 600
	DefaultMaxZoom     = 17
	DefaultParallelism = 4

	// MaxZoomLevel is the deepest zoom level a snapshot can be made at.
	MaxZoomLevel = 30
)

type zoomPolicyKind int

const (
	zoomPolicyUnset zoomPolicyKind = iota
	zoomPolicyConstant
	zoomPolicyAutomatic
)

// ZoomPolicy is either a constant zoom level, or an automatic one chosen from the extent of the
// geometries, capped at a maximum level.
type ZoomPolicy struct {
	kind  zoomPolicyKind
	level uint8
}

func Constant(level uint8) ZoomPolicy {
	return ZoomPolicy{zoomPolicyConstant, level}
}

func Automatic(maxLevel uint8) ZoomPolicy {
	return ZoomPolicy{zoomPolicyAutomatic, maxLevel}
}

func (z ZoomPolicy) IsAutomatic() bool {
	return z.kind == zoomPolicyAutomatic
}

// Level is the constant level, or the maximum level for an automatic policy.
func (z ZoomPolicy) Level() uint8 {
	return z.level
}

func (z ZoomPolicy) String() string {
	switch z.kind {
	case zoomPolicyConstant:
		return fmt.Sprintf("Constant(%d)", z.level)
	case zoomPolicyAutomatic:
		return fmt.Sprintf("Automatic(%d)", z.level)
	default:
		return "unset"
	}
}

// Config describes how snapshots are made. Zero values are replaced with the defaults when the
// config is finalized; only Source is required.
type Config struct {
	TileSize int
	Width    int
	Height   int
	Zoom     ZoomPolicy
	Source   tilefetch.Source
	// Styles are applied to every geometry, underneath the geometry's own style.
	Styles styling.Styles
	// Parallelism is the number of tiles an individual tile source is asked for at once.
	Parallelism int
	Logger      *logpkg.Logger
}

// Finalize fills in the defaults and builds a Snapshotter. Close the Snapshotter when done with it.
func (c Config) Finalize() (*Snapshotter, errorsx.Error) {
	var missingFields []string
	if c.Source.IsZero() {
		missingFields = append(missingFields, "Source")
	}
	if len(missingFields) > 0 {
		return nil, errorsx.Wrap(&ownmap.ConfigError{MissingFields: missingFields})
	}

	if c.Zoom.Level() > MaxZoomLevel {
		return nil, errorsx.Errorf("zoom level %d is deeper than the maximum zoom level (%d)", c.Zoom.Level(), MaxZoomLevel)
	}

	if c.TileSize <= 0 {
		c.TileSize = DefaultTileSize
	}
	if c.Width <= 0 {
		c.Width = DefaultWidth
	}
	if c.Height <= 0 {
		c.Height = DefaultHeight
	}
	if c.Zoom.kind == zoomPolicyUnset {
		c.Zoom = Automatic(DefaultMaxZoom)
	}
	if c.Parallelism <= 0 {
		c.Parallelism = DefaultParallelism
	}
	if c.Logger == nil {
		c.Logger = logpkg.NewLogger(os.Stderr, logpkg.LogLevelWarn)
	}

	return &Snapshotter{
		logger:       c.Logger,
		viewport:     ownmap.Viewport{TileSize: c.TileSize, Width: c.Width, Height: c.Height},
		zoom:         c.Zoom,
		orchestrator: tilefetch.NewOrchestrator(c.Logger, c.Source, c.TileSize, c.Parallelism),
		renderer:     ownmaprenderer.NewRenderer(c.Styles),
	}, nil
}
