package ownmap

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrPathConstruction       = errors.New("failed to construct path")
	ErrCentroidCalculation    = errors.New("failed to calculate a centroid for the geometry collection")
	ErrBoundingBoxCalculation = errors.New("failed to calculate a bounding box for the geometry collection")
	ErrAsynchronousTaskPanic  = errors.New("inner panic of spawned asynchronous task")
)

// ConfigError is returned when a snapshot configuration is finalized with required fields missing.
type ConfigError struct {
	MissingFields []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("failed to build structure: missing required fields: %s", strings.Join(e.MissingFields, ", "))
}

// IncorrectTileSizeError is returned when a fetched tile does not match the configured tile size.
type IncorrectTileSizeError struct {
	Expected int
	Received int
}

func (e *IncorrectTileSizeError) Error() string {
	return fmt.Sprintf("incorrect tile size: expected %d but received %d", e.Expected, e.Received)
}

// OpaqueError carries an error returned by a tile source, unchanged.
type OpaqueError struct {
	Err error
}

func (e *OpaqueError) Error() string {
	return e.Err.Error()
}

func (e *OpaqueError) Unwrap() error {
	return e.Err
}
