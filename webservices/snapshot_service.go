package webservices

import (
	"image/png"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/ownmap-snapshot/ownmap"
	"github.com/jamesrr39/ownmap-snapshot/ownmaprenderer"
	"github.com/jamesrr39/ownmap-snapshot/snapshot"
	"github.com/jamesrr39/ownmap-snapshot/styling"
	"github.com/jamesrr39/semaphore"
	"github.com/pkg/profile"
)

const maxSnapshotDimension = 4096

type SnapshotService struct {
	logger        *logpkg.Logger
	config        snapshot.Config
	sema          *semaphore.Semaphore
	styleSet      *styling.StyleSet
	shouldProfile bool
	chi.Router
}

// NewSnapshotService creates the snapshot endpoint. Each request is rendered with config, with the
// width, height and zoom optionally overridden by query parameters. At most maxConcurrent snapshots
// are rendered at once.
func NewSnapshotService(logger *logpkg.Logger, config snapshot.Config, styleSet *styling.StyleSet, maxConcurrent uint, shouldProfile bool) *SnapshotService {
	config.Logger = logger

	ss := &SnapshotService{logger, config, semaphore.NewSemaphore(maxConcurrent), styleSet, shouldProfile, chi.NewRouter()}

	ss.Post("/", ss.handlePostSnapshot)

	return ss
}

func (ss *SnapshotService) getStyle(styleID string) (styling.Style, errorsx.Error) {
	if styleID == "" {
		return ss.styleSet.GetDefaultStyle(), nil
	}

	style := ss.styleSet.GetStyleByID(styleID)
	if style == nil {
		return nil, errorsx.Errorf("couldn't get requested style %q (style not loaded)", styleID)
	}

	return style, nil
}

func (ss *SnapshotService) configForRequest(r *http.Request) (snapshot.Config, errorsx.Error) {
	config := ss.config
	query := r.URL.Query()

	for _, param := range []struct {
		name string
		dest *int
	}{
		{"width", &config.Width},
		{"height", &config.Height},
	} {
		value := query.Get(param.name)
		if value == "" {
			continue
		}

		dimension, err := strconv.Atoi(value)
		if err != nil {
			return config, errorsx.Wrap(err, "param", param.name)
		}
		if dimension < 1 || dimension > maxSnapshotDimension {
			return config, errorsx.Errorf("%s must be between 1 and %d, but was %d", param.name, maxSnapshotDimension, dimension)
		}
		*param.dest = dimension
	}

	zoomStr := query.Get("zoom")
	if zoomStr != "" {
		zoomLevel, err := strconv.ParseUint(zoomStr, 10, 8)
		if err != nil {
			return config, errorsx.Wrap(err, "param", "zoom")
		}
		if zoomLevel > snapshot.MaxZoomLevel {
			return config, errorsx.Errorf("zoom must be at most %d, but was %d", snapshot.MaxZoomLevel, zoomLevel)
		}
		config.Zoom = snapshot.Constant(uint8(zoomLevel))
	}

	return config, nil
}

func (ss *SnapshotService) handlePostSnapshot(w http.ResponseWriter, r *http.Request) {
	if ss.shouldProfile {
		defer profile.Start().Stop()
	}

	config, err := ss.configForRequest(r)
	if err != nil {
		errorsx.HTTPError(w, ss.logger, err, http.StatusBadRequest)
		return
	}

	style, err := ss.getStyle(r.URL.Query().Get("styleId"))
	if err != nil {
		errorsx.HTTPError(w, ss.logger, err, http.StatusBadRequest)
		return
	}
	config.Styles = style.GetAmbientStyles()

	features, err := ownmap.ReadGeoJSONFeatures(r.Body)
	if err != nil {
		errorsx.HTTPError(w, ss.logger, err, http.StatusBadRequest)
		return
	}

	var drawables []ownmaprenderer.Drawable
	for i, feature := range features {
		drawable, err := ownmaprenderer.FromFeature(feature, style)
		if err != nil {
			errorsx.HTTPError(w, ss.logger, errorsx.Wrap(err, "featureIndex", i), http.StatusBadRequest)
			return
		}
		drawables = append(drawables, drawable)
	}

	ss.sema.Add()
	defer ss.sema.Done()

	snapshotter, err := config.Finalize()
	if err != nil {
		errorsx.HTTPError(w, ss.logger, err, http.StatusInternalServerError)
		return
	}
	defer snapshotter.Close()

	ss.logger.Info("rendering snapshot of %d features (%dx%d, zoom %s)", len(features), snapshotter.Viewport().Width, snapshotter.Viewport().Height, config.Zoom)

	img, err := snapshotter.Snapshot(r.Context(), drawables...)
	if err != nil {
		errorsx.HTTPError(w, ss.logger, err, statusCodeForSnapshotError(err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	encodeErr := png.Encode(w, img)
	if encodeErr != nil {
		switch encodeErr.(type) {
		case *net.OpError:
			// broken pipe (request cancelled). Do nothing
		default:
			errorsx.HTTPError(w, ss.logger, errorsx.Wrap(encodeErr), http.StatusInternalServerError)
		}
		return
	}
}

// statusCodeForSnapshotError maps errors caused by the submitted geometries to 400, and errors from
// the tile source to 502.
func statusCodeForSnapshotError(err errorsx.Error) int {
	switch errorsx.Cause(err).(type) {
	case *ownmap.OpaqueError, *ownmap.IncorrectTileSizeError:
		return http.StatusBadGateway
	}

	switch errorsx.Cause(err) {
	case ownmap.ErrPathConstruction, ownmap.ErrCentroidCalculation, ownmap.ErrBoundingBoxCalculation:
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}
