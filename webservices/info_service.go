package webservices

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/ownmap-snapshot/snapshot"
	"github.com/jamesrr39/ownmap-snapshot/styling"
)

// TileSourceInfo describes the tile source snapshots are made from.
type TileSourceInfo struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
	// GetMetadata is optional, and is called on each request.
	GetMetadata func() (map[string]string, errorsx.Error) `json:"-"`
}

func NewInfoService(logger *logpkg.Logger, config snapshot.Config, tileSourceInfo TileSourceInfo, styleSet *styling.StyleSet) *InfoService {
	ws := &InfoService{logger, config, tileSourceInfo, styleSet, chi.NewRouter()}
	ws.Get("/", ws.handleGet)

	return ws
}

type InfoService struct {
	logger         *logpkg.Logger
	config         snapshot.Config
	tileSourceInfo TileSourceInfo
	styleSet       *styling.StyleSet
	chi.Router
}

type stylesType struct {
	DefaultStyleID string   `json:"defaultStyleId"`
	StyleIDs       []string `json:"styleIds"`
}

type tileSourceType struct {
	Kind     string            `json:"kind"`
	Name     string            `json:"name"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type snapshotDefaultsType struct {
	TileSize int    `json:"tileSize"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Zoom     string `json:"zoom"`
}

type infoType struct {
	Style      stylesType           `json:"style"`
	TileSource tileSourceType       `json:"tileSource"`
	Defaults   snapshotDefaultsType `json:"defaults"`
}

func (ws *InfoService) handleGet(w http.ResponseWriter, r *http.Request) {
	tileSource := tileSourceType{
		Kind: ws.tileSourceInfo.Kind,
		Name: ws.tileSourceInfo.Name,
	}

	if ws.tileSourceInfo.GetMetadata != nil {
		metadata, err := ws.tileSourceInfo.GetMetadata()
		if err != nil {
			errorsx.HTTPError(w, ws.logger, err, http.StatusInternalServerError)
			return
		}
		tileSource.Metadata = metadata
	}

	snapshotter, err := ws.config.Finalize()
	if err != nil {
		errorsx.HTTPError(w, ws.logger, err, http.StatusInternalServerError)
		return
	}
	defer snapshotter.Close()

	viewport := snapshotter.Viewport()

	style := stylesType{
		ws.styleSet.GetDefaultStyle().GetStyleID(),
		ws.styleSet.GetAllStyleIDs(),
	}

	render.JSON(w, r, infoType{
		Style:      style,
		TileSource: tileSource,
		Defaults: snapshotDefaultsType{
			TileSize: viewport.TileSize,
			Width:    viewport.Width,
			Height:   viewport.Height,
			Zoom:     snapshotter.ZoomPolicy().String(),
		},
	})
}
