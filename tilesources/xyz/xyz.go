package xyz

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strconv"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/httpextra"
	"github.com/jamesrr39/ownmap-snapshot/tilefetch"
	_ "golang.org/x/image/webp"
)

const DefaultUserAgent = "ownmap-snapshot"

// TileServer fetches tiles from a slippy map server, given a URL template containing {x}, {y} and {z}
// (and optionally {s}, for the server's subdomains).
type TileServer struct {
	client      httpextra.Doer
	urlTemplate string
	subdomains  []string
	UserAgent   string
}

func NewTileServer(client httpextra.Doer, urlTemplate string, subdomains ...string) (*TileServer, errorsx.Error) {
	for _, placeholder := range []string{"{x}", "{y}", "{z}"} {
		if !strings.Contains(urlTemplate, placeholder) {
			return nil, errorsx.Errorf("tile URL template %q is missing the %s placeholder", urlTemplate, placeholder)
		}
	}

	if strings.Contains(urlTemplate, "{s}") && len(subdomains) == 0 {
		subdomains = []string{"a", "b", "c"}
	}

	return &TileServer{client, urlTemplate, subdomains, DefaultUserAgent}, nil
}

func (ts *TileServer) TileURL(x, y int, zoomLevel uint8) string {
	url := ts.urlTemplate
	if len(ts.subdomains) != 0 {
		url = strings.ReplaceAll(url, "{s}", ts.subdomains[(x+y)%len(ts.subdomains)])
	}

	return strings.NewReplacer(
		"{x}", strconv.Itoa(x),
		"{y}", strconv.Itoa(y),
		"{z}", strconv.Itoa(int(zoomLevel)),
	).Replace(url)
}

func (ts *TileServer) FetchTile(x, y int, zoomLevel uint8) (image.Image, error) {
	return ts.fetchTile(context.Background(), x, y, zoomLevel)
}

// FetchTileAsync fetches a tile on its own goroutine. The returned channel receives exactly one result.
func (ts *TileServer) FetchTileAsync(ctx context.Context, x, y int, zoomLevel uint8) <-chan tilefetch.TileResult {
	results := make(chan tilefetch.TileResult, 1)

	go func() {
		img, err := ts.fetchTile(ctx, x, y, zoomLevel)
		results <- tilefetch.TileResult{Image: img, Err: err}
	}()

	return results
}

func (ts *TileServer) fetchTile(ctx context.Context, x, y int, zoomLevel uint8) (image.Image, error) {
	url := ts.TileURL(x, y, zoomLevel)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errorsx.Wrap(err, "url", url)
	}
	req.Header.Set("User-Agent", ts.UserAgent)

	resp, err := ts.client.Do(req)
	if err != nil {
		return nil, errorsx.Wrap(err, "url", url)
	}
	defer resp.Body.Close()

	err = httpextra.CheckResponseCode(http.StatusOK, resp.StatusCode)
	if err != nil {
		return nil, errorsx.Wrap(err, "url", url, "body", httpextra.GetBodyOrErrorMsg(resp))
	}

	img, format, err := image.Decode(resp.Body)
	if err != nil {
		return nil, errorsx.Wrap(err, "url", url, "contentType", resp.Header.Get("Content-Type"))
	}

	if img.Bounds().Empty() {
		return nil, errorsx.Wrap(fmt.Errorf("empty %s tile", format), "url", url)
	}

	return img, nil
}
