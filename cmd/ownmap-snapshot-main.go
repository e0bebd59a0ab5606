package main

import (
	"context"
	"fmt"
	"image/png"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	tracing "github.com/jamesrr39/go-tracing"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/jamesrr39/goutil/httpextra"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/goutil/open"
	"github.com/jamesrr39/goutil/userextra"
	"github.com/jamesrr39/ownmap-snapshot/ownmap"
	"github.com/jamesrr39/ownmap-snapshot/ownmaprenderer"
	"github.com/jamesrr39/ownmap-snapshot/snapshot"
	"github.com/jamesrr39/ownmap-snapshot/styling"
	"github.com/jamesrr39/ownmap-snapshot/styling/mapboxglstyle"
	"github.com/jamesrr39/ownmap-snapshot/tilesources"
	"github.com/jamesrr39/ownmap-snapshot/webservices"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/pkg/profile"
)

const (
	DEFAULT_PORT                = 9000
	DEFAULT_MAX_CONCURRENT_SNAP = 4
)

var (
	logger  *logpkg.Logger
	verbose *bool
)

func main() {
	verbose = kingpin.Flag("v", "verbose logging").Bool()

	setupRender()
	setupServe()

	kingpin.Parse()
}

// sourceFlags are the flags shared by every command that makes snapshots.
type sourceFlags struct {
	source      *string
	async       *bool
	cache       *string
	userAgent   *string
	tileSize    *int
	width       *int
	height      *int
	zoom        *int
	maxZoom     *uint8
	parallelism *int
}

var sourceHelp = fmt.Sprintf("tile source. It should be the type, followed by the separator (%s), followed by the path or URL. For example: %s%shttps://tile.openstreetmap.org/{z}/{x}/{y}.png or %s%smy/tiles.mbtiles",
	tilesources.ConnectionPathSeparator,
	string(tilesources.SourceTypeXYZ),
	tilesources.ConnectionPathSeparator,
	string(tilesources.SourceTypeMBTiles),
	tilesources.ConnectionPathSeparator,
)

func addSourceFlags(cmd *kingpin.CmdClause) sourceFlags {
	return sourceFlags{
		source:      cmd.Flag("source", sourceHelp).Required().String(),
		async:       cmd.Flag("async", "fetch xyz tiles asynchronously").Bool(),
		cache:       cmd.Flag("cache", "(xyz sources only) mbtiles file to cache fetched tiles in").String(),
		userAgent:   cmd.Flag("user-agent", "(xyz sources only) user agent to send to the tile server").String(),
		tileSize:    cmd.Flag("tile-size", "size of the tiles, in pixels").Default(fmt.Sprintf("%d", snapshot.DefaultTileSize)).Int(),
		width:       cmd.Flag("width", "width of the snapshot, in pixels").Default(fmt.Sprintf("%d", snapshot.DefaultWidth)).Int(),
		height:      cmd.Flag("height", "height of the snapshot, in pixels").Default(fmt.Sprintf("%d", snapshot.DefaultHeight)).Int(),
		zoom:        cmd.Flag("zoom", "constant zoom level. Overrides --max-zoom. Leave unset to pick the zoom level automatically").Default("-1").Int(),
		maxZoom:     cmd.Flag("max-zoom", "highest zoom level the automatic zoom can pick").Default(fmt.Sprintf("%d", snapshot.DefaultMaxZoom)).Uint8(),
		parallelism: cmd.Flag("parallelism", "amount of tiles fetched at once from individual tile sources").Default(fmt.Sprintf("%d", snapshot.DefaultParallelism)).Int(),
	}
}

func (f sourceFlags) open() (*tilesources.OpenedSource, snapshot.Config, errorsx.Error) {
	openedSource, err := tilesources.Open(logger, *f.source, tilesources.OpenOptions{
		Async:     *f.async,
		CachePath: *f.cache,
		UserAgent: *f.userAgent,
	})
	if err != nil {
		return nil, snapshot.Config{}, errorsx.Wrap(err)
	}

	zoomPolicy := snapshot.Automatic(*f.maxZoom)
	if *f.zoom >= 0 {
		if *f.zoom > snapshot.MaxZoomLevel {
			return nil, snapshot.Config{}, errorsx.Errorf("zoom level %d out of range", *f.zoom)
		}
		zoomPolicy = snapshot.Constant(uint8(*f.zoom))
	}

	config := snapshot.Config{
		TileSize:    *f.tileSize,
		Width:       *f.width,
		Height:      *f.height,
		Zoom:        zoomPolicy,
		Source:      openedSource.Source,
		Parallelism: *f.parallelism,
		Logger:      logger,
	}

	return openedSource, config, nil
}

func setupLogger() {
	logLevel := logpkg.LogLevelInfo
	if *verbose {
		logLevel = logpkg.LogLevelDebug
	}
	logger = logpkg.NewLogger(os.Stderr, logLevel)
}

func readFeatures(fs gofs.Fs, filePath string) ([]ownmap.Feature, errorsx.Error) {
	file, err := fs.Open(filePath)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".osm", ".xml":
		return ownmap.ReadOSMFeatures(file)
	default:
		return ownmap.ReadGeoJSONFeatures(file)
	}
}

var extraStylesHelp = "comma separated list of Mapbox GL style sheets to load, alongside the built-in styles. Each path is either a JSON file, or a folder containing a style.json"

// loadStyleSet returns the built-in styles, plus the Mapbox GL styles at the comma separated extraStylePaths.
func loadStyleSet(fs gofs.Fs, extraStylePaths string, defaultStyleID string) (*styling.StyleSet, errorsx.Error) {
	builtinStyles := styling.NewBuiltinStyleSet()
	var styles []styling.Style
	for _, styleID := range builtinStyles.GetAllStyleIDs() {
		styles = append(styles, builtinStyles.GetStyleByID(styleID))
	}

	for _, path := range strings.Split(extraStylePaths, ",") {
		if path == "" {
			continue
		}

		style, err := loadStyle(fs, path)
		if err != nil {
			return nil, errorsx.Wrap(err, "path", path)
		}

		styles = append(styles, style)
	}

	return styling.NewStyleSet(styles, defaultStyleID)
}

func loadStyle(fs gofs.Fs, styleDefinitionPath string) (styling.Style, errorsx.Error) {
	fileInfo, err := fs.Stat(styleDefinitionPath)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	if fileInfo.IsDir() {
		styleDefinitionPath = filepath.Join(styleDefinitionPath, "style.json")
	}

	file, err := fs.Open(styleDefinitionPath)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}
	defer file.Close()

	style, parseErr := mapboxglstyle.Parse(file)
	if parseErr != nil {
		return nil, parseErr
	}

	return style, nil
}

func setupRender() {
	cmd := kingpin.Command("render", "render a snapshot of a GeoJSON or OSM XML file")
	filePath := cmd.Arg("file", "GeoJSON (FeatureCollection) or OSM XML (.osm) file to draw").Required().String()
	outputPath := cmd.Flag("output", "path to write the PNG to").Short('o').Default("snapshot.png").String()
	styleID := cmd.Flag("style-id", "style to draw the features with").Default(styling.BUILTIN_STYLEID).String()
	extraStylePaths := cmd.Flag("extra-styles", extraStylesHelp).String()
	numberVertices := cmd.Flag("number-vertices", "label the vertices of lines and polygons with their index").Bool()
	shouldOpen := cmd.Flag("open", "open the snapshot once it's rendered").Bool()
	shouldProfile := cmd.Flag("profile", "profile the render performance").Bool()
	traceFilePath := cmd.Flag("trace-file", "file to write a trace of the render to").String()
	flags := addSourceFlags(cmd)

	cmd.Action(func(ctx *kingpin.ParseContext) (err error) {
		setupLogger()

		defer func() {
			errorx, ok := err.(errorsx.Error)
			if ok {
				log.Printf("%s\n%s\n", errorx.Error(), errorx.Stack())
			}
		}()

		if *shouldProfile {
			defer profile.Start(profile.ProfilePath(filepath.Dir(*outputPath)), profile.CPUProfile).Stop()
		}

		startTime := time.Now()
		fs := gofs.NewOsFs()

		features, err := readFeatures(fs, *filePath)
		if err != nil {
			return errorsx.Wrap(err, "file", *filePath)
		}

		if *numberVertices {
			*styleID = styling.NUMBERED_VERTICES_STYLEID
		}

		styleSet, err := loadStyleSet(fs, *extraStylePaths, styling.BUILTIN_STYLEID)
		if err != nil {
			return errorsx.Wrap(err)
		}

		style := styleSet.GetStyleByID(*styleID)
		if style == nil {
			return errorsx.Errorf("unknown style %q", *styleID)
		}

		var drawables []ownmaprenderer.Drawable
		for i, feature := range features {
			drawable, err := ownmaprenderer.FromFeature(feature, style)
			if err != nil {
				return errorsx.Wrap(err, "featureIndex", i)
			}
			drawables = append(drawables, drawable)
		}

		openedSource, config, err := flags.open()
		if err != nil {
			return errorsx.Wrap(err)
		}
		defer openedSource.Close()

		config.Styles = style.GetAmbientStyles()

		snapshotter, err := config.Finalize()
		if err != nil {
			return errorsx.Wrap(err)
		}
		defer snapshotter.Close()

		renderCtx := context.Background()
		var tracer *tracing.Tracer
		var trace *tracing.Trace
		if *traceFilePath != "" {
			traceFile, err := fs.Create(*traceFilePath)
			if err != nil {
				return errorsx.Wrap(err)
			}
			defer traceFile.Close()

			tracer = tracing.NewTracer(traceFile)
			trace = tracing.StartTrace(tracer, fmt.Sprintf("render %s", *filePath))
			renderCtx = context.WithValue(renderCtx, tracing.TraceCtxKey, trace)
			renderCtx = context.WithValue(renderCtx, tracing.TracerCtxKey, tracer)
		}

		result, err := snapshotter.SnapshotWithResult(renderCtx, drawables...)
		if err != nil {
			return errorsx.Wrap(err)
		}

		if tracer != nil {
			err = tracer.EndTrace(trace, fmt.Sprintf("%d features at zoom %d", len(features), result.Zoom))
			if err != nil {
				return errorsx.Wrap(err)
			}
		}

		outputFile, err := fs.Create(*outputPath)
		if err != nil {
			return errorsx.Wrap(err)
		}
		defer outputFile.Close()

		err = png.Encode(outputFile, result.Image)
		if err != nil {
			return errorsx.Wrap(err)
		}

		logger.Info("rendered %d features at zoom %d (center %v, %d tiles) to %q in %s", len(features), result.Zoom, result.Center, len(result.Tiles), *outputPath, time.Since(startTime))

		if *shouldOpen {
			absPath, err := filepath.Abs(*outputPath)
			if err != nil {
				return errorsx.Wrap(err)
			}

			err = open.OpenURL("file://" + absPath)
			if err != nil {
				return errorsx.Wrap(err)
			}
		}

		return nil
	})
}

var addrHelp = fmt.Sprintf(
	`address to serve on. Ex: ':%d' listen on port %d to traffic from anywhere. 'localhost:%d' listen on port %d to traffic from localhost`,
	DEFAULT_PORT, DEFAULT_PORT, DEFAULT_PORT, DEFAULT_PORT,
)

func setupServe() {
	cmd := kingpin.Command("serve", "serve the snapshot API")
	addr := cmd.Flag("addr", addrHelp).Default(fmt.Sprintf(":%d", DEFAULT_PORT)).String()
	defaultStyleID := cmd.Flag("default-style-id", "default style to draw features with").Default(styling.BUILTIN_STYLEID).String()
	extraStylePaths := cmd.Flag("extra-styles", extraStylesHelp).String()
	maxConcurrent := cmd.Flag("max-concurrent", "maximum amount of snapshots rendered at once").Default(fmt.Sprintf("%d", DEFAULT_MAX_CONCURRENT_SNAP)).Uint()
	shouldProfile := cmd.Flag("profile", "profile the request performance").Bool()
	traceDir := cmd.Flag("trace-dir", "directory to write request traces to").Default("~/.local/share/github.com/jamesrr39/ownmap-snapshot/trace").String()
	flags := addSourceFlags(cmd)

	cmd.Action(func(ctx *kingpin.ParseContext) error {
		setupLogger()

		run := func() errorsx.Error {
			err := validateMaxConcurrent(*maxConcurrent)
			if err != nil {
				return err
			}

			styleSet, err := loadStyleSet(gofs.NewOsFs(), *extraStylePaths, *defaultStyleID)
			if err != nil {
				return errorsx.Wrap(err)
			}

			openedSource, config, err := flags.open()
			if err != nil {
				return errorsx.Wrap(err)
			}
			defer openedSource.Close()

			traceDirPath, expandErr := userextra.ExpandUser(*traceDir)
			if expandErr != nil {
				return errorsx.Wrap(expandErr)
			}

			router, err := createServer(logger, config, openedSource, styleSet, traceDirPath, *maxConcurrent, *shouldProfile)
			if err != nil {
				return errorsx.Wrap(err)
			}

			server := httpextra.NewServerWithTimeouts()
			server.Addr = *addr
			server.Handler = router

			logger.Info("about to start serving on %q", *addr)

			listenErr := server.ListenAndServe()
			if listenErr != nil {
				return errorsx.Wrap(listenErr)
			}
			return nil
		}

		err := run()
		if err != nil {
			return fmt.Errorf("error: %q\nStack trace:\n%s", err.Error(), err.Stack())
		}
		return nil
	})
}

func validateMaxConcurrent(maxConcurrent uint) errorsx.Error {
	if maxConcurrent < 1 {
		return errorsx.Errorf("max-concurrent must be at least 1, but was %d", maxConcurrent)
	}
	return nil
}

func createServer(logger *logpkg.Logger, config snapshot.Config, openedSource *tilesources.OpenedSource, styleSet *styling.StyleSet, traceDirPath string, maxConcurrent uint, shouldProfile bool) (chi.Router, errorsx.Error) {
	err := os.MkdirAll(traceDirPath, 0755)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	traceFilePath := filepath.Join(traceDirPath, fmt.Sprintf("trace_%s.pbf", time.Now().Format("2006-01-02__03_04_05")))
	logger.Info("tracing at %q", traceFilePath)

	traceFile, err := os.Create(traceFilePath)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	tracer := tracing.NewTracer(traceFile)

	tileSourceInfo := webservices.TileSourceInfo{
		Kind:        config.Source.Kind().String(),
		Name:        openedSource.Name,
		GetMetadata: openedSource.GetMetadata,
	}

	router := chi.NewRouter()
	router.Use(middleware.DefaultLogger)
	router.Use(tracing.Middleware(tracer))
	router.Route("/api/", func(r chi.Router) {
		r.Mount("/info", webservices.NewInfoService(logger, config, tileSourceInfo, styleSet))
		r.Mount("/snapshot", webservices.NewSnapshotService(logger, config, styleSet, maxConcurrent, shouldProfile))
	})
	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "POST a GeoJSON FeatureCollection to /api/snapshot to render a PNG snapshot\n")
	})

	return router, nil
}
