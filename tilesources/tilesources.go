package tilesources

import (
	"net/http"
	"strings"
	"time"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/httpextra"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/goutil/userextra"
	"github.com/jamesrr39/ownmap-snapshot/tilefetch"
	"github.com/jamesrr39/ownmap-snapshot/tilesources/mbtiles"
	"github.com/jamesrr39/ownmap-snapshot/tilesources/xyz"
)

type SourceType string

const (
	SourceTypeXYZ        SourceType = "xyz"
	SourceTypeMBTiles    SourceType = "mbtiles"
	SourceTypePostgresql SourceType = "postgresql"
)

const ConnectionPathSeparator = "://"

// ConnectionURL is a tile source type followed by the separator and the path or URL of the source,
// for example "mbtiles://~/maps/norway.mbtiles" or "xyz://https://tile.example.org/{z}/{x}/{y}.png".
type ConnectionURL struct {
	Type           SourceType
	ConnectionPath string
}

func ParseConnectionURL(str string) (ConnectionURL, errorsx.Error) {
	idx := strings.Index(str, ConnectionPathSeparator)
	if idx < 0 {
		return ConnectionURL{}, errorsx.Errorf("couldn't find connection path separator %q in tile source %q", ConnectionPathSeparator, str)
	}

	return ConnectionURL{
		Type:           SourceType(str[:idx]),
		ConnectionPath: str[idx+len(ConnectionPathSeparator):],
	}, nil
}

type OpenOptions struct {
	// Async fetches xyz tiles through the asynchronous fetcher.
	Async bool
	// CachePath is an .mbtiles file that xyz tiles are cached in. Optional.
	CachePath string
	UserAgent string
	Client    httpextra.Doer
}

// OpenedSource is a tile source ready to be used in a snapshot config.
type OpenedSource struct {
	Source      tilefetch.Source
	Name        string
	GetMetadata func() (map[string]string, errorsx.Error)
	closers     []func() error
}

func (s *OpenedSource) Close() errorsx.Error {
	for _, closer := range s.closers {
		err := closer()
		if err != nil {
			return errorsx.Wrap(err, "source", s.Name)
		}
	}
	return nil
}

func Open(logger *logpkg.Logger, connectionString string, options OpenOptions) (*OpenedSource, errorsx.Error) {
	connectionURL, err := ParseConnectionURL(connectionString)
	if err != nil {
		return nil, err
	}

	switch connectionURL.Type {
	case SourceTypeXYZ:
		return openXYZ(logger, connectionURL.ConnectionPath, options)
	case SourceTypeMBTiles:
		path, err := userextra.ExpandUser(connectionURL.ConnectionPath)
		if err != nil {
			return nil, errorsx.Wrap(err)
		}

		tileDB, openErr := mbtiles.OpenSQLite(path)
		if openErr != nil {
			return nil, openErr
		}

		return openedTileDB(tileDB), nil
	case SourceTypePostgresql:
		tileDB, err := mbtiles.OpenPostgres(connectionURL.ConnectionPath)
		if err != nil {
			return nil, err
		}

		return openedTileDB(tileDB), nil
	default:
		return nil, errorsx.Errorf("unrecognized tile source type: %q", connectionURL.Type)
	}
}

func openedTileDB(tileDB *mbtiles.TileDB) *OpenedSource {
	return &OpenedSource{
		Source:      tilefetch.Batch(tileDB),
		Name:        tileDB.Name(),
		GetMetadata: tileDB.Metadata,
		closers:     []func() error{tileDB.Close},
	}
}

func openXYZ(logger *logpkg.Logger, urlTemplate string, options OpenOptions) (*OpenedSource, errorsx.Error) {
	client := options.Client
	if client == nil {
		client = &http.Client{Timeout: time.Second * 30}
	}

	tileServer, err := xyz.NewTileServer(client, urlTemplate)
	if err != nil {
		return nil, err
	}
	if options.UserAgent != "" {
		tileServer.UserAgent = options.UserAgent
	}

	opened := &OpenedSource{Name: urlTemplate}

	if options.CachePath == "" {
		if options.Async {
			opened.Source = tilefetch.AsyncIndividual(tileServer)
		} else {
			opened.Source = tilefetch.Individual(tileServer)
		}
		return opened, nil
	}

	cachePath, expandErr := userextra.ExpandUser(options.CachePath)
	if expandErr != nil {
		return nil, errorsx.Wrap(expandErr)
	}

	tileDB, err := mbtiles.OpenSQLite(cachePath)
	if err != nil {
		return nil, err
	}

	err = tileDB.CreateSchema()
	if err != nil {
		tileDB.Close()
		return nil, err
	}

	logger.Info("caching tiles from %q in %q", urlTemplate, cachePath)

	opened.Source = tilefetch.Individual(mbtiles.NewCache(logger, tileDB, tileServer))
	opened.GetMetadata = tileDB.Metadata
	opened.closers = append(opened.closers, tileDB.Close)

	return opened, nil
}
