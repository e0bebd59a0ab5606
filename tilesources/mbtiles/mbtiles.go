package mbtiles

import (
	"bytes"
	"database/sql"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/ownmap-snapshot/tilefetch"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "golang.org/x/image/webp"
)

const (
	driverSQLite   = "sqlite3"
	driverPostgres = "postgres"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS metadata (name TEXT, value TEXT);
CREATE TABLE IF NOT EXISTS tiles (
	zoom_level INTEGER NOT NULL,
	tile_column INTEGER NOT NULL,
	tile_row INTEGER NOT NULL,
	tile_data BLOB NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS tile_index ON tiles (zoom_level, tile_column, tile_row);`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS metadata (name TEXT, value TEXT);
CREATE TABLE IF NOT EXISTS tiles (
	zoom_level INTEGER NOT NULL,
	tile_column INTEGER NOT NULL,
	tile_row INTEGER NOT NULL,
	tile_data BYTEA NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS tile_index ON tiles (zoom_level, tile_column, tile_row);`

// TileDB reads tiles laid out in the MBTiles schema, either from an .mbtiles (SQLite) file or from
// a PostgreSQL database. Rows are stored TMS-style, with row 0 at the south.
type TileDB struct {
	name string
	db   *sqlx.DB
}

func NewTileDB(db *sqlx.DB, name string) *TileDB {
	return &TileDB{name, db}
}

func OpenSQLite(path string) (*TileDB, errorsx.Error) {
	db, err := sqlx.Open(driverSQLite, path)
	if err != nil {
		return nil, errorsx.Wrap(err, "path", path)
	}

	return NewTileDB(db, path), nil
}

func OpenPostgres(connStr string) (*TileDB, errorsx.Error) {
	db, err := sqlx.Open(driverPostgres, "postgresql://"+strings.TrimPrefix(connStr, "postgresql://"))
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	return NewTileDB(db, "postgresql database"), nil
}

func (tdb *TileDB) Name() string {
	return tdb.name
}

func (tdb *TileDB) Close() error {
	return tdb.db.Close()
}

// CreateSchema creates the MBTiles tables, if they don't already exist.
func (tdb *TileDB) CreateSchema() errorsx.Error {
	schema := sqliteSchema
	if tdb.db.DriverName() == driverPostgres {
		schema = postgresSchema
	}

	_, err := tdb.db.Exec(schema)
	if err != nil {
		return errorsx.Wrap(err)
	}

	return nil
}

// Metadata returns the name/value pairs of the metadata table.
func (tdb *TileDB) Metadata() (map[string]string, errorsx.Error) {
	type metadataRow struct {
		Name  string `db:"name"`
		Value string `db:"value"`
	}

	var rows []*metadataRow
	err := tdb.db.Select(&rows, `SELECT name, value FROM metadata`)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	metadata := make(map[string]string)
	for _, row := range rows {
		metadata[row.Name] = row.Value
	}

	return metadata, nil
}

func (tdb *TileDB) SetMetadata(name, value string) errorsx.Error {
	tx, err := tdb.db.Beginx()
	if err != nil {
		return errorsx.Wrap(err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(tx.Rebind(`DELETE FROM metadata WHERE name = ?`), name)
	if err != nil {
		return errorsx.Wrap(err, "name", name)
	}

	_, err = tx.Exec(tx.Rebind(`INSERT INTO metadata (name, value) VALUES (?, ?)`), name, value)
	if err != nil {
		return errorsx.Wrap(err, "name", name)
	}

	err = tx.Commit()
	if err != nil {
		return errorsx.Wrap(err)
	}

	return nil
}

type tileRow struct {
	Column int    `db:"tile_column"`
	Row    int    `db:"tile_row"`
	Data   []byte `db:"tile_data"`
}

// FetchTiles reads all the requested tiles in one query. Tiles not in the database are left out of
// the result.
func (tdb *TileDB) FetchTiles(coords []tilefetch.Coord, zoomLevel uint8) ([]tilefetch.Tile, error) {
	if len(coords) == 0 {
		return nil, nil
	}

	wanted := make(map[tilefetch.Coord]bool)
	var columns, rows []int
	for _, coord := range coords {
		wanted[coord] = true
		columns = append(columns, coord.X)
		rows = append(rows, flipRow(coord.Y, zoomLevel))
	}

	query, args, err := sqlx.In(`
		SELECT tile_column, tile_row, tile_data
		FROM tiles
		WHERE zoom_level = ? AND tile_column IN (?) AND tile_row IN (?)`,
		zoomLevel, columns, rows)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	var tileRows []*tileRow
	err = tdb.db.Select(&tileRows, tdb.db.Rebind(query), args...)
	if err != nil {
		return nil, errorsx.Wrap(err, "zoom", zoomLevel, "tiles", len(coords))
	}

	var tiles []tilefetch.Tile
	for _, row := range tileRows {
		coord := tilefetch.Coord{X: row.Column, Y: flipRow(row.Row, zoomLevel)}
		if !wanted[coord] {
			// matched on column and row separately
			continue
		}

		img, _, err := image.Decode(bytes.NewReader(row.Data))
		if err != nil {
			return nil, errorsx.Wrap(err, "tile", coord.String(), "zoom", zoomLevel)
		}

		tiles = append(tiles, tilefetch.Tile{Coord: coord, Image: img})
	}

	return tiles, nil
}

// FetchTile reads a single tile. It returns sql.ErrNoRows if there is no such tile.
func (tdb *TileDB) FetchTile(x, y int, zoomLevel uint8) (image.Image, error) {
	var data []byte
	err := tdb.db.Get(
		&data,
		tdb.db.Rebind(`SELECT tile_data FROM tiles WHERE zoom_level = ? AND tile_column = ? AND tile_row = ?`),
		zoomLevel, x, flipRow(y, zoomLevel),
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, errorsx.Wrap(err, "tile", tilefetch.Coord{X: x, Y: y}.String(), "zoom", zoomLevel)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	return img, nil
}

// InsertTile stores encoded tile data, replacing any tile already at that position.
func (tdb *TileDB) InsertTile(x, y int, zoomLevel uint8, data []byte) errorsx.Error {
	tx, err := tdb.db.Beginx()
	if err != nil {
		return errorsx.Wrap(err)
	}
	defer tx.Rollback()

	row := flipRow(y, zoomLevel)

	_, err = tx.Exec(tx.Rebind(`DELETE FROM tiles WHERE zoom_level = ? AND tile_column = ? AND tile_row = ?`), zoomLevel, x, row)
	if err != nil {
		return errorsx.Wrap(err)
	}

	_, err = tx.Exec(tx.Rebind(`INSERT INTO tiles (zoom_level, tile_column, tile_row, tile_data) VALUES (?, ?, ?, ?)`), zoomLevel, x, row, data)
	if err != nil {
		return errorsx.Wrap(err)
	}

	err = tx.Commit()
	if err != nil {
		return errorsx.Wrap(err)
	}

	return nil
}

// flipRow converts between XYZ rows (0 at the north) and TMS rows (0 at the south). It is its own inverse.
func flipRow(y int, zoomLevel uint8) int {
	return (1 << zoomLevel) - 1 - y
}
