package layer

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"layer2kml/pkg/types"
)

// Symbology tables, keyed by layer (table) name.
const SCHEMA = `CREATE TABLE IF NOT EXISTS layer_renderer (layer TEXT NOT NULL PRIMARY KEY,
 kind TEXT NOT NULL, field TEXT, transparency INTEGER DEFAULT 255);
CREATE TABLE IF NOT EXISTS layer_symbols (layer TEXT NOT NULL, value TEXT,
 color TEXT, fill_color TEXT, line_width REAL DEFAULT 1, brush INTEGER DEFAULT 1, pen INTEGER DEFAULT 1)`

const fidColumn = "__fid"

type SQLiteReader struct {
	name string
	opts Options
}

func NewSQLiteReader(fn string, opts Options) *SQLiteReader {
	return &SQLiteReader{name: fn, opts: opts}
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func isMetaTable(t string) bool {
	return strings.HasPrefix(t, "sqlite_") || t == "layer_renderer" || t == "layer_symbols"
}

func columns(db *sqlx.DB, table string) ([]string, error) {
	rows, err := db.Queryx(fmt.Sprintf("SELECT * FROM %s LIMIT 0", quoteIdent(table)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return rows.Columns()
}

func findColumn(cols []string, name string) string {
	for _, c := range cols {
		if strings.EqualFold(c, name) {
			return c
		}
	}
	return ""
}

// findTable returns the first table, by name, that has a geometry column.
func (s *SQLiteReader) findTable(db *sqlx.DB) (string, error) {
	var tables []string
	if err := db.Select(&tables, "SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name"); err != nil {
		return "", err
	}
	for _, t := range tables {
		if isMetaTable(t) {
			continue
		}
		cols, err := columns(db, t)
		if err != nil {
			return "", err
		}
		if findColumn(cols, s.opts.WktColumn) != "" {
			return t, nil
		}
	}
	return "", errors.Errorf("no table with a %s column", s.opts.WktColumn)
}

func (s *SQLiteReader) Read() (*types.Layer, error) {
	db, err := sqlx.Open("sqlite", s.name)
	if err != nil {
		return nil, errors.Wrap(err, "sqlite")
	}
	defer db.Close()

	table := s.opts.Table
	if table == "" {
		if table, err = s.findTable(db); err != nil {
			return nil, errors.Wrap(err, s.name)
		}
	}
	cols, err := columns(db, table)
	if err != nil {
		return nil, errors.Wrapf(err, "table %s", table)
	}
	wcol := findColumn(cols, s.opts.WktColumn)
	if wcol == "" {
		return nil, errors.Errorf("table %s has no %s column", table, s.opts.WktColumn)
	}

	l := &types.Layer{Name: table, Transparency: 0xff}
	for _, c := range cols {
		if c != wcol {
			l.Fields = append(l.Fields, types.Field{Index: len(l.Fields), Name: c})
		}
	}

	rows, err := db.Queryx(fmt.Sprintf("SELECT rowid AS %s, * FROM %s ORDER BY rowid", fidColumn, quoteIdent(table)))
	if err != nil {
		return nil, errors.Wrapf(err, "table %s", table)
	}
	defer rows.Close()
	for rows.Next() {
		res := make(map[string]interface{})
		if err := rows.MapScan(res); err != nil {
			return nil, errors.Wrapf(err, "table %s", table)
		}
		f := types.Feature{Attributes: make(map[int]string)}
		if id, ok := res[fidColumn].(int64); ok {
			f.ID = id
		}
		f.Geometry = valueString(res[wcol])
		for _, fd := range l.Fields {
			f.Attributes[fd.Index] = valueString(res[fd.Name])
		}
		l.Features = append(l.Features, f)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "table %s", table)
	}

	if l.Renderer, err = readRenderer(db, l); err != nil {
		return nil, errors.Wrapf(err, "renderer of %s", table)
	}
	return l, nil
}

// readRenderer loads the layer symbology, if the database has any.
func readRenderer(db *sqlx.DB, l *types.Layer) (*types.Renderer, error) {
	var n int
	if err := db.Get(&n, "SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'layer_renderer'"); err != nil || n == 0 {
		return nil, err
	}
	var rs rendererSpec
	err := db.Get(&rs, "SELECT kind, coalesce(field, '') AS field, coalesce(transparency, 255) AS transparency FROM layer_renderer WHERE layer = $1", l.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	err = db.Select(&rs.Symbols, `SELECT coalesce(value, '') AS value, coalesce(color, '') AS color,
 coalesce(fill_color, '') AS fill_color, coalesce(line_width, 1) AS line_width,
 coalesce(brush, 1) AS brush, coalesce(pen, 1) AS pen
 FROM layer_symbols WHERE layer = $1 ORDER BY rowid`, l.Name)
	if err != nil {
		return nil, err
	}
	return rs.renderer(l)
}
