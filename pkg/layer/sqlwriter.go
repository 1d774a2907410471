package layer

import (
	"fmt"
	"image/color"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"layer2kml/pkg/types"
)

// SQLiteWriter stores layers in the form SQLiteReader reads: one table per
// layer with TEXT attribute columns and a WKT column, plus the symbology
// tables.
type SQLiteWriter struct {
	db   *sqlx.DB
	wcol string
}

// NewSQLiteWriter creates fn afresh.
func NewSQLiteWriter(fn, wktColumn string) (*SQLiteWriter, error) {
	if wktColumn == "" {
		wktColumn = "WKT"
	}
	os.Remove(fn)
	db, err := sqlx.Open("sqlite", fn)
	if err != nil {
		return nil, errors.Wrap(err, "sqlite")
	}
	if _, err = db.Exec(SCHEMA); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "sqlite schema")
	}
	return &SQLiteWriter{db: db, wcol: wktColumn}, nil
}

func hexColor(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// WriteLayer stores l in a table named after it, replacing any existing
// one.
func (w *SQLiteWriter) WriteLayer(l *types.Layer) error {
	tx, err := w.db.Beginx()
	if err != nil {
		return errors.Wrap(err, "sqlite")
	}
	defer tx.Rollback()

	cols := []string{quoteIdent(w.wcol) + " TEXT"}
	names := []string{quoteIdent(w.wcol)}
	for _, f := range l.Fields {
		cols = append(cols, quoteIdent(f.Name)+" TEXT")
		names = append(names, quoteIdent(f.Name))
	}
	tbl := quoteIdent(l.Name)
	stmts := []string{
		"DROP TABLE IF EXISTS " + tbl,
		fmt.Sprintf("CREATE TABLE %s (%s)", tbl, strings.Join(cols, ", ")),
	}
	for _, s := range stmts {
		if _, err := tx.Exec(s); err != nil {
			return errors.Wrapf(err, "table %s", l.Name)
		}
	}

	marks := make([]string, len(names))
	for j := range marks {
		marks[j] = fmt.Sprintf("$%d", j+1)
	}
	ins := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", tbl, strings.Join(names, ","), strings.Join(marks, ","))
	for _, f := range l.Features {
		args := []interface{}{f.Geometry}
		for _, fd := range l.Fields {
			args = append(args, f.Attributes[fd.Index])
		}
		if _, err := tx.Exec(ins, args...); err != nil {
			return errors.Wrapf(err, "feature %d", f.ID)
		}
	}

	if _, err := tx.Exec("DELETE FROM layer_renderer WHERE layer = $1", l.Name); err != nil {
		return errors.Wrap(err, "renderer")
	}
	if _, err := tx.Exec("DELETE FROM layer_symbols WHERE layer = $1", l.Name); err != nil {
		return errors.Wrap(err, "renderer")
	}
	if r := l.Renderer; r != nil {
		kind := "other"
		field := ""
		switch r.Kind {
		case types.RENDER_SINGLE:
			kind = "single"
		case types.RENDER_UNIQUE:
			kind = "unique"
			for _, fd := range l.Fields {
				if fd.Index == r.Field {
					field = fd.Name
				}
			}
		}
		if _, err := tx.Exec("INSERT INTO layer_renderer (layer, kind, field, transparency) VALUES ($1,$2,$3,$4)",
			l.Name, kind, field, int(r.Transparency)); err != nil {
			return errors.Wrap(err, "renderer")
		}
		for _, s := range r.Symbols {
			if _, err := tx.Exec(`INSERT INTO layer_symbols (layer, value, color, fill_color, line_width, brush, pen)
 VALUES ($1,$2,$3,$4,$5,$6,$7)`, l.Name, s.LowerValue, hexColor(s.Color), hexColor(s.FillColor),
				s.LineWidth, s.Brush, s.Pen); err != nil {
				return errors.Wrap(err, "symbol")
			}
		}
	}
	return errors.Wrap(tx.Commit(), "sqlite")
}

func (w *SQLiteWriter) Close() error {
	return w.db.Close()
}
