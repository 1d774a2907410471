// Package layer reads vector layers (features and, where the source
// carries it, symbology) from GeoJSON, SQLite, CSV and plain WKT files.
package layer

import (
	"image/color"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mazznoer/csscolorparser"
	"github.com/pkg/errors"

	"layer2kml/pkg/types"
)

var ErrUnknownFormat = errors.New("unknown layer format")

type Reader interface {
	Read() (*types.Layer, error)
}

type Options struct {
	// Table selects the SQLite table; empty picks the first table with a
	// WktColumn.
	Table string
	// WktColumn names the geometry column of CSV and SQLite sources.
	WktColumn string
}

// Open returns the reader for fn, chosen by its content.
func Open(fn string, opts Options) (Reader, error) {
	if opts.WktColumn == "" {
		opts.WktColumn = "WKT"
	}
	ftype, err := types.EvinceFileType(fn)
	if err != nil {
		return nil, err
	}
	switch ftype {
	case types.IS_GEOJSON:
		return NewGeoJSONReader(fn), nil
	case types.IS_SQL:
		return NewSQLiteReader(fn, opts), nil
	case types.IS_CSV:
		return NewCSVReader(fn, opts), nil
	case types.IS_WKT:
		return NewWKTReader(fn), nil
	}
	return nil, errors.Wrap(ErrUnknownFormat, fn)
}

func layerName(fn string) string {
	b := filepath.Base(fn)
	return strings.TrimSuffix(b, filepath.Ext(b))
}

func valueString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

func parseColor(s string) (color.NRGBA, error) {
	if s == "" {
		return color.NRGBA{A: 0xff}, nil
	}
	c, err := csscolorparser.Parse(s)
	if err != nil {
		return color.NRGBA{}, errors.Wrapf(err, "colour %q", s)
	}
	r, g, b, a := c.RGBA255()
	return color.NRGBA{R: r, G: g, B: b, A: a}, nil
}

// symbolSpec is a symbol as stored in SQLite and GeoJSON sources.
type symbolSpec struct {
	Value     string  `db:"value" json:"value"`
	Color     string  `db:"color" json:"color"`
	FillColor string  `db:"fill_color" json:"fill_color"`
	LineWidth float64 `db:"line_width" json:"line_width"`
	Brush     bool    `db:"brush" json:"brush"`
	Pen       bool    `db:"pen" json:"pen"`
}

type rendererSpec struct {
	Kind         string       `db:"kind" json:"kind"`
	Field        string       `db:"field" json:"field"`
	Transparency int          `db:"transparency" json:"transparency"`
	Symbols      []symbolSpec `db:"-" json:"symbols"`
}

// renderer converts a stored renderer description. Kinds are "single" and
// "unique"; anything else is kept as RENDER_OTHER so the export can
// refuse it.
func (rs *rendererSpec) renderer(l *types.Layer) (*types.Renderer, error) {
	var syms []types.Symbol
	for _, s := range rs.Symbols {
		c, err := parseColor(s.Color)
		if err != nil {
			return nil, err
		}
		fc := c
		if s.FillColor != "" {
			if fc, err = parseColor(s.FillColor); err != nil {
				return nil, err
			}
		}
		syms = append(syms, types.Symbol{
			LowerValue: s.Value,
			Color:      c,
			FillColor:  fc,
			LineWidth:  s.LineWidth,
			Brush:      s.Brush,
			Pen:        s.Pen,
		})
	}
	transp := rs.Transparency
	if transp < 0 || transp > 255 {
		transp = 255
	}
	r := &types.Renderer{Transparency: uint8(transp), Symbols: syms}
	switch strings.ToLower(rs.Kind) {
	case "single", "singlesymbol":
		r.Kind = types.RENDER_SINGLE
		r.Style = types.DefaultStyleSet()
	case "unique", "uniquevalue":
		r.Kind = types.RENDER_UNIQUE
		r.Field = l.FieldByName(rs.Field)
		if r.Field < 0 {
			return nil, errors.Errorf("renderer field %q not in layer %s", rs.Field, l.Name)
		}
	default:
		r.Kind = types.RENDER_OTHER
	}
	l.Transparency = r.Transparency
	return r, nil
}
