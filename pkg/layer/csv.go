package layer

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"layer2kml/pkg/types"
)

// CSVReader reads delimited text with a header row. The WKT column holds
// the geometry; every other column is an attribute. Files ending .tsv are
// tab separated.
type CSVReader struct {
	name string
	opts Options
}

func NewCSVReader(fn string, opts Options) *CSVReader {
	return &CSVReader{name: fn, opts: opts}
}

func (c *CSVReader) Read() (*types.Layer, error) {
	fh, err := os.Open(c.name)
	if err != nil {
		return nil, errors.Wrap(err, "csv")
	}
	defer fh.Close()
	comma := ','
	if strings.EqualFold(filepath.Ext(c.name), ".tsv") {
		comma = '\t'
	}
	return ParseCSV(layerName(c.name), fh, comma, c.opts.WktColumn)
}

func ParseCSV(name string, r io.Reader, comma rune, wktColumn string) (*types.Layer, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	hdr, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(err, "csv header")
	}
	if len(hdr) > 0 {
		hdr[0] = strings.TrimPrefix(hdr[0], "\ufeff")
	}
	wcol := -1
	l := &types.Layer{Name: name, Transparency: 0xff}
	cols := make([]int, len(hdr))
	for j, h := range hdr {
		if wcol < 0 && strings.EqualFold(strings.TrimSpace(h), wktColumn) {
			wcol = j
			cols[j] = -1
			continue
		}
		cols[j] = len(l.Fields)
		l.Fields = append(l.Fields, types.Field{Index: len(l.Fields), Name: strings.TrimSpace(h)})
	}
	if wcol < 0 {
		return nil, errors.Errorf("csv: no %s column", wktColumn)
	}
	for n := int64(1); ; n++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "csv record %d", n)
		}
		f := types.Feature{ID: n, Attributes: make(map[int]string)}
		for j, v := range rec {
			if j >= len(cols) {
				break
			}
			if j == wcol {
				f.Geometry = v
			} else {
				f.Attributes[cols[j]] = v
			}
		}
		l.Features = append(l.Features, f)
	}
	return l, nil
}

// WKTReader reads one geometry per line; blank lines and lines starting
// with '#' are skipped. Features have no attributes.
type WKTReader struct {
	name string
}

func NewWKTReader(fn string) *WKTReader {
	return &WKTReader{name: fn}
}

func (w *WKTReader) Read() (*types.Layer, error) {
	fh, err := os.Open(w.name)
	if err != nil {
		return nil, errors.Wrap(err, "wkt")
	}
	defer fh.Close()
	l := &types.Layer{Name: layerName(w.name), Transparency: 0xff}
	sc := bufio.NewScanner(fh)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for n := int64(1); sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		l.Features = append(l.Features, types.Feature{ID: n, Geometry: line, Attributes: map[int]string{}})
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "wkt")
	}
	return l, nil
}
