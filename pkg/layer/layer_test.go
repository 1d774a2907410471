package layer

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"layer2kml/pkg/types"
	"layer2kml/pkg/wkt"
)

const fcJSON = `{
  "type": "FeatureCollection",
  "renderer": {
    "kind": "unique", "field": "kind", "transparency": 200,
    "symbols": [
      {"value": "road", "color": "#ff0000", "line_width": 2, "pen": true},
      {"value": "river", "color": "blue", "fill_color": "#00ff0080", "brush": true}
    ]
  },
  "features": [
    {"type": "Feature", "id": 7, "geometry": {"type": "Point", "coordinates": [1.5, 2]},
     "properties": {"name": "A & B", "kind": "road", "lanes": 2}},
    {"type": "Feature", "geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,0]]]},
     "properties": {"kind": "river", "description": "wet"}}
  ]
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	fn := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(fn, []byte(content), 0o644))
	return fn
}

func TestParseGeoJSON(t *testing.T) {
	l, err := ParseGeoJSON("sites", []byte(fcJSON))
	require.NoError(t, err)
	assert.Equal(t, "sites", l.Name)
	require.Len(t, l.Fields, 4)
	assert.Equal(t, []string{"description", "kind", "lanes", "name"},
		[]string{l.Fields[0].Name, l.Fields[1].Name, l.Fields[2].Name, l.Fields[3].Name})

	require.Len(t, l.Features, 2)
	f := l.Features[0]
	assert.Equal(t, int64(7), f.ID)
	assert.Equal(t, "A & B", f.Attributes[l.FieldByName("name")])
	assert.Equal(t, "2", f.Attributes[l.FieldByName("lanes")])
	g, err := wkt.Parse(f.Geometry)
	require.NoError(t, err)
	assert.Equal(t, wkt.KindPoint, g.Kind())
	assert.Equal(t, "1.5 2", g.Sequences()[0].Text())

	assert.Equal(t, int64(1), l.Features[1].ID)
	g, err = wkt.Parse(l.Features[1].Geometry)
	require.NoError(t, err)
	assert.Equal(t, wkt.KindPolygon, g.Kind())

	r := l.Renderer
	require.NotNil(t, r)
	assert.Equal(t, types.RENDER_UNIQUE, r.Kind)
	assert.Equal(t, l.FieldByName("kind"), r.Field)
	assert.Equal(t, uint8(200), r.Transparency)
	assert.Equal(t, uint8(200), l.Transparency)
	require.Len(t, r.Symbols, 2)
	assert.Equal(t, color.NRGBA{R: 0xff, A: 0xff}, r.Symbols[0].Color)
	assert.Equal(t, r.Symbols[0].Color, r.Symbols[0].FillColor)
	assert.Equal(t, 2.0, r.Symbols[0].LineWidth)
	assert.True(t, r.Symbols[0].Pen)
	assert.False(t, r.Symbols[0].Brush)
	assert.Equal(t, color.NRGBA{G: 0xff, A: 0x80}, r.Symbols[1].FillColor)

	sym, ok := r.SymbolFor(&l.Features[1])
	require.True(t, ok)
	assert.Equal(t, "river", sym.LowerValue)
}

func TestParseGeoJSONBadRendererField(t *testing.T) {
	js := strings.Replace(fcJSON, `"field": "kind"`, `"field": "missing"`, 1)
	_, err := ParseGeoJSON("x", []byte(js))
	assert.Error(t, err)
}

func TestParseGeoJSONOtherRenderer(t *testing.T) {
	js := strings.Replace(fcJSON, `"kind": "unique"`, `"kind": "graduated"`, 1)
	l, err := ParseGeoJSON("x", []byte(js))
	require.NoError(t, err)
	assert.Equal(t, types.RENDER_OTHER, l.Renderer.Kind)
}

func TestSQLiteRoundTrip(t *testing.T) {
	src, err := ParseGeoJSON("sites", []byte(fcJSON))
	require.NoError(t, err)

	fn := filepath.Join(t.TempDir(), "layers.sqlite")
	w, err := NewSQLiteWriter(fn, "")
	require.NoError(t, err)
	require.NoError(t, w.WriteLayer(src))
	require.NoError(t, w.Close())

	ftype, err := types.EvinceFileType(fn)
	require.NoError(t, err)
	assert.Equal(t, types.IS_SQL, ftype)

	rd, err := Open(fn, Options{})
	require.NoError(t, err)
	l, err := rd.Read()
	require.NoError(t, err)
	assert.Equal(t, "sites", l.Name)
	require.Len(t, l.Features, 2)
	assert.Equal(t, len(src.Fields), len(l.Fields))
	for j := range src.Features {
		assert.Equal(t, src.Features[j].Geometry, l.Features[j].Geometry)
	}
	assert.Equal(t, "A & B", l.Features[0].Attributes[l.FieldByName("name")])

	r := l.Renderer
	require.NotNil(t, r)
	assert.Equal(t, types.RENDER_UNIQUE, r.Kind)
	assert.Equal(t, l.FieldByName("kind"), r.Field)
	assert.Equal(t, uint8(200), r.Transparency)
	assert.Equal(t, src.Renderer.Symbols, r.Symbols)
}

func TestSQLiteTableSelection(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "multi.db")
	w, err := NewSQLiteWriter(fn, "geom")
	require.NoError(t, err)
	require.NoError(t, w.WriteLayer(&types.Layer{Name: "b_lines",
		Features: []types.Feature{{Geometry: "LINESTRING(0 0,1 1)"}}}))
	require.NoError(t, w.WriteLayer(&types.Layer{Name: "a_points",
		Fields:   []types.Field{{Index: 0, Name: "name"}},
		Features: []types.Feature{{Geometry: "POINT(1 2)", Attributes: map[int]string{0: "p"}}}}))
	require.NoError(t, w.Close())

	l, err := NewSQLiteReader(fn, Options{WktColumn: "geom"}).Read()
	require.NoError(t, err)
	assert.Equal(t, "a_points", l.Name)
	assert.Nil(t, l.Renderer)
	assert.Equal(t, int64(1), l.Features[0].ID)

	l, err = NewSQLiteReader(fn, Options{WktColumn: "GEOM", Table: "b_lines"}).Read()
	require.NoError(t, err)
	assert.Equal(t, "LINESTRING(0 0,1 1)", l.Features[0].Geometry)

	_, err = NewSQLiteReader(fn, Options{WktColumn: "WKT"}).Read()
	assert.Error(t, err)
}

func TestCSV(t *testing.T) {
	fn := writeFile(t, "pts.csv", "id,WKT,name\n1,\"POINT(1 2)\",alpha\n2,\"LINESTRING(0 0, 1 1)\",\"b, c\"\n")
	rd, err := Open(fn, Options{})
	require.NoError(t, err)
	l, err := rd.Read()
	require.NoError(t, err)
	assert.Equal(t, "pts", l.Name)
	require.Len(t, l.Fields, 2)
	require.Len(t, l.Features, 2)
	assert.Equal(t, "LINESTRING(0 0, 1 1)", l.Features[1].Geometry)
	assert.Equal(t, "b, c", l.Features[1].Attributes[l.FieldByName("name")])
	assert.Equal(t, "1", l.Features[0].Attributes[l.FieldByName("id")])
}

func TestTSV(t *testing.T) {
	fn := writeFile(t, "pts.tsv", "wkt\tname\nPOINT(3 4)\tx\n")
	l, err := NewCSVReader(fn, Options{WktColumn: "WKT"}).Read()
	require.NoError(t, err)
	require.Len(t, l.Features, 1)
	assert.Equal(t, "POINT(3 4)", l.Features[0].Geometry)
}

func TestCSVNoGeometryColumn(t *testing.T) {
	_, err := ParseCSV("x", strings.NewReader("a,b\n1,2\n"), ',', "WKT")
	assert.Error(t, err)
}

func TestWKTLines(t *testing.T) {
	fn := writeFile(t, "shapes.txt", "POINT(1 2)\n\n# comment\nPOLYGON((0 0,1 0,1 1,0 0))\n")
	ftype, err := types.EvinceFileType(fn)
	require.NoError(t, err)
	assert.Equal(t, types.IS_WKT, ftype)
	rd, err := Open(fn, Options{})
	require.NoError(t, err)
	l, err := rd.Read()
	require.NoError(t, err)
	require.Len(t, l.Features, 2)
	assert.Equal(t, int64(4), l.Features[1].ID)
}

func TestOpenUnknown(t *testing.T) {
	fn := writeFile(t, "notes.bin", "\x00\x01\x02")
	_, err := Open(fn, Options{})
	assert.ErrorIs(t, err, ErrUnknownFormat)
	_, err = Open(filepath.Join(t.TempDir(), "absent.csv"), Options{})
	assert.Error(t, err)
}
