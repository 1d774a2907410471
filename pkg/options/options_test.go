package options

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"layer2kml/pkg/types"
)

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("LAYER2KML_KMZ", "true")
	t.Setenv("LAYER2KML_TEMP_PREFIX", "qgis2google")
	t.Setenv("LAYER2KML_SETTINGS", "/tmp/s.json")
	t.Setenv("LAYER2KML_LOG_LEVEL", "debug")
	require.NoError(t, Load())
	assert.True(t, Config.Kmz)
	assert.Equal(t, "qgis2google", Config.TempPrefix)
	assert.Equal(t, "/tmp/s.json", Config.Settings)
	assert.Equal(t, "debug", Config.LogLevel)
	assert.Equal(t, "text", Config.LogFormat)
	assert.Equal(t, "WKT", Config.WktColumn)
	assert.Equal(t, 1.0, Config.UnitsPerPixel)
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("LAYER2KML_GRADIENT", "yor")
	require.NoError(t, Load())
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(fs)
	assert.Equal(t, "yor", Config.Gradset)
	require.NoError(t, fs.Parse([]string{"--gradient", "rdgn", "-o", "x.kmz", "--units-per-pixel", "0.0001"}))
	assert.Equal(t, "rdgn", Config.Gradset)
	assert.Equal(t, 0.0001, Config.UnitsPerPixel)
	assert.Equal(t, "x.kmz", Config.Output)
}

func TestDefaultSettingsFile(t *testing.T) {
	require.NoError(t, Load())
	if os.Getenv("LAYER2KML_SETTINGS") == "" {
		assert.Equal(t, DefaultSettingsFile(), Config.Settings)
	}
	assert.Equal(t, "settings.json", filepath.Base(DefaultSettingsFile()))
}

func TestDefaultStyleSet(t *testing.T) {
	ss, err := LoadStyleSet(NewSettings())
	require.NoError(t, err)
	assert.Equal(t, types.DefaultStyleSet(), ss)
	assert.Equal(t, types.AltClampToGround, ss.LineGeom.AltitudeMode)
	assert.Equal(t, types.NO_ALTITUDE, ss.PolyGeom.AltitudeValue)
	assert.Zero(t, ss.PolyGeom.Extrude)
	assert.Zero(t, ss.LineGeom.Tessellate)
}

const sample = `{
  "qgis2google": {
    "overridelayerstyle": 1,
    "line": {"color": "#ff0000", "opacity": 50, "width": 3, "colormode": "random",
             "altitudemode": "relativeToGround", "altitudevalue": 100, "extrude": 1, "tessellate": "1"},
    "poly": {"color": "rgb(0, 0, 255)", "fill": false, "outline": "1", "altitudemode": "clampToSeaFloor"},
    "label": {"color": "green", "scale": 1.5},
    "icon": {"href": "http://example.com/pin.png"},
    "point": {"altitudemode": "absolute", "altitudevalue": 25}
  }
}`

func TestLoadStyleSet(t *testing.T) {
	s, err := ParseSettings([]byte(sample))
	require.NoError(t, err)
	ss, err := LoadStyleSet(s)
	require.NoError(t, err)

	assert.True(t, ss.ForceSingle)
	assert.Equal(t, color.NRGBA{R: 0xff, A: 127}, ss.Line.Color)
	assert.Equal(t, 3.0, ss.Line.Width)
	assert.Equal(t, types.ColorRandom, ss.Line.ColorMode)
	assert.Equal(t, types.GeometryStyle{Extrude: 1, Tessellate: 1, AltitudeMode: types.AltRelativeToGround, AltitudeValue: 100}, ss.LineGeom)
	assert.True(t, ss.LineGeom.InjectAltitude())

	assert.Equal(t, color.NRGBA{B: 0xff, A: 0xff}, ss.Poly.Color)
	assert.False(t, ss.Poly.Fill)
	assert.True(t, ss.Poly.Outline)
	assert.Equal(t, types.AltClampToSeaFloor, ss.PolyGeom.AltitudeMode)
	assert.False(t, ss.PolyGeom.InjectAltitude())

	assert.Equal(t, color.NRGBA{G: 0x80, A: 0xff}, ss.Label.Color)
	assert.Equal(t, 1.5, ss.Label.Scale)
	assert.Equal(t, "http://example.com/pin.png", ss.Icon.IconHref)
	assert.Equal(t, types.GeometryStyle{AltitudeMode: types.AltAbsolute, AltitudeValue: 25}, ss.PointGeom)
}

func TestLoadStyleSetErrors(t *testing.T) {
	for _, js := range []string{
		`{"qgis2google": {"line": {"color": "not a colour"}}}`,
		`{"qgis2google": {"poly": {"altitudemode": "floating"}}}`,
		`{"qgis2google": {"label": {"colormode": "sparkly"}}}`,
	} {
		s, err := ParseSettings([]byte(js))
		require.NoError(t, err)
		_, err = LoadStyleSet(s)
		assert.Error(t, err, js)
	}
	_, err := ParseSettings([]byte(`[1, 2]`))
	assert.Error(t, err)
	_, err = ParseSettings([]byte(`{`))
	assert.Error(t, err)
}

func TestAlphaPercent(t *testing.T) {
	assert.Equal(t, uint8(255), Alpha(100))
	assert.Equal(t, uint8(127), Alpha(50))
	assert.Equal(t, uint8(0), Alpha(-3))
	assert.Equal(t, uint8(255), Alpha(250))
	assert.Equal(t, 100, Percent(255))
	assert.Equal(t, 50, Percent(128))
}

func TestSaveAndLoad(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "conf", "settings.json")
	s, err := LoadSettings(fn)
	require.NoError(t, err)
	require.NoError(t, s.Set(Key("line", "width"), 2.5))
	require.NoError(t, s.SetColor(Key("line", "color"), color.NRGBA{R: 0x12, G: 0x34, B: 0x56, A: 0xff}))
	require.NoError(t, s.Set(KEY_ALL_LAYERS, true))
	require.NoError(t, s.Save(fn))

	s2, err := LoadSettings(fn)
	require.NoError(t, err)
	assert.Equal(t, 2.5, s2.Float(Key("line", "width"), 0))
	assert.True(t, s2.Bool(KEY_ALL_LAYERS, false))
	c, err := s2.Color(Key("line", "color"), color.NRGBA{})
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0x12, G: 0x34, B: 0x56, A: 0xff}, c)
}

func TestDefaultsFromSymbol(t *testing.T) {
	s := NewSettings()
	require.NoError(t, s.Set(Key("line", "altitudevalue"), int64(40)))
	sym := types.Symbol{
		Color:     color.NRGBA{R: 0xff, A: 0xff},
		FillColor: color.NRGBA{G: 0xff, A: 0xff},
		LineWidth: 2,
		Brush:     true,
	}
	require.NoError(t, DefaultsFromSymbol(s, sym, 0xff))
	assert.Equal(t, 1, s.Int(KEY_SINGLE, 0))
	assert.Equal(t, 100, s.Int(Key("line", "opacity"), 0))
	assert.Equal(t, types.NO_ALTITUDE, s.Int(Key("line", "altitudevalue"), 0))

	ss, err := LoadStyleSet(s)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0xff, A: 0xff}, ss.Line.Color)
	assert.Equal(t, color.NRGBA{G: 0xff, A: 0xff}, ss.Poly.Color)
	assert.Equal(t, 2.0, ss.Line.Width)
	assert.True(t, ss.Poly.Fill)
	assert.False(t, ss.Poly.Outline)
	assert.Equal(t, types.AltClampToGround, ss.LineGeom.AltitudeMode)
}

func TestApplyLayerDefaults(t *testing.T) {
	r := types.UniqueValue(0, 0xff, []types.Symbol{{LowerValue: "a", LineWidth: 4}})
	l := &types.Layer{Name: "l", Renderer: &r, Transparency: 0xff}

	s := NewSettings()
	changed, err := ApplyLayerDefaults(s, l)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 4.0, s.Float(Key("line", "width"), 0))

	s = NewSettings()
	require.NoError(t, s.Set(KEY_ALL_LAYERS, int64(1)))
	changed, err = ApplyLayerDefaults(s, l)
	require.NoError(t, err)
	assert.False(t, changed)
	_, ok := s.Value(Key("line", "width"))
	assert.False(t, ok)

	changed, err = ApplyLayerDefaults(NewSettings(), &types.Layer{Name: "bare"})
	require.NoError(t, err)
	assert.False(t, changed)
}
