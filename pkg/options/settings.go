package options

import (
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mazznoer/csscolorparser"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"github.com/pkg/errors"

	"layer2kml/pkg/types"
)

const (
	KEY_ROOT       = "/qgis2google"
	KEY_OVERRIDE   = KEY_ROOT + "/overridelayerstyle"
	KEY_ALL_LAYERS = KEY_ROOT + "/settingsforalllayers"
	KEY_SINGLE     = KEY_ROOT + "/singlevalue"
)

// Key returns the settings key of one property of a style class, e.g.
// Key("line", "width") is /qgis2google/line/width.
func Key(class, name string) string {
	return KEY_ROOT + "/" + class + "/" + name
}

// Settings is the persisted style configuration: a JSON document whose
// nested objects follow the key path.
type Settings struct {
	data map[string]any
}

func NewSettings() *Settings {
	return &Settings{data: map[string]any{}}
}

func ParseSettings(b []byte) (*Settings, error) {
	v, err := oj.Parse(b)
	if err != nil {
		return nil, errors.Wrap(err, "settings")
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, errors.Errorf("settings: top level is %T, not an object", v)
	}
	return &Settings{data: m}, nil
}

// LoadSettings reads fn. A missing file gives empty settings, so every
// key takes its default.
func LoadSettings(fn string) (*Settings, error) {
	b, err := os.ReadFile(fn)
	if err != nil {
		if os.IsNotExist(err) {
			return NewSettings(), nil
		}
		return nil, errors.Wrap(err, "settings")
	}
	s, err := ParseSettings(b)
	if err != nil {
		return nil, errors.Wrap(err, fn)
	}
	return s, nil
}

func (s *Settings) Save(fn string) error {
	if err := os.MkdirAll(filepath.Dir(fn), 0o755); err != nil {
		return errors.Wrap(err, "settings")
	}
	return errors.Wrap(os.WriteFile(fn, []byte(s.JSON()+"\n"), 0o644), "settings")
}

// JSON is the indented document with sorted keys.
func (s *Settings) JSON() string {
	return oj.JSON(s.data, &oj.Options{Indent: 2, Sort: true})
}

func keyPath(key string) jp.Expr {
	var x jp.Expr
	for _, p := range strings.Split(strings.Trim(key, "/"), "/") {
		if p == "" {
			continue
		}
		if x == nil {
			x = jp.C(p)
		} else {
			x = x.C(p)
		}
	}
	return x
}

func (s *Settings) Value(key string) (any, bool) {
	r := keyPath(key).Get(s.data)
	if len(r) == 0 || r[0] == nil {
		return nil, false
	}
	return r[0], true
}

func (s *Settings) Set(key string, v any) error {
	return errors.Wrap(keyPath(key).Set(s.data, v), key)
}

func (s *Settings) String(key, def string) string {
	v, ok := s.Value(key)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return def
}

func (s *Settings) Float(key string, def float64) float64 {
	v, ok := s.Value(key)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case int64:
		return float64(t)
	case float64:
		return t
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return f
		}
	}
	return def
}

func (s *Settings) Int(key string, def int) int {
	v, ok := s.Value(key)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case int64:
		return int(t)
	case float64:
		return int(t)
	case bool:
		if t {
			return 1
		}
		return 0
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n
		}
	}
	return def
}

// Bool accepts JSON booleans, numbers (non-zero is true) and the strings
// strconv.ParseBool understands.
func (s *Settings) Bool(key string, def bool) bool {
	v, ok := s.Value(key)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case bool:
		return t
	case int64:
		return t != 0
	case float64:
		return t != 0
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(t)); err == nil {
			return b
		}
	}
	return def
}

// Color parses a CSS colour string (#rrggbb, #rrggbbaa, rgb(), names).
func (s *Settings) Color(key string, def color.NRGBA) (color.NRGBA, error) {
	str := s.String(key, "")
	if str == "" {
		return def, nil
	}
	c, err := csscolorparser.Parse(str)
	if err != nil {
		return def, errors.Wrapf(err, "%s: bad colour %q", key, str)
	}
	r, g, b, a := c.RGBA255()
	return color.NRGBA{R: r, G: g, B: b, A: a}, nil
}

func (s *Settings) SetColor(key string, c color.NRGBA) error {
	cc := csscolorparser.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255, A: float64(c.A) / 255}
	return s.Set(key, cc.HexString())
}

// Alpha converts a stored opacity percentage into an alpha value.
func Alpha(pct int) uint8 {
	if pct < 0 {
		pct = 0
	} else if pct > 100 {
		pct = 100
	}
	return uint8(pct * 255 / 100)
}

// Percent is the inverse of Alpha, rounding down.
func Percent(alpha uint8) int {
	return int(alpha) * 100 / 255
}

func (s *Settings) styleConfig(class string, def types.StyleConfig) (types.StyleConfig, error) {
	cfg := def
	var err error
	if cfg.Color, err = s.Color(Key(class, "color"), def.Color); err != nil {
		return cfg, err
	}
	if pct := s.Int(Key(class, "opacity"), -1); pct >= 0 {
		cfg.Color.A = Alpha(pct)
	}
	switch mode := s.String(Key(class, "colormode"), string(types.ColorNormal)); mode {
	case string(types.ColorRandom):
		cfg.ColorMode = types.ColorRandom
	case string(types.ColorNormal):
		cfg.ColorMode = types.ColorNormal
	default:
		return cfg, errors.Errorf("%s: unknown colour mode %q", Key(class, "colormode"), mode)
	}
	cfg.Scale = s.Float(Key(class, "scale"), def.Scale)
	cfg.Width = s.Float(Key(class, "width"), def.Width)
	cfg.Fill = s.Bool(Key(class, "fill"), def.Fill)
	cfg.Outline = s.Bool(Key(class, "outline"), def.Outline)
	cfg.IconHref = s.String(Key(class, "href"), def.IconHref)
	return cfg, nil
}

func (s *Settings) geometryStyle(class string) (types.GeometryStyle, error) {
	gs := types.DefaultGeometryStyle()
	gs.Extrude = s.Int(Key(class, "extrude"), 0)
	gs.Tessellate = s.Int(Key(class, "tessellate"), 0)
	gs.AltitudeValue = s.Int(Key(class, "altitudevalue"), types.NO_ALTITUDE)
	str := s.String(Key(class, "altitudemode"), "")
	m, ok := types.ParseAltitudeMode(str)
	if !ok {
		return gs, errors.Errorf("%s: unknown altitude mode %q", Key(class, "altitudemode"), str)
	}
	gs.AltitudeMode = m
	return gs, nil
}

// LoadStyleSet reads the style settings of one export. Missing keys take
// the defaults of types.DefaultStyleSet.
func LoadStyleSet(s *Settings) (types.StyleSet, error) {
	ss := types.DefaultStyleSet()
	var err error
	if ss.Label, err = s.styleConfig("label", ss.Label); err != nil {
		return ss, err
	}
	if ss.Icon, err = s.styleConfig("icon", ss.Icon); err != nil {
		return ss, err
	}
	if ss.Line, err = s.styleConfig("line", ss.Line); err != nil {
		return ss, err
	}
	if ss.Poly, err = s.styleConfig("poly", ss.Poly); err != nil {
		return ss, err
	}
	if ss.PointGeom, err = s.geometryStyle("point"); err != nil {
		return ss, err
	}
	if ss.LineGeom, err = s.geometryStyle("line"); err != nil {
		return ss, err
	}
	if ss.PolyGeom, err = s.geometryStyle("poly"); err != nil {
		return ss, err
	}
	ss.ForceSingle = s.Bool(KEY_OVERRIDE, false)
	return ss, nil
}

func (s *Settings) resetGeometry() error {
	for _, class := range []string{"point", "line", "poly"} {
		if err := s.Set(Key(class, "extrude"), int64(0)); err != nil {
			return err
		}
		if class != "point" {
			if err := s.Set(Key(class, "tessellate"), int64(0)); err != nil {
				return err
			}
		}
		if err := s.Set(Key(class, "altitudemode"), string(types.AltClampToGround)); err != nil {
			return err
		}
		if err := s.Set(Key(class, "altitudevalue"), int64(types.NO_ALTITUDE)); err != nil {
			return err
		}
	}
	return nil
}

// DefaultsFromSymbol seeds the settings from the symbol of a single
// symbol layer, transp being the layer opacity. Geometry settings go back
// to their defaults.
func DefaultsFromSymbol(s *Settings, sym types.Symbol, transp uint8) error {
	pct := int64(Percent(transp))
	set := []struct {
		key string
		val any
	}{
		{KEY_SINGLE, int64(1)},
		{Key("label", "opacity"), pct},
		{Key("label", "colormode"), string(types.ColorNormal)},
		{Key("label", "scale"), 1.0},
		{Key("line", "opacity"), pct},
		{Key("line", "colormode"), string(types.ColorNormal)},
		{Key("line", "width"), sym.LineWidth},
		{Key("poly", "opacity"), pct},
		{Key("poly", "colormode"), string(types.ColorNormal)},
		{Key("poly", "fill"), sym.Brush},
		{Key("poly", "outline"), sym.Pen},
	}
	for _, kv := range set {
		if err := s.Set(kv.key, kv.val); err != nil {
			return err
		}
	}
	c := sym.Color
	c.A = transp
	fc := sym.FillColor
	fc.A = transp
	for key, v := range map[string]color.NRGBA{
		Key("label", "color"): c,
		Key("line", "color"):  c,
		Key("poly", "color"):  fc,
	} {
		if err := s.SetColor(key, v); err != nil {
			return err
		}
	}
	return s.resetGeometry()
}

// ApplyLayerDefaults derives the settings from the layer symbology unless
// the settings are shared by all layers. It reports whether anything was
// changed.
func ApplyLayerDefaults(s *Settings, layer *types.Layer) (bool, error) {
	if s.Bool(KEY_ALL_LAYERS, false) || layer.Renderer == nil {
		return false, nil
	}
	if len(layer.Renderer.Symbols) == 1 {
		return true, DefaultsFromSymbol(s, layer.Renderer.Symbols[0], layer.Transparency)
	}
	if err := s.Set(KEY_SINGLE, int64(0)); err != nil {
		return true, err
	}
	return true, s.resetGeometry()
}
