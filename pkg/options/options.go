package options

import (
	"path/filepath"

	"github.com/caarlos0/env/v10"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"layer2kml/pkg/types"
)

// ENV_PREFIX prefixes every environment setting, e.g. LAYER2KML_KMZ=true.
const ENV_PREFIX = "LAYER2KML_"

type Options struct {
	Settings   string `env:"SETTINGS"`
	TempDir    string `env:"TEMPDIR"`
	TempPrefix string `env:"TEMP_PREFIX" envDefault:"layer2kml"`
	Outdir     string `env:"OUTDIR"`
	Output     string
	Kmz        bool   `env:"KMZ"`
	Open       bool   `env:"OPEN"`
	Keep       bool   `env:"KEEP"`
	Classify   string `env:"CLASSIFY"`
	Gradset    string `env:"GRADIENT" envDefault:"red"`
	Table      string `env:"TABLE"`
	WktColumn  string `env:"WKT_COLUMN" envDefault:"WKT"`
	Bbox       string
	Point      string
	// UnitsPerPixel sizes the --point search box in layer units.
	UnitsPerPixel float64 `env:"UNITS_PER_PIXEL" envDefault:"1"`
	LogLevel      string  `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat     string  `env:"LOG_FORMAT" envDefault:"text"`
	Simplify      float64 `env:"SIMPLIFY"`
	Sql           string  `env:"SQL"`
	Save          bool
	Dump          bool
}

var Config Options

// Load reads the environment into Config. Command line flags bound with
// AddFlags are parsed afterwards and so take precedence.
func Load() error {
	var o Options
	if err := env.ParseWithOptions(&o, env.Options{Prefix: ENV_PREFIX}); err != nil {
		return errors.Wrap(err, "environment")
	}
	if o.Settings == "" {
		o.Settings = DefaultSettingsFile()
	}
	Config = o
	return nil
}

func DefaultSettingsFile() string {
	return filepath.Join(types.GetConfigDir(), "settings.json")
}

func AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&Config.Settings, "settings", Config.Settings, "Style settings file")
	fs.StringVarP(&Config.Output, "output", "o", "", "Output file (.kml or .kmz); default is a temporary file")
	fs.StringVar(&Config.Outdir, "outdir", Config.Outdir, "Output directory, file named after the layer")
	fs.BoolVar(&Config.Kmz, "kmz", Config.Kmz, "Generate KMZ (vice default KML) with --outdir")
	fs.BoolVar(&Config.Open, "open", Config.Open, "Open the result in the default viewer")
	fs.BoolVar(&Config.Keep, "keep", Config.Keep, "Keep temporary files on exit")
	fs.StringVar(&Config.Classify, "classify", Config.Classify, "Classify features by unique values of this attribute")
	fs.StringVar(&Config.Gradset, "gradient", Config.Gradset, "Classification colour gradient [red,rdgn,yor]")
	fs.StringVar(&Config.Table, "table", Config.Table, "SQLite table (default: first table with a geometry column)")
	fs.StringVar(&Config.WktColumn, "wkt-column", Config.WktColumn, "Geometry column of CSV and SQLite layers")
	fs.StringVar(&Config.Bbox, "bbox", "", "Export features intersecting minx,miny,maxx,maxy")
	fs.StringVar(&Config.Point, "point", "", "Export the feature at x,y")
	fs.Float64Var(&Config.UnitsPerPixel, "units-per-pixel", Config.UnitsPerPixel, "Layer units per screen pixel of the --point search box")
	fs.StringVar(&Config.LogLevel, "log-level", Config.LogLevel, "Log level [debug,info,warn,error]")
	fs.StringVar(&Config.LogFormat, "log-format", Config.LogFormat, "Log format [text,json]")
	fs.Float64Var(&Config.Simplify, "simplify", Config.Simplify, "Simplify lines and rings to within this distance (layer units)")
	fs.StringVar(&Config.Sql, "sql", Config.Sql, "Also write the exported features to this SQLite database")
	fs.BoolVar(&Config.Save, "save-settings", false, "Save settings derived from the layer symbology")
	fs.BoolVar(&Config.Dump, "dump", false, "Dump layer fields and resolved style settings and exit")
}
