package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/yookoala/realpath"

	"layer2kml/pkg/kmlgen"
	"layer2kml/pkg/layer"
	"layer2kml/pkg/options"
	"layer2kml/pkg/selection"
	"layer2kml/pkg/styles"
	"layer2kml/pkg/types"
)

var GitCommit = "local"
var GitTag = "0.0.0"

func GetVersion() string {
	return fmt.Sprintf("%s %s commit:%s", filepath.Base(os.Args[0]), GitTag, GitCommit)
}

func main() {
	if err := options.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "layer2kml: %v\n", err)
		os.Exit(1)
	}
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "layer2kml [options] layer",
		Short:        "Convert a vector layer to styled KML",
		Long:         "layer2kml exports the features of a GeoJSON, SQLite, CSV or WKT layer as KML,\nstyled from the layer symbology or the settings file.",
		Version:      GetVersion(),
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0])
		},
	}
	options.AddFlags(cmd.Flags())
	return cmd
}

func setupLogger(level, format string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: logLevel}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

func run(fn string) error {
	logger := setupLogger(options.Config.LogLevel, options.Config.LogFormat)
	slog.SetDefault(logger)

	rdr, err := layer.Open(fn, layer.Options{Table: options.Config.Table, WktColumn: options.Config.WktColumn})
	if err != nil {
		return err
	}
	lyr, err := rdr.Read()
	if err != nil {
		return err
	}
	if options.Config.Simplify > 0 {
		n, err := layer.Simplify(lyr, options.Config.Simplify)
		if err != nil {
			return err
		}
		logger.Debug("simplified", "layer", lyr.Name, "features", n)
	}
	if options.Config.Classify != "" {
		if err := classify(lyr, options.Config.Classify, options.Config.Gradset); err != nil {
			return err
		}
	}

	st, err := options.LoadSettings(options.Config.Settings)
	if err != nil {
		return err
	}
	changed, err := options.ApplyLayerDefaults(st, lyr)
	if err != nil {
		return err
	}
	if changed && options.Config.Save {
		if err := st.Save(options.Config.Settings); err != nil {
			return err
		}
		logger.Info("settings saved", "path", options.Config.Settings)
	}
	ss, err := options.LoadStyleSet(st)
	if err != nil {
		return err
	}

	if options.Config.Dump {
		dump(lyr, st)
		return nil
	}

	features, err := selectFeatures(lyr, logger)
	if err != nil {
		return err
	}

	sess := kmlgen.NewSession(options.Config.TempDir, options.Config.TempPrefix, logger)
	keep := options.Config.Keep
	defer func() {
		if !keep {
			sess.Close()
		}
	}()
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		if !options.Config.Keep {
			sess.Close()
		}
		os.Exit(1)
	}()

	var rep kmlgen.ExportReport
	switch {
	case options.Config.Output != "":
		rep, err = sess.ExportFile(options.Config.Output, lyr, features, &ss)
	case options.Config.Outdir != "":
		outfn := filepath.Join(options.Config.Outdir, kmlgen.GenKmlName(fn, options.Config.Kmz, 0))
		rep, err = sess.ExportFile(outfn, lyr, features, &ss)
	default:
		rep, err = sess.Export(lyr, features, &ss)
	}
	if err != nil {
		return err
	}

	if options.Config.Sql != "" {
		if err := writeSQL(options.Config.Sql, lyr, features); err != nil {
			return err
		}
	}

	summary(lyr, rep)
	show_output(rep.Path)

	if options.Config.Open {
		// the viewer reads the file after we exit
		if !keep && len(sess.Files()) > 0 {
			logger.Info("keeping temporary file for viewer", "path", rep.Path)
			keep = true
		}
		return open_output(rep.Path)
	}
	return nil
}

// classify gives the layer a unique value renderer over the values of
// field, coloured from a gradient.
func classify(lyr *types.Layer, field, gradname string) error {
	idx := lyr.FieldByName(field)
	if idx < 0 {
		return errors.Errorf("layer %s has no field %q", lyr.Name, field)
	}
	var values []string
	for _, f := range lyr.Features {
		values = append(values, f.Attributes[idx])
	}
	r := types.UniqueValue(idx, lyr.Transparency, styles.AutoSymbols(values, gradname))
	lyr.Renderer = &r
	return nil
}

func selectFeatures(lyr *types.Layer, logger *slog.Logger) ([]types.Feature, error) {
	var rect orb.Bound
	switch {
	case options.Config.Bbox != "":
		b, err := selection.ParseBbox(options.Config.Bbox)
		if err != nil {
			return nil, err
		}
		rect = b
	case options.Config.Point != "":
		p, err := selection.ParsePoint(options.Config.Point)
		if err != nil {
			return nil, err
		}
		if options.Config.UnitsPerPixel <= 0 {
			return nil, errors.Errorf("units per pixel %g must be positive", options.Config.UnitsPerPixel)
		}
		rect = selection.PointRect(p, selection.GeometryClass(lyr), options.Config.UnitsPerPixel)
	default:
		return lyr.Features, nil
	}
	sel, err := selection.Select(lyr, rect, nil)
	if err != nil {
		return nil, err
	}
	logger.Debug("selected", "layer", lyr.Name, "count", len(sel))
	if len(sel) == 0 {
		return nil, errors.Errorf("no features of %s selected", lyr.Name)
	}
	return sel, nil
}

func writeSQL(fn string, lyr *types.Layer, features []types.Feature) error {
	w, err := layer.NewSQLiteWriter(fn, options.Config.WktColumn)
	if err != nil {
		return err
	}
	defer w.Close()
	out := *lyr
	out.Features = features
	return w.WriteLayer(&out)
}

func summary(lyr *types.Layer, rep kmlgen.ExportReport) {
	rname := types.RENDER_SINGLE.String()
	if lyr.Renderer != nil {
		rname = lyr.Renderer.Kind.String()
	}
	fmt.Printf("%-8.8s : %s\n", "Layer", lyr.Name)
	fmt.Printf("%-8.8s : %s\n", "Renderer", rname)
	fmt.Printf("%-8.8s : %d\n", "Features", rep.Written)
	if rep.Skipped > 0 {
		fmt.Printf("%-8.8s : %d\n", "Skipped", rep.Skipped)
	}
	fmt.Printf("%-8.8s : %s\n", "Size", humanize.Bytes(uint64(rep.Size)))
}

func dump(lyr *types.Layer, st *options.Settings) {
	fmt.Printf("%-8.8s : %s\n", "Layer", lyr.Name)
	for _, f := range lyr.Fields {
		fmt.Printf("%-8.8s : %d %s\n", "Field", f.Index, f.Name)
	}
	fmt.Printf("%-8.8s : %d\n", "Features", len(lyr.Features))
	if r := lyr.Renderer; r != nil {
		fmt.Printf("%-8.8s : %s (%d symbols)\n", "Renderer", r.Kind, len(r.Symbols))
	}
	fmt.Println(st.JSON())
}

func show_output(outfn string) {
	if outfn != "" {
		rp, err := realpath.Realpath(outfn)
		if err != nil || rp == "" {
			fmt.Printf("%-8.8s : <%s> <%s>\n", "RealPath", rp, err)
			rp = outfn
		}
		fmt.Printf("%-8.8s : %s\n", "Output", rp)
	}
}

func open_output(outfn string) error {
	args := append(types.OpenCommand(), outfn)
	cmd := exec.Command(args[0], args[1:]...)
	types.SetSilentProcess(cmd)
	return errors.Wrap(cmd.Start(), "open")
}
