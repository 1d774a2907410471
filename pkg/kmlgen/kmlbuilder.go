package kmlgen

import (
	stderrors "errors"
	"io"
	"log/slog"
	"strings"

	"github.com/pkg/errors"
	kml "github.com/twpayne/go-kml"
	kmz "github.com/twpayne/go-kmz"

	"layer2kml/pkg/styles"
	"layer2kml/pkg/types"
)

// KML_NAMESPACE is the default namespace of the document root. The gx
// extension namespace is declared alongside it.
const KML_NAMESPACE = "http://earth.google.com/kml/2.2"

// ExportReport summarises one export. Err joins the per-feature failures.
type ExportReport struct {
	Path    string
	Size    int64
	Written int
	Skipped int
	Err     error
}

func (r *ExportReport) skip(id int64, err error) {
	r.Skipped++
	r.Err = stderrors.Join(r.Err, &FeatureError{ID: id, Err: err})
}

// ResolveRenderer decides the renderer of an export. Layers without
// symbology, and every layer when the settings force it, use a single
// symbol styled from the settings.
func ResolveRenderer(layer *types.Layer, ss *types.StyleSet) (*types.Renderer, error) {
	if ss.ForceSingle || layer.Renderer == nil || layer.Renderer.Kind == types.RENDER_SINGLE {
		r := types.SingleSymbol(*ss)
		return &r, nil
	}
	if layer.Renderer.Kind == types.RENDER_UNIQUE {
		return layer.Renderer, nil
	}
	return nil, errors.Wrapf(ErrUnsupportedRenderer, "%s renderer of layer %s", layer.Renderer.Kind, layer.Name)
}

// textValue undoes an existing &amp; so that the encoder's escaping
// leaves a single level.
func textValue(s string) string {
	return strings.ReplaceAll(s, "&amp;", "&")
}

// BuildDocument assembles the Document element: name, styles, then one
// placemark per convertible feature.
func BuildDocument(layer *types.Layer, features []types.Feature, r *types.Renderer, ss *types.StyleSet, logger *slog.Logger) (*kml.CompoundElement, ExportReport) {
	if logger == nil {
		logger = slog.Default()
	}
	var rep ExportReport
	d := kml.Document(kml.Name(textValue(layer.Name)))
	d.Add(styles.Generate(layer.Name, r)...)
	pm := newPlacemarker(layer, r, ss)
	for j := range features {
		f := &features[j]
		p, err := pm.build(f)
		if err != nil {
			logger.Warn("skipping feature", "layer", layer.Name, "id", f.ID, "error", err)
			rep.skip(f.ID, err)
			continue
		}
		d.Add(p)
		rep.Written++
	}
	return d, rep
}

func kmlRoot(d kml.Element) *kml.CompoundElement {
	root := kml.GxKML(d)
	root.Name.Space = KML_NAMESPACE
	return root
}

func generate(w io.Writer, layer *types.Layer, features []types.Feature, r *types.Renderer, ss *types.StyleSet, logger *slog.Logger, zipped bool) (ExportReport, error) {
	d, rep := BuildDocument(layer, features, r, ss, logger)
	var err error
	if zipped {
		z := kmz.NewKMZ(d)
		err = z.WriteIndent(w, "", "  ")
	} else {
		err = kmlRoot(d).WriteIndent(w, "", "  ")
	}
	return rep, err
}

// GenerateKML writes a complete KML document for features of layer to w.
// Features that cannot be converted are left out and reported.
func GenerateKML(w io.Writer, layer *types.Layer, features []types.Feature, r *types.Renderer, ss *types.StyleSet) (ExportReport, error) {
	return generate(w, layer, features, r, ss, nil, false)
}

// GenerateKMZ is GenerateKML packaged as a KMZ archive.
func GenerateKMZ(w io.Writer, layer *types.Layer, features []types.Feature, r *types.Renderer, ss *types.StyleSet) (ExportReport, error) {
	return generate(w, layer, features, r, ss, nil, true)
}
