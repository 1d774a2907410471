package kmlgen

import (
	"strings"

	kml "github.com/twpayne/go-kml"

	"layer2kml/pkg/styles"
	"layer2kml/pkg/types"
)

// placemarker builds the placemarks of one export. Attribute lookups are
// resolved once per layer.
type placemarker struct {
	renderer *types.Renderer
	styleset *types.StyleSet
	base     string
	nameIdx  int
	descIdx  int
}

func newPlacemarker(layer *types.Layer, r *types.Renderer, ss *types.StyleSet) *placemarker {
	return &placemarker{
		renderer: r,
		styleset: ss,
		base:     styles.StyleID(layer.Name),
		nameIdx:  layer.FieldByName("name"),
		descIdx: layer.FieldIndex(func(s string) bool {
			return strings.HasPrefix(strings.ToLower(s), "descr")
		}),
	}
}

func (pm *placemarker) attr(f *types.Feature, idx int) string {
	if idx < 0 {
		return ""
	}
	return f.Attributes[idx]
}

// styleURL resolves the style reference. An unmatched unique value gives
// an empty reference.
func (pm *placemarker) styleURL(f *types.Feature) string {
	if pm.renderer.Kind != types.RENDER_UNIQUE {
		return "#" + pm.base
	}
	sym, ok := pm.renderer.SymbolFor(f)
	if !ok {
		return ""
	}
	return "#" + styles.UniqueStyleID(pm.base, sym.LowerValue)
}

func (pm *placemarker) build(f *types.Feature) (*kml.CompoundElement, error) {
	geom, err := ConvertWKT(f.Geometry, pm.styleset)
	if err != nil {
		return nil, err
	}
	p := kml.Placemark()
	if name := pm.attr(f, pm.nameIdx); name != "" {
		p.Add(kml.Name(textValue(name)))
	}
	if desc := pm.attr(f, pm.descIdx); desc != "" {
		p.Add(kml.Description(textValue(desc)))
	}
	p.Add(kml.StyleURL(pm.styleURL(f)))
	p.Add(geom)
	return p, nil
}

// BuildPlacemark converts one feature of layer.
func BuildPlacemark(f *types.Feature, layer *types.Layer, r *types.Renderer, ss *types.StyleSet) (*kml.CompoundElement, error) {
	return newPlacemarker(layer, r, ss).build(f)
}
