package styles

import (
	"fmt"
	"image/color"

	kml "github.com/twpayne/go-kml"
	"github.com/twpayne/go-kml/icon"

	"layer2kml/pkg/types"
)

const STYLE_PREFIX = "styleOf-"

// DEFAULT_SHAPE is the point icon of unique value styles and of settings
// without an icon.
const DEFAULT_SHAPE = "donut"

// StyleID is the id of the single symbol style of a layer, and the base
// of its unique value style ids.
func StyleID(layer string) string {
	return STYLE_PREFIX + layer
}

func UniqueStyleID(base, value string) string {
	return base + "." + value
}

// ABGR swaps the red and blue channels, KML colours being aabbggrr.
func ABGR(c color.NRGBA) color.NRGBA {
	return color.NRGBA{R: c.B, G: c.G, B: c.R, A: c.A}
}

// FormatColor returns the KML hex form of c.
func FormatColor(c color.NRGBA) string {
	k := ABGR(c)
	return fmt.Sprintf("%02x%02x%02x%02x", k.A, k.R, k.G, k.B)
}

// kml.Color goes via the premultiplied RGBA(), which loses the channels of
// translucent colours, so the text is set explicitly.
func colour(c color.NRGBA) *kml.SimpleElement {
	e := kml.Color(c)
	e.SetString(FormatColor(c))
	return e
}

func colourMode(m types.ColorMode) *kml.SimpleElement {
	if m == types.ColorRandom {
		return kml.ColorMode(kml.ColorModeRandom)
	}
	return kml.ColorMode(kml.ColorModeNormal)
}

func iconHref(s string) string {
	if s == "" {
		return icon.ShapeHref(DEFAULT_SHAPE)
	}
	return s
}

// SingleSymbol returns the one style shared by every placemark of a
// single symbol layer. All four sub-styles are emitted whatever the
// geometry class of the layer.
func SingleSymbol(id string, ss *types.StyleSet) *kml.SharedElement {
	return kml.SharedStyle(
		id,
		kml.LabelStyle(
			colour(ss.Label.Color),
			colourMode(ss.Label.ColorMode),
			kml.Scale(ss.Label.Scale),
		),
		kml.IconStyle(
			colour(ss.Icon.Color),
			colourMode(ss.Icon.ColorMode),
			kml.Scale(ss.Icon.Scale),
			kml.Icon(
				kml.Href(iconHref(ss.Icon.IconHref)),
			),
		),
		kml.LineStyle(
			colour(ss.Line.Color),
			colourMode(ss.Line.ColorMode),
			kml.Width(ss.Line.Width),
		),
		kml.PolyStyle(
			colour(ss.Poly.Color),
			colourMode(ss.Poly.ColorMode),
			kml.Fill(ss.Poly.Fill),
			kml.Outline(ss.Poly.Outline),
		),
	)
}

func withAlpha(c color.NRGBA, a uint8) color.NRGBA {
	c.A = a
	return c
}

// UniqueValue returns one style per renderer symbol, ids being
// base.lowerValue. Symbol colours take the layer transparency as alpha;
// icons and polygons use the fill colour.
func UniqueValue(base string, r *types.Renderer) []kml.Element {
	var els []kml.Element
	for _, s := range r.Symbols {
		c := withAlpha(s.Color, r.Transparency)
		fc := withAlpha(s.FillColor, r.Transparency)
		el := kml.SharedStyle(
			UniqueStyleID(base, s.LowerValue),
			kml.LabelStyle(
				colour(c),
				colourMode(types.ColorNormal),
				kml.Scale(1.0),
			),
			kml.IconStyle(
				colour(fc),
				colourMode(types.ColorNormal),
				kml.Scale(1.0),
				kml.Icon(
					kml.Href(iconHref("")),
				),
			),
			kml.LineStyle(
				colour(c),
				colourMode(types.ColorNormal),
				kml.Width(s.LineWidth),
			),
			kml.PolyStyle(
				colour(fc),
				colourMode(types.ColorNormal),
				kml.Fill(s.Brush),
				kml.Outline(s.Pen),
			),
		)
		els = append(els, el)
	}
	return els
}

// Generate returns the style blocks for a renderer, in the order they are
// written to the document.
func Generate(layer string, r *types.Renderer) []kml.Element {
	id := StyleID(layer)
	switch r.Kind {
	case types.RENDER_UNIQUE:
		return UniqueValue(id, r)
	default:
		return []kml.Element{SingleSymbol(id, &r.Style)}
	}
}
