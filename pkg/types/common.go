package types

import (
	"image/color"
	"strings"
)

// Geometry classes, as the settings store keys them.
const (
	GEOM_UNKNOWN = iota
	GEOM_POINT
	GEOM_LINE
	GEOM_POLY
)

type AltitudeMode string

const (
	AltClampToGround    AltitudeMode = "clampToGround"
	AltClampToSeaFloor  AltitudeMode = "clampToSeaFloor"
	AltRelativeToGround AltitudeMode = "relativeToGround"
	AltAbsolute         AltitudeMode = "absolute"
)

// NO_ALTITUDE is the altitude value sentinel for "do not inject a height".
const NO_ALTITUDE = -1

func ParseAltitudeMode(s string) (AltitudeMode, bool) {
	switch strings.TrimSpace(s) {
	case "", string(AltClampToGround):
		return AltClampToGround, true
	case string(AltClampToSeaFloor):
		return AltClampToSeaFloor, true
	case string(AltRelativeToGround):
		return AltRelativeToGround, true
	case string(AltAbsolute):
		return AltAbsolute, true
	}
	return AltClampToGround, false
}

// Clamped reports whether heights are ignored by the viewer in this mode.
func (a AltitudeMode) Clamped() bool {
	return a == AltClampToGround || a == AltClampToSeaFloor
}

type ColorMode string

const (
	ColorNormal ColorMode = "normal"
	ColorRandom ColorMode = "random"
)

// StyleConfig is one sub-style (label, icon, line or poly).
// Color.A is the 0-255 alpha; percentages only exist in the settings store.
type StyleConfig struct {
	Color     color.NRGBA
	ColorMode ColorMode
	Scale     float64
	Width     float64
	Fill      bool
	Outline   bool
	IconHref  string
}

// GeometryStyle carries the per-class geometry element settings.
type GeometryStyle struct {
	Extrude       int
	Tessellate    int
	AltitudeMode  AltitudeMode
	AltitudeValue int
}

// InjectAltitude reports whether coordinates get an explicit height.
func (g GeometryStyle) InjectAltitude() bool {
	return !g.AltitudeMode.Clamped() && g.AltitudeValue != NO_ALTITUDE
}

type StyleSet struct {
	Label     StyleConfig
	Icon      StyleConfig
	Line      StyleConfig
	Poly      StyleConfig
	PointGeom GeometryStyle
	LineGeom  GeometryStyle
	PolyGeom  GeometryStyle
	// ForceSingle makes every layer export with a single symbol style.
	ForceSingle bool
}

const DEFAULT_ICON = "http://maps.google.com/mapfiles/kml/shapes/donut.png"

func DefaultGeometryStyle() GeometryStyle {
	return GeometryStyle{AltitudeMode: AltClampToGround, AltitudeValue: NO_ALTITUDE}
}

func DefaultStyleSet() StyleSet {
	white := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	return StyleSet{
		Label:     StyleConfig{Color: white, ColorMode: ColorNormal, Scale: 1.0},
		Icon:      StyleConfig{Color: white, ColorMode: ColorNormal, Scale: 1.0, IconHref: DEFAULT_ICON},
		Line:      StyleConfig{Color: white, ColorMode: ColorNormal, Width: 1.0},
		Poly:      StyleConfig{Color: white, ColorMode: ColorNormal, Fill: true, Outline: true},
		PointGeom: DefaultGeometryStyle(),
		LineGeom:  DefaultGeometryStyle(),
		PolyGeom:  DefaultGeometryStyle(),
	}
}

type Field struct {
	Index int
	Name  string
}

type Feature struct {
	ID         int64
	Geometry   string
	Attributes map[int]string
}

// Symbol is one unique value class of a layer renderer.
type Symbol struct {
	LowerValue string
	Color      color.NRGBA
	FillColor  color.NRGBA
	LineWidth  float64
	Brush      bool
	Pen        bool
}

type RendererKind int

const (
	RENDER_SINGLE RendererKind = iota
	RENDER_UNIQUE
	RENDER_OTHER
)

func (k RendererKind) String() string {
	switch k {
	case RENDER_SINGLE:
		return "Single Symbol"
	case RENDER_UNIQUE:
		return "Unique Value"
	default:
		return "Other"
	}
}

// Renderer is the layer symbology, decided once per export.
// For RENDER_SINGLE only Style is used; for RENDER_UNIQUE Field,
// Transparency and Symbols are used.
type Renderer struct {
	Kind         RendererKind
	Style        StyleSet
	Field        int
	Transparency uint8
	Symbols      []Symbol
}

func SingleSymbol(s StyleSet) Renderer {
	return Renderer{Kind: RENDER_SINGLE, Style: s}
}

func UniqueValue(field int, transp uint8, symbols []Symbol) Renderer {
	return Renderer{Kind: RENDER_UNIQUE, Field: field, Transparency: transp, Symbols: symbols}
}

// SymbolFor returns the symbol whose lower value exactly matches the
// feature's classification value.
func (r *Renderer) SymbolFor(f *Feature) (*Symbol, bool) {
	if r.Kind != RENDER_UNIQUE {
		return nil, false
	}
	v := f.Attributes[r.Field]
	for i := range r.Symbols {
		if r.Symbols[i].LowerValue == v {
			return &r.Symbols[i], true
		}
	}
	return nil, false
}

type Layer struct {
	Name     string
	Fields   []Field
	Features []Feature
	// Renderer is nil when the source carries no symbology.
	Renderer *Renderer
	// Transparency is the layer opacity, 0-255.
	Transparency uint8
}

// FieldIndex returns the index of the first field accepted by match.
func (l *Layer) FieldIndex(match func(string) bool) int {
	for _, f := range l.Fields {
		if match(f.Name) {
			return f.Index
		}
	}
	return -1
}

func (l *Layer) FieldByName(name string) int {
	return l.FieldIndex(func(s string) bool { return strings.EqualFold(s, name) })
}
