package kmlgen

import (
	"encoding/xml"

	kml "github.com/twpayne/go-kml"

	"layer2kml/pkg/types"
	"layer2kml/pkg/wkt"
)

// GeomClass maps a WKT kind onto the settings geometry class.
func GeomClass(k wkt.Kind) int {
	switch k {
	case wkt.KindPoint, wkt.KindMultiPoint:
		return types.GEOM_POINT
	case wkt.KindLineString, wkt.KindMultiLineString:
		return types.GEOM_LINE
	case wkt.KindPolygon, wkt.KindMultiPolygon:
		return types.GEOM_POLY
	}
	return types.GEOM_UNKNOWN
}

func geometryStyle(ss *types.StyleSet, class int) types.GeometryStyle {
	switch class {
	case types.GEOM_POINT:
		return ss.PointGeom
	case types.GEOM_LINE:
		return ss.LineGeom
	default:
		return ss.PolyGeom
	}
}

func coordinates(s string) *kml.SimpleElement {
	e := &kml.SimpleElement{StartElement: xml.StartElement{Name: xml.Name{Local: "coordinates"}}}
	e.SetString(s)
	return e
}

func altitudeMode(m types.AltitudeMode) *kml.SimpleElement {
	if m == "" {
		m = types.AltClampToGround
	}
	return kml.AltitudeMode(kml.AltitudeModeEnum(m))
}

func point(p *wkt.Point, layout wkt.Layout, gs types.GeometryStyle) kml.Element {
	return kml.Point(
		kml.Extrude(gs.Extrude != 0),
		altitudeMode(gs.AltitudeMode),
		coordinates(kmlSequence(p.Coord, layout, gs, true)),
	)
}

func lineString(l *wkt.LineString, layout wkt.Layout, gs types.GeometryStyle) kml.Element {
	return kml.LineString(
		kml.Extrude(gs.Extrude != 0),
		kml.Tessellate(gs.Tessellate != 0),
		altitudeMode(gs.AltitudeMode),
		coordinates(kmlSequence(l.Coords, layout, gs, false)),
	)
}

// Polygons carry the altitude mode in the gx namespace, as Google Earth
// only honours clampToSeaFloor there.
func polygon(p *wkt.Polygon, layout wkt.Layout, gs types.GeometryStyle) kml.Element {
	mode := gs.AltitudeMode
	if mode == "" {
		mode = types.AltClampToGround
	}
	pe := kml.Polygon(
		kml.Extrude(gs.Extrude != 0),
		kml.Tessellate(gs.Tessellate != 0),
		kml.GxAltitudeMode(kml.GxAltitudeModeEnum(mode)),
		kml.OuterBoundaryIs(
			kml.LinearRing(
				coordinates(kmlSequence(p.Outer, layout, gs, false)),
			),
		),
	)
	for _, h := range p.Holes {
		pe.Add(kml.InnerBoundaryIs(
			kml.LinearRing(
				coordinates(kmlSequence(h, layout, gs, false)),
			),
		))
	}
	return pe
}

// Geometry converts a parsed geometry to its KML element; multi geometries
// become a MultiGeometry of their members.
func Geometry(g wkt.Geometry, ss *types.StyleSet) (kml.Element, error) {
	if g.Empty() {
		return nil, ErrEmptyGeometry
	}
	gs := geometryStyle(ss, GeomClass(g.Kind()))
	layout := g.Layout()
	switch v := g.(type) {
	case *wkt.Point:
		return point(v, layout, gs), nil
	case *wkt.LineString:
		return lineString(v, layout, gs), nil
	case *wkt.Polygon:
		return polygon(v, layout, gs), nil
	case *wkt.MultiPoint:
		m := kml.MultiGeometry()
		for _, p := range v.Points {
			m.Add(point(p, layout, gs))
		}
		return m, nil
	case *wkt.MultiLineString:
		m := kml.MultiGeometry()
		for _, l := range v.Lines {
			m.Add(lineString(l, layout, gs))
		}
		return m, nil
	case *wkt.MultiPolygon:
		m := kml.MultiGeometry()
		for _, p := range v.Polygons {
			m.Add(polygon(p, layout, gs))
		}
		return m, nil
	}
	return nil, &wkt.UnrecognizedGeometryError{Prefix: g.Kind().String()}
}

// ConvertWKT parses WKT text and returns the KML geometry element.
func ConvertWKT(text string, ss *types.StyleSet) (kml.Element, error) {
	g, err := wkt.Parse(text)
	if err != nil {
		return nil, err
	}
	return Geometry(g, ss)
}

// GeometryFragment returns the KML markup of a WKT geometry, without a
// document envelope.
func GeometryFragment(text string, ss *types.StyleSet) (string, error) {
	el, err := ConvertWKT(text, ss)
	if err != nil {
		return "", err
	}
	b, err := xml.Marshal(el)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
