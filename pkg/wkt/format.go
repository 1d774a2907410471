package wkt

import "strings"

func (l Layout) tag() string {
	switch l {
	case XYZ:
		return " Z"
	case XYM:
		return " M"
	case XYZM:
		return " ZM"
	}
	return ""
}

func writeSeq(sb *strings.Builder, s Sequence) {
	sb.WriteByte('(')
	sb.WriteString(s.Text())
	sb.WriteByte(')')
}

func writePolygon(sb *strings.Builder, p *Polygon) {
	sb.WriteByte('(')
	for i, s := range p.Sequences() {
		if i > 0 {
			sb.WriteByte(',')
		}
		writeSeq(sb, s)
	}
	sb.WriteByte(')')
}

// Format writes g back as WKT, coordinates as they were read.
func Format(g Geometry) string {
	var sb strings.Builder
	sb.WriteString(g.Kind().String())
	sb.WriteString(g.Layout().tag())
	if g.Empty() {
		sb.WriteString(" EMPTY")
		return sb.String()
	}
	switch t := g.(type) {
	case *Point:
		writeSeq(&sb, t.Coord)
	case *LineString:
		writeSeq(&sb, t.Coords)
	case *Polygon:
		writePolygon(&sb, t)
	case *MultiPoint:
		sb.WriteByte('(')
		for i, p := range t.Points {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeSeq(&sb, p.Coord)
		}
		sb.WriteByte(')')
	case *MultiLineString:
		sb.WriteByte('(')
		for i, l := range t.Lines {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeSeq(&sb, l.Coords)
		}
		sb.WriteByte(')')
	case *MultiPolygon:
		sb.WriteByte('(')
		for i, p := range t.Polygons {
			if i > 0 {
				sb.WriteByte(',')
			}
			writePolygon(&sb, p)
		}
		sb.WriteByte(')')
	}
	return sb.String()
}
