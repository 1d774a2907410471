package wkt

import (
	"strconv"
	"strings"
)

type Kind int

const (
	KindPoint Kind = iota + 1
	KindMultiPoint
	KindLineString
	KindMultiLineString
	KindPolygon
	KindMultiPolygon
)

var kindNames = map[Kind]string{
	KindPoint:           "POINT",
	KindMultiPoint:      "MULTIPOINT",
	KindLineString:      "LINESTRING",
	KindMultiLineString: "MULTILINESTRING",
	KindPolygon:         "POLYGON",
	KindMultiPolygon:    "MULTIPOLYGON",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "UNKNOWN"
}

// Layout is the ordinate layout named by the optional Z / M / ZM tag.
type Layout int

const (
	XY Layout = iota
	XYZ
	XYM
	XYZM
)

func (l Layout) Stride() int {
	switch l {
	case XYZ, XYM:
		return 3
	case XYZM:
		return 4
	}
	return 2
}

// HasZ reports whether the third ordinate is a height.
func (l Layout) HasZ() bool {
	return l == XYZ || l == XYZM
}

// A Tuple holds the ordinates of one position exactly as written.
type Tuple []string

// Sequence is an ordered list of positions (a point, a line or a ring).
type Sequence struct {
	Tuples []Tuple
}

// Text returns the canonical WKT coordinate text "x y,x y".
func (s Sequence) Text() string {
	var sb strings.Builder
	for i, t := range s.Tuples {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strings.Join(t, " "))
	}
	return sb.String()
}

// Floats parses every ordinate. The lexer only admits numeric tokens so
// errors cannot normally occur.
func (s Sequence) Floats() ([][]float64, error) {
	out := make([][]float64, 0, len(s.Tuples))
	for _, t := range s.Tuples {
		v := make([]float64, len(t))
		for j, o := range t {
			f, err := strconv.ParseFloat(o, 64)
			if err != nil {
				return nil, err
			}
			v[j] = f
		}
		out = append(out, v)
	}
	return out, nil
}

func (s Sequence) Len() int {
	return len(s.Tuples)
}

// Geometry is one of *Point, *LineString, *Polygon, *MultiPoint,
// *MultiLineString or *MultiPolygon.
type Geometry interface {
	Kind() Kind
	Layout() Layout
	Empty() bool
	// Sequences returns every coordinate sequence, outer rings first.
	Sequences() []Sequence
}

type Point struct {
	layout Layout
	Coord  Sequence
}

func (p *Point) Kind() Kind            { return KindPoint }
func (p *Point) Layout() Layout        { return p.layout }
func (p *Point) Empty() bool           { return p.Coord.Len() == 0 }
func (p *Point) Sequences() []Sequence { return []Sequence{p.Coord} }

type LineString struct {
	layout Layout
	Coords Sequence
}

func (l *LineString) Kind() Kind            { return KindLineString }
func (l *LineString) Layout() Layout        { return l.layout }
func (l *LineString) Empty() bool           { return l.Coords.Len() == 0 }
func (l *LineString) Sequences() []Sequence { return []Sequence{l.Coords} }

type Polygon struct {
	layout Layout
	Outer  Sequence
	Holes  []Sequence
}

func (p *Polygon) Kind() Kind     { return KindPolygon }
func (p *Polygon) Layout() Layout { return p.layout }
func (p *Polygon) Empty() bool    { return p.Outer.Len() == 0 }
func (p *Polygon) Sequences() []Sequence {
	return append([]Sequence{p.Outer}, p.Holes...)
}

type MultiPoint struct {
	layout Layout
	Points []*Point
}

func (m *MultiPoint) Kind() Kind     { return KindMultiPoint }
func (m *MultiPoint) Layout() Layout { return m.layout }
func (m *MultiPoint) Empty() bool    { return len(m.Points) == 0 }
func (m *MultiPoint) Sequences() []Sequence {
	var s []Sequence
	for _, p := range m.Points {
		s = append(s, p.Coord)
	}
	return s
}

type MultiLineString struct {
	layout Layout
	Lines  []*LineString
}

func (m *MultiLineString) Kind() Kind     { return KindMultiLineString }
func (m *MultiLineString) Layout() Layout { return m.layout }
func (m *MultiLineString) Empty() bool    { return len(m.Lines) == 0 }
func (m *MultiLineString) Sequences() []Sequence {
	var s []Sequence
	for _, l := range m.Lines {
		s = append(s, l.Coords)
	}
	return s
}

type MultiPolygon struct {
	layout   Layout
	Polygons []*Polygon
}

func (m *MultiPolygon) Kind() Kind     { return KindMultiPolygon }
func (m *MultiPolygon) Layout() Layout { return m.layout }
func (m *MultiPolygon) Empty() bool    { return len(m.Polygons) == 0 }
func (m *MultiPolygon) Sequences() []Sequence {
	var s []Sequence
	for _, p := range m.Polygons {
		s = append(s, p.Sequences()...)
	}
	return s
}
