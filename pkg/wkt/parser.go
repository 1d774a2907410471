// Package wkt reads the Well-Known Text geometries that vector layers
// export: POINT, MULTIPOINT, LINESTRING, MULTILINESTRING, POLYGON and
// MULTIPOLYGON, with optional Z, M or ZM ordinates.
//
// Coordinates are kept as the text that was read so that conversions to
// other text formats do not alter the numbers.
package wkt

import (
	"fmt"
	"strings"
)

type parser struct {
	lex    *lexer
	layout Layout
	// fixed is set once the stride is known, from a tag or the first tuple.
	fixed bool
}

// Parse reads a single WKT geometry. Keywords are matched case-insensitively.
func Parse(s string) (Geometry, error) {
	p := &parser{lex: newLexer(s)}
	t := p.lex.Next()
	if t.kind != tokWord {
		return nil, &UnrecognizedGeometryError{Prefix: prefixOf(s)}
	}
	kind, ok := keywordKind(t.text)
	if !ok {
		return nil, &UnrecognizedGeometryError{Prefix: t.text}
	}
	if err := p.dimension(); err != nil {
		return nil, err
	}
	g, err := p.body(kind)
	if err != nil {
		return nil, err
	}
	if t := p.lex.Next(); t.kind != tokEOF {
		return nil, p.errorf(t, "unexpected %s after geometry", t)
	}
	return g, nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(s string) Geometry {
	g, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return g
}

func keywordKind(w string) (Kind, bool) {
	for k, n := range kindNames {
		if n == w {
			return k, true
		}
	}
	return 0, false
}

func prefixOf(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " (\t\r\n"); i >= 0 {
		s = s[:i]
	}
	return s
}

func (p *parser) errorf(t token, format string, args ...interface{}) error {
	return &SyntaxError{Offset: t.pos, Msg: fmt.Sprintf(format, args...)}
}

// dimension consumes an optional Z, M or ZM tag.
func (p *parser) dimension() error {
	t := p.lex.Peek()
	if t.kind != tokWord {
		return nil
	}
	switch t.text {
	case "Z":
		p.layout = XYZ
	case "M":
		p.layout = XYM
	case "ZM":
		p.layout = XYZM
	case "EMPTY":
		return nil
	default:
		return p.errorf(t, "unexpected %s", t)
	}
	p.fixed = true
	p.lex.Next()
	return nil
}

func (p *parser) empty() bool {
	t := p.lex.Peek()
	if t.kind == tokWord && t.text == "EMPTY" {
		p.lex.Next()
		return true
	}
	return false
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	t := p.lex.Next()
	if t.kind != kind {
		return t, p.errorf(t, "expected %s, found %s", what, t)
	}
	return t, nil
}

func (p *parser) body(kind Kind) (Geometry, error) {
	switch kind {
	case KindPoint:
		return p.point(true)
	case KindLineString:
		return p.lineString()
	case KindPolygon:
		return p.polygon()
	case KindMultiPoint:
		return p.multiPoint()
	case KindMultiLineString:
		return p.multiLineString()
	case KindMultiPolygon:
		return p.multiPolygon()
	}
	return nil, &UnrecognizedGeometryError{Prefix: kind.String()}
}

// point reads "( x y )"; with parens false the bare tuple form of a
// MULTIPOINT member is read instead.
func (p *parser) point(parens bool) (*Point, error) {
	if p.empty() {
		return &Point{layout: p.layout}, nil
	}
	if parens {
		if _, err := p.expect(tokLParen, "'('"); err != nil {
			return nil, err
		}
	}
	tup, err := p.tuple()
	if err != nil {
		return nil, err
	}
	if parens {
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
	}
	return &Point{layout: p.layout, Coord: Sequence{Tuples: []Tuple{tup}}}, nil
}

func (p *parser) lineString() (*LineString, error) {
	if p.empty() {
		return &LineString{layout: p.layout}, nil
	}
	seq, err := p.sequence()
	if err != nil {
		return nil, err
	}
	return &LineString{layout: p.layout, Coords: seq}, nil
}

func (p *parser) polygon() (*Polygon, error) {
	if p.empty() {
		return &Polygon{layout: p.layout}, nil
	}
	if _, err := p.expect(tokLParen, "'('"); err != nil {
		return nil, err
	}
	poly := &Polygon{}
	for i := 0; ; i++ {
		ring, err := p.sequence()
		if err != nil {
			return nil, err
		}
		if i == 0 {
			poly.Outer = ring
		} else {
			poly.Holes = append(poly.Holes, ring)
		}
		t := p.lex.Next()
		if t.kind == tokRParen {
			break
		}
		if t.kind != tokComma {
			return nil, p.errorf(t, "expected ',' or ')', found %s", t)
		}
	}
	poly.layout = p.layout
	return poly, nil
}

func (p *parser) multiPoint() (*MultiPoint, error) {
	mp := &MultiPoint{}
	if !p.empty() {
		if _, err := p.expect(tokLParen, "'('"); err != nil {
			return nil, err
		}
		for {
			pt, err := p.point(p.lex.Peek().kind == tokLParen)
			if err != nil {
				return nil, err
			}
			if !pt.Empty() {
				mp.Points = append(mp.Points, pt)
			}
			t := p.lex.Next()
			if t.kind == tokRParen {
				break
			}
			if t.kind != tokComma {
				return nil, p.errorf(t, "expected ',' or ')', found %s", t)
			}
		}
	}
	mp.layout = p.layout
	for _, pt := range mp.Points {
		pt.layout = p.layout
	}
	return mp, nil
}

func (p *parser) multiLineString() (*MultiLineString, error) {
	ml := &MultiLineString{}
	if !p.empty() {
		if _, err := p.expect(tokLParen, "'('"); err != nil {
			return nil, err
		}
		for {
			ls, err := p.lineString()
			if err != nil {
				return nil, err
			}
			if !ls.Empty() {
				ml.Lines = append(ml.Lines, ls)
			}
			t := p.lex.Next()
			if t.kind == tokRParen {
				break
			}
			if t.kind != tokComma {
				return nil, p.errorf(t, "expected ',' or ')', found %s", t)
			}
		}
	}
	ml.layout = p.layout
	for _, ls := range ml.Lines {
		ls.layout = p.layout
	}
	return ml, nil
}

func (p *parser) multiPolygon() (*MultiPolygon, error) {
	mp := &MultiPolygon{}
	if !p.empty() {
		if _, err := p.expect(tokLParen, "'('"); err != nil {
			return nil, err
		}
		for {
			poly, err := p.polygon()
			if err != nil {
				return nil, err
			}
			if !poly.Empty() {
				mp.Polygons = append(mp.Polygons, poly)
			}
			t := p.lex.Next()
			if t.kind == tokRParen {
				break
			}
			if t.kind != tokComma {
				return nil, p.errorf(t, "expected ',' or ')', found %s", t)
			}
		}
	}
	mp.layout = p.layout
	for _, poly := range mp.Polygons {
		poly.layout = p.layout
	}
	return mp, nil
}

// sequence reads "( tuple, tuple, ... )".
func (p *parser) sequence() (Sequence, error) {
	var seq Sequence
	if _, err := p.expect(tokLParen, "'('"); err != nil {
		return seq, err
	}
	for {
		tup, err := p.tuple()
		if err != nil {
			return seq, err
		}
		seq.Tuples = append(seq.Tuples, tup)
		t := p.lex.Next()
		if t.kind == tokRParen {
			return seq, nil
		}
		if t.kind != tokComma {
			return seq, p.errorf(t, "expected ',' or ')', found %s", t)
		}
	}
}

// tuple reads 2 to 4 ordinates. Without a dimension tag the first tuple
// fixes the stride for the rest of the geometry.
func (p *parser) tuple() (Tuple, error) {
	var tup Tuple
	first := p.lex.Peek()
	for p.lex.Peek().kind == tokNumber {
		tup = append(tup, p.lex.Next().text)
	}
	if len(tup) < 2 || len(tup) > 4 {
		t := p.lex.Peek()
		if len(tup) == 0 {
			return nil, p.errorf(t, "expected coordinate, found %s", t)
		}
		return nil, p.errorf(first, "coordinate has %d ordinates", len(tup))
	}
	if !p.fixed {
		switch len(tup) {
		case 3:
			p.layout = XYZ
		case 4:
			p.layout = XYZM
		}
		p.fixed = true
	} else if len(tup) != p.layout.Stride() {
		return nil, p.errorf(first, "coordinate has %d ordinates, want %d", len(tup), p.layout.Stride())
	}
	return tup, nil
}
