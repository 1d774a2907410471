package layer

import (
	"github.com/deet/simpleline"

	"layer2kml/pkg/types"
	"layer2kml/pkg/wkt"
)

// simplifySeq reduces a line or ring with Ramer-Douglas-Peucker. Kept
// positions retain their original text. A result shorter than min leaves
// the sequence unchanged.
func simplifySeq(seq wkt.Sequence, eps float64, min int) (wkt.Sequence, error) {
	if seq.Len() <= min {
		return seq, nil
	}
	v, err := seq.Floats()
	if err != nil {
		return seq, err
	}
	points := make([]simpleline.Point, 0, len(v))
	index := make(map[simpleline.Point]int, len(v))
	for j, f := range v {
		pt := &simpleline.Point3d{X: f[0], Y: f[1]}
		points = append(points, pt)
		index[pt] = j
	}
	res, err := simpleline.RDP(points, eps, simpleline.Euclidean, true)
	if err != nil {
		return seq, err
	}
	if len(res) < min || len(res) == seq.Len() {
		return seq, nil
	}
	out := wkt.Sequence{Tuples: make([]wkt.Tuple, 0, len(res))}
	for _, p := range res {
		j, ok := index[p]
		if !ok {
			return seq, nil
		}
		out.Tuples = append(out.Tuples, seq.Tuples[j])
	}
	return out, nil
}

func simplifyPolygon(p *wkt.Polygon, eps float64) error {
	var err error
	// rings keep their closing position
	if p.Outer, err = simplifySeq(p.Outer, eps, 4); err != nil {
		return err
	}
	for j := range p.Holes {
		if p.Holes[j], err = simplifySeq(p.Holes[j], eps, 4); err != nil {
			return err
		}
	}
	return nil
}

func simplifyGeometry(g wkt.Geometry, eps float64) error {
	var err error
	switch t := g.(type) {
	case *wkt.LineString:
		t.Coords, err = simplifySeq(t.Coords, eps, 2)
	case *wkt.MultiLineString:
		for _, l := range t.Lines {
			if l.Coords, err = simplifySeq(l.Coords, eps, 2); err != nil {
				break
			}
		}
	case *wkt.Polygon:
		err = simplifyPolygon(t, eps)
	case *wkt.MultiPolygon:
		for _, p := range t.Polygons {
			if err = simplifyPolygon(p, eps); err != nil {
				break
			}
		}
	}
	return err
}

// Simplify thins the lines and rings of every feature of l to within eps
// layer units. Points and unreadable geometries are left alone. It
// returns the number of features whose geometry changed.
func Simplify(l *types.Layer, eps float64) (int, error) {
	if eps <= 0 {
		return 0, nil
	}
	n := 0
	for j := range l.Features {
		f := &l.Features[j]
		g, err := wkt.Parse(f.Geometry)
		if err != nil || g.Empty() {
			continue
		}
		before := wkt.Format(g)
		if err := simplifyGeometry(g, eps); err != nil {
			return n, err
		}
		if s := wkt.Format(g); s != before {
			f.Geometry = s
			n++
		}
	}
	return n, nil
}
