package kmlgen

import (
	"strconv"
	"strings"

	"layer2kml/pkg/types"
	"layer2kml/pkg/wkt"
)

// Reformat rewrites WKT coordinate text "x1 y1,x2 y2" into KML tuples
// "x1,y1 x2,y2". The input must be in the canonical form produced by the
// wkt package: one space between ordinates, no space around commas.
func Reformat(s string) string {
	s = strings.ReplaceAll(s, ",", ",,")
	s = strings.ReplaceAll(s, " ", ",")
	return strings.ReplaceAll(s, ",,", " ")
}

// ReformatPoint rewrites a single WKT position.
func ReformatPoint(s string) string {
	return strings.ReplaceAll(s, " ", ",")
}

// InjectAltitude appends ",alt" to every tuple of KML coordinate text.
func InjectAltitude(s string, alt int) string {
	if s == "" {
		return s
	}
	a := "," + strconv.Itoa(alt)
	return strings.ReplaceAll(s, " ", a+" ") + a
}

// kmlSequence renders one coordinate sequence. M ordinates have no KML
// equivalent and are dropped; a Z ordinate suppresses the injected height.
func kmlSequence(seq wkt.Sequence, layout wkt.Layout, gs types.GeometryStyle, point bool) string {
	if layout == wkt.XYM || layout == wkt.XYZM {
		keep := 2
		if layout == wkt.XYZM {
			keep = 3
		}
		tups := make([]wkt.Tuple, len(seq.Tuples))
		for j, t := range seq.Tuples {
			tups[j] = t[:keep]
		}
		seq = wkt.Sequence{Tuples: tups}
	}
	var s string
	if point {
		s = ReformatPoint(seq.Text())
	} else {
		s = Reformat(seq.Text())
	}
	if gs.InjectAltitude() && !layout.HasZ() {
		s = InjectAltitude(s, gs.AltitudeValue)
	}
	return s
}
