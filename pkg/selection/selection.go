// Package selection picks the features of a layer that a rectangle or a
// click touches, and models the drag/click map tool that produces them.
package selection

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"

	"layer2kml/pkg/types"
	"layer2kml/pkg/wkt"
)

var (
	ErrEmptySelectionExtent     = errors.New("selection extent has no area")
	ErrCoordinateSystemMismatch = errors.New("selection extends beyond layer's coordinate system")
)

// Click search box half sizes, in pixels.
const (
	POINT_BOX = 5.0
	POLY_BOX  = 1.0
)

// LayerTransform maps a rectangle in map coordinates into layer
// coordinates. A nil LayerTransform is the identity.
type LayerTransform func(orb.Bound) (orb.Bound, error)

// WGS84 is the extent of geographic layer coordinates.
var WGS84 = orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}}

// Within returns a LayerTransform for layers whose coordinates are only
// valid inside extent.
func Within(extent orb.Bound) LayerTransform {
	return func(b orb.Bound) (orb.Bound, error) {
		if !extent.Contains(b.Min) || !extent.Contains(b.Max) {
			return b, ErrCoordinateSystemMismatch
		}
		return b, nil
	}
}

// GeometryClass is the class of the first feature of l with a readable
// geometry.
func GeometryClass(l *types.Layer) int {
	for j := range l.Features {
		g, err := wkt.Parse(l.Features[j].Geometry)
		if err != nil {
			continue
		}
		switch g.Kind() {
		case wkt.KindPoint, wkt.KindMultiPoint:
			return types.GEOM_POINT
		case wkt.KindLineString, wkt.KindMultiLineString:
			return types.GEOM_LINE
		default:
			return types.GEOM_POLY
		}
	}
	return types.GEOM_UNKNOWN
}

// PointRect is the search rectangle of a click at map point p: a small
// box for points and lines so they can be hit, a one pixel box for
// polygons. unitsPerPixel scales the pixel box to map units.
func PointRect(p orb.Point, class int, unitsPerPixel float64) orb.Bound {
	box := POINT_BOX
	if class == types.GEOM_POLY {
		box = POLY_BOX
	}
	box *= unitsPerPixel
	return orb.Bound{
		Min: orb.Point{p[0] - box, p[1] - box},
		Max: orb.Point{p[0] + box, p[1] + box},
	}
}

// normalize orders the corners of a rectangle given by any two opposite
// corners.
func normalize(a, b orb.Point) orb.Bound {
	return orb.Bound{Min: a, Max: a}.Extend(b)
}

// Bound is the bounding box of a WKT geometry.
func Bound(text string) (orb.Bound, error) {
	g, err := wkt.Parse(text)
	if err != nil {
		return orb.Bound{}, err
	}
	if g.Empty() {
		return orb.Bound{}, errors.New("empty geometry")
	}
	var b orb.Bound
	first := true
	for _, seq := range g.Sequences() {
		pts, err := seq.Floats()
		if err != nil {
			return orb.Bound{}, err
		}
		for _, p := range pts {
			pt := orb.Point{p[0], p[1]}
			if first {
				b = orb.Bound{Min: pt, Max: pt}
				first = false
			} else {
				b = b.Extend(pt)
			}
		}
	}
	return b, nil
}

// Select returns the features of l whose bounding box intersects rect.
// An empty rect or a failed transform selects nothing and reports why.
func Select(l *types.Layer, rect orb.Bound, toLayer LayerTransform) ([]types.Feature, error) {
	w, h := rect.Max[0]-rect.Min[0], rect.Max[1]-rect.Min[1]
	if w == 0 || h == 0 {
		return nil, ErrEmptySelectionExtent
	}
	if toLayer != nil {
		var err error
		if rect, err = toLayer(rect); err != nil {
			if !errors.Is(err, ErrCoordinateSystemMismatch) {
				err = errors.Wrap(ErrCoordinateSystemMismatch, err.Error())
			}
			return nil, err
		}
	}
	var sel []types.Feature
	for _, f := range l.Features {
		b, err := Bound(f.Geometry)
		if err != nil {
			continue
		}
		if b.Intersects(rect) {
			sel = append(sel, f)
		}
	}
	return sel, nil
}

type State int

const (
	Idle State = iota
	Dragging
)

// Viewport maps screen pixels to map coordinates; screen y grows down.
type Viewport struct {
	Origin        orb.Point
	UnitsPerPixel float64
}

func (v Viewport) ToMap(x, y float64) orb.Point {
	return orb.Point{v.Origin[0] + x*v.UnitsPerPixel, v.Origin[1] - y*v.UnitsPerPixel}
}

// Tool is the drag/click selection state machine. A drag selects by
// rectangle, a click selects by PointRect. The selection is kept between
// gestures and is left unchanged when a gesture cannot select.
type Tool struct {
	View    Viewport
	ToLayer LayerTransform
	Logger  *slog.Logger

	state    State
	start    [2]float64
	end      [2]float64
	selected []types.Feature
}

func NewTool(view Viewport, toLayer LayerTransform, logger *slog.Logger) *Tool {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tool{View: view, ToLayer: toLayer, Logger: logger}
}

func (t *Tool) State() State {
	return t.state
}

func (t *Tool) Selected() []types.Feature {
	return t.selected
}

// Press starts a gesture.
func (t *Tool) Press(x, y float64) {
	t.start = [2]float64{x, y}
	t.end = t.start
}

// Move extends a drag while the button is held.
func (t *Tool) Move(x, y float64) {
	if t.state == Idle {
		t.state = Dragging
		t.start = [2]float64{x, y}
	}
	t.end = [2]float64{x, y}
}

// Release ends the gesture and updates the selection of l.
func (t *Tool) Release(x, y float64, l *types.Layer) ([]types.Feature, error) {
	var rect orb.Bound
	if t.state == Dragging {
		t.state = Idle
		t.end = [2]float64{x, y}
		rect = normalize(t.View.ToMap(t.start[0], t.start[1]), t.View.ToMap(t.end[0], t.end[1]))
	} else {
		rect = PointRect(t.View.ToMap(x, y), GeometryClass(l), t.View.UnitsPerPixel)
	}
	sel, err := Select(l, rect, t.ToLayer)
	if err != nil {
		if errors.Is(err, ErrCoordinateSystemMismatch) {
			t.Logger.Warn("selection unchanged", "layer", l.Name, "error", err)
		}
		return t.selected, err
	}
	t.selected = sel
	return sel, nil
}

func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, errors.Errorf("%q: want %d comma separated numbers", s, n)
	}
	v := make([]float64, n)
	for j, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "%q", s)
		}
		v[j] = f
	}
	return v, nil
}

// ParseBbox reads "minx,miny,maxx,maxy"; the corners may be given in
// any order.
func ParseBbox(s string) (orb.Bound, error) {
	v, err := parseFloats(s, 4)
	if err != nil {
		return orb.Bound{}, err
	}
	return normalize(orb.Point{v[0], v[1]}, orb.Point{v[2], v[3]}), nil
}

// ParsePoint reads "x,y".
func ParsePoint(s string) (orb.Point, error) {
	v, err := parseFloats(s, 2)
	if err != nil {
		return orb.Point{}, err
	}
	return orb.Point{v[0], v[1]}, nil
}
