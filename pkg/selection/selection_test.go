package selection

import (
	"errors"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"layer2kml/pkg/types"
)

func pointLayer() *types.Layer {
	return &types.Layer{
		Name: "towns",
		Features: []types.Feature{
			{ID: 1, Geometry: "POINT(10 10)"},
			{ID: 2, Geometry: "POINT(50 50)"},
			{ID: 3, Geometry: "LINESTRING(0 90,30 60)"},
			{ID: 4, Geometry: "not wkt"},
		},
	}
}

func ids(fs []types.Feature) []int64 {
	var out []int64
	for _, f := range fs {
		out = append(out, f.ID)
	}
	return out
}

func TestBound(t *testing.T) {
	b, err := Bound("POLYGON((0 0,10 0,10 5,0 0))")
	require.NoError(t, err)
	assert.Equal(t, orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{10, 5}}, b)

	_, err = Bound("POINT EMPTY")
	assert.Error(t, err)
}

func TestPointRect(t *testing.T) {
	r := PointRect(orb.Point{10, 20}, types.GEOM_POINT, 1)
	assert.Equal(t, orb.Bound{Min: orb.Point{5, 15}, Max: orb.Point{15, 25}}, r)
	r = PointRect(orb.Point{10, 20}, types.GEOM_POLY, 1)
	assert.Equal(t, orb.Bound{Min: orb.Point{9, 19}, Max: orb.Point{11, 21}}, r)

	// five pixels at 0.001 degrees per pixel
	r = PointRect(orb.Point{-1.5, 52}, types.GEOM_POINT, 0.001)
	assert.InDelta(t, -1.505, r.Min[0], 1e-9)
	assert.InDelta(t, 51.995, r.Min[1], 1e-9)
	assert.InDelta(t, -1.495, r.Max[0], 1e-9)
	assert.InDelta(t, 52.005, r.Max[1], 1e-9)
}

func TestSelect(t *testing.T) {
	l := pointLayer()
	sel, err := Select(l, orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{20, 20}}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids(sel))

	sel, err = Select(l, orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{100, 100}}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids(sel))
}

func TestSelectEmptyExtent(t *testing.T) {
	_, err := Select(pointLayer(), orb.Bound{Min: orb.Point{10, 0}, Max: orb.Point{10, 20}}, nil)
	assert.True(t, errors.Is(err, ErrEmptySelectionExtent))
}

func TestSelectOutsideCoordinateSystem(t *testing.T) {
	_, err := Select(pointLayer(), orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{200, 20}}, Within(WGS84))
	assert.True(t, errors.Is(err, ErrCoordinateSystemMismatch))
}

func TestGeometryClass(t *testing.T) {
	assert.Equal(t, types.GEOM_POINT, GeometryClass(pointLayer()))
	l := &types.Layer{Features: []types.Feature{{Geometry: "bad"}, {Geometry: "MULTIPOLYGON(((0 0,1 0,1 1,0 0)))"}}}
	assert.Equal(t, types.GEOM_POLY, GeometryClass(l))
	assert.Equal(t, types.GEOM_UNKNOWN, GeometryClass(&types.Layer{}))
}

// One unit per pixel with the screen origin at map (0,100).
var view = Viewport{Origin: orb.Point{0, 100}, UnitsPerPixel: 1}

func TestToolDrag(t *testing.T) {
	tool := NewTool(view, nil, nil)
	l := pointLayer()

	tool.Press(0, 0)
	assert.Equal(t, Idle, tool.State())
	tool.Move(60, 60)
	assert.Equal(t, Dragging, tool.State())
	tool.Move(20, 95)
	// drag from pixel (60,60) to (0,95) covers map x 0..60, y 5..40
	sel, err := tool.Release(0, 95, l)
	require.NoError(t, err)
	assert.Equal(t, Idle, tool.State())
	assert.Equal(t, []int64{1}, ids(sel))
	assert.Equal(t, sel, tool.Selected())
}

func TestToolClick(t *testing.T) {
	tool := NewTool(view, nil, nil)
	l := pointLayer()

	// map (52,47) is within the point search box of POINT(50 50)
	tool.Press(52, 53)
	sel, err := tool.Release(52, 53, l)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids(sel))
}

func TestToolKeepsSelectionOnFailure(t *testing.T) {
	tool := NewTool(view, Within(orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{55, 100}}), nil)
	l := pointLayer()

	tool.Press(50, 50)
	_, err := tool.Release(50, 50, l)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids(tool.Selected()))

	tool.Press(0, 0)
	tool.Move(0, 0)
	tool.Move(80, 80)
	sel, err := tool.Release(80, 80, l)
	assert.True(t, errors.Is(err, ErrCoordinateSystemMismatch))
	assert.Equal(t, []int64{2}, ids(sel))

	tool.Press(10, 10)
	tool.Move(10, 10)
	sel, err = tool.Release(10, 40, l)
	assert.True(t, errors.Is(err, ErrEmptySelectionExtent))
	assert.Equal(t, []int64{2}, ids(sel))
}

func TestParseBbox(t *testing.T) {
	b, err := ParseBbox("10, 20,0,5")
	require.NoError(t, err)
	assert.Equal(t, orb.Bound{Min: orb.Point{0, 5}, Max: orb.Point{10, 20}}, b)

	_, err = ParseBbox("1,2,3")
	assert.Error(t, err)
	_, err = ParseBbox("1,2,3,x")
	assert.Error(t, err)
}

func TestParsePoint(t *testing.T) {
	p, err := ParsePoint("-1.5,52")
	require.NoError(t, err)
	assert.Equal(t, orb.Point{-1.5, 52}, p)
}
