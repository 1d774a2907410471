package styles

import (
	"encoding/xml"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"layer2kml/pkg/types"
)

func marshal(t *testing.T, v interface{}) string {
	t.Helper()
	b, err := xml.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestABGR(t *testing.T) {
	c := ABGR(color.NRGBA{R: 11, G: 22, B: 33, A: 44})
	assert.Equal(t, color.NRGBA{R: 33, G: 22, B: 11, A: 44}, c)
}

func TestFormatColor(t *testing.T) {
	assert.Equal(t, "44332211", FormatColor(color.NRGBA{R: 0x11, G: 0x22, B: 0x33, A: 0x44}))
	assert.Equal(t, "ff0000ff", FormatColor(color.NRGBA{R: 0xff, A: 0xff}))
	// translucent colours keep their channels
	assert.Equal(t, "0000ff00", FormatColor(color.NRGBA{G: 0xff}))
}

func TestSingleSymbol(t *testing.T) {
	ss := types.DefaultStyleSet()
	ss.Line.Color = color.NRGBA{R: 0xff, A: 0x80}
	ss.Line.Width = 3
	ss.Poly.Fill = false

	s := marshal(t, SingleSymbol(StyleID("roads"), &ss))
	assert.True(t, strings.HasPrefix(s, `<Style id="styleOf-roads">`), s)
	for _, el := range []string{"<LabelStyle>", "<IconStyle>", "<LineStyle>", "<PolyStyle>"} {
		assert.Contains(t, s, el)
	}
	assert.Contains(t, s, "<color>800000ff</color>")
	assert.Contains(t, s, "<width>3</width>")
	assert.Contains(t, s, "<fill>0</fill>")
	assert.Contains(t, s, "<outline>1</outline>")
	assert.Contains(t, s, "<colorMode>normal</colorMode>")
	assert.Contains(t, s, "<href>"+types.DEFAULT_ICON+"</href>")
}

// element returns the first <name>...</name> span of s.
func element(t *testing.T, s, name string) string {
	t.Helper()
	i := strings.Index(s, "<"+name+">")
	require.GreaterOrEqual(t, i, 0, s)
	j := strings.Index(s[i:], "</"+name+">")
	require.GreaterOrEqual(t, j, 0, s)
	return s[i : i+j]
}

func TestUniqueValue(t *testing.T) {
	r := types.UniqueValue(0, 0x40, []types.Symbol{
		{LowerValue: "A", Color: color.NRGBA{R: 0xff, A: 0xff}, FillColor: color.NRGBA{B: 0xff, A: 0xff}, LineWidth: 2, Brush: true},
		{LowerValue: "B", Color: color.NRGBA{G: 0xff, A: 0xff}, Pen: true},
	})
	els := Generate("parcels", &r)
	require.Len(t, els, 2)

	a := marshal(t, els[0])
	assert.True(t, strings.HasPrefix(a, `<Style id="styleOf-parcels.A">`), a)
	assert.Contains(t, a, "<color>400000ff</color>")
	assert.Contains(t, a, "<color>40ff0000</color>")
	assert.Contains(t, a, "<width>2</width>")
	assert.Contains(t, a, "<fill>1</fill><outline>0</outline>")
	assert.Contains(t, a, "<scale>1</scale>")
	// icons take the fill colour, labels and lines the outline colour
	assert.Contains(t, element(t, a, "IconStyle"), "<color>40ff0000</color>")
	assert.Contains(t, element(t, a, "PolyStyle"), "<color>40ff0000</color>")
	assert.Contains(t, element(t, a, "LineStyle"), "<color>400000ff</color>")
	assert.Contains(t, element(t, a, "LabelStyle"), "<color>400000ff</color>")

	b := marshal(t, els[1])
	assert.Contains(t, b, `id="styleOf-parcels.B"`)
	assert.Contains(t, b, "<fill>0</fill><outline>1</outline>")
}

func TestGenerateSingle(t *testing.T) {
	r := types.SingleSymbol(types.DefaultStyleSet())
	els := Generate("x", &r)
	require.Len(t, els, 1)
	assert.Contains(t, marshal(t, els[0]), `id="styleOf-x"`)
}

func TestAutoSymbols(t *testing.T) {
	syms := AutoSymbols([]string{"b", "a", "b", "c"}, "rdgn")
	require.Len(t, syms, 3)
	assert.Equal(t, "b", syms[0].LowerValue)
	assert.Equal(t, "a", syms[1].LowerValue)
	assert.Equal(t, "c", syms[2].LowerValue)
	assert.NotEqual(t, syms[0].Color, syms[2].Color)
	for _, s := range syms {
		assert.Equal(t, uint8(0xff), s.Color.A)
		assert.True(t, s.Brush)
		assert.True(t, s.Pen)
	}
}

func TestPositions(t *testing.T) {
	assert.Equal(t, []float64{0.5}, positions([]string{"x"}))
	assert.Equal(t, []float64{0, 0.5, 1}, positions([]string{"b", "a", "c"}))

	vals := []string{"1", "2", "3", "5", "8", "13", "21", "34", "55", "89"}
	pos := positions(vals)
	require.Len(t, pos, len(vals))
	for j, p := range pos {
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
		if j > 0 {
			assert.GreaterOrEqual(t, p, pos[j-1])
		}
	}
}

func TestGradientIndex(t *testing.T) {
	assert.Equal(t, GRAD_RED, GradientIndex(""))
	assert.Equal(t, GRAD_RGN, GradientIndex("rdgn"))
	assert.Equal(t, GRAD_YOR, GradientIndex("yor"))
}

func TestDefaultIconHref(t *testing.T) {
	assert.Equal(t, types.DEFAULT_ICON, iconHref(""))
	assert.Equal(t, "x.png", iconHref("x.png"))
}
