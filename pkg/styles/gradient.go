package styles

import (
	"image/color"
	"strconv"

	"github.com/bmizerany/perks/quantile"
	"github.com/mazznoer/colorgrad"

	"layer2kml/pkg/types"
)

const (
	GRAD_RED = iota
	GRAD_RGN
	GRAD_YOR
)

// GradientIndex maps a user gradient name (red, rdgn, yor) to a preset.
func GradientIndex(name string) int {
	switch name {
	case "rdgn":
		return GRAD_RGN
	case "yor":
		return GRAD_YOR
	default:
		return GRAD_RED
	}
}

func gradient(idx int) colorgrad.Gradient {
	switch idx {
	case GRAD_RGN:
		return colorgrad.RdYlGn()
	case GRAD_YOR:
		return colorgrad.YlOrRd()
	default:
		return colorgrad.Reds()
	}
}

func sample(grad colorgrad.Gradient, t float64) color.NRGBA {
	r, g, b, a := grad.At(t).RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}

// positions places each value on the gradient. Numeric values are placed
// by value between the 5% and 95% quantiles, outliers clamped; anything
// else is spread evenly in order.
func positions(uniq []string) []float64 {
	pos := make([]float64, len(uniq))
	if len(uniq) == 1 {
		pos[0] = 0.5
		return pos
	}
	nums := make([]float64, len(uniq))
	numeric := true
	q := quantile.NewTargeted(0.05, 0.95)
	for j, v := range uniq {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			numeric = false
			break
		}
		nums[j] = f
		q.Insert(f)
	}
	var qval0, qval1 float64
	if numeric {
		qval0 = q.Query(0.05)
		qval1 = q.Query(0.95)
	}
	if !numeric || qval1 <= qval0 {
		for j := range uniq {
			pos[j] = float64(j) / float64(len(uniq)-1)
		}
		return pos
	}
	for j, f := range nums {
		switch {
		case f <= qval0:
			pos[j] = 0
		case f >= qval1:
			pos[j] = 1
		default:
			pos[j] = (f - qval0) / (qval1 - qval0)
		}
	}
	return pos
}

// AutoSymbols classifies values into unique value symbols coloured from
// the named gradient. Duplicate values are dropped; the first occurrence
// fixes the order.
func AutoSymbols(values []string, gradname string) []types.Symbol {
	seen := make(map[string]bool)
	var uniq []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			uniq = append(uniq, v)
		}
	}
	grad := gradient(GradientIndex(gradname))
	pos := positions(uniq)
	syms := make([]types.Symbol, 0, len(uniq))
	for j, v := range uniq {
		c := sample(grad, pos[j])
		syms = append(syms, types.Symbol{
			LowerValue: v,
			Color:      c,
			FillColor:  c,
			LineWidth:  1.0,
			Brush:      true,
			Pen:        true,
		})
	}
	return syms
}
