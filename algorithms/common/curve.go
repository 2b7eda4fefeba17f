package common

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/interp"
)

// ControlCurve is a smooth curve through a handful of control points,
// evaluated per sample. It uses a Fritsch-Butland monotone cubic, so the
// curve never overshoots the range spanned by its control points.
type ControlCurve struct {
	xs, ys []float64
	fb     interp.FritschButland
	flat   bool
}

// NewControlCurve fits a curve through (xs[i], ys[i]). Points are sorted by x
// and duplicate x positions keep their first value.
func NewControlCurve(xs, ys []float64) (*ControlCurve, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("control curve: %d x positions for %d values", len(xs), len(ys))
	}
	if len(xs) == 0 {
		return nil, fmt.Errorf("control curve: no control points")
	}

	idx := make([]int, len(xs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return xs[idx[a]] < xs[idx[b]] })

	c := &ControlCurve{}
	for _, i := range idx {
		if n := len(c.xs); n > 0 && xs[i] <= c.xs[n-1] {
			continue
		}
		c.xs = append(c.xs, xs[i])
		c.ys = append(c.ys, ys[i])
	}

	if len(c.xs) < 2 {
		c.flat = true
		return c, nil
	}

	if err := c.fb.Fit(c.xs, c.ys); err != nil {
		return nil, fmt.Errorf("control curve: %w", err)
	}
	return c, nil
}

// At evaluates the curve, holding the end values outside the control range.
func (c *ControlCurve) At(x float64) float64 {
	if c.flat {
		return c.ys[0]
	}
	if x <= c.xs[0] {
		return c.ys[0]
	}
	if last := len(c.xs) - 1; x >= c.xs[last] {
		return c.ys[last]
	}
	return c.fb.Predict(x)
}

// Render evaluates the curve at every integer position in [0, n).
func (c *ControlCurve) Render(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = c.At(float64(i))
	}
	return out
}
