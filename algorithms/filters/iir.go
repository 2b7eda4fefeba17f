package filters

// IIR is a direct form I filter of arbitrary order with a[0] == 1.
type IIR struct {
	b, a []float64
	x, y []float64
}

// NewIIR creates a filter from numerator b and denominator a. The
// coefficients are normalized so that a[0] is 1.
func NewIIR(b, a []float64) *IIR {
	a0 := 1.0
	if len(a) > 0 && a[0] != 0 {
		a0 = a[0]
	}

	nb := make([]float64, len(b))
	for i, v := range b {
		nb[i] = v / a0
	}
	na := make([]float64, len(a))
	for i, v := range a {
		na[i] = v / a0
	}

	return &IIR{
		b: nb,
		a: na,
		x: make([]float64, len(b)),
		y: make([]float64, len(a)),
	}
}

// NewPinkingFilter returns Paul Kellet's economy -3 dB/octave filter; fed
// with white noise it produces pink noise.
func NewPinkingFilter() *IIR {
	return NewIIR(
		[]float64{0.049922035, -0.095993537, 0.050612699, -0.004408786},
		[]float64{1, -2.494956002, 2.017265875, -0.522189400},
	)
}

// Process filters one sample.
func (f *IIR) Process(in float64) float64 {
	if len(f.x) > 0 {
		copy(f.x[1:], f.x[:len(f.x)-1])
		f.x[0] = in
	}

	out := 0.0
	for i, b := range f.b {
		out += b * f.x[i]
	}
	for i := 1; i < len(f.a); i++ {
		out -= f.a[i] * f.y[i-1]
	}

	if len(f.y) > 0 {
		copy(f.y[1:], f.y[:len(f.y)-1])
		f.y[0] = out
	}
	return out
}

// ProcessBuffer filters a whole signal into a new slice.
func (f *IIR) ProcessBuffer(input []float64) []float64 {
	output := make([]float64, len(input))
	for i, x := range input {
		output[i] = f.Process(x)
	}
	return output
}
