package common

// InterpolationType defines interpolation method
type InterpolationType int

const (
	Linear InterpolationType = iota
	Cubic
)

// Interpolator reads a sampled signal at fractional positions.
type Interpolator struct {
	method InterpolationType
}

// NewInterpolator creates a new interpolator
func NewInterpolator(method InterpolationType) *Interpolator {
	return &Interpolator{
		method: method,
	}
}

// Interpolate performs interpolation at fractional index. Positions outside
// the signal are clamped to its end points; integer positions return the
// stored sample exactly.
func (interp *Interpolator) Interpolate(data []float64, index float64) float64 {
	switch interp.method {
	case Cubic:
		return interp.cubicInterpolate(data, index)
	default:
		return interp.linearInterpolate(data, index)
	}
}

func (interp *Interpolator) linearInterpolate(data []float64, index float64) float64 {
	if len(data) == 0 {
		return 0.0
	}

	if index <= 0 {
		return data[0]
	}
	if index >= float64(len(data)-1) {
		return data[len(data)-1]
	}

	i := int(index)
	frac := index - float64(i)

	return data[i] + frac*(data[i+1]-data[i])
}

// cubicInterpolate is a Catmull-Rom spline with edge samples repeated.
func (interp *Interpolator) cubicInterpolate(data []float64, index float64) float64 {
	n := len(data)
	if n < 4 {
		return interp.linearInterpolate(data, index)
	}

	if index <= 0 {
		return data[0]
	}
	if index >= float64(n-1) {
		return data[n-1]
	}

	i := int(index)
	frac := index - float64(i)
	if frac == 0 {
		return data[i]
	}

	y0 := data[max(i-1, 0)]
	y1 := data[i]
	y2 := data[i+1]
	y3 := data[min(i+2, n-1)]

	a0 := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	a1 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	a2 := -0.5*y0 + 0.5*y2
	a3 := y1

	return ((a0*frac+a1)*frac+a2)*frac + a3
}

// Resample reads data at each position in positions.
func (interp *Interpolator) Resample(data []float64, positions []float64) []float64 {
	out := make([]float64, len(positions))
	for i, p := range positions {
		out[i] = interp.Interpolate(data, p)
	}
	return out
}

// InterpolateArray stretches or squeezes data to newLength samples.
func (interp *Interpolator) InterpolateArray(data []float64, newLength int) []float64 {
	if len(data) == 0 || newLength <= 0 {
		return []float64{}
	}
	if newLength == 1 {
		return []float64{data[0]}
	}

	result := make([]float64, newLength)
	scale := float64(len(data)-1) / float64(newLength-1)

	for i := range newLength {
		result[i] = interp.Interpolate(data, float64(i)*scale)
	}

	return result
}
