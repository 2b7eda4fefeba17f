package filters

// Cascade runs biquad sections in series.
type Cascade []*Biquad

// Process filters one sample through every section.
func (c Cascade) Process(x float64) float64 {
	for _, s := range c {
		x = s.Process(x)
	}
	return x
}

// ProcessBuffer filters a whole signal into a new slice.
func (c Cascade) ProcessBuffer(input []float64) []float64 {
	output := make([]float64, len(input))
	for i, x := range input {
		output[i] = c.Process(x)
	}
	return output
}

// Reset clears every section.
func (c Cascade) Reset() {
	for _, s := range c {
		s.Reset()
	}
}

// NewLinkwitzRileyLowpass is a fourth-order Linkwitz-Riley low-pass: two
// identical Butterworth sections, -6 dB at the crossover frequency.
func NewLinkwitzRileyLowpass(sampleRate int, freq float64) Cascade {
	return Cascade{
		NewLowpass(sampleRate, freq, ButterworthQ),
		NewLowpass(sampleRate, freq, ButterworthQ),
	}
}

// NewLinkwitzRileyHighpass is the high-pass counterpart of NewLinkwitzRileyLowpass.
func NewLinkwitzRileyHighpass(sampleRate int, freq float64) Cascade {
	return Cascade{
		NewHighpass(sampleRate, freq, ButterworthQ),
		NewHighpass(sampleRate, freq, ButterworthQ),
	}
}

// NewBandLimit passes lowFreq..highFreq with second-order Butterworth edges.
func NewBandLimit(sampleRate int, lowFreq, highFreq float64) Cascade {
	return Cascade{
		NewHighpass(sampleRate, lowFreq, ButterworthQ),
		NewLowpass(sampleRate, highFreq, ButterworthQ),
	}
}

// Crossover splits a signal into low, mid and high bands with Linkwitz-Riley
// sections. The bands sum back to an all-pass response of the input.
type Crossover struct {
	sampleRate int
	lowFreq    float64
	highFreq   float64
}

// NewCrossover creates a three-way crossover at lowFreq and highFreq.
func NewCrossover(sampleRate int, lowFreq, highFreq float64) *Crossover {
	return &Crossover{sampleRate: sampleRate, lowFreq: lowFreq, highFreq: highFreq}
}

// Split returns the low, mid and high bands of signal.
func (x *Crossover) Split(signal []float64) (low, mid, high []float64) {
	low = NewLinkwitzRileyLowpass(x.sampleRate, x.lowFreq).ProcessBuffer(signal)

	// The low band goes through an all-pass at the upper crossover so that
	// its phase matches the mid and high bands.
	lowLP := NewLinkwitzRileyLowpass(x.sampleRate, x.highFreq).ProcessBuffer(low)
	lowHP := NewLinkwitzRileyHighpass(x.sampleRate, x.highFreq).ProcessBuffer(low)
	for i := range low {
		low[i] = lowLP[i] + lowHP[i]
	}

	rest := NewLinkwitzRileyHighpass(x.sampleRate, x.lowFreq).ProcessBuffer(signal)
	mid = NewLinkwitzRileyLowpass(x.sampleRate, x.highFreq).ProcessBuffer(rest)
	high = NewLinkwitzRileyHighpass(x.sampleRate, x.highFreq).ProcessBuffer(rest)

	return low, mid, high
}
