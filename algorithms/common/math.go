package common

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DBFloor is the level reported for digital silence.
const DBFloor = -120.0

// AmplitudeToDB converts a linear amplitude to dBFS, floored at DBFloor.
func AmplitudeToDB(amplitude float64) float64 {
	if amplitude <= 0 {
		return DBFloor
	}
	return math.Max(20*math.Log10(amplitude), DBFloor)
}

// PowerToDB converts a mean-square power to dB, floored at DBFloor.
func PowerToDB(power float64) float64 {
	if power <= 0 {
		return DBFloor
	}
	return math.Max(10*math.Log10(power), DBFloor)
}

// DBToAmplitude converts dB to a linear amplitude.
func DBToAmplitude(db float64) float64 {
	return math.Pow(10, db/20)
}

// Mean calculates the arithmetic mean of a slice using gonum
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// Variance calculates the sample variance of a slice using gonum
func Variance(data []float64) float64 {
	if len(data) < 2 {
		return 0.0
	}
	return stat.Variance(data, nil)
}

// Percentile calculates the p-th percentile (p between 0 and 1)
func Percentile(data []float64, p float64) float64 {
	if len(data) == 0 || p < 0 || p > 1 {
		return 0.0
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// MeanSquare returns the mean of the squared samples.
func MeanSquare(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return floats.Dot(data, data) / float64(len(data))
}

// RMS calculates root mean square
func RMS(data []float64) float64 {
	return math.Sqrt(MeanSquare(data))
}

// Peak returns the largest absolute value.
func Peak(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return math.Max(floats.Max(data), -floats.Min(data))
}

// Correlation returns the Pearson correlation of x and y, or 0 when either
// input has no variance.
func Correlation(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return 0.0
	}
	if Variance(x) == 0 || Variance(y) == 0 {
		return 0.0
	}
	return stat.Correlation(x, y, nil)
}

// Clamp restricts value to [lo, hi].
func Clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

// Lerp performs linear interpolation between a and b
func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// NextPowerOfTwo returns the smallest power of two >= n
func NextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// MsToSamples converts milliseconds to a sample count at sampleRate.
func MsToSamples(ms float64, sampleRate int) int {
	return int(math.Round(ms * 0.001 * float64(sampleRate)))
}
