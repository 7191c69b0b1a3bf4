package indicator

import "math"

// EMA returns the exponential moving average of values for the given span,
// seeded with the first defined value (alpha = 2/(span+1)).
func EMA(values []float64, span int) []float64 {
	return ewm(values, 2.0/float64(span+1))
}

// RMA returns Wilder's running moving average for the given length
// (alpha = 1/length), seeded with the first defined value.
func RMA(values []float64, length int) []float64 {
	return ewm(values, 1.0/float64(length))
}

// ewm folds values forward in time carrying the previous smoothed value.
// Leading NaNs stay NaN until the first defined value seeds the state; a NaN
// after that repeats the previous state.
func ewm(values []float64, alpha float64) []float64 {
	out := make([]float64, len(values))
	state := math.NaN()
	for i, x := range values {
		switch {
		case math.IsNaN(x):
		case math.IsNaN(state):
			state = x
		default:
			state += alpha * (x - state)
		}
		out[i] = state
	}
	return out
}

// rollingMin returns the minimum over the trailing window ending at each
// index, inclusive. Indices with fewer than window values are NaN.
func rollingMin(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		if i+1 < window {
			out[i] = math.NaN()
			continue
		}
		m := values[i]
		for j := i - window + 1; j < i; j++ {
			if values[j] < m || math.IsNaN(m) {
				m = values[j]
			}
		}
		out[i] = m
	}
	return out
}
