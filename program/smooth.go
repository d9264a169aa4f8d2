package main

// runningAverage computes a causal moving average of values: each output
// point is the arithmetic mean of the last window samples ending at that
// point, with a shorter effective window near the start of the sequence.
// There is no look-ahead and no padding, so the output has the same length as
// the input and the first element is always unchanged. window <= 1 disables
// smoothing and returns a copy of the input.
//
// A running sum keeps this O(n) instead of O(n*window).
func runningAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	sum := 0.0
	for i, v := range values {
		sum += v
		n := window
		if i+1 < window {
			n = i + 1
		} else if i >= window {
			sum -= values[i-window]
		}
		out[i] = sum / float64(n)
	}
	return out
}
