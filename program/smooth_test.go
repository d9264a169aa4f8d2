package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunningAverageIdentity(t *testing.T) {
	in := []float64{3, 1, 4, 1, 5}
	for _, window := range []int{-1, 0, 1} {
		out := runningAverage(in, window)
		assert.Equal(t, in, out, "window=%d", window)
	}

	// The identity case returns a copy, not the input slice.
	out := runningAverage(in, 1)
	out[0] = 99
	assert.Equal(t, 3.0, in[0])
}

func TestRunningAverageIdentityIdempotent(t *testing.T) {
	in := []float64{3, 1, 4, 1, 5}
	once := runningAverage(in, 1)
	twice := runningAverage(once, 1)
	assert.Equal(t, in, twice)
}

func TestRunningAverageCausalBoundary(t *testing.T) {
	in := []float64{1, 2, 3, 4}

	assert.Equal(t, []float64{1, 1.5, 2.5, 3.5}, runningAverage(in, 2))
	assert.Equal(t, []float64{1, 1.5, 2, 3}, runningAverage(in, 3))
	// A window at least as long as the input degrades to the prefix mean.
	assert.Equal(t, []float64{1, 1.5, 2, 2.5}, runningAverage(in, 10))
}

func TestRunningAveragePreservesLengthAndFirst(t *testing.T) {
	in := []float64{7, -2, 0.5, 12, 3, 3, 3, -9}
	for _, window := range []int{2, 3, 5, 100} {
		out := runningAverage(in, window)
		require.Len(t, out, len(in))
		assert.Equal(t, in[0], out[0])
	}
}

func TestRunningAverageMatchesNaive(t *testing.T) {
	// Pseudo-random but deterministic input, kept within [-100, 100] so an
	// absolute tolerance is meaningful.
	in := make([]float64, 500)
	x := 1.0
	for i := range in {
		x = x*1.7 + 0.3
		if x > 100 {
			x -= 173
		}
		if x < -100 {
			x += 173
		}
		in[i] = x
	}
	for _, window := range []int{2, 7, 64} {
		got := runningAverage(in, window)
		for i := range in {
			start := i - window + 1
			if start < 0 {
				start = 0
			}
			sum := 0.0
			for _, v := range in[start : i+1] {
				sum += v
			}
			want := sum / float64(i+1-start)
			require.InDelta(t, want, got[i], 1e-9, "window=%d i=%d", window, i)
		}
	}
}
