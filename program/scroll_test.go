package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecomputeAutoFollowTail(t *testing.T) {
	s := NewScrollView(5)

	start, end := s.Recompute(12)
	assert.Equal(t, 7, start)
	assert.Equal(t, 12, end)
	offset, ok := s.Offset()
	require.True(t, ok)
	assert.Equal(t, 7, offset)

	// The series grows; the view keeps tracking the tail.
	start, end = s.Recompute(20)
	assert.Equal(t, 15, start)
	assert.Equal(t, 20, end)
}

func TestRecomputeShortSeries(t *testing.T) {
	s := NewScrollView(10)
	start, end := s.Recompute(4)
	assert.Equal(t, 0, start)
	assert.Equal(t, 4, end)
}

func TestRecomputeEmptySeries(t *testing.T) {
	s := NewScrollView(10)
	start, end := s.Recompute(0)
	assert.Equal(t, 0, start)
	assert.Equal(t, 0, end)
}

func TestManualPanSticksAndClamps(t *testing.T) {
	s := NewScrollView(5)
	s.Recompute(12)

	s.PanLeft(s.WindowSize)
	offset, _ := s.Offset()
	require.Equal(t, 2, offset)

	// Not at the tail anymore, so growth must not re-snap the view.
	start, end := s.Recompute(30)
	assert.Equal(t, 2, start)
	assert.Equal(t, 7, end)

	// Overshooting to the right is clamped on the next recompute.
	s.PanRight(1000)
	start, _ = s.Recompute(30)
	assert.Equal(t, 25, start)

	// Clamped onto the tail means auto-follow resumes.
	start, _ = s.Recompute(40)
	assert.Equal(t, 35, start)
}

func TestManualPanClampedWhenSeriesShrinks(t *testing.T) {
	s := NewScrollView(5)
	s.Recompute(100)
	s.PanLeft(100) // offset 0... then right a bit
	s.PanRight(50)
	s.Recompute(100)

	start, end := s.Recompute(20)
	assert.Equal(t, 15, start)
	assert.Equal(t, 20, end)
}

func TestPanBeforeFirstRecomputeIsNoOp(t *testing.T) {
	s := NewScrollView(5)
	s.PanLeft(3)
	s.PanRight(3)
	_, ok := s.Offset()
	assert.False(t, ok)

	start, _ := s.Recompute(12)
	assert.Equal(t, 7, start)
}

func TestWindowSizeFloor(t *testing.T) {
	s := NewScrollView(0)
	assert.Equal(t, 1, s.WindowSize)
	s.ShrinkWindow(100)
	assert.Equal(t, 1, s.WindowSize)
	s.GrowWindow(100)
	assert.Equal(t, 101, s.WindowSize)
}

func TestAutoFollowReachesTailOrShowsAll(t *testing.T) {
	for _, total := range []int{0, 1, 4, 5, 6, 50, 1000} {
		for _, window := range []int{1, 2, 5, 10} {
			s := NewScrollView(window)
			s.Recompute(total)
			offset, ok := s.Offset()
			require.True(t, ok)
			assert.True(t, offset+window >= total || offset == 0,
				"total=%d window=%d offset=%d", total, window, offset)
		}
	}
}
