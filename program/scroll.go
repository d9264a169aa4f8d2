package main

// ScrollView owns the visible window over the full sample sequence: its size,
// its start offset, and the auto-follow behavior that keeps the window glued
// to the newest data until the user pans away from the tail.
type ScrollView struct {
	WindowSize int

	offset        int
	offsetSet     bool
	lastMaxOffset int
	lastMaxSet    bool
}

func NewScrollView(windowSize int) *ScrollView {
	if windowSize < 1 {
		windowSize = 1
	}
	return &ScrollView{WindowSize: windowSize}
}

// Recompute reconciles the window with the current series length and returns
// the visible half-open range [start, end).
//
// The offset snaps to the new maximum when it is still unset or when it sat at
// the previous maximum (the view was at the tail, so it follows the tail).
// A manually chosen offset is kept and only clamped down if the series shrank
// underneath it. An empty series yields an empty range.
func (s *ScrollView) Recompute(total int) (start, end int) {
	newMax := total - s.WindowSize
	if newMax < 0 {
		newMax = 0
	}
	if !s.offsetSet || (s.lastMaxSet && s.offset == s.lastMaxOffset) {
		s.offset = newMax
		s.offsetSet = true
	} else if s.offset > newMax {
		s.offset = newMax
	}
	s.lastMaxOffset = newMax
	s.lastMaxSet = true

	start = s.offset
	end = s.offset + s.WindowSize
	if end > total {
		end = total
	}
	if start > end {
		start = end
	}
	return start, end
}

// Offset reports the current offset; ok is false before the first Recompute
// has initialized it.
func (s *ScrollView) Offset() (offset int, ok bool) {
	return s.offset, s.offsetSet
}

func (s *ScrollView) GrowWindow(n int) {
	s.WindowSize += n
}

func (s *ScrollView) ShrinkWindow(n int) {
	s.WindowSize -= n
	if s.WindowSize < 1 {
		s.WindowSize = 1
	}
}

// PanLeft moves the window toward older samples. Panning is a no-op until the
// first Recompute has placed the window.
func (s *ScrollView) PanLeft(n int) {
	if !s.offsetSet {
		return
	}
	s.offset -= n
	if s.offset < 0 {
		s.offset = 0
	}
}

// PanRight moves the window toward newer samples. Overshooting the tail is
// fine; the next Recompute clamps it back.
func (s *ScrollView) PanRight(n int) {
	if !s.offsetSet {
		return
	}
	s.offset += n
}
