package main

import (
	"time"
)

type durationRing struct {
	buf   []time.Duration
	idx   int
	count int
}

func newDurationRing(n int) *durationRing {
	if n < 1 {
		n = 1
	}
	return &durationRing{buf: make([]time.Duration, n)}
}

func (r *durationRing) add(d time.Duration) {
	r.buf[r.idx] = d
	r.idx++
	if r.idx >= len(r.buf) {
		r.idx = 0
	}
	if r.count < len(r.buf) {
		r.count++
	}
}

type durationStats struct {
	last time.Duration
	max  time.Duration
	avg  time.Duration
	n    int
}

func (r *durationRing) snapshot() durationStats {
	if r.count == 0 {
		return durationStats{}
	}
	var sum, maxSeen time.Duration
	for i := 0; i < r.count; i++ {
		d := r.buf[i]
		sum += d
		if d > maxSeen {
			maxSeen = d
		}
	}
	lastIdx := r.idx - 1
	if lastIdx < 0 {
		lastIdx = len(r.buf) - 1
	}
	return durationStats{
		last: r.buf[lastIdx],
		max:  maxSeen,
		avg:  sum / time.Duration(r.count),
		n:    r.count,
	}
}

// refreshMetrics collects counters for the stats footer. Everything here is
// owned by the control loop and touched only from within it, so there is no
// synchronization.
type refreshMetrics struct {
	enabled bool

	latency *durationRing

	samplesRead int
	parseErrors int

	refreshes       uint64
	forcedRefreshes uint64
	fullPasses      uint64
	incrPasses      uint64
}

func newRefreshMetrics(window int, enabled bool) *refreshMetrics {
	return &refreshMetrics{
		enabled: enabled,
		latency: newDurationRing(window),
	}
}

func (m *refreshMetrics) observeRead(stats readStats) {
	if !m.enabled {
		return
	}
	m.samplesRead = stats.samples
	m.parseErrors += stats.malformed
}

func (m *refreshMetrics) observeDetectorPass(didFull bool) {
	if !m.enabled {
		return
	}
	if didFull {
		m.fullPasses++
		return
	}
	m.incrPasses++
}

func (m *refreshMetrics) observeRefresh(d time.Duration, forced bool) {
	if !m.enabled {
		return
	}
	m.latency.add(d)
	m.refreshes++
	if forced {
		m.forcedRefreshes++
	}
}

type metricsSnapshot struct {
	samplesRead     int
	parseErrors     int
	refreshes       uint64
	forcedRefreshes uint64
	fullPasses      uint64
	incrPasses      uint64
	latency         durationStats
}

func (m *refreshMetrics) snapshot() metricsSnapshot {
	if !m.enabled {
		return metricsSnapshot{}
	}
	return metricsSnapshot{
		samplesRead:     m.samplesRead,
		parseErrors:     m.parseErrors,
		refreshes:       m.refreshes,
		forcedRefreshes: m.forcedRefreshes,
		fullPasses:      m.fullPasses,
		incrPasses:      m.incrPasses,
		latency:         m.latency.snapshot(),
	}
}
