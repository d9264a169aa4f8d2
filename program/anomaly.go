package main

import (
	"math"
	"sort"

	"github.com/gonum/stat"
)

// adMaxPoints caps how far back a full recompute pass reaches. Older points
// keep whatever flags they already carry but are never re-evaluated.
const adMaxPoints = 1000

const (
	minThreshold      = 0.5
	minBaselineWindow = 2
)

// AnomalyDetector flags points that deviate from their rolling baseline by
// more than threshold standard deviations. One instance runs over the raw
// series and one over the smoothed series, each with its own parameters and
// its own flagged-index set.
//
// Two recomputation policies:
//   - incremental (the steady state): each Evaluate scores only the most
//     recent baselineWindow points against their own mean/stdev and adds new
//     flags; nothing is ever un-flagged.
//   - full: latched by any parameter change, consumed by the next Evaluate,
//     which clears the set and rescores every point against the baseline
//     strictly preceding it, then reverts to incremental.
type AnomalyDetector struct {
	threshold      float64
	baselineWindow int

	needFull bool
	flagged  map[int]struct{}
}

func NewAnomalyDetector(threshold float64, baselineWindow int) *AnomalyDetector {
	d := &AnomalyDetector{flagged: make(map[int]struct{})}
	d.threshold = clampThreshold(threshold)
	d.baselineWindow = clampBaselineWindow(baselineWindow)
	return d
}

func clampThreshold(v float64) float64 {
	if v < minThreshold {
		return minThreshold
	}
	return v
}

func clampBaselineWindow(v int) int {
	if v < minBaselineWindow {
		return minBaselineWindow
	}
	return v
}

func (d *AnomalyDetector) Threshold() float64  { return d.threshold }
func (d *AnomalyDetector) BaselineWindow() int { return d.baselineWindow }
func (d *AnomalyDetector) FullPending() bool   { return d.needFull }
func (d *AnomalyDetector) FlaggedCount() int   { return len(d.flagged) }

// AdjustThreshold shifts the threshold by delta, clamped to its floor. An
// effective change latches a full recompute for the next Evaluate.
func (d *AnomalyDetector) AdjustThreshold(delta float64) {
	v := clampThreshold(d.threshold + delta)
	if v != d.threshold {
		d.threshold = v
		d.needFull = true
	}
}

// AdjustBaselineWindow shifts the baseline window by delta, clamped to its
// floor. An effective change latches a full recompute for the next Evaluate.
func (d *AnomalyDetector) AdjustBaselineWindow(delta int) {
	v := clampBaselineWindow(d.baselineWindow + delta)
	if v != d.baselineWindow {
		d.baselineWindow = v
		d.needFull = true
	}
}

// Evaluate scores the signal and updates the flagged set, running either the
// pending full pass or the cheap incremental pass. It reports which one ran.
// Flags that point past the end of the signal (the source file shrank or was
// rewritten) are dropped first.
func (d *AnomalyDetector) Evaluate(signal []float64) (didFull bool) {
	for i := range d.flagged {
		if i >= len(signal) {
			delete(d.flagged, i)
		}
	}
	if d.needFull {
		d.fullPass(signal)
		d.needFull = false
		return true
	}
	d.incrementalPass(signal)
	return false
}

// fullPass rebuilds the flagged set from scratch. Each index from
// baselineWindow onward is scored against the mean/stdev of the
// baselineWindow points strictly preceding it. The pass is capped to the most
// recent adMaxPoints indices to bound latency on long series. A baseline with
// zero stdev never flags anything.
func (d *AnomalyDetector) fullPass(signal []float64) {
	d.flagged = make(map[int]struct{})
	start := d.baselineWindow
	if capped := len(signal) - adMaxPoints; capped > start {
		start = capped
	}
	for i := start; i < len(signal); i++ {
		mean, std := stat.MeanStdDev(signal[i-d.baselineWindow:i], nil)
		if std == 0 {
			continue
		}
		if math.Abs(signal[i]-mean) > d.threshold*std {
			d.flagged[i] = struct{}{}
		}
	}
}

// incrementalPass scores only the most recent baselineWindow points against
// their own mean/stdev, so the per-refresh cost is independent of the total
// series length. Existing flags are never removed.
func (d *AnomalyDetector) incrementalPass(signal []float64) {
	n := len(signal)
	if n < minBaselineWindow {
		return
	}
	w := d.baselineWindow
	if w > n {
		w = n
	}
	tail := signal[n-w:]
	mean, std := stat.MeanStdDev(tail, nil)
	if std == 0 {
		return
	}
	for j, v := range tail {
		if math.Abs(v-mean) > d.threshold*std {
			d.flagged[n-w+j] = struct{}{}
		}
	}
}

// FlaggedWithin returns the flagged indices that fall inside [start, end),
// sorted ascending. The full set is never truncated to the window; this is a
// render-time filter only.
func (d *AnomalyDetector) FlaggedWithin(start, end int) []int {
	var out []int
	for i := range d.flagged {
		if i >= start && i < end {
			out = append(out, i)
		}
	}
	sort.Ints(out)
	return out
}
