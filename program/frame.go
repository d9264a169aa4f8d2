package main

import (
	"fmt"
	"strings"

	plot "github.com/chriskim06/drawille-go"
)

// frame is the renderer-agnostic bundle for one screen update: the visible
// samples, the smoothed overlay, the anomaly markers that fall inside the
// window, and the legend lines describing the current parameters.
type frame struct {
	start    int       // absolute index of the first visible sample
	raw      []float64 // visible slice of the series
	avg      []float64 // visible slice of the full-series running average
	rawMarks []int     // flagged raw indices inside the window, absolute
	avgMarks []int     // flagged smoothed indices inside the window, absolute
	noData   bool
	legend   []string
}

type theme struct {
	name    string
	raw     plot.Color
	avg     plot.Color
	rawMark plot.Color
	avgMark plot.Color
}

var (
	darkTheme = theme{
		name:    "Dark",
		raw:     plot.Cyan,
		avg:     plot.Yellow,
		rawMark: plot.Red,
		avgMark: plot.Magenta,
	}
	lightTheme = theme{
		name:    "Light",
		raw:     plot.Blue,
		avg:     plot.Red,
		rawMark: plot.Magenta,
		avgMark: plot.Green,
	}
)

func activeTheme(style string) theme {
	if style == styleLight {
		return lightTheme
	}
	return darkTheme
}

// renderFrame draws the frame onto the canvas and returns the chart text.
// Each enabled element is its own series with its own color; anomaly markers
// are drawn as vertical strokes from the chart floor up to the flagged value,
// giving them a visual identity distinct from the line they annotate.
func renderFrame(c *plot.Canvas, f frame, th theme, s Settings) string {
	n := len(f.raw)
	if n == 0 {
		return ""
	}
	var data [][]float64
	var colors []plot.Color
	if s.ShowRaw {
		data = append(data, f.raw)
		colors = append(colors, th.raw)
	}
	if s.ShowAvg {
		data = append(data, f.avg)
		colors = append(colors, th.avg)
	}
	floor := frameFloor(f)
	if s.ShowRawAnomalies && len(f.rawMarks) > 0 {
		data = append(data, markerSeries(f.raw, f.rawMarks, f.start, floor))
		colors = append(colors, th.rawMark)
	}
	if s.ShowAvgAnomalies && len(f.avgMarks) > 0 {
		data = append(data, markerSeries(f.avg, f.avgMarks, f.start, floor))
		colors = append(colors, th.avgMark)
	}
	if len(data) == 0 {
		return ""
	}
	c.NumDataPoints = n
	c.LineColors = colors
	c.Fill(data)
	return c.String()
}

// frameFloor is the lowest visible value across both plotted series; marker
// strokes are anchored to it so they read as drops to the chart floor.
func frameFloor(f frame) float64 {
	floor := f.raw[0]
	for _, v := range f.raw {
		if v < floor {
			floor = v
		}
	}
	for _, v := range f.avg {
		if v < floor {
			floor = v
		}
	}
	return floor
}

// markerSeries builds a series that sits on the floor everywhere except at
// the marked (absolute) indices, where it jumps to the underlying value.
func markerSeries(values []float64, marks []int, start int, floor float64) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		out[i] = floor
	}
	for _, m := range marks {
		i := m - start
		if i >= 0 && i < len(out) {
			out[i] = values[i]
		}
	}
	return out
}

// legendLines describes the current view state: window geometry, smoothing,
// both detectors, and the display toggles.
func legendLines(f frame, scroll *ScrollView, rawDet, avgDet *AnomalyDetector, s Settings) []string {
	lines := []string{
		fmt.Sprintf("TW Length: %d   Avg window: %d   Range: [%d, %d)",
			scroll.WindowSize, s.AvgWindow, f.start, f.start+len(f.raw)),
	}
	if s.AnomaliesEnabled {
		lines = append(lines,
			fmt.Sprintf("Raw anomalies: thr %.1f  baseline %d  flagged %d (%d in view)",
				rawDet.Threshold(), rawDet.BaselineWindow(), rawDet.FlaggedCount(), len(f.rawMarks)),
			fmt.Sprintf("Avg anomalies: thr %.1f  baseline %d  flagged %d (%d in view)",
				avgDet.Threshold(), avgDet.BaselineWindow(), avgDet.FlaggedCount(), len(f.avgMarks)),
		)
	} else {
		lines = append(lines, "Anomaly detection: off")
	}
	var shown []string
	for _, p := range []struct {
		on   bool
		name string
	}{
		{s.ShowRaw, "data"},
		{s.ShowAvg, "avg"},
		{s.ShowRawAnomalies, "data-marks"},
		{s.ShowAvgAnomalies, "avg-marks"},
	} {
		if p.on {
			shown = append(shown, p.name)
		}
	}
	if len(shown) == 0 {
		shown = []string{"none"}
	}
	lines = append(lines, fmt.Sprintf("Background: %s   Showing: %s",
		activeTheme(s.Style).name, strings.Join(shown, " ")))
	return lines
}
