package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tui "github.com/charmbracelet/bubbletea"
	styles "github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
	plot "github.com/chriskim06/drawille-go"
	"github.com/sirupsen/logrus"
)

type Config struct {
	// input
	InputPath    string
	Interval     time.Duration
	SettingsPath string
	LogPath      string

	// render
	StatsEnabled bool
	StatsWindow  int
	AltScreen    bool
}

var config = Config{
	InputPath:    "data.txt",
	Interval:     2 * time.Second,
	SettingsPath: "tailplot.yaml",
	LogPath:      "",

	StatsEnabled: true,
	StatsWindow:  256,
	AltScreen:    true,
}

// pollEvery is the idle-poll cadence of the control loop: how often it wakes
// up to check whether the refresh interval has elapsed. Keystrokes refresh
// immediately and do not wait for it.
const pollEvery = 200 * time.Millisecond

var (
	accentColor = styles.AdaptiveColor{Light: "0", Dark: "9"}
	borderColor = styles.AdaptiveColor{Light: "#555", Dark: "#555"}
	accentFg    = styles.NewStyle().Foreground(accentColor)
	borderFg    = styles.NewStyle().Foreground(borderColor)
	plotStyle   = styles.NewStyle().
			BorderStyle(styles.NormalBorder()).
			Foreground(borderColor).
			BorderForeground(borderColor)
)

func main() {
	cli := defaultSettings()

	flag.StringVar(&config.InputPath, "f", config.InputPath, "Path to the data file")
	flag.DurationVar(&config.Interval, "i", config.Interval, "Refresh interval")
	flag.StringVar(&config.SettingsPath, "c", config.SettingsPath, "Path to the settings file")
	flag.StringVar(&config.LogPath, "log", config.LogPath, "Append diagnostics to this file (default: discard)")
	flag.IntVar(&cli.WindowSize, "w", cli.WindowSize, "Initial number of points in the moving window")
	flag.IntVar(&cli.AvgWindow, "a", cli.AvgWindow, "Window size for the running average")
	flag.Float64Var(&cli.RawThreshold, "threshold", cli.RawThreshold, "Raw-signal anomaly threshold (stdev multiplier)")
	flag.IntVar(&cli.RawBaseline, "baseline", cli.RawBaseline, "Raw-signal anomaly baseline window")
	flag.Float64Var(&cli.AvgThreshold, "avg-threshold", cli.AvgThreshold, "Smoothed-signal anomaly threshold (stdev multiplier)")
	flag.IntVar(&cli.AvgBaseline, "avg-baseline", cli.AvgBaseline, "Smoothed-signal anomaly baseline window")
	flag.BoolVar(&cli.AnomaliesEnabled, "anomalies", cli.AnomaliesEnabled, "Enable anomaly detection")
	flag.BoolVar(&config.StatsEnabled, "stats", config.StatsEnabled, "Show runtime refresh stats")
	flag.IntVar(&config.StatsWindow, "stats-window", config.StatsWindow, "Number of recent refresh latencies kept")
	flag.BoolVar(&config.AltScreen, "alt-screen", config.AltScreen, "Use the terminal alternate screen buffer")
	flag.Parse()

	if err := validateAndNormalizeConfig(); err != nil {
		logrus.Fatal(err)
	}
	setupLogging(config.LogPath)

	if !term.IsTerminal(os.Stdin.Fd()) {
		logrus.Warn("stdin is not a terminal; interactive keys will not work")
	}

	settings, err := loadSettings(config.SettingsPath)
	if err != nil {
		logrus.WithError(err).Warn("could not load settings file; using defaults")
	}
	applyFlagOverrides(&settings, cli)
	settings.Clamp()

	m := newModel(settings)
	opts := []tui.ProgramOption{tui.WithInputTTY()}
	if config.AltScreen {
		opts = append(opts, tui.WithAltScreen())
	}
	if _, err := tui.NewProgram(m, opts...).Run(); err != nil {
		logrus.Fatal(err)
	}
}

func validateAndNormalizeConfig() error {
	if config.InputPath == "" {
		return fmt.Errorf("-f must not be empty")
	}
	if config.Interval <= 0 {
		return fmt.Errorf("-i must be > 0")
	}
	if config.SettingsPath == "" {
		return fmt.Errorf("-c must not be empty")
	}
	if config.StatsWindow < 16 {
		config.StatsWindow = 16
	}
	return nil
}

func setupLogging(path string) {
	if path == "" {
		logrus.SetOutput(io.Discard)
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logrus.Fatal(err)
	}
	logrus.SetOutput(f)
}

// applyFlagOverrides copies the values of explicitly-set CLI flags over the
// loaded settings, so the precedence is defaults < settings file < flags.
func applyFlagOverrides(s *Settings, cli Settings) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "w":
			s.WindowSize = cli.WindowSize
		case "a":
			s.AvgWindow = cli.AvgWindow
		case "threshold":
			s.RawThreshold = cli.RawThreshold
		case "baseline":
			s.RawBaseline = cli.RawBaseline
		case "avg-threshold":
			s.AvgThreshold = cli.AvgThreshold
		case "avg-baseline":
			s.AvgBaseline = cli.AvgBaseline
		case "anomalies":
			s.AnomaliesEnabled = cli.AnomaliesEnabled
		}
	})
}

// model is the control loop. All mutable state hangs off it and is mutated
// only inside Update, one message at a time.
type model struct {
	width, height int

	settings Settings
	scroll   *ScrollView
	rawDet   *AnomalyDetector
	avgDet   *AnomalyDetector

	series   []float64 // latest full sample sequence
	smoothed []float64 // running average over the full sequence

	frame frame
	plot  *plot.Canvas
	help  help.Model

	metrics      *refreshMetrics
	lastRefresh  time.Time
	forceRefresh bool

	err error
}

func newModel(settings Settings) *model {
	const (
		defaultWidth  = 80
		defaultHeight = 20
	)
	p := plot.NewCanvas(defaultWidth, defaultHeight)
	p.ShowAxis = false

	return &model{
		settings: settings,
		scroll:   NewScrollView(settings.WindowSize),
		rawDet:   NewAnomalyDetector(settings.RawThreshold, settings.RawBaseline),
		avgDet:   NewAnomalyDetector(settings.AvgThreshold, settings.AvgBaseline),
		plot:     &p,
		help:     help.New(),
		metrics:  newRefreshMetrics(config.StatsWindow, config.StatsEnabled),
	}
}

type pollMsg time.Time

func doPollTick() tui.Cmd {
	return tui.Every(pollEvery, func(t time.Time) tui.Msg {
		return pollMsg(t)
	})
}

func (m *model) Init() tui.Cmd {
	// First paint without waiting for a full poll interval.
	return tui.Batch(doPollTick(), func() tui.Msg { return pollMsg(time.Now()) })
}

func (m *model) Update(msg tui.Msg) (tui.Model, tui.Cmd) {
	switch msg := msg.(type) {
	case pollMsg:
		if m.forceRefresh || time.Since(m.lastRefresh) >= config.Interval {
			m.refresh()
		}
		return m, doPollTick()
	case tui.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resizePlot()
		return m, nil
	case tui.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			return m, tui.Quit
		}
		if m.applyCommand(msg) {
			m.forceRefresh = true
			m.refresh()
		}
		return m, nil
	}
	return m, nil
}

// applyCommand maps a keystroke to a parameter mutation and reports whether a
// recognized command fired. Every path keeps the documented floors, so the
// command surface can never produce an invalid parameter.
func (m *model) applyCommand(msg tui.KeyMsg) bool {
	switch {
	case key.Matches(msg, keys.WindowGrow):
		m.scroll.GrowWindow(1)
	case key.Matches(msg, keys.WindowGrowBig):
		m.scroll.GrowWindow(100)
	case key.Matches(msg, keys.WindowShrink):
		m.scroll.ShrinkWindow(1)
	case key.Matches(msg, keys.WindowShrinkBig):
		m.scroll.ShrinkWindow(100)
	case key.Matches(msg, keys.PanLeft):
		m.scroll.PanLeft(m.scroll.WindowSize)
	case key.Matches(msg, keys.PanLeftBig):
		m.scroll.PanLeft(100)
	case key.Matches(msg, keys.PanRight):
		m.scroll.PanRight(m.scroll.WindowSize)
	case key.Matches(msg, keys.PanRightBig):
		m.scroll.PanRight(100)
	case key.Matches(msg, keys.AvgGrow):
		m.settings.AvgWindow++
	case key.Matches(msg, keys.AvgGrowBig):
		m.settings.AvgWindow += 10
	case key.Matches(msg, keys.AvgShrink):
		m.settings.AvgWindow = max(1, m.settings.AvgWindow-1)
	case key.Matches(msg, keys.AvgShrinkBig):
		m.settings.AvgWindow = max(1, m.settings.AvgWindow-10)
	case key.Matches(msg, keys.RawThreshUp):
		m.rawDet.AdjustThreshold(0.5)
	case key.Matches(msg, keys.RawThreshDown):
		m.rawDet.AdjustThreshold(-0.5)
	case key.Matches(msg, keys.RawBaseUp):
		m.rawDet.AdjustBaselineWindow(1)
	case key.Matches(msg, keys.RawBaseDown):
		m.rawDet.AdjustBaselineWindow(-1)
	case key.Matches(msg, keys.AvgThreshUp):
		m.avgDet.AdjustThreshold(0.5)
	case key.Matches(msg, keys.AvgThreshDown):
		m.avgDet.AdjustThreshold(-0.5)
	case key.Matches(msg, keys.AvgBaseUp):
		m.avgDet.AdjustBaselineWindow(1)
	case key.Matches(msg, keys.AvgBaseDown):
		m.avgDet.AdjustBaselineWindow(-1)
	case key.Matches(msg, keys.ToggleRaw):
		m.settings.ShowRaw = !m.settings.ShowRaw
	case key.Matches(msg, keys.ToggleAvg):
		m.settings.ShowAvg = !m.settings.ShowAvg
	case key.Matches(msg, keys.ToggleRawMarks):
		m.settings.ShowRawAnomalies = !m.settings.ShowRawAnomalies
	case key.Matches(msg, keys.ToggleAvgMarks):
		m.settings.ShowAvgAnomalies = !m.settings.ShowAvgAnomalies
	case key.Matches(msg, keys.Style):
		if m.settings.Style == styleLight {
			m.settings.Style = styleDark
		} else {
			m.settings.Style = styleLight
		}
	case key.Matches(msg, keys.Anomalies):
		m.settings.AnomaliesEnabled = !m.settings.AnomaliesEnabled
	case key.Matches(msg, keys.Save):
		m.err = m.snapshotSettings().Save(config.SettingsPath)
		if m.err != nil {
			logrus.WithError(m.err).Error("could not save settings")
		} else {
			logrus.WithField("path", config.SettingsPath).Info("settings saved")
		}
	default:
		return false
	}
	return true
}

// snapshotSettings captures the live parameters into a Settings record for
// persistence.
func (m *model) snapshotSettings() Settings {
	s := m.settings
	s.WindowSize = m.scroll.WindowSize
	s.RawThreshold = m.rawDet.Threshold()
	s.RawBaseline = m.rawDet.BaselineWindow()
	s.AvgThreshold = m.avgDet.Threshold()
	s.AvgBaseline = m.avgDet.BaselineWindow()
	return s
}

// refresh runs one full cycle: re-read the source, reconcile the window,
// smooth the visible slice for the overlay and the full sequence for the
// smoothed-signal detector, evaluate both detectors, and assemble the frame.
// It runs to completion inside one Update call; there is no partial refresh.
func (m *model) refresh() {
	began := time.Now()

	series, stats := readSamples(config.InputPath)
	m.series = series
	m.metrics.observeRead(stats)

	lo, hi := m.scroll.Recompute(len(series))
	m.smoothed = runningAverage(series, m.settings.AvgWindow)

	f := frame{start: lo}
	if hi > lo {
		f.raw = series[lo:hi]
		// The overlay smooths the visible slice, restarting at the window
		// edge. The full-series average in m.smoothed feeds the detector
		// only.
		f.avg = runningAverage(f.raw, m.settings.AvgWindow)
	} else {
		f.noData = true
	}

	if m.settings.AnomaliesEnabled && len(series) > 0 {
		m.metrics.observeDetectorPass(m.rawDet.Evaluate(series))
		m.metrics.observeDetectorPass(m.avgDet.Evaluate(m.smoothed))
		f.rawMarks = m.rawDet.FlaggedWithin(lo, hi)
		f.avgMarks = m.avgDet.FlaggedWithin(lo, hi)
	}
	f.legend = legendLines(f, m.scroll, m.rawDet, m.avgDet, m.settings)

	m.frame = f
	m.metrics.observeRefresh(time.Since(began), m.forceRefresh)
	m.lastRefresh = time.Now()
	m.forceRefresh = false
}

func (m *model) resizePlot() {
	w := max(1, m.width-2)
	h := max(1, m.height-m.bottomLines()-2)
	p := plot.NewCanvas(w, h)
	p.ShowAxis = m.plot.ShowAxis
	p.NumDataPoints = m.plot.NumDataPoints
	p.LineColors = m.plot.LineColors
	m.plot = &p
}

// bottomLines is the screen space reserved below the chart: title, legend,
// the optional stats block, and the help footer.
func (m *model) bottomLines() int {
	lines := 1 + 4 + 1
	if config.StatsEnabled {
		// title + 5 metric lines
		lines += 6
	}
	if m.err != nil {
		lines++
	}
	return lines
}

func (m *model) View() string {
	th := activeTheme(m.settings.Style)

	chart := ""
	if !m.frame.noData {
		chart = renderFrame(m.plot, m.frame, th, m.settings)
	}
	if chart == "" {
		label := "no data available in " + config.InputPath
		if !m.frame.noData {
			label = "all plot elements hidden"
		}
		chart = borderFg.Render(label)
	}

	title := accentFg.Render("Moving Time Window") + "  " +
		borderFg.Render(fmt.Sprintf("%s (%d samples)", config.InputPath, len(m.series)))
	legend := borderFg.Render(strings.Join(m.frame.legend, "\n"))
	parts := []string{title, plotStyle.Render(chart), legend}

	if config.StatsEnabled {
		snap := m.metrics.snapshot()
		statsBlock := []string{
			"REFRESH STATS",
			fmt.Sprintf("samples: %d (parse errors: %d)", snap.samplesRead, snap.parseErrors),
			fmt.Sprintf("refreshes: %d (%d forced)", snap.refreshes, snap.forcedRefreshes),
			fmt.Sprintf("detector passes: %d full / %d incremental", snap.fullPasses, snap.incrPasses),
			fmt.Sprintf("refresh latency: %s last / %s avg / %s max",
				formatMetricDuration(snap.latency.last),
				formatMetricDuration(snap.latency.avg),
				formatMetricDuration(snap.latency.max)),
			fmt.Sprintf("interval: %s", config.Interval),
		}
		statsStyle := styles.NewStyle().Foreground(styles.AdaptiveColor{Light: "1", Dark: "9"})
		parts = append(parts, statsStyle.Render(strings.Join(statsBlock, "\n")))
	}

	if m.err != nil {
		errStyle := styles.NewStyle().Foreground(styles.AdaptiveColor{Light: "1", Dark: "9"})
		parts = append(parts, errStyle.Render("ERROR: "+m.err.Error()))
	}

	parts = append(parts, m.help.View(keys))
	return styles.JoinVertical(styles.Left, parts...)
}

func formatMetricDuration(d time.Duration) string {
	if d <= 0 {
		return "0.000ms"
	}
	return fmt.Sprintf("%.3fms", float64(d)/float64(time.Millisecond))
}

type keyMap struct {
	WindowGrow      key.Binding
	WindowGrowBig   key.Binding
	WindowShrink    key.Binding
	WindowShrinkBig key.Binding
	PanLeft         key.Binding
	PanLeftBig      key.Binding
	PanRight        key.Binding
	PanRightBig     key.Binding
	AvgGrow         key.Binding
	AvgGrowBig      key.Binding
	AvgShrink       key.Binding
	AvgShrinkBig    key.Binding
	RawThreshUp     key.Binding
	RawThreshDown   key.Binding
	RawBaseUp       key.Binding
	RawBaseDown     key.Binding
	AvgThreshUp     key.Binding
	AvgThreshDown   key.Binding
	AvgBaseUp       key.Binding
	AvgBaseDown     key.Binding
	ToggleRaw       key.Binding
	ToggleAvg       key.Binding
	ToggleRawMarks  key.Binding
	ToggleAvgMarks  key.Binding
	Style           key.Binding
	Anomalies       key.Binding
	Save            key.Binding
	Quit            key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.WindowGrow, k.WindowShrink, k.PanLeft, k.PanRight, k.Anomalies, k.Save, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.WindowGrow, k.WindowShrink, k.PanLeft, k.PanRight},
		{k.AvgGrow, k.AvgShrink, k.RawThreshUp, k.RawBaseUp},
		{k.AvgThreshUp, k.AvgBaseUp, k.ToggleRaw, k.ToggleAvg},
		{k.ToggleRawMarks, k.ToggleAvgMarks, k.Style, k.Anomalies},
		{k.Save, k.Quit},
	}
}

var keys = keyMap{
	WindowGrow: key.NewBinding(
		key.WithKeys("k"),
		key.WithHelp("k/K", "window +1/+100"),
	),
	WindowGrowBig: key.NewBinding(
		key.WithKeys("K"),
	),
	WindowShrink: key.NewBinding(
		key.WithKeys("j"),
		key.WithHelp("j/J", "window -1/-100"),
	),
	WindowShrinkBig: key.NewBinding(
		key.WithKeys("J"),
	),
	PanLeft: key.NewBinding(
		key.WithKeys("h"),
		key.WithHelp("h/H", "pan left"),
	),
	PanLeftBig: key.NewBinding(
		key.WithKeys("H"),
	),
	PanRight: key.NewBinding(
		key.WithKeys("l"),
		key.WithHelp("l/L", "pan right"),
	),
	PanRightBig: key.NewBinding(
		key.WithKeys("L"),
	),
	AvgGrow: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r/R", "avg window +1/+10"),
	),
	AvgGrowBig: key.NewBinding(
		key.WithKeys("R"),
	),
	AvgShrink: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f/F", "avg window -1/-10"),
	),
	AvgShrinkBig: key.NewBinding(
		key.WithKeys("F"),
	),
	RawThreshUp: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t/T", "raw thr +/-"),
	),
	RawThreshDown: key.NewBinding(
		key.WithKeys("T"),
	),
	RawBaseUp: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n/N", "raw baseline +/-"),
	),
	RawBaseDown: key.NewBinding(
		key.WithKeys("N"),
	),
	AvgThreshUp: key.NewBinding(
		key.WithKeys("u"),
		key.WithHelp("u/U", "avg thr +/-"),
	),
	AvgThreshDown: key.NewBinding(
		key.WithKeys("U"),
	),
	AvgBaseUp: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m/M", "avg baseline +/-"),
	),
	AvgBaseDown: key.NewBinding(
		key.WithKeys("M"),
	),
	ToggleRaw: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "toggle data"),
	),
	ToggleAvg: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "toggle avg"),
	),
	ToggleRawMarks: key.NewBinding(
		key.WithKeys("3"),
		key.WithHelp("3", "toggle data marks"),
	),
	ToggleAvgMarks: key.NewBinding(
		key.WithKeys("4"),
		key.WithHelp("4", "toggle avg marks"),
	),
	Style: key.NewBinding(
		key.WithKeys("b"),
		key.WithHelp("b", "background"),
	),
	Anomalies: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "anomalies on/off"),
	),
	Save: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "save settings"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q/ctrl+c", "quit"),
	),
}

func max[T ~int](a, b T) T {
	if a > b {
		return a
	}
	return b
}
