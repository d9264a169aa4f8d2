package main

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	styleDark  = "dark"
	styleLight = "light"
)

// Settings is the persisted snapshot of every tunable parameter. It is not
// authoritative state, it is a serialization of it: the live values are owned
// by the model and its components and snapshotted into a Settings on save.
type Settings struct {
	WindowSize int `yaml:"window_size"`
	AvgWindow  int `yaml:"avg_window"`

	RawThreshold float64 `yaml:"raw_threshold"`
	RawBaseline  int     `yaml:"raw_baseline_window"`
	AvgThreshold float64 `yaml:"avg_threshold"`
	AvgBaseline  int     `yaml:"avg_baseline_window"`

	ShowRaw          bool `yaml:"show_raw"`
	ShowAvg          bool `yaml:"show_avg"`
	ShowRawAnomalies bool `yaml:"show_raw_anomalies"`
	ShowAvgAnomalies bool `yaml:"show_avg_anomalies"`

	Style            string `yaml:"style"`
	AnomaliesEnabled bool   `yaml:"anomalies_enabled"`
}

func defaultSettings() Settings {
	return Settings{
		WindowSize:       10,
		AvgWindow:        5,
		RawThreshold:     3,
		RawBaseline:      20,
		AvgThreshold:     3,
		AvgBaseline:      20,
		ShowRaw:          true,
		ShowAvg:          true,
		ShowRawAnomalies: true,
		ShowAvgAnomalies: true,
		Style:            styleDark,
		AnomaliesEnabled: true,
	}
}

// Clamp forces every field back into its documented range. The command
// surface can never produce invalid values, but a hand-edited settings file
// can, so loaded settings get the same floors the keys enforce.
func (s *Settings) Clamp() {
	if s.WindowSize < 1 {
		s.WindowSize = 1
	}
	if s.AvgWindow < 1 {
		s.AvgWindow = 1
	}
	s.RawThreshold = clampThreshold(s.RawThreshold)
	s.RawBaseline = clampBaselineWindow(s.RawBaseline)
	s.AvgThreshold = clampThreshold(s.AvgThreshold)
	s.AvgBaseline = clampBaselineWindow(s.AvgBaseline)
	if s.Style != styleLight {
		s.Style = styleDark
	}
}

// loadSettings reads the settings file at path. A missing file is not an
// error: it yields the built-in defaults. A file that fails to parse also
// falls back to defaults, with the parse error returned for reporting.
func loadSettings(path string) (Settings, error) {
	s := defaultSettings()
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, err
	}
	if err := yaml.Unmarshal(b, &s); err != nil {
		return defaultSettings(), err
	}
	s.Clamp()
	return s, nil
}

// Save writes the whole settings file, replacing any previous content.
func (s Settings) Save(path string) error {
	b, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
