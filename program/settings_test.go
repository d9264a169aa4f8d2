package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettingsMissingFileYieldsDefaults(t *testing.T) {
	s, err := loadSettings(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, defaultSettings(), s)
}

func TestSettingsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	s := defaultSettings()
	s.WindowSize = 42
	s.AvgWindow = 7
	s.RawThreshold = 2.5
	s.RawBaseline = 15
	s.AvgThreshold = 4
	s.AvgBaseline = 30
	s.ShowAvg = false
	s.ShowAvgAnomalies = false
	s.Style = styleLight
	s.AnomaliesEnabled = false
	require.NoError(t, s.Save(path))

	loaded, err := loadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, s, loaded)
}

func TestLoadSettingsClampsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := `window_size: -3
avg_window: 0
raw_threshold: -1
raw_baseline_window: 1
avg_threshold: 0
avg_baseline_window: -7
style: neon
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s, err := loadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, 1, s.WindowSize)
	assert.Equal(t, 1, s.AvgWindow)
	assert.Equal(t, minThreshold, s.RawThreshold)
	assert.Equal(t, minBaselineWindow, s.RawBaseline)
	assert.Equal(t, minThreshold, s.AvgThreshold)
	assert.Equal(t, minBaselineWindow, s.AvgBaseline)
	assert.Equal(t, styleDark, s.Style)
}

func TestLoadSettingsBrokenFileFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml at all"), 0o644))

	s, err := loadSettings(path)
	assert.Error(t, err)
	assert.Equal(t, defaultSettings(), s)
}

func TestSaveOverwritesWholeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("window_size: 999\nleftover_key: true\n"), 0o644))

	require.NoError(t, defaultSettings().Save(path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "leftover_key")

	loaded, err := loadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, defaultSettings(), loaded)
}
