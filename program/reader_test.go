package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDataFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadSamples(t *testing.T) {
	path := writeDataFile(t, `# header comment
1.5

2.5
not-a-number
   # indented comment
-3
  42.25
`)
	samples, stats := readSamples(path)
	assert.Equal(t, []float64{1.5, 2.5, -3, 42.25}, samples)
	assert.Equal(t, 4, stats.samples)
	assert.Equal(t, 1, stats.malformed)
	assert.False(t, stats.missing)
}

func TestReadSamplesMissingFile(t *testing.T) {
	samples, stats := readSamples(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Empty(t, samples)
	assert.True(t, stats.missing)
}

func TestReadSamplesEmptyFile(t *testing.T) {
	samples, stats := readSamples(writeDataFile(t, ""))
	assert.Empty(t, samples)
	assert.False(t, stats.missing)
	assert.Zero(t, stats.malformed)
}

func TestReadSamplesMalformedLinesDoNotAbort(t *testing.T) {
	path := writeDataFile(t, "1\nbogus\n2\nalso bogus\n3\n")
	samples, stats := readSamples(path)
	assert.Equal(t, []float64{1, 2, 3}, samples)
	assert.Equal(t, 2, stats.malformed)
}
