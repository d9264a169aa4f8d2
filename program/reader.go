package main

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

type readStats struct {
	lines     int
	samples   int
	malformed int
	missing   bool
}

// readSamples reads the sample sequence from path, one float per line. Blank
// lines and lines whose first non-space character is '#' are skipped.
// Malformed lines are logged and skipped; the rest of the sequence stays
// usable. A missing or unreadable file yields an empty sequence, never an
// error: the caller renders a "no data" state instead.
func readSamples(path string) ([]float64, readStats) {
	var stats readStats
	f, err := os.Open(path)
	if err != nil {
		stats.missing = true
		logrus.WithError(err).WithField("path", path).Warn("cannot open data file")
		return nil, stats
	}
	defer func() { _ = f.Close() }()

	samples := make([]float64, 0, 1024)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		stats.lines++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			stats.malformed++
			logrus.WithFields(logrus.Fields{
				"path": path,
				"line": line,
			}).Warn("could not convert line")
			continue
		}
		samples = append(samples, v)
	}
	if err := scanner.Err(); err != nil {
		logrus.WithError(err).WithField("path", path).Warn("error while reading data file")
	}
	stats.samples = len(samples)
	return samples, stats
}
