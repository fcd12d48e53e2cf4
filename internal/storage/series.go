package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgnsrekt/tv_panesync/internal/series"
)

// SeriesLoader reads point files from a data directory.
type SeriesLoader struct {
	baseDir string
}

// NewSeriesLoader creates a loader rooted at baseDir.
func NewSeriesLoader(baseDir string) *SeriesLoader {
	return &SeriesLoader{baseDir: baseDir}
}

// Resolve joins name onto the data directory. Names that would escape it
// are rejected.
func (l *SeriesLoader) Resolve(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("empty data file name")
	}
	clean := filepath.Clean(name)
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("data file %q is outside the data directory", name)
	}
	return filepath.Join(l.baseDir, clean), nil
}

// Load decodes a JSON array of points and checks that times increase.
func (l *SeriesLoader) Load(name string) ([]series.Point, error) {
	path, err := l.Resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("series %s: %w", name, err)
	}
	points, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("series %s: %w", name, err)
	}
	slog.Debug("series loaded", "file", path, "points", len(points))
	return points, nil
}

// Decode parses and validates inline points.
func Decode(data []byte) ([]series.Point, error) {
	points, err := series.DecodePoints(data)
	if err != nil {
		return nil, err
	}
	if err := series.Validate(points); err != nil {
		return nil, err
	}
	return points, nil
}
