// Package sampler reads total, used and free bytes for a filesystem path.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/danpilch/fsgrowth/pkg/growth"
)

// Source names accepted by New.
const (
	SourceStatfs   = "statfs"
	SourceGopsutil = "gopsutil"
)

// Sampler is the interface that all disk usage sources implement.
type Sampler interface {
	// Name returns the name of the source (e.g., "statfs").
	Name() string

	// Sample reads the current usage of the filesystem containing path.
	Sample(ctx context.Context, path string) (growth.Sample, error)
}

// New returns the sampler registered under source.
func New(source string) (Sampler, error) {
	switch source {
	case "", SourceStatfs:
		return NewStatfs(), nil
	case SourceGopsutil:
		return NewPsutil(), nil
	default:
		return nil, fmt.Errorf("unknown sampler source %q", source)
	}
}

// Usage is the raw capacity reading of a filesystem.
type Usage struct {
	Total uint64
	Used  uint64
	Free  uint64
}

// Canonical returns the absolute, cleaned form of path under which samples
// are recorded. The path does not need to exist.
func Canonical(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// resolve checks that path exists and returns its canonical form.
func resolve(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("empty path: %w", growth.ErrPathNotFound)
	}
	abs := Canonical(path)
	if _, err := os.Stat(abs); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%s: %w", abs, growth.ErrPathNotFound)
		}
		return "", fmt.Errorf("cannot stat %s: %w", abs, err)
	}
	return abs, nil
}

// newSample builds a validated sample from a usage reading.
func newSample(path string, now time.Time, u Usage) (growth.Sample, error) {
	s := growth.Sample{
		Timestamp:  now,
		Filesystem: path,
		Total:      u.Total,
		Used:       u.Used,
		Free:       u.Free,
	}
	if err := Validate(s); err != nil {
		return growth.Sample{}, err
	}
	return s, nil
}

// Validate checks a sample against physical constraints.
func Validate(s growth.Sample) error {
	if s.Total == 0 {
		return fmt.Errorf("%s reports zero capacity: %w", s.Filesystem, growth.ErrInvalidSample)
	}
	if s.Used > s.Total {
		return fmt.Errorf("%s used %d exceeds total %d: %w", s.Filesystem, s.Used, s.Total, growth.ErrInvalidSample)
	}
	if s.Free > s.Total {
		return fmt.Errorf("%s free %d exceeds total %d: %w", s.Filesystem, s.Free, s.Total, growth.ErrInvalidSample)
	}
	return nil
}
