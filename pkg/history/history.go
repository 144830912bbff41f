// Package history persists disk usage samples to an append-only CSV file.
package history

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/danpilch/fsgrowth/pkg/growth"
)

// Header is the first row of every history file.
var Header = []string{"timestamp", "filesystem", "total_bytes", "used_bytes", "free_bytes"}

// Store is a CSV history file on disk.
type Store struct {
	path string
}

// Open returns a store backed by the file at path. The file is created on first append.
func Open(path string) *Store {
	return &Store{path: path}
}

// Path returns the history file location.
func (s *Store) Path() string {
	return s.path
}

// Append writes one sample as a new row, creating the file with a header if needed.
// The file is held under an exclusive lock for the duration of the write.
func (s *Store) Append(ctx context.Context, sample growth.Sample) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("cannot create history directory: %v: %w", err, growth.ErrIO)
		}
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("cannot open history %s: %v: %w", s.path, err, growth.ErrIO)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("cannot close history %s: %v: %w", s.path, cerr, growth.ErrIO)
		}
	}()

	unlock, err := lockExclusive(f)
	if err != nil {
		return fmt.Errorf("cannot lock history %s: %v: %w", s.path, err, growth.ErrIO)
	}
	defer unlock()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("cannot stat history %s: %v: %w", s.path, err, growth.ErrIO)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(Header); err != nil {
			return fmt.Errorf("cannot write history header: %v: %w", err, growth.ErrIO)
		}
	}
	if err := w.Write(encode(sample)); err != nil {
		return fmt.Errorf("cannot write history row: %v: %w", err, growth.ErrIO)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("cannot write history row: %v: %w", err, growth.ErrIO)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("cannot sync history %s: %v: %w", s.path, err, growth.ErrIO)
	}
	return nil
}

// ReadAll returns the samples recorded for filesystem in file order.
// A missing file yields an empty history.
func (s *Store) ReadAll(ctx context.Context, filesystem string) ([]growth.Sample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot open history %s: %v: %w", s.path, err, growth.ErrIO)
	}
	defer f.Close()

	unlock, err := lockShared(f)
	if err != nil {
		return nil, fmt.Errorf("cannot lock history %s: %v: %w", s.path, err, growth.ErrIO)
	}
	defer unlock()

	return decodeAll(f, s.path, filepath.Clean(filesystem))
}

func decodeAll(r io.Reader, name, filesystem string) ([]growth.Sample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)
	cr.ReuseRecord = true

	var samples []growth.Sample
	line := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%s: %v: %w", name, err, growth.ErrIO)
		}
		if line == 1 && record[0] == Header[0] {
			continue
		}
		if filepath.Clean(record[1]) != filesystem {
			continue
		}
		sample, err := decode(record)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %v: %w", name, line, err, growth.ErrIO)
		}
		samples = append(samples, sample)
	}
	return samples, nil
}

func encode(s growth.Sample) []string {
	return []string{
		s.Timestamp.Format(time.RFC3339),
		s.Filesystem,
		strconv.FormatUint(s.Total, 10),
		strconv.FormatUint(s.Used, 10),
		strconv.FormatUint(s.Free, 10),
	}
}

func decode(record []string) (growth.Sample, error) {
	ts, err := time.Parse(time.RFC3339, record[0])
	if err != nil {
		return growth.Sample{}, fmt.Errorf("bad timestamp %q", record[0])
	}

	var sizes [3]uint64
	for i := range sizes {
		v, err := strconv.ParseUint(record[2+i], 10, 64)
		if err != nil {
			return growth.Sample{}, fmt.Errorf("bad %s %q", Header[2+i], record[2+i])
		}
		sizes[i] = v
	}

	return growth.Sample{
		Timestamp:  ts,
		Filesystem: record[1],
		Total:      sizes[0],
		Used:       sizes[1],
		Free:       sizes[2],
	}, nil
}
