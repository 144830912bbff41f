package sampler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sys/unix"

	"github.com/danpilch/fsgrowth/pkg/growth"
)

// Statfs samples filesystem capacity with the statfs syscall.
// This is cross-platform (works on both Linux and macOS).
type Statfs struct {
	Now func() time.Time
}

// NewStatfs creates a new statfs sampler.
func NewStatfs() *Statfs {
	return &Statfs{Now: time.Now}
}

// Name returns the sampler name.
func (s *Statfs) Name() string {
	return SourceStatfs
}

// Sample reads capacity for the filesystem containing path.
func (s *Statfs) Sample(ctx context.Context, path string) (growth.Sample, error) {
	if err := ctx.Err(); err != nil {
		return growth.Sample{}, err
	}
	abs, err := resolve(path)
	if err != nil {
		return growth.Sample{}, err
	}
	u, err := StatfsUsage(abs)
	if err != nil {
		return growth.Sample{}, err
	}
	return newSample(abs, s.Now(), u)
}

// StatfsUsage returns filesystem capacity metrics using statfs.
// Used counts blocks not free to root; Free is what an unprivileged user can still allocate.
func StatfsUsage(path string) (Usage, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		if errors.Is(err, unix.ENOENT) {
			return Usage{}, fmt.Errorf("%s: %w", path, growth.ErrPathNotFound)
		}
		return Usage{}, fmt.Errorf("statfs %s: %w", path, err)
	}

	blockSize := uint64(stat.Bsize)
	total := stat.Blocks * blockSize
	free := stat.Bavail * blockSize
	used := total - (stat.Bfree * blockSize)

	return Usage{
		Total: total,
		Used:  used,
		Free:  free,
	}, nil
}
