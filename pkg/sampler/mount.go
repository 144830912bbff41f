package sampler

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v3/disk"

	"github.com/danpilch/fsgrowth/pkg/growth"
)

// Mount describes the mounted filesystem a path lives on.
type Mount struct {
	Device     string
	Mountpoint string
	Fstype     string
}

// MountFor returns the mount containing path, using the longest matching mount point.
func MountFor(ctx context.Context, path string) (Mount, error) {
	abs, err := resolve(path)
	if err != nil {
		return Mount{}, err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	partitions, err := disk.PartitionsWithContext(ctx, true)
	if err != nil {
		return Mount{}, fmt.Errorf("cannot list mounts: %w", err)
	}

	mounts := make([]Mount, 0, len(partitions))
	for _, p := range partitions {
		mounts = append(mounts, Mount{
			Device:     p.Device,
			Mountpoint: p.Mountpoint,
			Fstype:     p.Fstype,
		})
	}

	m, ok := longestMatch(abs, mounts)
	if !ok {
		return Mount{}, fmt.Errorf("%s is not on any mounted filesystem: %w", abs, growth.ErrPathNotFound)
	}
	return m, nil
}

// RequireMountpoint fails unless path is itself a mount point.
func RequireMountpoint(ctx context.Context, path string) (Mount, error) {
	m, err := MountFor(ctx, path)
	if err != nil {
		return Mount{}, err
	}
	abs, _ := resolve(path)
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	if filepath.Clean(m.Mountpoint) != abs {
		return m, fmt.Errorf("%s is not mounted (lives on %s): %w", abs, m.Mountpoint, growth.ErrPathNotFound)
	}
	return m, nil
}

func longestMatch(path string, mounts []Mount) (Mount, bool) {
	var (
		best  Mount
		found bool
	)
	for _, m := range mounts {
		mp := filepath.Clean(m.Mountpoint)
		if !within(path, mp) {
			continue
		}
		if !found || len(mp) > len(filepath.Clean(best.Mountpoint)) {
			best = m
			found = true
		}
	}
	return best, found
}

func within(path, mountpoint string) bool {
	if mountpoint == "/" || path == mountpoint {
		return true
	}
	return strings.HasPrefix(path, mountpoint+string(filepath.Separator))
}
