package sampler

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/shirou/gopsutil/v3/disk"

	"github.com/danpilch/fsgrowth/pkg/growth"
)

// Psutil samples filesystem capacity through gopsutil.
type Psutil struct {
	Now func() time.Time
}

// NewPsutil creates a new gopsutil sampler.
func NewPsutil() *Psutil {
	return &Psutil{Now: time.Now}
}

// Name returns the sampler name.
func (p *Psutil) Name() string {
	return SourceGopsutil
}

// Sample reads capacity for the filesystem containing path.
func (p *Psutil) Sample(ctx context.Context, path string) (growth.Sample, error) {
	abs, err := resolve(path)
	if err != nil {
		return growth.Sample{}, err
	}

	usage, err := disk.UsageWithContext(ctx, abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return growth.Sample{}, fmt.Errorf("%s: %w", abs, growth.ErrPathNotFound)
		}
		return growth.Sample{}, fmt.Errorf("disk usage %s: %w", abs, err)
	}

	return newSample(abs, p.Now(), Usage{
		Total: usage.Total,
		Used:  usage.Used,
		Free:  usage.Free,
	})
}
