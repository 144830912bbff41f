// Package runner wires the sampler, history store, renderer and notifier
// into the update and report modes of fsgrowth.
package runner

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/danpilch/fsgrowth/pkg/growth"
	"github.com/danpilch/fsgrowth/pkg/history"
	"github.com/danpilch/fsgrowth/pkg/notify"
	"github.com/danpilch/fsgrowth/pkg/report"
	"github.com/danpilch/fsgrowth/pkg/sampler"
)

// Notifier delivers a rendered report.
type Notifier interface {
	Send(ctx context.Context, r *report.Report, meta notify.Meta) error
}

// Options controls a run.
type Options struct {
	RequireMountpoint bool
	Report            report.Options
	// Console receives the history table after a report; nil disables it.
	Console io.Writer
}

// Runner executes update and report modes for one filesystem.
type Runner struct {
	sampler  sampler.Sampler
	store    *history.Store
	notifier Notifier
	logger   *logrus.Logger
	opts     Options
}

// New creates a new runner.
func New(s sampler.Sampler, store *history.Store, n Notifier, logger *logrus.Logger, opts Options) *Runner {
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}
	return &Runner{
		sampler:  s,
		store:    store,
		notifier: n,
		logger:   logger,
		opts:     opts,
	}
}

// Run executes the selected modes in order: update first, then report.
func (r *Runner) Run(ctx context.Context, filesystem string, doUpdate, doReport bool) error {
	if doUpdate {
		if _, err := r.Update(ctx, filesystem); err != nil {
			return err
		}
	}
	if doReport {
		if _, err := r.Report(ctx, filesystem); err != nil {
			return err
		}
	}
	return nil
}

// Update samples filesystem and appends the sample to the history file.
func (r *Runner) Update(ctx context.Context, filesystem string) (growth.Sample, error) {
	log := r.logger.WithFields(logrus.Fields{
		"filesystem": filesystem,
		"sampler":    r.sampler.Name(),
	})

	if r.opts.RequireMountpoint {
		m, err := sampler.RequireMountpoint(ctx, filesystem)
		if err != nil {
			return growth.Sample{}, err
		}
		log = log.WithFields(logrus.Fields{"device": m.Device, "fstype": m.Fstype})
	} else if m, err := sampler.MountFor(ctx, filesystem); err == nil {
		log = log.WithFields(logrus.Fields{"device": m.Device, "mountpoint": m.Mountpoint})
	} else {
		log.WithError(err).Debug("Mount lookup failed")
	}

	s, err := r.sampler.Sample(ctx, filesystem)
	if err != nil {
		return growth.Sample{}, err
	}

	if err := r.store.Append(ctx, s); err != nil {
		return growth.Sample{}, err
	}

	log.WithFields(logrus.Fields{
		"total": s.Total,
		"used":  s.Used,
		"free":  s.Free,
		"file":  r.store.Path(),
	}).Info("Sample recorded")
	return s, nil
}

// Report renders the history of filesystem and sends it.
func (r *Runner) Report(ctx context.Context, filesystem string) (*report.Report, error) {
	fs := sampler.Canonical(filesystem)

	samples, err := r.store.ReadAll(ctx, fs)
	if err != nil {
		return nil, err
	}
	delta := growth.Compute(samples)

	log := r.logger.WithFields(logrus.Fields{
		"filesystem": fs,
		"samples":    len(samples),
		"delta":      delta.DeltaBytes,
	})
	if len(samples) == 0 {
		log.Warn("No history for filesystem, sending empty report")
	}

	rep, err := report.Render(fs, samples, delta, r.opts.Report)
	if err != nil {
		return nil, err
	}

	if r.opts.Console != nil {
		report.Console(r.opts.Console, fs, samples, delta, r.opts.Report.Rows)
	}

	meta := notify.Meta{
		Environment: r.opts.Report.Environment,
		Hostname:    r.opts.Report.Hostname,
	}
	if err := r.notifier.Send(ctx, rep, meta); err != nil {
		return rep, err
	}

	log.Debug("Report complete")
	return rep, nil
}
