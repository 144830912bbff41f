package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/danpilch/fsgrowth/pkg/config"
	"github.com/danpilch/fsgrowth/pkg/growth"
	"github.com/danpilch/fsgrowth/pkg/notify"
	"github.com/danpilch/fsgrowth/pkg/sampler"
)

// steppingSampler reports a fixed sequence of used values, one day apart.
type steppingSampler struct {
	used  []uint64
	calls int
}

func (s *steppingSampler) Name() string { return "stepping" }

func (s *steppingSampler) Sample(ctx context.Context, path string) (growth.Sample, error) {
	if _, err := os.Stat(path); err != nil {
		return growth.Sample{}, growth.ErrPathNotFound
	}
	used := s.used[s.calls%len(s.used)]
	ts := time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC).AddDate(0, 0, s.calls)
	s.calls++
	return growth.Sample{
		Timestamp:  ts,
		Filesystem: sampler.Canonical(path),
		Total:      1000,
		Used:       used,
		Free:       1000 - used,
	}, nil
}

type harness struct {
	stdout, stderr bytes.Buffer
	sent           int
	sendErr        error
	sampler        *steppingSampler
	config         string
	history        string
	filesystem     string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	h := &harness{
		sampler:    &steppingSampler{used: []uint64{100, 150}},
		config:     filepath.Join(dir, "fsgrowth.toml"),
		history:    filepath.Join(dir, "history.csv"),
		filesystem: t.TempDir(),
	}
	require.NoError(t, os.WriteFile(h.config, []byte(`
[smtp]
host = "smtp.example.local"
sender = "fsgrowth@example.com"
recipient = ["ops@example.com"]

[report]
environment = "TEST"
`), 0o644))
	return h
}

func (h *harness) deps() deps {
	return deps{
		stdout: &h.stdout,
		stderr: &h.stderr,
		newSampler: func(string) (sampler.Sampler, error) {
			return h.sampler, nil
		},
		newDialer: func(config.SMTPConfig, string) notify.Dialer {
			return notify.SenderDialer{Sender: gomail.SendFunc(func(string, []string, io.WriterTo) error {
				if h.sendErr != nil {
					return h.sendErr
				}
				h.sent++
				return nil
			})}
		},
		hostname: func() (string, error) { return "omd01", nil },
	}
}

func (h *harness) run(args ...string) int {
	base := []string{"-c", h.config, "-H", h.history, "-f", h.filesystem}
	return run(append(base, args...), h.deps())
}

func TestUpdateThenReport(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, growth.ExitOK, h.run("--update"), h.stderr.String())
	require.Equal(t, growth.ExitOK, h.run("--update"), h.stderr.String())
	require.Equal(t, growth.ExitOK, h.run("--report"), h.stderr.String())

	assert.Equal(t, 1, h.sent)
	assert.Contains(t, h.stdout.String(), "+50 B")
	assert.Contains(t, h.stdout.String(), "Filesystem growth:")
}

func TestUpdateAndReportTogether(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, growth.ExitOK, h.run("--update", "--report"), h.stderr.String())
	assert.Equal(t, 1, h.sampler.calls)
	assert.Equal(t, 1, h.sent)
	assert.Contains(t, h.stdout.String(), "First sample")
}

func TestQuietSuppressesConsole(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, growth.ExitOK, h.run("--update", "--report", "--quiet"))
	assert.Empty(t, h.stdout.String())
	assert.Empty(t, h.stderr.String())
	assert.Equal(t, 1, h.sent)
}

func TestDryRunWritesMessage(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, growth.ExitOK, h.run("--update", "--report", "--dry-run"), h.stderr.String())
	assert.Equal(t, 0, h.sent)
	assert.Contains(t, h.stdout.String(), "Subject: TEST file system growth report for omd01")
}

func TestLogFileWrittenAndClosed(t *testing.T) {
	h := newHarness(t)
	logFile := filepath.Join(t.TempDir(), "fsgrowth.log")
	f, err := os.OpenFile(h.config, os.O_APPEND|os.O_WRONLY, 0)
	require.NoError(t, err)
	_, err = f.WriteString("\n[logging]\nfile = \"" + logFile + "\"\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.Equal(t, growth.ExitOK, h.run("--update", "--quiet"), h.stderr.String())
	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Sample recorded")
	assert.NotContains(t, string(data), "Closing log file")
}

func TestExitCodes(t *testing.T) {
	t.Run("no mode", func(t *testing.T) {
		h := newHarness(t)
		assert.Equal(t, growth.ExitFailure, h.run())
		assert.Contains(t, h.stderr.String(), "fsgrowth:")
	})

	t.Run("missing filesystem", func(t *testing.T) {
		h := newHarness(t)
		h.filesystem = filepath.Join(h.filesystem, "gone")
		assert.Equal(t, growth.ExitSampler, h.run("--update", "--quiet"))
		assert.Contains(t, h.stderr.String(), "fsgrowth:")
	})

	t.Run("unwritable history", func(t *testing.T) {
		h := newHarness(t)
		blocker := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(blocker, nil, 0o644))
		h.history = filepath.Join(blocker, "history.csv")
		assert.Equal(t, growth.ExitHistory, h.run("--update"))
	})

	t.Run("send failure", func(t *testing.T) {
		h := newHarness(t)
		h.sendErr = errors.New("connection refused")
		assert.Equal(t, growth.ExitNotifier, h.run("--update", "--report"))
		assert.Contains(t, h.stderr.String(), "report send failed")
	})

	t.Run("missing explicit config", func(t *testing.T) {
		h := newHarness(t)
		h.config = filepath.Join(t.TempDir(), "absent.toml")
		assert.Equal(t, growth.ExitFailure, h.run("--update"))
	})
}
