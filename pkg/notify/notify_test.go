package notify

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/danpilch/fsgrowth/pkg/config"
	"github.com/danpilch/fsgrowth/pkg/growth"
	"github.com/danpilch/fsgrowth/pkg/report"
)

type captured struct {
	from string
	to   []string
	body bytes.Buffer
}

func fakeDialer(c *captured, fail error) Dialer {
	return SenderDialer{Sender: gomail.SendFunc(func(from string, to []string, msg io.WriterTo) error {
		if fail != nil {
			return fail
		}
		c.from = from
		c.to = to
		_, err := msg.WriteTo(&c.body)
		return err
	})}
}

func testReport(t *testing.T) *report.Report {
	t.Helper()
	now := time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)
	h := []growth.Sample{
		{Timestamp: now.AddDate(0, 0, -1), Filesystem: "/data", Total: 1000, Used: 100, Free: 900},
		{Timestamp: now, Filesystem: "/data", Total: 1000, Used: 150, Free: 850},
	}
	r, err := report.Render("/data", h, growth.Compute(h), report.Options{Hostname: "omd01", Now: now})
	require.NoError(t, err)
	return r
}

func testConfig() config.SMTPConfig {
	cfg := config.Default().SMTP
	cfg.Sender = "fsgrowth@example.com"
	cfg.Recipient = []string{"ops@example.com", "storage@example.com"}
	return cfg
}

func TestSend(t *testing.T) {
	var c captured
	n, err := NewWithDialer(testConfig(), fakeDialer(&c, nil), nil)
	require.NoError(t, err)

	require.NoError(t, n.Send(context.Background(), testReport(t), Meta{Environment: "SEB", Hostname: "omd01"}))

	assert.Equal(t, "fsgrowth@example.com", c.from)
	assert.Equal(t, []string{"ops@example.com", "storage@example.com"}, c.to)

	msg := c.body.String()
	assert.Contains(t, msg, "Subject: SEB file system growth report for omd01")
	assert.Contains(t, msg, "multipart/related")
	assert.Contains(t, msg, "Content-ID: <usage.svg>")
	assert.Contains(t, msg, "text/html")
	assert.Contains(t, msg, "text/plain")
	assert.Contains(t, msg, `filename="usage.svg"`)
}

func TestSendFailureWrapsErrSend(t *testing.T) {
	var c captured
	n, err := NewWithDialer(testConfig(), fakeDialer(&c, errors.New("connection refused")), nil)
	require.NoError(t, err)

	err = n.Send(context.Background(), testReport(t), Meta{Hostname: "omd01"})
	require.Error(t, err)
	assert.ErrorIs(t, err, growth.ErrSend)
	assert.Equal(t, growth.ExitNotifier, growth.ExitCode(err))
}

func TestSendUnreachableServer(t *testing.T) {
	cfg := testConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = 1
	n, err := New(cfg, "omd01", nil)
	require.NoError(t, err)

	err = n.Send(context.Background(), testReport(t), Meta{})
	assert.ErrorIs(t, err, growth.ErrSend)
}

func TestSubject(t *testing.T) {
	cfg := testConfig()
	n, err := NewWithDialer(cfg, nil, nil)
	require.NoError(t, err)

	s, err := n.Subject(testReport(t), Meta{Hostname: "omd01"})
	require.NoError(t, err)
	assert.Equal(t, "file system growth report for omd01", s)

	cfg.SubjectTemplate = "[{{.Date}}] {{.Filesystem}}"
	n, err = NewWithDialer(cfg, nil, nil)
	require.NoError(t, err)
	s, err = n.Subject(testReport(t), Meta{})
	require.NoError(t, err)
	assert.Equal(t, "[2026-03-02] /data", s)
}

func TestWriteTo(t *testing.T) {
	n, err := NewWithDialer(testConfig(), nil, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, n.WriteTo(&buf, testReport(t), Meta{Hostname: "omd01"}))
	assert.Contains(t, buf.String(), "To: ops@example.com, storage@example.com")
}

func TestPrinter(t *testing.T) {
	var c captured
	n, err := NewWithDialer(testConfig(), fakeDialer(&c, nil), nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	p := Printer{Notifier: n, Out: &buf}
	require.NoError(t, p.Send(context.Background(), testReport(t), Meta{Hostname: "omd01"}))

	assert.Contains(t, buf.String(), "Content-ID: <usage.svg>")
	assert.Empty(t, c.from, "printer must not dial")
}
