// Package notify emails rendered growth reports over SMTP.
package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"github.com/danpilch/fsgrowth/pkg/config"
	"github.com/danpilch/fsgrowth/pkg/growth"
	"github.com/danpilch/fsgrowth/pkg/report"
)

// Dialer delivers finished messages.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Meta carries the deployment details shown in the subject line.
type Meta struct {
	Environment string
	Hostname    string
}

// Notifier sends one email per report.
type Notifier struct {
	cfg     config.SMTPConfig
	subject *template.Template
	dialer  Dialer
	logger  *logrus.Logger
}

// New creates a notifier that dials the configured SMTP server.
func New(cfg config.SMTPConfig, hostname string, logger *logrus.Logger) (*Notifier, error) {
	return NewWithDialer(cfg, NewDialer(cfg, hostname), logger)
}

// NewDialer returns an SMTP dialer for cfg, greeting the server as hostname.
func NewDialer(cfg config.SMTPConfig, hostname string) Dialer {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	if hostname != "" {
		d.LocalName = hostname
	}
	if cfg.InsecureTLS {
		d.TLSConfig = &tls.Config{InsecureSkipVerify: true, ServerName: cfg.Host}
	}
	return d
}

// NewWithDialer creates a notifier around an existing dialer.
func NewWithDialer(cfg config.SMTPConfig, d Dialer, logger *logrus.Logger) (*Notifier, error) {
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}
	subject, err := template.New("subject").Parse(cfg.SubjectTemplate)
	if err != nil {
		return nil, fmt.Errorf("subject template: %w", err)
	}
	return &Notifier{
		cfg:     cfg,
		subject: subject,
		dialer:  d,
		logger:  logger,
	}, nil
}

// SenderDialer adapts a gomail.Sender, such as gomail.SendFunc, to Dialer.
type SenderDialer struct {
	Sender gomail.Sender
}

// DialAndSend sends the messages through the wrapped sender.
func (s SenderDialer) DialAndSend(m ...*gomail.Message) error {
	return gomail.Send(s.Sender, m...)
}

// Subject renders the subject line for r.
func (n *Notifier) Subject(r *report.Report, meta Meta) (string, error) {
	var b bytes.Buffer
	err := n.subject.Execute(&b, struct {
		Environment string
		Hostname    string
		Filesystem  string
		Date        string
	}{
		Environment: meta.Environment,
		Hostname:    meta.Hostname,
		Filesystem:  r.Filesystem,
		Date:        r.Generated.Format("2006-01-02"),
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(b.String()), nil
}

// Message builds the MIME message: text and HTML alternatives with the chart
// embedded for the HTML part and attached for clients that block inline images.
func (n *Notifier) Message(r *report.Report, meta Meta) (*gomail.Message, error) {
	subject, err := n.Subject(r, meta)
	if err != nil {
		return nil, fmt.Errorf("render subject: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.Sender)
	m.SetHeader("To", n.cfg.Recipient...)
	m.SetHeader("Subject", subject)
	m.SetDateHeader("Date", r.Generated)

	m.SetBody("text/plain", r.Text)
	m.AddAlternative("text/html", r.HTML)

	chart := gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := w.Write(r.Chart)
		return err
	})
	m.Embed(report.ChartName, chart)
	m.Attach(report.ChartName, chart)
	return m, nil
}

// Send delivers the report. There is no retry; failures wrap growth.ErrSend.
func (n *Notifier) Send(ctx context.Context, r *report.Report, meta Meta) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m, err := n.Message(r, meta)
	if err != nil {
		return err
	}

	n.logger.WithFields(logrus.Fields{
		"smtp_host":  n.cfg.Host,
		"smtp_port":  n.cfg.Port,
		"recipients": len(n.cfg.Recipient),
	}).Debug("Sending report")

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp %s:%d: %v: %w", n.cfg.Host, n.cfg.Port, err, growth.ErrSend)
	}

	n.logger.WithField("filesystem", r.Filesystem).Info("Report sent")
	return nil
}

// WriteTo writes the message that Send would deliver, for dry runs.
func (n *Notifier) WriteTo(w io.Writer, r *report.Report, meta Meta) error {
	m, err := n.Message(r, meta)
	if err != nil {
		return err
	}
	_, err = m.WriteTo(w)
	return err
}

// Printer writes messages instead of sending them.
type Printer struct {
	Notifier *Notifier
	Out      io.Writer
}

// Send writes the message for r to Out.
func (p Printer) Send(ctx context.Context, r *report.Report, meta Meta) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.Notifier.WriteTo(p.Out, r, meta)
}
