// Package report renders disk usage history as an SVG chart, an HTML email
// body, a plain-text alternative and a console table.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/danpilch/fsgrowth/pkg/growth"
)

// ChartName is the file name the chart is embedded and attached under.
const ChartName = "usage.svg"

// Options controls report rendering.
type Options struct {
	Environment string
	Hostname    string
	Rows        int
	Chart       ChartOptions
	Now         time.Time
}

// Report holds the rendered artifacts for one filesystem.
type Report struct {
	Filesystem string
	Generated  time.Time
	Delta      growth.Delta
	Chart      []byte
	HTML       string
	Text       string
}

// Row is one formatted history line, newest first in reports.
type Row struct {
	Date   string
	Total  string
	Used   string
	Free   string
	Pct    string
	Change string
}

// Render builds the chart, HTML and text report for history.
func Render(filesystem string, history []growth.Sample, delta growth.Delta, opts Options) (*Report, error) {
	if opts.Rows <= 0 {
		opts.Rows = 14
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.Chart.Title == "" {
		opts.Chart.Title = fmt.Sprintf("Used space on %s", filesystem)
	}

	var chart bytes.Buffer
	if err := GenerateChart(history, &chart, opts.Chart); err != nil {
		return nil, fmt.Errorf("cannot render chart: %w", err)
	}

	rows := Rows(history, opts.Rows)
	view := newView(filesystem, history, delta, rows, opts)

	htmlBody, err := renderHTML(view)
	if err != nil {
		return nil, fmt.Errorf("cannot render html: %w", err)
	}

	return &Report{
		Filesystem: filesystem,
		Generated:  opts.Now,
		Delta:      delta,
		Chart:      chart.Bytes(),
		HTML:       htmlBody,
		Text:       renderText(view),
	}, nil
}

// Rows formats the last n samples newest first. Change is measured against
// the sample preceding each one in file order.
func Rows(history []growth.Sample, n int) []Row {
	first := 0
	if n > 0 && len(history) > n {
		first = len(history) - n
	}

	rows := make([]Row, 0, len(history)-first)
	for i := len(history) - 1; i >= first; i-- {
		s := history[i]
		change := "-"
		if i > 0 {
			change = FormatSigned(int64(s.Used) - int64(history[i-1].Used))
		}
		rows = append(rows, Row{
			Date:   s.Timestamp.Format("2006-01-02 15:04"),
			Total:  FormatBytes(s.Total),
			Used:   FormatBytes(s.Used),
			Free:   FormatBytes(s.Free),
			Pct:    fmt.Sprintf("%.0f%%", s.UsedPercent()),
			Change: change,
		})
	}
	return rows
}
