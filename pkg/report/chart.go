package report

import (
	"fmt"
	"html"
	"io"
	"strings"
	"time"

	"github.com/danpilch/fsgrowth/pkg/growth"
)

// ChartOptions configures the usage chart SVG output.
type ChartOptions struct {
	Title  string
	Width  int
	Height int
}

// DefaultChartOptions returns sensible defaults.
func DefaultChartOptions() ChartOptions {
	return ChartOptions{
		Title:  "Used space",
		Width:  720,
		Height: 240,
	}
}

const (
	marginLeft   = 80
	marginRight  = 20
	marginTop    = 40
	marginBottom = 40
	gridLines    = 4
)

// GenerateChart renders used bytes over time as an SVG line chart.
// An empty history renders a placeholder chart.
func GenerateChart(history []growth.Sample, svg io.Writer, opts ChartOptions) error {
	def := DefaultChartOptions()
	if opts.Width <= marginLeft+marginRight {
		opts.Width = def.Width
	}
	if opts.Height <= marginTop+marginBottom {
		opts.Height = def.Height
	}

	fmt.Fprintf(svg, `<?xml version="1.0" standalone="no"?>
<svg version="1.1" width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">
<style>
  text { font-family: sans-serif; font-size: 11px; fill: #333; }
</style>
<rect x="0" y="0" width="%d" height="%d" fill="white"/>
<text x="%d" y="22" text-anchor="middle" style="font-size:15px; font-weight:bold;">%s</text>
`,
		opts.Width, opts.Height,
		opts.Width, opts.Height,
		opts.Width/2, html.EscapeString(opts.Title))

	plotW := opts.Width - marginLeft - marginRight
	plotH := opts.Height - marginTop - marginBottom

	fmt.Fprintf(svg, `<rect x="%d" y="%d" width="%d" height="%d" fill="none" stroke="#ccc"/>
`, marginLeft, marginTop, plotW, plotH)

	if len(history) == 0 {
		fmt.Fprintf(svg, `<text x="%d" y="%d" text-anchor="middle" style="fill:#999;">no samples yet</text>
</svg>
`, marginLeft+plotW/2, marginTop+plotH/2)
		return nil
	}

	lo, hi := usedRange(history)
	tMin, tMax := timeRange(history)

	// Horizontal grid with byte labels
	for i := 0; i <= gridLines; i++ {
		y := marginTop + plotH - i*plotH/gridLines
		v := lo + (hi-lo)*uint64(i)/gridLines
		fmt.Fprintf(svg, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="#eee"/>
<text x="%d" y="%d" text-anchor="end">%s</text>
`, marginLeft, y, marginLeft+plotW, y, marginLeft-6, y+4, FormatBytes(v))
	}

	fmt.Fprintf(svg, `<text x="%d" y="%d" text-anchor="start">%s</text>
`, marginLeft, opts.Height-marginBottom/2, tMin.Format("2006-01-02"))
	if !tMax.Equal(tMin) {
		fmt.Fprintf(svg, `<text x="%d" y="%d" text-anchor="end">%s</text>
`, marginLeft+plotW, opts.Height-marginBottom/2, tMax.Format("2006-01-02"))
	}

	xOf := func(i int, ts time.Time) float64 {
		span := tMax.Sub(tMin)
		if span <= 0 {
			if len(history) == 1 {
				return float64(marginLeft) + float64(plotW)/2
			}
			return float64(marginLeft) + float64(plotW)*float64(i)/float64(len(history)-1)
		}
		return float64(marginLeft) + float64(plotW)*float64(ts.Sub(tMin))/float64(span)
	}
	yOf := func(v uint64) float64 {
		return float64(marginTop+plotH) - float64(plotH)*float64(v-lo)/float64(hi-lo)
	}

	points := make([]string, len(history))
	for i, s := range history {
		points[i] = fmt.Sprintf("%.1f,%.1f", xOf(i, s.Timestamp), yOf(s.Used))
	}
	if len(points) > 1 {
		fmt.Fprintf(svg, `<polyline fill="none" stroke="rgb(200,80,30)" stroke-width="2" points="%s"/>
`, strings.Join(points, " "))
	}

	for i, s := range history {
		fmt.Fprintf(svg, `<circle cx="%.1f" cy="%.1f" r="3" fill="rgb(200,80,30)"><title>%s: %s used (%.1f%%)</title></circle>
`, xOf(i, s.Timestamp), yOf(s.Used), s.Timestamp.Format("2006-01-02 15:04"),
			html.EscapeString(FormatBytes(s.Used)), s.UsedPercent())
	}

	fmt.Fprintln(svg, "</svg>")
	return nil
}

// usedRange returns a non-empty value range covering all used bytes.
func usedRange(history []growth.Sample) (lo, hi uint64) {
	lo, hi = history[0].Used, history[0].Used
	for _, s := range history {
		if s.Used < lo {
			lo = s.Used
		}
		if s.Used > hi {
			hi = s.Used
		}
	}
	if lo == hi {
		lo = 0
		if hi == 0 {
			hi = 1
		}
	}
	return lo, hi
}

func timeRange(history []growth.Sample) (tMin, tMax time.Time) {
	tMin, tMax = history[0].Timestamp, history[0].Timestamp
	for _, s := range history {
		if s.Timestamp.Before(tMin) {
			tMin = s.Timestamp
		}
		if s.Timestamp.After(tMax) {
			tMax = s.Timestamp
		}
	}
	return tMin, tMax
}
