package report

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/danpilch/fsgrowth/pkg/growth"
)

type view struct {
	Title       string
	Filesystem  string
	Hostname    string
	Environment string
	Generated   string
	DeltaLine   string
	Projection  string
	Sparkline   string
	ChartCID    template.URL
	ChartFile   string
	Rows        []Row
	Samples     int
}

func newView(filesystem string, history []growth.Sample, delta growth.Delta, rows []Row, opts Options) view {
	title := "File system growth report"
	if opts.Environment != "" {
		title = opts.Environment + " " + strings.ToLower(title[:1]) + title[1:]
	}
	if opts.Hostname != "" {
		title += " for " + opts.Hostname
	}
	return view{
		Title:       title,
		Filesystem:  filesystem,
		Hostname:    opts.Hostname,
		Environment: opts.Environment,
		Generated:   opts.Now.Format("2006-01-02 15:04:05"),
		DeltaLine:   DeltaLine(delta),
		Projection:  ProjectionLine(delta),
		Sparkline:   Sparkline(history, opts.Rows),
		ChartCID:    template.URL("cid:" + ChartName),
		ChartFile:   ChartName,
		Rows:        rows,
		Samples:     len(history),
	}
}

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #222;">
<h2>{{.Title}}</h2>
<p>Filesystem <b>{{.Filesystem}}</b>, {{.Samples}} samples, generated {{.Generated}}.</p>
<p>{{.DeltaLine}}</p>
{{- if .Projection}}
<p>{{.Projection}}</p>
{{- end}}
{{- if .Sparkline}}
<p style="font-family: monospace; font-size: 18px;">{{.Sparkline}}</p>
{{- end}}
<p><img src="{{.ChartCID}}" alt="used space chart, attached as {{.ChartFile}}"></p>
<p style="color: #888; font-size: 12px;">Chart not shown? Open the attached {{.ChartFile}}.</p>
<table cellpadding="4" cellspacing="0" border="1" style="border-collapse: collapse; font-size: 13px;">
<tr style="background: #5f5fd7; color: white;"><th>Date</th><th>Total</th><th>Used</th><th>Free</th><th>Used %</th><th>Change</th></tr>
{{- range .Rows}}
<tr><td>{{.Date}}</td><td align="right">{{.Total}}</td><td align="right">{{.Used}}</td><td align="right">{{.Free}}</td><td align="right">{{.Pct}}</td><td align="right">{{.Change}}</td></tr>
{{- else}}
<tr><td colspan="6">No samples recorded.</td></tr>
{{- end}}
</table>
<p style="color: #888;">fsgrowth reporter{{if .Hostname}} on {{.Hostname}}{{end}}</p>
</body>
</html>
`))

func renderHTML(v view) (string, error) {
	var b strings.Builder
	if err := htmlTemplate.Execute(&b, v); err != nil {
		return "", err
	}
	return b.String(), nil
}

// renderText outputs the report as aligned plain text.
func renderText(v view) string {
	var b strings.Builder

	fmt.Fprintln(&b, v.Title)
	fmt.Fprintln(&b, strings.Repeat("=", len(v.Title)))
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, v.DeltaLine)
	if v.Projection != "" {
		fmt.Fprintln(&b, v.Projection)
	}
	if v.Sparkline != "" {
		fmt.Fprintln(&b, v.Sparkline)
	}
	fmt.Fprintln(&b)

	const layout = "%-16s %10s %10s %10s %6s %10s\n"
	fmt.Fprintf(&b, layout, "Date", "Total", "Used", "Free", "Pct", "Change")
	for _, r := range v.Rows {
		fmt.Fprintf(&b, layout, r.Date, r.Total, r.Used, r.Free, r.Pct, r.Change)
	}
	fmt.Fprintln(&b)
	if v.Hostname != "" {
		fmt.Fprintf(&b, "/fsgrowth reporter on %s\n", v.Hostname)
	} else {
		fmt.Fprintln(&b, "/fsgrowth reporter")
	}
	return b.String()
}
