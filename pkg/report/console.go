package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/danpilch/fsgrowth/pkg/growth"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	growStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	flatStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
)

// Console outputs the recent history and delta as a styled table.
func Console(w io.Writer, filesystem string, history []growth.Sample, delta growth.Delta, rows int) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Filesystem growth: %s", filesystem)))
	fmt.Fprintln(w, dimStyle.Render(strings.Repeat("═", 60)))

	data := Rows(history, rows)
	cells := make([][]string, len(data))
	for i, r := range data {
		cells[i] = []string{r.Date, r.Total, r.Used, r.Free, r.Pct, r.Change}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("DATE", "TOTAL", "USED", "FREE", "PCT", "CHANGE").
		Rows(cells...)

	fmt.Fprintln(w, t)
	fmt.Fprintln(w)

	line := DeltaLine(delta)
	if delta.DeltaBytes > 0 {
		fmt.Fprintln(w, growStyle.Render(line))
	} else {
		fmt.Fprintln(w, flatStyle.Render(line))
	}
	if p := ProjectionLine(delta); p != "" {
		fmt.Fprintln(w, dimStyle.Render(p))
	}
	if s := Sparkline(history, rows); s != "" {
		fmt.Fprintf(w, "Trend: %s\n", s)
	}
}
