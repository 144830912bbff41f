package report

import (
	"fmt"
	"time"

	"github.com/danpilch/fsgrowth/pkg/growth"
)

// FormatBytes formats bytes into human-readable format.
func FormatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}

// FormatSigned formats a byte delta with an explicit sign.
func FormatSigned(b int64) string {
	switch {
	case b > 0:
		return "+" + FormatBytes(uint64(b))
	case b < 0:
		return "-" + FormatBytes(uint64(-b))
	default:
		return "0 B"
	}
}

// FormatElapsed renders a sample interval in days and hours.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		return "-" + FormatElapsed(-d)
	}
	hours := int(d.Round(time.Hour).Hours())
	if hours < 24 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dd %dh", hours/24, hours%24)
}

// DeltaLine summarizes a delta in one sentence.
func DeltaLine(d growth.Delta) string {
	if d.Current.Timestamp.IsZero() {
		return "No samples recorded yet."
	}
	if d.FirstDay() {
		return fmt.Sprintf("First sample for %s: %s used of %s, no previous sample to compare.",
			d.Current.Filesystem, FormatBytes(d.Current.Used), FormatBytes(d.Current.Total))
	}
	return fmt.Sprintf("Used space on %s changed by %s (%+.2f%%) over %s, now %s of %s (%.1f%%).",
		d.Current.Filesystem, FormatSigned(d.DeltaBytes), d.DeltaPct, FormatElapsed(d.Elapsed),
		FormatBytes(d.Current.Used), FormatBytes(d.Current.Total), d.Current.UsedPercent())
}

// ProjectionLine describes when the filesystem fills up at the current rate.
func ProjectionLine(d growth.Delta) string {
	days, ok := growth.DaysUntilFull(d)
	if !ok {
		if d.GrowthPerDay() > 0 {
			return fmt.Sprintf("At %s per day the filesystem is not full within %d years.",
				FormatBytes(uint64(d.GrowthPerDay())), growth.ProjectionHorizonDays/365)
		}
		return ""
	}
	at, _ := growth.FullAt(d)
	return fmt.Sprintf("At %s per day the filesystem is full in %.0f days (around %s).",
		FormatBytes(uint64(d.GrowthPerDay())), days, at.Format("2006-01-02"))
}
