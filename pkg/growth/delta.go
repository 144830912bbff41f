package growth

import (
	"math"
	"time"
)

// Compute returns the delta between the last two samples of history.
// With fewer than two samples the delta is zero and only Current is set.
// History is taken in the order given; it is not sorted or deduplicated.
func Compute(history []Sample) Delta {
	switch len(history) {
	case 0:
		return Delta{}
	case 1:
		return Delta{Current: history[0]}
	}

	prev := history[len(history)-2]
	cur := history[len(history)-1]

	deltaBytes := int64(cur.Used) - int64(prev.Used)

	var deltaPct float64
	if prev.Used != 0 {
		deltaPct = (float64(deltaBytes) / float64(prev.Used)) * 100
	} else if cur.Used != 0 {
		deltaPct = 100
	}

	return Delta{
		Previous:   prev,
		Current:    cur,
		DeltaBytes: deltaBytes,
		DeltaPct:   deltaPct,
		Elapsed:    cur.Timestamp.Sub(prev.Timestamp),
	}
}

// GrowthPerDay normalizes the delta to bytes per 24 hours.
func (d Delta) GrowthPerDay() float64 {
	if d.Elapsed <= 0 {
		return 0
	}
	return float64(d.DeltaBytes) / d.Elapsed.Hours() * 24
}

// ProjectionHorizonDays bounds projections to about a century.
const ProjectionHorizonDays = 36500

// DaysUntilFull projects how many days remain until the current free space
// is consumed at the observed rate. ok is false when usage is not growing
// or the filesystem would not fill within ProjectionHorizonDays.
func DaysUntilFull(d Delta) (days float64, ok bool) {
	perDay := d.GrowthPerDay()
	if perDay <= 0 {
		return 0, false
	}
	days = float64(d.Current.Free) / perDay
	if math.IsInf(days, 0) || math.IsNaN(days) || days > ProjectionHorizonDays {
		return 0, false
	}
	return days, true
}

// FullAt returns the projected time at which the filesystem runs out of space.
func FullAt(d Delta) (time.Time, bool) {
	days, ok := DaysUntilFull(d)
	if !ok {
		return time.Time{}, false
	}
	return d.Current.Timestamp.Add(time.Duration(days * float64(24*time.Hour))), true
}
