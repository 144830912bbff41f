// Package growth provides the sample and delta types shared by the sampler,
// history store and report renderer.
package growth

import "time"

// Sample is one disk usage snapshot for a filesystem.
type Sample struct {
	Timestamp  time.Time `json:"timestamp"`
	Filesystem string    `json:"filesystem"`
	Total      uint64    `json:"total_bytes"`
	Used       uint64    `json:"used_bytes"`
	Free       uint64    `json:"free_bytes"`
}

// UsedPercent returns used space as a percentage of total, or 0 for an empty filesystem.
func (s Sample) UsedPercent() float64 {
	if s.Total == 0 {
		return 0
	}
	return (float64(s.Used) / float64(s.Total)) * 100
}

// Delta is the change in used space between the last two samples of a history.
type Delta struct {
	Previous   Sample        `json:"previous"`
	Current    Sample        `json:"current"`
	DeltaBytes int64         `json:"delta_bytes"`
	DeltaPct   float64       `json:"delta_pct"`
	Elapsed    time.Duration `json:"elapsed"`
}

// FirstDay reports whether the delta was computed without a previous sample.
func (d Delta) FirstDay() bool {
	return d.Previous.Timestamp.IsZero()
}
