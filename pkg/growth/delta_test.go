package growth

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)

func sampleAt(days int, used, free uint64) Sample {
	return Sample{
		Timestamp:  day0.AddDate(0, 0, days),
		Filesystem: "/data",
		Total:      1000,
		Used:       used,
		Free:       free,
	}
}

func TestComputeEmpty(t *testing.T) {
	d := Compute(nil)
	assert.Equal(t, int64(0), d.DeltaBytes)
	assert.Equal(t, 0.0, d.DeltaPct)
	assert.True(t, d.FirstDay())
}

func TestComputeFirstDay(t *testing.T) {
	s := sampleAt(0, 100, 900)
	d := Compute([]Sample{s})

	assert.Equal(t, int64(0), d.DeltaBytes)
	assert.Equal(t, 0.0, d.DeltaPct)
	assert.Equal(t, time.Duration(0), d.Elapsed)
	assert.Equal(t, s, d.Current)
	assert.True(t, d.FirstDay())
}

func TestComputeTwoRows(t *testing.T) {
	d := Compute([]Sample{sampleAt(0, 100, 900), sampleAt(1, 150, 850)})

	assert.Equal(t, int64(50), d.DeltaBytes)
	assert.InDelta(t, 50.0, d.DeltaPct, 1e-9)
	assert.Equal(t, 24*time.Hour, d.Elapsed)
	assert.False(t, d.FirstDay())
}

func TestComputeUsesLastTwo(t *testing.T) {
	history := []Sample{
		sampleAt(0, 10, 990),
		sampleAt(1, 400, 600),
		sampleAt(2, 300, 700),
	}
	d := Compute(history)

	assert.Equal(t, int64(-100), d.DeltaBytes)
	assert.InDelta(t, -25.0, d.DeltaPct, 1e-9)
	assert.Equal(t, history[1], d.Previous)
	assert.Equal(t, history[2], d.Current)
}

func TestComputeFromZero(t *testing.T) {
	d := Compute([]Sample{sampleAt(0, 0, 1000), sampleAt(1, 20, 980)})
	assert.Equal(t, 100.0, d.DeltaPct)

	d = Compute([]Sample{sampleAt(0, 0, 1000), sampleAt(1, 0, 1000)})
	assert.Equal(t, 0.0, d.DeltaPct)
}

func TestDaysUntilFull(t *testing.T) {
	tests := []struct {
		name    string
		history []Sample
		days    float64
		ok      bool
	}{
		{"growing", []Sample{sampleAt(0, 100, 900), sampleAt(1, 200, 800)}, 8, true},
		{"growing over two days", []Sample{sampleAt(0, 100, 900), sampleAt(2, 300, 700)}, 7, true},
		{"shrinking", []Sample{sampleAt(0, 200, 800), sampleAt(1, 100, 900)}, 0, false},
		{"flat", []Sample{sampleAt(0, 200, 800), sampleAt(1, 200, 800)}, 0, false},
		{"first day", []Sample{sampleAt(0, 200, 800)}, 0, false},
		{"beyond horizon", []Sample{sampleAt(0, 100, 3<<40), sampleAt(1, 4196, 3<<40-4096)}, 0, false},
		{"at horizon", []Sample{sampleAt(0, 100, 36500), sampleAt(1, 101, 36500)}, 36500, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days, ok := DaysUntilFull(Compute(tt.history))
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.days, days, 1e-9)
		})
	}
}

func TestFullAt(t *testing.T) {
	d := Compute([]Sample{sampleAt(0, 100, 900), sampleAt(1, 200, 800)})
	at, ok := FullAt(d)
	require.True(t, ok)
	assert.Equal(t, day0.AddDate(0, 0, 9), at)
}

func TestFullAtSlowGrowth(t *testing.T) {
	for _, free := range []uint64{1 << 30, 1 << 40, 3 << 40, 1 << 62} {
		d := Compute([]Sample{sampleAt(0, 1000, free), sampleAt(1, 1000+4096, free)})
		at, ok := FullAt(d)
		if !ok {
			continue
		}
		assert.False(t, at.Before(d.Current.Timestamp), "free=%d projected %s", free, at)
		assert.True(t, at.Before(d.Current.Timestamp.AddDate(101, 0, 0)), "free=%d projected %s", free, at)
	}

	d := Compute([]Sample{sampleAt(0, 1000, 3<<40), sampleAt(1, 1000+4096, 3<<40-4096)})
	_, ok := FullAt(d)
	assert.False(t, ok)
}

func TestUsedPercent(t *testing.T) {
	assert.Equal(t, 25.0, Sample{Total: 400, Used: 100}.UsedPercent())
	assert.Equal(t, 0.0, Sample{}.UsedPercent())
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{nil, ExitOK},
		{fmt.Errorf("stat /nope: %w", ErrPathNotFound), ExitSampler},
		{fmt.Errorf("sanity: %w", ErrInvalidSample), ExitSampler},
		{fmt.Errorf("append: %w", ErrIO), ExitHistory},
		{fmt.Errorf("dial: %w", ErrSend), ExitNotifier},
		{fmt.Errorf("bad flag"), ExitFailure},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, ExitCode(tt.err), "%v", tt.err)
	}
}
