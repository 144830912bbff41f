package report

import (
	"strings"

	"github.com/danpilch/fsgrowth/pkg/growth"
)

// sparkline block characters from lowest to highest
var sparkBlocks = []rune{
	'\u2581', // ▁
	'\u2582', // ▂
	'\u2583', // ▃
	'\u2584', // ▄
	'\u2585', // ▅
	'\u2586', // ▆
	'\u2587', // ▇
	'\u2588', // █
}

// Sparkline returns a Unicode sparkline of used bytes for the last maxLen samples.
func Sparkline(history []growth.Sample, maxLen int) string {
	if maxLen > 0 && len(history) > maxLen {
		history = history[len(history)-maxLen:]
	}
	values := make([]float64, len(history))
	for i, s := range history {
		values[i] = float64(s.Used)
	}
	return renderSparkline(values)
}

func renderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	// Find min and max
	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	var b strings.Builder
	rng := max - min
	for _, v := range values {
		idx := 0
		if rng > 0 {
			idx = int((v - min) / rng * float64(len(sparkBlocks)-1))
		}
		if idx >= len(sparkBlocks) {
			idx = len(sparkBlocks) - 1
		}
		if idx < 0 {
			idx = 0
		}
		b.WriteRune(sparkBlocks[idx])
	}

	return b.String()
}
