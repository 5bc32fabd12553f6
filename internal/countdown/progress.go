package countdown

import "fmt"

// StepProgress returns the percentage of a step of the given length that
// has elapsed, clamped to [0, 100]. A zero-length step reports 0.
func StepProgress(stepTime, remaining int) float64 {
	if stepTime == 0 {
		return 0
	}
	p := float64(stepTime-remaining) / float64(stepTime) * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// TotalProgress returns elapsed as a percentage of the recipe's declared
// total time, capped at 100. Elapsed time is never negative, so there is
// no lower clamp. A zero declared time reports 0.
func TotalProgress(elapsed, declared int) float64 {
	if declared == 0 {
		return 0
	}
	p := float64(elapsed) / float64(declared) * 100
	if p > 100 {
		return 100
	}
	return p
}

// FormatClock renders whole seconds as zero-padded MM:SS.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
