package matching

import "fmt"

const (
	msPerSecond = int64(1000)
	msPerMinute = 60 * msPerSecond
	msPerHour   = 60 * msPerMinute
	msPerDay    = 24 * msPerHour
)

// FormatDuration renders a holding period in the largest unit that keeps the
// value under the next threshold. Negative input is treated as 0.
func FormatDuration(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	switch {
	case ms < msPerMinute:
		return fmt.Sprintf("%d seconds", roundDiv(ms, msPerSecond))
	case ms < msPerHour:
		return fmt.Sprintf("%d minutes", roundDiv(ms, msPerMinute))
	case ms < msPerDay:
		return fmt.Sprintf("%d hours", roundDiv(ms, msPerHour))
	default:
		return fmt.Sprintf("%d days", roundDiv(ms, msPerDay))
	}
}

// roundDiv is ms/unit rounded half up; ms must be >= 0.
func roundDiv(ms, unit int64) int64 {
	return (ms + unit/2) / unit
}
