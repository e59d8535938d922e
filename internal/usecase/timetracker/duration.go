package timetracker

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatDuration renders seconds as HH:MM:SS. Hours are not capped at 23.
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// ParseDuration converts HH:MM:SS back to seconds. It reports false unless
// the input has exactly three non-negative integer parts.
func ParseDuration(d string) (int64, bool) {
	parts := strings.Split(d, ":")
	if len(parts) != 3 {
		return 0, false
	}

	var total int64
	for i, weight := range []int64{3600, 60, 1} {
		n, err := strconv.ParseInt(parts[i], 10, 64)
		if err != nil || n < 0 {
			return 0, false
		}
		total += n * weight
	}
	return total, true
}
