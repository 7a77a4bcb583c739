package utils

import "strconv"

// ParseLimit parses a positive integer query parameter, falling back to def
// for empty, malformed or non-positive input, and clamping at max.
func ParseLimit(raw string, def, max int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	if max > 0 && n > max {
		return max
	}
	return n
}

// ShortID is the visitor id prefix used in human-readable activity messages.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// IsValidInterval reports whether interval names a ClickHouse toStartOf<Interval> function.
func IsValidInterval(interval string) bool {
	switch interval {
	case "Minute", "Hour", "Day", "Week", "Month", "Quarter", "Year":
		return true
	default:
		return false
	}
}
