package shoutout

import "unicode/utf16"

// DayIndex maps a date string onto [0, n). The same string and n always give the
// same index, so a given day picks the same slot of every batch across restarts.
func DayIndex(date string, n int) int {
	if n <= 0 {
		return 0
	}

	var hash int32
	for _, unit := range utf16.Encode([]rune(date)) {
		hash = (hash << 5) - hash + int32(unit)
	}

	// widen before negating so MinInt32 stays positive
	abs := int64(hash)
	if abs < 0 {
		abs = -abs
	}
	return int(abs % int64(n))
}
