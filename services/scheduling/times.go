package scheduling

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NormalizeClock validates a wall-clock string and returns it as
// zero-padded "HH:MM". Unpadded input ("9:00") is accepted and padded;
// anything else is rejected. Padding matters because interval
// comparisons are lexicographic: "9:00" > "10:00" as raw strings.
func NormalizeClock(v string) (string, error) {
	parts := strings.Split(strings.TrimSpace(v), ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time %q: want HH:MM", v)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return "", fmt.Errorf("invalid hour in %q", v)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || len(parts[1]) != 2 || m < 0 || m > 59 {
		return "", fmt.Errorf("invalid minute in %q", v)
	}
	return fmt.Sprintf("%02d:%02d", h, m), nil
}

// NormalizeDate validates a calendar date and returns it as
// "YYYY-MM-DD".
func NormalizeDate(v string) (string, error) {
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(v), time.Local)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: want YYYY-MM-DD", v)
	}
	return t.Format("2006-01-02"), nil
}

// Weekday returns the weekday name ("Monday"...) for a normalized
// date, used to match recurring slots.
func Weekday(date string) string {
	t, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return ""
	}
	return t.Weekday().String()
}

// Overlaps reports whether the half-open intervals [s1,e1) and [s2,e2)
// on the same date overlap. Back-to-back intervals (e1 == s2) do not.
// All arguments must already be normalized "HH:MM".
func Overlaps(s1, e1, s2, e2 string) bool {
	return s1 < e2 && e1 > s2
}
