// Package stats holds the small numeric and calendar helpers shared by the
// registration and reporting code.
package stats

import (
	"math"
	"time"
)

// Week is seven days long. Bucketing ignores DST shifts.
const Week = 7 * 24 * time.Hour

// WeekStart returns Monday 00:00 of the week containing t, in t's location.
func WeekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7 // Monday = 0
	y, m, d := t.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, t.Location())
}

// WeekEnd returns the last instant of the week containing t (Sunday).
func WeekEnd(t time.Time) time.Time {
	return WeekStart(t).Add(Week - time.Nanosecond)
}

// Percentage returns round(100*num/den, places). ok is false when den is
// zero; callers must treat that as "no data", never as zero.
func Percentage(num, den, places int) (pct float64, ok bool) {
	if den == 0 {
		return 0, false
	}
	scale := math.Pow(10, float64(places))
	return math.Round(100*float64(num)/float64(den)*scale) / scale, true
}
