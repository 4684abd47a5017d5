// Package timespan provides half-open time interval arithmetic used by
// the booking engine: overlap detection and calendar-week bucketing.
package timespan

import "time"

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Intervals that share only a boundary point
// do not overlap, so back-to-back bookings are legal. Callers must
// ensure aStart < aEnd and bStart < bEnd.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// WeekOf returns the Monday 00:00:00 of the calendar week containing t
// and the following Monday 00:00:00 as the exclusive end. The result is
// identical for every instant from Monday through Sunday of the same
// week. Arithmetic is civil-date based in t's location; no timezone
// conversion is performed.
func WeekOf(t time.Time) (start, end time.Time) {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())

	// time.Weekday puts Sunday at 0; shift so Monday is day 1 of the week.
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7
	}

	start = day.AddDate(0, 0, 1-weekday)
	end = start.AddDate(0, 0, 7)
	return start, end
}
