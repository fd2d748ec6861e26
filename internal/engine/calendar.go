package engine

import "time"

// calendarDate truncates t to its date in loc, expressed as UTC midnight so
// date differences are unaffected by DST.
func calendarDate(t time.Time, loc *time.Location) time.Time {
	l := t.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween counts calendar-date boundaries from -> to, never negative.
func daysBetween(from, to time.Time, loc *time.Location) int {
	d := int(calendarDate(to, loc).Sub(calendarDate(from, loc)).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// startOfDay returns the instant the local day containing t began, shifted
// by offsetDays.
func startOfDay(t time.Time, loc *time.Location, offsetDays int) time.Time {
	l := t.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day()+offsetDays, 0, 0, 0, 0, loc)
}
