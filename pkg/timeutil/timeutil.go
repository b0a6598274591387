// Package timeutil provides timezone utilities for Seoul time (UTC+9).
// The academy is located in Seoul, so attendance and schedule arithmetic
// is done in local academy time. Korea has no DST, so the offset is
// constant year-round. No external dependencies - uses only standard library.
package timeutil

import (
	"time"
)

// SeoulTZ is the Seoul timezone (UTC+9, no DST).
var SeoulTZ = time.FixedZone("Asia/Seoul", 9*60*60)

// Now returns the current time in Seoul timezone.
func Now() time.Time {
	return time.Now().In(SeoulTZ)
}

// ToSeoul converts a time to Seoul timezone.
func ToSeoul(t time.Time) time.Time {
	return t.In(SeoulTZ)
}

// ToUTC converts a time to UTC.
func ToUTC(t time.Time) time.Time {
	return t.UTC()
}

// Date creates a time in Seoul timezone with the given date.
func Date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, SeoulTZ)
}

// DateTime creates a time in Seoul timezone with the given date and time.
func DateTime(year, month, day, hour, min, sec int) time.Time {
	return time.Date(year, time.Month(month), day, hour, min, sec, 0, SeoulTZ)
}

// StartOfDay returns the start of the day (00:00:00) in Seoul timezone.
func StartOfDay(t time.Time) time.Time {
	local := ToSeoul(t)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, SeoulTZ)
}

// EndOfDay returns the end of the day (23:59:59.999999999) in Seoul timezone.
func EndOfDay(t time.Time) time.Time {
	local := ToSeoul(t)
	return time.Date(local.Year(), local.Month(), local.Day(), 23, 59, 59, 999999999, SeoulTZ)
}

// StartOfWeek returns the start of the week (Monday 00:00:00) in Seoul
// timezone. The calendar projection anchors every lecture schedule to this
// date, so the projection shifts forward every week.
func StartOfWeek(t time.Time) time.Time {
	local := ToSeoul(t)
	weekday := int(local.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	daysToSubtract := weekday - 1 // Monday = 1
	return StartOfDay(local.AddDate(0, 0, -daysToSubtract))
}

// EndOfWeek returns the end of the week (Sunday 23:59:59) in Seoul timezone.
func EndOfWeek(t time.Time) time.Time {
	start := StartOfWeek(t)
	return EndOfDay(start.AddDate(0, 0, 6))
}

// AfterClock reports whether t is strictly after hour:min on its own day,
// in Seoul timezone. Used for the late check-in cutoff.
func AfterClock(t time.Time, hour, min int) bool {
	local := ToSeoul(t)
	cutoff := time.Date(local.Year(), local.Month(), local.Day(), hour, min, 0, 0, SeoulTZ)
	return local.After(cutoff)
}

// WeekKey returns a stable cache key fragment for the week containing t,
// e.g. "2026-08-24" (that week's Monday).
func WeekKey(t time.Time) string {
	return StartOfWeek(t).Format("2006-01-02")
}
