// Package calendar_math contains the date arithmetic shared by rule expansion and template placement.
//
// All dates are naive calendar dates: a time.Time at midnight UTC. No time zone conversion ever happens,
// so a date created here compares equal to any other date built with Date for the same day.
package calendar_math

import "time"

// Date builds a naive calendar date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Truncate drops the clock part of t and keeps its wall-clock calendar day.
func Truncate(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

// DaysIn returns the number of days of the given month.
func DaysIn(year int, month time.Month) int {
	// day 0 of the next month normalises to the last day of this one
	return Date(year, month+1, 0).Day()
}

// NthWeekdayOfMonth returns the n-th occurrence (1-4) of weekday in the month. The second return value
// is false when the month has fewer than n occurrences or n is out of range.
func NthWeekdayOfMonth(year int, month time.Month, weekday time.Weekday, n int) (time.Time, bool) {
	if n < 1 || n > 4 {
		return time.Time{}, false
	}
	count := 0
	last := DaysIn(year, month)
	for day := 1; day <= last; day++ {
		d := Date(year, month, day)
		if d.Weekday() != weekday {
			continue
		}
		count++
		if count == n {
			return d, true
		}
	}
	return time.Time{}, false
}

// LastWeekdayOfMonth returns the last occurrence of weekday in the month. Every month contains each
// weekday at least four times, so it always exists.
func LastWeekdayOfMonth(year int, month time.Month, weekday time.Weekday) time.Time {
	for day := DaysIn(year, month); day >= 1; day-- {
		d := Date(year, month, day)
		if d.Weekday() == weekday {
			return d
		}
	}
	// unreachable for valid weekdays
	return Date(year, month, DaysIn(year, month))
}

// FirstBusinessDayLikeDay returns the first day of the month, moved to Monday when it falls on a weekend.
// Holidays are not taken into account.
func FirstBusinessDayLikeDay(year int, month time.Month) time.Time {
	d := Date(year, month, 1)
	switch d.Weekday() {
	case time.Sunday:
		return AddDays(d, 1)
	case time.Saturday:
		return AddDays(d, 2)
	}
	return d
}

func AddDays(d time.Time, days int) time.Time {
	return d.AddDate(0, 0, days)
}

func AddWeeks(d time.Time, weeks int) time.Time {
	return d.AddDate(0, 0, 7*weeks)
}

// InRange reports whether d lies within [start, end], both ends inclusive.
func InRange(d, start, end time.Time) bool {
	return !d.Before(start) && !d.After(end)
}

// Month identifies a calendar month.
type Month struct {
	Year  int
	Month time.Month
}

// MonthsBetween lists every month from the one containing start through the one containing end.
func MonthsBetween(start, end time.Time) []Month {
	if end.Before(start) {
		return nil
	}
	var months []Month
	cursor := Date(start.Year(), start.Month(), 1)
	last := Date(end.Year(), end.Month(), 1)
	for !cursor.After(last) {
		months = append(months, Month{Year: cursor.Year(), Month: cursor.Month()})
		cursor = cursor.AddDate(0, 1, 0)
	}
	return months
}
