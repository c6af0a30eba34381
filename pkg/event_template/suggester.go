package event_template

import (
	"time"

	"github.com/yearplan/yearplan/pkg/calendar_math"
)

// DefaultYearStartMonth is the month operating years start in unless configured otherwise.
const DefaultYearStartMonth = time.July

// PlacementSuggester proposes a date for a mandatory template from the month it is usually held in.
type PlacementSuggester struct {
	yearStartMonth time.Month
}

func NewPlacementSuggester(yearStartMonth time.Month) PlacementSuggester {
	if yearStartMonth < time.January || yearStartMonth > time.December {
		yearStartMonth = DefaultYearStartMonth
	}
	return PlacementSuggester{yearStartMonth: yearStartMonth}
}

// Suggest returns the first weekday-like day of defaultMonth within the operating year
// [yearStart, yearEnd]. Months from the operating year's first month onwards belong to the calendar
// year the operating year starts in; earlier months belong to the following calendar year.
// The second return value is false when no month is given or the date falls outside the window.
func (s PlacementSuggester) Suggest(defaultMonth *time.Month, yearStart, yearEnd time.Time) (time.Time, bool) {
	if defaultMonth == nil {
		return time.Time{}, false
	}
	month := *defaultMonth
	if month < time.January || month > time.December {
		return time.Time{}, false
	}

	year := yearStart.Year()
	if month < s.firstMonth() {
		year++
	}

	suggestion := calendar_math.FirstBusinessDayLikeDay(year, month)
	if !calendar_math.InRange(suggestion, calendar_math.Truncate(yearStart), calendar_math.Truncate(yearEnd)) {
		return time.Time{}, false
	}
	return suggestion, true
}

func (s PlacementSuggester) firstMonth() time.Month {
	if s.yearStartMonth == 0 {
		return DefaultYearStartMonth
	}
	return s.yearStartMonth
}

// SuggestFor is Suggest for a template. Optional templates never get a suggestion.
func (s PlacementSuggester) SuggestFor(template EventTemplate, yearStart, yearEnd time.Time) (time.Time, bool) {
	if !template.IsMandatory {
		return time.Time{}, false
	}
	return s.Suggest(template.DefaultMonth, yearStart, yearEnd)
}
