package recurring_rule

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
	"github.com/yearplan/yearplan/pkg/calendar_math"
)

var rruleWeekdays = [...]rrule.Weekday{
	time.Sunday:    rrule.SU,
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
}

// Expand returns every date in [start, end] on which the rule fires, in ascending order.
// start and end are treated as calendar dates. A window without matches yields an empty slice.
func Expand(rule RecurringRule, start, end time.Time) ([]time.Time, error) {
	if err := Validate(rule); err != nil {
		return nil, err
	}
	start = calendar_math.Truncate(start)
	end = calendar_math.Truncate(end)
	if end.Before(start) {
		return []time.Time{}, nil
	}

	r, err := rrule.NewRRule(toROption(rule, start))
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidRule, rule.Name, err)
	}

	occurrences := r.Between(start, end, true)
	dates := make([]time.Time, 0, len(occurrences))
	for _, occurrence := range occurrences {
		date := calendar_math.Truncate(occurrence)
		if !calendar_math.InRange(date, start, end) {
			continue
		}
		if len(dates) > 0 && !date.After(dates[len(dates)-1]) {
			continue
		}
		dates = append(dates, date)
	}
	return dates, nil
}

func toROption(rule RecurringRule, start time.Time) rrule.ROption {
	weekday := rruleWeekdays[rule.DayOfWeek]
	option := rrule.ROption{Dtstart: start}
	switch rule.Frequency {
	case Weekly:
		option.Freq = rrule.WEEKLY
		option.Byweekday = []rrule.Weekday{weekday}
	case Monthly:
		option.Freq = rrule.MONTHLY
		option.Byweekday = []rrule.Weekday{weekday.Nth(weekOfMonth(rule))}
	}
	return option
}

func weekOfMonth(rule RecurringRule) int {
	if rule.WeekOfMonth == nil {
		return 1
	}
	return *rule.WeekOfMonth
}
