package recurring_rule

import (
	"errors"
	"fmt"
	"time"

	"github.com/yearplan/yearplan/internal/validation"
)

var ErrInvalidRule = errors.New("invalid recurring rule")

type Frequency string

const (
	Weekly  Frequency = "WEEKLY"
	Monthly Frequency = "MONTHLY"
)

// LastWeek selects the last occurrence of the weekday in the month.
const LastWeek = -1

type RecurringRule struct {
	Id             int
	OrganizationId int
	Name           string       `validate:"required,max=200"`
	Frequency      Frequency    `validate:"oneof=WEEKLY MONTHLY"`
	DayOfWeek      time.Weekday `validate:"min=0,max=6"`
	// WeekOfMonth is only read for monthly rules. nil means the first occurrence.
	WeekOfMonth  *int `validate:"omitempty,oneof=1 2 3 4 -1"`
	CategoryId   *int
	DefaultTitle string
	Description  string
	IsActive     bool
}

// Title is the title given to events generated from the rule.
func (r RecurringRule) Title() string {
	if r.DefaultTitle != "" {
		return r.DefaultTitle
	}
	return r.Name
}

// Validate rejects rules the expander cannot interpret. Values are never coerced.
func Validate(rule RecurringRule) error {
	if err := validation.Struct(rule); err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidRule, rule.Name, err)
	}
	return nil
}
