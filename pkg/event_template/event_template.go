package event_template

import (
	"errors"
	"fmt"
	"time"

	"github.com/yearplan/yearplan/internal/validation"
)

var ErrInvalidTemplate = errors.New("invalid event template")

type EventTemplate struct {
	Id              int
	OrganizationId  int
	Name            string `validate:"required,max=200"`
	CategoryId      *int
	DefaultDuration time.Duration `validate:"min=0"`
	// DefaultInvitationText is copied onto events placed from the template.
	DefaultInvitationText *string
	Description           string
	IsMandatory           bool
	// DefaultMonth is the month a mandatory template is usually held in. It drives the placement
	// suggestion and is ignored for optional templates.
	DefaultMonth *time.Month `validate:"omitempty,min=1,max=12"`
	IsActive     bool
}

func Validate(template EventTemplate) error {
	if err := validation.Struct(template); err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidTemplate, template.Name, err)
	}
	return nil
}
