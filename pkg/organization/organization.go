package organization

import (
	"context"
	"errors"
	"strconv"

	log "github.com/sirupsen/logrus"
)

type contextKey string

const OrganizationKey contextKey = "organization"

// Header carries the organization a request acts on. It is set by the routing layer in front of the
// planner.
const Header = "X-Organization-Id"

var ErrNoOrganization = errors.New("organization not found")
var ErrInvalidOrganizationId = errors.New("invalid organization id")

// CurrentId retrieves the current organization's ID from the context. Returns ErrNoOrganization if the
// ID is not present in the context.
func CurrentId(ctx context.Context) (int, error) {
	id, ok := ctx.Value(OrganizationKey).(int)
	if !ok {
		log.Trace("organization not found in context")
		return 0, ErrNoOrganization
	}
	return id, nil
}

func WithId(ctx context.Context, organizationId int) context.Context {
	return context.WithValue(ctx, OrganizationKey, organizationId)
}

// ParseId parses the value of the organization header.
func ParseId(value string) (int, error) {
	id, err := strconv.Atoi(value)
	if err != nil || id <= 0 {
		return 0, ErrInvalidOrganizationId
	}
	return id, nil
}
