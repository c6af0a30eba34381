package recurring_rule

import (
	"context"
	"fmt"

	"github.com/yearplan/yearplan/pkg/organization"
)

type Service interface {
	ListRules(ctx context.Context, activeOnly bool) ([]RecurringRule, error)
}

type ServiceImpl struct {
	reader Reader
}

func NewService(reader Reader) *ServiceImpl {
	return &ServiceImpl{reader: reader}
}

func (s *ServiceImpl) ListRules(ctx context.Context, activeOnly bool) ([]RecurringRule, error) {
	organizationId, err := organization.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current organization: %w", err)
	}
	return s.reader.ListRecurringRules(ctx, organizationId, activeOnly)
}
