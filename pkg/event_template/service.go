package event_template

import (
	"context"
	"fmt"

	"github.com/yearplan/yearplan/pkg/organization"
)

type Service interface {
	ListTemplates(ctx context.Context, activeOnly bool) ([]EventTemplate, error)
}

type ServiceImpl struct {
	reader Reader
}

func NewService(reader Reader) *ServiceImpl {
	return &ServiceImpl{reader: reader}
}

func (s *ServiceImpl) ListTemplates(ctx context.Context, activeOnly bool) ([]EventTemplate, error) {
	organizationId, err := organization.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current organization: %w", err)
	}
	return s.reader.ListEventTemplates(ctx, organizationId, activeOnly)
}
