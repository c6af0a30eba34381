package recurring_rule

import (
	"context"
	"sort"
)

type RepositoryStub struct {
	rules map[int][]RecurringRule
	err   error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{rules: map[int][]RecurringRule{}}
}

func (s *RepositoryStub) Add(organizationId int, rules ...RecurringRule) {
	for _, rule := range rules {
		rule.OrganizationId = organizationId
		s.rules[organizationId] = append(s.rules[organizationId], rule)
	}
}

// FailWith makes every following call return err.
func (s *RepositoryStub) FailWith(err error) {
	s.err = err
}

func (s *RepositoryStub) ListRecurringRules(ctx context.Context, organizationId int, activeOnly bool) ([]RecurringRule, error) {
	if s.err != nil {
		return nil, s.err
	}
	result := make([]RecurringRule, 0, len(s.rules[organizationId]))
	for _, rule := range s.rules[organizationId] {
		if activeOnly && !rule.IsActive {
			continue
		}
		result = append(result, rule)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (s *RepositoryStub) Cleanup() {
	s.rules = map[int][]RecurringRule{}
	s.err = nil
}
