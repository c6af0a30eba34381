package event_template

import (
	"context"
	"sort"
)

type RepositoryStub struct {
	templates map[int][]EventTemplate
	err       error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{templates: map[int][]EventTemplate{}}
}

func (s *RepositoryStub) Add(organizationId int, templates ...EventTemplate) {
	for _, template := range templates {
		template.OrganizationId = organizationId
		s.templates[organizationId] = append(s.templates[organizationId], template)
	}
}

// FailWith makes every following call return err.
func (s *RepositoryStub) FailWith(err error) {
	s.err = err
}

func (s *RepositoryStub) ListEventTemplates(ctx context.Context, organizationId int, activeOnly bool) ([]EventTemplate, error) {
	if s.err != nil {
		return nil, s.err
	}
	result := make([]EventTemplate, 0, len(s.templates[organizationId]))
	for _, template := range s.templates[organizationId] {
		if activeOnly && !template.IsActive {
			continue
		}
		result = append(result, template)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (s *RepositoryStub) Cleanup() {
	s.templates = map[int][]EventTemplate{}
	s.err = nil
}
