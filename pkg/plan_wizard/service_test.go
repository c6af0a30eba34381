package plan_wizard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yearplan/yearplan/internal/utils"
	"github.com/yearplan/yearplan/pkg/event_template"
	"github.com/yearplan/yearplan/pkg/organization"
	"github.com/yearplan/yearplan/pkg/recurring_rule"
)

const organizationId = 12

var ctx = organization.WithId(context.Background(), organizationId)

func setupService(t *testing.T) (*ServiceImpl, *recurring_rule.RepositoryStub, *event_template.RepositoryStub) {
	rules := recurring_rule.NewRepositoryStub()
	templates := event_template.NewRepositoryStub()
	clock := &utils.MockClock{FixedNow: time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)}
	service := NewService(rules, templates, clock, time.July).WithKeys(SequentialKeys("k"))
	t.Cleanup(func() {
		rules.Cleanup()
		templates.Cleanup()
	})
	return service, rules, templates
}

func TestServiceImpl_DefaultWindow(t *testing.T) {
	service, _, _ := setupService(t)

	window := service.DefaultWindow()

	assert.Equal(t, operatingYear, window)
}

func TestServiceImpl_ExpandRules(t *testing.T) {
	service, rules, _ := setupService(t)
	inactive := boardMeeting
	inactive.Id = 2
	inactive.Name = "Old meeting"
	inactive.IsActive = false
	weekly := recurring_rule.RecurringRule{Id: 3, Name: "Training", Frequency: recurring_rule.Weekly, DayOfWeek: time.Wednesday, CategoryId: intPtr(4), IsActive: true}
	rules.Add(organizationId, boardMeeting, inactive, weekly)
	rules.Add(99, recurring_rule.RecurringRule{Id: 50, Name: "Foreign", Frequency: recurring_rule.Weekly, IsActive: true})

	t.Run("should expand the selected rules in the given order", func(t *testing.T) {
		drafts, err := service.ExpandRules(ctx, operatingYear, []int{3, 1})

		require.NoError(t, err)
		require.Len(t, drafts, 53+12)
		assert.Equal(t, 3, *drafts[0].RecurringRuleId)
		assert.Equal(t, 1, *drafts[len(drafts)-1].RecurringRuleId)
	})

	t.Run("should expand every active rule when none is selected", func(t *testing.T) {
		drafts, err := service.ExpandRules(ctx, operatingYear, nil)

		require.NoError(t, err)
		assert.Len(t, drafts, 53+12)
	})

	t.Run("should refuse inactive and foreign rules", func(t *testing.T) {
		_, err := service.ExpandRules(ctx, operatingYear, []int{2})
		assert.ErrorIs(t, err, ErrUnknownRule)

		_, err = service.ExpandRules(ctx, operatingYear, []int{50})
		assert.ErrorIs(t, err, ErrUnknownRule)
	})

	t.Run("should require an organization", func(t *testing.T) {
		_, err := service.ExpandRules(context.Background(), operatingYear, nil)

		assert.ErrorIs(t, err, organization.ErrNoOrganization)
	})

	t.Run("should reject an invalid window", func(t *testing.T) {
		_, err := service.ExpandRules(ctx, Window{Start: day(2026, time.July, 1), End: day(2026, time.July, 1)}, nil)

		assert.ErrorIs(t, err, ErrInvalidWindow)
	})
}

func TestServiceImpl_SuggestPlacements(t *testing.T) {
	service, _, templates := setupService(t)
	audit := event_template.EventTemplate{Id: 8, Name: "Audit", IsMandatory: true, IsActive: true}
	templates.Add(organizationId, annualMeeting, audit)

	t.Run("should suggest placements for active mandatory templates", func(t *testing.T) {
		placements, err := service.SuggestPlacements(ctx, operatingYear)

		require.NoError(t, err)
		require.Len(t, placements, 2)
		byTemplate := map[int]MandatoryPlacement{}
		for _, placement := range placements {
			byTemplate[placement.Template.Id] = placement
		}
		assert.Equal(t, day(2026, time.September, 1), *byTemplate[7].Date)
		assert.False(t, byTemplate[8].Placed())
	})

	t.Run("should pass repository failures through", func(t *testing.T) {
		failure := errors.New("connection lost")
		templates.FailWith(failure)
		defer templates.FailWith(nil)

		_, err := service.SuggestPlacements(ctx, operatingYear)

		assert.ErrorIs(t, err, failure)
	})
}

func TestServiceImpl_Review(t *testing.T) {
	service, _, templates := setupService(t)
	templates.Add(organizationId, annualMeeting)

	t.Run("should resolve placements against the organization's templates", func(t *testing.T) {
		// given
		input := ReviewInput{
			Window:     operatingYear,
			Recurring:  []DraftEvent{{Key: "r-1", Date: day(2026, time.September, 1), Title: "Board", CategoryId: intPtr(1)}},
			Placements: []PlacementChoice{{Key: "t-1", TemplateId: 7, Date: datePtr(day(2026, time.September, 1))}},
			Manual:     []DraftEvent{{Key: "m-1", Date: day(2026, time.September, 1), Title: "Picnic"}},
		}

		// when
		plan, err := service.Review(ctx, input)

		// then
		require.NoError(t, err)
		require.Len(t, plan.Events, 2)
		assert.Equal(t, "r-1", plan.Events[0].Key)
		assert.Equal(t, "t-1", plan.Events[1].Key)
		assert.Equal(t, "Annual meeting", plan.Events[1].Title)
		require.Len(t, plan.Uncategorized, 1)
		assert.Equal(t, "m-1", plan.Uncategorized[0].Key)
	})

	t.Run("should report unplaced choices", func(t *testing.T) {
		plan, err := service.Review(ctx, ReviewInput{
			Window:     operatingYear,
			Placements: []PlacementChoice{{Key: "t-1", TemplateId: 7}},
		})

		require.NoError(t, err)
		assert.Equal(t, 1, plan.UnplacedMandatoryCount)
	})

	t.Run("should reject unknown templates", func(t *testing.T) {
		_, err := service.Review(ctx, ReviewInput{
			Window:     operatingYear,
			Placements: []PlacementChoice{{Key: "t-1", TemplateId: 99, Date: datePtr(day(2026, time.September, 1))}},
		})

		assert.ErrorIs(t, err, ErrUnknownPlacement)
	})

	t.Run("should reject invalid manual drafts", func(t *testing.T) {
		_, err := service.Review(ctx, ReviewInput{
			Window: operatingYear,
			Manual: []DraftEvent{{Key: "m-1", Date: day(2026, time.September, 1)}},
		})

		assert.ErrorIs(t, err, ErrInvalidDraft)
	})
}
