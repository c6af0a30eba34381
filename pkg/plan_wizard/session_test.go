package plan_wizard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yearplan/yearplan/pkg/event_template"
	"github.com/yearplan/yearplan/pkg/recurring_rule"
)

var boardMeeting = recurring_rule.RecurringRule{
	Id:          1,
	Name:        "Board meeting",
	Frequency:   recurring_rule.Monthly,
	DayOfWeek:   time.Tuesday,
	WeekOfMonth: intPtr(1),
	CategoryId:  intPtr(1),
	IsActive:    true,
}

var annualMeeting = event_template.EventTemplate{
	Id:           7,
	Name:         "Annual meeting",
	CategoryId:   intPtr(2),
	IsMandatory:  true,
	IsActive:     true,
	DefaultMonth: monthPtr(time.September),
}

func newTestSession(t *testing.T) Session {
	session, err := NewSession(SequentialKeys("k")).ApplyWindow(operatingYear)
	require.NoError(t, err)
	return session
}

func TestSession(t *testing.T) {
	suggester := event_template.NewPlacementSuggester(time.July)

	t.Run("should walk through all wizard steps", func(t *testing.T) {
		// given
		session := newTestSession(t)

		// when
		session, err := session.ApplyRules([]recurring_rule.RecurringRule{boardMeeting})
		require.NoError(t, err)
		session, err = session.ApplyTemplates([]event_template.EventTemplate{annualMeeting}, suggester)
		require.NoError(t, err)
		session, err = session.AddManual(DraftEvent{Date: day(2026, time.December, 12), Title: "Winter party", CategoryId: intPtr(3)})
		require.NoError(t, err)

		// then
		plan := session.Review()
		assert.Len(t, plan.Events, 12+1+1)
		assert.Equal(t, 0, plan.UnplacedMandatoryCount)
		assert.Equal(t, plan.Events, session.ToCommit())
		manual := session.Manual()
		require.Len(t, manual, 1)
		assert.Equal(t, SourceManual, manual[0].Source)
		assert.NotEmpty(t, manual[0].Key)
	})

	t.Run("should leave the previous session untouched", func(t *testing.T) {
		before := newTestSession(t)

		after, err := before.AddManual(DraftEvent{Date: day(2026, time.December, 12), Title: "Winter party", CategoryId: intPtr(3)})
		require.NoError(t, err)

		assert.Empty(t, before.Manual())
		assert.Len(t, after.Manual(), 1)
	})

	t.Run("should require a window before expanding", func(t *testing.T) {
		_, err := NewSession(nil).ApplyRules([]recurring_rule.RecurringRule{boardMeeting})

		assert.ErrorIs(t, err, ErrInvalidWindow)
	})

	t.Run("should drop generated drafts when the window changes", func(t *testing.T) {
		session := newTestSession(t)
		session, err := session.ApplyRules([]recurring_rule.RecurringRule{boardMeeting})
		require.NoError(t, err)
		session, err = session.AddManual(DraftEvent{Date: day(2026, time.December, 12), Title: "Winter party", CategoryId: intPtr(3)})
		require.NoError(t, err)

		session, err = session.ApplyWindow(Window{Start: day(2027, time.July, 1), End: day(2028, time.June, 30)})

		require.NoError(t, err)
		assert.Empty(t, session.Recurring())
		assert.Len(t, session.Manual(), 1)
	})

	t.Run("should move, unplace and reject placements", func(t *testing.T) {
		session, err := newTestSession(t).ApplyTemplates([]event_template.EventTemplate{annualMeeting}, suggester)
		require.NoError(t, err)
		key := session.Placements()[0].Key
		assert.Equal(t, day(2026, time.September, 1), *session.Placements()[0].Date)

		moved, err := session.PlaceMandatory(key, datePtr(day(2026, time.September, 19)))
		require.NoError(t, err)
		assert.Equal(t, day(2026, time.September, 19), moved.Review().Events[0].Date)

		unplaced, err := moved.PlaceMandatory(key, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, unplaced.Review().UnplacedMandatoryCount)
		assert.Empty(t, unplaced.Review().Events)

		_, err = session.PlaceMandatory(key, datePtr(day(2027, time.August, 1)))
		assert.ErrorIs(t, err, ErrInvalidDraft)

		_, err = session.PlaceMandatory("missing", datePtr(day(2026, time.September, 19)))
		assert.ErrorIs(t, err, ErrUnknownPlacement)
	})

	t.Run("should replace a manual draft with the same key and remove it", func(t *testing.T) {
		session := newTestSession(t)
		session, err := session.AddManual(DraftEvent{Key: "m", Date: day(2026, time.December, 12), Title: "Winter party", CategoryId: intPtr(3)})
		require.NoError(t, err)
		session, err = session.AddManual(DraftEvent{Key: "m", Date: day(2026, time.December, 13), Title: "Winter party", CategoryId: intPtr(3)})
		require.NoError(t, err)
		require.Len(t, session.Manual(), 1)
		assert.Equal(t, day(2026, time.December, 13), session.Manual()[0].Date)

		session, err = session.RemoveManual("m")
		require.NoError(t, err)
		assert.Empty(t, session.Manual())

		_, err = session.RemoveManual("m")
		assert.ErrorIs(t, err, ErrUnknownDraft)
	})

	t.Run("should reject an invalid manual draft", func(t *testing.T) {
		_, err := newTestSession(t).AddManual(DraftEvent{Date: day(2026, time.December, 12)})

		assert.ErrorIs(t, err, ErrInvalidDraft)
	})
}

func TestResume(t *testing.T) {
	t.Run("should rebuild the session from client state", func(t *testing.T) {
		recurring := []DraftEvent{{Key: "r-1", Date: day(2026, time.July, 7), Title: "Board", CategoryId: intPtr(1)}}
		placements := []MandatoryPlacement{{Key: "t-1", Template: annualMeeting, Date: datePtr(day(2026, time.September, 1)), IsPlaced: true}}
		manual := []DraftEvent{{Key: "m-1", Date: day(2026, time.July, 7), Title: "Picnic", CategoryId: intPtr(3), Source: SourceRecurring}}

		session, err := Resume(SequentialKeys("k"), operatingYear, recurring, placements, manual)

		require.NoError(t, err)
		plan := session.Review()
		require.Len(t, plan.Events, 3)
		assert.Equal(t, SourceRecurring, plan.Events[0].Source)
		assert.Equal(t, SourceManual, plan.Events[1].Source)
		assert.Equal(t, SourceTemplate, plan.Events[2].Source)
	})

	t.Run("should reject an invalid window", func(t *testing.T) {
		_, err := Resume(nil, Window{Start: day(2026, time.July, 1), End: day(2026, time.June, 1)}, nil, nil, nil)

		assert.ErrorIs(t, err, ErrInvalidWindow)
	})
}
