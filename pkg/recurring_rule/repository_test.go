package recurring_rule

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/yearplan/yearplan/internal/test_utils"
)

var pgContainer *postgres.PostgresContainer
var openDb func() *pgxpool.Pool

func TestMain(m *testing.M) {
	pgContainer, openDb = test_utils.TestWithDB()
	defer func() {
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			log.Errorf("failed to terminate container: %s", err)
		}
	}()
	code := m.Run()
	os.Exit(code)
}

func setupTestRepository(t *testing.T) (context.Context, *RepositoryImpl, *pgxpool.Pool) {
	ctx := context.Background()
	db := openDb()
	t.Cleanup(func() {
		db.Close()
		err := pgContainer.Restore(ctx)
		require.NoError(t, err)
	})
	return ctx, NewRepository(db), db
}

func TestRepositoryImpl_ListRecurringRules(t *testing.T) {
	// given
	ctx, repo, db := setupTestRepository(t)
	categoryId := test_utils.InsertCategory(t, db, test_utils.TestOrganizationId, "Board")
	first := 1
	last := LastWeek
	boardMeetingId := test_utils.InsertRecurringRule(t, db, test_utils.TestOrganizationId, test_utils.RuleRow{
		Name:         "Board meeting",
		Frequency:    "MONTHLY",
		DayOfWeek:    int(time.Tuesday),
		WeekOfMonth:  &first,
		CategoryId:   &categoryId,
		DefaultTitle: "Board",
		IsActive:     true,
	})
	test_utils.InsertRecurringRule(t, db, test_utils.TestOrganizationId, test_utils.RuleRow{
		Name:        "Archive night",
		Frequency:   "MONTHLY",
		DayOfWeek:   int(time.Thursday),
		WeekOfMonth: &last,
	})
	test_utils.InsertRecurringRule(t, db, test_utils.TestOrganizationId+1, test_utils.RuleRow{
		Name:      "Foreign",
		Frequency: "WEEKLY",
		IsActive:  true,
	})

	t.Run("should read active rules of the organization", func(t *testing.T) {
		// when
		rules, err := repo.ListRecurringRules(ctx, test_utils.TestOrganizationId, true)

		// then
		require.NoError(t, err)
		require.Len(t, rules, 1)
		rule := rules[0]
		assert.Equal(t, boardMeetingId, rule.Id)
		assert.Equal(t, Monthly, rule.Frequency)
		assert.Equal(t, time.Tuesday, rule.DayOfWeek)
		assert.Equal(t, 1, *rule.WeekOfMonth)
		assert.Equal(t, categoryId, *rule.CategoryId)
		assert.Equal(t, "Board", rule.Title())
		assert.NoError(t, Validate(rule))
	})

	t.Run("should include inactive rules ordered by name", func(t *testing.T) {
		rules, err := repo.ListRecurringRules(ctx, test_utils.TestOrganizationId, false)

		require.NoError(t, err)
		require.Len(t, rules, 2)
		assert.Equal(t, "Archive night", rules[0].Name)
		assert.Equal(t, LastWeek, *rules[0].WeekOfMonth)
		assert.Equal(t, "Archive night", rules[0].Title())
		assert.Equal(t, "Board meeting", rules[1].Name)
	})
}
