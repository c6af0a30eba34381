package calendar

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
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

func setupTestRepository(t *testing.T) (context.Context, Repository) {
	ctx := context.Background()
	db := openDb()
	t.Cleanup(func() {
		db.Close()
		err := pgContainer.Restore(ctx)
		require.NoError(t, err)
	})
	return ctx, NewRepository(db)
}

func calendarEvent(sourceEventId int, title string, date time.Time) Event {
	return Event{
		UID:            uuid.New(),
		OrganizationId: test_utils.TestOrganizationId,
		SourceEventId:  sourceEventId,
		Title:          title,
		Date:           date,
		CategoryId:     1,
	}
}

func TestRepositoryImpl_StoreEvent(t *testing.T) {
	t.Run("should store and read back an event", func(t *testing.T) {
		// given
		ctx, repo := setupTestRepository(t)
		event := calendarEvent(10, "Annual meeting", day(2026, time.September, 1))
		endDate := day(2026, time.September, 2)
		invitation := "Welcome"
		event.EndDate = &endDate
		event.InvitationText = &invitation

		// when
		stored, err := repo.StoreEvent(ctx, event)

		// then
		require.NoError(t, err)
		assert.False(t, stored.PublishedAt.IsZero())
		read, err := repo.GetEvent(ctx, test_utils.TestOrganizationId, event.UID)
		require.NoError(t, err)
		assert.Equal(t, event.UID, read.UID)
		assert.Equal(t, 10, read.SourceEventId)
		assert.Equal(t, day(2026, time.September, 1), read.Date.UTC())
		assert.Equal(t, endDate, read.EndDate.UTC())
		assert.Equal(t, "Welcome", *read.InvitationText)
	})

	t.Run("should replace the entry of the same source event", func(t *testing.T) {
		ctx, repo := setupTestRepository(t)
		first := calendarEvent(10, "Annual meeting", day(2026, time.September, 1))
		second := calendarEvent(10, "Annual meeting (moved)", day(2026, time.September, 8))

		_, err := repo.StoreEvent(ctx, first)
		require.NoError(t, err)
		_, err = repo.StoreEvent(ctx, second)
		require.NoError(t, err)

		_, err = repo.GetEvent(ctx, test_utils.TestOrganizationId, first.UID)
		assert.ErrorIs(t, err, ErrEventNotFound)
		read, err := repo.GetEvent(ctx, test_utils.TestOrganizationId, second.UID)
		require.NoError(t, err)
		assert.Equal(t, "Annual meeting (moved)", read.Title)
	})
}

func TestRepositoryImpl_GetEvents(t *testing.T) {
	// given
	ctx, repo := setupTestRepository(t)
	camp := calendarEvent(1, "Camp", day(2026, time.August, 30))
	campEnd := day(2026, time.September, 2)
	camp.EndDate = &campEnd
	other := calendarEvent(4, "Other organization", day(2026, time.September, 10))
	other.OrganizationId = test_utils.TestOrganizationId + 1
	for _, event := range []Event{
		camp,
		calendarEvent(2, "Board meeting", day(2026, time.September, 30)),
		calendarEvent(3, "Winter party", day(2026, time.December, 12)),
		other,
	} {
		_, err := repo.StoreEvent(ctx, event)
		require.NoError(t, err)
	}

	// when
	events, err := repo.GetEvents(ctx, test_utils.TestOrganizationId, day(2026, time.September, 1), day(2026, time.September, 30))

	// then
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Camp", events[0].Title)
	assert.Equal(t, "Board meeting", events[1].Title)
}
