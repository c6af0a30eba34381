package operating_year

import (
	"context"
	"errors"
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
	"github.com/yearplan/yearplan/pkg/plan_wizard"
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

func yearRow(name string, status Status) OperatingYear {
	return OperatingYear{
		Name:      name,
		StartDate: day(2026, time.July, 1),
		EndDate:   day(2027, time.June, 30),
		Status:    status,
	}
}

func eventRow(date time.Time, title string, categoryId int) Event {
	return Event{
		Date:       date,
		Title:      title,
		CategoryId: categoryId,
		Source:     plan_wizard.SourceManual,
		Status:     EventPlanned,
	}
}

func TestRepositoryImpl_CreateYear(t *testing.T) {
	t.Run("should store the year", func(t *testing.T) {
		// given
		ctx, repo, _ := setupTestRepository(t)

		// when
		year, err := repo.CreateYear(ctx, test_utils.TestOrganizationId, yearRow("2026/2027", StatusPlanning))

		// then
		require.NoError(t, err)
		stored, err := repo.GetYear(ctx, test_utils.TestOrganizationId, year.Id)
		require.NoError(t, err)
		assert.Equal(t, "2026/2027", stored.Name)
		assert.Equal(t, day(2026, time.July, 1), stored.StartDate.UTC())
		assert.Equal(t, day(2027, time.June, 30), stored.EndDate.UTC())
		assert.Equal(t, StatusPlanning, stored.Status)
		assert.False(t, stored.CreatedAt.IsZero())
	})

	t.Run("should refuse a duplicate name within the organization", func(t *testing.T) {
		ctx, repo, _ := setupTestRepository(t)
		_, err := repo.CreateYear(ctx, test_utils.TestOrganizationId, yearRow("2026/2027", StatusPlanning))
		require.NoError(t, err)

		_, err = repo.CreateYear(ctx, test_utils.TestOrganizationId, yearRow("2026/2027", StatusDraft))
		assert.ErrorIs(t, err, ErrDuplicateYearName)

		_, err = repo.CreateYear(ctx, test_utils.TestOrganizationId+1, yearRow("2026/2027", StatusDraft))
		assert.NoError(t, err)
	})

	t.Run("should refuse a second active year", func(t *testing.T) {
		ctx, repo, _ := setupTestRepository(t)
		_, err := repo.CreateYear(ctx, test_utils.TestOrganizationId, yearRow("2025/2026", StatusActive))
		require.NoError(t, err)

		_, err = repo.CreateYear(ctx, test_utils.TestOrganizationId, yearRow("2026/2027", StatusActive))

		assert.Error(t, err)
	})
}

func TestRepositoryImpl_WithTransaction(t *testing.T) {
	t.Run("should archive the active year and create the new one", func(t *testing.T) {
		// given
		ctx, repo, db := setupTestRepository(t)
		categoryId := test_utils.InsertCategory(t, db, test_utils.TestOrganizationId, "Board")
		old, err := repo.CreateYear(ctx, test_utils.TestOrganizationId, yearRow("2025/2026", StatusActive))
		require.NoError(t, err)

		// when
		var created OperatingYear
		err = repo.WithTransaction(ctx, func(repo Repository) error {
			if err := repo.LockOrganization(ctx, test_utils.TestOrganizationId); err != nil {
				return err
			}
			archived, err := repo.ArchiveActiveYears(ctx, test_utils.TestOrganizationId, 0)
			if err != nil {
				return err
			}
			assert.Equal(t, 1, archived)
			created, err = repo.CreateYear(ctx, test_utils.TestOrganizationId, yearRow("2026/2027", StatusActive))
			if err != nil {
				return err
			}
			_, err = repo.CreateEvents(ctx, created.Id, []Event{
				eventRow(day(2026, time.August, 4), "Second", categoryId),
				eventRow(day(2026, time.July, 7), "First", categoryId),
			})
			return err
		})

		// then
		require.NoError(t, err)
		stored, err := repo.GetYear(ctx, test_utils.TestOrganizationId, old.Id)
		require.NoError(t, err)
		assert.Equal(t, StatusArchived, stored.Status)
		events, err := repo.ListEvents(ctx, test_utils.TestOrganizationId, created.Id)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "First", events[0].Title)
		assert.Equal(t, "Second", events[1].Title)
	})

	t.Run("should leave nothing behind when the events fail", func(t *testing.T) {
		// given
		ctx, repo, _ := setupTestRepository(t)
		old, err := repo.CreateYear(ctx, test_utils.TestOrganizationId, yearRow("2025/2026", StatusActive))
		require.NoError(t, err)

		// when
		err = repo.WithTransaction(ctx, func(repo Repository) error {
			if _, err := repo.ArchiveActiveYears(ctx, test_utils.TestOrganizationId, 0); err != nil {
				return err
			}
			created, err := repo.CreateYear(ctx, test_utils.TestOrganizationId, yearRow("2026/2027", StatusActive))
			if err != nil {
				return err
			}
			// no such category
			_, err = repo.CreateEvents(ctx, created.Id, []Event{eventRow(day(2026, time.July, 7), "First", 9999)})
			return err
		})

		// then
		require.Error(t, err)
		years, err := repo.ListYears(ctx, test_utils.TestOrganizationId)
		require.NoError(t, err)
		require.Len(t, years, 1)
		assert.Equal(t, old.Id, years[0].Id)
		assert.Equal(t, StatusActive, years[0].Status)
	})

	t.Run("should roll back on an error returned by the callback", func(t *testing.T) {
		ctx, repo, _ := setupTestRepository(t)
		errBoom := errors.New("boom")

		err := repo.WithTransaction(ctx, func(repo Repository) error {
			if _, err := repo.CreateYear(ctx, test_utils.TestOrganizationId, yearRow("2026/2027", StatusPlanning)); err != nil {
				return err
			}
			return errBoom
		})

		assert.ErrorIs(t, err, errBoom)
		years, err := repo.ListYears(ctx, test_utils.TestOrganizationId)
		require.NoError(t, err)
		assert.Empty(t, years)
	})

	t.Run("should require a transaction to lock", func(t *testing.T) {
		ctx, repo, _ := setupTestRepository(t)

		err := repo.LockOrganization(ctx, test_utils.TestOrganizationId)

		assert.Error(t, err)
	})
}

func TestRepositoryImpl_Events(t *testing.T) {
	setup := func(t *testing.T) (context.Context, *RepositoryImpl, OperatingYear, Event) {
		ctx, repo, db := setupTestRepository(t)
		categoryId := test_utils.InsertCategory(t, db, test_utils.TestOrganizationId, "Board")
		templateId := test_utils.InsertEventTemplate(t, db, test_utils.TestOrganizationId, test_utils.TemplateRow{
			Name:        "Annual meeting",
			CategoryId:  &categoryId,
			IsMandatory: true,
			IsActive:    true,
		})
		year, err := repo.CreateYear(ctx, test_utils.TestOrganizationId, yearRow("2026/2027", StatusActive))
		require.NoError(t, err)
		invitation := "Welcome"
		endDate := day(2026, time.September, 2)
		event := eventRow(day(2026, time.September, 1), "Annual meeting", categoryId)
		event.EndDate = &endDate
		event.TemplateId = &templateId
		event.IsMandatory = true
		event.InvitationText = &invitation
		event.Source = plan_wizard.SourceTemplate
		count, err := repo.CreateEvents(ctx, year.Id, []Event{event})
		require.NoError(t, err)
		require.Equal(t, 1, count)
		events, err := repo.ListEvents(ctx, test_utils.TestOrganizationId, year.Id)
		require.NoError(t, err)
		require.Len(t, events, 1)
		return ctx, repo, year, events[0]
	}

	t.Run("should read back every column", func(t *testing.T) {
		_, _, year, event := setup(t)

		assert.Equal(t, year.Id, event.YearId)
		assert.Equal(t, day(2026, time.September, 1), event.Date.UTC())
		assert.Equal(t, day(2026, time.September, 2), event.EndDate.UTC())
		assert.Equal(t, "Annual meeting", event.Title)
		assert.True(t, event.IsMandatory)
		assert.NotNil(t, event.TemplateId)
		assert.Nil(t, event.RecurringRuleId)
		assert.Equal(t, "Welcome", *event.InvitationText)
		assert.Equal(t, plan_wizard.SourceTemplate, event.Source)
		assert.Equal(t, EventPlanned, event.Status)
		assert.Nil(t, event.PublishedEventId)
	})

	t.Run("should set the published id once", func(t *testing.T) {
		ctx, repo, year, event := setup(t)
		publishedEventId := uuid.New()

		err := repo.WithTransaction(ctx, func(repo Repository) error {
			locked, err := repo.GetEventForUpdate(ctx, test_utils.TestOrganizationId, year.Id, event.Id)
			if err != nil {
				return err
			}
			assert.False(t, locked.IsPublished())
			return repo.SetPublishedEventId(ctx, test_utils.TestOrganizationId, event.Id, publishedEventId)
		})

		require.NoError(t, err)
		stored, err := repo.GetEventForUpdate(ctx, test_utils.TestOrganizationId, year.Id, event.Id)
		require.NoError(t, err)
		require.NotNil(t, stored.PublishedEventId)
		assert.Equal(t, publishedEventId, *stored.PublishedEventId)
	})

	t.Run("should update and delete events of the organization only", func(t *testing.T) {
		ctx, repo, year, event := setup(t)

		err := repo.UpdateEventStatus(ctx, test_utils.TestOrganizationId+1, event.Id, EventConfirmed)
		assert.ErrorIs(t, err, ErrEventNotFound)
		err = repo.UpdateEventStatus(ctx, test_utils.TestOrganizationId, event.Id, EventConfirmed)
		require.NoError(t, err)
		_, err = repo.GetEventForUpdate(ctx, test_utils.TestOrganizationId+1, year.Id, event.Id)
		assert.ErrorIs(t, err, ErrEventNotFound)

		err = repo.DeleteEvent(ctx, test_utils.TestOrganizationId, event.Id)
		require.NoError(t, err)
		events, err := repo.ListEvents(ctx, test_utils.TestOrganizationId, year.Id)
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("should delete the events with their year", func(t *testing.T) {
		ctx, repo, year, _ := setup(t)

		err := repo.DeleteYear(ctx, test_utils.TestOrganizationId, year.Id)

		require.NoError(t, err)
		_, err = repo.GetYear(ctx, test_utils.TestOrganizationId, year.Id)
		assert.ErrorIs(t, err, ErrYearNotFound)
		events, err := repo.ListEvents(ctx, test_utils.TestOrganizationId, year.Id)
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}
