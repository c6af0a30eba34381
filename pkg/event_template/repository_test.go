package event_template

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

func TestRepositoryImpl_ListEventTemplates(t *testing.T) {
	// given
	ctx, repo, db := setupTestRepository(t)
	categoryId := test_utils.InsertCategory(t, db, test_utils.TestOrganizationId, "Governance")
	september := 9
	invitation := "All members are invited"
	annualMeetingId := test_utils.InsertEventTemplate(t, db, test_utils.TestOrganizationId, test_utils.TemplateRow{
		Name:                  "Annual meeting",
		CategoryId:            &categoryId,
		DefaultDurationMin:    180,
		DefaultInvitationText: &invitation,
		IsMandatory:           true,
		DefaultMonth:          &september,
		IsActive:              true,
	})
	test_utils.InsertEventTemplate(t, db, test_utils.TestOrganizationId, test_utils.TemplateRow{Name: "Autumn fair"})
	test_utils.InsertEventTemplate(t, db, test_utils.TestOrganizationId+1, test_utils.TemplateRow{Name: "Foreign", IsActive: true})

	t.Run("should read active templates of the organization", func(t *testing.T) {
		// when
		templates, err := repo.ListEventTemplates(ctx, test_utils.TestOrganizationId, true)

		// then
		require.NoError(t, err)
		require.Len(t, templates, 1)
		template := templates[0]
		assert.Equal(t, annualMeetingId, template.Id)
		assert.Equal(t, test_utils.TestOrganizationId, template.OrganizationId)
		assert.Equal(t, categoryId, *template.CategoryId)
		assert.Equal(t, 3*time.Hour, template.DefaultDuration)
		assert.Equal(t, invitation, *template.DefaultInvitationText)
		assert.True(t, template.IsMandatory)
		assert.Equal(t, time.September, *template.DefaultMonth)
	})

	t.Run("should include inactive templates ordered by name", func(t *testing.T) {
		templates, err := repo.ListEventTemplates(ctx, test_utils.TestOrganizationId, false)

		require.NoError(t, err)
		require.Len(t, templates, 2)
		assert.Equal(t, "Annual meeting", templates[0].Name)
		assert.Equal(t, "Autumn fair", templates[1].Name)
		assert.Nil(t, templates[1].CategoryId)
		assert.Nil(t, templates[1].DefaultMonth)
	})
}
