package postgres

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/budget-registry/models"
	"github.com/upb/budget-registry/repositories"
	"go.uber.org/zap"
)

func newMockAuditRepo(t *testing.T) (repositories.AuditRepository, sqlmock.Sqlmock, func()) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db := &DB{DB: mockDB, logger: zap.NewNop()}
	repo := NewAuditRepository(db, zap.NewNop())

	return repo, mock, func() { _ = mockDB.Close() }
}

func TestAuditRepositoryInsert(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts entry", func(t *testing.T) {
		repo, mock, closeFn := newMockAuditRepo(t)
		defer closeFn()

		actor := models.Caller{ID: uuid.New(), Role: models.RoleAdmin}
		resourceID := uuid.New()
		entry := models.NewAuditLog(actor, models.AuditActionBudgetCreated, "budget_records").
			WithResource(resourceID).
			WithDetails(map[string]interface{}{"year": 2025})

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_logs")).
			WithArgs(entry.ID, entry.ActorID, entry.ActorRole, entry.Action,
				entry.ResourceType, entry.ResourceID, entry.Details,
				entry.RequestID, entry.Timestamp).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Insert(ctx, entry)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAuditRepositoryListByActor(t *testing.T) {
	ctx := context.Background()

	t.Run("paginates entries for actor", func(t *testing.T) {
		repo, mock, closeFn := newMockAuditRepo(t)
		defer closeFn()

		actor := models.Caller{ID: uuid.New(), Role: models.RoleAdmin}
		entry := models.NewAuditLog(actor, models.AuditActionBudgetDeleted, "budget_records")

		rows := sqlmock.NewRows([]string{
			"id", "actor_id", "actor_role", "action", "resource_type",
			"resource_id", "details", "request_id", "timestamp",
		}).AddRow(entry.ID, entry.ActorID, string(entry.ActorRole), string(entry.Action),
			entry.ResourceType, nil, []byte(nil), "", entry.Timestamp)

		mock.ExpectQuery(regexp.QuoteMeta("WHERE actor_id = $1")).
			WithArgs(actor.ID, 10, 0).
			WillReturnRows(rows)

		logs, err := repo.ListByActor(ctx, actor.ID, 10, 0)

		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, actor.ID, logs[0].ActorID)
		assert.Nil(t, logs[0].ResourceID)
	})
}

func TestAuditRepositoryListByResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns entries for resource", func(t *testing.T) {
		repo, mock, closeFn := newMockAuditRepo(t)
		defer closeFn()

		actor := models.Caller{ID: uuid.New(), Role: models.RoleAuditor}
		resourceID := uuid.New()
		entry := models.NewAuditLog(actor, models.AuditActionBudgetUpdated, "budget_records").
			WithResource(resourceID)

		rows := sqlmock.NewRows([]string{
			"id", "actor_id", "actor_role", "action", "resource_type",
			"resource_id", "details", "request_id", "timestamp",
		}).AddRow(entry.ID, entry.ActorID, string(entry.ActorRole), string(entry.Action),
			entry.ResourceType, entry.ResourceID, []byte(nil), "", entry.Timestamp)

		mock.ExpectQuery(regexp.QuoteMeta("WHERE resource_id = $1")).
			WithArgs(resourceID).
			WillReturnRows(rows)

		logs, err := repo.ListByResource(ctx, resourceID)

		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, models.AuditActionBudgetUpdated, logs[0].Action)
		assert.Equal(t, resourceID, *logs[0].ResourceID)
	})
}
