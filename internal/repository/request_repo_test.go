package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"backend/internal/apperr"
	"backend/internal/database"
	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedRequest(t *testing.T, db *gorm.DB) *model.ApprovalRequest {
	t.Helper()
	req := &model.ApprovalRequest{
		Title:      "cas probe",
		Status:     model.StatusPending,
		OwnerID:    uuid.New(),
		LocationID: uuid.New(),
	}
	require.NoError(t, db.Create(req).Error)
	return req
}

func TestUpdateStatusCAS(t *testing.T) {
	db := newTestDB(t)
	repo := NewRequestRepository(db)
	ctx := context.Background()

	req := seedRequest(t, db)
	require.EqualValues(t, 0, req.Version)

	require.NoError(t, repo.UpdateStatusCAS(ctx, req.ID, 0, model.StatusApproving))

	reloaded, err := repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproving, reloaded.Status)
	assert.EqualValues(t, 1, reloaded.Version)

	// A writer still holding the old version loses
	err = repo.UpdateStatusCAS(ctx, req.ID, 0, model.StatusApproved)
	assert.ErrorIs(t, err, apperr.ErrVersionConflict)

	// Status is untouched by the losing write
	reloaded, err = repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproving, reloaded.Status)
}

func TestSoftDeleteHidesFromDefaultScope(t *testing.T) {
	db := newTestDB(t)
	repo := NewRequestRepository(db)
	ctx := context.Background()

	req := seedRequest(t, db)
	require.NoError(t, repo.SoftDelete(ctx, req.ID))

	_, err := repo.GetByID(ctx, req.ID)
	assert.ErrorIs(t, err, apperr.ErrRequestNotFound)

	// Unscoped lookup still sees the row, flagged as deleted
	deleted, err := repo.GetByIDUnscoped(ctx, req.ID)
	require.NoError(t, err)
	assert.True(t, deleted.DeletedAt.Valid)
}

func TestRunInTxRetryReplaysVersionConflicts(t *testing.T) {
	db := newTestDB(t)
	repo := NewRequestRepository(db)
	txm := NewTransactionManager(db)
	ctx := context.Background()

	req := seedRequest(t, db)

	// First attempt reads a stale version; the retry reads the current one
	attempts := 0
	err := txm.RunInTxRetry(ctx, func(txCtx context.Context) error {
		attempts++
		if attempts == 1 {
			return repo.UpdateStatusCAS(txCtx, req.ID, 99, model.StatusApproving)
		}
		current, getErr := repo.GetByID(txCtx, req.ID)
		if getErr != nil {
			return getErr
		}
		return repo.UpdateStatusCAS(txCtx, req.ID, current.Version, model.StatusApproving)
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)

	reloaded, err := repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproving, reloaded.Status)
}

func TestRunInTxRetryGivesUpAfterBound(t *testing.T) {
	db := newTestDB(t)
	repo := NewRequestRepository(db)
	txm := NewTransactionManager(db)
	ctx := context.Background()

	req := seedRequest(t, db)

	attempts := 0
	err := txm.RunInTxRetry(ctx, func(txCtx context.Context) error {
		attempts++
		return repo.UpdateStatusCAS(txCtx, req.ID, 99, model.StatusApproving)
	})
	assert.ErrorIs(t, err, apperr.ErrVersionConflict)
	assert.Equal(t, optimisticRetries, attempts)
}
