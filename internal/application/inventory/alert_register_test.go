package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestAlertRegister_Trigger(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryAlertRepository()
	register := NewAlertRegister(repo, zaptest.NewLogger(t))
	productID := uuid.New()

	first, err := register.Trigger(ctx, productID, 2, 5)
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := register.Trigger(ctx, productID, 1, 5)
	require.NoError(t, err)
	assert.Nil(t, second, "duplicate trigger must be suppressed")

	open, err := register.HasUnresolved(ctx, productID)
	require.NoError(t, err)
	assert.True(t, open)

	count, err := register.CountUnresolved(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestAlertRegister_Resolve(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryAlertRepository()
	register := NewAlertRegister(repo, nil)
	productID := uuid.New()

	alert, err := register.Trigger(ctx, productID, 0, 3)
	require.NoError(t, err)

	resolved, err := register.Resolve(ctx, alert.ID, testActor, "ordered 40 units")
	require.NoError(t, err)
	assert.True(t, resolved.Resolved)
	require.NotNil(t, resolved.ResolvedBy)
	assert.Equal(t, testActor.ID, *resolved.ResolvedBy)

	t.Run("second resolution fails", func(t *testing.T) {
		_, err := register.Resolve(ctx, alert.ID, testActor, "again")
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrAlertAlreadyResolved))
	})

	t.Run("unknown alert", func(t *testing.T) {
		_, err := register.Resolve(ctx, uuid.New(), testActor, "")
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("a new alert can open after resolution", func(t *testing.T) {
		next, err := register.Trigger(ctx, productID, 1, 3)
		require.NoError(t, err)
		require.NotNil(t, next)
		assert.NotEqual(t, alert.ID, next.ID)
	})
}

func TestAlertRegister_PurgeResolved(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryAlertRepository()
	register := NewAlertRegister(repo, nil)

	old, err := register.Trigger(ctx, uuid.New(), 0, 1)
	require.NoError(t, err)
	_, err = register.Resolve(ctx, old.ID, testActor, "")
	require.NoError(t, err)
	stored := repo.alerts[old.ID]
	past := time.Now().Add(-48 * time.Hour)
	stored.ResolvedAt = &past
	repo.alerts[old.ID] = stored

	recent, err := register.Trigger(ctx, uuid.New(), 0, 1)
	require.NoError(t, err)
	_, err = register.Resolve(ctx, recent.ID, testActor, "")
	require.NoError(t, err)

	open, err := register.Trigger(ctx, uuid.New(), 0, 1)
	require.NoError(t, err)

	deleted, err := register.PurgeResolved(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = repo.FindByID(ctx, recent.ID)
	assert.NoError(t, err)
	_, err = repo.FindByID(ctx, open.ID)
	assert.NoError(t, err, "unresolved alerts are never purged")

	_, err = register.PurgeResolved(ctx, -time.Hour)
	assert.Equal(t, shared.CodeInvalidArgument, shared.ErrorCode(err))
}
