package inmemory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sufield/todoapi/internal/domain"
	"github.com/sufield/todoapi/internal/ports"
)

func TestAtomic_ReadOnlyDoesNotStage(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Atomic(ctx, func(view ports.Tx) error {
		_, err := view.Lists().Insert(ctx, domain.List{Name: "L", OwnerID: "u1", CreatedAt: now, UpdatedAt: now})
		return err
	}))

	before := s.data
	require.NoError(t, s.Atomic(ctx, func(view ports.Tx) error {
		_, err := view.Lists().ListByOwner(ctx, "u1")
		require.NoError(t, err)
		_, err = view.Items().ListLive(ctx, 1)
		require.NoError(t, err)
		_, err = view.Items().GetForUpdate(ctx, 42)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Nil(t, view.(*tx).staged)
		return nil
	}))
	assert.Same(t, before, s.data)
}

func TestAtomic_ReadsSeeEarlierWritesInSameTx(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.Atomic(ctx, func(view ports.Tx) error {
		l, err := view.Lists().Insert(ctx, domain.List{Name: "L", OwnerID: "u1", CreatedAt: now, UpdatedAt: now})
		require.NoError(t, err)
		it, err := view.Items().Insert(ctx, domain.Item{ListID: l.ID, Text: "x", Status: domain.StatusNotStarted, CreatedAt: now})
		require.NoError(t, err)

		live, err := view.Items().ListLive(ctx, l.ID)
		require.NoError(t, err)
		require.Len(t, live, 1)
		assert.Equal(t, it.ID, live[0].ID)
		return nil
	}))

	before := s.data
	require.NoError(t, s.Atomic(ctx, func(view ports.Tx) error {
		ok, err := view.Items().Delete(ctx, 1)
		require.NoError(t, err)
		assert.True(t, ok)
		return nil
	}))
	assert.NotSame(t, before, s.data)
	assert.Len(t, before.items, 1, "committed snapshot is not mutated in place")
	assert.Empty(t, s.data.items)
}
