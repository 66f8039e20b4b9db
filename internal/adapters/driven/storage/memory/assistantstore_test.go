package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/core/domain"
)

func TestAssistantStore_CreateAssignsIDs(t *testing.T) {
	ctx := context.Background()
	s := NewAssistantStore()

	a := &domain.Assistant{Name: "a", OwnerID: 1}
	b := &domain.Assistant{Name: "b", OwnerID: 1}
	require.NoError(t, s.Create(ctx, a))
	require.NoError(t, s.Create(ctx, b))

	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, int64(2), b.ID)
	assert.False(t, a.CreatedAt.IsZero())
}

func TestAssistantStore_Ownership(t *testing.T) {
	ctx := context.Background()
	s := NewAssistantStore()
	a := &domain.Assistant{Name: "a", OwnerID: 1}
	require.NoError(t, s.Create(ctx, a))

	_, err := s.GetOwned(ctx, a.ID, 1)
	assert.NoError(t, err)
	_, err = s.GetOwned(ctx, a.ID, 2)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAssistantStore_ListCountDelete(t *testing.T) {
	ctx := context.Background()
	s := NewAssistantStore()
	for _, owner := range []int64{1, 2, 1} {
		require.NoError(t, s.Create(ctx, &domain.Assistant{OwnerID: owner}))
	}

	list, err := s.ListByOwner(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Less(t, list[0].ID, list[1].ID)

	n, err := s.CountByOwner(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, s.Delete(ctx, list[0].ID))
	assert.ErrorIs(t, s.Delete(ctx, list[0].ID), domain.ErrNotFound)
}

func TestAssistantStore_IncrementQueryCount(t *testing.T) {
	ctx := context.Background()
	s := NewAssistantStore()
	a := &domain.Assistant{OwnerID: 1}
	require.NoError(t, s.Create(ctx, a))

	require.NoError(t, s.IncrementQueryCount(ctx, a.ID))
	got, err := s.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.QueryCount)

	assert.ErrorIs(t, s.IncrementQueryCount(ctx, 42), domain.ErrNotFound)
}
