package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vnioa/StudyMate-sub010/internal/models"
)

func TestMemoryCacheRecentEmptyRoom(t *testing.T) {
	c := NewMemoryCache(10)

	msgs, err := c.Recent(context.Background(), 1)
	require.NoError(t, err)
	require.Empty(t, msgs)
}

func TestMemoryCacheKeepsInsertionOrder(t *testing.T) {
	c := NewMemoryCache(10)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		require.NoError(t, c.Append(ctx, 1, models.Message{ID: i, RoomID: 1}))
	}

	msgs, err := c.Recent(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, []int{msgs[0].ID, msgs[1].ID, msgs[2].ID})
}

func TestMemoryCacheBoundsCapacity(t *testing.T) {
	c := NewMemoryCache(3)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		require.NoError(t, c.Append(ctx, 1, models.Message{ID: i, RoomID: 1}))
	}

	msgs, err := c.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	// oldest entries evicted first
	require.Equal(t, 3, msgs[0].ID)
	require.Equal(t, 5, msgs[2].ID)
}

func TestMemoryCacheInvalidate(t *testing.T) {
	c := NewMemoryCache(10)
	ctx := context.Background()

	require.NoError(t, c.Append(ctx, 1, models.Message{ID: 1, RoomID: 1}))
	require.NoError(t, c.Invalidate(ctx, 1))

	msgs, err := c.Recent(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, msgs)
}

func TestMemoryCacheIsolatesRooms(t *testing.T) {
	c := NewMemoryCache(10)
	ctx := context.Background()

	require.NoError(t, c.Append(ctx, 1, models.Message{ID: 1, RoomID: 1}))
	require.NoError(t, c.Append(ctx, 2, models.Message{ID: 2, RoomID: 2}))

	msgs, err := c.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, 2, msgs[0].ID)
}

func TestNewFallsBackToMemory(t *testing.T) {
	c := New("", 10, 0)
	_, ok := c.(*MemoryCache)
	require.True(t, ok)
}
