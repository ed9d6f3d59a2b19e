package cache

import (
	"context"
	"sync"

	"github.com/vnioa/StudyMate-sub010/internal/models"
)

// MemoryCache is an in-process MessageCache used when Redis is not
// configured. Each room holds at most capacity messages, oldest
// discarded first.
type MemoryCache struct {
	mu       sync.RWMutex
	rooms    map[int][]models.Message
	capacity int
}

// NewMemoryCache constructs a MemoryCache.
func NewMemoryCache(capacity int) *MemoryCache {
	if capacity <= 0 {
		capacity = 50
	}
	return &MemoryCache{
		rooms:    make(map[int][]models.Message),
		capacity: capacity,
	}
}

// Append adds the message, dropping the oldest entry once at capacity.
func (c *MemoryCache) Append(_ context.Context, roomID int, msg models.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := append(c.rooms[roomID], msg)
	if len(entry) > c.capacity {
		entry = entry[len(entry)-c.capacity:]
	}
	c.rooms[roomID] = entry
	return nil
}

// Recent returns a copy of the cached messages in chronological order.
func (c *MemoryCache) Recent(_ context.Context, roomID int) ([]models.Message, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry := c.rooms[roomID]
	out := make([]models.Message, len(entry))
	copy(out, entry)
	return out, nil
}

// Invalidate drops the room's entry.
func (c *MemoryCache) Invalidate(_ context.Context, roomID int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.rooms, roomID)
	return nil
}
