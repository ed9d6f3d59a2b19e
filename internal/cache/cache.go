package cache

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vnioa/StudyMate-sub010/internal/models"
)

// MessageCache is a look-aside cache of the most recent messages per
// room. It is a performance optimization only: Recent returning an
// empty list (or the cache being unavailable) must never affect
// correctness, readers fall back to the database.
type MessageCache interface {
	// Append records a freshly sent message for the room.
	Append(ctx context.Context, roomID int, msg models.Message) error
	// Recent returns the cached messages for the room in chronological
	// order. An absent entry yields an empty slice and no error.
	Recent(ctx context.Context, roomID int) ([]models.Message, error)
	// Invalidate drops the room's entry entirely.
	Invalidate(ctx context.Context, roomID int) error
}

// New selects the Redis cache when an address is configured and falls
// back to the in-process bounded cache otherwise.
func New(redisAddr string, capacity int, ttl time.Duration) MessageCache {
	if redisAddr == "" {
		log.Info().Msg("redis not configured, using in-memory message cache")
		return NewMemoryCache(capacity)
	}
	log.Info().Str("addr", redisAddr).Msg("using redis message cache")
	return NewRedisCache(redisAddr, capacity, ttl)
}
