package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vnioa/StudyMate-sub010/internal/models"
)

// RedisCache keeps a bounded list of recent messages per room in Redis.
// Entries are pushed newest-first and trimmed to the capacity, with the
// TTL refreshed on every append.
type RedisCache struct {
	client   *redis.Client
	capacity int
	ttl      time.Duration
}

// NewRedisCache constructs a RedisCache.
func NewRedisCache(addr string, capacity int, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client:   redis.NewClient(&redis.Options{Addr: addr}),
		capacity: capacity,
		ttl:      ttl,
	}
}

func roomKey(roomID int) string {
	return fmt.Sprintf("room:%d:messages", roomID)
}

// Append pushes the message and trims the list to capacity.
func (c *RedisCache) Append(ctx context.Context, roomID int, msg models.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	key := roomKey(roomID)
	pipe := c.client.TxPipeline()
	pipe.LPush(ctx, key, payload)
	pipe.LTrim(ctx, key, 0, int64(c.capacity-1))
	pipe.Expire(ctx, key, c.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// Recent returns the cached messages in chronological order.
func (c *RedisCache) Recent(ctx context.Context, roomID int) ([]models.Message, error) {
	raw, err := c.client.LRange(ctx, roomKey(roomID), 0, int64(c.capacity-1)).Result()
	if err != nil {
		return nil, err
	}

	// stored newest-first, decode in reverse for chronological order
	msgs := make([]models.Message, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		var msg models.Message
		if err := json.Unmarshal([]byte(raw[i]), &msg); err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// Invalidate deletes the room's entry.
func (c *RedisCache) Invalidate(ctx context.Context, roomID int) error {
	return c.client.Del(ctx, roomKey(roomID)).Err()
}

// Close releases the underlying client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
