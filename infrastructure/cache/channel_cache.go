package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"yt-channel-report/domain/repository"

	"github.com/redis/go-redis/v9"
)

const channelKeyPrefix = "ytreport:channel:"

var _ repository.IChannelCache = (*ChannelCache)(nil)

// ChannelCache maps channel handles to channel ids. A nil client turns every call into a miss.
type ChannelCache struct {
	rdb *redis.Client
}

func NewChannelCache(rdb *redis.Client) *ChannelCache {
	return &ChannelCache{rdb: rdb}
}

// GetChannelID returns "" on a miss
func (c *ChannelCache) GetChannelID(ctx context.Context, handle string) (string, error) {
	if c.rdb == nil {
		return "", nil
	}
	id, err := c.rdb.Get(ctx, channelKey(handle)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return id, err
}

func (c *ChannelCache) SetChannelID(ctx context.Context, handle, channelID string, ttl time.Duration) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Set(ctx, channelKey(handle), channelID, ttl).Err()
}

// handles are case-insensitive on YouTube
func channelKey(handle string) string {
	return channelKeyPrefix + strings.ToLower(handle)
}
