package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"antigravity/domain"
)

// FollowStats serves the follower / following counts shown on profile
// pages through a cache-aside redis entry per user. Counts are a
// best-effort signal and tolerate skew, so a TTL plus invalidation on
// follow changes is all the freshness the page needs. With no redis
// client configured every read goes straight to the store.
type FollowStats struct {
	follows domain.FollowService
	cache   *redis.Client
	ttl     time.Duration
	log     *zap.Logger
}

// NewFollowStats returns a FollowStats reading through the given follow
// service. cache may be nil to disable caching.
func NewFollowStats(follows domain.FollowService, cache *redis.Client, ttl time.Duration, log *zap.Logger) *FollowStats {
	return &FollowStats{
		follows: follows,
		cache:   cache,
		ttl:     ttl,
		log:     log,
	}
}

// Counts returns the user's follower and following counts, from cache
// when possible. Cache failures degrade to a direct count, never into a
// request error.
func (s *FollowStats) Counts(ctx context.Context, userID string) (domain.FollowCounts, error) {
	if s.cache == nil {
		return s.follows.Counts(ctx, userID)
	}

	key := statsKey(userID)
	if data, err := s.cache.Get(ctx, key).Bytes(); err == nil {
		var counts domain.FollowCounts
		if uErr := json.Unmarshal(data, &counts); uErr == nil {
			return counts, nil
		}
	}

	counts, err := s.follows.Counts(ctx, userID)
	if err != nil {
		return counts, err
	}
	if payload, err := json.Marshal(counts); err == nil {
		if err := s.cache.Set(ctx, key, payload, s.ttl).Err(); err != nil {
			s.log.Warn("follow stats cache write failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return counts, nil
}

// Invalidate drops the cached counts for the given users. Called after a
// follow or unfollow for both ends of the edge.
func (s *FollowStats) Invalidate(ctx context.Context, userIDs ...string) {
	if s.cache == nil || len(userIDs) == 0 {
		return
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = statsKey(id)
	}
	if err := s.cache.Del(ctx, keys...).Err(); err != nil {
		s.log.Warn("follow stats cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

func statsKey(userID string) string {
	return fmt.Sprintf("follow_stats:%s", userID)
}
