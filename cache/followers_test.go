package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"antigravity/domain"
)

// stubFollows counts how often the store is hit for counts.
type stubFollows struct {
	counts domain.FollowCounts
	calls  int
}

func (s *stubFollows) Follow(ctx context.Context, followerID, username string) error   { return nil }
func (s *stubFollows) Unfollow(ctx context.Context, followerID, username string) error { return nil }
func (s *stubFollows) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	return nil, nil
}
func (s *stubFollows) Counts(ctx context.Context, userID string) (domain.FollowCounts, error) {
	s.calls++
	return s.counts, nil
}

func testStats(t *testing.T, follows domain.FollowService) (*FollowStats, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewFollowStats(follows, client, time.Minute, zap.NewNop()), mr
}

func TestCountsCacheAside(t *testing.T) {
	follows := &stubFollows{counts: domain.FollowCounts{Followers: 3, Following: 1}}
	stats, _ := testStats(t, follows)
	ctx := context.Background()

	counts, err := stats.Counts(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts.Followers)
	assert.Equal(t, 1, follows.calls)

	// The second read is served from the cache.
	counts, err = stats.Counts(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts.Followers)
	assert.Equal(t, 1, follows.calls)
}

func TestCountsInvalidate(t *testing.T) {
	follows := &stubFollows{counts: domain.FollowCounts{Followers: 3}}
	stats, _ := testStats(t, follows)
	ctx := context.Background()

	_, err := stats.Counts(ctx, "user-1")
	require.NoError(t, err)

	follows.counts.Followers = 4
	stats.Invalidate(ctx, "user-1")

	counts, err := stats.Counts(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), counts.Followers)
	assert.Equal(t, 2, follows.calls)
}

func TestCountsExpiry(t *testing.T) {
	follows := &stubFollows{counts: domain.FollowCounts{Followers: 3}}
	stats, mr := testStats(t, follows)
	ctx := context.Background()

	_, err := stats.Counts(ctx, "user-1")
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = stats.Counts(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, follows.calls)
}

func TestCountsWithoutCache(t *testing.T) {
	follows := &stubFollows{counts: domain.FollowCounts{Followers: 3}}
	stats := NewFollowStats(follows, nil, time.Minute, zap.NewNop())
	ctx := context.Background()

	// With no redis client every read goes to the store.
	for i := 0; i < 3; i++ {
		counts, err := stats.Counts(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, int64(3), counts.Followers)
	}
	assert.Equal(t, 3, follows.calls)

	// Invalidation is a no-op rather than a panic.
	stats.Invalidate(ctx, "user-1")
}
