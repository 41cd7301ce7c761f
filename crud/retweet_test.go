package crud

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"antigravity/domain"
	"antigravity/errs"
)

func TestRetweetNotifiesAuthor(t *testing.T) {
	s := testServices(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice")
	bob := createUser(t, s, "bob")
	post := createPost(t, s, alice.ID, "hello world")

	require.NoError(t, s.Retweet.Retweet(ctx, bob.ID, post.ID))

	items := notificationsFor(t, s, alice.ID)
	require.Len(t, items, 1)
	assert.Equal(t, domain.NotificationRetweet, items[0].Type)
	assert.Equal(t, bob.ID, items[0].Actor.ID)
	require.NotNil(t, items[0].PostID)
	assert.Equal(t, post.ID, *items[0].PostID)
}

func TestRetweetOwnPost(t *testing.T) {
	s := testServices(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice")
	post := createPost(t, s, alice.ID, "hello world")

	require.NoError(t, s.Retweet.Retweet(ctx, alice.ID, post.ID))
	assert.Empty(t, notificationsFor(t, s, alice.ID))
}

func TestRetweetDuplicate(t *testing.T) {
	s := testServices(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice")
	bob := createUser(t, s, "bob")
	post := createPost(t, s, alice.ID, "hello world")

	require.NoError(t, s.Retweet.Retweet(ctx, bob.ID, post.ID))
	err := s.Retweet.Retweet(ctx, bob.ID, post.ID)
	require.Error(t, err)
	assert.Equal(t, errs.ECONFLICT, errs.ErrorCode(err))

	var count int64
	require.NoError(t, s.db.Model(&domain.Retweet{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRetweetMissingPost(t *testing.T) {
	s := testServices(t)
	bob := createUser(t, s, "bob")

	err := s.Retweet.Retweet(context.Background(), bob.ID, "no-such-post")
	require.Error(t, err)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
}

func TestUnretweetIdempotent(t *testing.T) {
	s := testServices(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice")
	bob := createUser(t, s, "bob")
	post := createPost(t, s, alice.ID, "hello world")

	require.NoError(t, s.Retweet.Retweet(ctx, bob.ID, post.ID))
	require.NoError(t, s.Retweet.Unretweet(ctx, bob.ID, post.ID))
	require.NoError(t, s.Retweet.Unretweet(ctx, bob.ID, post.ID))

	var count int64
	require.NoError(t, s.db.Model(&domain.Retweet{}).Count(&count).Error)
	assert.Zero(t, count)
}
