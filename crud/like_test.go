package crud

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"antigravity/domain"
	"antigravity/errs"
)

func TestLikeNotifiesAuthor(t *testing.T) {
	s := testServices(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice")
	bob := createUser(t, s, "bob")
	post := createPost(t, s, alice.ID, "hello world")

	require.NoError(t, s.Like.Like(ctx, bob.ID, post.ID))

	items := notificationsFor(t, s, alice.ID)
	require.Len(t, items, 1)
	assert.Equal(t, domain.NotificationLike, items[0].Type)
	assert.Equal(t, bob.ID, items[0].Actor.ID)
	require.NotNil(t, items[0].PostID)
	assert.Equal(t, post.ID, *items[0].PostID)
}

func TestLikeOwnPost(t *testing.T) {
	s := testServices(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice")
	post := createPost(t, s, alice.ID, "hello world")

	// Liking your own post works, but never notifies.
	require.NoError(t, s.Like.Like(ctx, alice.ID, post.ID))
	assert.Empty(t, notificationsFor(t, s, alice.ID))
}

func TestLikeDuplicate(t *testing.T) {
	s := testServices(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice")
	bob := createUser(t, s, "bob")
	post := createPost(t, s, alice.ID, "hello world")

	require.NoError(t, s.Like.Like(ctx, bob.ID, post.ID))
	err := s.Like.Like(ctx, bob.ID, post.ID)
	require.Error(t, err)
	assert.Equal(t, errs.ECONFLICT, errs.ErrorCode(err))

	var count int64
	require.NoError(t, s.db.Model(&domain.Like{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// The losing attempt must not notify a second time.
	assert.Len(t, notificationsFor(t, s, alice.ID), 1)
}

func TestLikeMissingPost(t *testing.T) {
	s := testServices(t)
	bob := createUser(t, s, "bob")

	err := s.Like.Like(context.Background(), bob.ID, "no-such-post")
	require.Error(t, err)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
}

func TestUnlikeIdempotent(t *testing.T) {
	s := testServices(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice")
	bob := createUser(t, s, "bob")
	post := createPost(t, s, alice.ID, "hello world")

	require.NoError(t, s.Like.Like(ctx, bob.ID, post.ID))
	require.NoError(t, s.Like.Unlike(ctx, bob.ID, post.ID))
	require.NoError(t, s.Like.Unlike(ctx, bob.ID, post.ID))

	var count int64
	require.NoError(t, s.db.Model(&domain.Like{}).Count(&count).Error)
	assert.Zero(t, count)
}
