package crud

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"antigravity/domain"
	"antigravity/errs"
)

func TestNotificationSelfActionIsNoOp(t *testing.T) {
	s := testServices(t)
	alice := createUser(t, s, "alice")

	err := s.Notification.Create(context.Background(), alice.ID, alice.ID, domain.NotificationLike, nil)
	require.NoError(t, err)
	assert.Empty(t, notificationsFor(t, s, alice.ID))
}

func TestNotificationValidation(t *testing.T) {
	s := testServices(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice")
	bob := createUser(t, s, "bob")

	t.Run("unknown type", func(t *testing.T) {
		err := s.Notification.Create(ctx, alice.ID, bob.ID, "POKE", nil)
		require.Error(t, err)
		assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
	})

	t.Run("missing actor", func(t *testing.T) {
		err := s.Notification.Create(ctx, alice.ID, "", domain.NotificationLike, nil)
		require.Error(t, err)
		assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
	})
}

func TestNotificationsByUserID(t *testing.T) {
	s := testServices(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice")
	bob := createUser(t, s, "bob")
	post := createPost(t, s, alice.ID, "hello world")

	now := time.Now()
	older := domain.Notification{
		UserID:    alice.ID,
		ActorID:   bob.ID,
		Type:      domain.NotificationFollow,
		CreatedAt: now.Add(-time.Hour),
	}
	newer := domain.Notification{
		UserID:    alice.ID,
		ActorID:   bob.ID,
		Type:      domain.NotificationLike,
		PostID:    &post.ID,
		CreatedAt: now,
	}
	require.NoError(t, s.db.Create(&older).Error)
	require.NoError(t, s.db.Create(&newer).Error)

	items, err := s.Notification.ByUserID(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	// Newest first, actor reduced to the profile projection.
	assert.Equal(t, domain.NotificationLike, items[0].Type)
	assert.Equal(t, bob.ID, items[0].Actor.ID)
	assert.Equal(t, "bob", items[0].Actor.Username)
	require.NotNil(t, items[0].PostContent)
	assert.Equal(t, "hello world", *items[0].PostContent)

	assert.Equal(t, domain.NotificationFollow, items[1].Type)
	assert.Nil(t, items[1].PostID)
	assert.Nil(t, items[1].PostContent)
}

func TestMarkAllRead(t *testing.T) {
	s := testServices(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice")
	bob := createUser(t, s, "bob")
	carol := createUser(t, s, "carol")

	require.NoError(t, s.Notification.Create(ctx, alice.ID, bob.ID, domain.NotificationFollow, nil))
	require.NoError(t, s.Notification.Create(ctx, alice.ID, carol.ID, domain.NotificationFollow, nil))
	require.NoError(t, s.Notification.Create(ctx, bob.ID, carol.ID, domain.NotificationFollow, nil))

	count, err := s.Notification.MarkAllRead(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	for _, item := range notificationsFor(t, s, alice.ID) {
		assert.True(t, item.Read)
	}

	// Bob's notification is untouched.
	bobItems := notificationsFor(t, s, bob.ID)
	require.Len(t, bobItems, 1)
	assert.False(t, bobItems[0].Read)

	// A second pass finds nothing unread.
	count, err = s.Notification.MarkAllRead(ctx, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}
