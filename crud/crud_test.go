package crud

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"antigravity/domain"
)

// testServices assembles the full service container on an in-memory
// sqlite database. TranslateError is on so unique constraint violations
// surface as gorm.ErrDuplicatedKey, same as with postgres.
func testServices(t *testing.T) *Services {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// An in-memory sqlite database exists per connection, so the pool
	// must stay at a single connection.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		domain.User{},
		domain.Post{},
		domain.Follow{},
		domain.Like{},
		domain.Retweet{},
		domain.Comment{},
		domain.Notification{},
	)
	require.NoError(t, err)

	services, err := NewServices(
		db,
		zap.NewNop(),
		WithNotification(),
		WithUser("test-pepper"),
		WithPost(),
		WithFollow(),
		WithLike(),
		WithRetweet(),
		WithComment(),
	)
	require.NoError(t, err)
	return services
}

// createUser registers a user with defaults derived from the username.
func createUser(t *testing.T, s *Services, username string) *domain.User {
	t.Helper()
	user := &domain.User{
		Name:     "User " + username,
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	}
	require.NoError(t, s.User.Create(context.Background(), user))
	return user
}

// createPost publishes a post for the given author.
func createPost(t *testing.T, s *Services, authorID, content string) *domain.Post {
	t.Helper()
	post := &domain.Post{
		AuthorID: authorID,
		Content:  content,
	}
	require.NoError(t, s.Post.Create(context.Background(), post))
	return post
}

// notificationsFor reads a user's notifications straight off the service.
func notificationsFor(t *testing.T, s *Services, userID string) []domain.NotificationItem {
	t.Helper()
	items, err := s.Notification.ByUserID(context.Background(), userID)
	require.NoError(t, err)
	return items
}
