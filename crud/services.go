package crud

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"antigravity/domain"
	"antigravity/errs"
)

// A ServicesConfig is any function that takes in a pointer to a Services
// object and returns an error. It wraps the constructor of a crud service,
// so that main.go can assemble exactly the services it needs through
// functional options.
type ServicesConfig func(*Services) error

// Services is a container holding pointers to all the crud services.
// They share the database connection and logger provided by Services.
type Services struct {
	db  *gorm.DB
	log *zap.Logger

	User         *UserService
	Post         *PostService
	Follow       *FollowService
	Like         *LikeService
	Retweet      *RetweetService
	Comment      *CommentService
	Notification *NotificationService
}

// NewServices returns a new Services object, containing any crud services
// it's told to create by the passed in ServicesConfig functions. Options
// that emit notifications (WithFollow, WithLike, WithRetweet, WithComment)
// must come after WithNotification.
func NewServices(db *gorm.DB, log *zap.Logger, cfgs ...ServicesConfig) (*Services, error) {
	s := Services{
		db:  db,
		log: log,
	}
	for _, cfg := range cfgs {
		if err := cfg(&s); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

// WithUser wraps the constructor of UserService, NewUserService.
func WithUser(pepper string) ServicesConfig {
	return func(s *Services) error {
		s.User = NewUserService(s.db, pepper)
		return nil
	}
}

// WithNotification wraps the constructor of NotificationService.
func WithNotification() ServicesConfig {
	return func(s *Services) error {
		s.Notification = NewNotificationService(s.db)
		return nil
	}
}

// WithPost wraps the constructor of PostService, NewPostService.
func WithPost() ServicesConfig {
	return func(s *Services) error {
		s.Post = NewPostService(s.db)
		return nil
	}
}

// WithFollow wraps the constructor of FollowService, NewFollowService.
func WithFollow() ServicesConfig {
	return func(s *Services) error {
		if s.Notification == nil {
			return fmt.Errorf("crud: WithFollow requires WithNotification first")
		}
		s.Follow = NewFollowService(s.db, s.Notification, s.log)
		return nil
	}
}

// WithLike wraps the constructor of LikeService, NewLikeService.
func WithLike() ServicesConfig {
	return func(s *Services) error {
		if s.Notification == nil {
			return fmt.Errorf("crud: WithLike requires WithNotification first")
		}
		s.Like = NewLikeService(s.db, s.Notification, s.log)
		return nil
	}
}

// WithRetweet wraps the constructor of RetweetService, NewRetweetService.
func WithRetweet() ServicesConfig {
	return func(s *Services) error {
		if s.Notification == nil {
			return fmt.Errorf("crud: WithRetweet requires WithNotification first")
		}
		s.Retweet = NewRetweetService(s.db, s.Notification, s.log)
		return nil
	}
}

// WithComment wraps the constructor of CommentService, NewCommentService.
func WithComment() ServicesConfig {
	return func(s *Services) error {
		if s.Notification == nil {
			return fmt.Errorf("crud: WithComment requires WithNotification first")
		}
		s.Comment = NewCommentService(s.db, s.Notification, s.log)
		return nil
	}
}

// conflictOnDuplicate translates a store-level unique constraint violation
// into a domain Conflict carrying the given message. Any other error
// passes through unchanged.
func conflictOnDuplicate(err error, message string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errs.Errorf(errs.ECONFLICT, message)
	}
	return err
}

// notify records a notification after a successful primary write. The two
// writes are not atomic: a failed notification is logged and dropped, it
// never rolls back the action that triggered it.
func notify(ctx context.Context, ns domain.NotificationService, log *zap.Logger, recipientID, actorID, notifType string, postID *string) {
	if err := ns.Create(ctx, recipientID, actorID, notifType, postID); err != nil {
		log.Warn("notification write failed",
			zap.String("type", notifType),
			zap.String("recipient_id", recipientID),
			zap.String("actor_id", actorID),
			zap.Error(err),
		)
	}
}
