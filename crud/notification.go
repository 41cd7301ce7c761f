package crud

import (
	"context"

	"gorm.io/gorm"

	"antigravity/domain"
	"antigravity/errs"
)

// NotificationService stores and surfaces activity events.
// It implements the domain.NotificationService interface.
type NotificationService struct {
	notificationValidator
}

// notificationValidator runs validations on incoming Notification data.
// On success, it passes the data on to notificationGorm.
type notificationValidator struct {
	notificationGorm
}

// notificationGorm runs CRUD operations on the database using incoming
// Notification data. It assumes that data has been validated.
type notificationGorm struct {
	db *gorm.DB
}

// NewNotificationService returns an instance of NotificationService.
func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{
		notificationValidator{
			notificationGorm{
				db: db,
			},
		},
	}
}

// Ensure the NotificationService struct properly implements the
// domain.NotificationService interface.
var _ domain.NotificationService = &NotificationService{}

// Create records an activity event for a recipient. Self-actions are the
// one intentional silent no-op in the system: acting on your own content
// never produces a notification row.
func (nv *notificationValidator) Create(ctx context.Context, recipientID, actorID, notifType string, postID *string) error {
	if recipientID == actorID {
		return nil
	}
	notification := &domain.Notification{
		UserID:  recipientID,
		ActorID: actorID,
		Type:    notifType,
		PostID:  postID,
	}
	err := runNotificationValFns(notification,
		nv.recipientRequired,
		nv.actorRequired,
		nv.typeKnown)
	if err != nil {
		return err
	}
	return nv.notificationGorm.Create(ctx, notification)
}

// runNotificationValFns runs any number of functions of type
// notificationValFn on the passed in Notification object.
func runNotificationValFns(notification *domain.Notification, fns ...notificationValFn) error {
	for _, fn := range fns {
		if err := fn(notification); err != nil {
			return err
		}
	}
	return nil
}

// A notificationValFn is any function that takes in a pointer to a
// domain.Notification object and returns an error.
type notificationValFn func(notification *domain.Notification) error

// recipientRequired makes sure the recipient ID is not empty.
func (nv *notificationValidator) recipientRequired(notification *domain.Notification) error {
	if notification.UserID == "" {
		return errs.Errorf(errs.EINVALID, "A notification recipient is required.")
	}
	return nil
}

// actorRequired makes sure the actor ID is not empty.
func (nv *notificationValidator) actorRequired(notification *domain.Notification) error {
	if notification.ActorID == "" {
		return errs.Errorf(errs.EINVALID, "A notification actor is required.")
	}
	return nil
}

// typeKnown makes sure the notification type is one of the known kinds.
func (nv *notificationValidator) typeKnown(notification *domain.Notification) error {
	switch notification.Type {
	case domain.NotificationFollow, domain.NotificationLike,
		domain.NotificationRetweet, domain.NotificationComment:
		return nil
	}
	return errs.Errorf(errs.EINVALID, "Unknown notification type %q.", notification.Type)
}

// Create stores the data from the Notification object in a new database record.
func (ng *notificationGorm) Create(ctx context.Context, notification *domain.Notification) error {
	return ng.db.WithContext(ctx).Create(notification).Error
}

// ByUserID retrieves all notifications for a user, newest first. Each
// entry carries the actor reduced to the Profile projection and, when a
// post is involved, that post's content only.
func (ng *notificationGorm) ByUserID(ctx context.Context, userID string) ([]domain.NotificationItem, error) {
	var notifications []domain.Notification
	err := ng.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Actor").
		Order("created_at desc").
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}

	// One batched lookup for the related post contents.
	var postIDs []string
	seen := make(map[string]bool)
	for _, n := range notifications {
		if n.PostID != nil && !seen[*n.PostID] {
			seen[*n.PostID] = true
			postIDs = append(postIDs, *n.PostID)
		}
	}
	contents := make(map[string]string, len(postIDs))
	if len(postIDs) > 0 {
		var posts []domain.Post
		err := ng.db.WithContext(ctx).
			Select("id", "content").
			Where("id IN ?", postIDs).
			Find(&posts).Error
		if err != nil {
			return nil, err
		}
		for _, p := range posts {
			contents[p.ID] = p.Content
		}
	}

	items := make([]domain.NotificationItem, len(notifications))
	for i, n := range notifications {
		item := domain.NotificationItem{
			ID:        n.ID,
			Type:      n.Type,
			Actor:     n.Actor.Profile(),
			PostID:    n.PostID,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		}
		if n.PostID != nil {
			if content, ok := contents[*n.PostID]; ok {
				item.PostContent = &content
			}
		}
		items[i] = item
	}
	return items, nil
}

// MarkAllRead flips all of the user's unread notifications to read and
// returns the number of rows affected.
func (ng *notificationGorm) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res := ng.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}
