package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification types. The type names when someone acted on your content
// or followed you.
const (
	NotificationFollow  = "FOLLOW"
	NotificationLike    = "LIKE"
	NotificationRetweet = "RETWEET"
	NotificationComment = "COMMENT"
)

// Notification is a stored activity event for a recipient. PostID is set
// for LIKE / RETWEET / COMMENT, nil for FOLLOW. A notification is never
// created when the actor is the recipient.
type Notification struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	UserID    string    `json:"user_id" gorm:"index;size:36;notNull"`
	ActorID   string    `json:"actor_id" gorm:"size:36;notNull"`
	Actor     User      `json:"-"`
	Type      string    `json:"type" gorm:"size:16;notNull"`
	PostID    *string   `json:"post_id,omitempty" gorm:"size:36"`
	Read      bool      `json:"read" gorm:"column:is_read;notNull;default:false"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate assigns a UUID primary key when none is set.
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}

// NotificationItem is a notification prepared for a response: the actor
// reduced to the Profile projection, and, when a post is involved, only
// that post's content rather than the full post.
type NotificationItem struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Actor       Profile   `json:"actor"`
	PostID      *string   `json:"post_id,omitempty"`
	PostContent *string   `json:"post_content,omitempty"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}

// NotificationService stores and surfaces cross-user activity events.
type NotificationService interface {
	Create(ctx context.Context, recipientID, actorID, notifType string, postID *string) error
	ByUserID(ctx context.Context, userID string) ([]NotificationItem, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}
