package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment is a reply attached to a post. Unlike likes and retweets a user
// may comment on the same post any number of times.
type Comment struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	PostID    string    `json:"post_id" gorm:"index;size:36;notNull"`
	AuthorID  string    `json:"author_id" gorm:"size:36;notNull"`
	Author    User      `json:"-"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate assigns a UUID primary key when none is set.
func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// CommentItem is a comment prepared for a response, with the author
// reduced to the Profile projection.
type CommentItem struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	AuthorID  string    `json:"author_id"`
	Author    Profile   `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentService is a set of methods to create and list comments.
type CommentService interface {
	Create(ctx context.Context, comment *Comment) (*CommentItem, error)
	ByPostID(ctx context.Context, postID string) ([]CommentItem, error)
}
