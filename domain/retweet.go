package domain

import (
	"context"
	"time"
)

// Retweet republishes a post on the retweeting user's profile, at most
// once per pair. CreatedAt is the retweet's own timestamp; profile feeds
// order the entry by it instead of the original post time.
type Retweet struct {
	UserID    string    `json:"user_id" gorm:"primaryKey;size:36"`
	PostID    string    `json:"post_id" gorm:"primaryKey;size:36"`
	CreatedAt time.Time `json:"created_at"`
}

// RetweetService is a set of methods to retweet and unretweet posts.
type RetweetService interface {
	Retweet(ctx context.Context, userID, postID string) error
	Unretweet(ctx context.Context, userID, postID string) error
}
