package domain

import (
	"context"
	"time"
)

// Like marks that a user likes a post, at most once per pair.
type Like struct {
	UserID    string    `json:"user_id" gorm:"primaryKey;size:36"`
	PostID    string    `json:"post_id" gorm:"primaryKey;size:36"`
	CreatedAt time.Time `json:"created_at"`
}

// LikeService is a set of methods to like and unlike posts.
type LikeService interface {
	Like(ctx context.Context, userID, postID string) error
	Unlike(ctx context.Context, userID, postID string) error
}
