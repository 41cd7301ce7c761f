package domain

import (
	"context"
	"time"
)

// Follow is a directed edge between two users. The composite primary key
// makes the pair unique at the store level, so concurrent duplicate
// follows race on the constraint and exactly one wins.
type Follow struct {
	FollowerID  string    `json:"follower_id" gorm:"primaryKey;size:36"`
	FollowingID string    `json:"following_id" gorm:"primaryKey;size:36"`
	CreatedAt   time.Time `json:"created_at"`
}

// FollowCounts are the aggregate edge counts shown on a profile.
type FollowCounts struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
}

// FollowService manipulates the social graph. Follow and Unfollow resolve
// the target by username, matching how clients address other users.
type FollowService interface {
	Follow(ctx context.Context, followerID, username string) error
	Unfollow(ctx context.Context, followerID, username string) error
	FollowingIDs(ctx context.Context, userID string) ([]string, error)
	Counts(ctx context.Context, userID string) (FollowCounts, error)
}
