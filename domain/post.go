package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxContentLength is the maximum rune count of post and comment content.
const MaxContentLength = 140

// Post is a piece of content published by a user. Content is immutable
// after creation. Engagement counts are not stored on the post, they are
// derived from the likes / retweets / comments relations at read time.
type Post struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	AuthorID  string    `json:"author_id" gorm:"index;size:36;notNull"`
	Author    User      `json:"-"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate assigns a UUID primary key when none is set.
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// EngagementCounts are the derived per-post aggregates.
type EngagementCounts struct {
	Likes    int64 `json:"likes"`
	Retweets int64 `json:"retweets"`
	Comments int64 `json:"comments"`
}

// FeedItem is a post prepared for a feed: author reduced to the Profile
// projection, counts attached, and, for retweeted entries in a profile
// feed, retweet metadata set. CreatedAt is the effective timestamp feeds
// sort on: the retweet time for retweeted entries, the post's own
// creation time otherwise.
type FeedItem struct {
	ID                  string           `json:"id"`
	AuthorID            string           `json:"author_id"`
	Author              Profile          `json:"author"`
	Content             string           `json:"content"`
	CreatedAt           time.Time        `json:"created_at"`
	Counts              EngagementCounts `json:"counts"`
	IsRetweet           bool             `json:"is_retweet,omitempty"`
	RetweetedBy         string           `json:"retweeted_by,omitempty"`
	RetweetedByUsername string           `json:"retweeted_by_username,omitempty"`
}

// PostService is a set of methods to create posts and assemble feeds.
type PostService interface {
	Create(ctx context.Context, post *Post) error
	ByID(ctx context.Context, id string) (*FeedItem, error)
	All(ctx context.Context) ([]FeedItem, error)
	Feed(ctx context.Context, viewerID string) ([]FeedItem, error)
	ProfileFeed(ctx context.Context, userID string) ([]FeedItem, error)
}
