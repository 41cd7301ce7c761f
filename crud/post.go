package crud

import (
	"context"
	"errors"
	"sort"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"antigravity/domain"
	"antigravity/errs"
)

// PostService manages Posts and assembles feeds.
// It implements the domain.PostService interface.
type PostService struct {
	postValidator
}

// postValidator runs validations on incoming Post data.
// On success, it passes the data on to postGorm.
// Otherwise, it returns the error of the validation that has failed.
type postValidator struct {
	postGorm
}

// postGorm runs CRUD operations on the database using incoming Post data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type postGorm struct {
	db *gorm.DB
}

// NewPostService returns an instance of PostService.
func NewPostService(db *gorm.DB) *PostService {
	return &PostService{
		postValidator{
			postGorm{
				db: db,
			},
		},
	}
}

// Ensure the PostService struct properly implements the domain.PostService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.PostService = &PostService{}

// Create runs validations needed for creating new Post database records.
func (pv *postValidator) Create(ctx context.Context, post *domain.Post) error {
	err := runPostValFns(post,
		pv.authorRequired,
		pv.contentMinLength,
		pv.contentMaxLength)
	if err != nil {
		return err
	}
	return pv.postGorm.Create(ctx, post)
}

// runPostValFns runs any number of functions of type postValFn on the passed in Post object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runPostValFns(post *domain.Post, fns ...postValFn) error {
	for _, fn := range fns {
		if err := fn(post); err != nil {
			return err
		}
	}
	return nil
}

// A postValFn is any function that takes in a pointer to a domain.Post object and returns an error.
type postValFn func(post *domain.Post) error

// authorRequired makes sure the author ID is not empty.
func (pv *postValidator) authorRequired(post *domain.Post) error {
	if post.AuthorID == "" {
		return errs.Errorf(errs.EINVALID, "An author is required.")
	}
	return nil
}

// contentMinLength makes sure that the post's content is not empty.
func (pv *postValidator) contentMinLength(post *domain.Post) error {
	if strings.TrimSpace(post.Content) == "" {
		return errs.Errorf(errs.EINVALID, "Post content must not be empty.")
	}
	return nil
}

// contentMaxLength makes sure that the post's content does not exceed the maximum content length.
func (pv *postValidator) contentMaxLength(post *domain.Post) error {
	if utf8.RuneCountInString(post.Content) > domain.MaxContentLength {
		return errs.Errorf(errs.EINVALID, "Post content max length is %d characters.", domain.MaxContentLength)
	}
	return nil
}

// Create stores the data from the Post object in a new database record
// and reloads it with its author association.
func (pg *postGorm) Create(ctx context.Context, post *domain.Post) error {
	if err := pg.db.WithContext(ctx).Create(post).Error; err != nil {
		return err
	}
	return pg.db.WithContext(ctx).Preload("Author").First(post, "id = ?", post.ID).Error
}

// ByID retrieves a single post with author projection and engagement counts.
// If the record doesn't exist, it returns ENOTFOUND.
func (pg *postGorm) ByID(ctx context.Context, id string) (*domain.FeedItem, error) {
	var post domain.Post
	err := pg.db.WithContext(ctx).Preload("Author").First(&post, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Errorf(errs.ENOTFOUND, "The post does not exist.")
		}
		return nil, err
	}
	counts, err := pg.countsForPosts(ctx, []string{post.ID})
	if err != nil {
		return nil, err
	}
	item := feedItem(&post, counts)
	return &item, nil
}

// All assembles the global feed: every post, newest first, with author
// projections and engagement counts. Discovery surface, no ranking beyond
// recency.
func (pg *postGorm) All(ctx context.Context) ([]domain.FeedItem, error) {
	var posts []domain.Post
	err := pg.db.WithContext(ctx).
		Preload("Author").
		Order("created_at desc").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return pg.feedItems(ctx, posts)
}

// Feed assembles the personalized feed for a viewer: posts authored by
// the viewer and by everyone the viewer follows, newest first by post
// creation time. Only original posts are pulled in; retweets by followed
// users do not surface here.
func (pg *postGorm) Feed(ctx context.Context, viewerID string) ([]domain.FeedItem, error) {
	var authorIDs []string
	err := pg.db.WithContext(ctx).
		Model(&domain.Follow{}).
		Where("follower_id = ?", viewerID).
		Pluck("following_id", &authorIDs).Error
	if err != nil {
		return nil, err
	}
	authorIDs = append(authorIDs, viewerID)

	var posts []domain.Post
	err = pg.db.WithContext(ctx).
		Where("author_id IN ?", authorIDs).
		Preload("Author").
		Order("created_at desc").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return pg.feedItems(ctx, posts)
}

// ProfileFeed assembles a user's profile timeline: posts they authored
// merged with posts they retweeted. Retweeted entries are flagged and
// keyed by the retweet timestamp instead of the original post time, then
// the combined set is sorted once, descending, on that effective
// timestamp. Ties carry no guaranteed order.
func (pg *postGorm) ProfileFeed(ctx context.Context, userID string) ([]domain.FeedItem, error) {
	var authored []domain.Post
	err := pg.db.WithContext(ctx).
		Where("author_id = ?", userID).
		Preload("Author").
		Find(&authored).Error
	if err != nil {
		return nil, err
	}

	var retweets []domain.Retweet
	err = pg.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&retweets).Error
	if err != nil {
		return nil, err
	}

	var retweeted []domain.Post
	if len(retweets) > 0 {
		postIDs := make([]string, len(retweets))
		for i, rt := range retweets {
			postIDs[i] = rt.PostID
		}
		err = pg.db.WithContext(ctx).
			Where("id IN ?", postIDs).
			Preload("Author").
			Find(&retweeted).Error
		if err != nil {
			return nil, err
		}
	}

	allIDs := make([]string, 0, len(authored)+len(retweeted))
	for i := range authored {
		allIDs = append(allIDs, authored[i].ID)
	}
	for i := range retweeted {
		allIDs = append(allIDs, retweeted[i].ID)
	}
	counts, err := pg.countsForPosts(ctx, allIDs)
	if err != nil {
		return nil, err
	}

	items := make([]domain.FeedItem, 0, len(allIDs))
	for i := range authored {
		items = append(items, feedItem(&authored[i], counts))
	}
	if len(retweeted) > 0 {
		// The retweeter is the profile owner; one lookup covers all entries.
		var retweeter domain.User
		if err := pg.db.WithContext(ctx).First(&retweeter, "id = ?", userID).Error; err != nil {
			return nil, err
		}
		byID := make(map[string]*domain.Post, len(retweeted))
		for i := range retweeted {
			byID[retweeted[i].ID] = &retweeted[i]
		}
		for _, rt := range retweets {
			post, ok := byID[rt.PostID]
			if !ok {
				continue
			}
			item := feedItem(post, counts)
			item.CreatedAt = rt.CreatedAt
			item.IsRetweet = true
			item.RetweetedBy = retweeter.Name
			item.RetweetedByUsername = retweeter.Username
			items = append(items, item)
		}
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

// feedItems attaches batched engagement counts to an ordered post list.
func (pg *postGorm) feedItems(ctx context.Context, posts []domain.Post) ([]domain.FeedItem, error) {
	ids := make([]string, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
	}
	counts, err := pg.countsForPosts(ctx, ids)
	if err != nil {
		return nil, err
	}
	items := make([]domain.FeedItem, len(posts))
	for i := range posts {
		items[i] = feedItem(&posts[i], counts)
	}
	return items, nil
}

// countRow receives one GROUP BY aggregate row.
type countRow struct {
	PostID string
	C      int64
}

// countsForPosts computes like / retweet / comment counts for the given
// posts in three grouped queries. Counts are always derived from the
// relations at read time, never from stored counters.
func (pg *postGorm) countsForPosts(ctx context.Context, postIDs []string) (map[string]domain.EngagementCounts, error) {
	counts := make(map[string]domain.EngagementCounts, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}

	var rows []countRow
	err := pg.db.WithContext(ctx).
		Model(&domain.Like{}).
		Select("post_id, count(*) as c").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		c := counts[row.PostID]
		c.Likes = row.C
		counts[row.PostID] = c
	}

	rows = rows[:0]
	err = pg.db.WithContext(ctx).
		Model(&domain.Retweet{}).
		Select("post_id, count(*) as c").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		c := counts[row.PostID]
		c.Retweets = row.C
		counts[row.PostID] = c
	}

	rows = rows[:0]
	err = pg.db.WithContext(ctx).
		Model(&domain.Comment{}).
		Select("post_id, count(*) as c").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		c := counts[row.PostID]
		c.Comments = row.C
		counts[row.PostID] = c
	}

	return counts, nil
}

// feedItem maps a loaded post to its feed shape with counts attached.
func feedItem(post *domain.Post, counts map[string]domain.EngagementCounts) domain.FeedItem {
	return domain.FeedItem{
		ID:        post.ID,
		AuthorID:  post.AuthorID,
		Author:    post.Author.Profile(),
		Content:   post.Content,
		CreatedAt: post.CreatedAt,
		Counts:    counts[post.ID],
	}
}
