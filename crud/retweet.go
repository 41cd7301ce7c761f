package crud

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"antigravity/domain"
	"antigravity/errs"
)

// RetweetService manages Retweets. It implements the domain.RetweetService
// interface.
type RetweetService struct {
	retweetValidator
}

// retweetValidator runs validations on incoming Retweet data.
// On success, it passes the data on to retweetGorm.
// Otherwise, it returns the error of the validation that has failed.
type retweetValidator struct {
	notifications domain.NotificationService
	log           *zap.Logger
	retweetGorm
}

// retweetGorm runs CRUD operations on the database using incoming Retweet data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type retweetGorm struct {
	db *gorm.DB
}

// NewRetweetService returns an instance of RetweetService.
func NewRetweetService(db *gorm.DB, notifications domain.NotificationService, log *zap.Logger) *RetweetService {
	return &RetweetService{
		retweetValidator{
			notifications: notifications,
			log:           log,
			retweetGorm: retweetGorm{
				db: db,
			},
		},
	}
}

// Ensure the RetweetService struct properly implements the domain.RetweetService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.RetweetService = &RetweetService{}

// Retweet republishes the post on the user's profile. The retweet carries
// its own timestamp, which profile feeds later sort on. Duplicates
// surface as a Conflict; on success the author gets a RETWEET
// notification unless the actor is the author.
func (rv *retweetValidator) Retweet(ctx context.Context, userID, postID string) error {
	authorID, err := rv.retweetGorm.postAuthorID(ctx, postID)
	if err != nil {
		return err
	}
	retweet := &domain.Retweet{
		UserID: userID,
		PostID: postID,
	}
	if err := runRetweetValFns(retweet, rv.userRequired); err != nil {
		return err
	}
	if err := rv.retweetGorm.Create(ctx, retweet); err != nil {
		return err
	}
	if authorID != userID {
		notify(ctx, rv.notifications, rv.log, authorID, userID, domain.NotificationRetweet, &postID)
	}
	return nil
}

// Unretweet removes the user's retweet of the post. Removing a retweet
// that does not exist is not an error.
func (rv *retweetValidator) Unretweet(ctx context.Context, userID, postID string) error {
	return rv.retweetGorm.Delete(ctx, userID, postID)
}

// runRetweetValFns runs any number of functions of type retweetValFn on the passed in Retweet object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runRetweetValFns(retweet *domain.Retweet, fns ...retweetValFn) error {
	for _, fn := range fns {
		if err := fn(retweet); err != nil {
			return err
		}
	}
	return nil
}

// A retweetValFn is any function that takes in a pointer to a domain.Retweet object and returns an error.
type retweetValFn func(retweet *domain.Retweet) error

// userRequired makes sure the acting user's ID is not empty.
func (rv *retweetValidator) userRequired(retweet *domain.Retweet) error {
	if retweet.UserID == "" {
		return errs.Errorf(errs.EINVALID, "A user is required.")
	}
	return nil
}

// postAuthorID resolves the retweeted post's author, failing NotFound when
// the post does not exist.
func (rg *retweetGorm) postAuthorID(ctx context.Context, postID string) (string, error) {
	var post domain.Post
	err := rg.db.WithContext(ctx).Select("id", "author_id").First(&post, "id = ?", postID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", errs.Errorf(errs.ENOTFOUND, "The retweeted post does not exist.")
		}
		return "", err
	}
	return post.AuthorID, nil
}

// Create stores the data from the Retweet object in a new database record.
func (rg *retweetGorm) Create(ctx context.Context, retweet *domain.Retweet) error {
	err := rg.db.WithContext(ctx).Create(retweet).Error
	return conflictOnDuplicate(err, "Already retweeted this post.")
}

// Delete removes the retweet for the (user, post) pair, if present.
func (rg *retweetGorm) Delete(ctx context.Context, userID, postID string) error {
	return rg.db.WithContext(ctx).
		Delete(&domain.Retweet{}, "user_id = ? AND post_id = ?", userID, postID).
		Error
}
