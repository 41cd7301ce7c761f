package crud

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"antigravity/domain"
	"antigravity/errs"
)

// LikeService manages Likes. It implements the domain.LikeService interface.
type LikeService struct {
	likeValidator
}

// likeValidator runs validations on incoming Like data.
// On success, it passes the data on to likeGorm.
// Otherwise, it returns the error of the validation that has failed.
type likeValidator struct {
	notifications domain.NotificationService
	log           *zap.Logger
	likeGorm
}

// likeGorm runs CRUD operations on the database using incoming Like data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type likeGorm struct {
	db *gorm.DB
}

// NewLikeService returns an instance of LikeService.
func NewLikeService(db *gorm.DB, notifications domain.NotificationService, log *zap.Logger) *LikeService {
	return &LikeService{
		likeValidator{
			notifications: notifications,
			log:           log,
			likeGorm: likeGorm{
				db: db,
			},
		},
	}
}

// Ensure the LikeService struct properly implements the domain.LikeService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.LikeService = &LikeService{}

// Like records that the user likes the post. A duplicate like loses the
// race on the store's composite key and surfaces as a Conflict. On
// success a LIKE notification goes to the post's author, unless the actor
// is the author.
func (lv *likeValidator) Like(ctx context.Context, userID, postID string) error {
	authorID, err := lv.likeGorm.postAuthorID(ctx, postID)
	if err != nil {
		return err
	}
	like := &domain.Like{
		UserID: userID,
		PostID: postID,
	}
	if err := runLikeValFns(like, lv.userRequired); err != nil {
		return err
	}
	if err := lv.likeGorm.Create(ctx, like); err != nil {
		return err
	}
	if authorID != userID {
		notify(ctx, lv.notifications, lv.log, authorID, userID, domain.NotificationLike, &postID)
	}
	return nil
}

// Unlike removes the user's like from the post. Removing a like that does
// not exist is not an error.
func (lv *likeValidator) Unlike(ctx context.Context, userID, postID string) error {
	return lv.likeGorm.Delete(ctx, userID, postID)
}

// runLikeValFns runs any number of functions of type likeValFn on the passed in Like object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runLikeValFns(like *domain.Like, fns ...likeValFn) error {
	for _, fn := range fns {
		if err := fn(like); err != nil {
			return err
		}
	}
	return nil
}

// A likeValFn is any function that takes in a pointer to a domain.Like object and returns an error.
type likeValFn func(like *domain.Like) error

// userRequired makes sure the acting user's ID is not empty.
func (lv *likeValidator) userRequired(like *domain.Like) error {
	if like.UserID == "" {
		return errs.Errorf(errs.EINVALID, "A user is required.")
	}
	return nil
}

// postAuthorID resolves the liked post's author, failing NotFound when the
// post does not exist.
func (lg *likeGorm) postAuthorID(ctx context.Context, postID string) (string, error) {
	var post domain.Post
	err := lg.db.WithContext(ctx).Select("id", "author_id").First(&post, "id = ?", postID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", errs.Errorf(errs.ENOTFOUND, "The liked post does not exist.")
		}
		return "", err
	}
	return post.AuthorID, nil
}

// Create stores the data from the Like object in a new database record.
func (lg *likeGorm) Create(ctx context.Context, like *domain.Like) error {
	err := lg.db.WithContext(ctx).Create(like).Error
	return conflictOnDuplicate(err, "Already liked this post.")
}

// Delete removes the like for the (user, post) pair, if present.
func (lg *likeGorm) Delete(ctx context.Context, userID, postID string) error {
	return lg.db.WithContext(ctx).
		Delete(&domain.Like{}, "user_id = ? AND post_id = ?", userID, postID).
		Error
}
