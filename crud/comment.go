package crud

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"antigravity/domain"
	"antigravity/errs"
)

// CommentService manages Comments. It implements the domain.CommentService
// interface.
type CommentService struct {
	commentValidator
}

// commentValidator runs validations on incoming Comment data.
// On success, it passes the data on to commentGorm.
// Otherwise, it returns the error of the validation that has failed.
type commentValidator struct {
	notifications domain.NotificationService
	log           *zap.Logger
	commentGorm
}

// commentGorm runs CRUD operations on the database using incoming Comment data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type commentGorm struct {
	db *gorm.DB
}

// NewCommentService returns an instance of CommentService.
func NewCommentService(db *gorm.DB, notifications domain.NotificationService, log *zap.Logger) *CommentService {
	return &CommentService{
		commentValidator{
			notifications: notifications,
			log:           log,
			commentGorm: commentGorm{
				db: db,
			},
		},
	}
}

// Ensure the CommentService struct properly implements the domain.CommentService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.CommentService = &CommentService{}

// Create validates and stores a comment, returning it with the author
// reduced to the Profile projection. The post's author gets a COMMENT
// notification unless they wrote the comment themselves.
func (cv *commentValidator) Create(ctx context.Context, comment *domain.Comment) (*domain.CommentItem, error) {
	authorID, err := cv.commentGorm.postAuthorID(ctx, comment.PostID)
	if err != nil {
		return nil, err
	}
	err = runCommentValFns(comment,
		cv.authorRequired,
		cv.contentMinLength,
		cv.contentMaxLength)
	if err != nil {
		return nil, err
	}
	item, err := cv.commentGorm.Create(ctx, comment)
	if err != nil {
		return nil, err
	}
	if authorID != comment.AuthorID {
		notify(ctx, cv.notifications, cv.log, authorID, comment.AuthorID, domain.NotificationComment, &comment.PostID)
	}
	return item, nil
}

// runCommentValFns runs any number of functions of type commentValFn on the passed in Comment object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runCommentValFns(comment *domain.Comment, fns ...commentValFn) error {
	for _, fn := range fns {
		if err := fn(comment); err != nil {
			return err
		}
	}
	return nil
}

// A commentValFn is any function that takes in a pointer to a domain.Comment object and returns an error.
type commentValFn func(comment *domain.Comment) error

// authorRequired makes sure the commenting user's ID is not empty.
func (cv *commentValidator) authorRequired(comment *domain.Comment) error {
	if comment.AuthorID == "" {
		return errs.Errorf(errs.EINVALID, "An author is required.")
	}
	return nil
}

// contentMinLength makes sure the comment's content is not empty.
func (cv *commentValidator) contentMinLength(comment *domain.Comment) error {
	if strings.TrimSpace(comment.Content) == "" {
		return errs.Errorf(errs.EINVALID, "Comment content must not be empty.")
	}
	return nil
}

// contentMaxLength makes sure the comment's content does not exceed the maximum content length.
func (cv *commentValidator) contentMaxLength(comment *domain.Comment) error {
	if utf8.RuneCountInString(comment.Content) > domain.MaxContentLength {
		return errs.Errorf(errs.EINVALID, "Comment content max length is %d characters.", domain.MaxContentLength)
	}
	return nil
}

// postAuthorID resolves the commented post's author, failing NotFound when
// the post does not exist.
func (cg *commentGorm) postAuthorID(ctx context.Context, postID string) (string, error) {
	var post domain.Post
	err := cg.db.WithContext(ctx).Select("id", "author_id").First(&post, "id = ?", postID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", errs.Errorf(errs.ENOTFOUND, "The commented post does not exist.")
		}
		return "", err
	}
	return post.AuthorID, nil
}

// Create stores the comment and reloads it with its author association,
// so the response carries the author projection.
func (cg *commentGorm) Create(ctx context.Context, comment *domain.Comment) (*domain.CommentItem, error) {
	if err := cg.db.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, err
	}
	if err := cg.db.WithContext(ctx).Preload("Author").First(comment, "id = ?", comment.ID).Error; err != nil {
		return nil, err
	}
	item := commentItem(comment)
	return &item, nil
}

// ByPostID retrieves all comments on a post, newest first, each with the
// author reduced to the Profile projection.
func (cg *commentGorm) ByPostID(ctx context.Context, postID string) ([]domain.CommentItem, error) {
	var comments []domain.Comment
	err := cg.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Preload("Author").
		Order("created_at desc").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	items := make([]domain.CommentItem, len(comments))
	for i := range comments {
		items[i] = commentItem(&comments[i])
	}
	return items, nil
}

// commentItem maps a loaded comment to its response shape.
func commentItem(comment *domain.Comment) domain.CommentItem {
	return domain.CommentItem{
		ID:        comment.ID,
		PostID:    comment.PostID,
		AuthorID:  comment.AuthorID,
		Author:    comment.Author.Profile(),
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
	}
}
