package crud

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"antigravity/domain"
	"antigravity/errs"
)

// FollowService manages the social graph. It implements the
// domain.FollowService interface. Clients address the user to follow by
// username, so both mutations resolve the target first.
type FollowService struct {
	followValidator
}

// followValidator runs validations on incoming Follow data.
// On success, it passes the data on to followGorm.
// Otherwise, it returns the error of the validation that has failed.
type followValidator struct {
	notifications domain.NotificationService
	log           *zap.Logger
	followGorm
}

// followGorm runs CRUD operations on the database using incoming Follow data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type followGorm struct {
	db *gorm.DB
}

// NewFollowService returns an instance of FollowService.
func NewFollowService(db *gorm.DB, notifications domain.NotificationService, log *zap.Logger) *FollowService {
	return &FollowService{
		followValidator{
			notifications: notifications,
			log:           log,
			followGorm: followGorm{
				db: db,
			},
		},
	}
}

// Ensure the FollowService struct properly implements the domain.FollowService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.FollowService = &FollowService{}

// Follow creates a follow edge from the acting user to the user holding
// the given username. After the edge is durable it records a FOLLOW
// notification for the target; that second write is best-effort and never
// rolls back the edge.
func (fv *followValidator) Follow(ctx context.Context, followerID, username string) error {
	target, err := fv.followGorm.targetByUsername(ctx, username)
	if err != nil {
		return err
	}
	follow := &domain.Follow{
		FollowerID:  followerID,
		FollowingID: target.ID,
	}
	err = runFollowValFns(follow,
		fv.followerRequired,
		fv.notSelf)
	if err != nil {
		return err
	}
	if err := fv.followGorm.Create(ctx, follow); err != nil {
		return err
	}
	notify(ctx, fv.notifications, fv.log, target.ID, followerID, domain.NotificationFollow, nil)
	return nil
}

// Unfollow removes the follow edge to the user holding the given
// username. Deleting an edge that does not exist is not an error.
func (fv *followValidator) Unfollow(ctx context.Context, followerID, username string) error {
	target, err := fv.followGorm.targetByUsername(ctx, username)
	if err != nil {
		return err
	}
	return fv.followGorm.Delete(ctx, followerID, target.ID)
}

// runFollowValFns runs any number of functions of type followValFn on the passed in Follow object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runFollowValFns(follow *domain.Follow, fns ...followValFn) error {
	for _, fn := range fns {
		if err := fn(follow); err != nil {
			return err
		}
	}
	return nil
}

// A followValFn is any function that takes in a pointer to a domain.Follow object and returns an error.
type followValFn func(follow *domain.Follow) error

// followerRequired makes sure the follower ID is not empty.
func (fv *followValidator) followerRequired(follow *domain.Follow) error {
	if follow.FollowerID == "" {
		return errs.Errorf(errs.EINVALID, "A follower is required.")
	}
	return nil
}

// notSelf rejects self-follows before they reach the store.
func (fv *followValidator) notSelf(follow *domain.Follow) error {
	if follow.FollowerID == follow.FollowingID {
		return errs.Errorf(errs.ECONFLICT, "You cannot follow yourself.")
	}
	return nil
}

// targetByUsername resolves the user a follow action is aimed at.
func (fg *followGorm) targetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := fg.db.WithContext(ctx).First(&user, "username = ?", username).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Errorf(errs.ENOTFOUND, "The user does not exist.")
		}
		return nil, err
	}
	return &user, nil
}

// Create stores the data from the Follow object in a new database record.
func (fg *followGorm) Create(ctx context.Context, follow *domain.Follow) error {
	err := fg.db.WithContext(ctx).Create(follow).Error
	return conflictOnDuplicate(err, "Already following this user.")
}

// Delete removes the edge between the two users, if present.
func (fg *followGorm) Delete(ctx context.Context, followerID, followingID string) error {
	return fg.db.WithContext(ctx).
		Delete(&domain.Follow{}, "follower_id = ? AND following_id = ?", followerID, followingID).
		Error
}

// FollowingIDs returns the IDs of everyone the given user follows.
func (fg *followGorm) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := fg.db.WithContext(ctx).
		Model(&domain.Follow{}).
		Where("follower_id = ?", userID).
		Pluck("following_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Counts returns the user's follower and following edge counts.
func (fg *followGorm) Counts(ctx context.Context, userID string) (domain.FollowCounts, error) {
	var counts domain.FollowCounts
	err := fg.db.WithContext(ctx).
		Model(&domain.Follow{}).
		Where("following_id = ?", userID).
		Count(&counts.Followers).Error
	if err != nil {
		return counts, err
	}
	err = fg.db.WithContext(ctx).
		Model(&domain.Follow{}).
		Where("follower_id = ?", userID).
		Count(&counts.Following).Error
	return counts, err
}
