package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a registered account. The Password field only carries the
// plaintext between the request and the hashing validator, it is never
// stored. Users are disabled, never hard-deleted.
type User struct {
	ID           string     `json:"id" gorm:"primaryKey;size:36"`
	Name         string     `json:"name"`
	Username     string     `json:"username" gorm:"uniqueIndex;size:30"`
	Email        string     `json:"email" gorm:"uniqueIndex;size:254"`
	Password     string     `json:"-" gorm:"-"`
	PasswordHash string     `json:"-"`
	ProfilePic   string     `json:"profile_pic"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DisabledAt   *time.Time `json:"disabled_at,omitempty"`
}

// BeforeCreate assigns a UUID primary key when none is set.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Profile is the reduced user projection embedded in posts, comments and
// notifications. It is the only user shape that ever leaves the system
// attached to someone else's content; it must never grow credential fields.
type Profile struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Username   string `json:"username"`
	ProfilePic string `json:"profile_pic"`
}

// Profile returns the reduced projection of the user.
func (u *User) Profile() Profile {
	return Profile{
		ID:         u.ID,
		Name:       u.Name,
		Username:   u.Username,
		ProfilePic: u.ProfilePic,
	}
}

// UserUpdate carries a partial profile update. Nil fields are untouched.
type UserUpdate struct {
	Name       *string `json:"name"`
	Username   *string `json:"username"`
	Email      *string `json:"email"`
	Password   *string `json:"password"`
	ProfilePic *string `json:"profile_pic"`
}

// UserService is a set of methods to manipulate and work with the User model.
type UserService interface {
	ByID(ctx context.Context, id string) (*User, error)
	ByUsername(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, id string, upd UserUpdate) (*User, error)
	Authenticate(ctx context.Context, email, password string) (*User, error)
}
