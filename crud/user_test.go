package crud

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"antigravity/domain"
	"antigravity/errs"
)

func TestUserCreate(t *testing.T) {
	s := testServices(t)
	ctx := context.Background()

	user := &domain.User{
		Name:     "Jane Doe",
		Username: "JaneDoe",
		Email:    "Jane.Doe@Example.com ",
		Password: "password123",
	}
	require.NoError(t, s.User.Create(ctx, user))

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "janedoe", user.Username)
	assert.Equal(t, "jane.doe@example.com", user.Email)
	assert.Empty(t, user.Password)
	err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123"+"test-pepper"))
	assert.NoError(t, err)
}

func TestUserCreateValidation(t *testing.T) {
	s := testServices(t)
	ctx := context.Background()

	tests := []struct {
		name string
		user domain.User
	}{
		{"missing name", domain.User{Username: "jane", Email: "jane@example.com", Password: "password123"}},
		{"bad username", domain.User{Name: "Jane", Username: "j!", Email: "jane@example.com", Password: "password123"}},
		{"missing email", domain.User{Name: "Jane", Username: "jane", Password: "password123"}},
		{"bad email", domain.User{Name: "Jane", Username: "jane", Email: "not-an-email", Password: "password123"}},
		{"missing password", domain.User{Name: "Jane", Username: "jane", Email: "jane@example.com"}},
		{"short password", domain.User{Name: "Jane", Username: "jane", Email: "jane@example.com", Password: "short"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := tt.user
			err := s.User.Create(ctx, &user)
			require.Error(t, err)
			assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
		})
	}
}

func TestUserCreateDuplicate(t *testing.T) {
	s := testServices(t)
	ctx := context.Background()
	createUser(t, s, "jane")

	t.Run("username taken", func(t *testing.T) {
		err := s.User.Create(ctx, &domain.User{
			Name:     "Other Jane",
			Username: "jane",
			Email:    "other@example.com",
			Password: "password123",
		})
		require.Error(t, err)
		assert.Equal(t, errs.ECONFLICT, errs.ErrorCode(err))
	})

	t.Run("email taken", func(t *testing.T) {
		err := s.User.Create(ctx, &domain.User{
			Name:     "Other Jane",
			Username: "otherjane",
			Email:    "jane@example.com",
			Password: "password123",
		})
		require.Error(t, err)
		assert.Equal(t, errs.ECONFLICT, errs.ErrorCode(err))
	})
}

func TestUserUpdate(t *testing.T) {
	s := testServices(t)
	ctx := context.Background()
	user := createUser(t, s, "jane")

	newName := "Jane Renamed"
	newUsername := "janetwo"
	updated, err := s.User.Update(ctx, user.ID, domain.UserUpdate{
		Name:     &newName,
		Username: &newUsername,
	})
	require.NoError(t, err)
	assert.Equal(t, "Jane Renamed", updated.Name)
	assert.Equal(t, "janetwo", updated.Username)
	// Untouched fields keep their stored values.
	assert.Equal(t, "jane@example.com", updated.Email)
	assert.Equal(t, user.PasswordHash, updated.PasswordHash)
}

func TestUserUpdateDuplicateUsername(t *testing.T) {
	s := testServices(t)
	ctx := context.Background()
	createUser(t, s, "jane")
	bob := createUser(t, s, "bob")

	taken := "jane"
	_, err := s.User.Update(ctx, bob.ID, domain.UserUpdate{Username: &taken})
	require.Error(t, err)
	assert.Equal(t, errs.ECONFLICT, errs.ErrorCode(err))
}

func TestUserByUsernameAfterRename(t *testing.T) {
	s := testServices(t)
	ctx := context.Background()
	user := createUser(t, s, "jane")

	newUsername := "janetwo"
	_, err := s.User.Update(ctx, user.ID, domain.UserUpdate{Username: &newUsername})
	require.NoError(t, err)

	// Lookups key strictly on the current username. The old one is gone.
	_, err = s.User.ByUsername(ctx, "jane")
	require.Error(t, err)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))

	found, err := s.User.ByUsername(ctx, "janetwo")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
}

func TestUserAuthenticate(t *testing.T) {
	s := testServices(t)
	ctx := context.Background()
	user := createUser(t, s, "jane")

	t.Run("valid credentials", func(t *testing.T) {
		found, err := s.User.Authenticate(ctx, "jane@example.com", "password123")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := s.User.Authenticate(ctx, "jane@example.com", "wrongpassword")
		require.Error(t, err)
		assert.Equal(t, errs.EUNAUTHORIZED, errs.ErrorCode(err))
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := s.User.Authenticate(ctx, "nobody@example.com", "password123")
		require.Error(t, err)
		assert.Equal(t, errs.EUNAUTHORIZED, errs.ErrorCode(err))
	})
}
