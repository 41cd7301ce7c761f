package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"antigravity/errs"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := NewToken("secret", "user-1", time.Hour)
	require.NoError(t, err)

	userID, err := ParseToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := NewToken("secret", "user-1", time.Hour)
	require.NoError(t, err)

	_, err = ParseToken("other-secret", token)
	require.Error(t, err)
	assert.Equal(t, errs.EUNAUTHORIZED, errs.ErrorCode(err))
}

func TestParseTokenExpired(t *testing.T) {
	token, err := NewToken("secret", "user-1", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken("secret", token)
	require.Error(t, err)
	assert.Equal(t, errs.EUNAUTHORIZED, errs.ErrorCode(err))
}

func TestParseTokenGarbage(t *testing.T) {
	_, err := ParseToken("secret", "not-a-token")
	require.Error(t, err)
	assert.Equal(t, errs.EUNAUTHORIZED, errs.ErrorCode(err))
}
