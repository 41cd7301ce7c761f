package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"antigravity/errs"
)

// NewToken issues a signed HS256 bearer token for the given user ID,
// valid for the given duration.
func NewToken(secret, userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken verifies a bearer token and returns the user ID it was
// issued for. Any verification failure, including expiry or an
// unexpected signing method, comes back as an unauthorized error.
func ParseToken(secret, tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errs.Errorf(errs.EUNAUTHORIZED, "Unexpected token signing method.")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", errs.Errorf(errs.EUNAUTHORIZED, "Invalid or expired token.")
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", errs.Errorf(errs.EUNAUTHORIZED, "Invalid or expired token.")
	}
	return claims.Subject, nil
}
