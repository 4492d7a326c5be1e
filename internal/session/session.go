// Package session inspects bearer tokens issued by the Hekate API.
//
// Tokens are never verified here; the server is the authority. The client
// only peeks at the claims to warn about expired sessions before a request
// fails with 401.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// ErrMalformedToken is returned when the token is not a parseable JWT.
var ErrMalformedToken = errors.New("malformed API token")

// Info summarises what the client can learn from a token without its key.
type Info struct {
	Subject   string
	ExpiresAt time.Time // zero when the token carries no exp claim
}

// Expired reports whether the token expired before now.
func (i Info) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}

// Remaining returns how long the token stays valid, or 0 when expired or
// without expiry.
func (i Info) Remaining(now time.Time) time.Duration {
	if i.ExpiresAt.IsZero() || i.Expired(now) {
		return 0
	}
	return i.ExpiresAt.Sub(now)
}

// Inspect parses the token's registered claims without verifying it.
func Inspect(token string) (Info, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	info := Info{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info, nil
}
