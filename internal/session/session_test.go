package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("server-secret"))
	require.NoError(t, err)
	return token
}

func TestInspect(t *testing.T) {
	exp := time.Date(2026, 10, 20, 12, 0, 0, 0, time.UTC)
	token := signed(t, jwt.RegisteredClaims{Subject: "user-1", ExpiresAt: jwt.NewNumericDate(exp)})

	info, err := Inspect(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", info.Subject)
	assert.True(t, info.ExpiresAt.Equal(exp))

	before := exp.Add(-time.Hour)
	assert.False(t, info.Expired(before))
	assert.Equal(t, time.Hour, info.Remaining(before))

	assert.True(t, info.Expired(exp))
	assert.Zero(t, info.Remaining(exp.Add(time.Minute)))
}

func TestInspectWithoutExpiry(t *testing.T) {
	info, err := Inspect(signed(t, jwt.RegisteredClaims{Subject: "user-2"}))
	require.NoError(t, err)

	assert.True(t, info.ExpiresAt.IsZero())
	assert.False(t, info.Expired(time.Now()))
	assert.Zero(t, info.Remaining(time.Now()))
}

func TestInspectMalformed(t *testing.T) {
	_, err := Inspect("not-a-jwt")
	assert.ErrorIs(t, err, ErrMalformedToken)
}
