package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/hekate/internal/constants"
)

var (
	// ErrNotFound is returned when no token is stored in the keyring
	ErrNotFound = errors.New("no API token found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Tokens stores the bearer token for one account in the OS keyring.
type Tokens struct {
	service string
	user    string
}

// NewTokens returns the token store used by the CLI.
func NewTokens() *Tokens {
	return &Tokens{service: constants.AppName, user: constants.DefaultKeyringUser}
}

// Token retrieves the stored bearer token.
// Returns ErrNotFound if the user never logged in or logged out.
func (t *Tokens) Token() (string, error) {
	token, err := keyring.Get(t.service, t.user)
	if err != nil {
		if err == keyring.ErrNotFound {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return token, nil
}

// SetToken stores the bearer token, replacing any previous one.
func (t *Tokens) SetToken(token string) error {
	if token == "" {
		return errors.New("token cannot be empty")
	}
	if err := keyring.Set(t.service, t.user, token); err != nil {
		return fmt.Errorf("failed to store token in keyring: %w", err)
	}
	return nil
}

// DeleteToken removes the bearer token.
func (t *Tokens) DeleteToken() error {
	err := keyring.Delete(t.service, t.user)
	if err != nil {
		if err == keyring.ErrNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete token from keyring: %w", err)
	}
	return nil
}

// IsAvailable checks if the OS keyring is available on the current system.
// This is a best-effort check and may not catch all failure scenarios.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || err == keyring.ErrNotFound
}
