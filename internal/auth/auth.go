// Package auth handles the account: sessions, profile and password
// recovery. The bearer token lives in the OS keyring; the profile lives in
// the query cache like any other server state.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/hekate/internal/api"
	"github.com/julianstephens/hekate/internal/cache"
	"github.com/julianstephens/hekate/internal/constants"
	herrors "github.com/julianstephens/hekate/internal/errors"
	"github.com/julianstephens/hekate/internal/keyring"
	"github.com/julianstephens/hekate/internal/logger"
	"github.com/julianstephens/hekate/internal/models"
	"github.com/julianstephens/hekate/internal/optimistic"
	"github.com/julianstephens/hekate/internal/session"
	"github.com/julianstephens/hekate/internal/validation"
)

// TokenStore persists the bearer token between runs.
type TokenStore interface {
	Token() (string, error)
	SetToken(token string) error
	DeleteToken() error
}

type Service struct {
	api    *api.Client
	store  *cache.Store
	runner *optimistic.Runner
	tokens TokenStore
}

func New(client *api.Client, runner *optimistic.Runner, tokens TokenStore) *Service {
	return &Service{
		api:    client,
		store:  runner.Store(),
		runner: runner,
		tokens: tokens,
	}
}

// Login exchanges credentials for a token and stores it.
func (s *Service) Login(ctx context.Context, form validation.LoginForm) (models.User, error) {
	var user models.User
	err := validation.Submit(form, func() error {
		resp, err := s.api.Login(ctx, api.LoginRequest{
			Email:    normalizeEmail(form.Email),
			Password: form.Password,
		})
		if err != nil {
			return herrors.Wrap(err, constants.MsgLoginFailed)
		}
		user, err = s.startSession(resp)
		return err
	})
	return user, err
}

// Register creates an account and logs into it.
func (s *Service) Register(ctx context.Context, form validation.RegisterForm) (models.User, error) {
	var user models.User
	err := validation.Submit(form, func() error {
		resp, err := s.api.Register(ctx, api.RegisterRequest{
			Name:     strings.TrimSpace(form.Name),
			Email:    normalizeEmail(form.Email),
			Password: form.Password,
		})
		if err != nil {
			return herrors.Wrap(err, constants.MsgRegisterFailed)
		}
		user, err = s.startSession(resp)
		return err
	})
	return user, err
}

// LoginWithGoogle exchanges an id token obtained from Google sign-in.
func (s *Service) LoginWithGoogle(ctx context.Context, idToken string) (models.User, error) {
	if strings.TrimSpace(idToken) == "" {
		return models.User{}, errors.New("google id token is required")
	}
	resp, err := s.api.LoginWithGoogle(ctx, idToken)
	if err != nil {
		return models.User{}, herrors.Wrap(err, constants.MsgLoginFailed)
	}
	return s.startSession(resp)
}

// startSession stores the token and seeds the cache with the profile. Any
// data cached for a previous account is dropped.
func (s *Service) startSession(resp models.AuthResponse) (models.User, error) {
	if resp.AccessToken == "" {
		return models.User{}, &herrors.UserError{
			Message: constants.MsgLoginFailed,
			Cause:   errors.New("server returned an empty access token"),
		}
	}
	if err := s.tokens.SetToken(resp.AccessToken); err != nil {
		return models.User{}, fmt.Errorf("saving session: %w", err)
	}
	s.store.Clear()
	if err := cache.Put(s.store, cache.ProfileKey(), resp.User); err != nil {
		logger.Warn("Failed to cache profile", "error", err)
	}
	logger.Info("Logged in", "user", resp.User.ID)
	return resp.User, nil
}

// Logout forgets the token and every cached query. Logging out twice is not
// an error.
func (s *Service) Logout() error {
	s.store.Clear()
	if err := s.tokens.DeleteToken(); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// Profile returns the current user.
func (s *Service) Profile(ctx context.Context, refresh bool) (models.User, error) {
	key := cache.ProfileKey()
	if !refresh {
		if u, ok, err := cache.Load[models.User](s.store, key); err == nil && ok {
			return u, nil
		}
	}

	u, err := s.api.Profile(ctx)
	if err != nil {
		return models.User{}, herrors.Wrap(err, constants.MsgProfileFailed)
	}
	if err := cache.Put(s.store, key, u); err != nil {
		logger.Warn("Failed to cache profile", "error", err)
	}
	return u, nil
}

// UpdateName renames the user, showing the new name right away.
func (s *Service) UpdateName(ctx context.Context, form validation.ProfileForm) (models.User, error) {
	if err := form.Validate(); err != nil {
		return models.User{}, err
	}
	name := strings.TrimSpace(form.Name)

	return optimistic.Run(ctx, s.runner, optimistic.Mutation[models.User]{
		Key:     "profile",
		Queries: []cache.Key{cache.ProfileKey()},
		Done: func(store *cache.Store) bool {
			u, ok, err := cache.Load[models.User](store, cache.ProfileKey())
			return err == nil && ok && u.Name == name
		},
		Patch: func(store *cache.Store) error {
			_, err := cache.Update(store, cache.ProfileKey(), func(u *models.User) error {
				u.Name = name
				return nil
			})
			return err
		},
		Request: func(ctx context.Context) (models.User, error) {
			return s.api.UpdateProfileName(ctx, name)
		},
		Reconcile:    []cache.Key{cache.ProfileKey()},
		ErrorMessage: constants.MsgProfileUpdateFailed,
	})
}

// ForgotPassword asks the server to email a reset code.
func (s *Service) ForgotPassword(ctx context.Context, form validation.ForgotPasswordForm) error {
	return validation.Submit(form, func() error {
		err := s.api.ForgotPassword(ctx, normalizeEmail(form.Email))
		return herrors.Wrap(err, constants.MsgForgotPasswordFailed)
	})
}

// VerifyResetCode checks the emailed code before a new password is chosen.
func (s *Service) VerifyResetCode(ctx context.Context, form validation.VerifyCodeForm) error {
	return validation.Submit(form, func() error {
		err := s.api.VerifyResetCode(ctx, normalizeEmail(form.Email), strings.TrimSpace(form.Code))
		return herrors.Wrap(err, constants.MsgVerifyCodeFailed)
	})
}

// ResetPassword sets the new password. Nothing is sent unless the form is
// valid, including the confirmation matching.
func (s *Service) ResetPassword(ctx context.Context, form validation.ResetPasswordForm) error {
	return validation.Submit(form, func() error {
		err := s.api.ResetPassword(ctx, api.ResetPasswordRequest{
			Email:       normalizeEmail(form.Email),
			Code:        strings.TrimSpace(form.Code),
			NewPassword: form.NewPassword,
		})
		return herrors.Wrap(err, constants.MsgResetPasswordFailed)
	})
}

// Status describes the stored session.
type Status struct {
	LoggedIn  bool
	Subject   string
	ExpiresAt time.Time
	Expired   bool
	Remaining time.Duration
}

// Status inspects the stored token without calling the server.
func (s *Service) Status(now time.Time) (Status, error) {
	token, err := s.tokens.Token()
	if errors.Is(err, keyring.ErrNotFound) {
		return Status{}, nil
	}
	if err != nil {
		return Status{}, err
	}

	info, err := session.Inspect(token)
	if err != nil {
		return Status{LoggedIn: true}, err
	}
	return Status{
		LoggedIn:  true,
		Subject:   info.Subject,
		ExpiresAt: info.ExpiresAt,
		Expired:   info.Expired(now),
		Remaining: info.Remaining(now),
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
