package api

import (
	"context"
	"net/http"

	"github.com/julianstephens/hekate/internal/models"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, in LoginRequest) (models.AuthResponse, error) {
	var out models.AuthResponse
	err := c.do(ctx, request{method: http.MethodPost, path: "/auth/login", public: true, body: in}, &out)
	return out, err
}

// Register creates an account and returns its first token.
func (c *Client) Register(ctx context.Context, in RegisterRequest) (models.AuthResponse, error) {
	var out models.AuthResponse
	err := c.do(ctx, request{method: http.MethodPost, path: "/auth/register", public: true, body: in}, &out)
	return out, err
}

// LoginWithGoogle exchanges a Google id token for an API token.
func (c *Client) LoginWithGoogle(ctx context.Context, idToken string) (models.AuthResponse, error) {
	var out models.AuthResponse
	body := map[string]string{"idToken": idToken}
	err := c.do(ctx, request{method: http.MethodPost, path: "/auth/google", public: true, body: body}, &out)
	return out, err
}

// Profile fetches the current user.
func (c *Client) Profile(ctx context.Context) (models.User, error) {
	var out models.User
	err := c.do(ctx, request{method: http.MethodGet, path: "/auth/profile"}, &out)
	return out, err
}

// UpdateProfileName patches the only user field the client may change.
func (c *Client) UpdateProfileName(ctx context.Context, name string) (models.User, error) {
	var out models.User
	body := map[string]string{"name": name}
	err := c.do(ctx, request{method: http.MethodPatch, path: "/auth/profile", body: body}, &out)
	return out, err
}

// ForgotPassword asks the server to email a reset code.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.do(ctx, request{method: http.MethodPost, path: "/auth/forgot-password", public: true, body: body}, nil)
}

// VerifyResetCode checks a reset code before the new password is chosen.
func (c *Client) VerifyResetCode(ctx context.Context, email, code string) error {
	body := map[string]string{"email": email, "code": code}
	return c.do(ctx, request{method: http.MethodPost, path: "/auth/verify-reset-code", public: true, body: body}, nil)
}

// ResetPassword sets a new password using a verified code.
func (c *Client) ResetPassword(ctx context.Context, in ResetPasswordRequest) error {
	return c.do(ctx, request{method: http.MethodPost, path: "/auth/reset-password", public: true, body: in}, nil)
}
