package auth

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/hekate/internal/api"
	"github.com/julianstephens/hekate/internal/apitest"
	"github.com/julianstephens/hekate/internal/cache"
	"github.com/julianstephens/hekate/internal/constants"
	herrors "github.com/julianstephens/hekate/internal/errors"
	"github.com/julianstephens/hekate/internal/keyring"
	"github.com/julianstephens/hekate/internal/models"
	"github.com/julianstephens/hekate/internal/notify"
	"github.com/julianstephens/hekate/internal/optimistic"
	"github.com/julianstephens/hekate/internal/validation"
)

var expiry = time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)

func token(t *testing.T) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(expiry),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	return s
}

type fixture struct {
	srv    *apitest.Server
	svc    *Service
	store  *cache.Store
	tokens *keyring.Tokens
	rec    *notify.Recorder
}

func setup(t *testing.T) *fixture {
	t.Helper()
	gokeyring.MockInit()
	srv := apitest.NewServer(t)
	tokens := keyring.NewTokens()
	client, err := api.New(srv.URL, api.WithTokenSource(tokens))
	require.NoError(t, err)
	store, err := cache.New(cache.Options{TTL: time.Hour})
	require.NoError(t, err)
	rec := &notify.Recorder{}
	return &fixture{
		srv:    srv,
		svc:    New(client, optimistic.NewRunner(store, rec), tokens),
		store:  store,
		tokens: tokens,
		rec:    rec,
	}
}

func (f *fixture) serveLogin(t *testing.T) string {
	t.Helper()
	tok := token(t)
	f.srv.JSON(http.MethodPost, "/auth/login", http.StatusOK, models.AuthResponse{
		AccessToken: tok,
		User:        models.User{ID: "u1", Name: "Ana", Email: "ana@example.com"},
	})
	return tok
}

func TestLoginStoresTokenAndProfile(t *testing.T) {
	f := setup(t)
	tok := f.serveLogin(t)
	require.NoError(t, cache.Put(f.store, cache.RoutineKey(), models.Routine{ID: "old-user"}))

	user, err := f.svc.Login(context.Background(), validation.LoginForm{Email: " Ana@Example.com ", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "Ana", user.Name)

	stored, err := f.tokens.Token()
	require.NoError(t, err)
	assert.Equal(t, tok, stored)

	reqs := f.srv.Find(http.MethodPost, "/auth/login")
	require.Len(t, reqs, 1)
	assert.Empty(t, reqs[0].Header.Get("Authorization"), "login is public")
	var body api.LoginRequest
	reqs[0].Decode(t, &body)
	assert.Equal(t, "ana@example.com", body.Email)

	_, ok := f.store.Get(cache.RoutineKey())
	assert.False(t, ok, "previous account's cache is dropped")
	profile, err := f.svc.Profile(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, "u1", profile.ID)
	assert.Empty(t, f.srv.Find(http.MethodGet, "/auth/profile"), "profile served from cache")
}

func TestLoginValidationSendsNothing(t *testing.T) {
	f := setup(t)
	f.serveLogin(t)

	_, err := f.svc.Login(context.Background(), validation.LoginForm{Email: "nope"})
	var errs validation.Errors
	require.ErrorAs(t, err, &errs)
	assert.Contains(t, errs, validation.FieldEmail)
	assert.Contains(t, errs, validation.FieldPassword)
	assert.Empty(t, f.srv.Requests())
}

func TestLoginFailure(t *testing.T) {
	f := setup(t)
	f.srv.Fail(http.MethodPost, "/auth/login", http.StatusUnauthorized, "Invalid credentials")

	_, err := f.svc.Login(context.Background(), validation.LoginForm{Email: "ana@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, constants.MsgLoginFailed, herrors.UserMessage(err, ""))
	assert.ErrorIs(t, err, api.ErrUnauthorized)
	_, err = f.tokens.Token()
	assert.ErrorIs(t, err, keyring.ErrNotFound)
}

func TestLogout(t *testing.T) {
	f := setup(t)
	f.serveLogin(t)
	_, err := f.svc.Login(context.Background(), validation.LoginForm{Email: "ana@example.com", Password: "secret123"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout())
	_, err = f.tokens.Token()
	assert.ErrorIs(t, err, keyring.ErrNotFound)
	assert.Empty(t, f.store.Keys())

	assert.NoError(t, f.svc.Logout(), "logging out twice is fine")
}

func TestStatus(t *testing.T) {
	f := setup(t)

	st, err := f.svc.Status(expiry.Add(-time.Hour))
	require.NoError(t, err)
	assert.False(t, st.LoggedIn)

	require.NoError(t, f.tokens.SetToken(token(t)))
	st, err = f.svc.Status(expiry.Add(-time.Hour))
	require.NoError(t, err)
	assert.True(t, st.LoggedIn)
	assert.Equal(t, "u1", st.Subject)
	assert.False(t, st.Expired)
	assert.Equal(t, time.Hour, st.Remaining)

	st, err = f.svc.Status(expiry.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, st.Expired)

	require.NoError(t, f.tokens.SetToken("not-a-jwt"))
	st, err = f.svc.Status(expiry)
	assert.Error(t, err)
	assert.True(t, st.LoggedIn)
}

func TestUpdateName(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.tokens.SetToken(token(t)))
	require.NoError(t, cache.Put(f.store, cache.ProfileKey(), models.User{ID: "u1", Name: "Ana"}))
	f.srv.JSON(http.MethodPatch, "/auth/profile", http.StatusOK, models.User{ID: "u1", Name: "Ana María"})
	f.srv.JSON(http.MethodGet, "/auth/profile", http.StatusOK, models.User{ID: "u1", Name: "Ana María"})
	ctx := context.Background()

	_, err := f.svc.UpdateName(ctx, validation.ProfileForm{Name: " "})
	require.Error(t, err)
	assert.Empty(t, f.srv.Find(http.MethodPatch, "/auth/profile"))

	u, err := f.svc.UpdateName(ctx, validation.ProfileForm{Name: "Ana María"})
	require.NoError(t, err)
	assert.Equal(t, "Ana María", u.Name)
	reqs := f.srv.Find(http.MethodPatch, "/auth/profile")
	require.Len(t, reqs, 1)
	assert.NotEmpty(t, reqs[0].Header.Get("Authorization"))

	profile, err := f.svc.Profile(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, "Ana María", profile.Name)
}

func TestUpdateNameFailureRestores(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.tokens.SetToken(token(t)))
	require.NoError(t, cache.Put(f.store, cache.ProfileKey(), models.User{ID: "u1", Name: "Ana"}))
	f.srv.Fail(http.MethodPatch, "/auth/profile", http.StatusInternalServerError, "boom")

	_, err := f.svc.UpdateName(context.Background(), validation.ProfileForm{Name: "Otra"})
	require.Error(t, err)
	u, ok, err := cache.Load[models.User](f.store, cache.ProfileKey())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Ana", u.Name)
	assert.Equal(t, []string{constants.MsgProfileUpdateFailed}, f.rec.Errors())
}

func TestResetPasswordMismatchNeverSubmits(t *testing.T) {
	f := setup(t)
	f.srv.JSON(http.MethodPost, "/auth/reset-password", http.StatusOK, nil)

	err := f.svc.ResetPassword(context.Background(), validation.ResetPasswordForm{
		Email:           "ana@example.com",
		Code:            "123456",
		NewPassword:     "longenough",
		ConfirmPassword: "different1",
	})
	var errs validation.Errors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, constants.MsgPasswordsMismatch, errs.Field(validation.FieldConfirmPassword))
	assert.Empty(t, errs.Field(validation.FieldNewPassword))
	assert.Empty(t, f.srv.Requests())
}

func TestPasswordRecoveryFlow(t *testing.T) {
	f := setup(t)
	f.srv.JSON(http.MethodPost, "/auth/forgot-password", http.StatusOK, nil)
	f.srv.JSON(http.MethodPost, "/auth/verify-reset-code", http.StatusOK, nil)
	f.srv.JSON(http.MethodPost, "/auth/reset-password", http.StatusOK, nil)
	ctx := context.Background()

	require.NoError(t, f.svc.ForgotPassword(ctx, validation.ForgotPasswordForm{Email: "ana@example.com"}))
	require.NoError(t, f.svc.VerifyResetCode(ctx, validation.VerifyCodeForm{Email: "ana@example.com", Code: "123456"}))
	require.NoError(t, f.svc.ResetPassword(ctx, validation.ResetPasswordForm{
		Email: "ana@example.com", Code: "123456", NewPassword: "longenough", ConfirmPassword: "longenough",
	}))

	reqs := f.srv.Find(http.MethodPost, "/auth/reset-password")
	require.Len(t, reqs, 1)
	var body api.ResetPasswordRequest
	reqs[0].Decode(t, &body)
	assert.Equal(t, "longenough", body.NewPassword)
	for _, r := range f.srv.Requests() {
		assert.Empty(t, r.Header.Get("Authorization"), "%s is public", r.Path)
	}
}

func TestVerifyCodeFailure(t *testing.T) {
	f := setup(t)
	f.srv.Fail(http.MethodPost, "/auth/verify-reset-code", http.StatusBadRequest, "Invalid code")

	err := f.svc.VerifyResetCode(context.Background(), validation.VerifyCodeForm{Email: "ana@example.com", Code: "000000"})
	assert.Equal(t, constants.MsgVerifyCodeFailed, herrors.UserMessage(err, ""))
}
