package api_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/hekate/internal/api"
	"github.com/julianstephens/hekate/internal/apitest"
	"github.com/julianstephens/hekate/internal/constants"
	"github.com/julianstephens/hekate/internal/models"
)

func TestNewRejectsBadURL(t *testing.T) {
	_, err := api.New("ftp://example.com")
	assert.Error(t, err)

	c, err := api.New("https://api.hekate.app/")
	require.NoError(t, err)
	assert.Equal(t, "https://api.hekate.app", c.BaseURL())
}

func TestAuthenticatedRequestsCarryBearerToken(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.JSON(http.MethodGet, "/auth/profile", http.StatusOK, models.User{ID: "u1", Name: "Ana"})

	user, err := srv.Client(t).Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ana", user.Name)

	reqs := srv.Find(http.MethodGet, "/auth/profile")
	require.Len(t, reqs, 1)
	assert.Equal(t, "Bearer "+apitest.Token, reqs[0].Header.Get("Authorization"))
	assert.NotEmpty(t, reqs[0].Header.Get(constants.HeaderRequestID))
}

func TestPublicEndpointsOmitToken(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.JSON(http.MethodPost, "/auth/login", http.StatusOK, models.AuthResponse{AccessToken: "jwt"})
	srv.JSON(http.MethodPost, "/auth/register", http.StatusCreated, models.AuthResponse{AccessToken: "jwt"})
	srv.JSON(http.MethodPost, "/auth/forgot-password", http.StatusOK, nil)
	srv.JSON(http.MethodPost, "/auth/verify-reset-code", http.StatusOK, nil)
	srv.JSON(http.MethodPost, "/auth/reset-password", http.StatusOK, nil)

	c := srv.Client(t)
	ctx := context.Background()

	res, err := c.Login(ctx, api.LoginRequest{Email: "a@b.co", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "jwt", res.AccessToken)
	_, err = c.Register(ctx, api.RegisterRequest{Name: "Ana", Email: "a@b.co", Password: "secret123"})
	require.NoError(t, err)
	require.NoError(t, c.ForgotPassword(ctx, "a@b.co"))
	require.NoError(t, c.VerifyResetCode(ctx, "a@b.co", "123456"))
	require.NoError(t, c.ResetPassword(ctx, api.ResetPasswordRequest{Email: "a@b.co", Code: "123456", NewPassword: "newsecret"}))

	for _, r := range srv.Requests() {
		assert.Empty(t, r.Header.Get("Authorization"), "%s %s should be unauthenticated", r.Method, r.Path)
	}

	var body api.ResetPasswordRequest
	srv.Find(http.MethodPost, "/auth/reset-password")[0].Decode(t, &body)
	assert.Equal(t, "newsecret", body.NewPassword)
}

func TestMissingTokenFailsBeforeSending(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.JSON(http.MethodGet, "/dreams", http.StatusOK, []models.Dream{})

	c, err := api.New(srv.URL)
	require.NoError(t, err)

	_, err = c.ListDreams(context.Background(), false)
	assert.ErrorIs(t, err, api.ErrNotAuthenticated)
	assert.Empty(t, srv.Requests())
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        any
		wantMessage string
		wantIs      error
	}{
		{
			name:        "string message",
			status:      http.StatusBadRequest,
			body:        map[string]any{"message": "title should not be empty"},
			wantMessage: "title should not be empty",
		},
		{
			name:        "validation list",
			status:      http.StatusUnprocessableEntity,
			body:        map[string]any{"message": []string{"title too long", "text too long"}},
			wantMessage: "title too long; text too long",
		},
		{
			name:        "unauthorized",
			status:      http.StatusUnauthorized,
			body:        map[string]any{"message": "Unauthorized"},
			wantMessage: "Unauthorized",
			wantIs:      api.ErrUnauthorized,
		},
		{
			name:        "no body",
			status:      http.StatusNotFound,
			body:        nil,
			wantMessage: "Not Found",
			wantIs:      api.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := apitest.NewServer(t)
			srv.JSON(http.MethodGet, "/dreams/{id}", tt.status, tt.body)

			_, err := srv.Client(t).GetDream(context.Background(), "d1")
			require.Error(t, err)

			var apiErr *api.Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.Equal(t, "/dreams/d1", apiErr.Path)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
			assert.False(t, api.IsNetworkError(err))
		})
	}
}

func TestIsNetworkError(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.Handle(http.MethodGet, "/daily-reads", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("not json"))
	})
	_, err := srv.Client(t).TodayRead(context.Background())
	require.Error(t, err)
	assert.False(t, api.IsNetworkError(err), "a bad body still got a response")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = srv.Client(t).TodayRead(ctx)
	require.Error(t, err)
	assert.False(t, api.IsNetworkError(err), "cancellation is not a network failure")

	assert.False(t, api.IsNetworkError(nil))
	assert.False(t, api.IsNetworkError(api.ErrNotAuthenticated))

	srv.Close()
	_, err = srv.Client(t).TodayRead(context.Background())
	require.Error(t, err)
	assert.True(t, api.IsNetworkError(err))
}

func TestTimeout(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.Handle(http.MethodGet, "/daily-reads", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	c, err := api.New(srv.URL, api.WithTokenSource(api.StaticToken(apitest.Token)), api.WithTimeout(50*time.Millisecond))
	require.NoError(t, err)

	_, err = c.TodayRead(context.Background())
	require.Error(t, err)
	assert.True(t, api.IsNetworkError(err))
}

func TestDreamEndpoints(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.JSON(http.MethodGet, "/dreams", http.StatusOK, []models.Dream{{ID: "d1", Title: "Viajar"}})
	srv.JSON(http.MethodPost, "/dreams", http.StatusCreated, models.Dream{ID: "d2", Title: "Casa"})
	srv.JSON(http.MethodPatch, "/dreams/{id}", http.StatusOK, models.Dream{ID: "d2", Title: "Casa grande"})
	srv.JSON(http.MethodPost, "/dreams/{id}/visualize", http.StatusCreated, models.Visualization{ID: "v1", DreamID: "d2"})
	srv.JSON(http.MethodPost, "/dreams/{id}/archive", http.StatusOK, models.Dream{ID: "d2", IsArchived: true})
	srv.JSON(http.MethodDelete, "/dreams/{id}", http.StatusNoContent, nil)

	c := srv.Client(t)
	ctx := context.Background()

	list, err := c.ListDreams(ctx, true)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "archived=true", srv.Find(http.MethodGet, "/dreams")[0].Query)

	created, err := c.CreateDream(ctx, models.DreamInput{Title: "Casa", Text: "con jardín"})
	require.NoError(t, err)
	assert.Equal(t, "d2", created.ID)

	updated, err := c.UpdateDream(ctx, "d2", models.DreamInput{Title: "Casa grande"})
	require.NoError(t, err)
	assert.Equal(t, "Casa grande", updated.Title)

	vis, err := c.VisualizeDream(ctx, "d2")
	require.NoError(t, err)
	assert.Equal(t, "d2", vis.DreamID)

	archived, err := c.ArchiveDream(ctx, "d2")
	require.NoError(t, err)
	assert.True(t, archived.IsArchived)

	require.NoError(t, c.DeleteDream(ctx, "d2"))
	assert.Len(t, srv.Find(http.MethodDelete, "/dreams/d2"), 1)
}

func TestUploadDreamImage(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.Handle(http.MethodPost, "/dream-images/dream/{dreamId}", func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if err != nil {
			apitest.WriteJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
			return
		}
		defer file.Close()
		content, _ := io.ReadAll(file)
		apitest.WriteJSON(w, http.StatusCreated, models.DreamImage{
			ID:       "img1",
			DreamID:  apitest.Vars(r)["dreamId"],
			FileName: header.Filename,
			FileSize: int64(len(content)),
			MimeType: header.Header.Get("Content-Type"),
		})
	})

	img, err := srv.Client(t).UploadDreamImage(context.Background(), "d1", "beach.png", "image/png", strings.NewReader("PNGDATA"))
	require.NoError(t, err)
	assert.Equal(t, "d1", img.DreamID)
	assert.Equal(t, "beach.png", img.FileName)
	assert.Equal(t, int64(7), img.FileSize)
	assert.Equal(t, "image/png", img.MimeType)
}

func TestRoutineEndpoints(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.JSON(http.MethodPut, "/private-routines/blocks/{id}/status", http.StatusOK, models.RoutineBlock{ID: "b1", Status: models.StatusDone})
	srv.JSON(http.MethodPut, "/private-routines/days/{id}/reorder", http.StatusOK, nil)

	c := srv.Client(t)
	ctx := context.Background()

	block, err := c.SetBlockStatus(ctx, "b1", models.StatusDone)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDone, block.Status)

	var statusBody map[string]string
	srv.Find(http.MethodPut, "/private-routines/blocks/b1/status")[0].Decode(t, &statusBody)
	assert.Equal(t, "DONE", statusBody["status"])

	require.NoError(t, c.ReorderBlocks(ctx, "day1", []string{"c", "a", "b"}))
	var reorderBody map[string][]string
	srv.Find(http.MethodPut, "/private-routines/days/day1/reorder")[0].Decode(t, &reorderBody)
	assert.Equal(t, []string{"c", "a", "b"}, reorderBody["blockIds"])
}
