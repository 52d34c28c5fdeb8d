package app_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/chatbilling/internal/app"
)

func memorySettings() app.Settings {
	return app.Settings{App: app.Config{
		Env:                "development",
		Name:               "chatbilling",
		Storage:            app.StorageMemory,
		RenewalLock:        app.LockNone,
		RenewalSchedule:    "@daily",
		RenewalSuccessRate: 0.8,
		JWTSecret:          "test-secret",
		CORSOrigins:        []string{"*"},
	}}
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	cfg := memorySettings().App
	require.NoError(t, cfg.Validate())

	cfg.Storage = "sqlite"
	assert.ErrorIs(t, cfg.Validate(), app.ErrInvalidStorage)

	cfg = memorySettings().App
	cfg.RenewalLock = "etcd"
	assert.ErrorIs(t, cfg.Validate(), app.ErrInvalidRenewalLock)
}

func TestNew_Memory(t *testing.T) {
	t.Parallel()

	a, err := app.New(context.Background(), memorySettings(), discard())
	require.NoError(t, err)
	defer a.Close()

	h, err := a.Handler()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	token, err := a.Tokens.Issue("user-1")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Dashboard stats retrieved successfully","data":{"total_messages":0,"total_subscriptions":0,"remaining_quota":3}}`, rec.Body.String())

	require.NotNil(t, a.Accounts)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/signup",
		strings.NewReader(`{"email":"ops@example.com","password":"secret1"}`)))
	assert.Equal(t, http.StatusCreated, rec.Code)

	s, err := a.Scheduler()
	require.NoError(t, err)
	require.NoError(t, s.Stop(context.Background()))
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()

	s := memorySettings()
	s.App.Storage = "sqlite"
	_, err := app.New(context.Background(), s, discard())
	assert.ErrorIs(t, err, app.ErrInvalidStorage)

	s = memorySettings()
	s.App.JWTSecret = ""
	a, err := app.New(context.Background(), s, discard())
	require.NoError(t, err)
	_, err = a.Handler()
	assert.ErrorIs(t, err, app.ErrMissingJWTSecret)
}
