package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/storefrontlabs/storefront-backend/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionTestConfig() config.SessionConfig {
	return config.SessionConfig{
		CartTTL:    time.Hour,
		CookieName: "sf_session",
	}
}

func TestSessionIssuesCookieForNewVisitor(t *testing.T) {
	var seenSessionID string
	handler := Session(sessionTestConfig(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenSessionID = SessionIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cart", nil))

	require.NotEmpty(t, seenSessionID)
	_, err := uuid.Parse(seenSessionID)
	require.NoError(t, err)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sf_session", cookies[0].Name)
	assert.Equal(t, seenSessionID, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, 3600, cookies[0].MaxAge)
}

func TestSessionReusesValidCookie(t *testing.T) {
	existing := uuid.NewString()

	var seenSessionID string
	handler := Session(sessionTestConfig(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenSessionID = SessionIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(&http.Cookie{Name: "sf_session", Value: existing})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, existing, seenSessionID)
	assert.Empty(t, rec.Result().Cookies())
}

func TestSessionReplacesMalformedCookie(t *testing.T) {
	var seenSessionID string
	handler := Session(sessionTestConfig(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenSessionID = SessionIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(&http.Cookie{Name: "sf_session", Value: "not-a-uuid"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.NotEmpty(t, seenSessionID)
	assert.NotEqual(t, "not-a-uuid", seenSessionID)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, seenSessionID, cookies[0].Value)
}
