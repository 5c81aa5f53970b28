package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRateLimiter struct {
	counts map[string]int64
	err    error
}

func newStubRateLimiter() *stubRateLimiter {
	return &stubRateLimiter{counts: map[string]int64{}}
}

func (s *stubRateLimiter) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	if s.err != nil {
		return false, 0, s.err
	}
	s.counts[scope]++
	return s.counts[scope] <= limit, s.counts[scope], nil
}

func loginRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.RemoteAddr = "203.0.113.7:52114"
	return req
}

func TestAuthRateLimitBlocksRepeatedIPs(t *testing.T) {
	store := newStubRateLimiter()
	policy := NewAuthRateLimitPolicy("login", time.Minute, 2, 0)

	var passed int
	handler := AuthRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		passed++
	}))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, loginRequest(`{"username":"shopper"}`))
		if i < 2 {
			assert.Equal(t, http.StatusOK, rec.Code)
		} else {
			assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		}
	}
	assert.Equal(t, 2, passed)
}

func TestAuthRateLimitCountsUsernamesAcrossIPs(t *testing.T) {
	store := newStubRateLimiter()
	policy := NewAuthRateLimitPolicy("login", time.Minute, 0, 1)

	handler := AuthRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	first := httptest.NewRecorder()
	req := loginRequest(`{"username":"Shopper"}`)
	handler.ServeHTTP(first, req)
	require.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	other := loginRequest(`{"username":"  shopper "}`)
	other.RemoteAddr = "198.51.100.9:40000"
	handler.ServeHTTP(second, other)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestAuthRateLimitPreservesRequestBody(t *testing.T) {
	store := newStubRateLimiter()
	policy := NewAuthRateLimitPolicy("login", time.Minute, 0, 10)

	var seenBody string
	handler := AuthRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 64)
		n, _ := r.Body.Read(buf)
		seenBody = string(buf[:n])
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest(`{"username":"shopper"}`))

	assert.Equal(t, `{"username":"shopper"}`, seenBody)
}

func TestAuthRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	policy := NewAuthRateLimitPolicy("login", 0, 0, 0)

	var passed bool
	handler := AuthRateLimit(policy, newStubRateLimiter(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		passed = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest(`{}`))
	assert.True(t, passed)
}
