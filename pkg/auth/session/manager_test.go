package session

import (
	"context"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/storefrontlabs/storefront-backend/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSessionStore struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{
		values: map[string]string{},
		ttls:   map[string]time.Duration{},
	}
}

func (s *stubSessionStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	s.values[key] = value.(string)
	s.ttls[key] = ttl
	return nil
}

func (s *stubSessionStore) Get(_ context.Context, key string) (string, error) {
	value, ok := s.values[key]
	if !ok {
		return "", redislib.Nil
	}
	return value, nil
}

func (s *stubSessionStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

func (s *stubSessionStore) AccessSessionKey(accessID string) string {
	return "sf:session:access:" + accessID
}

func newTestManager(store *stubSessionStore) *Manager {
	return &Manager{store: store, keyer: store, ttl: time.Hour}
}

func TestGenerateThenHasSession(t *testing.T) {
	store := newStubSessionStore()
	mgr := newTestManager(store)
	ctx := context.Background()

	require.NoError(t, mgr.Generate(ctx, "access-1", 42))

	active, err := mgr.HasSession(ctx, "access-1")
	require.NoError(t, err)
	assert.True(t, active)
	assert.Equal(t, "42", store.values[store.AccessSessionKey("access-1")])
	assert.Equal(t, time.Hour, store.ttls[store.AccessSessionKey("access-1")])
}

func TestHasSessionFalseForUnknownAccessID(t *testing.T) {
	mgr := newTestManager(newStubSessionStore())

	active, err := mgr.HasSession(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, active)
}

func TestRevokeDropsTheSession(t *testing.T) {
	store := newStubSessionStore()
	mgr := newTestManager(store)
	ctx := context.Background()

	require.NoError(t, mgr.Generate(ctx, "access-1", 42))
	require.NoError(t, mgr.Revoke(ctx, "access-1"))

	active, err := mgr.HasSession(ctx, "access-1")
	require.NoError(t, err)
	assert.False(t, active)
}

func TestManagerRejectsBlankAccessID(t *testing.T) {
	mgr := newTestManager(newStubSessionStore())
	ctx := context.Background()

	require.Error(t, mgr.Generate(ctx, "  ", 42))
	require.Error(t, mgr.Revoke(ctx, ""))
	_, err := mgr.HasSession(ctx, "")
	require.Error(t, err)
}

func TestGenerateRejectsInvalidUserID(t *testing.T) {
	mgr := newTestManager(newStubSessionStore())
	require.Error(t, mgr.Generate(context.Background(), "access-1", 0))
}

func TestNewManagerValidatesConfig(t *testing.T) {
	_, err := NewManager(nil, config.JWTConfig{SessionTTLMinutes: 60})
	require.Error(t, err)
}

func TestNewAccessIDIsUnique(t *testing.T) {
	assert.NotEqual(t, NewAccessID(), NewAccessID())
}
