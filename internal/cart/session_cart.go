package cart

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

type sessionStore interface {
	HIncrByExpire(ctx context.Context, key, field string, delta int64, ttl time.Duration) (int64, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HDel(ctx context.Context, key string, fields ...string) error
	HExists(ctx context.Context, key, field string) (bool, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	SessionCartKey(sessionID string) string
}

// SessionCarts keeps anonymous carts in a Redis hash per browsing session.
// Fields are item IDs, values are quantities. Adding the same item twice
// merges by increment, mirroring the persisted cart's upsert.
type SessionCarts struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
}

// NewSessionCarts wires the session cart store.
func NewSessionCarts(store sessionStore, keyer sessionKeyer, ttl time.Duration) (*SessionCarts, error) {
	if store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if keyer == nil {
		return nil, fmt.Errorf("session keyer is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session cart ttl must be positive")
	}
	return &SessionCarts{store: store, keyer: keyer, ttl: ttl}, nil
}

// Add merges the quantity into the session cart and refreshes the TTL. The
// increment and the expiry travel in one pipelined round trip so the hash
// can never be created without a TTL.
func (s *SessionCarts) Add(ctx context.Context, sessionID string, itemID int64, quantity int) error {
	key := s.keyer.SessionCartKey(sessionID)
	_, err := s.store.HIncrByExpire(ctx, key, field(itemID), int64(quantity), s.ttl)
	return err
}

// Lines returns the session cart contents keyed by item ID.
func (s *SessionCarts) Lines(ctx context.Context, sessionID string) (map[int64]int, error) {
	raw, err := s.store.HGetAll(ctx, s.keyer.SessionCartKey(sessionID))
	if err != nil {
		return nil, err
	}
	lines := make(map[int64]int, len(raw))
	for k, v := range raw {
		itemID, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt cart field %q: %w", k, err)
		}
		qty, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("corrupt cart quantity %q: %w", v, err)
		}
		if qty <= 0 {
			continue
		}
		lines[itemID] = qty
	}
	return lines, nil
}

// Remove drops the item from the session cart. Removing an absent item is a
// no-op.
func (s *SessionCarts) Remove(ctx context.Context, sessionID string, itemID int64) error {
	return s.store.HDel(ctx, s.keyer.SessionCartKey(sessionID), field(itemID))
}

// Contains reports whether the item is in the session cart.
func (s *SessionCarts) Contains(ctx context.Context, sessionID string, itemID int64) (bool, error) {
	return s.store.HExists(ctx, s.keyer.SessionCartKey(sessionID), field(itemID))
}

// Clear destroys the session cart entirely.
func (s *SessionCarts) Clear(ctx context.Context, sessionID string) error {
	return s.store.Del(ctx, s.keyer.SessionCartKey(sessionID))
}

func field(itemID int64) string {
	return strconv.FormatInt(itemID, 10)
}
