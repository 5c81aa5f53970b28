package cart

import (
	"context"
	"fmt"

	"github.com/storefrontlabs/storefront-backend/internal/inventory"
	"github.com/storefrontlabs/storefront-backend/pkg/db"
	"github.com/storefrontlabs/storefront-backend/pkg/errors"
	"github.com/storefrontlabs/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

// Identity names the cart owner. A signed-in request carries a user ID; an
// anonymous one carries only the browsing session ID.
type Identity struct {
	UserID    int64
	SessionID string
}

// SignedIn reports whether the identity belongs to an authenticated user.
func (i Identity) SignedIn() bool { return i.UserID > 0 }

// Service exposes cart operations for both signed-in and anonymous shoppers.
type Service interface {
	View(ctx context.Context, id Identity) ([]Line, error)
	Add(ctx context.Context, id Identity, itemID int64, quantity int) error
	Remove(ctx context.Context, id Identity, itemID int64) error
	Contains(ctx context.Context, id Identity, itemID int64) (bool, error)
	MergeSessionIntoUser(ctx context.Context, sessionID string, userID int64) error
}

type service struct {
	client    *db.Client
	repo      Repository
	sessions  *SessionCarts
	inventory inventory.Service
	items     inventory.Repository
	logg      *logger.Logger
}

// NewService wires the cart service.
func NewService(
	client *db.Client,
	repo Repository,
	sessions *SessionCarts,
	inventorySvc inventory.Service,
	items inventory.Repository,
	logg *logger.Logger,
) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client is required")
	}
	if repo == nil {
		return nil, fmt.Errorf("cart repository is required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session carts are required")
	}
	if inventorySvc == nil {
		return nil, fmt.Errorf("inventory service is required")
	}
	if items == nil {
		return nil, fmt.Errorf("inventory repository is required")
	}
	return &service{
		client:    client,
		repo:      repo,
		sessions:  sessions,
		inventory: inventorySvc,
		items:     items,
		logg:      logg,
	}, nil
}

func (s *service) View(ctx context.Context, id Identity) ([]Line, error) {
	if id.SignedIn() {
		lines, err := s.repo.Detailed(ctx, id.UserID)
		if err != nil {
			return nil, errors.Wrap(errors.CodeDependency, err, "loading cart")
		}
		return lines, nil
	}

	if id.SessionID == "" {
		return nil, errors.New(errors.CodeValidation, "browsing session is required")
	}

	raw, err := s.sessions.Lines(ctx, id.SessionID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "loading session cart")
	}
	if len(raw) == 0 {
		return []Line{}, nil
	}

	ids := sortedItemIDs(raw)
	items, err := s.items.FindMany(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "loading cart items")
	}

	lines := make([]Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, Line{
			ItemID:      item.ID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    raw[item.ID],
		})
	}
	return lines, nil
}

func (s *service) Add(ctx context.Context, id Identity, itemID int64, quantity int) error {
	if quantity <= 0 {
		return errors.New(errors.CodeValidation, "quantity must be positive")
	}
	if err := s.inventory.ValidateStock(ctx, map[int64]int{itemID: quantity}); err != nil {
		return err
	}

	if id.SignedIn() {
		if err := s.repo.AddOrMerge(ctx, id.UserID, map[int64]int{itemID: quantity}); err != nil {
			return errors.Wrap(errors.CodeDependency, err, "adding to cart")
		}
		return nil
	}

	if id.SessionID == "" {
		return errors.New(errors.CodeValidation, "browsing session is required")
	}
	if err := s.sessions.Add(ctx, id.SessionID, itemID, quantity); err != nil {
		return errors.Wrap(errors.CodeDependency, err, "adding to session cart")
	}
	return nil
}

func (s *service) Remove(ctx context.Context, id Identity, itemID int64) error {
	if itemID <= 0 {
		return errors.New(errors.CodeValidation, "item id must be positive")
	}

	if id.SignedIn() {
		if err := s.repo.RemoveItem(ctx, id.UserID, itemID); err != nil {
			return errors.Wrap(errors.CodeDependency, err, "removing from cart")
		}
		return nil
	}

	if id.SessionID == "" {
		return errors.New(errors.CodeValidation, "browsing session is required")
	}
	if err := s.sessions.Remove(ctx, id.SessionID, itemID); err != nil {
		return errors.Wrap(errors.CodeDependency, err, "removing from session cart")
	}
	return nil
}

func (s *service) Contains(ctx context.Context, id Identity, itemID int64) (bool, error) {
	if itemID <= 0 {
		return false, errors.New(errors.CodeValidation, "item id must be positive")
	}

	if id.SignedIn() {
		found, err := s.repo.Contains(ctx, id.UserID, itemID)
		if err != nil {
			return false, errors.Wrap(errors.CodeDependency, err, "checking cart")
		}
		return found, nil
	}

	if id.SessionID == "" {
		return false, errors.New(errors.CodeValidation, "browsing session is required")
	}
	found, err := s.sessions.Contains(ctx, id.SessionID, itemID)
	if err != nil {
		return false, errors.Wrap(errors.CodeDependency, err, "checking session cart")
	}
	return found, nil
}

// MergeSessionIntoUser folds an anonymous cart into the user's persisted one.
// Runs at sign-in; quantities for items in both carts are summed. The Redis
// cart is destroyed only after the database merge commits, so a failure
// leaves the anonymous cart intact.
func (s *service) MergeSessionIntoUser(ctx context.Context, sessionID string, userID int64) error {
	if sessionID == "" || userID <= 0 {
		return errors.New(errors.CodeValidation, "session and user are required")
	}

	lines, err := s.sessions.Lines(ctx, sessionID)
	if err != nil {
		return errors.Wrap(errors.CodeDependency, err, "loading session cart")
	}
	if len(lines) == 0 {
		return nil
	}

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).AddOrMerge(ctx, userID, lines)
	})
	if err != nil {
		return errors.Wrap(errors.CodeDependency, err, "merging carts")
	}

	if err := s.sessions.Clear(ctx, sessionID); err != nil {
		// merge already committed; stale hash surfaces on next sign-in
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "session_id", sessionID), "cart.merge.clear_failed")
		}
	}
	return nil
}
