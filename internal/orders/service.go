package orders

import (
	"context"
	"fmt"

	"github.com/storefrontlabs/storefront-backend/pkg/errors"
)

// Service exposes order history for signed-in shoppers.
type Service interface {
	History(ctx context.Context, userID int64) ([]Order, error)
}

type service struct {
	repo Repository
}

// NewService wires the orders service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) History(ctx context.Context, userID int64) ([]Order, error) {
	if userID <= 0 {
		return nil, errors.New(errors.CodeUnauthorized, "authentication required")
	}
	history, err := s.repo.History(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "loading order history")
	}
	return history, nil
}
