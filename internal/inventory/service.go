package inventory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/storefrontlabs/storefront-backend/pkg/errors"
)

// CatalogItem is the public shape of an inventory row.
type CatalogItem struct {
	ID          int64           `json:"id"`
	ProductName string          `json:"product_name"`
	Description string          `json:"description"`
	Available   int             `json:"available"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Service exposes catalog browsing and stock validation.
type Service interface {
	Catalog(ctx context.Context) ([]CatalogItem, error)
	Item(ctx context.Context, id int64) (*CatalogItem, error)
	ValidateStock(ctx context.Context, wants map[int64]int) error
}

type service struct {
	repo Repository
}

// NewService wires the inventory service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Catalog(ctx context.Context) ([]CatalogItem, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "listing inventory")
	}

	catalog := make([]CatalogItem, 0, len(items))
	for _, item := range items {
		catalog = append(catalog, CatalogItem{
			ID:          item.ID,
			ProductName: item.ProductName,
			Description: item.Description,
			Available:   item.Available,
			UnitPrice:   item.UnitPrice,
		})
	}
	return catalog, nil
}

func (s *service) Item(ctx context.Context, id int64) (*CatalogItem, error) {
	if id <= 0 {
		return nil, errors.New(errors.CodeValidation, "item id must be positive")
	}
	item, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "finding item")
	}
	if item == nil {
		return nil, errors.New(errors.CodeNotFound, "item not found")
	}
	return &CatalogItem{
		ID:          item.ID,
		ProductName: item.ProductName,
		Description: item.Description,
		Available:   item.Available,
		UnitPrice:   item.UnitPrice,
	}, nil
}

// ValidateStock confirms every wanted item exists and has enough stock to
// cover the requested quantity right now. Checkout re-validates through the
// check constraint; this is the friendlier front door.
func (s *service) ValidateStock(ctx context.Context, wants map[int64]int) error {
	if len(wants) == 0 {
		return nil
	}
	for id, qty := range wants {
		if id <= 0 {
			return errors.New(errors.CodeValidation, "item id must be positive")
		}
		if qty <= 0 {
			return errors.New(errors.CodeValidation, "quantity must be positive")
		}
	}

	ids := sortedIDs(wants)
	available, err := s.repo.Availability(ctx, ids)
	if err != nil {
		return errors.Wrap(errors.CodeDependency, err, "checking availability")
	}

	for _, id := range ids {
		stock, ok := available[id]
		if !ok {
			return errors.New(errors.CodeNotFound, "item not found").
				WithDetails(map[string]any{"item_id": id})
		}
		if wants[id] > stock {
			return errors.New(errors.CodeValidation, "requested quantity exceeds available stock").
				WithDetails(map[string]any{
					"item_id":   id,
					"requested": wants[id],
					"available": stock,
				})
		}
	}
	return nil
}
