package checkout

import (
	"context"
	"fmt"

	"github.com/storefrontlabs/storefront-backend/internal/cart"
	"github.com/storefrontlabs/storefront-backend/internal/inventory"
	"github.com/storefrontlabs/storefront-backend/internal/orders"
	"github.com/storefrontlabs/storefront-backend/pkg/db"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
	"github.com/storefrontlabs/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

// Result reports a completed checkout.
type Result struct {
	OrderID int64         `json:"order_id"`
	Items   map[int64]int `json:"items"`
}

// Service turns a signed-in user's cart into an order.
type Service interface {
	Execute(ctx context.Context, userID int64) (*Result, error)
}

type service struct {
	client    *db.Client
	carts     cart.Repository
	inventory inventory.Repository
	orders    orders.Repository
	logg      *logger.Logger
}

// ServiceParams bundles the dependencies required to build a checkout service.
type ServiceParams struct {
	Client        *db.Client
	CartRepo      cart.Repository
	InventoryRepo inventory.Repository
	OrderRepo     orders.Repository
	Logger        *logger.Logger
}

// NewService constructs the checkout orchestrator.
func NewService(params ServiceParams) (Service, error) {
	if params.Client == nil {
		return nil, fmt.Errorf("db client is required")
	}
	if params.CartRepo == nil {
		return nil, fmt.Errorf("cart repository is required")
	}
	if params.InventoryRepo == nil {
		return nil, fmt.Errorf("inventory repository is required")
	}
	if params.OrderRepo == nil {
		return nil, fmt.Errorf("order repository is required")
	}
	return &service{
		client:    params.Client,
		carts:     params.CartRepo,
		inventory: params.InventoryRepo,
		orders:    params.OrderRepo,
		logg:      params.Logger,
	}, nil
}

// Execute runs the whole checkout in one transaction: load the cart, take
// the stock, write the order, clear the cart. Any failure rolls everything
// back, so stock is never taken without an order and vice versa.
func (s *service) Execute(ctx context.Context, userID int64) (*Result, error) {
	if userID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	var result Result
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		carts := s.carts.WithTx(tx)

		lines, err := carts.Lines(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart").
				WithDetails(map[string]any{"step": "load_cart"})
		}
		if len(lines) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		touched, err := s.inventory.WithTx(tx).Decrement(ctx, lines)
		if err != nil {
			if db.IsCheckViolation(err) {
				return pkgerrors.Wrap(pkgerrors.CodeStateConflict, err, "insufficient stock").
					WithDetails(map[string]any{"step": "decrement"})
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "taking stock").
				WithDetails(map[string]any{"step": "decrement"})
		}
		if touched != int64(len(lines)) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart references unknown items").
				WithDetails(map[string]any{"step": "decrement"})
		}

		orderID, err := s.orders.WithTx(tx).PlaceOrder(ctx, userID, lines)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "placing order").
				WithDetails(map[string]any{"step": "place_order"})
		}

		if err := carts.Clear(ctx, userID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clearing cart").
				WithDetails(map[string]any{"step": "clear_cart"})
		}

		result = Result{OrderID: orderID, Items: lines}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		fields := map[string]any{"order_id": result.OrderID, "line_count": len(result.Items)}
		s.logg.Info(s.logg.WithFields(ctx, fields), "checkout.complete")
	}
	return &result, nil
}
