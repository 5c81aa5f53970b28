package cart

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Line is a cart row joined with its catalog entry for display.
type Line struct {
	ItemID      int64           `json:"item_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
}

// Repository manages persisted carts. Cart IDs equal user IDs; the
// shopping_carts row is created alongside the user.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateCart(ctx context.Context, cartID int64) error
	Lines(ctx context.Context, cartID int64) (map[int64]int, error)
	Detailed(ctx context.Context, cartID int64) ([]Line, error)
	AddOrMerge(ctx context.Context, cartID int64, wants map[int64]int) error
	RemoveItem(ctx context.Context, cartID, itemID int64) error
	Contains(ctx context.Context, cartID, itemID int64) (bool, error)
	Clear(ctx context.Context, cartID int64) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a cart repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateCart(ctx context.Context, cartID int64) error {
	return r.db.WithContext(ctx).Create(&models.ShoppingCart{ID: cartID}).Error
}

func (r *repository) Lines(ctx context.Context, cartID int64) (map[int64]int, error) {
	var rows []models.CartItem
	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	lines := make(map[int64]int, len(rows))
	for _, row := range rows {
		lines[row.ItemID] = row.Quantity
	}
	return lines, nil
}

func (r *repository) Detailed(ctx context.Context, cartID int64) ([]Line, error) {
	var lines []Line
	if err := r.db.WithContext(ctx).
		Table("cart_items").
		Select("cart_items.item_id", "inventory.product_name", "inventory.unit_price", "cart_items.quantity").
		Joins("JOIN inventory ON inventory.id = cart_items.item_id").
		Where("cart_items.cart_id = ?", cartID).
		Order("cart_items.item_id ASC").
		Scan(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

// AddOrMerge folds the wanted quantities into the cart. Items already in the
// cart get one batched quantity bump, new items get one batched insert. The
// partition query plus the two statements keep the round trips constant no
// matter how many lines arrive.
func (r *repository) AddOrMerge(ctx context.Context, cartID int64, wants map[int64]int) error {
	if len(wants) == 0 {
		return nil
	}

	ids := sortedItemIDs(wants)

	var existing []int64
	if err := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("cart_id = ? AND item_id IN ?", cartID, ids).
		Pluck("item_id", &existing).Error; err != nil {
		return err
	}
	inCart := make(map[int64]bool, len(existing))
	for _, id := range existing {
		inCart[id] = true
	}

	var updates, inserts []string
	for _, id := range ids {
		if inCart[id] {
			updates = append(updates, fmt.Sprintf("(%d, %d)", id, wants[id]))
		} else {
			inserts = append(inserts, fmt.Sprintf("(%d, %d, %d)", cartID, id, wants[id]))
		}
	}

	if len(updates) > 0 {
		stmt := fmt.Sprintf(`
			WITH batch (item_id, quantity) AS (VALUES %s)
			UPDATE cart_items
			SET quantity = cart_items.quantity + batch.quantity
			FROM batch
			WHERE cart_items.cart_id = %d AND cart_items.item_id = batch.item_id`,
			strings.Join(updates, ", "), cartID)
		if err := r.db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return err
		}
	}

	if len(inserts) > 0 {
		stmt := fmt.Sprintf(
			"INSERT INTO cart_items (cart_id, item_id, quantity) VALUES %s",
			strings.Join(inserts, ", "))
		if err := r.db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return err
		}
	}

	return nil
}

func (r *repository) RemoveItem(ctx context.Context, cartID, itemID int64) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ? AND item_id = ?", cartID, itemID).
		Delete(&models.CartItem{}).Error
}

// Contains reports membership as an explicit count comparison.
func (r *repository) Contains(ctx context.Context, cartID, itemID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("cart_id = ? AND item_id = ?", cartID, itemID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) Clear(ctx context.Context, cartID int64) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&models.CartItem{}).Error
}

func sortedItemIDs(wants map[int64]int) []int64 {
	ids := make([]int64, 0, len(wants))
	for id := range wants {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
