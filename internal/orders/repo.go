package orders

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
	"gorm.io/gorm"
)

// OrderLine is one purchased item inside an order.
type OrderLine struct {
	ItemID      int64           `json:"item_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
}

// Order groups purchased lines under a single checkout.
type Order struct {
	OrderID      int64       `json:"order_id"`
	PurchaseDate time.Time   `json:"purchase_date"`
	Items        []OrderLine `json:"items"`
}

// Repository handles order persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	PlaceOrder(ctx context.Context, userID int64, lines map[int64]int) (int64, error)
	History(ctx context.Context, userID int64) ([]Order, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an order repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// PlaceOrder inserts the order header and all of its lines. The lines go in
// as one batched insert. Callers run this inside the checkout transaction.
func (r *repository) PlaceOrder(ctx context.Context, userID int64, lines map[int64]int) (int64, error) {
	order := models.Order{
		UserID:       userID,
		PurchaseDate: time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&order).Error; err != nil {
		return 0, err
	}

	ids := make([]int64, 0, len(lines))
	for id := range lines {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	items := make([]models.OrderItem, 0, len(lines))
	for _, id := range ids {
		items = append(items, models.OrderItem{
			OrderID:  order.ID,
			ItemID:   id,
			Quantity: lines[id],
		})
	}
	if err := r.db.WithContext(ctx).Create(&items).Error; err != nil {
		return 0, err
	}
	return order.ID, nil
}

type historyRow struct {
	OrderID      int64
	PurchaseDate time.Time
	ItemID       int64
	ProductName  string
	UnitPrice    decimal.Decimal
	Quantity     int
}

// History returns the user's orders, newest first, with lines grouped under
// their order.
func (r *repository) History(ctx context.Context, userID int64) ([]Order, error) {
	var rows []historyRow
	if err := r.db.WithContext(ctx).
		Table("orders").
		Select(
			"orders.id AS order_id",
			"orders.purchase_date",
			"order_items.item_id",
			"inventory.product_name",
			"inventory.unit_price",
			"order_items.quantity",
		).
		Joins("JOIN order_items ON order_items.order_id = orders.id").
		Joins("JOIN inventory ON inventory.id = order_items.item_id").
		Where("orders.user_id = ?", userID).
		Order("orders.id DESC, order_items.item_id ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	var orders []Order
	index := map[int64]int{}
	for _, row := range rows {
		i, ok := index[row.OrderID]
		if !ok {
			orders = append(orders, Order{
				OrderID:      row.OrderID,
				PurchaseDate: row.PurchaseDate,
			})
			i = len(orders) - 1
			index[row.OrderID] = i
		}
		orders[i].Items = append(orders[i].Items, OrderLine{
			ItemID:      row.ItemID,
			ProductName: row.ProductName,
			UnitPrice:   row.UnitPrice,
			Quantity:    row.Quantity,
		})
	}
	if orders == nil {
		orders = []Order{}
	}
	return orders, nil
}
