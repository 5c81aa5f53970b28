package checkout

import (
	"context"
	"fmt"
	"testing"

	"github.com/storefrontlabs/storefront-backend/internal/cart"
	"github.com/storefrontlabs/storefront-backend/internal/inventory"
	"github.com/storefrontlabs/storefront-backend/internal/orders"
	"github.com/storefrontlabs/storefront-backend/pkg/db"
	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupCheckoutTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	ddl := []string{
		`CREATE TABLE IF NOT EXISTS users (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  username TEXT NOT NULL UNIQUE,
  hashed_pwd TEXT NOT NULL
);`,
		`CREATE TABLE IF NOT EXISTS inventory (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  available INTEGER NOT NULL CHECK (available >= 0),
  product_name TEXT NOT NULL,
  description TEXT NOT NULL,
  unit_price NUMERIC NOT NULL DEFAULT 0
);`,
		`CREATE TABLE IF NOT EXISTS shopping_carts (
  id INTEGER PRIMARY KEY
);`,
		`CREATE TABLE IF NOT EXISTS cart_items (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  cart_id INTEGER NOT NULL,
  item_id INTEGER NOT NULL,
  quantity INTEGER NOT NULL CHECK (quantity > 0),
  UNIQUE (cart_id, item_id)
);`,
		`CREATE TABLE IF NOT EXISTS orders (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  purchase_date DATETIME NOT NULL,
  user_id INTEGER NOT NULL
);`,
		`CREATE TABLE IF NOT EXISTS order_items (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  order_id INTEGER NOT NULL,
  item_id INTEGER NOT NULL,
  quantity INTEGER NOT NULL CHECK (quantity > 0)
);`,
	}
	for _, stmt := range ddl {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

func seedCheckoutUser(t *testing.T, conn *gorm.DB) int64 {
	t.Helper()
	user := models.User{Username: fmt.Sprintf("shopper%d", len(t.Name())), HashedPwd: "x"}
	require.NoError(t, conn.Create(&user).Error)
	require.NoError(t, conn.Create(&models.ShoppingCart{ID: user.ID}).Error)
	return user.ID
}

func seedCheckoutItem(t *testing.T, conn *gorm.DB, available int, name string) int64 {
	t.Helper()
	item := models.Item{Available: available, ProductName: name, Description: name}
	require.NoError(t, conn.Create(&item).Error)
	return item.ID
}

func addLine(t *testing.T, conn *gorm.DB, cartID, itemID int64, quantity int) {
	t.Helper()
	require.NoError(t, conn.Create(&models.CartItem{CartID: cartID, ItemID: itemID, Quantity: quantity}).Error)
}

func newTestCheckoutService(t *testing.T, conn *gorm.DB, inv inventory.Repository) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Client:        db.FromConn(conn),
		CartRepo:      cart.NewRepository(conn),
		InventoryRepo: inv,
		OrderRepo:     orders.NewRepository(conn),
	})
	require.NoError(t, err)
	return svc
}

// failingInventory forwards everything but makes Decrement blow up mid-transaction.
type failingInventory struct {
	inventory.Repository
	fail error
}

func (f *failingInventory) WithTx(_ *gorm.DB) inventory.Repository { return f }

func (f *failingInventory) Decrement(context.Context, map[int64]int) (int64, error) {
	return 0, f.fail
}

func availableOf(t *testing.T, conn *gorm.DB, itemID int64) int {
	t.Helper()
	var item models.Item
	require.NoError(t, conn.First(&item, itemID).Error)
	return item.Available
}

func cartCount(t *testing.T, conn *gorm.DB, cartID int64) int64 {
	t.Helper()
	var count int64
	require.NoError(t, conn.Model(&models.CartItem{}).Where("cart_id = ?", cartID).Count(&count).Error)
	return count
}

func orderCount(t *testing.T, conn *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, conn.Model(&models.Order{}).Count(&count).Error)
	return count
}

func TestExecuteTakesStockWritesOrderAndClearsCart(t *testing.T) {
	conn := setupCheckoutTestDB(t)
	userID := seedCheckoutUser(t, conn)
	beans := seedCheckoutItem(t, conn, 10, "beans")
	addLine(t, conn, userID, beans, 1)

	svc := newTestCheckoutService(t, conn, inventory.NewRepository(conn))

	result, err := svc.Execute(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Positive(t, result.OrderID)
	assert.Equal(t, map[int64]int{beans: 1}, result.Items)

	assert.Equal(t, 9, availableOf(t, conn, beans))
	assert.Zero(t, cartCount(t, conn, userID))

	history, err := orders.NewRepository(conn).History(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, result.OrderID, history[0].OrderID)
}

func TestExecuteRejectsEmptyCart(t *testing.T) {
	conn := setupCheckoutTestDB(t)
	userID := seedCheckoutUser(t, conn)
	seedCheckoutItem(t, conn, 10, "beans")

	svc := newTestCheckoutService(t, conn, inventory.NewRepository(conn))

	_, err := svc.Execute(context.Background(), userID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Zero(t, orderCount(t, conn))
}

func TestExecuteRequiresSignedInUser(t *testing.T) {
	conn := setupCheckoutTestDB(t)
	svc := newTestCheckoutService(t, conn, inventory.NewRepository(conn))

	_, err := svc.Execute(context.Background(), 0)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
}

func TestExecuteRollsBackWhenDecrementFails(t *testing.T) {
	conn := setupCheckoutTestDB(t)
	userID := seedCheckoutUser(t, conn)
	beans := seedCheckoutItem(t, conn, 10, "beans")
	kettle := seedCheckoutItem(t, conn, 5, "kettle")
	addLine(t, conn, userID, beans, 2)
	addLine(t, conn, userID, kettle, 1)

	inv := &failingInventory{
		Repository: inventory.NewRepository(conn),
		fail:       fmt.Errorf("connection reset"),
	}
	svc := newTestCheckoutService(t, conn, inv)

	_, err := svc.Execute(context.Background(), userID)
	require.Error(t, err)

	// nothing moved
	assert.Equal(t, 10, availableOf(t, conn, beans))
	assert.Equal(t, 5, availableOf(t, conn, kettle))
	assert.Equal(t, int64(2), cartCount(t, conn, userID))
	assert.Zero(t, orderCount(t, conn))
}

func TestExecuteOversellRollsBackWithStateConflict(t *testing.T) {
	conn := setupCheckoutTestDB(t)
	userID := seedCheckoutUser(t, conn)
	beans := seedCheckoutItem(t, conn, 10, "beans")
	grinder := seedCheckoutItem(t, conn, 1, "grinder")
	addLine(t, conn, userID, beans, 1)
	addLine(t, conn, userID, grinder, 2)

	svc := newTestCheckoutService(t, conn, inventory.NewRepository(conn))

	_, err := svc.Execute(context.Background(), userID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())

	assert.Equal(t, 10, availableOf(t, conn, beans))
	assert.Equal(t, 1, availableOf(t, conn, grinder))
	assert.Equal(t, int64(2), cartCount(t, conn, userID))
	assert.Zero(t, orderCount(t, conn))
}

func TestExecuteUnknownCartItemRollsBack(t *testing.T) {
	conn := setupCheckoutTestDB(t)
	userID := seedCheckoutUser(t, conn)
	beans := seedCheckoutItem(t, conn, 10, "beans")
	addLine(t, conn, userID, beans, 1)
	addLine(t, conn, userID, 9999, 1)

	svc := newTestCheckoutService(t, conn, inventory.NewRepository(conn))

	_, err := svc.Execute(context.Background(), userID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())

	assert.Equal(t, 10, availableOf(t, conn, beans))
	assert.Equal(t, int64(2), cartCount(t, conn, userID))
	assert.Zero(t, orderCount(t, conn))
}
