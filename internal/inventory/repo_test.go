package inventory

import (
	"context"
	"fmt"
	"testing"

	"github.com/storefrontlabs/storefront-backend/pkg/db"
	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupInventoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS inventory (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  available INTEGER NOT NULL CHECK (available >= 0),
  product_name TEXT NOT NULL,
  description TEXT NOT NULL,
  unit_price NUMERIC NOT NULL DEFAULT 0
);`
	require.NoError(t, conn.Exec(ddl).Error)
	return conn
}

func seedItem(t *testing.T, conn *gorm.DB, available int, name string) int64 {
	t.Helper()
	item := models.Item{Available: available, ProductName: name, Description: name + " description"}
	require.NoError(t, conn.Create(&item).Error)
	return item.ID
}

func TestDecrementBatchTakesStockFromEveryLine(t *testing.T) {
	conn := setupInventoryTestDB(t)
	repo := NewRepository(conn)

	beans := seedItem(t, conn, 10, "beans")
	kettle := seedItem(t, conn, 5, "kettle")

	touched, err := repo.Decrement(context.Background(), map[int64]int{beans: 1, kettle: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(2), touched)

	available, err := repo.Availability(context.Background(), []int64{beans, kettle})
	require.NoError(t, err)
	assert.Equal(t, 9, available[beans])
	assert.Equal(t, 2, available[kettle])
}

func TestDecrementRejectsOversellViaCheckConstraint(t *testing.T) {
	conn := setupInventoryTestDB(t)
	repo := NewRepository(conn)

	grinder := seedItem(t, conn, 2, "grinder")

	_, err := repo.Decrement(context.Background(), map[int64]int{grinder: 3})
	require.Error(t, err)
	assert.True(t, db.IsCheckViolation(err))

	available, err := repo.Availability(context.Background(), []int64{grinder})
	require.NoError(t, err)
	assert.Equal(t, 2, available[grinder])
}

func TestDecrementReportsUnknownItemsThroughRowCount(t *testing.T) {
	conn := setupInventoryTestDB(t)
	repo := NewRepository(conn)

	beans := seedItem(t, conn, 10, "beans")

	touched, err := repo.Decrement(context.Background(), map[int64]int{beans: 1, 9999: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), touched)
}

func TestDecrementEmptyIsNoOp(t *testing.T) {
	conn := setupInventoryTestDB(t)
	repo := NewRepository(conn)

	touched, err := repo.Decrement(context.Background(), map[int64]int{})
	require.NoError(t, err)
	assert.Zero(t, touched)
}

func TestAvailabilityOmitsUnknownItems(t *testing.T) {
	conn := setupInventoryTestDB(t)
	repo := NewRepository(conn)

	beans := seedItem(t, conn, 4, "beans")

	available, err := repo.Availability(context.Background(), []int64{beans, 777})
	require.NoError(t, err)
	assert.Len(t, available, 1)
	assert.Equal(t, 4, available[beans])
}

func TestListOrdersByID(t *testing.T) {
	conn := setupInventoryTestDB(t)
	repo := NewRepository(conn)

	seedItem(t, conn, 1, "beans")
	seedItem(t, conn, 2, "kettle")

	items, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Less(t, items[0].ID, items[1].ID)
}
