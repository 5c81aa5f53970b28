package cart

import (
	"context"
	"testing"
	"time"

	"github.com/storefrontlabs/storefront-backend/internal/inventory"
	"github.com/storefrontlabs/storefront-backend/pkg/db"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestCartService(t *testing.T, conn *gorm.DB) (Service, *stubSessionStore) {
	t.Helper()

	store := newStubSessionStore()
	sessions, err := NewSessionCarts(store, store, time.Hour)
	require.NoError(t, err)

	invRepo := inventory.NewRepository(conn)
	invSvc, err := inventory.NewService(invRepo)
	require.NoError(t, err)

	svc, err := NewService(db.FromConn(conn), NewRepository(conn), sessions, invSvc, invRepo, nil)
	require.NoError(t, err)
	return svc, store
}

func TestAddRejectsNonPositiveQuantity(t *testing.T) {
	conn := setupCartTestDB(t)
	svc, _ := newTestCartService(t, conn)

	err := svc.Add(context.Background(), Identity{SessionID: "visitor"}, 1, 0)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestAddRejectsQuantityBeyondStock(t *testing.T) {
	conn := setupCartTestDB(t)
	svc, _ := newTestCartService(t, conn)
	grinder := seedCartItem(t, conn, 2, "grinder")

	err := svc.Add(context.Background(), Identity{SessionID: "visitor"}, grinder, 3)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestAddRoutesByIdentity(t *testing.T) {
	conn := setupCartTestDB(t)
	svc, store := newTestCartService(t, conn)
	cartID := seedCart(t, conn)
	beans := seedCartItem(t, conn, 50, "beans")

	require.NoError(t, svc.Add(context.Background(), Identity{UserID: cartID}, beans, 2))
	require.NoError(t, svc.Add(context.Background(), Identity{SessionID: "visitor"}, beans, 3))

	persisted, err := NewRepository(conn).Lines(context.Background(), cartID)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{beans: 2}, persisted)

	assert.NotEmpty(t, store.hashes[store.SessionCartKey("visitor")])
}

func TestViewSessionCartJoinsCatalog(t *testing.T) {
	conn := setupCartTestDB(t)
	svc, _ := newTestCartService(t, conn)
	beans := seedCartItem(t, conn, 50, "beans")

	require.NoError(t, svc.Add(context.Background(), Identity{SessionID: "visitor"}, beans, 2))

	lines, err := svc.View(context.Background(), Identity{SessionID: "visitor"})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "beans", lines[0].ProductName)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestMergeSessionIntoUserSumsOverlappingLines(t *testing.T) {
	conn := setupCartTestDB(t)
	svc, store := newTestCartService(t, conn)
	cartID := seedCart(t, conn)
	beans := seedCartItem(t, conn, 50, "beans")
	kettle := seedCartItem(t, conn, 50, "kettle")

	ctx := context.Background()
	require.NoError(t, svc.Add(ctx, Identity{UserID: cartID}, beans, 2))
	require.NoError(t, svc.Add(ctx, Identity{SessionID: "visitor"}, beans, 3))
	require.NoError(t, svc.Add(ctx, Identity{SessionID: "visitor"}, kettle, 1))

	require.NoError(t, svc.MergeSessionIntoUser(ctx, "visitor", cartID))

	persisted, err := NewRepository(conn).Lines(ctx, cartID)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{beans: 5, kettle: 1}, persisted)

	assert.Empty(t, store.hashes[store.SessionCartKey("visitor")])
}

func TestMergeEmptySessionCartIsNoOp(t *testing.T) {
	conn := setupCartTestDB(t)
	svc, _ := newTestCartService(t, conn)
	cartID := seedCart(t, conn)

	require.NoError(t, svc.MergeSessionIntoUser(context.Background(), "visitor", cartID))

	persisted, err := NewRepository(conn).Lines(context.Background(), cartID)
	require.NoError(t, err)
	assert.Empty(t, persisted)
}
