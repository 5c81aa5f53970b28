package users

import (
	"context"
	"fmt"
	"testing"

	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupUsersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	ddl := `CREATE TABLE IF NOT EXISTS users (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  username TEXT NOT NULL UNIQUE,
  hashed_pwd TEXT NOT NULL
);`
	require.NoError(t, conn.Exec(ddl).Error)
	return conn
}

func TestExistsReflectsCreatedUsers(t *testing.T) {
	conn := setupUsersTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	taken, err := repo.Exists(ctx, "shopper")
	require.NoError(t, err)
	assert.False(t, taken)

	require.NoError(t, repo.Create(ctx, &models.User{Username: "shopper", HashedPwd: "x"}))

	taken, err = repo.Exists(ctx, "shopper")
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestFindByUsernameReturnsNilWhenMissing(t *testing.T) {
	conn := setupUsersTestDB(t)
	repo := NewRepository(conn)

	user, err := repo.FindByUsername(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestFindByUsernameReturnsStoredUser(t *testing.T) {
	conn := setupUsersTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	created := models.User{Username: "shopper", HashedPwd: "hash"}
	require.NoError(t, repo.Create(ctx, &created))

	user, err := repo.FindByUsername(ctx, "shopper")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, created.ID, user.ID)
	assert.Equal(t, "hash", user.HashedPwd)
}

func TestDuplicateUsernameHitsUniqueIndex(t *testing.T) {
	conn := setupUsersTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{Username: "shopper", HashedPwd: "x"}))
	err := repo.Create(ctx, &models.User{Username: "shopper", HashedPwd: "y"})
	require.Error(t, err)

	var count int64
	require.NoError(t, conn.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
