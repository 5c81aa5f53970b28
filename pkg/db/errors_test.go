package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil, ""))
	assert.False(t, IsUniqueViolation(errors.New("boom"), ""))

	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}, ""))
	assert.True(t, IsUniqueViolation(fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "23505"}), ""))

	assert.True(t, IsUniqueViolation(errors.New(`duplicate key value violates unique constraint "users_username_key"`), ""))
	assert.True(t, IsUniqueViolation(errors.New("UNIQUE constraint failed: users.username"), ""))

	assert.True(t, IsUniqueViolation(errors.New(`constraint "cart_items_cart_id_item_id_key" violated`), "cart_items_cart_id_item_id_key"))
	assert.False(t, IsUniqueViolation(errors.New("duplicate key value"), "some_other_constraint"))
}

func TestIsCheckViolation(t *testing.T) {
	assert.False(t, IsCheckViolation(nil))
	assert.False(t, IsCheckViolation(errors.New("boom")))

	assert.True(t, IsCheckViolation(&pgconn.PgError{Code: "23514"}))
	assert.True(t, IsCheckViolation(errors.New("CHECK constraint failed: available")))
}
