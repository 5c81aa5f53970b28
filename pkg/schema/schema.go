package schema

import (
	"context"
	"fmt"

	"github.com/storefrontlabs/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

// tableDDL lists every table the app relies on, in dependency order so
// foreign keys resolve. Table and column names are a contract shared with
// admin tooling; do not rename.
var tableDDL = []struct {
	Name string
	DDL  string
}{
	{
		Name: "users",
		DDL: `CREATE TABLE users (
			id serial PRIMARY KEY,
			username text NOT NULL UNIQUE,
			hashed_pwd text NOT NULL
		)`,
	},
	{
		Name: "inventory",
		DDL: `CREATE TABLE inventory (
			id serial PRIMARY KEY,
			available integer NOT NULL CHECK (available >= 0),
			product_name text NOT NULL,
			description text NOT NULL,
			unit_price numeric NOT NULL DEFAULT 0
		)`,
	},
	{
		Name: "orders",
		DDL: `CREATE TABLE orders (
			id serial PRIMARY KEY,
			purchase_date date NOT NULL DEFAULT NOW(),
			user_id integer NOT NULL REFERENCES users (id) ON DELETE CASCADE
		)`,
	},
	{
		Name: "order_items",
		DDL: `CREATE TABLE order_items (
			id serial PRIMARY KEY,
			order_id integer NOT NULL REFERENCES orders (id) ON DELETE CASCADE,
			item_id integer NOT NULL REFERENCES inventory (id) ON DELETE CASCADE,
			quantity integer NOT NULL CHECK (quantity > 0)
		)`,
	},
	{
		Name: "shopping_carts",
		DDL: `CREATE TABLE shopping_carts (
			id serial PRIMARY KEY,
			FOREIGN KEY (id) REFERENCES users (id) ON DELETE CASCADE
		)`,
	},
	{
		Name: "cart_items",
		DDL: `CREATE TABLE cart_items (
			id serial PRIMARY KEY,
			cart_id integer NOT NULL REFERENCES shopping_carts (id) ON DELETE CASCADE,
			item_id integer NOT NULL REFERENCES inventory (id) ON DELETE CASCADE,
			quantity integer NOT NULL CHECK (quantity > 0),
			UNIQUE (cart_id, item_id)
		)`,
	},
}

type tableChecker interface {
	HasTable(dst interface{}) bool
}

// Missing returns the tables from the contract that the checker cannot see,
// preserving dependency order.
func Missing(m tableChecker) []string {
	var missing []string
	for _, t := range tableDDL {
		if !m.HasTable(t.Name) {
			missing = append(missing, t.Name)
		}
	}
	return missing
}

// Ensure creates any missing tables and leaves existing ones untouched. It
// runs once at process start; there is no migration beyond table creation.
func Ensure(ctx context.Context, conn *gorm.DB, logg *logger.Logger) error {
	missing := Missing(conn.Migrator())
	if len(missing) == 0 {
		return nil
	}

	wanted := make(map[string]bool, len(missing))
	for _, name := range missing {
		wanted[name] = true
	}

	for _, t := range tableDDL {
		if !wanted[t.Name] {
			continue
		}
		if err := conn.WithContext(ctx).Exec(t.DDL).Error; err != nil {
			return fmt.Errorf("creating table %s: %w", t.Name, err)
		}
		if logg != nil {
			logg.Info(logg.WithField(ctx, "table", t.Name), "schema table created")
		}
	}
	return nil
}
