package models

import "github.com/shopspring/decimal"

// Item is one inventory record. The store never drives available below zero;
// the check constraint is the last line of defense under concurrent sales.
type Item struct {
	ID          int64           `gorm:"column:id;primaryKey;autoIncrement"`
	Available   int             `gorm:"column:available;not null;check:chk_inventory_available,available >= 0"`
	ProductName string          `gorm:"column:product_name;type:text;not null"`
	Description string          `gorm:"column:description;type:text;not null"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric;not null;default:0"`
}

func (Item) TableName() string { return "inventory" }
