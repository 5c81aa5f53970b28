package models

import "time"

// Order is immutable once created.
type Order struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	PurchaseDate time.Time `gorm:"column:purchase_date;not null"`
	UserID       int64     `gorm:"column:user_id;not null"`
}

func (Order) TableName() string { return "orders" }
