package models

// ShoppingCart is 1:1 with users; its id IS the owning user's id.
type ShoppingCart struct {
	ID int64 `gorm:"column:id;primaryKey"`
}

func (ShoppingCart) TableName() string { return "shopping_carts" }
