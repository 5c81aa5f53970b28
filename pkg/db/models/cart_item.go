package models

// CartItem is one line of a persisted cart. The unique (cart_id, item_id)
// index makes upserts the only way two adds for the same item can coexist.
type CartItem struct {
	ID       int64 `gorm:"column:id;primaryKey;autoIncrement"`
	CartID   int64 `gorm:"column:cart_id;not null;uniqueIndex:idx_cart_items_cart_item"`
	ItemID   int64 `gorm:"column:item_id;not null;uniqueIndex:idx_cart_items_cart_item"`
	Quantity int   `gorm:"column:quantity;not null"`
}

func (CartItem) TableName() string { return "cart_items" }
