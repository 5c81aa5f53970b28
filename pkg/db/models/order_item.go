package models

// OrderItem captures one line of a placed order.
type OrderItem struct {
	ID       int64 `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID  int64 `gorm:"column:order_id;not null"`
	ItemID   int64 `gorm:"column:item_id;not null"`
	Quantity int   `gorm:"column:quantity;not null;check:chk_order_items_quantity,quantity > 0"`
}

func (OrderItem) TableName() string { return "order_items" }
