package inventory

import "time"

const AggregateType = "InventoryItem"

const EventInventoryItemSold = "InventoryItemSold"

type InventoryItemSold struct {
	InventoryItemID string    `json:"inventory_item_id"`
	ProductID       string    `json:"product_id"`
	OrderID         string    `json:"order_id,omitempty"`
	SoldAt          time.Time `json:"sold_at"`
}
