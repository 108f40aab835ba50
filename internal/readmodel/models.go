package readmodel

import "time"

// Order statuses as they appear in the source data. Anything else is kept verbatim.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusReturned   = "returned"
)

// ProductReadModel is the read model for catalog products
type ProductReadModel struct {
	ID                   string  `json:"id"`
	Name                 string  `json:"name"`
	Brand                string  `json:"brand"`
	Category             string  `json:"category"`
	Department           string  `json:"department"`
	Cost                 float64 `json:"cost"`
	RetailPrice          float64 `json:"retail_price"`
	SKU                  string  `json:"sku"`
	DistributionCenterID string  `json:"distribution_center_id,omitempty"`
}

// OrderReadModel is the read model for customer orders
type OrderReadModel struct {
	OrderID     string     `json:"order_id"`
	UserID      string     `json:"user_id"`
	Status      string     `json:"status"`
	Gender      string     `json:"gender,omitempty"`
	NumOfItem   int        `json:"num_of_item"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	ShippedAt   *time.Time `json:"shipped_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	ReturnedAt  *time.Time `json:"returned_at,omitempty"`
}

// OrderItemReadModel is a single line-item of an order
type OrderItemReadModel struct {
	ID              string     `json:"id"`
	OrderID         string     `json:"order_id"`
	UserID          string     `json:"user_id"`
	ProductID       string     `json:"product_id"`
	InventoryItemID string     `json:"inventory_item_id"`
	Status          string     `json:"status"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
	ShippedAt       *time.Time `json:"shipped_at,omitempty"`
	DeliveredAt     *time.Time `json:"delivered_at,omitempty"`
	ReturnedAt      *time.Time `json:"returned_at,omitempty"`
}

// InventoryItemReadModel is one physical unit of a product. A unit is
// available while SoldAt is nil.
type InventoryItemReadModel struct {
	ID                          string     `json:"id"`
	ProductID                   string     `json:"product_id"`
	CreatedAt                   *time.Time `json:"created_at,omitempty"`
	SoldAt                      *time.Time `json:"sold_at,omitempty"`
	Cost                        float64    `json:"cost"`
	ProductCategory             string     `json:"product_category"`
	ProductName                 string     `json:"product_name"`
	ProductBrand                string     `json:"product_brand"`
	ProductRetailPrice          float64    `json:"product_retail_price"`
	ProductDepartment           string     `json:"product_department"`
	ProductSKU                  string     `json:"product_sku"`
	ProductDistributionCenterID string     `json:"product_distribution_center_id,omitempty"`
}

// Available reports whether the unit is still in stock.
func (i *InventoryItemReadModel) Available() bool {
	return i.SoldAt == nil
}

// DistributionCenterReadModel is a warehouse products ship from
type DistributionCenterReadModel struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
