package order

import "time"

const AggregateType = "Order"

const (
	EventOrderProcessing = "OrderProcessing"
	EventOrderShipped    = "OrderShipped"
	EventOrderDelivered  = "OrderDelivered"
	EventOrderReturned   = "OrderReturned"
)

type OrderProcessing struct {
	OrderID   string    `json:"order_id"`
	StartedAt time.Time `json:"started_at"`
}

type OrderShipped struct {
	OrderID   string    `json:"order_id"`
	ShippedAt time.Time `json:"shipped_at"`
}

type OrderDelivered struct {
	OrderID     string    `json:"order_id"`
	DeliveredAt time.Time `json:"delivered_at"`
}

type OrderReturned struct {
	OrderID    string    `json:"order_id"`
	Reason     string    `json:"reason,omitempty"`
	ReturnedAt time.Time `json:"returned_at"`
}
