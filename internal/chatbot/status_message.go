package chatbot

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/ec-chatbot/internal/readmodel"
)

const statusDateLayout = "Jan 02, 2006"

// OrderStatusMessage renders the customer-facing sentence for an order's status.
func OrderStatusMessage(order *readmodel.OrderReadModel) string {
	switch strings.ToLower(order.Status) {
	case readmodel.OrderStatusPending:
		return fmt.Sprintf("Your order #%s is currently pending and will be processed soon.", order.OrderID)
	case readmodel.OrderStatusProcessing:
		return fmt.Sprintf("Your order #%s is being processed and will be shipped shortly.", order.OrderID)
	case readmodel.OrderStatusShipped:
		return fmt.Sprintf("Your order #%s was shipped on %s and is on its way to you.", order.OrderID, formatDate(order.ShippedAt))
	case readmodel.OrderStatusDelivered:
		return fmt.Sprintf("Your order #%s was delivered on %s. Thank you for your purchase!", order.OrderID, formatDate(order.DeliveredAt))
	case readmodel.OrderStatusReturned:
		return fmt.Sprintf("Your order #%s was returned on %s.", order.OrderID, formatDate(order.ReturnedAt))
	default:
		return fmt.Sprintf("Your order #%s status is: %s", order.OrderID, order.Status)
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "recently"
	}
	return t.Format(statusDateLayout)
}
