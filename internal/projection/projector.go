package projection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/example/ec-chatbot/internal/domain"
	"github.com/example/ec-chatbot/internal/domain/inventory"
	"github.com/example/ec-chatbot/internal/domain/order"
	"github.com/example/ec-chatbot/internal/infrastructure/store"
	"github.com/example/ec-chatbot/internal/logger"
	"github.com/example/ec-chatbot/internal/metrics"
	"github.com/example/ec-chatbot/internal/readmodel"
)

// errIgnoredEvent marks event types the projector has no read model for.
var errIgnoredEvent = errors.New("ignored event type")

// Projector applies upstream fulfillment events to the read store so order
// status and stock answers reflect the latest state.
type Projector struct {
	writer store.FulfillmentWriter
	log    logger.Logger
}

func NewProjector(writer store.FulfillmentWriter, log logger.Logger) *Projector {
	return &Projector{writer: writer, log: logger.Component(log, "projector")}
}

// HandleEvent matches kafka.MessageHandler. Events for unknown records are
// logged and dropped so one bad event does not stall the partition.
func (p *Projector) HandleEvent(ctx context.Context, key, value []byte) error {
	var event domain.Event
	if err := json.Unmarshal(value, &event); err != nil {
		metrics.FulfillmentEventsTotal.WithLabelValues("unknown", "malformed").Inc()
		return fmt.Errorf("decode event: %w", err)
	}

	p.log.Debug("received event", map[string]any{
		"event_type": event.EventType,
		"aggregate":  event.AggregateType,
		"key":        string(key),
	})

	var err error
	switch event.AggregateType {
	case order.AggregateType:
		err = p.handleOrderEvent(ctx, event)
	case inventory.AggregateType:
		err = p.handleInventoryEvent(ctx, event)
	default:
		err = errIgnoredEvent
	}

	switch {
	case errors.Is(err, errIgnoredEvent):
		p.log.Debug("event ignored", map[string]any{"event_type": event.EventType, "aggregate": event.AggregateType})
		metrics.FulfillmentEventsTotal.WithLabelValues("unknown", "ignored").Inc()
		return nil
	case errors.Is(err, store.ErrNotFound):
		p.log.Warn("event references unknown record", map[string]any{"event_type": event.EventType, "aggregate_id": event.AggregateID})
		metrics.FulfillmentEventsTotal.WithLabelValues(event.EventType, "not_found").Inc()
		return nil
	case err != nil:
		metrics.FulfillmentEventsTotal.WithLabelValues(event.EventType, "error").Inc()
		return err
	}
	metrics.FulfillmentEventsTotal.WithLabelValues(event.EventType, "applied").Inc()
	return nil
}

func (p *Projector) handleOrderEvent(ctx context.Context, event domain.Event) error {
	var (
		orderID string
		status  string
		at      time.Time
	)

	switch event.EventType {
	case order.EventOrderProcessing:
		var e order.OrderProcessing
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		orderID, status, at = e.OrderID, readmodel.OrderStatusProcessing, e.StartedAt

	case order.EventOrderShipped:
		var e order.OrderShipped
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		orderID, status, at = e.OrderID, readmodel.OrderStatusShipped, e.ShippedAt

	case order.EventOrderDelivered:
		var e order.OrderDelivered
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		orderID, status, at = e.OrderID, readmodel.OrderStatusDelivered, e.DeliveredAt

	case order.EventOrderReturned:
		var e order.OrderReturned
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		orderID, status, at = e.OrderID, readmodel.OrderStatusReturned, e.ReturnedAt

	default:
		return errIgnoredEvent
	}

	if at.IsZero() {
		at = event.Timestamp
	}
	if err := p.writer.UpdateOrderStatus(ctx, orderID, status, at); err != nil {
		return err
	}
	p.log.Info("order status updated", map[string]any{"order_id": orderID, "status": status})
	return nil
}

func (p *Projector) handleInventoryEvent(ctx context.Context, event domain.Event) error {
	if event.EventType != inventory.EventInventoryItemSold {
		return errIgnoredEvent
	}

	var e inventory.InventoryItemSold
	if err := json.Unmarshal(event.Data, &e); err != nil {
		return err
	}
	at := e.SoldAt
	if at.IsZero() {
		at = event.Timestamp
	}
	if err := p.writer.MarkInventorySold(ctx, e.InventoryItemID, at); err != nil {
		return err
	}
	p.log.Info("inventory item sold", map[string]any{"inventory_item_id": e.InventoryItemID, "product_id": e.ProductID})
	return nil
}
