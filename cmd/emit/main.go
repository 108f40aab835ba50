package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/example/ec-chatbot/internal/config"
	"github.com/example/ec-chatbot/internal/domain"
	"github.com/example/ec-chatbot/internal/domain/inventory"
	"github.com/example/ec-chatbot/internal/domain/order"
	"github.com/example/ec-chatbot/internal/infrastructure/kafka"
)

// emit publishes a single fulfillment event, for replaying a missed update
// or exercising a projector by hand:
//
//	emit -event shipped -order AB12
//	emit -event sold -item 1042 -product 77 -order AB12
func main() {
	eventName := flag.String("event", "", "processing | shipped | delivered | returned | sold")
	orderID := flag.String("order", "", "order id")
	itemID := flag.String("item", "", "inventory item id (sold)")
	productID := flag.String("product", "", "product id (sold)")
	reason := flag.String("reason", "", "return reason (returned)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "[Emit] failed to load config: %v\n", err)
		os.Exit(1)
	}

	event, err := buildEvent(*eventName, *orderID, *itemID, *productID, *reason, time.Now().UTC())
	if err != nil {
		fmt.Fprintf(os.Stderr, "[Emit] %v\n", err)
		flag.Usage()
		os.Exit(2)
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer producer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := producer.Publish(ctx, event); err != nil {
		fmt.Fprintf(os.Stderr, "[Emit] publish failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("[Emit] published %s for %s to %s\n", event.EventType, event.AggregateID, cfg.Kafka.Topic)
}

func buildEvent(name, orderID, itemID, productID, reason string, now time.Time) (domain.Event, error) {
	if name == "sold" {
		if itemID == "" {
			return domain.Event{}, errors.New("-item is required for sold")
		}
		return kafka.NewEvent(inventory.AggregateType, itemID, inventory.EventInventoryItemSold, inventory.InventoryItemSold{
			InventoryItemID: itemID,
			ProductID:       productID,
			OrderID:         orderID,
			SoldAt:          now,
		})
	}

	if orderID == "" {
		return domain.Event{}, fmt.Errorf("-order is required for %s", name)
	}

	var (
		eventType string
		payload   any
	)
	switch name {
	case "processing":
		eventType, payload = order.EventOrderProcessing, order.OrderProcessing{OrderID: orderID, StartedAt: now}
	case "shipped":
		eventType, payload = order.EventOrderShipped, order.OrderShipped{OrderID: orderID, ShippedAt: now}
	case "delivered":
		eventType, payload = order.EventOrderDelivered, order.OrderDelivered{OrderID: orderID, DeliveredAt: now}
	case "returned":
		eventType, payload = order.EventOrderReturned, order.OrderReturned{OrderID: orderID, Reason: reason, ReturnedAt: now}
	default:
		return domain.Event{}, fmt.Errorf("unknown event %q", name)
	}
	return kafka.NewEvent(order.AggregateType, orderID, eventType, payload)
}
