package main

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/example/ec-chatbot/internal/domain/inventory"
	"github.com/example/ec-chatbot/internal/domain/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildEvent(t *testing.T) {
	now := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)

	event, err := buildEvent("shipped", "AB12", "", "", "", now)
	require.NoError(t, err)
	assert.Equal(t, order.AggregateType, event.AggregateType)
	assert.Equal(t, order.EventOrderShipped, event.EventType)
	assert.Equal(t, "AB12", event.AggregateID)

	var shipped order.OrderShipped
	require.NoError(t, json.Unmarshal(event.Data, &shipped))
	assert.True(t, shipped.ShippedAt.Equal(now))

	event, err = buildEvent("sold", "AB12", "1042", "77", "", now)
	require.NoError(t, err)
	assert.Equal(t, inventory.EventInventoryItemSold, event.EventType)
	assert.Equal(t, "1042", event.AggregateID)
}

func TestBuildEvent_Invalid(t *testing.T) {
	now := time.Now()

	_, err := buildEvent("shipped", "", "", "", "", now)
	assert.Error(t, err)

	_, err = buildEvent("sold", "AB12", "", "", "", now)
	assert.Error(t, err)

	_, err = buildEvent("cancelled", "AB12", "", "", "", now)
	assert.Error(t, err)
}
