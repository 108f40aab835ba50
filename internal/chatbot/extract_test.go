package chatbot

import (
	"testing"
	"time"

	"github.com/example/ec-chatbot/internal/readmodel"
	"github.com/stretchr/testify/assert"
)

func TestRuleExtractor_OrderID(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     string
		wantOK   bool
	}{
		{"id after order", "What's the status of order AB12", "AB12", true},
		{"numeric id", "track order 10432", "10432", true},
		{"first qualifying word wins", "track order after MAY 2", "MAY", true},
		{"lowercase only", "what is my order status", "", false},
		{"punctuation boundary", "order status (XK9)?", "XK9", true},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := RuleExtractor{}.OrderID(tt.question)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRuleExtractor_ProductFragment(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     string
		wantOK   bool
	}{
		{"after find", "Find the blue jacket", "blue jacket", true},
		{"strips punctuation", "search: wool socks!!", "wool socks", true},
		{"collapses inner stop words", "looking for a scarf with tassels", "scarf tassels", true},
		{"stock then fragment", "check stock for Rain Boots", "rain boots", true},
		{"keyword at end uses preceding text", "Is the Blue Jacket available?", "blue jacket", true},
		{"in stock at end", "How many Blue Jacket in stock?", "blue jacket", true},
		{"search at end", "red shoes search", "red shoes", true},
		{"next keyword when first is empty", "stock: find", "find", true},
		{"nothing but filler", "Is it available?", "", false},
		{"no keyword", "hello there", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := RuleExtractor{}.ProductFragment(tt.question)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOrderStatusMessage(t *testing.T) {
	at := time.Date(2024, 7, 4, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		order readmodel.OrderReadModel
		want  string
	}{
		{"pending", readmodel.OrderReadModel{OrderID: "1", Status: "pending"},
			"Your order #1 is currently pending and will be processed soon."},
		{"processing", readmodel.OrderReadModel{OrderID: "2", Status: "Processing"},
			"Your order #2 is being processed and will be shipped shortly."},
		{"shipped", readmodel.OrderReadModel{OrderID: "3", Status: "shipped", ShippedAt: &at},
			"Your order #3 was shipped on Jul 04, 2024 and is on its way to you."},
		{"delivered", readmodel.OrderReadModel{OrderID: "4", Status: "delivered", DeliveredAt: &at},
			"Your order #4 was delivered on Jul 04, 2024. Thank you for your purchase!"},
		{"delivered without date", readmodel.OrderReadModel{OrderID: "5", Status: "delivered"},
			"Your order #5 was delivered on recently. Thank you for your purchase!"},
		{"returned", readmodel.OrderReadModel{OrderID: "6", Status: "RETURNED", ReturnedAt: &at},
			"Your order #6 was returned on Jul 04, 2024."},
		{"other", readmodel.OrderReadModel{OrderID: "7", Status: "Cancelled"},
			"Your order #7 status is: Cancelled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OrderStatusMessage(&tt.order))
		})
	}
}
