package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/ec-chatbot/internal/infrastructure/store"
	"github.com/example/ec-chatbot/internal/infrastructure/store/mocks"
	"github.com/example/ec-chatbot/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueryHandler(t *testing.T) (*Handler, *mocks.MockReadStore) {
	t.Helper()
	shipped := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)

	readStore := mocks.NewMockReadStore()
	readStore.SetData(&store.Dataset{
		Products: []*ProductReadModel{
			{ID: "P1", Name: "Blue Jacket", Brand: "Acme", Category: "Outerwear", Department: "Men", RetailPrice: 80},
			{ID: "P2", Name: "Blue Jacket XL", Brand: "Acme", Category: "Outerwear", Department: "Men", RetailPrice: 95},
			{ID: "P3", Name: "Red Scarf", Brand: "Nordic", Category: "Accessories", Department: "Women", RetailPrice: 20},
		},
		InventoryItems: []*InventoryItemReadModel{
			{ID: "I1", ProductID: "P1"},
			{ID: "I2", ProductID: "P2"},
			{ID: "I3", ProductID: "P2"},
		},
		Orders: []*OrderReadModel{
			{OrderID: "AB12", UserID: "u1", Status: "shipped", NumOfItem: 2, ShippedAt: &shipped},
		},
		OrderItems: []*OrderItemReadModel{
			{ID: "OI1", OrderID: "AB12", ProductID: "P1"},
		},
		DistributionCenters: []*DistributionCenterReadModel{{ID: "1", Name: "Memphis TN"}},
	})
	return NewHandler(readStore, logger.NewTestLogger(t)), readStore
}

// ============================================
// Product Query Tests
// ============================================

func TestHandler_TopProducts(t *testing.T) {
	handler, readStore := newTestQueryHandler(t)

	products, err := handler.TopProducts(context.Background())

	require.NoError(t, err)
	assert.Len(t, products, 3)
	assert.Equal(t, 1, readStore.CallCount("ListProducts"))
	assert.Equal(t, TopProductsLimit, readStore.Calls[0].Arg)
}

func TestHandler_SearchProducts_RejectsEmpty(t *testing.T) {
	handler, readStore := newTestQueryHandler(t)

	_, err := handler.SearchProducts(context.Background(), "   ")

	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, 0, readStore.CallCount("SearchProductsByName"))
}

func TestHandler_ProductsByPriceRange(t *testing.T) {
	handler, _ := newTestQueryHandler(t)
	ctx := context.Background()

	products, err := handler.ProductsByPriceRange(ctx, 10, 80)
	require.NoError(t, err)
	assert.Len(t, products, 2)

	_, err = handler.ProductsByPriceRange(ctx, 90, 10)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

// ============================================
// Order Query Tests
// ============================================

func TestHandler_OrderStatus(t *testing.T) {
	handler, _ := newTestQueryHandler(t)

	status, err := handler.OrderStatus(context.Background(), "AB12")

	require.NoError(t, err)
	assert.Equal(t, "shipped", status.Status)
	assert.Equal(t, 2, status.NumOfItem)
	assert.Equal(t, "Your order #AB12 was shipped on Mar 05, 2024 and is on its way to you.", status.Message)
}

func TestHandler_OrderStatus_NotFound(t *testing.T) {
	handler, _ := newTestQueryHandler(t)

	_, err := handler.OrderStatus(context.Background(), "nope")

	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestHandler_OrderItems(t *testing.T) {
	handler, _ := newTestQueryHandler(t)
	ctx := context.Background()

	items, err := handler.OrderItems(ctx, "AB12")
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = handler.OrderItems(ctx, "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestHandler_OrdersByDateRange_Invalid(t *testing.T) {
	handler, _ := newTestQueryHandler(t)
	now := time.Now()

	_, err := handler.OrdersByDateRange(context.Background(), now, now.Add(-time.Hour))

	assert.ErrorIs(t, err, ErrInvalidArgument)
}

// ============================================
// Inventory Query Tests
// ============================================

func TestHandler_Stock(t *testing.T) {
	handler, _ := newTestQueryHandler(t)

	summary, err := handler.Stock(context.Background(), "blue jacket")

	require.NoError(t, err)
	assert.Equal(t, &StockSummary{ProductName: "blue jacket", AvailableStock: 3, MatchingProducts: 2}, summary)
}

func TestHandler_Stock_NoMatch(t *testing.T) {
	handler, readStore := newTestQueryHandler(t)

	summary, err := handler.Stock(context.Background(), "umbrella")

	require.NoError(t, err)
	assert.Equal(t, 0, summary.MatchingProducts)
	assert.Equal(t, 0, readStore.CallCount("CountAvailableStock"))
}

func TestHandler_Stock_StoreError(t *testing.T) {
	handler, readStore := newTestQueryHandler(t)
	dbErr := errors.New("db down")
	readStore.FailWith("CountAvailableStock", dbErr)

	_, err := handler.Stock(context.Background(), "blue")

	assert.ErrorIs(t, err, dbErr)
}

func TestHandler_ReferenceData(t *testing.T) {
	handler, _ := newTestQueryHandler(t)
	ctx := context.Background()

	brands, err := handler.Brands(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme", "Nordic"}, brands)

	departments, err := handler.Departments(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Men", "Women"}, departments)

	centers, err := handler.DistributionCenters(ctx)
	require.NoError(t, err)
	assert.Len(t, centers, 1)
}

func TestHandler_ProductStock(t *testing.T) {
	handler, readStore := newTestQueryHandler(t)
	ctx := context.Background()

	stock, err := handler.ProductStock(ctx, "P2")
	require.NoError(t, err)
	assert.Equal(t, &ProductStock{ProductID: "P2", ProductName: "Blue Jacket XL", AvailableStock: 2}, stock)

	_, err = handler.ProductStock(ctx, "P9")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, 1, readStore.CallCount("CountAvailableStockByProduct"))
}

func TestHandler_DistributionCenter(t *testing.T) {
	handler, _ := newTestQueryHandler(t)
	ctx := context.Background()

	dc, err := handler.DistributionCenter(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Memphis TN", dc.Name)

	_, err = handler.DistributionCenter(ctx, "9")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
