package store

import (
	"context"
	"testing"
	"time"

	"github.com/example/ec-chatbot/internal/readmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(value string) *time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return &t
}

func newLoadedReadStore(t *testing.T) *ReadStore {
	t.Helper()

	rs := NewReadStore()
	err := rs.Load(context.Background(), &Dataset{
		DistributionCenters: []*readmodel.DistributionCenterReadModel{
			{ID: "1", Name: "Memphis TN", Latitude: 35.1174, Longitude: -89.9711},
			{ID: "2", Name: "Chicago IL", Latitude: 41.8369, Longitude: -87.6847},
		},
		Products: []*readmodel.ProductReadModel{
			{ID: "P1", Name: "Blue Jacket", Brand: "Acme", Category: "Outerwear", Department: "Men", RetailPrice: 80},
			{ID: "P2", Name: "Blue Jacket XL", Brand: "Acme", Category: "Outerwear", Department: "Men", RetailPrice: 95},
			{ID: "P3", Name: "Red Scarf", Brand: "Nordic", Category: "Accessories", Department: "Women", RetailPrice: 20},
			{ID: "P4", Name: "Wool Socks", Brand: "nordic", Category: "", Department: "Women", RetailPrice: 12.5},
		},
		InventoryItems: []*readmodel.InventoryItemReadModel{
			{ID: "I1", ProductID: "P1"},
			{ID: "I2", ProductID: "P1"},
			{ID: "I3", ProductID: "P1", SoldAt: ts("2024-01-02")},
			{ID: "I4", ProductID: "P2"},
			{ID: "I5", ProductID: "P3"},
		},
		Orders: []*readmodel.OrderReadModel{
			{OrderID: "AB12", UserID: "u1", Status: "shipped", NumOfItem: 2, CreatedAt: ts("2024-03-01"), ShippedAt: ts("2024-03-05")},
			{OrderID: "CD34", UserID: "u2", Status: "pending", NumOfItem: 1, CreatedAt: ts("2024-04-01")},
			{OrderID: "EF56", UserID: "u1", Status: "Delivered", NumOfItem: 1, CreatedAt: ts("2024-05-01")},
		},
		OrderItems: []*readmodel.OrderItemReadModel{
			{ID: "OI1", OrderID: "AB12", ProductID: "P1", InventoryItemID: "I3", Status: "shipped"},
			{ID: "OI2", OrderID: "AB12", ProductID: "P3", Status: "shipped"},
			{ID: "OI3", OrderID: "CD34", ProductID: "P2", Status: "pending"},
		},
	})
	require.NoError(t, err)
	return rs
}

// ============================================
// Product Tests
// ============================================

func TestReadStore_SearchProductsByName(t *testing.T) {
	rs := newLoadedReadStore(t)
	ctx := context.Background()

	products, err := rs.SearchProductsByName(ctx, "BLUE jacket")
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "P1", products[0].ID)
	assert.Equal(t, "P2", products[1].ID)

	products, err = rs.SearchProductsByName(ctx, "umbrella")
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestReadStore_ProductsByAttribute(t *testing.T) {
	rs := newLoadedReadStore(t)
	ctx := context.Background()

	byBrand, err := rs.ProductsByBrand(ctx, "NORDIC")
	require.NoError(t, err)
	assert.Len(t, byBrand, 2)

	byCategory, err := rs.ProductsByCategory(ctx, "outerwear")
	require.NoError(t, err)
	assert.Len(t, byCategory, 2)

	byDepartment, err := rs.ProductsByDepartment(ctx, "women")
	require.NoError(t, err)
	assert.Len(t, byDepartment, 2)
}

func TestReadStore_ProductsByPriceRange_Inclusive(t *testing.T) {
	rs := newLoadedReadStore(t)

	products, err := rs.ProductsByPriceRange(context.Background(), 20, 80)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "P1", products[0].ID)
	assert.Equal(t, "P3", products[1].ID)
}

func TestReadStore_ListProducts_KeepsLoadOrder(t *testing.T) {
	rs := newLoadedReadStore(t)
	ctx := context.Background()

	products, err := rs.ListProducts(ctx, 2)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "P1", products[0].ID)
	assert.Equal(t, "P2", products[1].ID)

	all, err := rs.ListProducts(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestReadStore_GetProduct_NotFound(t *testing.T) {
	rs := newLoadedReadStore(t)

	_, err := rs.GetProduct(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReadStore_ReturnsCopies(t *testing.T) {
	rs := newLoadedReadStore(t)
	ctx := context.Background()

	p, err := rs.GetProduct(ctx, "P1")
	require.NoError(t, err)
	p.Name = "changed"

	again, err := rs.GetProduct(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, "Blue Jacket", again.Name)
}

// ============================================
// Order Tests
// ============================================

func TestReadStore_GetOrder(t *testing.T) {
	rs := newLoadedReadStore(t)
	ctx := context.Background()

	order, err := rs.GetOrder(ctx, "AB12")
	require.NoError(t, err)
	assert.Equal(t, "shipped", order.Status)
	assert.Equal(t, 2, order.NumOfItem)

	_, err = rs.GetOrder(ctx, "ZZZZZZ")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReadStore_OrderQueries(t *testing.T) {
	rs := newLoadedReadStore(t)
	ctx := context.Background()

	byUser, err := rs.OrdersByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, byUser, 2)
	assert.Equal(t, "AB12", byUser[0].OrderID)

	byStatus, err := rs.OrdersByStatus(ctx, "delivered")
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, "EF56", byStatus[0].OrderID)

	byDate, err := rs.OrdersByDateRange(ctx, *ts("2024-03-01"), *ts("2024-04-01"))
	require.NoError(t, err)
	assert.Len(t, byDate, 2)

	items, err := rs.OrderItemsByOrder(ctx, "AB12")
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

// ============================================
// Inventory Tests
// ============================================

func TestReadStore_CountAvailableStock(t *testing.T) {
	rs := newLoadedReadStore(t)
	ctx := context.Background()

	count, err := rs.CountAvailableStock(ctx, "blue jacket")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	count, err = rs.CountAvailableStock(ctx, "umbrella")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	count, err = rs.CountAvailableStockByProduct(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestReadStore_Distinct(t *testing.T) {
	rs := newLoadedReadStore(t)
	ctx := context.Background()

	categories, err := rs.DistinctCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Outerwear", "Accessories"}, categories)

	brands, err := rs.DistinctBrands(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme", "Nordic", "nordic"}, brands)

	departments, err := rs.DistinctDepartments(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Men", "Women"}, departments)
}

func TestReadStore_DistributionCenters(t *testing.T) {
	rs := newLoadedReadStore(t)
	ctx := context.Background()

	centers, err := rs.ListDistributionCenters(ctx)
	require.NoError(t, err)
	assert.Len(t, centers, 2)

	dc, err := rs.GetDistributionCenter(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "Chicago IL", dc.Name)

	_, err = rs.GetDistributionCenter(ctx, "9")
	assert.ErrorIs(t, err, ErrNotFound)
}

// ============================================
// Fulfillment Tests
// ============================================

func TestReadStore_UpdateOrderStatus(t *testing.T) {
	rs := newLoadedReadStore(t)
	ctx := context.Background()
	deliveredAt := time.Date(2024, 4, 10, 9, 0, 0, 0, time.UTC)

	err := rs.UpdateOrderStatus(ctx, "CD34", readmodel.OrderStatusDelivered, deliveredAt)
	require.NoError(t, err)

	order, err := rs.GetOrder(ctx, "CD34")
	require.NoError(t, err)
	assert.Equal(t, "delivered", order.Status)
	require.NotNil(t, order.DeliveredAt)
	assert.True(t, order.DeliveredAt.Equal(deliveredAt))

	items, err := rs.OrderItemsByOrder(ctx, "CD34")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "delivered", items[0].Status)

	err = rs.UpdateOrderStatus(ctx, "nope", "shipped", deliveredAt)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReadStore_MarkInventorySold(t *testing.T) {
	rs := newLoadedReadStore(t)
	ctx := context.Background()

	require.NoError(t, rs.MarkInventorySold(ctx, "I1", time.Now()))

	count, err := rs.CountAvailableStockByProduct(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	assert.ErrorIs(t, rs.MarkInventorySold(ctx, "missing", time.Now()), ErrNotFound)
}

func TestReadStore_CancelledContext(t *testing.T) {
	rs := newLoadedReadStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := rs.SearchProductsByName(ctx, "blue")
	assert.ErrorIs(t, err, context.Canceled)
}
