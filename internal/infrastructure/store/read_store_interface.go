package store

import (
	"context"
	"errors"
	"time"

	"github.com/example/ec-chatbot/internal/readmodel"
)

// ErrNotFound is returned by identifier lookups when no record matches.
var ErrNotFound = errors.New("record not found")

// CatalogReader defines read-only lookups over the catalog, orders and inventory.
// List lookups return an empty slice when nothing matches.
type CatalogReader interface {
	SearchProductsByName(ctx context.Context, fragment string) ([]*readmodel.ProductReadModel, error)
	ProductsByCategory(ctx context.Context, category string) ([]*readmodel.ProductReadModel, error)
	ProductsByBrand(ctx context.Context, brand string) ([]*readmodel.ProductReadModel, error)
	ProductsByDepartment(ctx context.Context, department string) ([]*readmodel.ProductReadModel, error)
	ProductsByPriceRange(ctx context.Context, min, max float64) ([]*readmodel.ProductReadModel, error)
	// ListProducts returns the first limit products in load order; a
	// negative limit returns all of them.
	ListProducts(ctx context.Context, limit int) ([]*readmodel.ProductReadModel, error)
	GetProduct(ctx context.Context, id string) (*readmodel.ProductReadModel, error)

	GetOrder(ctx context.Context, orderID string) (*readmodel.OrderReadModel, error)
	OrdersByUser(ctx context.Context, userID string) ([]*readmodel.OrderReadModel, error)
	OrdersByStatus(ctx context.Context, status string) ([]*readmodel.OrderReadModel, error)
	OrdersByDateRange(ctx context.Context, from, to time.Time) ([]*readmodel.OrderReadModel, error)
	OrderItemsByOrder(ctx context.Context, orderID string) ([]*readmodel.OrderItemReadModel, error)

	CountAvailableStock(ctx context.Context, fragment string) (int, error)
	CountAvailableStockByProduct(ctx context.Context, productID string) (int, error)

	DistinctCategories(ctx context.Context) ([]string, error)
	DistinctBrands(ctx context.Context) ([]string, error)
	DistinctDepartments(ctx context.Context) ([]string, error)

	GetDistributionCenter(ctx context.Context, id string) (*readmodel.DistributionCenterReadModel, error)
	ListDistributionCenters(ctx context.Context) ([]*readmodel.DistributionCenterReadModel, error)
}

// Dataset is one bulk load of every collection.
type Dataset struct {
	DistributionCenters []*readmodel.DistributionCenterReadModel
	Products            []*readmodel.ProductReadModel
	InventoryItems      []*readmodel.InventoryItemReadModel
	Orders              []*readmodel.OrderReadModel
	OrderItems          []*readmodel.OrderItemReadModel
}

// BulkWriter replaces store contents with a freshly loaded dataset.
type BulkWriter interface {
	Load(ctx context.Context, data *Dataset) error
}

// FulfillmentWriter applies order and inventory state changes.
type FulfillmentWriter interface {
	UpdateOrderStatus(ctx context.Context, orderID, status string, at time.Time) error
	MarkInventorySold(ctx context.Context, inventoryItemID string, soldAt time.Time) error
}
