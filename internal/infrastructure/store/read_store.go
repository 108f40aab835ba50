package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/example/ec-chatbot/internal/readmodel"
)

// ReadStore is an in-memory read model store. Collections keep load order,
// which is the order list lookups return records in.
type ReadStore struct {
	mu sync.RWMutex

	products            []*readmodel.ProductReadModel
	orders              []*readmodel.OrderReadModel
	orderItems          []*readmodel.OrderItemReadModel
	inventory           []*readmodel.InventoryItemReadModel
	distributionCenters []*readmodel.DistributionCenterReadModel

	productsByID  map[string]*readmodel.ProductReadModel
	ordersByID    map[string]*readmodel.OrderReadModel
	inventoryByID map[string]*readmodel.InventoryItemReadModel
	centersByID   map[string]*readmodel.DistributionCenterReadModel
}

func NewReadStore() *ReadStore {
	rs := &ReadStore{}
	rs.reset()
	return rs
}

func (rs *ReadStore) reset() {
	rs.products = nil
	rs.orders = nil
	rs.orderItems = nil
	rs.inventory = nil
	rs.distributionCenters = nil
	rs.productsByID = make(map[string]*readmodel.ProductReadModel)
	rs.ordersByID = make(map[string]*readmodel.OrderReadModel)
	rs.inventoryByID = make(map[string]*readmodel.InventoryItemReadModel)
	rs.centersByID = make(map[string]*readmodel.DistributionCenterReadModel)
}

// Load replaces every collection with the given dataset
func (rs *ReadStore) Load(ctx context.Context, data *Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()

	rs.reset()
	for _, dc := range data.DistributionCenters {
		c := *dc
		rs.distributionCenters = append(rs.distributionCenters, &c)
		rs.centersByID[c.ID] = &c
	}
	for _, p := range data.Products {
		c := *p
		rs.products = append(rs.products, &c)
		rs.productsByID[c.ID] = &c
	}
	for _, item := range data.InventoryItems {
		c := *item
		rs.inventory = append(rs.inventory, &c)
		rs.inventoryByID[c.ID] = &c
	}
	for _, o := range data.Orders {
		c := *o
		rs.orders = append(rs.orders, &c)
		rs.ordersByID[c.OrderID] = &c
	}
	for _, item := range data.OrderItems {
		c := *item
		rs.orderItems = append(rs.orderItems, &c)
	}
	return nil
}

// Product lookups

func (rs *ReadStore) SearchProductsByName(ctx context.Context, fragment string) ([]*readmodel.ProductReadModel, error) {
	needle := strings.ToLower(fragment)
	return rs.filterProducts(ctx, func(p *readmodel.ProductReadModel) bool {
		return strings.Contains(strings.ToLower(p.Name), needle)
	})
}

func (rs *ReadStore) ProductsByCategory(ctx context.Context, category string) ([]*readmodel.ProductReadModel, error) {
	return rs.filterProducts(ctx, func(p *readmodel.ProductReadModel) bool {
		return strings.EqualFold(p.Category, category)
	})
}

func (rs *ReadStore) ProductsByBrand(ctx context.Context, brand string) ([]*readmodel.ProductReadModel, error) {
	return rs.filterProducts(ctx, func(p *readmodel.ProductReadModel) bool {
		return strings.EqualFold(p.Brand, brand)
	})
}

func (rs *ReadStore) ProductsByDepartment(ctx context.Context, department string) ([]*readmodel.ProductReadModel, error) {
	return rs.filterProducts(ctx, func(p *readmodel.ProductReadModel) bool {
		return strings.EqualFold(p.Department, department)
	})
}

func (rs *ReadStore) ProductsByPriceRange(ctx context.Context, min, max float64) ([]*readmodel.ProductReadModel, error) {
	return rs.filterProducts(ctx, func(p *readmodel.ProductReadModel) bool {
		return p.RetailPrice >= min && p.RetailPrice <= max
	})
}

func (rs *ReadStore) ListProducts(ctx context.Context, limit int) ([]*readmodel.ProductReadModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rs.mu.RLock()
	defer rs.mu.RUnlock()

	n := len(rs.products)
	if limit >= 0 && limit < n {
		n = limit
	}
	result := make([]*readmodel.ProductReadModel, 0, n)
	for _, p := range rs.products[:n] {
		c := *p
		result = append(result, &c)
	}
	return result, nil
}

func (rs *ReadStore) GetProduct(ctx context.Context, id string) (*readmodel.ProductReadModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rs.mu.RLock()
	defer rs.mu.RUnlock()

	p, ok := rs.productsByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *p
	return &c, nil
}

func (rs *ReadStore) filterProducts(ctx context.Context, match func(*readmodel.ProductReadModel) bool) ([]*readmodel.ProductReadModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rs.mu.RLock()
	defer rs.mu.RUnlock()

	result := make([]*readmodel.ProductReadModel, 0)
	for _, p := range rs.products {
		if match(p) {
			c := *p
			result = append(result, &c)
		}
	}
	return result, nil
}

// Order lookups

func (rs *ReadStore) GetOrder(ctx context.Context, orderID string) (*readmodel.OrderReadModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rs.mu.RLock()
	defer rs.mu.RUnlock()

	o, ok := rs.ordersByID[orderID]
	if !ok {
		return nil, ErrNotFound
	}
	c := *o
	return &c, nil
}

func (rs *ReadStore) OrdersByUser(ctx context.Context, userID string) ([]*readmodel.OrderReadModel, error) {
	return rs.filterOrders(ctx, func(o *readmodel.OrderReadModel) bool {
		return o.UserID == userID
	})
}

func (rs *ReadStore) OrdersByStatus(ctx context.Context, status string) ([]*readmodel.OrderReadModel, error) {
	return rs.filterOrders(ctx, func(o *readmodel.OrderReadModel) bool {
		return strings.EqualFold(o.Status, status)
	})
}

func (rs *ReadStore) OrdersByDateRange(ctx context.Context, from, to time.Time) ([]*readmodel.OrderReadModel, error) {
	return rs.filterOrders(ctx, func(o *readmodel.OrderReadModel) bool {
		return o.CreatedAt != nil && !o.CreatedAt.Before(from) && !o.CreatedAt.After(to)
	})
}

func (rs *ReadStore) filterOrders(ctx context.Context, match func(*readmodel.OrderReadModel) bool) ([]*readmodel.OrderReadModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rs.mu.RLock()
	defer rs.mu.RUnlock()

	result := make([]*readmodel.OrderReadModel, 0)
	for _, o := range rs.orders {
		if match(o) {
			c := *o
			result = append(result, &c)
		}
	}
	return result, nil
}

func (rs *ReadStore) OrderItemsByOrder(ctx context.Context, orderID string) ([]*readmodel.OrderItemReadModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rs.mu.RLock()
	defer rs.mu.RUnlock()

	result := make([]*readmodel.OrderItemReadModel, 0)
	for _, item := range rs.orderItems {
		if item.OrderID == orderID {
			c := *item
			result = append(result, &c)
		}
	}
	return result, nil
}

// Inventory lookups

// CountAvailableStock sums unsold units across every product whose name
// contains fragment, case-insensitively.
func (rs *ReadStore) CountAvailableStock(ctx context.Context, fragment string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	rs.mu.RLock()
	defer rs.mu.RUnlock()

	needle := strings.ToLower(fragment)
	matched := make(map[string]struct{})
	for _, p := range rs.products {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			matched[p.ID] = struct{}{}
		}
	}

	count := 0
	for _, item := range rs.inventory {
		if _, ok := matched[item.ProductID]; ok && item.Available() {
			count++
		}
	}
	return count, nil
}

func (rs *ReadStore) CountAvailableStockByProduct(ctx context.Context, productID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	rs.mu.RLock()
	defer rs.mu.RUnlock()

	count := 0
	for _, item := range rs.inventory {
		if item.ProductID == productID && item.Available() {
			count++
		}
	}
	return count, nil
}

// Distinct values, in first-seen order

func (rs *ReadStore) DistinctCategories(ctx context.Context) ([]string, error) {
	return rs.distinct(ctx, func(p *readmodel.ProductReadModel) string { return p.Category })
}

func (rs *ReadStore) DistinctBrands(ctx context.Context) ([]string, error) {
	return rs.distinct(ctx, func(p *readmodel.ProductReadModel) string { return p.Brand })
}

func (rs *ReadStore) DistinctDepartments(ctx context.Context) ([]string, error) {
	return rs.distinct(ctx, func(p *readmodel.ProductReadModel) string { return p.Department })
}

func (rs *ReadStore) distinct(ctx context.Context, field func(*readmodel.ProductReadModel) string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rs.mu.RLock()
	defer rs.mu.RUnlock()

	seen := make(map[string]struct{})
	result := make([]string, 0)
	for _, p := range rs.products {
		v := field(p)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result, nil
}

// Distribution centers

func (rs *ReadStore) GetDistributionCenter(ctx context.Context, id string) (*readmodel.DistributionCenterReadModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rs.mu.RLock()
	defer rs.mu.RUnlock()

	dc, ok := rs.centersByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *dc
	return &c, nil
}

func (rs *ReadStore) ListDistributionCenters(ctx context.Context) ([]*readmodel.DistributionCenterReadModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rs.mu.RLock()
	defer rs.mu.RUnlock()

	result := make([]*readmodel.DistributionCenterReadModel, 0, len(rs.distributionCenters))
	for _, dc := range rs.distributionCenters {
		c := *dc
		result = append(result, &c)
	}
	return result, nil
}

// Fulfillment updates

// UpdateOrderStatus sets the order status and stamps the timestamp that
// belongs to it. Line-items of the order follow the same status.
func (rs *ReadStore) UpdateOrderStatus(ctx context.Context, orderID, status string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()

	o, ok := rs.ordersByID[orderID]
	if !ok {
		return ErrNotFound
	}

	stamp := at
	o.Status = status
	switch status {
	case readmodel.OrderStatusShipped:
		o.ShippedAt = &stamp
	case readmodel.OrderStatusDelivered:
		o.DeliveredAt = &stamp
	case readmodel.OrderStatusReturned:
		o.ReturnedAt = &stamp
	}

	for _, item := range rs.orderItems {
		if item.OrderID != orderID {
			continue
		}
		item.Status = status
		switch status {
		case readmodel.OrderStatusShipped:
			item.ShippedAt = &stamp
		case readmodel.OrderStatusDelivered:
			item.DeliveredAt = &stamp
		case readmodel.OrderStatusReturned:
			item.ReturnedAt = &stamp
		}
	}
	return nil
}

func (rs *ReadStore) MarkInventorySold(ctx context.Context, inventoryItemID string, soldAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()

	item, ok := rs.inventoryByID[inventoryItemID]
	if !ok {
		return ErrNotFound
	}
	stamp := soldAt
	item.SoldAt = &stamp
	return nil
}
