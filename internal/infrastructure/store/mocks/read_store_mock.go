package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/example/ec-chatbot/internal/infrastructure/store"
	"github.com/example/ec-chatbot/internal/readmodel"
)

// MockReadStore is a mock implementation of store.CatalogReader and
// store.FulfillmentWriter for testing. Data lives in an in-memory
// store.ReadStore; failures are injected per method name through Errors.
type MockReadStore struct {
	mu      sync.Mutex
	backing *store.ReadStore

	// Errors maps a method name (e.g. "GetOrder") to the error it should return
	Errors map[string]error

	// For tracking calls in tests
	Calls []Call
}

// Call records a method invocation and its first argument
type Call struct {
	Method string
	Arg    any
}

// NewMockReadStore creates a new MockReadStore
func NewMockReadStore() *MockReadStore {
	return &MockReadStore{
		backing: store.NewReadStore(),
		Errors:  make(map[string]error),
		Calls:   make([]Call, 0),
	}
}

// SetData replaces the stored dataset
func (m *MockReadStore) SetData(data *store.Dataset) {
	_ = m.backing.Load(context.Background(), data)
}

// FailWith makes method return err until cleared
func (m *MockReadStore) FailWith(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors[method] = err
}

// CallCount returns how many times method was invoked
func (m *MockReadStore) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, c := range m.Calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// Reset clears recorded calls and injected errors
func (m *MockReadStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = make([]Call, 0)
	m.Errors = make(map[string]error)
}

func (m *MockReadStore) record(method string, arg any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, Call{Method: method, Arg: arg})
	return m.Errors[method]
}

func (m *MockReadStore) SearchProductsByName(ctx context.Context, fragment string) ([]*readmodel.ProductReadModel, error) {
	if err := m.record("SearchProductsByName", fragment); err != nil {
		return nil, err
	}
	return m.backing.SearchProductsByName(ctx, fragment)
}

func (m *MockReadStore) ProductsByCategory(ctx context.Context, category string) ([]*readmodel.ProductReadModel, error) {
	if err := m.record("ProductsByCategory", category); err != nil {
		return nil, err
	}
	return m.backing.ProductsByCategory(ctx, category)
}

func (m *MockReadStore) ProductsByBrand(ctx context.Context, brand string) ([]*readmodel.ProductReadModel, error) {
	if err := m.record("ProductsByBrand", brand); err != nil {
		return nil, err
	}
	return m.backing.ProductsByBrand(ctx, brand)
}

func (m *MockReadStore) ProductsByDepartment(ctx context.Context, department string) ([]*readmodel.ProductReadModel, error) {
	if err := m.record("ProductsByDepartment", department); err != nil {
		return nil, err
	}
	return m.backing.ProductsByDepartment(ctx, department)
}

func (m *MockReadStore) ProductsByPriceRange(ctx context.Context, min, max float64) ([]*readmodel.ProductReadModel, error) {
	if err := m.record("ProductsByPriceRange", [2]float64{min, max}); err != nil {
		return nil, err
	}
	return m.backing.ProductsByPriceRange(ctx, min, max)
}

func (m *MockReadStore) ListProducts(ctx context.Context, limit int) ([]*readmodel.ProductReadModel, error) {
	if err := m.record("ListProducts", limit); err != nil {
		return nil, err
	}
	return m.backing.ListProducts(ctx, limit)
}

func (m *MockReadStore) GetProduct(ctx context.Context, id string) (*readmodel.ProductReadModel, error) {
	if err := m.record("GetProduct", id); err != nil {
		return nil, err
	}
	return m.backing.GetProduct(ctx, id)
}

func (m *MockReadStore) GetOrder(ctx context.Context, orderID string) (*readmodel.OrderReadModel, error) {
	if err := m.record("GetOrder", orderID); err != nil {
		return nil, err
	}
	return m.backing.GetOrder(ctx, orderID)
}

func (m *MockReadStore) OrdersByUser(ctx context.Context, userID string) ([]*readmodel.OrderReadModel, error) {
	if err := m.record("OrdersByUser", userID); err != nil {
		return nil, err
	}
	return m.backing.OrdersByUser(ctx, userID)
}

func (m *MockReadStore) OrdersByStatus(ctx context.Context, status string) ([]*readmodel.OrderReadModel, error) {
	if err := m.record("OrdersByStatus", status); err != nil {
		return nil, err
	}
	return m.backing.OrdersByStatus(ctx, status)
}

func (m *MockReadStore) OrdersByDateRange(ctx context.Context, from, to time.Time) ([]*readmodel.OrderReadModel, error) {
	if err := m.record("OrdersByDateRange", [2]time.Time{from, to}); err != nil {
		return nil, err
	}
	return m.backing.OrdersByDateRange(ctx, from, to)
}

func (m *MockReadStore) OrderItemsByOrder(ctx context.Context, orderID string) ([]*readmodel.OrderItemReadModel, error) {
	if err := m.record("OrderItemsByOrder", orderID); err != nil {
		return nil, err
	}
	return m.backing.OrderItemsByOrder(ctx, orderID)
}

func (m *MockReadStore) CountAvailableStock(ctx context.Context, fragment string) (int, error) {
	if err := m.record("CountAvailableStock", fragment); err != nil {
		return 0, err
	}
	return m.backing.CountAvailableStock(ctx, fragment)
}

func (m *MockReadStore) CountAvailableStockByProduct(ctx context.Context, productID string) (int, error) {
	if err := m.record("CountAvailableStockByProduct", productID); err != nil {
		return 0, err
	}
	return m.backing.CountAvailableStockByProduct(ctx, productID)
}

func (m *MockReadStore) DistinctCategories(ctx context.Context) ([]string, error) {
	if err := m.record("DistinctCategories", nil); err != nil {
		return nil, err
	}
	return m.backing.DistinctCategories(ctx)
}

func (m *MockReadStore) DistinctBrands(ctx context.Context) ([]string, error) {
	if err := m.record("DistinctBrands", nil); err != nil {
		return nil, err
	}
	return m.backing.DistinctBrands(ctx)
}

func (m *MockReadStore) DistinctDepartments(ctx context.Context) ([]string, error) {
	if err := m.record("DistinctDepartments", nil); err != nil {
		return nil, err
	}
	return m.backing.DistinctDepartments(ctx)
}

func (m *MockReadStore) GetDistributionCenter(ctx context.Context, id string) (*readmodel.DistributionCenterReadModel, error) {
	if err := m.record("GetDistributionCenter", id); err != nil {
		return nil, err
	}
	return m.backing.GetDistributionCenter(ctx, id)
}

func (m *MockReadStore) ListDistributionCenters(ctx context.Context) ([]*readmodel.DistributionCenterReadModel, error) {
	if err := m.record("ListDistributionCenters", nil); err != nil {
		return nil, err
	}
	return m.backing.ListDistributionCenters(ctx)
}

func (m *MockReadStore) UpdateOrderStatus(ctx context.Context, orderID, status string, at time.Time) error {
	if err := m.record("UpdateOrderStatus", orderID); err != nil {
		return err
	}
	return m.backing.UpdateOrderStatus(ctx, orderID, status, at)
}

func (m *MockReadStore) MarkInventorySold(ctx context.Context, inventoryItemID string, soldAt time.Time) error {
	if err := m.record("MarkInventorySold", inventoryItemID); err != nil {
		return err
	}
	return m.backing.MarkInventorySold(ctx, inventoryItemID, soldAt)
}

var (
	_ store.CatalogReader     = (*MockReadStore)(nil)
	_ store.FulfillmentWriter = (*MockReadStore)(nil)
)
