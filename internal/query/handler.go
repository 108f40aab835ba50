package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/ec-chatbot/internal/chatbot"
	"github.com/example/ec-chatbot/internal/infrastructure/store"
	"github.com/example/ec-chatbot/internal/logger"
)

// ErrInvalidArgument marks a lookup rejected before it reaches the store
var ErrInvalidArgument = errors.New("invalid argument")

const TopProductsLimit = 5

type Handler struct {
	readStore store.CatalogReader
	log       logger.Logger
}

func NewHandler(readStore store.CatalogReader, log logger.Logger) *Handler {
	return &Handler{readStore: readStore, log: logger.Component(log, "query")}
}

// OrderStatus is an order together with its customer-facing status sentence
type OrderStatus struct {
	OrderID     string     `json:"orderId"`
	Status      string     `json:"status"`
	CreatedAt   *time.Time `json:"createdAt"`
	ShippedAt   *time.Time `json:"shippedAt"`
	DeliveredAt *time.Time `json:"deliveredAt"`
	NumOfItem   int        `json:"numOfItem"`
	TotalAmount float64    `json:"totalAmount"`
	Message     string     `json:"message"`
}

// StockSummary is the unsold unit count across products matching a name
type StockSummary struct {
	ProductName      string `json:"productName"`
	AvailableStock   int    `json:"availableStock"`
	MatchingProducts int    `json:"matchingProducts"`
}

// ProductStock is the unsold unit count of a single product
type ProductStock struct {
	ProductID      string `json:"productId"`
	ProductName    string `json:"productName"`
	AvailableStock int    `json:"availableStock"`
}

// Products

func (h *Handler) TopProducts(ctx context.Context) ([]*ProductReadModel, error) {
	return h.readStore.ListProducts(ctx, TopProductsLimit)
}

func (h *Handler) SearchProducts(ctx context.Context, name string) ([]*ProductReadModel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: query must not be empty", ErrInvalidArgument)
	}
	return h.readStore.SearchProductsByName(ctx, name)
}

func (h *Handler) ProductsByCategory(ctx context.Context, category string) ([]*ProductReadModel, error) {
	return h.readStore.ProductsByCategory(ctx, category)
}

func (h *Handler) ProductsByBrand(ctx context.Context, brand string) ([]*ProductReadModel, error) {
	return h.readStore.ProductsByBrand(ctx, brand)
}

func (h *Handler) ProductsByDepartment(ctx context.Context, department string) ([]*ProductReadModel, error) {
	return h.readStore.ProductsByDepartment(ctx, department)
}

func (h *Handler) ProductsByPriceRange(ctx context.Context, min, max float64) ([]*ProductReadModel, error) {
	if min < 0 || max < min {
		return nil, fmt.Errorf("%w: price range %.2f-%.2f", ErrInvalidArgument, min, max)
	}
	return h.readStore.ProductsByPriceRange(ctx, min, max)
}

func (h *Handler) GetProduct(ctx context.Context, id string) (*ProductReadModel, error) {
	return h.readStore.GetProduct(ctx, id)
}

// Orders

func (h *Handler) OrderStatus(ctx context.Context, orderID string) (*OrderStatus, error) {
	order, err := h.readStore.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	h.log.Debug("order status looked up", map[string]any{"order_id": orderID, "status": order.Status})

	return &OrderStatus{
		OrderID:     order.OrderID,
		Status:      order.Status,
		CreatedAt:   order.CreatedAt,
		ShippedAt:   order.ShippedAt,
		DeliveredAt: order.DeliveredAt,
		NumOfItem:   order.NumOfItem,
		Message:     chatbot.OrderStatusMessage(order),
	}, nil
}

func (h *Handler) OrdersByUser(ctx context.Context, userID string) ([]*OrderReadModel, error) {
	return h.readStore.OrdersByUser(ctx, userID)
}

func (h *Handler) OrdersByStatus(ctx context.Context, status string) ([]*OrderReadModel, error) {
	return h.readStore.OrdersByStatus(ctx, status)
}

func (h *Handler) OrdersByDateRange(ctx context.Context, from, to time.Time) ([]*OrderReadModel, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: date range ends before it starts", ErrInvalidArgument)
	}
	return h.readStore.OrdersByDateRange(ctx, from, to)
}

// OrderItems returns the line-items of an existing order
func (h *Handler) OrderItems(ctx context.Context, orderID string) ([]*OrderItemReadModel, error) {
	if _, err := h.readStore.GetOrder(ctx, orderID); err != nil {
		return nil, err
	}
	return h.readStore.OrderItemsByOrder(ctx, orderID)
}

// Inventory

func (h *Handler) Stock(ctx context.Context, productName string) (*StockSummary, error) {
	products, err := h.readStore.SearchProductsByName(ctx, productName)
	if err != nil {
		return nil, err
	}
	summary := &StockSummary{ProductName: productName, MatchingProducts: len(products)}
	if len(products) == 0 {
		return summary, nil
	}

	summary.AvailableStock, err = h.readStore.CountAvailableStock(ctx, productName)
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// ProductStock counts unsold units of an existing product
func (h *Handler) ProductStock(ctx context.Context, productID string) (*ProductStock, error) {
	product, err := h.readStore.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	count, err := h.readStore.CountAvailableStockByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &ProductStock{ProductID: product.ID, ProductName: product.Name, AvailableStock: count}, nil
}

// Reference data

func (h *Handler) Categories(ctx context.Context) ([]string, error) {
	return h.readStore.DistinctCategories(ctx)
}

func (h *Handler) Brands(ctx context.Context) ([]string, error) {
	return h.readStore.DistinctBrands(ctx)
}

func (h *Handler) Departments(ctx context.Context) ([]string, error) {
	return h.readStore.DistinctDepartments(ctx)
}

func (h *Handler) DistributionCenter(ctx context.Context, id string) (*DistributionCenterReadModel, error) {
	return h.readStore.GetDistributionCenter(ctx, id)
}

func (h *Handler) DistributionCenters(ctx context.Context) ([]*DistributionCenterReadModel, error) {
	return h.readStore.ListDistributionCenters(ctx)
}
