package api

import (
	"net/http"

	"github.com/example/ec-chatbot/internal/api/middleware"
	"github.com/example/ec-chatbot/internal/logger"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// BasePath prefixes every chatbot route
const BasePath = "/api/chatbot"

type RouterConfig struct {
	Handlers *Handlers
	Logger   logger.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	h := cfg.Handlers

	r := mux.NewRouter()
	r.Use(middleware.Instrument(cfg.Logger))
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix(BasePath).Subrouter()

	// Chat
	api.HandleFunc("/query", h.Query).Methods(http.MethodPost)
	api.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	// Products
	api.HandleFunc("/products/top", h.GetTopProducts).Methods(http.MethodGet)
	api.HandleFunc("/products/search", h.SearchProducts).Methods(http.MethodGet)
	api.HandleFunc("/products/price-range", h.GetProductsByPriceRange).Methods(http.MethodGet)
	api.HandleFunc("/products/category/{category}", h.GetProductsByCategory).Methods(http.MethodGet)
	api.HandleFunc("/products/brand/{brand}", h.GetProductsByBrand).Methods(http.MethodGet)
	api.HandleFunc("/products/department/{department}", h.GetProductsByDepartment).Methods(http.MethodGet)
	api.HandleFunc("/products/{productId}", h.GetProduct).Methods(http.MethodGet)

	// Orders
	api.HandleFunc("/orders", h.ListOrders).Methods(http.MethodGet)
	api.HandleFunc("/orders/status/{orderId}", h.GetOrderStatus).Methods(http.MethodGet)
	api.HandleFunc("/orders/user/{userId}", h.GetOrdersByUser).Methods(http.MethodGet)
	api.HandleFunc("/orders/{orderId}/items", h.GetOrderItems).Methods(http.MethodGet)

	// Inventory and reference data
	api.HandleFunc("/inventory/stock/{productName}", h.GetStock).Methods(http.MethodGet)
	api.HandleFunc("/inventory/product/{productId}", h.GetProductStock).Methods(http.MethodGet)
	api.HandleFunc("/categories", h.GetCategories).Methods(http.MethodGet)
	api.HandleFunc("/brands", h.GetBrands).Methods(http.MethodGet)
	api.HandleFunc("/departments", h.GetDepartments).Methods(http.MethodGet)
	api.HandleFunc("/distribution-centers", h.GetDistributionCenters).Methods(http.MethodGet)
	api.HandleFunc("/distribution-centers/{id}", h.GetDistributionCenter).Methods(http.MethodGet)

	return middleware.RequestID(middleware.CORS(r))
}
