package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/ec-chatbot/internal/chatbot"
	"github.com/example/ec-chatbot/internal/infrastructure/store"
	"github.com/example/ec-chatbot/internal/logger"
	"github.com/example/ec-chatbot/internal/query"
	"github.com/gorilla/mux"
)

// QuestionProcessor answers a free-text customer question
type QuestionProcessor interface {
	ProcessQuestion(ctx context.Context, question string) chatbot.Response
}

type Handlers struct {
	queryHandler *query.Handler
	chatbot      QuestionProcessor
	log          logger.Logger
}

func NewHandlers(queryHandler *query.Handler, bot QuestionProcessor, log logger.Logger) *Handlers {
	return &Handlers{
		queryHandler: queryHandler,
		chatbot:      bot,
		log:          logger.Component(log, "api"),
	}
}

// queryRequest accepts both "question" and the legacy "query" field
type queryRequest struct {
	Question string `json:"question"`
	Query    string `json:"query"`
}

// Chat

func (h *Handlers) Query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	question := req.Question
	if question == "" {
		question = req.Query
	}
	if strings.TrimSpace(question) == "" {
		respondError(w, http.StatusBadRequest, "question is required")
		return
	}

	respondJSON(w, http.StatusOK, h.chatbot.ProcessQuestion(r.Context(), question))
}

// Product Handlers

func (h *Handlers) GetTopProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.queryHandler.TopProducts(r.Context())
	h.respond(w, products, err)
}

func (h *Handlers) SearchProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.queryHandler.SearchProducts(r.Context(), r.URL.Query().Get("query"))
	h.respond(w, products, err)
}

func (h *Handlers) GetProductsByCategory(w http.ResponseWriter, r *http.Request) {
	products, err := h.queryHandler.ProductsByCategory(r.Context(), mux.Vars(r)["category"])
	h.respond(w, products, err)
}

func (h *Handlers) GetProductsByBrand(w http.ResponseWriter, r *http.Request) {
	products, err := h.queryHandler.ProductsByBrand(r.Context(), mux.Vars(r)["brand"])
	h.respond(w, products, err)
}

func (h *Handlers) GetProductsByDepartment(w http.ResponseWriter, r *http.Request) {
	products, err := h.queryHandler.ProductsByDepartment(r.Context(), mux.Vars(r)["department"])
	h.respond(w, products, err)
}

func (h *Handlers) GetProductsByPriceRange(w http.ResponseWriter, r *http.Request) {
	minPrice, err := strconv.ParseFloat(r.URL.Query().Get("minPrice"), 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "minPrice must be a number")
		return
	}
	maxPrice, err := strconv.ParseFloat(r.URL.Query().Get("maxPrice"), 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "maxPrice must be a number")
		return
	}

	products, err := h.queryHandler.ProductsByPriceRange(r.Context(), minPrice, maxPrice)
	h.respond(w, products, err)
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.queryHandler.GetProduct(r.Context(), mux.Vars(r)["productId"])
	h.respond(w, product, err)
}

// Order Handlers

func (h *Handlers) GetOrderStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.queryHandler.OrderStatus(r.Context(), mux.Vars(r)["orderId"])
	h.respond(w, status, err)
}

func (h *Handlers) GetOrdersByUser(w http.ResponseWriter, r *http.Request) {
	orders, err := h.queryHandler.OrdersByUser(r.Context(), mux.Vars(r)["userId"])
	h.respond(w, orders, err)
}

// ListOrders filters by ?status= or by ?from=&to= (RFC 3339 or YYYY-MM-DD;
// a date-only "to" covers that whole day).
func (h *Handlers) ListOrders(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	if status := params.Get("status"); status != "" {
		orders, err := h.queryHandler.OrdersByStatus(r.Context(), status)
		h.respond(w, orders, err)
		return
	}

	if params.Get("from") == "" || params.Get("to") == "" {
		respondError(w, http.StatusBadRequest, "status or from and to are required")
		return
	}
	from, _, err := parseDateParam(params.Get("from"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "from must be RFC 3339 or YYYY-MM-DD")
		return
	}
	to, dateOnly, err := parseDateParam(params.Get("to"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "to must be RFC 3339 or YYYY-MM-DD")
		return
	}
	if dateOnly {
		to = to.Add(24*time.Hour - time.Nanosecond)
	}

	orders, err := h.queryHandler.OrdersByDateRange(r.Context(), from, to)
	h.respond(w, orders, err)
}

func parseDateParam(s string) (time.Time, bool, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	return t, false, err
}

func (h *Handlers) GetOrderItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.queryHandler.OrderItems(r.Context(), mux.Vars(r)["orderId"])
	h.respond(w, items, err)
}

// Inventory and reference data

func (h *Handlers) GetStock(w http.ResponseWriter, r *http.Request) {
	summary, err := h.queryHandler.Stock(r.Context(), mux.Vars(r)["productName"])
	h.respond(w, summary, err)
}

func (h *Handlers) GetProductStock(w http.ResponseWriter, r *http.Request) {
	stock, err := h.queryHandler.ProductStock(r.Context(), mux.Vars(r)["productId"])
	h.respond(w, stock, err)
}

func (h *Handlers) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.queryHandler.Categories(r.Context())
	h.respond(w, categories, err)
}

func (h *Handlers) GetBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.queryHandler.Brands(r.Context())
	h.respond(w, brands, err)
}

func (h *Handlers) GetDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.queryHandler.Departments(r.Context())
	h.respond(w, departments, err)
}

func (h *Handlers) GetDistributionCenter(w http.ResponseWriter, r *http.Request) {
	center, err := h.queryHandler.DistributionCenter(r.Context(), mux.Vars(r)["id"])
	h.respond(w, center, err)
}

func (h *Handlers) GetDistributionCenters(w http.ResponseWriter, r *http.Request) {
	centers, err := h.queryHandler.DistributionCenters(r.Context())
	h.respond(w, centers, err)
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) respond(w http.ResponseWriter, data any, err error) {
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.log.WithError(err).Error("lookup failed", nil)
			respondError(w, status, "internal server error")
			return
		}
		respondError(w, status, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, data)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, query.ErrInvalidArgument):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// respondError writes a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
