package chatbot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/example/ec-chatbot/internal/infrastructure/store"
	"github.com/example/ec-chatbot/internal/logger"
	"github.com/example/ec-chatbot/internal/metrics"
	"github.com/example/ec-chatbot/internal/readmodel"
)

const (
	topProductsLimit = 5

	msgCategories     = "Here are all available product categories:\n"
	msgBrands         = "Here are all available brands:\n"
	msgOrderIDPrompt  = "Please provide an order ID to check the status."
	msgOrderNotFound  = "Sorry, I couldn't find an order with ID: %s"
	msgProductPrompt  = "Please specify which product you'd like to check stock for."
	msgNoProducts     = "Sorry, I couldn't find any products matching '%s'."
	msgStockTotal     = "We have %d units of '%s' in stock."
	msgTopProducts    = "Here are our top 5 best-selling products:"
	msgSearchResults  = "I found %d products matching '%s':"
	msgDefault        = "I'm here to help! You can ask me about order status, product availability, search for products, or find our top-selling items."
	msgLookupFailed   = "Sorry, something went wrong while looking that up. Please try again later."
	intentDefaultName = "default"
)

// intentHandler answers a matched question. Returning false hands the
// question to the next intent in the table.
type intentHandler func(ctx context.Context, question string) (Response, bool, error)

type intent struct {
	name     string
	triggers []string
	handle   intentHandler
}

func (i intent) matches(lower string) bool {
	for _, trigger := range i.triggers {
		if strings.Contains(lower, trigger) {
			return true
		}
	}
	return false
}

// Dispatcher classifies questions against a fixed, ordered intent table and
// builds the Response from catalog lookups. The first matching intent wins.
type Dispatcher struct {
	store     store.CatalogReader
	extractor Extractor
	log       logger.Logger
	intents   []intent
}

type Option func(*Dispatcher)

// WithExtractor replaces the default RuleExtractor
func WithExtractor(e Extractor) Option {
	return func(d *Dispatcher) {
		d.extractor = e
	}
}

func NewDispatcher(catalog store.CatalogReader, log logger.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		store:     catalog,
		extractor: RuleExtractor{},
		log:       logger.Component(log, "chatbot"),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.intents = []intent{
		{name: "categories", triggers: []string{"category", "categories"}, handle: d.handleCategories},
		{name: "brands", triggers: []string{"brand", "brands"}, handle: d.handleBrands},
		{name: "order_status", triggers: []string{"order status", "track order", "status of order"}, handle: d.handleOrderStatus},
		{name: "stock", triggers: []string{"stock", "available", "inventory"}, handle: d.handleStock},
		{name: "top_products", triggers: []string{"top", "popular", "best selling"}, handle: d.handleTopProducts},
		{name: "product_search", triggers: []string{"find", "search", "looking for"}, handle: d.handleSearch},
	}
	return d
}

// ProcessQuestion answers one free-text question. It never returns an error:
// lookup failures become a Response with Success false.
func (d *Dispatcher) ProcessQuestion(ctx context.Context, question string) Response {
	lower := strings.ToLower(question)
	d.log.Debug("processing question", map[string]any{"question": question})

	for _, in := range d.intents {
		if !in.matches(lower) {
			continue
		}
		d.log.Info("intent matched", map[string]any{"intent": in.name})

		resp, handled, err := in.handle(ctx, question)
		if err != nil {
			d.log.WithError(err).Error("lookup failed", map[string]any{"intent": in.name})
			metrics.IntentsTotal.WithLabelValues(in.name, "error").Inc()
			return errorResponse(msgLookupFailed)
		}
		if !handled {
			d.log.Info("intent declined, continuing", map[string]any{"intent": in.name})
			continue
		}
		metrics.IntentsTotal.WithLabelValues(in.name, "answered").Inc()
		return resp
	}

	d.log.Info("no intent matched", nil)
	metrics.IntentsTotal.WithLabelValues(intentDefaultName, "answered").Inc()
	return textResponse(msgDefault)
}

func (d *Dispatcher) handleCategories(ctx context.Context, _ string) (Response, bool, error) {
	categories, err := d.store.DistinctCategories(ctx)
	if err != nil {
		return Response{}, false, fmt.Errorf("distinct categories: %w", err)
	}
	d.log.Debug("categories loaded", map[string]any{"count": len(categories)})
	return textResponse(msgCategories + strings.Join(categories, ", ")), true, nil
}

func (d *Dispatcher) handleBrands(ctx context.Context, _ string) (Response, bool, error) {
	brands, err := d.store.DistinctBrands(ctx)
	if err != nil {
		return Response{}, false, fmt.Errorf("distinct brands: %w", err)
	}
	d.log.Debug("brands loaded", map[string]any{"count": len(brands)})
	return textResponse(msgBrands + strings.Join(brands, ", ")), true, nil
}

func (d *Dispatcher) handleOrderStatus(ctx context.Context, question string) (Response, bool, error) {
	orderID, ok := d.extractor.OrderID(question)
	if !ok {
		d.log.Info("no order id extracted", nil)
		return textResponse(msgOrderIDPrompt), true, nil
	}
	d.log.Info("order id extracted", map[string]any{"order_id": orderID})

	order, err := d.store.GetOrder(ctx, orderID)
	if errors.Is(err, store.ErrNotFound) {
		d.log.Info("order not found", map[string]any{"order_id": orderID})
		return textResponse(fmt.Sprintf(msgOrderNotFound, orderID)), true, nil
	}
	if err != nil {
		return Response{}, false, fmt.Errorf("get order %s: %w", orderID, err)
	}

	d.log.Info("order found", map[string]any{"order_id": orderID, "status": order.Status})
	data := []map[string]any{{
		"orderId":     order.OrderID,
		"status":      order.Status,
		"shippedAt":   order.ShippedAt,
		"deliveredAt": order.DeliveredAt,
		"numOfItem":   order.NumOfItem,
		"totalAmount": 0.0,
	}}
	return dataResponse(OrderStatusMessage(order), TypeOrderStatus, data), true, nil
}

func (d *Dispatcher) handleStock(ctx context.Context, question string) (Response, bool, error) {
	fragment, ok := d.extractor.ProductFragment(question)
	if !ok {
		d.log.Info("no product fragment extracted", nil)
		return textResponse(msgProductPrompt), true, nil
	}
	d.log.Info("product fragment extracted", map[string]any{"fragment": fragment})

	products, err := d.store.SearchProductsByName(ctx, fragment)
	if err != nil {
		return Response{}, false, fmt.Errorf("search products %q: %w", fragment, err)
	}
	if len(products) == 0 {
		d.log.Info("no products matched", map[string]any{"fragment": fragment})
		return textResponse(fmt.Sprintf(msgNoProducts, fragment)), true, nil
	}

	total, err := d.store.CountAvailableStock(ctx, fragment)
	if err != nil {
		return Response{}, false, fmt.Errorf("count stock %q: %w", fragment, err)
	}
	d.log.Info("stock counted", map[string]any{"fragment": fragment, "products": len(products), "total": total})

	data := []map[string]any{{
		"productName":      fragment,
		"availableStock":   total,
		"matchingProducts": len(products),
	}}
	return dataResponse(fmt.Sprintf(msgStockTotal, total, fragment), TypeStockInfo, data), true, nil
}

// handleTopProducts returns the head of the catalog. There is no sales ranking.
func (d *Dispatcher) handleTopProducts(ctx context.Context, _ string) (Response, bool, error) {
	products, err := d.store.ListProducts(ctx, topProductsLimit)
	if err != nil {
		return Response{}, false, fmt.Errorf("list products: %w", err)
	}
	return dataResponse(msgTopProducts, TypeProductList, productRecords(products)), true, nil
}

// handleSearch declines when no fragment can be extracted, so the question
// ends at the default reply rather than a prompt.
func (d *Dispatcher) handleSearch(ctx context.Context, question string) (Response, bool, error) {
	fragment, ok := d.extractor.ProductFragment(question)
	if !ok {
		d.log.Info("no product fragment extracted", nil)
		return Response{}, false, nil
	}
	d.log.Info("product fragment extracted", map[string]any{"fragment": fragment})

	products, err := d.store.SearchProductsByName(ctx, fragment)
	if err != nil {
		return Response{}, false, fmt.Errorf("search products %q: %w", fragment, err)
	}
	if len(products) == 0 {
		d.log.Info("no products matched", map[string]any{"fragment": fragment})
		return textResponse(fmt.Sprintf(msgNoProducts, fragment)), true, nil
	}

	d.log.Info("products matched", map[string]any{"fragment": fragment, "count": len(products)})
	return dataResponse(fmt.Sprintf(msgSearchResults, len(products), fragment), TypeProductList, productRecords(products)), true, nil
}

func productRecords(products []*readmodel.ProductReadModel) []map[string]any {
	records := make([]map[string]any, 0, len(products))
	for _, p := range products {
		records = append(records, map[string]any{
			"id":          p.ID,
			"name":        p.Name,
			"brand":       p.Brand,
			"category":    p.Category,
			"retailPrice": p.RetailPrice,
		})
	}
	return records
}
