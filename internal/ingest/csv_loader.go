package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/example/ec-chatbot/internal/infrastructure/store"
	"github.com/example/ec-chatbot/internal/logger"
	"github.com/example/ec-chatbot/internal/readmodel"
)

// Source file names inside the data directory
const (
	DistributionCentersFile = "distribution_centers.csv"
	ProductsFile            = "products.csv"
	InventoryItemsFile      = "inventory_items.csv"
	OrdersFile              = "orders.csv"
	OrderItemsFile          = "order_items.csv"
)

// ErrMalformedRecord is wrapped by row-level parse failures
var ErrMalformedRecord = errors.New("malformed record")

var timestampLayouts = []string{
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05-0700",
	"2006-01-02 15:04:05-07",
	"2006-01-02 15:04:05 UTC",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// Stats counts loaded and skipped rows per file
type Stats struct {
	Loaded  map[string]int
	Skipped map[string]int
}

func newStats() Stats {
	return Stats{Loaded: make(map[string]int), Skipped: make(map[string]int)}
}

// Loader reads the five catalog CSV exports from a directory. Missing files
// are skipped; a header row is expected in every file.
type Loader struct {
	dir string
	log logger.Logger
}

func NewLoader(dir string, log logger.Logger) *Loader {
	return &Loader{dir: dir, log: logger.Component(log, "ingest")}
}

// LoadInto reads every file and hands the dataset to w in one bulk load
func (l *Loader) LoadInto(ctx context.Context, w store.BulkWriter) (*store.Dataset, Stats, error) {
	data, stats, err := l.Read(ctx)
	if err != nil {
		return nil, stats, err
	}
	if err := w.Load(ctx, data); err != nil {
		return nil, stats, fmt.Errorf("bulk load: %w", err)
	}
	l.log.Info("catalog data loaded", map[string]any{"loaded": stats.Loaded, "skipped": stats.Skipped})
	return data, stats, nil
}

// Read parses every file into a Dataset without writing it anywhere
func (l *Loader) Read(ctx context.Context) (*store.Dataset, Stats, error) {
	data := &store.Dataset{}
	stats := newStats()

	steps := []struct {
		file  string
		parse func([]string) error
		min   int
	}{
		{DistributionCentersFile, func(rec []string) error {
			dc, err := parseDistributionCenter(rec)
			if err == nil {
				data.DistributionCenters = append(data.DistributionCenters, dc)
			}
			return err
		}, 4},
		{ProductsFile, func(rec []string) error {
			p, err := parseProduct(rec)
			if err == nil {
				data.Products = append(data.Products, p)
			}
			return err
		}, 9},
		{InventoryItemsFile, func(rec []string) error {
			item, err := parseInventoryItem(rec)
			if err == nil {
				data.InventoryItems = append(data.InventoryItems, item)
			}
			return err
		}, 12},
		{OrdersFile, func(rec []string) error {
			o, err := parseOrder(rec)
			if err == nil {
				data.Orders = append(data.Orders, o)
			}
			return err
		}, 9},
		{OrderItemsFile, func(rec []string) error {
			item, err := parseOrderItem(rec)
			if err == nil {
				data.OrderItems = append(data.OrderItems, item)
			}
			return err
		}, 9},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}

		path := filepath.Join(l.dir, step.file)
		f, err := os.Open(path)
		if errors.Is(err, os.ErrNotExist) {
			l.log.Warn("data file not found, skipping", map[string]any{"file": step.file})
			continue
		}
		if err != nil {
			return nil, stats, fmt.Errorf("open %s: %w", step.file, err)
		}

		loaded, skipped, err := l.readRecords(f, step.file, step.min, step.parse)
		f.Close()
		if err != nil {
			return nil, stats, err
		}
		stats.Loaded[step.file] = loaded
		stats.Skipped[step.file] = skipped
	}

	return data, stats, nil
}

// readRecords skips the header, rows shorter than min, and rows parse rejects
func (l *Loader) readRecords(r io.Reader, file string, min int, parse func([]string) error) (loaded, skipped int, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = false

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, 0, nil
		}
		return 0, 0, fmt.Errorf("read header of %s: %w", file, err)
	}

	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return loaded, skipped, nil
		}
		if err != nil {
			return loaded, skipped, fmt.Errorf("read %s: %w", file, err)
		}

		if len(rec) < min {
			skipped++
			continue
		}
		if err := parse(rec); err != nil {
			skipped++
			l.log.Debug("row skipped", map[string]any{"file": file, "error": err.Error()})
			continue
		}
		loaded++
	}
}

func parseDistributionCenter(rec []string) (*readmodel.DistributionCenterReadModel, error) {
	lat, err := parseFloat(rec[2], "latitude")
	if err != nil {
		return nil, err
	}
	lng, err := parseFloat(rec[3], "longitude")
	if err != nil {
		return nil, err
	}
	return &readmodel.DistributionCenterReadModel{ID: rec[0], Name: rec[1], Latitude: lat, Longitude: lng}, nil
}

// products: id, cost, category, name, brand, retail_price, department, sku, distribution_center_id
func parseProduct(rec []string) (*readmodel.ProductReadModel, error) {
	cost, err := parseFloat(rec[1], "cost")
	if err != nil {
		return nil, err
	}
	price, err := parseFloat(rec[5], "retail_price")
	if err != nil {
		return nil, err
	}
	return &readmodel.ProductReadModel{
		ID:                   rec[0],
		Cost:                 cost,
		Category:             rec[2],
		Name:                 rec[3],
		Brand:                rec[4],
		RetailPrice:          price,
		Department:           rec[6],
		SKU:                  rec[7],
		DistributionCenterID: rec[8],
	}, nil
}

// inventory_items: id, product_id, created_at, sold_at, cost, product_category, product_name,
// product_brand, product_retail_price, product_department, product_sku, product_distribution_center_id
func parseInventoryItem(rec []string) (*readmodel.InventoryItemReadModel, error) {
	cost, err := parseFloat(rec[4], "cost")
	if err != nil {
		return nil, err
	}
	price, err := parseFloat(rec[8], "product_retail_price")
	if err != nil {
		return nil, err
	}
	return &readmodel.InventoryItemReadModel{
		ID:                          rec[0],
		ProductID:                   rec[1],
		CreatedAt:                   ParseTimestamp(rec[2]),
		SoldAt:                      ParseTimestamp(rec[3]),
		Cost:                        cost,
		ProductCategory:             rec[5],
		ProductName:                 rec[6],
		ProductBrand:                rec[7],
		ProductRetailPrice:          price,
		ProductDepartment:           rec[9],
		ProductSKU:                  rec[10],
		ProductDistributionCenterID: rec[11],
	}, nil
}

// orders: order_id, user_id, status, gender, created_at, returned_at, shipped_at, delivered_at, num_of_item
func parseOrder(rec []string) (*readmodel.OrderReadModel, error) {
	n, err := strconv.Atoi(strings.TrimSpace(rec[8]))
	if err != nil {
		return nil, fmt.Errorf("%w: num_of_item %q", ErrMalformedRecord, rec[8])
	}
	return &readmodel.OrderReadModel{
		OrderID:     rec[0],
		UserID:      rec[1],
		Status:      rec[2],
		Gender:      rec[3],
		CreatedAt:   ParseTimestamp(rec[4]),
		ReturnedAt:  ParseTimestamp(rec[5]),
		ShippedAt:   ParseTimestamp(rec[6]),
		DeliveredAt: ParseTimestamp(rec[7]),
		NumOfItem:   n,
	}, nil
}

// order_items: id, order_id, user_id, product_id, inventory_item_id, status, created_at,
// shipped_at, delivered_at, returned_at (optional)
func parseOrderItem(rec []string) (*readmodel.OrderItemReadModel, error) {
	item := &readmodel.OrderItemReadModel{
		ID:              rec[0],
		OrderID:         rec[1],
		UserID:          rec[2],
		ProductID:       rec[3],
		InventoryItemID: rec[4],
		Status:          rec[5],
		CreatedAt:       ParseTimestamp(rec[6]),
		ShippedAt:       ParseTimestamp(rec[7]),
		DeliveredAt:     ParseTimestamp(rec[8]),
	}
	if len(rec) > 9 {
		item.ReturnedAt = ParseTimestamp(rec[9])
	}
	return item, nil
}

func parseFloat(s, field string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", ErrMalformedRecord, field, s)
	}
	return v, nil
}

// ParseTimestamp accepts the timestamp shapes found in the exports and
// returns nil for empty or unrecognised values. Results are in UTC.
func ParseTimestamp(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
