package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/ec-chatbot/internal/readmodel"
)

const (
	productColumns = `id, name, brand, category, department, cost, retail_price, sku, distribution_center_id`
	orderColumns   = `order_id, user_id, status, gender, num_of_item, created_at, shipped_at, delivered_at, returned_at`
	itemColumns    = `id, order_id, user_id, product_id, inventory_item_id, status, created_at, shipped_at, delivered_at, returned_at`
	centerColumns  = `id, name, latitude, longitude`
)

// PostgresReadStore implements CatalogReader, BulkWriter and FulfillmentWriter using PostgreSQL
type PostgresReadStore struct {
	db *sql.DB
}

// NewPostgresReadStore creates a new PostgreSQL-based read store
func NewPostgresReadStore(db *sql.DB) *PostgresReadStore {
	return &PostgresReadStore{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

// Product operations

func (rs *PostgresReadStore) SearchProductsByName(ctx context.Context, fragment string) ([]*readmodel.ProductReadModel, error) {
	return rs.queryProducts(ctx, `SELECT `+productColumns+` FROM products WHERE strpos(lower(name), lower($1)) > 0 ORDER BY seq`, fragment)
}

func (rs *PostgresReadStore) ProductsByCategory(ctx context.Context, category string) ([]*readmodel.ProductReadModel, error) {
	return rs.queryProducts(ctx, `SELECT `+productColumns+` FROM products WHERE lower(category) = lower($1) ORDER BY seq`, category)
}

func (rs *PostgresReadStore) ProductsByBrand(ctx context.Context, brand string) ([]*readmodel.ProductReadModel, error) {
	return rs.queryProducts(ctx, `SELECT `+productColumns+` FROM products WHERE lower(brand) = lower($1) ORDER BY seq`, brand)
}

func (rs *PostgresReadStore) ProductsByDepartment(ctx context.Context, department string) ([]*readmodel.ProductReadModel, error) {
	return rs.queryProducts(ctx, `SELECT `+productColumns+` FROM products WHERE lower(department) = lower($1) ORDER BY seq`, department)
}

func (rs *PostgresReadStore) ProductsByPriceRange(ctx context.Context, min, max float64) ([]*readmodel.ProductReadModel, error) {
	return rs.queryProducts(ctx, `SELECT `+productColumns+` FROM products WHERE retail_price BETWEEN $1 AND $2 ORDER BY seq`, min, max)
}

func (rs *PostgresReadStore) ListProducts(ctx context.Context, limit int) ([]*readmodel.ProductReadModel, error) {
	if limit < 0 {
		return rs.queryProducts(ctx, `SELECT `+productColumns+` FROM products ORDER BY seq`)
	}
	return rs.queryProducts(ctx, `SELECT `+productColumns+` FROM products ORDER BY seq LIMIT $1`, limit)
}

func (rs *PostgresReadStore) GetProduct(ctx context.Context, id string) (*readmodel.ProductReadModel, error) {
	row := rs.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	return p, nil
}

func (rs *PostgresReadStore) queryProducts(ctx context.Context, query string, args ...any) ([]*readmodel.ProductReadModel, error) {
	rows, err := rs.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := make([]*readmodel.ProductReadModel, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func scanProduct(row rowScanner) (*readmodel.ProductReadModel, error) {
	var p readmodel.ProductReadModel
	err := row.Scan(&p.ID, &p.Name, &p.Brand, &p.Category, &p.Department, &p.Cost, &p.RetailPrice, &p.SKU, &p.DistributionCenterID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Order operations

func (rs *PostgresReadStore) GetOrder(ctx context.Context, orderID string) (*readmodel.OrderReadModel, error) {
	row := rs.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_id = $1`, orderID)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", orderID, err)
	}
	return o, nil
}

func (rs *PostgresReadStore) OrdersByUser(ctx context.Context, userID string) ([]*readmodel.OrderReadModel, error) {
	return rs.queryOrders(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY seq`, userID)
}

func (rs *PostgresReadStore) OrdersByStatus(ctx context.Context, status string) ([]*readmodel.OrderReadModel, error) {
	return rs.queryOrders(ctx, `SELECT `+orderColumns+` FROM orders WHERE lower(status) = lower($1) ORDER BY seq`, status)
}

func (rs *PostgresReadStore) OrdersByDateRange(ctx context.Context, from, to time.Time) ([]*readmodel.OrderReadModel, error) {
	return rs.queryOrders(ctx, `SELECT `+orderColumns+` FROM orders WHERE created_at BETWEEN $1 AND $2 ORDER BY seq`, from, to)
}

func (rs *PostgresReadStore) queryOrders(ctx context.Context, query string, args ...any) ([]*readmodel.OrderReadModel, error) {
	rows, err := rs.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*readmodel.OrderReadModel, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func scanOrder(row rowScanner) (*readmodel.OrderReadModel, error) {
	var (
		o                                      readmodel.OrderReadModel
		created, shipped, delivered, returned sql.NullTime
	)
	err := row.Scan(&o.OrderID, &o.UserID, &o.Status, &o.Gender, &o.NumOfItem, &created, &shipped, &delivered, &returned)
	if err != nil {
		return nil, err
	}
	o.CreatedAt = timePtr(created)
	o.ShippedAt = timePtr(shipped)
	o.DeliveredAt = timePtr(delivered)
	o.ReturnedAt = timePtr(returned)
	return &o, nil
}

func (rs *PostgresReadStore) OrderItemsByOrder(ctx context.Context, orderID string) ([]*readmodel.OrderItemReadModel, error) {
	rows, err := rs.db.QueryContext(ctx, `SELECT `+itemColumns+` FROM order_items WHERE order_id = $1 ORDER BY seq`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	items := make([]*readmodel.OrderItemReadModel, 0)
	for rows.Next() {
		var (
			item                                   readmodel.OrderItemReadModel
			created, shipped, delivered, returned sql.NullTime
		)
		err := rows.Scan(&item.ID, &item.OrderID, &item.UserID, &item.ProductID, &item.InventoryItemID, &item.Status,
			&created, &shipped, &delivered, &returned)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		item.CreatedAt = timePtr(created)
		item.ShippedAt = timePtr(shipped)
		item.DeliveredAt = timePtr(delivered)
		item.ReturnedAt = timePtr(returned)
		items = append(items, &item)
	}
	return items, rows.Err()
}

// Inventory operations

func (rs *PostgresReadStore) CountAvailableStock(ctx context.Context, fragment string) (int, error) {
	var count int
	err := rs.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM inventory_items i
		JOIN products p ON p.id = i.product_id
		WHERE strpos(lower(p.name), lower($1)) > 0 AND i.sold_at IS NULL
	`, fragment).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count stock for %q: %w", fragment, err)
	}
	return count, nil
}

func (rs *PostgresReadStore) CountAvailableStockByProduct(ctx context.Context, productID string) (int, error) {
	var count int
	err := rs.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM inventory_items WHERE product_id = $1 AND sold_at IS NULL`, productID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count stock for product %s: %w", productID, err)
	}
	return count, nil
}

// Distinct values

func (rs *PostgresReadStore) DistinctCategories(ctx context.Context) ([]string, error) {
	return rs.queryDistinct(ctx, "category")
}

func (rs *PostgresReadStore) DistinctBrands(ctx context.Context) ([]string, error) {
	return rs.queryDistinct(ctx, "brand")
}

func (rs *PostgresReadStore) DistinctDepartments(ctx context.Context) ([]string, error) {
	return rs.queryDistinct(ctx, "department")
}

// queryDistinct keeps first-seen order. column is always one of the fixed names above.
func (rs *PostgresReadStore) queryDistinct(ctx context.Context, column string) ([]string, error) {
	query := fmt.Sprintf(`SELECT %[1]s FROM products WHERE %[1]s <> '' GROUP BY %[1]s ORDER BY MIN(seq)`, column)
	rows, err := rs.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query distinct %s: %w", column, err)
	}
	defer rows.Close()

	values := make([]string, 0)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan distinct %s: %w", column, err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// Distribution center operations

func (rs *PostgresReadStore) GetDistributionCenter(ctx context.Context, id string) (*readmodel.DistributionCenterReadModel, error) {
	var dc readmodel.DistributionCenterReadModel
	err := rs.db.QueryRowContext(ctx, `SELECT `+centerColumns+` FROM distribution_centers WHERE id = $1`, id).
		Scan(&dc.ID, &dc.Name, &dc.Latitude, &dc.Longitude)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get distribution center %s: %w", id, err)
	}
	return &dc, nil
}

func (rs *PostgresReadStore) ListDistributionCenters(ctx context.Context) ([]*readmodel.DistributionCenterReadModel, error) {
	rows, err := rs.db.QueryContext(ctx, `SELECT `+centerColumns+` FROM distribution_centers ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query distribution centers: %w", err)
	}
	defer rows.Close()

	centers := make([]*readmodel.DistributionCenterReadModel, 0)
	for rows.Next() {
		var dc readmodel.DistributionCenterReadModel
		if err := rows.Scan(&dc.ID, &dc.Name, &dc.Latitude, &dc.Longitude); err != nil {
			return nil, fmt.Errorf("scan distribution center: %w", err)
		}
		centers = append(centers, &dc)
	}
	return centers, rows.Err()
}

// Fulfillment operations

func (rs *PostgresReadStore) UpdateOrderStatus(ctx context.Context, orderID, status string, at time.Time) error {
	column := statusTimestampColumn(status)

	tx, err := rs.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	orderQuery := `UPDATE orders SET status = $2 WHERE order_id = $1`
	itemQuery := `UPDATE order_items SET status = $2 WHERE order_id = $1`
	args := []any{orderID, status}
	if column != "" {
		orderQuery = `UPDATE orders SET status = $2, ` + column + ` = $3 WHERE order_id = $1`
		itemQuery = `UPDATE order_items SET status = $2, ` + column + ` = $3 WHERE order_id = $1`
		args = append(args, at)
	}

	res, err := tx.ExecContext(ctx, orderQuery, args...)
	if err != nil {
		return fmt.Errorf("update order %s: %w", orderID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, itemQuery, args...); err != nil {
		return fmt.Errorf("update order items of %s: %w", orderID, err)
	}
	return tx.Commit()
}

func statusTimestampColumn(status string) string {
	switch status {
	case readmodel.OrderStatusShipped:
		return "shipped_at"
	case readmodel.OrderStatusDelivered:
		return "delivered_at"
	case readmodel.OrderStatusReturned:
		return "returned_at"
	}
	return ""
}

func (rs *PostgresReadStore) MarkInventorySold(ctx context.Context, inventoryItemID string, soldAt time.Time) error {
	res, err := rs.db.ExecContext(ctx, `UPDATE inventory_items SET sold_at = $2 WHERE id = $1`, inventoryItemID, soldAt)
	if err != nil {
		return fmt.Errorf("mark inventory item %s sold: %w", inventoryItemID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Bulk load

// Load truncates every table and inserts the dataset inside one transaction.
func (rs *PostgresReadStore) Load(ctx context.Context, data *Dataset) error {
	tx, err := rs.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `TRUNCATE order_items, orders, inventory_items, products, distribution_centers`); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	for i, dc := range data.DistributionCenters {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO distribution_centers (id, seq, name, latitude, longitude) VALUES ($1, $2, $3, $4, $5)`,
			dc.ID, i, dc.Name, dc.Latitude, dc.Longitude); err != nil {
			return fmt.Errorf("insert distribution center %s: %w", dc.ID, err)
		}
	}

	for i, p := range data.Products {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO products (id, seq, name, brand, category, department, cost, retail_price, sku, distribution_center_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			p.ID, i, p.Name, p.Brand, p.Category, p.Department, p.Cost, p.RetailPrice, p.SKU, p.DistributionCenterID); err != nil {
			return fmt.Errorf("insert product %s: %w", p.ID, err)
		}
	}

	for _, item := range data.InventoryItems {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO inventory_items (id, product_id, created_at, sold_at, cost, product_category, product_name,
				product_brand, product_retail_price, product_department, product_sku, product_dc_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			item.ID, item.ProductID, nullTime(item.CreatedAt), nullTime(item.SoldAt), item.Cost, item.ProductCategory,
			item.ProductName, item.ProductBrand, item.ProductRetailPrice, item.ProductDepartment, item.ProductSKU,
			item.ProductDistributionCenterID); err != nil {
			return fmt.Errorf("insert inventory item %s: %w", item.ID, err)
		}
	}

	for i, o := range data.Orders {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO orders (order_id, seq, user_id, status, gender, num_of_item, created_at, shipped_at, delivered_at, returned_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			o.OrderID, i, o.UserID, o.Status, o.Gender, o.NumOfItem, nullTime(o.CreatedAt), nullTime(o.ShippedAt),
			nullTime(o.DeliveredAt), nullTime(o.ReturnedAt)); err != nil {
			return fmt.Errorf("insert order %s: %w", o.OrderID, err)
		}
	}

	for i, item := range data.OrderItems {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO order_items (id, seq, order_id, user_id, product_id, inventory_item_id, status, created_at, shipped_at, delivered_at, returned_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			item.ID, i, item.OrderID, item.UserID, item.ProductID, item.InventoryItemID, item.Status,
			nullTime(item.CreatedAt), nullTime(item.ShippedAt), nullTime(item.DeliveredAt), nullTime(item.ReturnedAt)); err != nil {
			return fmt.Errorf("insert order item %s: %w", item.ID, err)
		}
	}

	return tx.Commit()
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
