package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// PoolConfig tunes the database/sql connection pool.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultPoolConfig mirrors the pool sizes used by the read side.
var DefaultPoolConfig = PoolConfig{
	MaxOpenConns:    25,
	MaxIdleConns:    5,
	ConnMaxLifetime: 5 * time.Minute,
}

// ConnectPostgres opens and pings a PostgreSQL connection pool
func ConnectPostgres(ctx context.Context, connStr string, pool PoolConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)

	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS distribution_centers (
	id        TEXT PRIMARY KEY,
	seq       INTEGER NOT NULL,
	name      TEXT NOT NULL,
	latitude  DOUBLE PRECISION NOT NULL DEFAULT 0,
	longitude DOUBLE PRECISION NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS products (
	id                     TEXT PRIMARY KEY,
	seq                    INTEGER NOT NULL,
	name                   TEXT NOT NULL,
	brand                  TEXT NOT NULL DEFAULT '',
	category               TEXT NOT NULL DEFAULT '',
	department             TEXT NOT NULL DEFAULT '',
	cost                   DOUBLE PRECISION NOT NULL DEFAULT 0,
	retail_price           DOUBLE PRECISION NOT NULL DEFAULT 0,
	sku                    TEXT NOT NULL DEFAULT '',
	distribution_center_id TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_products_seq ON products (seq);

CREATE TABLE IF NOT EXISTS inventory_items (
	id                   TEXT PRIMARY KEY,
	product_id           TEXT NOT NULL,
	created_at           TIMESTAMPTZ,
	sold_at              TIMESTAMPTZ,
	cost                 DOUBLE PRECISION NOT NULL DEFAULT 0,
	product_category     TEXT NOT NULL DEFAULT '',
	product_name         TEXT NOT NULL DEFAULT '',
	product_brand        TEXT NOT NULL DEFAULT '',
	product_retail_price DOUBLE PRECISION NOT NULL DEFAULT 0,
	product_department   TEXT NOT NULL DEFAULT '',
	product_sku          TEXT NOT NULL DEFAULT '',
	product_dc_id        TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_inventory_items_product ON inventory_items (product_id) WHERE sold_at IS NULL;

CREATE TABLE IF NOT EXISTS orders (
	order_id     TEXT PRIMARY KEY,
	seq          INTEGER NOT NULL,
	user_id      TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL DEFAULT '',
	gender       TEXT NOT NULL DEFAULT '',
	num_of_item  INTEGER NOT NULL DEFAULT 0,
	created_at   TIMESTAMPTZ,
	shipped_at   TIMESTAMPTZ,
	delivered_at TIMESTAMPTZ,
	returned_at  TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_orders_user ON orders (user_id);

CREATE TABLE IF NOT EXISTS order_items (
	id                TEXT PRIMARY KEY,
	seq               INTEGER NOT NULL,
	order_id          TEXT NOT NULL,
	user_id           TEXT NOT NULL DEFAULT '',
	product_id        TEXT NOT NULL DEFAULT '',
	inventory_item_id TEXT NOT NULL DEFAULT '',
	status            TEXT NOT NULL DEFAULT '',
	created_at        TIMESTAMPTZ,
	shipped_at        TIMESTAMPTZ,
	delivered_at      TIMESTAMPTZ,
	returned_at       TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items (order_id);
`

// EnsureSchema creates the catalog tables when they do not exist yet
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
