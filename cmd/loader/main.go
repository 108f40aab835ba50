package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/example/ec-chatbot/internal/config"
	"github.com/example/ec-chatbot/internal/infrastructure/cache"
	"github.com/example/ec-chatbot/internal/infrastructure/search"
	"github.com/example/ec-chatbot/internal/infrastructure/store"
	"github.com/example/ec-chatbot/internal/ingest"
	"github.com/example/ec-chatbot/internal/logger"
)

// loader replaces the Postgres catalog with the CSV exports, then refreshes
// the search index and drops cached reference data when those are enabled.
func main() {
	dir := flag.String("dir", "", "CSV directory (defaults to data.csv_dir)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "[Loader] failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[Loader] failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log = logger.Component(log, "loader-main")

	if *dir != "" {
		cfg.Data.CSVDir = *dir
	}
	if err := run(context.Background(), cfg, log); err != nil {
		log.WithError(err).Error("load failed", nil)
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	if cfg.Storage.Driver != config.DriverPostgres {
		return fmt.Errorf("storage.driver must be %q, got %q", config.DriverPostgres, cfg.Storage.Driver)
	}

	pg := cfg.Storage.Postgres
	db, err := store.ConnectPostgres(ctx, pg.GetDSN(), store.DefaultPoolConfig)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := store.EnsureSchema(ctx, db); err != nil {
		return err
	}

	data, stats, err := ingest.NewLoader(cfg.Data.CSVDir, log).LoadInto(ctx, store.NewPostgresReadStore(db))
	if err != nil {
		return err
	}
	log.Info("catalog written to PostgreSQL", map[string]any{"loaded": stats.Loaded, "skipped": stats.Skipped})

	if cfg.Elasticsearch.Enabled {
		client, err := search.NewClient(cfg.Elasticsearch.Addresses, cfg.Elasticsearch.Username, cfg.Elasticsearch.Password)
		if err != nil {
			return err
		}
		index := search.NewProductIndex(client, cfg.Elasticsearch.Index)
		if err := index.Rebuild(ctx, data.Products); err != nil {
			return err
		}
		log.Info("product index refreshed", map[string]any{"index": cfg.Elasticsearch.Index, "products": len(data.Products)})
	}

	if cfg.Redis.Enabled {
		client, err := cache.ConnectRedis(ctx, cache.RedisOptions{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer client.Close()
		if err := cache.NewCachedStore(nil, client, cfg.Redis.TTL, log).Invalidate(ctx); err != nil {
			return err
		}
		log.Info("cached reference data invalidated", nil)
	}
	return nil
}
