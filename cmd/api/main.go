package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/example/ec-chatbot/internal/api"
	"github.com/example/ec-chatbot/internal/chatbot"
	"github.com/example/ec-chatbot/internal/config"
	"github.com/example/ec-chatbot/internal/infrastructure/cache"
	"github.com/example/ec-chatbot/internal/infrastructure/kafka"
	"github.com/example/ec-chatbot/internal/infrastructure/search"
	"github.com/example/ec-chatbot/internal/infrastructure/store"
	"github.com/example/ec-chatbot/internal/ingest"
	"github.com/example/ec-chatbot/internal/logger"
	"github.com/example/ec-chatbot/internal/projection"
	"github.com/example/ec-chatbot/internal/query"
)

// backingStore is what the storage driver provides before decoration
type backingStore interface {
	store.CatalogReader
	store.BulkWriter
	store.FulfillmentWriter
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "[API] failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[API] failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log = logger.Component(log, "api-main")

	log.Info("starting chatbot API", map[string]any{
		"app":           cfg.App.Name,
		"environment":   cfg.App.Environment,
		"storage":       cfg.Storage.Driver,
		"redis":         cfg.Redis.Enabled,
		"elasticsearch": cfg.Elasticsearch.Enabled,
		"kafka":         cfg.Kafka.Enabled,
	})

	// Storage
	var backing backingStore
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		db, err := connectPostgres(ctx, cfg.Storage.Postgres)
		if err != nil {
			fatal(log, "failed to connect to PostgreSQL", err)
		}
		defer db.Close()
		backing = store.NewPostgresReadStore(db)
		log.Info("connected to PostgreSQL", nil)
	default:
		backing = store.NewReadStore()
	}

	if cfg.Storage.Driver == config.DriverMemory || cfg.Data.LoadOnStartup {
		loader := ingest.NewLoader(cfg.Data.CSVDir, log)
		if _, _, err := loader.LoadInto(ctx, backing); err != nil {
			fatal(log, "failed to load catalog data", err)
		}
	}

	// Decorators: search index, then cache
	var catalog store.CatalogReader = backing
	if cfg.Elasticsearch.Enabled {
		index, err := buildProductIndex(ctx, cfg.Elasticsearch, backing)
		if err != nil {
			fatal(log, "failed to prepare product index", err)
		}
		catalog = search.NewIndexedStore(catalog, index, log)
		log.Info("product search served by Elasticsearch", map[string]any{"index": cfg.Elasticsearch.Index})
	}

	if cfg.Redis.Enabled {
		client, err := cache.ConnectRedis(ctx, cache.RedisOptions{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			fatal(log, "failed to connect to Redis", err)
		}
		defer client.Close()
		cached := cache.NewCachedStore(catalog, client, cfg.Redis.TTL, log)
		if err := cached.Invalidate(ctx); err != nil {
			log.WithError(err).Warn("failed to clear stale cache entries", nil)
		}
		catalog = cached
		log.Info("reference data cached in Redis", map[string]any{"ttl": cfg.Redis.TTL.String()})
	}

	queryHandler := query.NewHandler(catalog, log)
	dispatcher := chatbot.NewDispatcher(catalog, log)

	// Fulfillment events
	var wg sync.WaitGroup
	if cfg.Kafka.Enabled {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID, log)
		defer consumer.Close()
		projector := projection.NewProjector(backing, log)

		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Info("starting fulfillment event consumer", map[string]any{"topic": cfg.Kafka.Topic})
			if err := consumer.Consume(ctx, projector.HandleEvent); err != nil && ctx.Err() == nil {
				log.WithError(err).Error("projector stopped", nil)
			}
		}()
	}

	// HTTP server
	handlers := api.NewHandlers(queryHandler, dispatcher, log)
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      api.NewRouter(api.RouterConfig{Handlers: handlers, Logger: log}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("server started", map[string]any{"address": cfg.Server.Address})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(log, "server error", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down", nil)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown failed", nil)
	}

	cancel()
	wg.Wait()
	log.Info("server stopped", nil)
}

func connectPostgres(ctx context.Context, pg config.PostgresConfig) (*sql.DB, error) {
	db, err := store.ConnectPostgres(ctx, pg.GetDSN(), store.PoolConfig{
		MaxOpenConns:    pg.MaxConnections,
		MaxIdleConns:    pg.MaxIdle,
		ConnMaxLifetime: pg.ConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}
	if err := store.EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// buildProductIndex recreates the index from the backing store
func buildProductIndex(ctx context.Context, es config.ElasticsearchConfig, catalog store.CatalogReader) (*search.ProductIndex, error) {
	client, err := search.NewClient(es.Addresses, es.Username, es.Password)
	if err != nil {
		return nil, err
	}
	index := search.NewProductIndex(client, es.Index)

	products, err := catalog.ListProducts(ctx, -1)
	if err != nil {
		return nil, err
	}
	if err := index.Rebuild(ctx, products); err != nil {
		return nil, err
	}
	return index, nil
}

func fatal(log logger.Logger, msg string, err error) {
	log.WithError(err).Error(msg, nil)
	_ = log.Sync()
	os.Exit(1)
}
