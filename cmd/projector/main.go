package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/ec-chatbot/internal/config"
	"github.com/example/ec-chatbot/internal/infrastructure/kafka"
	"github.com/example/ec-chatbot/internal/infrastructure/store"
	"github.com/example/ec-chatbot/internal/logger"
	"github.com/example/ec-chatbot/internal/projection"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "[Projector] failed to load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Storage.Driver != config.DriverPostgres {
		fmt.Fprintln(os.Stderr, "[Projector] storage.driver must be postgres")
		os.Exit(1)
	}

	log, err := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[Projector] failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log = logger.Component(log, "projector-main")

	log.Info("starting fulfillment projector", map[string]any{
		"brokers": cfg.Kafka.Brokers,
		"topic":   cfg.Kafka.Topic,
		"group":   cfg.Kafka.GroupID,
	})

	pg := cfg.Storage.Postgres
	db, err := store.ConnectPostgres(ctx, pg.GetDSN(), store.PoolConfig{
		MaxOpenConns:    pg.MaxConnections,
		MaxIdleConns:    pg.MaxIdle,
		ConnMaxLifetime: pg.ConnMaxLifetime,
	})
	if err != nil {
		log.WithError(err).Error("failed to connect to PostgreSQL", nil)
		os.Exit(1)
	}
	defer db.Close()
	if err := store.EnsureSchema(ctx, db); err != nil {
		log.WithError(err).Error("failed to apply schema", nil)
		os.Exit(1)
	}

	projector := projection.NewProjector(store.NewPostgresReadStore(db), log)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID, log)
	defer consumer.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := consumer.Consume(ctx, projector.HandleEvent); err != nil && ctx.Err() == nil {
			log.WithError(err).Error("consumer error", nil)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-done:
	}

	log.Info("shutting down", nil)
	cancel()
	<-done
}
