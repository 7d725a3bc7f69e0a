package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub"
	appprojection "github.com/airp/ledger/internal/application/projection"
	domainledger "github.com/airp/ledger/internal/domain/ledger"
	"github.com/airp/ledger/internal/domain/shared"
	"github.com/airp/ledger/internal/infrastructure/bus"
	"github.com/airp/ledger/internal/infrastructure/cache"
	"github.com/airp/ledger/internal/infrastructure/config"
	"github.com/airp/ledger/internal/infrastructure/logger"
	"github.com/airp/ledger/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

// The projector owns every projection table. It consumes the event topics,
// folds events into GL balances, materialized entries and aging snapshots,
// and never serves writes of its own.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting ledger projector",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("group", cfg.Bus.ConsumerGroup),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	metrics := shared.NewInMemoryMetrics()
	registry := domainledger.DefaultPayloadRegistry()

	accountRepo := persistence.NewGormAccountRepository(db.DB)
	entryRepo := persistence.NewGormJournalEntryRepository(db.DB)
	balanceRepo := persistence.NewGormGLBalanceRepository(db.DB)
	invoiceRepo := persistence.NewGormOpenInvoiceRepository(db.DB)
	agingRepo := persistence.NewGormAgingRepository(db.DB)

	idempotency, err := buildIdempotencyStore(cfg)
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}
	defer func() {
		_ = idempotency.Close()
	}()

	messageBus, cleanup, err := buildBus(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize message bus", zap.Error(err))
	}
	defer cleanup()

	topics := bus.NewTopicMapper(cfg.Bus.TopicPrefix, []string{
		domainledger.EventTypeJournalEntryPosted,
		domainledger.EventTypeInvoiceReceived,
		domainledger.EventTypeInvoiceIssued,
		domainledger.EventTypePaymentExecuted,
	})
	consumer := appprojection.NewConsumer(messageBus, topics, cfg.Bus.ConsumerGroup, log)

	idemCfg := shared.IdempotencyConfig{
		TTL:     cfg.Projection.IdempotencyTTL,
		Enabled: cfg.Projection.IdempotencyEnabled,
	}
	handlers := []shared.EventHandler{
		appprojection.NewJournalEntryProjector(accountRepo, entryRepo, balanceRepo, registry, log, metrics),
		appprojection.NewAgingProjector(invoiceRepo, agingRepo, registry, log, metrics),
	}
	for _, h := range handlers {
		wrapped := bus.NewIdempotentHandler(h, idempotency, idemCfg, log, metrics)
		if err := consumer.Register(wrapped); err != nil {
			log.Fatal("Failed to register projection handler", zap.Error(err))
		}
	}

	if err := consumer.Start(context.Background()); err != nil {
		log.Fatal("Failed to start consumer", zap.Error(err))
	}
	log.Info("Projection consumer running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := consumer.Stop(shutdownCtx); err != nil {
		log.Error("Consumer shutdown failed", zap.Error(err))
	}
	log.Info("Shutdown complete")
}

func buildIdempotencyStore(cfg *config.Config) (shared.IdempotencyStore, error) {
	if cfg.Redis.Enabled {
		return cache.NewRedisIdempotencyStore(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	return cache.NewInMemoryIdempotencyStore(), nil
}

func buildBus(cfg *config.Config, log *zap.Logger) (shared.MessageBus, func(), error) {
	switch cfg.Bus.Provider {
	case "pubsub":
		client, err := pubsub.NewClient(context.Background(), cfg.Bus.ProjectID)
		if err != nil {
			return nil, nil, err
		}
		return bus.NewPubSubBus(client, log), func() { _ = client.Close() }, nil
	default:
		return bus.NewInMemoryBus(log), func() {}, nil
	}
}
