package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub"
	appledger "github.com/airp/ledger/internal/application/ledger"
	appprojection "github.com/airp/ledger/internal/application/projection"
	domainledger "github.com/airp/ledger/internal/domain/ledger"
	"github.com/airp/ledger/internal/domain/shared"
	"github.com/airp/ledger/internal/infrastructure/bus"
	"github.com/airp/ledger/internal/infrastructure/config"
	"github.com/airp/ledger/internal/infrastructure/eventstore"
	"github.com/airp/ledger/internal/infrastructure/logger"
	"github.com/airp/ledger/internal/infrastructure/persistence"
	httpiface "github.com/airp/ledger/internal/interfaces/http"
	"github.com/airp/ledger/internal/interfaces/http/dto"
	"github.com/airp/ledger/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

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

	log.Info("Starting ledger server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
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
	log.Info("Database connected")

	metrics := shared.NewInMemoryMetrics()
	registry := domainledger.DefaultPayloadRegistry()

	accountRepo := persistence.NewGormAccountRepository(db.DB)
	balanceRepo := persistence.NewGormGLBalanceRepository(db.DB)
	agingRepo := persistence.NewGormAgingRepository(db.DB)
	cursorRepo := persistence.NewGormPublishCursorRepository(db.DB)
	store := eventstore.NewGormEventStore(db.DB, log, metrics)

	topics := bus.NewTopicMapper(cfg.Bus.TopicPrefix, []string{
		domainledger.EventTypeJournalEntryPosted,
		domainledger.EventTypeInvoiceReceived,
		domainledger.EventTypeInvoiceIssued,
		domainledger.EventTypePaymentExecuted,
	})
	messageBus, cleanup, err := buildBus(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize message bus", zap.Error(err))
	}
	defer cleanup()

	dispatcher := bus.NewDispatcher(store, cursorRepo, messageBus, topics, log, metrics, bus.DispatcherOptions{
		Name:         cfg.Dispatcher.Name,
		BatchSize:    cfg.Dispatcher.BatchSize,
		PollInterval: cfg.Dispatcher.PollInterval,
	})
	if cfg.Dispatcher.Enabled {
		if err := dispatcher.Start(context.Background()); err != nil {
			log.Fatal("Failed to start dispatcher", zap.Error(err))
		}
	}

	validator := domainledger.NewEntryValidator(accountRepo)
	postingService := appledger.NewPostingService(store, validator, registry, log, metrics, cfg.App.Currency)
	subledgerService := appledger.NewSubledgerService(store, log)
	queryService := appledger.NewEventQueryService(store)

	trialBalanceService := appprojection.NewTrialBalanceService(balanceRepo, log)

	if err := dto.RegisterValidations(); err != nil {
		log.Fatal("Failed to register request validations", zap.Error(err))
	}
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := httpiface.NewRouter(httpiface.RouterConfig{
		Logger:   log,
		Ledger:   handler.NewLedgerHandler(postingService, subledgerService),
		Events:   handler.NewEventsHandler(queryService),
		Accounts: handler.NewAccountsHandler(accountRepo),
		Reports:  handler.NewReportsHandler(trialBalanceService, agingRepo),
		Admin:    handler.NewAdminHandler(dispatcher),
		Health:   handler.NewHealthHandler(db),
	})

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if cfg.Dispatcher.Enabled {
		if err := dispatcher.Stop(shutdownCtx); err != nil {
			log.Error("Dispatcher shutdown failed", zap.Error(err))
		}
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", zap.Error(err))
	}
	log.Info("Shutdown complete")
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
