package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"kitchenline/internal/config"
	kafkax "kitchenline/internal/kafka"
	"kitchenline/internal/kitchen"
	"kitchenline/internal/kitchendb"
	"kitchenline/internal/postgres"
	"kitchenline/internal/redisx"
	"kitchenline/internal/warehouse"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mode, err := kitchen.ParsePublishMode(cfg.StatusPublishMode)
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()
	if err := kitchendb.InitSchema(ctx, db); err != nil {
		logger.Fatal("init schema", zap.Error(err))
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Status producer: one publish mode for the whole process.
	var statusProd *kafkax.Producer
	if mode == kitchen.PublishSync {
		statusProd = kafkax.NewSyncProducer(cfg.KafkaBrokers, kitchen.TopicOrderStatus)
	} else {
		statusProd = kafkax.NewProducer(cfg.KafkaBrokers, kitchen.TopicOrderStatus, 1024)
		statusProd.Start(ctx)
	}

	// Warehouse request producer is always synchronous: a transport error
	// there has to surface to the saga.
	requestProd := kafkax.NewSyncProducer(cfg.KafkaBrokers, kitchen.TopicIngredientsRequest)

	catalog := kitchen.NewCatalog(&kitchendb.RecipeStore{DB: db})
	if err := catalog.Refresh(ctx); err != nil {
		// not fatal: the cache read-throughs on first use
		logger.Warn("recipe catalog not warmed", zap.Error(err))
	}

	wh := warehouse.NewClient(requestProd, cfg.WarehouseTimeout, cfg.ServiceName, logger)
	publisher := kitchen.NewStatusPublisher(statusProd, mode, rdb, cfg.ServiceName, logger)
	saga := kitchen.NewSaga(&kitchendb.OrderStore{DB: db}, catalog, wh, publisher, cfg.PrepTime, logger)
	handler := &kitchen.DispatchHandler{Saga: saga, Redis: rdb, Log: logger}

	// Reply subscription gets a per-instance group id so every worker sees
	// every reply and can match its own correlation ids.
	replyGroup := cfg.ServiceName + "-reply-" + uuid.NewString()
	replyCons := kafkax.NewConsumer(cfg.KafkaBrokers, replyGroup, kitchen.TopicIngredientsReply, 1, logger)
	dispatchCons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.KitchenGroup, kitchen.TopicOrderDispatched, cfg.KitchenWorkers, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return replyCons.Start(gctx, wh.HandleReply)
	})
	g.Go(func() error {
		logger.Info("kitchen consumer started",
			zap.String("group", cfg.KitchenGroup),
			zap.String("topic", kitchen.TopicOrderDispatched),
			zap.Int("workers", cfg.KitchenWorkers),
		)
		return dispatchCons.Start(gctx, handler.HandleOrderDispatched)
	})

	if err := g.Wait(); err != nil {
		logger.Error("consumer exit", zap.Error(err))
	}

	logger.Info("shutting down...")
	statusProd.Close()
	statusProd.WaitClosed() // flush status events before exit
	requestProd.Close()
}
