package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/TemirB/carts-service/internal/application/dispatcher"
	"github.com/TemirB/carts-service/internal/application/handler"
	"github.com/TemirB/carts-service/internal/application/service"
	"github.com/TemirB/carts-service/internal/cache"
	"github.com/TemirB/carts-service/internal/config"
	"github.com/TemirB/carts-service/internal/database"
	"github.com/TemirB/carts-service/internal/httpapi"
	"github.com/TemirB/carts-service/internal/kafka"
	"github.com/TemirB/carts-service/internal/observability"
	"github.com/TemirB/carts-service/internal/pkg/breaker"
)

func main() {
	cfg := config.Load()

	logger, err := newLogger(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("carts service stopped", zap.Error(err))
	}
	logger.Info("carts service stopped")
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	metrics := observability.NewInmem(1000)

	store, closeStore, err := database.Open(ctx, cfg, logger.Named("store"))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := closeStore(context.Background()); err != nil {
			logger.Warn("close store", zap.Error(err))
		}
	}()

	if err := kafka.EnsureTopics(ctx, cfg.Kafka, logger, cfg.Kafka.UserTopic, cfg.Kafka.CheckoutTopic); err != nil {
		return err
	}

	writer := kafka.NewWriter(cfg.Kafka.Brokers)
	defer writer.Close()

	svc := service.NewService(
		store,
		kafka.NewPublisher(writer, logger.Named("publisher")),
		service.Options{
			CheckoutTopic:    cfg.Kafka.CheckoutTopic,
			Events:           cfg.Events,
			ConflictAttempts: cfg.ConflictAttempts,
			Retry:            cfg.Retry,
		},
		logger.Named("service"),
		metrics,
	)
	d := dispatcher.New(svc, cfg.Events.UserCreatedType, logger.Named("dispatcher"))

	seen, err := cache.New(cfg.DedupeCap)
	if err != nil {
		return fmt.Errorf("dedupe cache: %w", err)
	}
	h := handler.NewHandler(d, breaker.New(cfg.Breaker), seen, cfg.Retry, logger.Named("handler"), metrics)

	reader := kafka.NewReader(cfg.Kafka.Brokers, cfg.Kafka.UserTopic, cfg.Kafka.Group)
	defer reader.Close()
	consumer := kafka.NewConsumer(h, reader, cfg.Kafka.Workers, logger.Named("consumer"))

	server := httpapi.New(d, logger.Named("http"), metrics)

	logger.Info("carts service starting",
		zap.String("env", cfg.AppEnv),
		zap.String("store", cfg.StoreDriver),
		zap.String("http_addr", cfg.HTTPAddr),
		zap.Strings("routes", d.Paths()),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return consumer.Start(gctx) })
	g.Go(func() error { return server.ListenAndServe(gctx, cfg.HTTPAddr) })
	return g.Wait()
}

func newLogger(env, level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	zc := zap.NewProductionConfig()
	if env == "dev" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}
