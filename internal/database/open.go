package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/TemirB/carts-service/internal/config"
	"github.com/TemirB/carts-service/internal/domain"
)

type Store interface {
	Get(ctx context.Context, email string) (domain.Record, error)
	Put(ctx context.Context, email string, cart domain.Cart) error
	PutIfVersion(ctx context.Context, email string, cart domain.Cart, version int64) error
	Create(ctx context.Context, email string) (bool, error)
}

// CloseFunc releases the connections behind a Store.
type CloseFunc func(ctx context.Context) error

// Open connects the store selected by cfg.StoreDriver.
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (Store, CloseFunc, error) {
	logger.Info("opening cart store", zap.String("driver", cfg.StoreDriver))

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := Connect(ctx, cfg.DSN(), logger)
		if err != nil {
			return nil, nil, err
		}
		repo := New(pool, cfg.Tables)
		if err := repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repo, func(context.Context) error { pool.Close(); return nil }, nil

	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		return NewRedis(client, cfg.Redis.Prefix), func(context.Context) error { return client.Close() }, nil

	case config.DriverMongo:
		cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		client, err := mongo.Connect(cctx, options.Client().ApplyURI(cfg.Mongo.URI))
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongo: %w", err)
		}
		if err := client.Ping(cctx, nil); err != nil {
			_ = client.Disconnect(ctx)
			return nil, nil, fmt.Errorf("ping mongo: %w", err)
		}
		coll := client.Database(cfg.Mongo.DB).Collection(cfg.Mongo.Collection)
		return NewMongo(coll), client.Disconnect, nil
	}

	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
