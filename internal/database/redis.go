package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/TemirB/carts-service/internal/domain"
)

// watchAttempts bounds how often an unconditional Put retries after the key
// changed under WATCH.
const watchAttempts = 5

type redisRecord struct {
	Carts     domain.Cart `json:"carts"`
	Version   int64       `json:"version"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// RedisStore keeps each cart as a JSON document under prefix:email. Writes
// go through WATCH/MULTI so the version check and the write are atomic.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedis(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(email string) string { return s.prefix + ":" + email }

func (s *RedisStore) Get(ctx context.Context, email string) (domain.Record, error) {
	rec, err := load(ctx, s.client, s.key(email))
	if err != nil {
		return domain.Record{}, err
	}
	return rec.toRecord(email), nil
}

func (s *RedisStore) Put(ctx context.Context, email string, cart domain.Cart) error {
	key := s.key(email)
	for i := 0; i < watchAttempts; i++ {
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			cur, err := load(ctx, tx, key)
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return err
			}
			return write(ctx, tx, key, cart, cur.Version+1)
		}, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("%w: key %s kept changing", domain.ErrStoreFailure, key)
}

func (s *RedisStore) PutIfVersion(ctx context.Context, email string, cart domain.Cart, version int64) error {
	key := s.key(email)
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := load(ctx, tx, key)
		if err != nil {
			return err
		}
		if cur.Version != version {
			return domain.ErrVersionConflict
		}
		return write(ctx, tx, key, cart, version+1)
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return domain.ErrVersionConflict
	}
	return err
}

func (s *RedisStore) Create(ctx context.Context, email string) (bool, error) {
	b, err := json.Marshal(redisRecord{Carts: domain.Cart{}, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return false, fmt.Errorf("%w: %w", domain.ErrStoreFailure, err)
	}
	created, err := s.client.SetNX(ctx, s.key(email), b, 0).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %w", domain.ErrStoreFailure, err)
	}
	return created, nil
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func load(ctx context.Context, c getter, key string) (redisRecord, error) {
	var rec redisRecord
	b, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return rec, domain.ErrNotFound
	}
	if err != nil {
		return rec, fmt.Errorf("%w: %w", domain.ErrStoreFailure, err)
	}
	if err := json.Unmarshal(b, &rec); err != nil {
		return rec, fmt.Errorf("%w: decode %s: %v", domain.ErrStoreFailure, key, err)
	}
	return rec, nil
}

func write(ctx context.Context, tx *redis.Tx, key string, cart domain.Cart, version int64) error {
	if cart == nil {
		cart = domain.Cart{}
	}
	b, err := json.Marshal(redisRecord{Carts: cart, Version: version, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreFailure, err)
	}
	_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, key, b, 0)
		return nil
	})
	if err != nil && !errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("%w: %w", domain.ErrStoreFailure, err)
	}
	return err
}

func (r redisRecord) toRecord(email string) domain.Record {
	carts := r.Carts
	if carts == nil {
		carts = domain.Cart{}
	}
	return domain.Record{Email: email, Carts: carts, Version: r.Version, UpdatedAt: r.UpdatedAt}
}
