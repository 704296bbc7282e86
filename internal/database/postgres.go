package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/TemirB/carts-service/internal/config"
	"github.com/TemirB/carts-service/internal/domain"
)

// Repo stores one row per customer: the cart as JSONB plus a version that
// grows by one on every write.
type Repo struct {
	pool   *pgxpool.Pool
	tables config.Tables
}

func New(pool *pgxpool.Pool, t config.Tables) *Repo { return &Repo{pool: pool, tables: t} }

func (r *Repo) qt(tbl string) string { return fmt.Sprintf(`"%s"."%s"`, r.tables.Schema, tbl) }

func (r *Repo) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, r.tables.Schema)); err != nil {
		return fmt.Errorf("%w: create schema: %w", domain.ErrStoreFailure, err)
	}
	_, err := r.pool.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
		  email      TEXT PRIMARY KEY,
		  carts      JSONB       NOT NULL DEFAULT '{}'::jsonb,
		  version    BIGINT      NOT NULL DEFAULT 0,
		  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`, r.qt(r.tables.Carts)))
	if err != nil {
		return fmt.Errorf("%w: create table: %w", domain.ErrStoreFailure, err)
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, email string) (domain.Record, error) {
	var (
		raw []byte
		rec = domain.Record{Email: email}
	)
	err := r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT carts, version, updated_at FROM %s WHERE email=$1
	`, r.qt(r.tables.Carts)), email).Scan(&raw, &rec.Version, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Record{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Record{}, fmt.Errorf("%w: %w", domain.ErrStoreFailure, err)
	}

	carts, err := decodeCart(raw)
	if err != nil {
		return domain.Record{}, err
	}
	rec.Carts = carts
	return rec, nil
}

// Put writes cart unconditionally, creating the row when needed.
func (r *Repo) Put(ctx context.Context, email string, cart domain.Cart) error {
	b, err := encodeCart(cart)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s AS c (email, carts, version, updated_at)
		VALUES ($1, $2::jsonb, 1, $3)
		ON CONFLICT (email) DO UPDATE SET
		  carts=EXCLUDED.carts,
		  version=c.version + 1,
		  updated_at=EXCLUDED.updated_at
	`, r.qt(r.tables.Carts)), email, b, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreFailure, err)
	}
	return nil
}

// PutIfVersion writes cart only if the stored version still equals version.
func (r *Repo) PutIfVersion(ctx context.Context, email string, cart domain.Cart, version int64) error {
	b, err := encodeCart(cart)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, fmt.Sprintf(`
		UPDATE %s SET carts=$2::jsonb, version=version + 1, updated_at=$4
		WHERE email=$1 AND version=$3
	`, r.qt(r.tables.Carts)), email, b, version, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreFailure, err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	err = r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT EXISTS (SELECT 1 FROM %s WHERE email=$1)
	`, r.qt(r.tables.Carts)), email).Scan(&exists)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreFailure, err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrVersionConflict
}

// Create inserts an empty cart and reports false when one already exists.
func (r *Repo) Create(ctx context.Context, email string) (bool, error) {
	tag, err := r.pool.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (email, carts, version, updated_at)
		VALUES ($1, '{}'::jsonb, 0, $2)
		ON CONFLICT (email) DO NOTHING
	`, r.qt(r.tables.Carts)), email, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("%w: %w", domain.ErrStoreFailure, err)
	}
	return tag.RowsAffected() == 1, nil
}

func encodeCart(cart domain.Cart) (string, error) {
	if cart == nil {
		cart = domain.Cart{}
	}
	b, err := json.Marshal(cart)
	if err != nil {
		return "", fmt.Errorf("%w: encode cart: %w", domain.ErrStoreFailure, err)
	}
	return string(b), nil
}

func decodeCart(raw []byte) (domain.Cart, error) {
	cart := domain.Cart{}
	if len(raw) == 0 {
		return cart, nil
	}
	if err := json.Unmarshal(raw, &cart); err != nil {
		return nil, fmt.Errorf("%w: decode cart: %w", domain.ErrStoreFailure, err)
	}
	return cart, nil
}
