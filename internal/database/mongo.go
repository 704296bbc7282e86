package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/TemirB/carts-service/internal/domain"
)

type mongoRecord struct {
	Email     string      `bson:"_id"`
	Carts     domain.Cart `bson:"carts"`
	Version   int64       `bson:"version"`
	UpdatedAt time.Time   `bson:"updatedAt"`
}

// MongoStore keeps one document per customer keyed by email.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongo(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

func (s *MongoStore) Get(ctx context.Context, email string) (domain.Record, error) {
	var doc mongoRecord
	err := s.coll.FindOne(ctx, bson.M{"_id": email}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Record{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Record{}, fmt.Errorf("%w: %w", domain.ErrStoreFailure, err)
	}
	if doc.Carts == nil {
		doc.Carts = domain.Cart{}
	}
	return domain.Record{Email: doc.Email, Carts: doc.Carts, Version: doc.Version, UpdatedAt: doc.UpdatedAt}, nil
}

func (s *MongoStore) Put(ctx context.Context, email string, cart domain.Cart) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": email},
		writeDoc(cart),
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreFailure, err)
	}
	return nil
}

func (s *MongoStore) PutIfVersion(ctx context.Context, email string, cart domain.Cart, version int64) error {
	var doc mongoRecord
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": email, "version": version},
		writeDoc(cart),
		options.FindOneAndUpdate().SetProjection(bson.M{"_id": 1}),
	).Decode(&doc)
	if err == nil {
		return nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%w: %w", domain.ErrStoreFailure, err)
	}

	n, err := s.coll.CountDocuments(ctx, bson.M{"_id": email}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreFailure, err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return domain.ErrVersionConflict
}

func (s *MongoStore) Create(ctx context.Context, email string) (bool, error) {
	_, err := s.coll.InsertOne(ctx, mongoRecord{
		Email:     email,
		Carts:     domain.Cart{},
		UpdatedAt: time.Now().UTC(),
	})
	if mongo.IsDuplicateKeyError(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %w", domain.ErrStoreFailure, err)
	}
	return true, nil
}

func writeDoc(cart domain.Cart) bson.M {
	if cart == nil {
		cart = domain.Cart{}
	}
	return bson.M{
		"$set": bson.M{"carts": cart, "updatedAt": time.Now().UTC()},
		"$inc": bson.M{"version": int64(1)},
	}
}
