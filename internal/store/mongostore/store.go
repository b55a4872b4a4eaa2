// Package mongostore implements the repositories on MongoDB.
package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	productsCollection  = "products"
	cartsCollection     = "carts"
	ordersCollection    = "orders"
	checkoutsCollection = "checkouts"
)

type Options struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	// Transactions wraps multi-document writes in a session transaction.
	// The server must be a replica set or sharded cluster.
	Transactions bool
}

type Store struct {
	client *mongo.Client
	db     *mongo.Database

	Products  *ProductRepository
	Carts     *CartRepository
	Orders    *OrderRepository
	Checkouts *CheckoutRepository
}

func Open(ctx context.Context, opts Options) (*Store, error) {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 10 * time.Second
	}
	connectCtx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().
		ApplyURI(opts.URI).
		SetRegistry(NewRegistry()))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(opts.Database)
	return &Store{
		client:    client,
		db:        db,
		Products:  &ProductRepository{coll: db.Collection(productsCollection)},
		Carts:     &CartRepository{client: client, coll: db.Collection(cartsCollection), transactions: opts.Transactions},
		Orders:    &OrderRepository{coll: db.Collection(ordersCollection)},
		Checkouts: &CheckoutRepository{coll: db.Collection(checkoutsCollection)},
	}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes the repositories rely on. It is safe to run on
// every start.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	for coll, models := range indexModels() {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", coll, err)
		}
	}
	return nil
}

func indexModels() map[string][]mongo.IndexModel {
	hasUser := bson.M{"user": bson.M{"$exists": true}}
	hasGuest := bson.M{"guestId": bson.M{"$exists": true}}

	return map[string][]mongo.IndexModel{
		productsCollection: {
			{Keys: bson.D{{Key: "sku", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		cartsCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}}, Options: options.Index().SetUnique(true).SetPartialFilterExpression(hasUser)},
			{Keys: bson.D{{Key: "guestId", Value: 1}}, Options: options.Index().SetPartialFilterExpression(hasGuest)},
		},
		ordersCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
		checkoutsCollection: {
			{Keys: bson.D{{Key: "reference", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "user", Value: 1}}},
		},
	}
}
