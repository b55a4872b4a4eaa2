package mongostore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront-backend/internal/model"
)

type CheckoutRepository struct {
	coll *mongo.Collection
}

func (r *CheckoutRepository) Create(ctx context.Context, c *model.Checkout) error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, c)
	return err
}

func (r *CheckoutRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Checkout, error) {
	var c model.Checkout
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CheckoutRepository) Update(ctx context.Context, c *model.Checkout) error {
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": c.ID}, c)
	return err
}
