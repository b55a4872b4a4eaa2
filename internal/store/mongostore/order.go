package mongostore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront-backend/internal/model"
	"storefront-backend/internal/order"
)

type OrderRepository struct {
	coll *mongo.Collection
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

func (r *OrderRepository) Create(ctx context.Context, o *model.Order) error {
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, o)
	return err
}

func (r *OrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Order, error) {
	var o model.Order
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]model.Order, error) {
	return r.find(ctx, bson.M{"user": userID})
}

func (r *OrderRepository) FindAll(ctx context.Context) ([]model.Order, error) {
	return r.find(ctx, bson.M{})
}

func (r *OrderRepository) find(ctx context.Context, filter bson.M) ([]model.Order, error) {
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, err
	}
	orders := make([]model.Order, 0)
	if err := cur.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateStatus only matches while the order still holds u.From.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, u order.StatusUpdate) (*model.Order, error) {
	set := bson.M{"orderStatus": u.To, "updatedAt": u.UpdatedAt}
	if u.DeliveredAt != nil {
		set["deliveredAt"] = *u.DeliveredAt
	}

	var o model.Order
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "orderStatus": u.From},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, order.ErrStatusChanged
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) UpdatePayment(ctx context.Context, id primitive.ObjectID, u order.PaymentUpdate) (*model.Order, error) {
	update := bson.M{"$set": bson.M{
		"isPaid":        u.IsPaid,
		"paymentStatus": u.PaymentStatus,
		"updatedAt":     u.UpdatedAt,
	}}
	if u.PaidAt != nil {
		update["$set"].(bson.M)["paidAt"] = *u.PaidAt
	} else {
		update["$unset"] = bson.M{"paidAt": ""}
	}

	var o model.Order
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
