package mongostore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront-backend/internal/auth"
	"storefront-backend/internal/model"
)

type CartRepository struct {
	client       *mongo.Client
	coll         *mongo.Collection
	transactions bool
}

func ownerFilter(owner auth.CartOwner) (bson.M, error) {
	switch {
	case owner.IsUser():
		return bson.M{"user": owner.UserID}, nil
	case owner.IsGuest():
		return bson.M{"guestId": owner.GuestID, "user": bson.M{"$exists": false}}, nil
	default:
		return nil, errors.New("cart owner is not set")
	}
}

func (r *CartRepository) FindByOwner(ctx context.Context, owner auth.CartOwner) (*model.Cart, error) {
	filter, err := ownerFilter(owner)
	if err != nil {
		return nil, err
	}

	var c model.Cart
	err = r.coll.FindOne(ctx, filter).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CartRepository) Save(ctx context.Context, c *model.Cart) error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": c.ID}, c, options.Replace().SetUpsert(true))
	return err
}

func (r *CartRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *CartRepository) DeleteByUser(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{"user": userID})
	return err
}

// SaveMerged writes the merged user cart and deletes the guest cart. With
// transactions enabled both writes commit together; otherwise the user cart is
// written first so a failure in between leaves the guest cart to be merged again.
func (r *CartRepository) SaveMerged(ctx context.Context, userCart *model.Cart, guestCartID primitive.ObjectID) error {
	if !r.transactions {
		return r.saveMerged(ctx, userCart, guestCartID)
	}

	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, r.saveMerged(sc, userCart, guestCartID)
	})
	return err
}

func (r *CartRepository) saveMerged(ctx context.Context, userCart *model.Cart, guestCartID primitive.ObjectID) error {
	if err := r.Save(ctx, userCart); err != nil {
		return err
	}
	return r.Delete(ctx, guestCartID)
}
