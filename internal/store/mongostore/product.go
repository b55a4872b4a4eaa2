package mongostore

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront-backend/internal/model"
	"storefront-backend/internal/product"
	"storefront-backend/internal/product/dto"
)

type ProductRepository struct {
	coll *mongo.Collection
}

func (r *ProductRepository) Create(ctx context.Context, p *model.Product) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, p)
	return err
}

func (r *ProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Product, error) {
	var p model.Product
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) FindAll(ctx context.Context, f *dto.ProductFilters) ([]model.Product, int, error) {
	filter, opts := productQuery(f)

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	products := make([]model.Product, 0)
	if err := cur.All(ctx, &products); err != nil {
		return nil, 0, err
	}
	return products, int(total), nil
}

func productQuery(f *dto.ProductFilters) (bson.M, *options.FindOptions) {
	filter := bson.M{}
	if f.PublishedOnly {
		filter["isActive"] = true
		filter["isPublished"] = true
	}
	if f.Category != "" {
		filter["category"] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(f.Category) + "$", Options: "i"}
	}
	if f.SearchQuery != "" {
		filter["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.SearchQuery), Options: "i"}
	}

	var sort bson.D
	switch f.SortBy {
	case dto.SortPriceAsc:
		sort = bson.D{{Key: "price", Value: 1}, {Key: "_id", Value: 1}}
	case dto.SortPriceDesc:
		sort = bson.D{{Key: "price", Value: -1}, {Key: "_id", Value: 1}}
	default:
		sort = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
	}

	opts := options.Find().SetSort(sort)
	if f.PageSize > 0 {
		opts.SetSkip(int64(f.Skip())).SetLimit(int64(f.PageSize))
	}
	return filter, opts
}

func (r *ProductRepository) Update(ctx context.Context, p *model.Product) error {
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	return err
}

func (r *ProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *ProductRepository) IsSKUUnique(ctx context.Context, sku string, excludeID primitive.ObjectID) (bool, error) {
	filter := bson.M{"sku": sku}
	if !excludeID.IsZero() {
		filter["_id"] = bson.M{"$ne": excludeID}
	}
	n, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// DecrementStock applies the decrement only while stock >= qty. The filter and the
// $inc run as one document update, so concurrent orders cannot drive stock negative.
func (r *ProductRepository) DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "stock": bson.M{"$gte": qty}},
		bson.M{
			"$inc": bson.M{"stock": -qty},
			"$set": bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return product.ErrInsufficientStock
	}
	return nil
}

func (r *ProductRepository) IncrementStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{"stock": qty},
			"$set": bson.M{"updatedAt": time.Now()},
		},
	)
	return err
}
