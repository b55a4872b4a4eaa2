package product

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront-backend/internal/model"
	"storefront-backend/internal/product/dto"
)

// ErrInsufficientStock is returned by DecrementStock when the product is missing or
// its stock is below the requested quantity at write time.
var ErrInsufficientStock = errors.New("insufficient stock")

type Repository interface {
	Create(ctx context.Context, p *model.Product) error
	// FindByID returns nil, nil when the product does not exist.
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Product, error)
	FindAll(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error)
	Update(ctx context.Context, p *model.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	IsSKUUnique(ctx context.Context, sku string, excludeID primitive.ObjectID) (bool, error)

	// DecrementStock subtracts qty only if stock >= qty still holds when the write is applied.
	DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) error
	IncrementStock(ctx context.Context, id primitive.ObjectID, qty int) error
}
