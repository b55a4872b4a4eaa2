package product

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront-backend/internal/model"
	"storefront-backend/internal/product/dto"
)

type UseCase interface {
	CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error)
	GetProduct(ctx context.Context, id primitive.ObjectID) (*model.Product, error)
	ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error)
	UpdateProduct(ctx context.Context, id primitive.ObjectID, input *dto.UpdateProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, id primitive.ObjectID) error
}
