package checkout

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront-backend/internal/model"
)

type Repository interface {
	Create(ctx context.Context, c *model.Checkout) error
	// FindByID returns nil, nil when the checkout does not exist.
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Checkout, error)
	Update(ctx context.Context, c *model.Checkout) error
}
