package cart

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront-backend/internal/auth"
	"storefront-backend/internal/model"
)

type Repository interface {
	// FindByOwner returns nil, nil when the owner has no cart.
	FindByOwner(ctx context.Context, owner auth.CartOwner) (*model.Cart, error)
	// Save inserts or replaces the cart by ID.
	Save(ctx context.Context, cart *model.Cart) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) error
	// SaveMerged persists the merged user cart and removes the guest cart in one step.
	SaveMerged(ctx context.Context, userCart *model.Cart, guestCartID primitive.ObjectID) error
}
