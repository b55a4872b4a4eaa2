package checkout

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront-backend/internal/auth"
	"storefront-backend/internal/checkout/dto"
	"storefront-backend/internal/model"
)

type UseCase interface {
	// Checkout places an order from the user's cart. The checkout record is kept
	// whether or not placement succeeds.
	Checkout(ctx context.Context, userID primitive.ObjectID, input *dto.CheckoutInput) (*model.Checkout, *model.Order, error)
	GetCheckout(ctx context.Context, id primitive.ObjectID, caller auth.Identity, isAdmin bool) (*model.Checkout, error)
}
