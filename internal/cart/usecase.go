package cart

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront-backend/internal/auth"
	"storefront-backend/internal/cart/dto"
	"storefront-backend/internal/model"
)

type UseCase interface {
	GetCart(ctx context.Context, owner auth.CartOwner) (*model.Cart, error)
	AddItem(ctx context.Context, owner auth.CartOwner, input *dto.ItemInput) (*model.Cart, error)
	UpdateItem(ctx context.Context, owner auth.CartOwner, input *dto.ItemInput) (*model.Cart, error)
	RemoveItem(ctx context.Context, owner auth.CartOwner, input *dto.ItemInput) (*model.Cart, error)
	ClearCart(ctx context.Context, owner auth.CartOwner) error
	MergeGuestCart(ctx context.Context, userID primitive.ObjectID, guestID string) (*model.Cart, error)
}
