package order

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront-backend/internal/auth"
	"storefront-backend/internal/model"
	"storefront-backend/internal/order/dto"
)

type UseCase interface {
	PlaceOrder(ctx context.Context, userID primitive.ObjectID, input *dto.PlaceOrderInput) (*model.Order, error)
	GetMyOrders(ctx context.Context, userID primitive.ObjectID) ([]model.Order, error)
	// GetOrder returns the order to its owner or to an admin.
	GetOrder(ctx context.Context, id primitive.ObjectID, caller auth.Identity, isAdmin bool) (*model.Order, error)

	ListOrders(ctx context.Context) ([]model.Order, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, input *dto.StatusInput) (*model.Order, error)
	UpdatePayment(ctx context.Context, id primitive.ObjectID, input *dto.PaymentInput) (*model.Order, error)
	DeleteOrder(ctx context.Context, id primitive.ObjectID) error
}
