package order

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront-backend/internal/model"
)

// ErrStatusChanged is returned by UpdateStatus when the order no longer holds the
// expected status at write time.
var ErrStatusChanged = errors.New("order status changed concurrently")

type StatusUpdate struct {
	From        model.OrderStatus
	To          model.OrderStatus
	DeliveredAt *time.Time
	UpdatedAt   time.Time
}

type PaymentUpdate struct {
	IsPaid        bool
	PaidAt        *time.Time
	PaymentStatus string
	UpdatedAt     time.Time
}

type Repository interface {
	Create(ctx context.Context, o *model.Order) error
	// FindByID returns nil, nil when the order does not exist.
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Order, error)
	// FindByUser lists the user's orders, newest first.
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]model.Order, error)
	FindAll(ctx context.Context) ([]model.Order, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, u StatusUpdate) (*model.Order, error)
	UpdatePayment(ctx context.Context, id primitive.ObjectID, u PaymentUpdate) (*model.Order, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}
