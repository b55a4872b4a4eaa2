// Package events publishes order lifecycle notifications for downstream consumers
// such as fulfilment and mailing.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront-backend/internal/model"
)

type Type string

const (
	OrderCreated        Type = "order.created"
	OrderStatusUpdated  Type = "order.status_updated"
	OrderPaymentUpdated Type = "order.payment_updated"
	OrderDeleted        Type = "order.deleted"
)

type OrderEvent struct {
	EventID    string            `json:"eventId"`
	Type       Type              `json:"type"`
	OrderID    string            `json:"orderId"`
	UserID     string            `json:"userId"`
	Status     model.OrderStatus `json:"status"`
	IsPaid     bool              `json:"isPaid"`
	TotalPrice decimal.Decimal   `json:"totalPrice"`
	OccurredAt time.Time         `json:"occurredAt"`
}

func NewOrderEvent(t Type, o *model.Order, at time.Time) OrderEvent {
	return OrderEvent{
		EventID:    uuid.NewString(),
		Type:       t,
		OrderID:    o.ID.Hex(),
		UserID:     o.UserID.Hex(),
		Status:     o.OrderStatus,
		IsPaid:     o.IsPaid,
		TotalPrice: o.TotalPrice,
		OccurredAt: at.UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, evt OrderEvent) error
	Close() error
}

// NopPublisher discards events. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, OrderEvent) error { return nil }
func (NopPublisher) Close() error                              { return nil }
