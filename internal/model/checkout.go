package model

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Checkout records one attempt to turn a cart into an order.
type Checkout struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Reference       string              `bson:"reference" json:"reference"`
	UserID          primitive.ObjectID  `bson:"user" json:"user"`
	CheckoutItems   []CartItem          `bson:"checkoutItems" json:"checkoutItems"`
	ShippingAddress ShippingAddress     `bson:"shippingAddress" json:"shippingAddress"`
	PaymentMethod   string              `bson:"paymentMethod" json:"paymentMethod"`
	TotalPrice      decimal.Decimal     `bson:"totalPrice" json:"totalPrice"`
	IsFinalized     bool                `bson:"isFinalized" json:"isFinalized"`
	FinalizedAt     *time.Time          `bson:"finalizedAt,omitempty" json:"finalizedAt,omitempty"`
	OrderID         *primitive.ObjectID `bson:"orderId,omitempty" json:"orderId,omitempty"`
	FailureReason   string              `bson:"failureReason,omitempty" json:"failureReason,omitempty"`
	CreatedAt       time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time           `bson:"updatedAt" json:"updatedAt"`
}
