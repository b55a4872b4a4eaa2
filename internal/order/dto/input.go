package dto

import (
	"github.com/shopspring/decimal"

	cartdto "storefront-backend/internal/cart/dto"
	"storefront-backend/internal/httpx"
	"storefront-backend/internal/model"
)

type OrderItemInput struct {
	ProductID string             `json:"productId" validate:"required"`
	Quantity  httpx.Int          `json:"quantity"`
	Size      string             `json:"size"`
	Color     cartdto.ColorInput `json:"color"`
}

// PlaceOrderInput is the client's order request. TotalPrice is the total the client
// displayed; the stored total is always recomputed from product prices.
type PlaceOrderInput struct {
	OrderItems      []OrderItemInput       `json:"orderItems" validate:"required,min=1,dive"`
	ShippingAddress *model.ShippingAddress `json:"shippingAddress" validate:"required"`
	PaymentMethod   string                 `json:"paymentMethod" validate:"required"`
	TotalPrice      decimal.NullDecimal    `json:"totalPrice"`
}

type StatusInput struct {
	OrderStatus string `json:"orderStatus" validate:"required"`
}

type PaymentInput struct {
	IsPaid *bool `json:"isPaid" validate:"required"`
}
