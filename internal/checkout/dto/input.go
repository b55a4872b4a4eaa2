package dto

import "storefront-backend/internal/model"

// CheckoutInput converts the caller's current cart into an order.
type CheckoutInput struct {
	ShippingAddress *model.ShippingAddress `json:"shippingAddress" validate:"required"`
	PaymentMethod   string                 `json:"paymentMethod" validate:"required"`
}
