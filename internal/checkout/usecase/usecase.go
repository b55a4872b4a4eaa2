package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"storefront-backend/internal/apperror"
	"storefront-backend/internal/auth"
	"storefront-backend/internal/cart"
	cartdto "storefront-backend/internal/cart/dto"
	"storefront-backend/internal/checkout"
	"storefront-backend/internal/checkout/dto"
	"storefront-backend/internal/httpx"
	"storefront-backend/internal/model"
	"storefront-backend/internal/order"
	orderdto "storefront-backend/internal/order/dto"
)

type checkoutUseCase struct {
	repo   checkout.Repository
	carts  cart.Repository
	orders order.UseCase
	logger *zap.Logger
	now    func() time.Time
}

func NewCheckoutUseCase(repo checkout.Repository, carts cart.Repository, orders order.UseCase, log *zap.Logger) checkout.UseCase {
	return &checkoutUseCase{
		repo:   repo,
		carts:  carts,
		orders: orders,
		logger: log,
		now:    time.Now,
	}
}

func (uc *checkoutUseCase) Checkout(ctx context.Context, userID primitive.ObjectID, input *dto.CheckoutInput) (*model.Checkout, *model.Order, error) {
	if err := httpx.Validate(input); err != nil {
		return nil, nil, err
	}
	if strings.TrimSpace(input.PaymentMethod) == "" {
		return nil, nil, apperror.Validation("paymentMethod", "paymentMethod is required")
	}

	c, err := uc.carts.FindByOwner(ctx, auth.UserOwner(userID))
	if err != nil {
		return nil, nil, apperror.Internal(err)
	}
	if c == nil || c.IsEmpty() {
		return nil, nil, apperror.Validation("cart", "cart is empty")
	}

	now := uc.now()
	co := &model.Checkout{
		ID:              primitive.NewObjectID(),
		Reference:       uuid.NewString(),
		UserID:          userID,
		CheckoutItems:   c.Products,
		ShippingAddress: *input.ShippingAddress,
		PaymentMethod:   strings.TrimSpace(input.PaymentMethod),
		TotalPrice:      c.TotalPrice,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.repo.Create(ctx, co); err != nil {
		return nil, nil, apperror.Internal(err)
	}

	o, placeErr := uc.orders.PlaceOrder(ctx, userID, placementFromCart(c, co))

	finishedAt := uc.now()
	co.UpdatedAt = finishedAt
	if placeErr != nil {
		co.FailureReason = failureReason(placeErr)
	} else {
		co.IsFinalized = true
		co.FinalizedAt = &finishedAt
		co.OrderID = &o.ID
	}
	if err := uc.repo.Update(context.WithoutCancel(ctx), co); err != nil {
		uc.logger.Error("failed to record checkout outcome",
			zap.String("checkout_id", co.ID.Hex()),
			zap.Bool("finalized", co.IsFinalized),
			zap.Error(err),
		)
	}

	if placeErr != nil {
		uc.logger.Info("checkout failed",
			zap.String("checkout_id", co.ID.Hex()),
			zap.String("reference", co.Reference),
			zap.Error(placeErr),
		)
		return co, nil, placeErr
	}

	uc.logger.Info("checkout finalized",
		zap.String("checkout_id", co.ID.Hex()),
		zap.String("reference", co.Reference),
		zap.String("order_id", o.ID.Hex()),
	)
	return co, o, nil
}

// failureReason is what the owner sees on the stored checkout. Wrapped causes stay in
// the logs.
func failureReason(err error) string {
	var ae *apperror.Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "internal server error"
}

func placementFromCart(c *model.Cart, co *model.Checkout) *orderdto.PlaceOrderInput {
	lines := make([]orderdto.OrderItemInput, 0, len(c.Products))
	for _, item := range c.Products {
		lines = append(lines, orderdto.OrderItemInput{
			ProductID: item.ProductID.Hex(),
			Quantity:  httpx.NewInt(item.Quantity),
			Size:      item.Size,
			Color:     cartdto.ColorInput(item.Color),
		})
	}
	address := co.ShippingAddress
	return &orderdto.PlaceOrderInput{
		OrderItems:      lines,
		ShippingAddress: &address,
		PaymentMethod:   co.PaymentMethod,
		TotalPrice:      decimal.NewNullDecimal(c.TotalPrice),
	}
}

func (uc *checkoutUseCase) GetCheckout(ctx context.Context, id primitive.ObjectID, caller auth.Identity, isAdmin bool) (*model.Checkout, error) {
	co, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if co == nil {
		return nil, apperror.NotFound("checkout not found")
	}
	if co.UserID != caller.UserID && !isAdmin {
		return nil, apperror.Forbidden("not authorized to view this checkout")
	}
	return co, nil
}
