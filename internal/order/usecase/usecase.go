package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"storefront-backend/internal/apperror"
	"storefront-backend/internal/auth"
	"storefront-backend/internal/cart"
	"storefront-backend/internal/events"
	"storefront-backend/internal/httpx"
	"storefront-backend/internal/model"
	"storefront-backend/internal/order"
	"storefront-backend/internal/order/dto"
	"storefront-backend/internal/product"
)

type orderUseCase struct {
	repo      order.Repository
	products  product.Repository
	carts     cart.Repository
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewOrderUseCase(
	repo order.Repository,
	products product.Repository,
	carts cart.Repository,
	publisher events.Publisher,
	log *zap.Logger,
) order.UseCase {
	return &orderUseCase{
		repo:      repo,
		products:  products,
		carts:     carts,
		publisher: publisher,
		logger:    log,
		now:       time.Now,
	}
}

// PlaceOrder validates the request, reserves stock for every line and persists the
// order. Stock changes are all-or-nothing: any failure restores what was already taken.
func (uc *orderUseCase) PlaceOrder(ctx context.Context, userID primitive.ObjectID, input *dto.PlaceOrderInput) (*model.Order, error) {
	if err := validatePlacement(input); err != nil {
		return nil, err
	}

	items, err := uc.snapshotItems(ctx, input.OrderItems)
	if err != nil {
		return nil, err
	}

	if err := uc.reserveStock(ctx, items); err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	if !input.TotalPrice.Decimal.Equal(total) {
		uc.logger.Warn("declared order total differs from computed total",
			zap.String("user_id", userID.Hex()),
			zap.String("declared", input.TotalPrice.Decimal.String()),
			zap.String("computed", total.String()),
		)
	}

	now := uc.now()
	o := &model.Order{
		ID:              primitive.NewObjectID(),
		UserID:          userID,
		OrderItems:      items,
		ShippingAddress: *input.ShippingAddress,
		PaymentMethod:   strings.TrimSpace(input.PaymentMethod),
		TotalPrice:      total,
		PaymentStatus:   model.PaymentPending,
		OrderStatus:     model.StatusProcessing,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if !model.IsCashOnDelivery(o.PaymentMethod) {
		o.IsPaid = true
		o.PaidAt = &now
		o.PaymentStatus = model.PaymentPaid
	}

	if err := uc.repo.Create(ctx, o); err != nil {
		uc.releaseStock(ctx, items)
		return nil, apperror.Internal(err)
	}

	if err := uc.carts.DeleteByUser(ctx, userID); err != nil {
		uc.logger.Warn("failed to clear cart after order",
			zap.String("user_id", userID.Hex()),
			zap.String("order_id", o.ID.Hex()),
			zap.Error(err),
		)
	}

	uc.logger.Info("order placed",
		zap.String("order_id", o.ID.Hex()),
		zap.String("user_id", userID.Hex()),
		zap.Int("lines", len(items)),
		zap.String("total", total.String()),
	)
	uc.publish(ctx, events.OrderCreated, o)
	return o, nil
}

func validatePlacement(input *dto.PlaceOrderInput) error {
	if err := httpx.Validate(input); err != nil {
		return err
	}
	for i, it := range input.OrderItems {
		if !it.Quantity.Set || it.Quantity.Value <= 0 {
			return apperror.Validation(fmt.Sprintf("orderItems[%d].quantity", i), "quantity must be a positive integer")
		}
		if it.Quantity.Value > model.MaxLineQuantity {
			return apperror.Validation(fmt.Sprintf("orderItems[%d].quantity", i),
				fmt.Sprintf("quantity per line cannot exceed %d", model.MaxLineQuantity))
		}
	}
	if strings.TrimSpace(input.PaymentMethod) == "" {
		return apperror.Validation("paymentMethod", "paymentMethod is required")
	}
	if !input.TotalPrice.Valid || !input.TotalPrice.Decimal.IsPositive() {
		return apperror.Validation("totalPrice", "totalPrice must be a positive number")
	}
	return nil
}

// snapshotItems resolves every line against the catalog in submission order.
func (uc *orderUseCase) snapshotItems(ctx context.Context, lines []dto.OrderItemInput) ([]model.OrderItem, error) {
	items := make([]model.OrderItem, 0, len(lines))
	for _, line := range lines {
		id, err := primitive.ObjectIDFromHex(line.ProductID)
		if err != nil {
			return nil, apperror.NotFound("product not found: " + line.ProductID)
		}
		p, err := uc.products.FindByID(ctx, id)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		if p == nil {
			return nil, apperror.NotFound("product not found: " + line.ProductID)
		}

		items = append(items, model.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Image:     p.PrimaryImage(),
			Price:     p.EffectivePrice(),
			Quantity:  line.Quantity.Value,
			Size:      model.NormalizeSize(line.Size),
			Color:     line.Color.Normalized(),
		})
	}
	return items, nil
}

func (uc *orderUseCase) reserveStock(ctx context.Context, items []model.OrderItem) error {
	for i, it := range items {
		err := uc.products.DecrementStock(ctx, it.ProductID, it.Quantity)
		if err == nil {
			continue
		}

		uc.releaseStock(ctx, items[:i])
		if !errors.Is(err, product.ErrInsufficientStock) {
			return apperror.Internal(err)
		}

		available := 0
		if p, ferr := uc.products.FindByID(ctx, it.ProductID); ferr == nil && p != nil {
			available = p.Stock
		}
		uc.logger.Info("order rejected for insufficient stock",
			zap.String("product_id", it.ProductID.Hex()),
			zap.Int("available", available),
			zap.Int("requested", it.Quantity),
		)
		return apperror.InsufficientStock(it.ProductID.Hex(), it.Name, available, it.Quantity)
	}
	return nil
}

// releaseStock gives back reserved quantities. Failures are logged; the request
// already failed and there is nothing more the caller can do about it.
func (uc *orderUseCase) releaseStock(ctx context.Context, items []model.OrderItem) {
	ctx = context.WithoutCancel(ctx)
	for _, it := range items {
		if err := uc.products.IncrementStock(ctx, it.ProductID, it.Quantity); err != nil {
			uc.logger.Error("failed to restore stock",
				zap.String("product_id", it.ProductID.Hex()),
				zap.Int("quantity", it.Quantity),
				zap.Error(err),
			)
		}
	}
}

func (uc *orderUseCase) GetMyOrders(ctx context.Context, userID primitive.ObjectID) ([]model.Order, error) {
	orders, err := uc.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}

func (uc *orderUseCase) GetOrder(ctx context.Context, id primitive.ObjectID, caller auth.Identity, isAdmin bool) (*model.Order, error) {
	o, err := uc.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != caller.UserID && !isAdmin {
		return nil, apperror.Forbidden("not authorized to view this order")
	}
	return o, nil
}

func (uc *orderUseCase) ListOrders(ctx context.Context) ([]model.Order, error) {
	orders, err := uc.repo.FindAll(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}

func (uc *orderUseCase) UpdateStatus(ctx context.Context, id primitive.ObjectID, input *dto.StatusInput) (*model.Order, error) {
	if err := httpx.Validate(input); err != nil {
		return nil, err
	}
	next, ok := model.ParseOrderStatus(input.OrderStatus)
	if !ok {
		return nil, apperror.Validation("orderStatus", "unknown order status "+input.OrderStatus)
	}

	o, err := uc.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.OrderStatus == next {
		return o, nil
	}
	if !o.OrderStatus.CanTransitionTo(next) {
		return nil, apperror.Validation("orderStatus",
			fmt.Sprintf("cannot change order status from %s to %s", o.OrderStatus, next))
	}

	now := uc.now()
	u := order.StatusUpdate{From: o.OrderStatus, To: next, UpdatedAt: now}
	if next == model.StatusDelivered {
		u.DeliveredAt = &now
	}

	updated, err := uc.repo.UpdateStatus(ctx, id, u)
	if errors.Is(err, order.ErrStatusChanged) {
		return nil, apperror.Conflict("order status was changed by another request")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}

	uc.logger.Info("order status updated",
		zap.String("order_id", id.Hex()),
		zap.String("from", string(u.From)),
		zap.String("to", string(u.To)),
	)
	uc.publish(ctx, events.OrderStatusUpdated, updated)
	return updated, nil
}

func (uc *orderUseCase) UpdatePayment(ctx context.Context, id primitive.ObjectID, input *dto.PaymentInput) (*model.Order, error) {
	if err := httpx.Validate(input); err != nil {
		return nil, err
	}

	now := uc.now()
	u := order.PaymentUpdate{
		IsPaid:        *input.IsPaid,
		PaymentStatus: model.PaymentPending,
		UpdatedAt:     now,
	}
	if u.IsPaid {
		u.PaidAt = &now
		u.PaymentStatus = model.PaymentPaid
	}

	updated, err := uc.repo.UpdatePayment(ctx, id, u)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if updated == nil {
		return nil, apperror.NotFound("order not found")
	}

	uc.publish(ctx, events.OrderPaymentUpdated, updated)
	return updated, nil
}

// DeleteOrder removes the record only. Stock and carts are left as they are.
func (uc *orderUseCase) DeleteOrder(ctx context.Context, id primitive.ObjectID) error {
	o, err := uc.find(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return apperror.Internal(err)
	}
	uc.logger.Info("order deleted", zap.String("order_id", id.Hex()))
	uc.publish(ctx, events.OrderDeleted, o)
	return nil
}

func (uc *orderUseCase) find(ctx context.Context, id primitive.ObjectID) (*model.Order, error) {
	o, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if o == nil {
		return nil, apperror.NotFound("order not found")
	}
	return o, nil
}

func (uc *orderUseCase) publish(ctx context.Context, t events.Type, o *model.Order) {
	evt := events.NewOrderEvent(t, o, uc.now())
	if err := uc.publisher.Publish(ctx, evt); err != nil {
		uc.logger.Warn("failed to publish order event",
			zap.String("type", string(t)),
			zap.String("order_id", o.ID.Hex()),
			zap.Error(err),
		)
	}
}
