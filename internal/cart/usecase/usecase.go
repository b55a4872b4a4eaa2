package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"storefront-backend/internal/apperror"
	"storefront-backend/internal/auth"
	"storefront-backend/internal/cart"
	"storefront-backend/internal/cart/dto"
	"storefront-backend/internal/model"
	"storefront-backend/internal/product"
)

type cartUseCase struct {
	repo     cart.Repository
	products product.Repository
	logger   *zap.Logger
	now      func() time.Time
}

func NewCartUseCase(repo cart.Repository, products product.Repository, log *zap.Logger) cart.UseCase {
	return &cartUseCase{
		repo:     repo,
		products: products,
		logger:   log,
		now:      time.Now,
	}
}

// GetCart never creates a cart; owners without one get an empty, unsaved view.
func (uc *cartUseCase) GetCart(ctx context.Context, owner auth.CartOwner) (*model.Cart, error) {
	c, err := uc.repo.FindByOwner(ctx, owner)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if c == nil {
		return emptyCart(owner), nil
	}
	return c, nil
}

func (uc *cartUseCase) AddItem(ctx context.Context, owner auth.CartOwner, input *dto.ItemInput) (*model.Cart, error) {
	if !input.Quantity.Set || input.Quantity.Value <= 0 {
		return nil, apperror.Validation("quantity", "quantity must be a positive integer")
	}
	if input.Quantity.Value > model.MaxLineQuantity {
		return nil, errLineLimit()
	}

	productID, err := primitive.ObjectIDFromHex(input.ProductID)
	if err != nil {
		return nil, apperror.NotFound("product not found")
	}
	p, err := uc.products.FindByID(ctx, productID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if p == nil {
		return nil, apperror.NotFound("product not found")
	}

	c, err := uc.repo.FindByOwner(ctx, owner)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	now := uc.now()
	if c == nil {
		c = emptyCart(owner)
		c.CreatedAt = now
	}

	size := model.NormalizeSize(input.Size)
	color := input.Color.Normalized()

	if idx := c.IndexOf(productID, size, color); idx >= 0 {
		if c.Products[idx].Quantity > model.MaxLineQuantity-input.Quantity.Value {
			return nil, errLineLimit()
		}
		c.Products[idx].Quantity += input.Quantity.Value
	} else {
		c.Products = append(c.Products, model.CartItem{
			ProductID: productID,
			Name:      p.Name,
			Image:     p.PrimaryImage(),
			Price:     p.EffectivePrice(),
			Size:      size,
			Color:     color,
			Quantity:  input.Quantity.Value,
		})
	}

	c.Recalculate()
	c.UpdatedAt = now
	if err := uc.repo.Save(ctx, c); err != nil {
		return nil, apperror.Internal(err)
	}
	return c, nil
}

// UpdateItem replaces the quantity of a line. Zero removes the line.
func (uc *cartUseCase) UpdateItem(ctx context.Context, owner auth.CartOwner, input *dto.ItemInput) (*model.Cart, error) {
	if !input.Quantity.Set {
		return nil, apperror.Validation("quantity", "quantity is required")
	}
	if input.Quantity.Value < 0 {
		return nil, apperror.Validation("quantity", "quantity cannot be negative")
	}
	if input.Quantity.Value > model.MaxLineQuantity {
		return nil, errLineLimit()
	}

	c, err := uc.repo.FindByOwner(ctx, owner)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if c == nil {
		return nil, apperror.NotFound("cart not found")
	}

	productID, err := primitive.ObjectIDFromHex(input.ProductID)
	if err != nil {
		return nil, apperror.NotFound("product not found in cart")
	}
	idx := c.IndexOf(productID, model.NormalizeSize(input.Size), input.Color.Normalized())
	if idx < 0 {
		return nil, apperror.NotFound("product not found in cart")
	}

	if input.Quantity.Value == 0 {
		c.Products = append(c.Products[:idx], c.Products[idx+1:]...)
	} else {
		c.Products[idx].Quantity = input.Quantity.Value
	}

	c.Recalculate()
	c.UpdatedAt = uc.now()
	if err := uc.repo.Save(ctx, c); err != nil {
		return nil, apperror.Internal(err)
	}
	return c, nil
}

// RemoveItem is idempotent: a missing cart or line leaves everything unchanged.
func (uc *cartUseCase) RemoveItem(ctx context.Context, owner auth.CartOwner, input *dto.ItemInput) (*model.Cart, error) {
	c, err := uc.repo.FindByOwner(ctx, owner)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if c == nil {
		return emptyCart(owner), nil
	}

	productID, err := primitive.ObjectIDFromHex(input.ProductID)
	if err != nil {
		return c, nil
	}
	idx := c.IndexOf(productID, model.NormalizeSize(input.Size), input.Color.Normalized())
	if idx < 0 {
		return c, nil
	}

	c.Products = append(c.Products[:idx], c.Products[idx+1:]...)
	c.Recalculate()
	c.UpdatedAt = uc.now()
	if err := uc.repo.Save(ctx, c); err != nil {
		return nil, apperror.Internal(err)
	}
	return c, nil
}

// ClearCart drops the owner's cart record. Clearing a missing cart succeeds.
func (uc *cartUseCase) ClearCart(ctx context.Context, owner auth.CartOwner) error {
	c, err := uc.repo.FindByOwner(ctx, owner)
	if err != nil {
		return apperror.Internal(err)
	}
	if c == nil {
		return nil
	}
	if err := uc.repo.Delete(ctx, c.ID); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

// MergeGuestCart folds the guest's cart into the user's cart at login. Calling it again
// after the guest cart is gone is a no-op.
func (uc *cartUseCase) MergeGuestCart(ctx context.Context, userID primitive.ObjectID, guestID string) (*model.Cart, error) {
	guestID = strings.TrimSpace(guestID)
	if guestID == "" {
		return nil, apperror.Validation("guestId", "guestId is required")
	}
	userOwner := auth.UserOwner(userID)

	guestCart, err := uc.repo.FindByOwner(ctx, auth.GuestOwner(guestID))
	if err != nil {
		return nil, apperror.Internal(err)
	}
	userCart, err := uc.repo.FindByOwner(ctx, userOwner)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	if guestCart == nil || guestCart.IsEmpty() {
		if userCart == nil {
			return emptyCart(userOwner), nil
		}
		return userCart, nil
	}

	now := uc.now()
	if userCart == nil {
		guestCart.UserID = &userID
		guestCart.GuestID = ""
		guestCart.Recalculate()
		guestCart.UpdatedAt = now
		if err := uc.repo.Save(ctx, guestCart); err != nil {
			return nil, apperror.Internal(err)
		}
		uc.logger.Info("guest cart re-owned",
			zap.String("guest_id", guestID),
			zap.String("user_id", userID.Hex()),
		)
		return guestCart, nil
	}

	for _, item := range guestCart.Products {
		size := model.NormalizeSize(item.Size)
		color := model.NormalizeColor(item.Color)
		if idx := userCart.IndexOf(item.ProductID, size, color); idx >= 0 {
			line := &userCart.Products[idx]
			line.Quantity = capLine(line.Quantity, item.Quantity)
		} else {
			item.Quantity = capLine(0, item.Quantity)
			userCart.Products = append(userCart.Products, item)
		}
	}
	userCart.Recalculate()
	userCart.UpdatedAt = now

	if err := uc.repo.SaveMerged(ctx, userCart, guestCart.ID); err != nil {
		return nil, apperror.Internal(err)
	}
	uc.logger.Info("guest cart merged",
		zap.String("guest_id", guestID),
		zap.String("user_id", userID.Hex()),
		zap.Int("lines", len(userCart.Products)),
	)
	return userCart, nil
}

func errLineLimit() error {
	return apperror.Validation("quantity", fmt.Sprintf("quantity per line cannot exceed %d", model.MaxLineQuantity))
}

// capLine adds qty to existing without passing MaxLineQuantity.
func capLine(existing, qty int) int {
	if existing >= model.MaxLineQuantity || qty > model.MaxLineQuantity-existing {
		return model.MaxLineQuantity
	}
	return existing + qty
}

func emptyCart(owner auth.CartOwner) *model.Cart {
	c := &model.Cart{Products: []model.CartItem{}}
	switch {
	case owner.IsUser():
		uid := owner.UserID
		c.UserID = &uid
	case owner.IsGuest():
		c.GuestID = owner.GuestID
	}
	c.Recalculate()
	return c
}
