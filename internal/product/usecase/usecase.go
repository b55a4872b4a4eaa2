package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"storefront-backend/internal/apperror"
	"storefront-backend/internal/model"
	"storefront-backend/internal/product"
	"storefront-backend/internal/product/dto"
)

var maxDiscount = decimal.NewFromInt(100)

type productUseCase struct {
	repo   product.Repository
	logger *zap.Logger
	now    func() time.Time
}

func NewProductUseCase(repo product.Repository, log *zap.Logger) product.UseCase {
	return &productUseCase{
		repo:   repo,
		logger: log,
		now:    time.Now,
	}
}

func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.Validation("name", "name is required")
	}
	sku := strings.TrimSpace(input.SKU)
	if sku == "" {
		return nil, apperror.Validation("sku", "sku is required")
	}
	if !input.Price.Valid {
		return nil, apperror.Validation("price", "price is required")
	}
	if err := validatePrice(input.Price.Decimal); err != nil {
		return nil, err
	}

	discount := decimal.Zero
	if input.Discount.Valid {
		discount = input.Discount.Decimal
		if err := validateDiscount(discount); err != nil {
			return nil, err
		}
	}

	stock := 0
	if input.Stock.Set {
		stock = input.Stock.Value
		if stock < 0 {
			return nil, apperror.Validation("stock", "stock cannot be negative")
		}
	}

	unique, err := uc.repo.IsSKUUnique(ctx, sku, primitive.NilObjectID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !unique {
		return nil, apperror.Conflict("SKU already exists")
	}

	now := uc.now()
	p := &model.Product{
		ID:          primitive.NewObjectID(),
		Name:        name,
		Description: input.Description,
		SKU:         sku,
		Category:    input.Category,
		Brand:       input.Brand,
		Price:       input.Price.Decimal,
		Discount:    discount,
		Stock:       stock,
		Sizes:       nonNil(input.Sizes),
		Colors:      normalizeColors(input.Colors),
		Images:      nonNilImages(input.Images),
		IsActive:    boolOr(input.IsActive, true),
		IsPublished: boolOr(input.IsPublished, false),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, apperror.Internal(err)
	}

	uc.logger.Info("product created", zap.String("product_id", p.ID.Hex()), zap.String("sku", p.SKU))
	return p, nil
}

func (uc *productUseCase) GetProduct(ctx context.Context, id primitive.ObjectID) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if p == nil {
		return nil, apperror.NotFound("product not found")
	}
	return p, nil
}

func (uc *productUseCase) ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	filters.Normalize()
	products, count, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return products, count, nil
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, id primitive.ObjectID, input *dto.UpdateProductInput) (*model.Product, error) {
	p, err := uc.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperror.Validation("name", "name cannot be empty")
		}
		p.Name = name
	}
	if input.SKU != nil {
		sku := strings.TrimSpace(*input.SKU)
		if sku == "" {
			return nil, apperror.Validation("sku", "sku cannot be empty")
		}
		if sku != p.SKU {
			unique, err := uc.repo.IsSKUUnique(ctx, sku, p.ID)
			if err != nil {
				return nil, apperror.Internal(err)
			}
			if !unique {
				return nil, apperror.Conflict("SKU already exists")
			}
		}
		p.SKU = sku
	}
	if input.Price.Valid {
		if err := validatePrice(input.Price.Decimal); err != nil {
			return nil, err
		}
		p.Price = input.Price.Decimal
	}
	if input.Discount.Valid {
		if err := validateDiscount(input.Discount.Decimal); err != nil {
			return nil, err
		}
		p.Discount = input.Discount.Decimal
	}
	if input.Stock.Set {
		if input.Stock.Value < 0 {
			return nil, apperror.Validation("stock", "stock cannot be negative")
		}
		p.Stock = input.Stock.Value
	}
	if input.Description != nil {
		p.Description = *input.Description
	}
	if input.Category != nil {
		p.Category = *input.Category
	}
	if input.Brand != nil {
		p.Brand = *input.Brand
	}
	if input.Sizes != nil {
		p.Sizes = input.Sizes
	}
	if input.Colors != nil {
		p.Colors = normalizeColors(input.Colors)
	}
	if input.Images != nil {
		p.Images = input.Images
	}
	if input.IsActive != nil {
		p.IsActive = *input.IsActive
	}
	if input.IsPublished != nil {
		p.IsPublished = *input.IsPublished
	}

	p.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, apperror.Internal(err)
	}
	return p, nil
}

// DeleteProduct removes the product. Orders keep their own snapshots, so references
// from historical orders do not block deletion.
func (uc *productUseCase) DeleteProduct(ctx context.Context, id primitive.ObjectID) error {
	if _, err := uc.GetProduct(ctx, id); err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return apperror.Internal(err)
	}
	uc.logger.Info("product deleted", zap.String("product_id", id.Hex()))
	return nil
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return apperror.Validation("price", "price cannot be negative")
	}
	return nil
}

func validateDiscount(d decimal.Decimal) error {
	if d.IsNegative() || d.GreaterThan(maxDiscount) {
		return apperror.Validation("discount", "discount must be between 0 and 100")
	}
	return nil
}

func normalizeColors(colors []model.Color) []model.Color {
	out := make([]model.Color, 0, len(colors))
	for _, c := range colors {
		out = append(out, model.NormalizeColor(c))
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilImages(s []model.Image) []model.Image {
	if s == nil {
		return []model.Image{}
	}
	return s
}

func boolOr(b *bool, fallback bool) bool {
	if b == nil {
		return fallback
	}
	return *b
}
