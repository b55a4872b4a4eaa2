package dto

import (
	"github.com/shopspring/decimal"

	"storefront-backend/internal/httpx"
	"storefront-backend/internal/model"
)

// Numeric fields accept JSON numbers or numeric strings.
type CreateProductInput struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	SKU         string              `json:"sku"`
	Category    string              `json:"category"`
	Brand       string              `json:"brand"`
	Price       decimal.NullDecimal `json:"price"`
	Discount    decimal.NullDecimal `json:"discount"`
	Stock       httpx.Int           `json:"stock"`
	Sizes       []string            `json:"sizes"`
	Colors      []model.Color       `json:"colors"`
	Images      []model.Image       `json:"images"`
	IsActive    *bool               `json:"isActive"`
	IsPublished *bool               `json:"isPublished"`
}

// UpdateProductInput applies only the fields that are present.
type UpdateProductInput struct {
	Name        *string             `json:"name"`
	Description *string             `json:"description"`
	SKU         *string             `json:"sku"`
	Category    *string             `json:"category"`
	Brand       *string             `json:"brand"`
	Price       decimal.NullDecimal `json:"price"`
	Discount    decimal.NullDecimal `json:"discount"`
	Stock       httpx.Int           `json:"stock"`
	Sizes       []string            `json:"sizes"`
	Colors      []model.Color       `json:"colors"`
	Images      []model.Image       `json:"images"`
	IsActive    *bool               `json:"isActive"`
	IsPublished *bool               `json:"isPublished"`
}
