package model

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Color struct {
	Name string `bson:"name" json:"name"`
	Hex  string `bson:"hex" json:"hex"`
}

type Image struct {
	URL     string `bson:"url" json:"url"`
	AltText string `bson:"altText,omitempty" json:"altText,omitempty"`
}

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	SKU         string             `bson:"sku" json:"sku"`
	Category    string             `bson:"category,omitempty" json:"category,omitempty"`
	Brand       string             `bson:"brand,omitempty" json:"brand,omitempty"`
	Price       decimal.Decimal    `bson:"price" json:"price"`
	Discount    decimal.Decimal    `bson:"discount" json:"discount"` // percent, 0-100
	Stock       int                `bson:"stock" json:"stock"`
	Sizes       []string           `bson:"sizes" json:"sizes"`
	Colors      []Color            `bson:"colors" json:"colors"`
	Images      []Image            `bson:"images" json:"images"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
	IsPublished bool               `bson:"isPublished" json:"isPublished"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

var hundred = decimal.NewFromInt(100)

// EffectivePrice is the unit price after discount, rounded to cents.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.Discount.IsZero() {
		return p.Price
	}
	return p.Price.Mul(hundred.Sub(p.Discount)).Div(hundred).Round(2)
}

// PrimaryImage returns the first image URL or "".
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0].URL
}
