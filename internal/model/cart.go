package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultSize      = "default"
	DefaultColorName = "Default"
	DefaultColorHex  = "#ccc"

	// MaxLineQuantity caps the quantity of a single cart or order line.
	MaxLineQuantity = 1000
)

type CartItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Image     string             `bson:"image" json:"image"`
	Price     decimal.Decimal    `bson:"price" json:"price"`
	Size      string             `bson:"size" json:"size"`
	Color     Color              `bson:"color" json:"color"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

// Matches reports whether the item is the line identified by (productID, size, color).
// size and color must already be normalized.
func (i CartItem) Matches(productID primitive.ObjectID, size string, color Color) bool {
	return i.ProductID == productID &&
		NormalizeSize(i.Size) == size &&
		sameColor(NormalizeColor(i.Color), color)
}

func sameColor(a, b Color) bool {
	return strings.EqualFold(a.Name, b.Name) && strings.EqualFold(a.Hex, b.Hex)
}

// Cart belongs to exactly one of a user or a guest.
type Cart struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	UserID     *primitive.ObjectID `bson:"user,omitempty" json:"user,omitempty"`
	GuestID    string              `bson:"guestId,omitempty" json:"guestId,omitempty"`
	Products   []CartItem          `bson:"products" json:"products"`
	TotalPrice decimal.Decimal     `bson:"totalPrice" json:"totalPrice"`
	CreatedAt  time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// Recalculate sets TotalPrice to the sum of price x quantity over all lines.
func (c *Cart) Recalculate() {
	total := decimal.Zero
	for _, item := range c.Products {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	c.TotalPrice = total
}

// IndexOf returns the position of the matching line or -1.
func (c *Cart) IndexOf(productID primitive.ObjectID, size string, color Color) int {
	for i, item := range c.Products {
		if item.Matches(productID, size, color) {
			return i
		}
	}
	return -1
}

func (c *Cart) IsEmpty() bool {
	return len(c.Products) == 0
}

func NormalizeSize(size string) string {
	s := strings.ToLower(strings.TrimSpace(size))
	if s == "" {
		return DefaultSize
	}
	return s
}

func NormalizeColor(c Color) Color {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		name = DefaultColorName
	}
	hex := strings.TrimSpace(c.Hex)
	if hex == "" {
		hex = DefaultColorHex
	}
	return Color{Name: name, Hex: hex}
}
