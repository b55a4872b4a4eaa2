package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNormalizeSize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"M", "m"},
		{"  xl ", "xl"},
		{"", DefaultSize},
		{"   ", DefaultSize},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeSize(tt.input))
		})
	}
}

func TestNormalizeColor(t *testing.T) {
	assert.Equal(t, Color{Name: "Red", Hex: "#ff0000"}, NormalizeColor(Color{Name: " Red ", Hex: "#ff0000"}))
	assert.Equal(t, Color{Name: DefaultColorName, Hex: DefaultColorHex}, NormalizeColor(Color{}))
	assert.Equal(t, Color{Name: "Blue", Hex: DefaultColorHex}, NormalizeColor(Color{Name: "Blue"}))
}

func TestCartItemMatches(t *testing.T) {
	pid := primitive.NewObjectID()
	item := CartItem{ProductID: pid, Size: "m", Color: Color{Name: "Red", Hex: "#ff0000"}}

	tests := []struct {
		name    string
		product primitive.ObjectID
		size    string
		color   Color
		want    bool
	}{
		{"same line", pid, "m", Color{Name: "Red", Hex: "#ff0000"}, true},
		{"case-insensitive color", pid, "m", Color{Name: "red", Hex: "#FF0000"}, true},
		{"same name other hex", pid, "m", Color{Name: "Red", Hex: "#aa0000"}, false},
		{"name only gets default hex", pid, "m", NormalizeColor(Color{Name: "Red"}), false},
		{"other size", pid, "l", Color{Name: "Red", Hex: "#ff0000"}, false},
		{"other color", pid, "m", Color{Name: "Blue", Hex: "#ff0000"}, false},
		{"other product", primitive.NewObjectID(), "m", Color{Name: "Red", Hex: "#ff0000"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, item.Matches(tt.product, tt.size, tt.color))
		})
	}

	legacy := CartItem{ProductID: pid, Size: "m", Color: Color{Name: " Red "}}
	assert.True(t, legacy.Matches(pid, "m", NormalizeColor(Color{Name: "red"})), "stored lines are normalized before comparing")
}

func TestCartRecalculate(t *testing.T) {
	cart := &Cart{Products: []CartItem{
		{Price: decimal.RequireFromString("0.10"), Quantity: 3},
		{Price: decimal.RequireFromString("19.99"), Quantity: 2},
	}}

	cart.Recalculate()

	assert.True(t, decimal.RequireFromString("40.28").Equal(cart.TotalPrice), cart.TotalPrice.String())

	cart.Products = nil
	cart.Recalculate()
	assert.True(t, cart.TotalPrice.IsZero())
}

func TestEffectivePrice(t *testing.T) {
	p := &Product{Price: decimal.RequireFromString("49.99"), Discount: decimal.NewFromInt(20)}
	assert.Equal(t, "39.99", p.EffectivePrice().StringFixed(2))

	p.Discount = decimal.Zero
	assert.True(t, p.Price.Equal(p.EffectivePrice()))
}
