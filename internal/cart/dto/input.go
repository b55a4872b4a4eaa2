package dto

import (
	"bytes"
	"encoding/json"

	"storefront-backend/internal/httpx"
	"storefront-backend/internal/model"
)

// ItemInput identifies a cart line by (product, size, color) and optionally carries a quantity.
type ItemInput struct {
	ProductID string     `json:"productId"`
	Size      string     `json:"size"`
	Color     ColorInput `json:"color"`
	Quantity  httpx.Int  `json:"quantity"`
	GuestID   string     `json:"guestId"`
}

type MergeInput struct {
	GuestID string `json:"guestId"`
}

// ColorInput accepts either a bare color name or a {name, hex} object.
type ColorInput model.Color

func (c *ColorInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = ColorInput{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*c = ColorInput{Name: name}
		return nil
	}
	var obj model.Color
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*c = ColorInput(obj)
	return nil
}

func (c ColorInput) Normalized() model.Color {
	return model.NormalizeColor(model.Color(c))
}
