package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// CartLineItem is one product entry in a shopping cart.
type CartLineItem struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Category  string          `json:"category"`
	Quantity  int             `json:"quantity"`
}

// Subtotal is UnitPrice × Quantity, unrounded.
func (i CartLineItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// MarshalJSON keeps the scale of the price, so "100.00" is not shortened
// to "100" on the way to Redis and back.
func (i CartLineItem) MarshalJSON() ([]byte, error) {
	type plain CartLineItem
	return json.Marshal(struct {
		plain
		UnitPrice string `json:"price"`
	}{plain(i), scaled(i.UnitPrice)})
}

func scaled(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}
