package pricing

import (
	"github.com/shopspring/decimal"
)

// LineItem is the slice of a cart row the calculator cares about.
type LineItem struct {
	Price    float64
	Quantity uint
}

type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Shipping float64 `json:"shipping"`
	Total    float64 `json:"total"`
}

// ComputeTotals derives subtotal, tax and total for a cart. Shipping is a
// flat fee charged regardless of cart size, including on an empty cart.
// Arithmetic runs on decimals and is rounded to cents only at the edge.
func ComputeTotals(items []LineItem, taxRate, shippingCost float64) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		price := decimal.NewFromFloat(it.Price)
		qty := decimal.NewFromInt(int64(it.Quantity))
		subtotal = subtotal.Add(price.Mul(qty))
	}

	tax := subtotal.Mul(decimal.NewFromFloat(taxRate))
	shipping := decimal.NewFromFloat(shippingCost)
	total := subtotal.Add(tax).Add(shipping)

	return Totals{
		Subtotal: round2(subtotal),
		Tax:      round2(tax),
		Shipping: round2(shipping),
		Total:    round2(total),
	}
}

func round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
