package services

import (
	"github.com/shopspring/decimal"

	"saaraam-storefront/internal/models"
)

// ComputeTotals prices a cart against the current catalog. It is a pure
// function over its inputs: no persistence, no side effects.
//
// Lines whose (itemId, grams) pair no longer resolves contribute zero to the
// subtotal. Shipping is the flat fee, charged once for any non-empty cart
// regardless of line count or subtotal; there is no free-shipping threshold.
func ComputeTotals(items []models.CatalogItem, lines []models.CartLine, shippingFee decimal.Decimal) models.Totals {
	subtotal := decimal.Zero

	for _, line := range lines {
		opt, ok := findOption(items, line.ItemID, line.Grams)
		if !ok {
			continue
		}
		subtotal = subtotal.Add(opt.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	shipping := decimal.Zero
	if len(lines) > 0 {
		shipping = shippingFee
	}

	return models.Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Total:    subtotal.Add(shipping),
	}
}

func findOption(items []models.CatalogItem, itemID string, grams int) (models.Option, bool) {
	for _, item := range items {
		if item.ID != itemID {
			continue
		}
		return item.FindOption(grams)
	}
	return models.Option{}, false
}
