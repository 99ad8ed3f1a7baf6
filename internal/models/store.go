package models

import "github.com/shopspring/decimal"

// Option is one purchasable weight variant of a catalog item.
type Option struct {
	Grams int             `json:"grams"`
	Price decimal.Decimal `json:"price"`
}

// CatalogItem is a roast on the menu. IDs are stable slugs that survive edits.
type CatalogItem struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Ratio       string   `json:"ratio"`
	Image       string   `json:"image"`
	Options     []Option `json:"options"`
}

// FindOption returns the variant matching grams, if the item still sells it.
func (c CatalogItem) FindOption(grams int) (Option, bool) {
	for _, opt := range c.Options {
		if opt.Grams == grams {
			return opt, true
		}
	}
	return Option{}, false
}

// CartLine references a catalog item variant by (itemId, grams). The cart
// holds at most one line per pair; quantity is always >= 1 while the line
// exists.
type CartLine struct {
	ItemID   string `json:"itemId"`
	Grams    int    `json:"grams"`
	Quantity int    `json:"quantity"`
}

// Totals is derived from the cart against the current catalog. It is never
// persisted on its own.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

// SaleLineSnapshot freezes one cart line at payment time. Name and unit price
// are copied out of the catalog so later menu edits cannot rewrite history.
type SaleLineSnapshot struct {
	ItemID    string          `json:"itemId"`
	Name      string          `json:"name"`
	Grams     int             `json:"grams"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// SaleRecord is one completed order. Records are append-only: created at
// payment confirmation, never mutated or deleted.
type SaleRecord struct {
	ID       string             `json:"id"`
	Date     string             `json:"date"`
	Subtotal decimal.Decimal    `json:"subtotal"`
	Shipping decimal.Decimal    `json:"shipping"`
	Total    decimal.Decimal    `json:"total"`
	Items    []SaleLineSnapshot `json:"items"`
}

// ItemSales accumulates quantity and revenue for one "name + grams" variant
// within a reporting month.
type ItemSales struct {
	Name     string          `json:"name"`
	Grams    int             `json:"grams"`
	Quantity int             `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// MonthlyAggregate is a derived report row, recomputed from the ledger on
// demand. Month keys are "YYYY-MM".
type MonthlyAggregate struct {
	Month     string          `json:"month"`
	Orders    int             `json:"orders"`
	Revenue   decimal.Decimal `json:"revenue"`
	TopSeller *ItemSales      `json:"topSeller,omitempty"`
}

// Testimonial is a customer note collected by the storefront.
type Testimonial struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Beverage string `json:"beverage"`
	Message  string `json:"message"`
	Date     string `json:"date"`
}
