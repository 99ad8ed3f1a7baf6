package services

import (
	"fmt"
	"slices"
	"strings"

	"saaraam-storefront/internal/models"
)

// BuildMonthlyReport groups sale records by calendar month and aggregates
// order count, revenue, and the best-selling variant per month. It is
// stateless: callers hand it the ledger contents and get derived rows back,
// newest month first. An empty ledger yields an empty report, which callers
// should present as "no orders yet" rather than a zero-revenue month.
func BuildMonthlyReport(sales []models.SaleRecord) []models.MonthlyAggregate {
	type monthBucket struct {
		agg   models.MonthlyAggregate
		items map[string]*models.ItemSales
		// first-encountered order; keeps top-seller ties stable
		order []string
	}

	buckets := make(map[string]*monthBucket)

	for _, sale := range sales {
		if len(sale.Date) < 7 {
			continue
		}
		// ISO-8601 timestamps make "YYYY-MM" a plain prefix
		month := sale.Date[:7]

		b := buckets[month]
		if b == nil {
			b = &monthBucket{
				agg:   models.MonthlyAggregate{Month: month},
				items: make(map[string]*models.ItemSales),
			}
			buckets[month] = b
		}

		b.agg.Orders++
		b.agg.Revenue = b.agg.Revenue.Add(sale.Total)

		for _, item := range sale.Items {
			key := fmt.Sprintf("%s %dg", item.Name, item.Grams)
			entry := b.items[key]
			if entry == nil {
				entry = &models.ItemSales{Name: item.Name, Grams: item.Grams}
				b.items[key] = entry
				b.order = append(b.order, key)
			}
			entry.Quantity += item.Quantity
			entry.Revenue = entry.Revenue.Add(item.LineTotal)
		}
	}

	months := make([]models.MonthlyAggregate, 0, len(buckets))
	for _, b := range buckets {
		var top *models.ItemSales
		for _, key := range b.order {
			entry := b.items[key]
			if top == nil || entry.Quantity > top.Quantity {
				top = entry
			}
		}
		if top != nil {
			snapshot := *top
			b.agg.TopSeller = &snapshot
		}
		months = append(months, b.agg)
	}

	// lexicographic descending on "YYYY-MM" is chronological descending
	slices.SortFunc(months, func(a, b models.MonthlyAggregate) int {
		return strings.Compare(b.Month, a.Month)
	})

	return months
}
