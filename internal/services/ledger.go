package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"saaraam-storefront/internal/errors"
	"saaraam-storefront/internal/models"
	"saaraam-storefront/internal/storage"
)

// unknownItemName labels sale lines whose menu item vanished between add and
// checkout. Selling at price zero is the documented fallback, not an error.
const unknownItemName = "Unknown Item"

// Ledger is the append-only log of completed orders. Records are immutable
// snapshots: later catalog edits cannot change what was sold or for how much.
type Ledger struct {
	mu     sync.Mutex
	sales  []models.SaleRecord
	kv     storage.KV
	logger *slog.Logger
}

func NewLedger(ctx context.Context, kv storage.KV, logger *slog.Logger) *Ledger {
	sales := storage.LoadJSON(ctx, kv, logger, storage.KeySales, []models.SaleRecord{}, nil)

	return &Ledger{
		sales:  sales,
		kv:     kv,
		logger: logger,
	}
}

// RecordSale snapshots the cart against the catalog as it stands right now
// and appends the resulting record. An empty cart is rejected without any
// write. The caller clears the cart afterwards, never before: clearing first
// would discard the data the snapshot is built from.
func (l *Ledger) RecordSale(ctx context.Context, lines []models.CartLine, catalog *Catalog, totals models.Totals) (models.SaleRecord, error) {
	if len(lines) == 0 {
		return models.SaleRecord{}, errors.EmptyCart("cannot record a sale for an empty cart")
	}

	items := make([]models.SaleLineSnapshot, 0, len(lines))
	for _, line := range lines {
		name := unknownItemName
		price := decimal.Zero

		if item, ok := catalog.FindByID(line.ItemID); ok {
			name = item.Name
			if opt, ok := item.FindOption(line.Grams); ok {
				price = opt.Price
			}
		}

		items = append(items, models.SaleLineSnapshot{
			ItemID:    line.ItemID,
			Name:      name,
			Grams:     line.Grams,
			Quantity:  line.Quantity,
			UnitPrice: price,
			LineTotal: price.Mul(decimal.NewFromInt(int64(line.Quantity))),
		})
	}

	record := models.SaleRecord{
		ID:       "sale-" + uuid.NewString(),
		Date:     time.Now().UTC().Format(time.RFC3339),
		Subtotal: totals.Subtotal,
		Shipping: totals.Shipping,
		Total:    totals.Total,
		Items:    items,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sales = append(l.sales, record)
	storage.SaveJSON(ctx, l.kv, l.logger, storage.KeySales, l.sales)

	l.logger.Info("sale recorded",
		"sale_id", record.ID,
		"lines", len(record.Items),
		"total", record.Total,
	)

	return record, nil
}

// All returns a copy of the ledger, oldest sale first.
func (l *Ledger) All() []models.SaleRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]models.SaleRecord, len(l.sales))
	copy(out, l.sales)
	return out
}

func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.sales)
}
