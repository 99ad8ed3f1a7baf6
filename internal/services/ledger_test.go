package services

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"saaraam-storefront/internal/models"
	"saaraam-storefront/internal/storage"
)

func newTestLedger(t *testing.T) (*Ledger, *Catalog, *storage.MemoryKV) {
	t.Helper()
	kv := storage.NewMemoryKV()
	ctx := context.Background()
	return NewLedger(ctx, kv, slog.Default()), NewCatalog(ctx, kv, slog.Default()), kv
}

func TestLedger_RecordSaleEmptyCartFails(t *testing.T) {
	l, catalog, _ := newTestLedger(t)

	_, err := l.RecordSale(context.Background(), nil, catalog, models.Totals{})
	if err == nil {
		t.Fatal("expected error for empty cart")
	}
	if l.Len() != 0 {
		t.Errorf("failed RecordSale must not append, ledger has %d records", l.Len())
	}
}

func TestLedger_RecordSaleSnapshotsWorkedExample(t *testing.T) {
	l, catalog, _ := newTestLedger(t)
	ctx := context.Background()

	lines := []models.CartLine{
		{ItemID: "evergreen", Grams: 125, Quantity: 2},
		{ItemID: "bold-beautiful", Grams: 250, Quantity: 1},
	}
	totals := ComputeTotals(catalog.List(), lines, testShippingFee)

	record, err := l.RecordSale(ctx, lines, catalog, totals)
	if err != nil {
		t.Fatalf("RecordSale failed: %v", err)
	}

	assertDecimal(t, "subtotal", record.Subtotal, 570)
	assertDecimal(t, "shipping", record.Shipping, 50)
	assertDecimal(t, "total", record.Total, 620)

	if len(record.Items) != 2 {
		t.Fatalf("expected 2 snapshot lines, got %d", len(record.Items))
	}

	first := record.Items[0]
	if first.Name != "Saaraam's Evergreen" {
		t.Errorf("expected resolved name, got %q", first.Name)
	}
	assertDecimal(t, "first unitPrice", first.UnitPrice, 160)
	assertDecimal(t, "first lineTotal", first.LineTotal, 320)

	second := record.Items[1]
	assertDecimal(t, "second unitPrice", second.UnitPrice, 250)
	assertDecimal(t, "second lineTotal", second.LineTotal, 250)

	if !strings.HasPrefix(record.ID, "sale-") {
		t.Errorf("expected sale identifier prefix, got %q", record.ID)
	}
	if _, err := time.Parse(time.RFC3339, record.Date); err != nil {
		t.Errorf("expected RFC3339 timestamp, got %q: %v", record.Date, err)
	}
}

func TestLedger_RecordSaleUnknownItemDefaults(t *testing.T) {
	l, catalog, _ := newTestLedger(t)
	ctx := context.Background()

	lines := []models.CartLine{
		{ItemID: "vanished", Grams: 125, Quantity: 3},
		{ItemID: "evergreen", Grams: 999, Quantity: 1}, // item exists, option gone
	}
	totals := ComputeTotals(catalog.List(), lines, testShippingFee)

	record, err := l.RecordSale(ctx, lines, catalog, totals)
	if err != nil {
		t.Fatalf("RecordSale failed: %v", err)
	}

	gone := record.Items[0]
	if gone.Name != "Unknown Item" {
		t.Errorf("expected 'Unknown Item' for deleted item, got %q", gone.Name)
	}
	assertDecimal(t, "gone unitPrice", gone.UnitPrice, 0)
	assertDecimal(t, "gone lineTotal", gone.LineTotal, 0)
	if gone.Quantity != 3 {
		t.Errorf("quantity must still be recorded, got %d", gone.Quantity)
	}

	// option gone but item present: current name, zero price
	stale := record.Items[1]
	if stale.Name != "Saaraam's Evergreen" {
		t.Errorf("expected current item name, got %q", stale.Name)
	}
	assertDecimal(t, "stale unitPrice", stale.UnitPrice, 0)
}

func TestLedger_SnapshotsSurviveCatalogEdits(t *testing.T) {
	l, catalog, _ := newTestLedger(t)
	ctx := context.Background()

	lines := []models.CartLine{{ItemID: "evergreen", Grams: 125, Quantity: 1}}
	totals := ComputeTotals(catalog.List(), lines, testShippingFee)

	record, err := l.RecordSale(ctx, lines, catalog, totals)
	if err != nil {
		t.Fatalf("RecordSale failed: %v", err)
	}

	catalog.Delete(ctx, "evergreen")

	stored := l.All()[0]
	if stored.Items[0].Name != record.Items[0].Name {
		t.Error("snapshot name changed after catalog delete")
	}
	if !stored.Items[0].UnitPrice.Equal(decimal.NewFromInt(160)) {
		t.Errorf("snapshot price changed after catalog delete: %s", stored.Items[0].UnitPrice)
	}
}

func TestLedger_PersistsAcrossReload(t *testing.T) {
	kv := storage.NewMemoryKV()
	ctx := context.Background()
	logger := slog.Default()

	l1 := NewLedger(ctx, kv, logger)
	catalog := NewCatalog(ctx, kv, logger)

	lines := []models.CartLine{{ItemID: "evergreen", Grams: 125, Quantity: 2}}
	totals := ComputeTotals(catalog.List(), lines, testShippingFee)
	if _, err := l1.RecordSale(ctx, lines, catalog, totals); err != nil {
		t.Fatalf("RecordSale failed: %v", err)
	}

	l2 := NewLedger(ctx, kv, logger)
	if l2.Len() != 1 {
		t.Fatalf("expected 1 persisted sale, got %d", l2.Len())
	}
	assertDecimal(t, "reloaded total", l2.All()[0].Total, 370)
}
