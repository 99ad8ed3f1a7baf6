package services

import (
	"context"
	"log/slog"
	"testing"

	"saaraam-storefront/internal/storage"
)

func newTestCart(t *testing.T) (*Cart, *storage.MemoryKV) {
	t.Helper()
	kv := storage.NewMemoryKV()
	return NewCart(context.Background(), kv, slog.Default()), kv
}

func TestCart_RepeatedAddsMergeIntoOneLine(t *testing.T) {
	c, _ := newTestCart(t)
	ctx := context.Background()

	const adds = 5
	for range adds {
		c.AddOrIncrement(ctx, "evergreen", 125)
	}

	lines := c.Lines()
	if len(lines) != 1 {
		t.Fatalf("expected exactly one line after repeated adds, got %d", len(lines))
	}
	if lines[0].Quantity != adds {
		t.Errorf("expected quantity %d, got %d", adds, lines[0].Quantity)
	}
}

func TestCart_DifferentWeightsGetSeparateLines(t *testing.T) {
	c, _ := newTestCart(t)
	ctx := context.Background()

	c.AddOrIncrement(ctx, "evergreen", 125)
	c.AddOrIncrement(ctx, "evergreen", 250)

	if len(c.Lines()) != 2 {
		t.Errorf("expected 2 lines for 2 weights, got %d", len(c.Lines()))
	}
}

func TestCart_ChangeQuantity(t *testing.T) {
	tests := []struct {
		name      string
		delta     int
		wantLines int
		wantQty   int
	}{
		{"increment", 1, 1, 3},
		{"decrement", -1, 1, 1},
		{"drive to zero removes line", -2, 0, 0},
		{"drive below zero removes line", -10, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestCart(t)
			ctx := context.Background()

			c.AddOrIncrement(ctx, "evergreen", 125)
			c.AddOrIncrement(ctx, "evergreen", 125)

			lines := c.ChangeQuantity(ctx, "evergreen", 125, tt.delta)
			if len(lines) != tt.wantLines {
				t.Fatalf("expected %d lines, got %d", tt.wantLines, len(lines))
			}
			if tt.wantLines > 0 && lines[0].Quantity != tt.wantQty {
				t.Errorf("expected quantity %d, got %d", tt.wantQty, lines[0].Quantity)
			}

			// the invariant: no stored line ever has quantity <= 0
			for _, line := range c.Lines() {
				if line.Quantity <= 0 {
					t.Errorf("line %+v stored with non-positive quantity", line)
				}
			}
		})
	}
}

func TestCart_ChangeQuantityMissingLineIsNoOp(t *testing.T) {
	c, _ := newTestCart(t)
	ctx := context.Background()

	c.AddOrIncrement(ctx, "evergreen", 125)
	lines := c.ChangeQuantity(ctx, "no-such-item", 125, 1)

	if len(lines) != 1 || lines[0].ItemID != "evergreen" || lines[0].Quantity != 1 {
		t.Errorf("expected cart unchanged, got %+v", lines)
	}
}

func TestCart_RemoveLine(t *testing.T) {
	c, _ := newTestCart(t)
	ctx := context.Background()

	c.AddOrIncrement(ctx, "evergreen", 125)
	c.AddOrIncrement(ctx, "bold-beautiful", 250)

	lines := c.RemoveLine(ctx, "evergreen", 125)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line after removal, got %d", len(lines))
	}
	if lines[0].ItemID != "bold-beautiful" {
		t.Errorf("removed the wrong line: %+v", lines)
	}
}

func TestCart_Clear(t *testing.T) {
	c, _ := newTestCart(t)
	ctx := context.Background()

	c.AddOrIncrement(ctx, "evergreen", 125)
	c.AddOrIncrement(ctx, "specialty", 100)

	c.Clear(ctx)
	if c.Len() != 0 {
		t.Errorf("expected empty cart after Clear, got %d lines", c.Len())
	}
}

func TestCart_DropItemRemovesAllWeights(t *testing.T) {
	c, _ := newTestCart(t)
	ctx := context.Background()

	c.AddOrIncrement(ctx, "evergreen", 125)
	c.AddOrIncrement(ctx, "evergreen", 250)
	c.AddOrIncrement(ctx, "specialty", 100)

	lines := c.DropItem(ctx, "evergreen")
	if len(lines) != 1 || lines[0].ItemID != "specialty" {
		t.Errorf("expected only 'specialty' left, got %+v", lines)
	}
}

func TestCart_PruneOrphans(t *testing.T) {
	c, _ := newTestCart(t)
	ctx := context.Background()

	c.AddOrIncrement(ctx, "evergreen", 125)
	c.AddOrIncrement(ctx, "ghost", 125)
	c.AddOrIncrement(ctx, "evergreen", 999)

	removed := c.PruneOrphans(ctx, func(itemID string, grams int) bool {
		return itemID == "evergreen" && grams == 125
	})

	if removed != 2 {
		t.Errorf("expected 2 orphans pruned, got %d", removed)
	}
	if len(c.Lines()) != 1 {
		t.Errorf("expected 1 surviving line, got %d", len(c.Lines()))
	}
}

func TestCart_PersistsAcrossReload(t *testing.T) {
	kv := storage.NewMemoryKV()
	ctx := context.Background()

	c1 := NewCart(ctx, kv, slog.Default())
	c1.AddOrIncrement(ctx, "evergreen", 125)
	c1.AddOrIncrement(ctx, "evergreen", 125)

	c2 := NewCart(ctx, kv, slog.Default())
	lines := c2.Lines()
	if len(lines) != 1 || lines[0].Quantity != 2 {
		t.Errorf("expected persisted cart line with quantity 2, got %+v", lines)
	}
}

func TestNewCart_CorruptStorageFallsBackToEmpty(t *testing.T) {
	kv := storage.NewMemoryKV()
	ctx := context.Background()

	kv.Save(ctx, storage.KeyCart, []byte(`{"this is": "not a cart"}`))

	c := NewCart(ctx, kv, slog.Default())
	if c.Len() != 0 {
		t.Errorf("expected empty cart after corruption, got %d lines", c.Len())
	}
}
