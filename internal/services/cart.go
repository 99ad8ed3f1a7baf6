package services

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"saaraam-storefront/internal/models"
	"saaraam-storefront/internal/storage"
)

// Cart is the ordered list of lines waiting for checkout. It does pure line
// bookkeeping; resolving lines against the catalog is the Store's concern.
// Every mutation writes through to storage before returning.
type Cart struct {
	mu     sync.Mutex
	lines  []models.CartLine
	kv     storage.KV
	logger *slog.Logger
}

func NewCart(ctx context.Context, kv storage.KV, logger *slog.Logger) *Cart {
	lines := storage.LoadJSON(ctx, kv, logger, storage.KeyCart, []models.CartLine{}, nil)

	return &Cart{
		lines:  lines,
		kv:     kv,
		logger: logger,
	}
}

// AddOrIncrement merges a repeated (itemId, grams) add into the existing line
// rather than duplicating it; a new pair gets a fresh line with quantity 1.
func (c *Cart) AddOrIncrement(ctx context.Context, itemID string, grams int) []models.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(itemID, grams); i >= 0 {
		c.lines[i].Quantity++
	} else {
		c.lines = append(c.lines, models.CartLine{ItemID: itemID, Grams: grams, Quantity: 1})
	}

	c.persist(ctx)
	return slices.Clone(c.lines)
}

// ChangeQuantity adds delta to the matching line. A resulting quantity of
// zero or below deletes the line outright; it is never stored clamped.
// Missing lines are a no-op.
func (c *Cart) ChangeQuantity(ctx context.Context, itemID string, grams, delta int) []models.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(itemID, grams)
	if i < 0 {
		return slices.Clone(c.lines)
	}

	c.lines[i].Quantity += delta
	if c.lines[i].Quantity <= 0 {
		c.lines = slices.Delete(c.lines, i, i+1)
	}

	c.persist(ctx)
	return slices.Clone(c.lines)
}

func (c *Cart) RemoveLine(ctx context.Context, itemID string, grams int) []models.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(itemID, grams); i >= 0 {
		c.lines = slices.Delete(c.lines, i, i+1)
		c.persist(ctx)
	}
	return slices.Clone(c.lines)
}

func (c *Cart) Clear(ctx context.Context) []models.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lines = c.lines[:0]
	c.persist(ctx)
	return nil
}

// DropItem removes every line referencing itemID, whatever the weight. Called
// when a menu item is deleted so cart and catalog do not desync.
func (c *Cart) DropItem(ctx context.Context, itemID string) []models.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()

	before := len(c.lines)
	c.lines = slices.DeleteFunc(c.lines, func(line models.CartLine) bool {
		return line.ItemID == itemID
	})

	if len(c.lines) != before {
		c.persist(ctx)
	}
	return slices.Clone(c.lines)
}

// PruneOrphans deletes lines whose (itemId, grams) pair no longer resolves.
// Orphans are otherwise kept in storage and merely zero-valued by pricing, so
// this is an explicit maintenance operation, not an automatic cascade.
func (c *Cart) PruneOrphans(ctx context.Context, resolves func(itemID string, grams int) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	before := len(c.lines)
	c.lines = slices.DeleteFunc(c.lines, func(line models.CartLine) bool {
		return !resolves(line.ItemID, line.Grams)
	})

	removed := before - len(c.lines)
	if removed > 0 {
		c.persist(ctx)
	}
	return removed
}

func (c *Cart) Lines() []models.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.lines)
}

func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

// indexOf assumes c.mu is held.
func (c *Cart) indexOf(itemID string, grams int) int {
	for i, line := range c.lines {
		if line.ItemID == itemID && line.Grams == grams {
			return i
		}
	}
	return -1
}

// persist assumes c.mu is held. Write failures are logged inside SaveJSON and
// the in-memory cart stays authoritative.
func (c *Cart) persist(ctx context.Context) {
	storage.SaveJSON(ctx, c.kv, c.logger, storage.KeyCart, c.lines)
}
