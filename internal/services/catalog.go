package services

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"saaraam-storefront/internal/errors"
	"saaraam-storefront/internal/models"
	"saaraam-storefront/internal/storage"

	"github.com/shopspring/decimal"
)

// DefaultMenu returns the built-in roast catalog used to seed storage on
// first run. Callers get a fresh copy every time.
func DefaultMenu() []models.CatalogItem {
	price := func(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

	return []models.CatalogItem{
		{
			ID:          "bold-beautiful",
			Name:        "Saaraam's Bold & Beautiful",
			Description: "Bold 80:20 blend balanced with chicory for a creamy filter experience.",
			Ratio:       "80:20 blend",
			Image:       "assets/bold-beautiful.svg",
			Options: []models.Option{
				{Grams: 125, Price: price(125)},
				{Grams: 250, Price: price(250)},
			},
		},
		{
			ID:          "noon-special",
			Name:        "Saaraam's Noon Special",
			Description: "Comforting 70:30 blend, perfect for noon pick-me-ups or iced coffee.",
			Ratio:       "70:30 blend",
			Image:       "assets/noon-special.svg",
			Options: []models.Option{
				{Grams: 125, Price: price(125)},
				{Grams: 250, Price: price(250)},
			},
		},
		{
			ID:          "evergreen",
			Name:        "Saaraam's Evergreen",
			Description: "100% arabica beans delivering a smooth, well-rounded cup every brew.",
			Ratio:       "100% coffee",
			Image:       "assets/evergreen.svg",
			Options: []models.Option{
				{Grams: 125, Price: price(160)},
				{Grams: 250, Price: price(320)},
			},
		},
		{
			ID:          "specialty",
			Name:        "Saaraam Specialty Reserve",
			Description: "Custom-roasted micro lot beans. Roast-to-order in tiny batches for you.",
			Ratio:       "Custom roast",
			Image:       "assets/specialty.svg",
			Options: []models.Option{
				{Grams: 100, Price: price(350)},
				{Grams: 200, Price: price(700)},
			},
		},
	}
}

// Catalog owns the purchasable roast items. The in-memory slice is
// authoritative for the session; every mutation is written through to storage.
type Catalog struct {
	mu     sync.RWMutex
	items  []models.CatalogItem
	kv     storage.KV
	logger *slog.Logger
}

func NewCatalog(ctx context.Context, kv storage.KV, logger *slog.Logger) *Catalog {
	items := storage.LoadJSON(ctx, kv, logger, storage.KeyMenu, DefaultMenu(),
		func(items []models.CatalogItem) bool { return len(items) > 0 })

	return &Catalog{
		items:  items,
		kv:     kv,
		logger: logger,
	}
}

func (c *Catalog) List() []models.CatalogItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copyItems(c.items)
}

func (c *Catalog) FindByID(id string) (models.CatalogItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, item := range c.items {
		if item.ID == id {
			return copyItem(item), true
		}
	}
	return models.CatalogItem{}, false
}

// ResolveOption looks up the (itemId, grams) pair that cart lines and sale
// snapshots reference.
func (c *Catalog) ResolveOption(itemID string, grams int) (models.CatalogItem, models.Option, bool) {
	item, ok := c.FindByID(itemID)
	if !ok {
		return models.CatalogItem{}, models.Option{}, false
	}

	opt, ok := item.FindOption(grams)
	if !ok {
		return models.CatalogItem{}, models.Option{}, false
	}
	return item, opt, true
}

// Upsert validates item, derives an identifier when none is given, re-sorts
// the weight options ascending, and replaces or appends by identifier match.
// On validation failure the catalog is left untouched.
func (c *Catalog) Upsert(ctx context.Context, item models.CatalogItem) (models.CatalogItem, error) {
	item.Name = strings.TrimSpace(item.Name)
	item.Description = strings.TrimSpace(item.Description)
	item.Ratio = strings.TrimSpace(item.Ratio)
	item.Image = strings.TrimSpace(item.Image)
	item.ID = strings.TrimSpace(item.ID)

	if err := validateItem(item); err != nil {
		return models.CatalogItem{}, err
	}

	if item.ID == "" {
		item.ID = Slugify(item.Name)
	}

	slices.SortFunc(item.Options, func(a, b models.Option) int {
		return a.Grams - b.Grams
	})

	c.mu.Lock()
	defer c.mu.Unlock()

	replaced := false
	for i := range c.items {
		if c.items[i].ID == item.ID {
			c.items[i] = item
			replaced = true
			break
		}
	}
	if !replaced {
		c.items = append(c.items, item)
	}

	storage.SaveJSON(ctx, c.kv, c.logger, storage.KeyMenu, c.items)
	return copyItem(item), nil
}

// Delete removes the item by identifier and reports whether anything was
// removed. Pruning cart lines that referenced the item is the caller's job:
// catalog and cart are persisted independently and must not silently desync.
func (c *Catalog) Delete(ctx context.Context, id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	before := len(c.items)
	c.items = slices.DeleteFunc(c.items, func(item models.CatalogItem) bool {
		return item.ID == id
	})

	if len(c.items) == before {
		return false
	}

	storage.SaveJSON(ctx, c.kv, c.logger, storage.KeyMenu, c.items)
	return true
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func validateItem(item models.CatalogItem) error {
	if item.Name == "" || item.Description == "" || item.Ratio == "" || item.Image == "" {
		return errors.Validation("name, description, ratio and image are all required")
	}

	if len(item.Options) == 0 {
		return errors.Validation("at least one weight/price option is required")
	}

	primary := item.Options[0]
	if primary.Grams <= 0 || !primary.Price.IsPositive() {
		return errors.Validation("the primary weight and price must both be positive")
	}

	for _, opt := range item.Options {
		if opt.Grams <= 0 {
			return errors.Validation(fmt.Sprintf("weight must be positive, got %d", opt.Grams))
		}
		if opt.Price.IsNegative() {
			return errors.Validation(fmt.Sprintf("price cannot be negative for %dg", opt.Grams))
		}
	}

	return nil
}

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a stable identifier from a display name: lower-case, runs
// of non-alphanumerics collapsed to single hyphens, leading and trailing
// hyphens trimmed. An empty result falls back to a time-based identifier.
func Slugify(name string) string {
	slug := nonAlphanumeric.ReplaceAllString(strings.ToLower(name), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return fmt.Sprintf("item-%d", time.Now().UnixMilli())
	}
	return slug
}

func copyItems(items []models.CatalogItem) []models.CatalogItem {
	out := make([]models.CatalogItem, len(items))
	for i, item := range items {
		out[i] = copyItem(item)
	}
	return out
}

func copyItem(item models.CatalogItem) models.CatalogItem {
	item.Options = slices.Clone(item.Options)
	return item
}
