package services

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"saaraam-storefront/internal/errors"
	"saaraam-storefront/internal/models"
	"saaraam-storefront/internal/storage"
)

// Store is the storefront session: catalog, cart, ledger, testimonials and
// branding as one explicit object, so multiple independent stores can coexist
// in-process. All state lives here; nothing is package-level.
type Store struct {
	Catalog      *Catalog
	Cart         *Cart
	Ledger       *Ledger
	Testimonials *Testimonials
	Branding     *Branding

	shippingFee decimal.Decimal
	logger      *slog.Logger
}

// CartState is what every cart mutation returns: the new lines plus totals
// recomputed against the current catalog. The rendering collaborator redraws
// from this instead of reaching back into the store.
type CartState struct {
	Lines  []models.CartLine `json:"lines"`
	Totals models.Totals     `json:"totals"`
}

// NewStore loads every persisted collection and wires the services together.
// The collections live under independent keys, so the loads run concurrently.
func NewStore(ctx context.Context, kv storage.KV, logger *slog.Logger, shippingFee int64) (*Store, error) {
	storage.MigrateLegacyKeys(ctx, kv, logger)

	s := &Store{
		shippingFee: decimal.NewFromInt(shippingFee),
		logger:      logger,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { s.Catalog = NewCatalog(gctx, kv, logger); return nil })
	g.Go(func() error { s.Cart = NewCart(gctx, kv, logger); return nil })
	g.Go(func() error { s.Ledger = NewLedger(gctx, kv, logger); return nil })
	g.Go(func() error { s.Testimonials = NewTestimonials(gctx, kv, logger); return nil })
	g.Go(func() error { s.Branding = NewBranding(gctx, kv, logger); return nil })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Info("storefront state loaded",
		"menu_items", s.Catalog.Len(),
		"cart_lines", s.Cart.Len(),
		"sales", s.Ledger.Len(),
		"testimonials", s.Testimonials.Len(),
	)

	return s, nil
}

func (s *Store) ShippingFee() decimal.Decimal {
	return s.shippingFee
}

// CartState recomputes totals eagerly; there is no dirty flag anywhere.
func (s *Store) CartState() CartState {
	return s.stateFor(s.Cart.Lines())
}

// AddToCart requires the (itemId, grams) pair to resolve to a real catalog
// option before the cart is touched.
func (s *Store) AddToCart(ctx context.Context, itemID string, grams int) (CartState, error) {
	if _, _, ok := s.Catalog.ResolveOption(itemID, grams); !ok {
		return CartState{}, errors.NotFound("menu item or weight option not found")
	}

	lines := s.Cart.AddOrIncrement(ctx, itemID, grams)
	return s.stateFor(lines), nil
}

func (s *Store) ChangeQuantity(ctx context.Context, itemID string, grams, delta int) CartState {
	return s.stateFor(s.Cart.ChangeQuantity(ctx, itemID, grams, delta))
}

func (s *Store) RemoveLine(ctx context.Context, itemID string, grams int) CartState {
	return s.stateFor(s.Cart.RemoveLine(ctx, itemID, grams))
}

func (s *Store) ClearCart(ctx context.Context) CartState {
	return s.stateFor(s.Cart.Clear(ctx))
}

// PruneOrphans removes cart lines stranded by catalog edits. Exposed as an
// explicit operation; nothing calls it implicitly.
func (s *Store) PruneOrphans(ctx context.Context) (int, CartState) {
	removed := s.Cart.PruneOrphans(ctx, func(itemID string, grams int) bool {
		_, _, ok := s.Catalog.ResolveOption(itemID, grams)
		return ok
	})
	return removed, s.CartState()
}

// ConfirmPayment appends the sale to the ledger first and clears the cart
// second; the ledger snapshot needs the lines that clearing throws away.
func (s *Store) ConfirmPayment(ctx context.Context) (models.SaleRecord, CartState, error) {
	lines := s.Cart.Lines()
	totals := ComputeTotals(s.Catalog.List(), lines, s.shippingFee)

	record, err := s.Ledger.RecordSale(ctx, lines, s.Catalog, totals)
	if err != nil {
		return models.SaleRecord{}, s.stateFor(lines), err
	}

	return record, s.stateFor(s.Cart.Clear(ctx)), nil
}

// SaveMenuItem upserts a catalog item. Prices of lines already in the cart
// follow the catalog, so the caller should re-render the cart afterwards.
func (s *Store) SaveMenuItem(ctx context.Context, item models.CatalogItem) (models.CatalogItem, error) {
	return s.Catalog.Upsert(ctx, item)
}

// DeleteMenuItem removes the item and prunes every cart line referencing it,
// keeping the two independently-persisted collections in step.
func (s *Store) DeleteMenuItem(ctx context.Context, id string) (CartState, error) {
	if !s.Catalog.Delete(ctx, id) {
		return s.CartState(), errors.NotFound("menu item not found")
	}

	s.Branding.RemoveProductImage(ctx, id)
	return s.stateFor(s.Cart.DropItem(ctx, id)), nil
}

// MonthlyReport recomputes the report from the ledger on every call.
func (s *Store) MonthlyReport() []models.MonthlyAggregate {
	return BuildMonthlyReport(s.Ledger.All())
}

// Stats is a monitoring snapshot for the admin surface.
func (s *Store) Stats() map[string]any {
	return map[string]any{
		"menu_items":   s.Catalog.Len(),
		"cart_lines":   s.Cart.Len(),
		"sales":        s.Ledger.Len(),
		"testimonials": s.Testimonials.Len(),
		"shipping_fee": s.shippingFee,
	}
}

func (s *Store) stateFor(lines []models.CartLine) CartState {
	if lines == nil {
		lines = []models.CartLine{}
	}
	return CartState{
		Lines:  lines,
		Totals: ComputeTotals(s.Catalog.List(), lines, s.shippingFee),
	}
}
