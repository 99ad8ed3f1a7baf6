package services

import (
	"context"
	"log/slog"
	"maps"
	"strings"
	"sync"

	"saaraam-storefront/internal/errors"
	"saaraam-storefront/internal/storage"
)

// Branding holds the image-data overrides the shop owner can upload: one
// image per menu item plus a single brand logo. Both survive restarts under
// their own storage keys.
type Branding struct {
	mu     sync.RWMutex
	images map[string]string
	logo   string
	kv     storage.KV
	logger *slog.Logger
}

// BrandingState is the JSON view handed to the rendering collaborator.
type BrandingState struct {
	Logo   string            `json:"logo"`
	Images map[string]string `json:"images"`
}

func NewBranding(ctx context.Context, kv storage.KV, logger *slog.Logger) *Branding {
	images := storage.LoadJSON(ctx, kv, logger, storage.KeyProductImages, map[string]string{},
		func(m map[string]string) bool { return m != nil })
	logo := storage.LoadJSON(ctx, kv, logger, storage.KeyBrandLogo, "", nil)

	return &Branding{
		images: images,
		logo:   logo,
		kv:     kv,
		logger: logger,
	}
}

func (b *Branding) State() BrandingState {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return BrandingState{
		Logo:   b.logo,
		Images: maps.Clone(b.images),
	}
}

func (b *Branding) ProductImage(itemID string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, ok := b.images[itemID]
	return data, ok
}

func (b *Branding) SetProductImage(ctx context.Context, itemID, imageData string) error {
	if strings.TrimSpace(itemID) == "" {
		return errors.Validation("item identifier is required")
	}
	if imageData == "" {
		return errors.Validation("image data cannot be empty")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.images[itemID] = imageData
	storage.SaveJSON(ctx, b.kv, b.logger, storage.KeyProductImages, b.images)
	return nil
}

func (b *Branding) RemoveProductImage(ctx context.Context, itemID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.images[itemID]; !ok {
		return
	}
	delete(b.images, itemID)
	storage.SaveJSON(ctx, b.kv, b.logger, storage.KeyProductImages, b.images)
}

func (b *Branding) Logo() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.logo
}

func (b *Branding) SetLogo(ctx context.Context, imageData string) error {
	if imageData == "" {
		return errors.Validation("logo image data cannot be empty")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.logo = imageData
	storage.SaveJSON(ctx, b.kv, b.logger, storage.KeyBrandLogo, b.logo)
	return nil
}
