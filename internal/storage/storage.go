// Package storage is the storefront's durable key-value layer: one
// JSON-serialized document per named key, synchronous reads and writes,
// self-healing on corrupt data.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
)

// ErrNotFound reports that no value has ever been stored under a key.
var ErrNotFound = errors.New("storage: key not found")

// KV is the raw blob store. Implementations must be safe for use from
// multiple goroutines.
type KV interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, raw []byte) error
	Remove(ctx context.Context, key string) error
}

// Storage keys. One canonical namespace; earlier builds of the storefront
// shipped a misspelled prefix, handled by MigrateLegacyKeys.
const (
	KeyMenu          = "saaraam_coffee_menu"
	KeyCart          = "saaraam_coffee_cart"
	KeySales         = "saaraam_coffee_sales"
	KeyProductImages = "saaraam_coffee_product_images"
	KeyBrandLogo     = "saaraam_coffee_brand_logo"
	KeyTestimonials  = "saaraam_coffee_testimonials"
)

// LoadJSON reads and decodes the value under key. A missing, unparsable, or
// shape-invalid value is replaced by def in storage and def is returned;
// corruption never propagates to the caller.
func LoadJSON[T any](ctx context.Context, kv KV, logger *slog.Logger, key string, def T, valid func(T) bool) T {
	raw, err := kv.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.Warn("storage read failed, falling back to default",
				"key", key,
				"error", err,
			)
		}
		SaveJSON(ctx, kv, logger, key, def)
		return def
	}

	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		logger.Warn("discarding corrupt stored value",
			"key", key,
			"error", err,
		)
		SaveJSON(ctx, kv, logger, key, def)
		return def
	}

	if valid != nil && !valid(value) {
		logger.Warn("discarding stored value with invalid shape", "key", key)
		SaveJSON(ctx, kv, logger, key, def)
		return def
	}

	return value
}

// SaveJSON serializes value under key. Writes are best effort: a failure is
// logged and the caller proceeds with its in-memory state, which may diverge
// from storage until a later write succeeds.
func SaveJSON(ctx context.Context, kv KV, logger *slog.Logger, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		logger.Warn("failed to serialize value for storage",
			"key", key,
			"error", err,
		)
		return
	}

	if err := kv.Save(ctx, key, raw); err != nil {
		logger.Warn("storage write failed, in-memory state is authoritative",
			"key", key,
			"error", err,
		)
	}
}

// MigrateLegacyKeys copies values stored under the misspelled
// "saaram_coffee_" prefix to their canonical keys, once, and removes the
// legacy entries. A canonical value that already exists always wins.
func MigrateLegacyKeys(ctx context.Context, kv KV, logger *slog.Logger) {
	const (
		legacyPrefix    = "saaram_coffee_"
		canonicalPrefix = "saaraam_coffee_"
	)

	canonical := []string{
		KeyMenu, KeyCart, KeySales,
		KeyProductImages, KeyBrandLogo, KeyTestimonials,
	}

	for _, key := range canonical {
		legacyKey := legacyPrefix + key[len(canonicalPrefix):]

		raw, err := kv.Load(ctx, legacyKey)
		if err != nil {
			continue
		}

		if _, err := kv.Load(ctx, key); errors.Is(err, ErrNotFound) {
			if err := kv.Save(ctx, key, raw); err != nil {
				logger.Warn("legacy key migration failed",
					"key", key,
					"legacy_key", legacyKey,
					"error", err,
				)
				continue
			}
			logger.Info("migrated legacy storage key",
				"key", key,
				"legacy_key", legacyKey,
			)
		}

		if err := kv.Remove(ctx, legacyKey); err != nil {
			logger.Warn("failed to remove legacy key", "legacy_key", legacyKey, "error", err)
		}
	}
}
