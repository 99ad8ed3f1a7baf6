package services

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"saaraam-storefront/internal/errors"
	"saaraam-storefront/internal/models"
	"saaraam-storefront/internal/storage"
)

// Testimonials collects customer notes shown on the storefront.
type Testimonials struct {
	mu      sync.Mutex
	entries []models.Testimonial
	kv      storage.KV
	logger  *slog.Logger
}

func NewTestimonials(ctx context.Context, kv storage.KV, logger *slog.Logger) *Testimonials {
	entries := storage.LoadJSON(ctx, kv, logger, storage.KeyTestimonials, []models.Testimonial{}, nil)

	return &Testimonials{
		entries: entries,
		kv:      kv,
		logger:  logger,
	}
}

func (t *Testimonials) List() []models.Testimonial {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]models.Testimonial, len(t.entries))
	copy(out, t.entries)
	return out
}

// Add validates and appends a testimonial. All three text fields are
// required; rejection happens before any write.
func (t *Testimonials) Add(ctx context.Context, name, beverage, message string) (models.Testimonial, error) {
	name = strings.TrimSpace(name)
	beverage = strings.TrimSpace(beverage)
	message = strings.TrimSpace(message)

	if name == "" || beverage == "" || message == "" {
		return models.Testimonial{}, errors.Validation("name, beverage and message are all required")
	}

	entry := models.Testimonial{
		ID:       uuid.NewString(),
		Name:     name,
		Beverage: beverage,
		Message:  message,
		Date:     time.Now().UTC().Format(time.RFC3339),
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries = append(t.entries, entry)
	storage.SaveJSON(ctx, t.kv, t.logger, storage.KeyTestimonials, t.entries)

	return entry, nil
}

func (t *Testimonials) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
