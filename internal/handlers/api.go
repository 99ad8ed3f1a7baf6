package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"saaraam-storefront/internal/errors"
	"saaraam-storefront/internal/models"
	"saaraam-storefront/internal/observability"
	"saaraam-storefront/internal/services"
)

// APIHandlers is the JSON surface the rendering layer calls. Handlers never
// touch presentation; they return the updated state and let the caller
// re-render from it.
type APIHandlers struct {
	store  *services.Store
	logger *slog.Logger
}

func NewAPIHandlers(store *services.Store, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		store:  store,
		logger: logger,
	}
}

type cartLineRequest struct {
	ItemID string `json:"itemId"`
	Grams  int    `json:"grams"`
	Delta  int    `json:"delta,omitempty"`
}

type testimonialRequest struct {
	Name     string `json:"name"`
	Beverage string `json:"beverage"`
	Message  string `json:"message"`
}

type imageRequest struct {
	Image string `json:"image"`
}

type checkoutResponse struct {
	Sale models.SaleRecord  `json:"sale"`
	Cart services.CartState `json:"cart"`
}

type reportResponse struct {
	Months []models.MonthlyAggregate `json:"months"`
	// Empty distinguishes "no orders yet" from months that sum to zero.
	Empty bool `json:"empty"`
}

type pruneResponse struct {
	Removed int                `json:"removed"`
	Cart    services.CartState `json:"cart"`
}

func (h *APIHandlers) HandleMenu(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.store.Catalog.List())
}

func (h *APIHandlers) HandleSaveMenuItem(w http.ResponseWriter, r *http.Request) {
	var item models.CatalogItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		h.writeError(w, r, errors.BadRequestWrap(err, "invalid menu item payload"))
		return
	}

	saved, err := h.store.SaveMenuItem(r.Context(), item)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	errors.WriteSuccess(w, saved)
}

func (h *APIHandlers) HandleDeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	cart, err := h.store.DeleteMenuItem(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	errors.WriteSuccess(w, cart)
}

func (h *APIHandlers) HandleCart(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.store.CartState())
}

func (h *APIHandlers) HandleAddToCart(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeCartLine(w, r)
	if !ok {
		return
	}

	cart, err := h.store.AddToCart(r.Context(), req.ItemID, req.Grams)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	errors.WriteSuccess(w, cart)
}

func (h *APIHandlers) HandleChangeQuantity(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeCartLine(w, r)
	if !ok {
		return
	}
	if req.Delta == 0 {
		h.writeError(w, r, errors.BadRequest("delta must be non-zero"))
		return
	}

	errors.WriteSuccess(w, h.store.ChangeQuantity(r.Context(), req.ItemID, req.Grams, req.Delta))
}

func (h *APIHandlers) HandleRemoveLine(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeCartLine(w, r)
	if !ok {
		return
	}

	errors.WriteSuccess(w, h.store.RemoveLine(r.Context(), req.ItemID, req.Grams))
}

func (h *APIHandlers) HandleClearCart(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.store.ClearCart(r.Context()))
}

func (h *APIHandlers) HandlePruneOrphans(w http.ResponseWriter, r *http.Request) {
	removed, cart := h.store.PruneOrphans(r.Context())
	errors.WriteSuccess(w, pruneResponse{Removed: removed, Cart: cart})
}

func (h *APIHandlers) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	sale, cart, err := h.store.ConfirmPayment(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	errors.WriteCreated(w, checkoutResponse{Sale: sale, Cart: cart})
}

func (h *APIHandlers) HandleReport(w http.ResponseWriter, r *http.Request) {
	months := h.store.MonthlyReport()
	errors.WriteSuccess(w, reportResponse{Months: months, Empty: len(months) == 0})
}

func (h *APIHandlers) HandleTestimonials(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.store.Testimonials.List())
}

func (h *APIHandlers) HandleAddTestimonial(w http.ResponseWriter, r *http.Request) {
	var req testimonialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, errors.BadRequestWrap(err, "invalid testimonial payload"))
		return
	}

	entry, err := h.store.Testimonials.Add(r.Context(), req.Name, req.Beverage, req.Message)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	errors.WriteCreated(w, entry)
}

func (h *APIHandlers) HandleBranding(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.store.Branding.State())
}

func (h *APIHandlers) HandleSetLogo(w http.ResponseWriter, r *http.Request) {
	var req imageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, errors.BadRequestWrap(err, "invalid logo payload"))
		return
	}

	if err := h.store.Branding.SetLogo(r.Context(), req.Image); err != nil {
		h.writeError(w, r, err)
		return
	}

	errors.WriteSuccess(w, h.store.Branding.State())
}

func (h *APIHandlers) HandleSetProductImage(w http.ResponseWriter, r *http.Request) {
	var req imageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, errors.BadRequestWrap(err, "invalid image payload"))
		return
	}

	if err := h.store.Branding.SetProductImage(r.Context(), r.PathValue("id"), req.Image); err != nil {
		h.writeError(w, r, err)
		return
	}

	errors.WriteSuccess(w, h.store.Branding.State())
}

func (h *APIHandlers) HandleRemoveProductImage(w http.ResponseWriter, r *http.Request) {
	h.store.Branding.RemoveProductImage(r.Context(), r.PathValue("id"))
	errors.WriteSuccess(w, h.store.Branding.State())
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.store.Stats())
}

func (h *APIHandlers) decodeCartLine(w http.ResponseWriter, r *http.Request) (cartLineRequest, bool) {
	var req cartLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, errors.BadRequestWrap(err, "invalid cart line payload"))
		return cartLineRequest{}, false
	}

	if req.ItemID == "" || req.Grams <= 0 {
		h.writeError(w, r, errors.BadRequest("itemId and a positive grams value are required"))
		return cartLineRequest{}, false
	}

	return req, true
}

func (h *APIHandlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
}
