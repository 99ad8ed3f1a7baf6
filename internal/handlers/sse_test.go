package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"saaraam-storefront/internal/services"
	"saaraam-storefront/internal/storage"
)

func newTestSSEHandlers(t *testing.T) (*SSEHandlers, *services.Store) {
	t.Helper()

	store, err := services.NewStore(context.Background(), storage.NewMemoryKV(), slog.Default(), 50)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return NewSSEHandlers(store, slog.Default(), "₹"), store
}

func TestSSEHandleCart(t *testing.T) {
	h, store := newTestSSEHandlers(t)
	ctx := context.Background()

	if _, err := store.AddToCart(ctx, "evergreen", 125); err != nil {
		t.Fatalf("AddToCart failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/sse/cart", nil)
	rr := httptest.NewRecorder()
	h.HandleCart(rr, req)

	if ct := rr.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
		t.Errorf("expected event-stream content type, got %q", ct)
	}

	body := rr.Body.String()
	if !strings.Contains(body, "cartState") {
		t.Errorf("expected cartState signal in SSE body: %s", body)
	}
	if !strings.Contains(body, "evergreen") {
		t.Errorf("expected cart line in SSE body: %s", body)
	}
}

func TestSSEHandleMenu(t *testing.T) {
	h, _ := newTestSSEHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/sse/menu", nil)
	rr := httptest.NewRecorder()
	h.HandleMenu(rr, req)

	body := rr.Body.String()
	for _, want := range []string{"menuItems", "branding", "bold-beautiful", "specialty"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in SSE body", want)
		}
	}
}

func TestSSEHandleReport(t *testing.T) {
	h, store := newTestSSEHandlers(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/sse/report", nil)
	rr := httptest.NewRecorder()
	h.HandleReport(rr, req)

	if !strings.Contains(rr.Body.String(), "No orders recorded yet") {
		t.Errorf("expected empty report fragment, got: %s", rr.Body.String())
	}

	if _, err := store.AddToCart(ctx, "specialty", 100); err != nil {
		t.Fatalf("AddToCart failed: %v", err)
	}
	if _, _, err := store.ConfirmPayment(ctx); err != nil {
		t.Fatalf("ConfirmPayment failed: %v", err)
	}

	rr = httptest.NewRecorder()
	h.HandleReport(rr, req)

	body := rr.Body.String()
	if !strings.Contains(body, "report-table") {
		t.Errorf("expected report table fragment, got: %s", body)
	}
	if !strings.Contains(body, "reportMonths") {
		t.Errorf("expected reportMonths signal, got: %s", body)
	}
}

func TestRenderReportTable(t *testing.T) {
	h, store := newTestSSEHandlers(t)
	ctx := context.Background()

	if _, err := store.AddToCart(ctx, "evergreen", 250); err != nil {
		t.Fatalf("AddToCart failed: %v", err)
	}
	if _, _, err := store.ConfirmPayment(ctx); err != nil {
		t.Fatalf("ConfirmPayment failed: %v", err)
	}

	html, err := h.renderReportTable(store.MonthlyReport())
	if err != nil {
		t.Fatalf("renderReportTable failed: %v", err)
	}
	for _, want := range []string{"Evergreen", "₹370", "250g"} {
		if !strings.Contains(html, want) {
			t.Errorf("expected %q in rendered table:\n%s", want, html)
		}
	}
}

func TestSSEHandleRefreshAll(t *testing.T) {
	h, _ := newTestSSEHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/sse/refresh-all", nil)
	rr := httptest.NewRecorder()
	h.HandleRefreshAll(rr, req)

	body := rr.Body.String()
	for _, want := range []string{"menuItems", "cartState", "testimonials", "reportEmpty"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in SSE body", want)
		}
	}
}
