package server

import (
	"log/slog"
	"net/http"

	"saaraam-storefront/internal/config"
	"saaraam-storefront/internal/handlers"
	"saaraam-storefront/internal/services"
)

type Server struct {
	store       *services.Store
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

func NewServer(store *services.Store, logger *slog.Logger, storeCfg config.StoreConfig) *Server {
	s := &Server{
		store:       store,
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(store, logger),
		sseHandlers: handlers.NewSSEHandlers(store, logger, storeCfg.CurrencySymbol),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	// Menu
	s.mux.HandleFunc("GET /api/menu", s.apiHandlers.HandleMenu)
	s.mux.HandleFunc("POST /api/menu", s.apiHandlers.HandleSaveMenuItem)
	s.mux.HandleFunc("DELETE /api/menu/{id}", s.apiHandlers.HandleDeleteMenuItem)

	// Cart
	s.mux.HandleFunc("GET /api/cart", s.apiHandlers.HandleCart)
	s.mux.HandleFunc("DELETE /api/cart", s.apiHandlers.HandleClearCart)
	s.mux.HandleFunc("POST /api/cart/lines", s.apiHandlers.HandleAddToCart)
	s.mux.HandleFunc("PATCH /api/cart/lines", s.apiHandlers.HandleChangeQuantity)
	s.mux.HandleFunc("DELETE /api/cart/lines", s.apiHandlers.HandleRemoveLine)
	s.mux.HandleFunc("POST /api/cart/prune", s.apiHandlers.HandlePruneOrphans)

	// Checkout and reporting
	s.mux.HandleFunc("POST /api/checkout", s.apiHandlers.HandleCheckout)
	s.mux.HandleFunc("GET /api/report", s.apiHandlers.HandleReport)

	// Testimonials
	s.mux.HandleFunc("GET /api/testimonials", s.apiHandlers.HandleTestimonials)
	s.mux.HandleFunc("POST /api/testimonials", s.apiHandlers.HandleAddTestimonial)

	// Branding overrides
	s.mux.HandleFunc("GET /api/branding", s.apiHandlers.HandleBranding)
	s.mux.HandleFunc("PUT /api/branding/logo", s.apiHandlers.HandleSetLogo)
	s.mux.HandleFunc("PUT /api/branding/images/{id}", s.apiHandlers.HandleSetProductImage)
	s.mux.HandleFunc("DELETE /api/branding/images/{id}", s.apiHandlers.HandleRemoveProductImage)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/cart", s.sseHandlers.HandleCart)
	s.mux.HandleFunc("GET /sse/menu", s.sseHandlers.HandleMenu)
	s.mux.HandleFunc("GET /sse/report", s.sseHandlers.HandleReport)
	s.mux.HandleFunc("GET /sse/refresh-all", s.sseHandlers.HandleRefreshAll)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
