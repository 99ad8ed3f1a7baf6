package handlers

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"saaraam-storefront/internal/models"
	"saaraam-storefront/internal/services"
)

var reportTableTemplate = template.Must(template.New("reportTable").Parse(`
<div id="report-content">
<table class="report-table">
<thead><tr><th>Month</th><th>Orders</th><th>Revenue</th><th>Top Seller</th></tr></thead>
<tbody>
{{range .Months}}<tr>
<td>{{.Month}}</td>
<td>{{.Orders}}</td>
<td><strong>{{$.Symbol}}{{.Revenue}}</strong></td>
<td>{{if .TopSeller}}{{.TopSeller.Name}} ({{.TopSeller.Grams}}g × {{.TopSeller.Quantity}}){{else}}—{{end}}</td>
</tr>{{end}}
</tbody>
</table>
</div>`))

var emptyReportFragment = `<div id="report-content"><div class="report-empty">No orders recorded yet. Complete a payment to populate the report.</div></div>`

// SSEHandlers push storefront state to the rendering layer over datastar
// server-sent events, so the UI re-renders on demand instead of polling.
type SSEHandlers struct {
	store          *services.Store
	logger         *slog.Logger
	currencySymbol string
}

func NewSSEHandlers(store *services.Store, logger *slog.Logger, currencySymbol string) *SSEHandlers {
	return &SSEHandlers{
		store:          store,
		logger:         logger,
		currencySymbol: currencySymbol,
	}
}

type reportTemplateData struct {
	Months []models.MonthlyAggregate
	Symbol string
}

func (h *SSEHandlers) renderReportTable(months []models.MonthlyAggregate) (string, error) {
	if len(months) == 0 {
		return emptyReportFragment, nil
	}

	var buf strings.Builder
	err := reportTableTemplate.Execute(&buf, reportTemplateData{Months: months, Symbol: h.currencySymbol})
	return buf.String(), err
}

func (h *SSEHandlers) HandleCart(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	jsonData, err := json.Marshal(map[string]any{
		"cartState": h.store.CartState(),
	})
	if err != nil {
		h.logger.Error("marshal cart state", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleMenu(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	jsonData, err := json.Marshal(map[string]any{
		"menuItems": h.store.Catalog.List(),
		"branding":  h.store.Branding.State(),
	})
	if err != nil {
		h.logger.Error("marshal menu data", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleReport(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	months := h.store.MonthlyReport()
	html, err := h.renderReportTable(months)
	if err != nil {
		h.logger.Error("render report table", "error", err)
		return
	}

	sse.PatchElements(html)

	jsonData, err := json.Marshal(map[string]any{
		"reportMonths": months,
		"reportEmpty":  len(months) == 0,
	})
	if err != nil {
		h.logger.Error("marshal report data", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	months := h.store.MonthlyReport()
	html, err := h.renderReportTable(months)
	if err != nil {
		h.logger.Error("render report table", "error", err)
		return
	}
	sse.PatchElements(html)

	allSignals, err := json.Marshal(map[string]any{
		"menuItems":    h.store.Catalog.List(),
		"branding":     h.store.Branding.State(),
		"cartState":    h.store.CartState(),
		"testimonials": h.store.Testimonials.List(),
		"reportMonths": months,
		"reportEmpty":  len(months) == 0,
	})
	if err != nil {
		h.logger.Error("marshal refresh signals", "error", err)
		return
	}
	sse.PatchSignals(allSignals)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
