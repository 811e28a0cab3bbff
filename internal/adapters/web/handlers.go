package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"publimar/internal/app"

	"github.com/go-chi/chi/v5"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc    app.ApplicationService
	router chi.Router
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins string) http.Handler {
	h := &Handler{svc: svc}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))
	r.Use(RequestBodyLimit(1 << 20)) // 1 MB

	r.Get("/api/health", h.health)

	// ── Clients ───────────────────────────────────────────────────────────────
	r.Get("/api/clients", h.apiListClients)
	r.Post("/api/clients", h.apiCreateClient)
	r.Get("/api/clients/{id}", h.apiGetClient)
	r.Put("/api/clients/{id}", h.apiUpdateClient)
	r.Delete("/api/clients/{id}", h.apiDeactivateClient)

	// ── Catalog ───────────────────────────────────────────────────────────────
	r.Get("/api/products", h.apiListProducts)
	r.Post("/api/products", h.apiCreateProduct)
	r.Get("/api/products/{ref}", h.apiGetProduct)
	r.Delete("/api/products/{ref}", h.apiDeactivateProduct)
	r.Post("/api/products/{ref}/variants", h.apiAddVariant)
	r.Post("/api/variants/{id}/receive", h.apiReceiveStock)

	// ── Quotes ────────────────────────────────────────────────────────────────
	r.Get("/api/quotes", h.apiListQuotes)
	r.Post("/api/quotes", h.apiCreateQuote)
	r.Get("/api/quotes/{ref}", h.apiGetQuote)
	r.Post("/api/quotes/{ref}/items", h.apiAddQuoteItem)
	r.Patch("/api/quotes/{ref}/items/{itemID}", h.apiUpdateQuoteItem)
	r.Delete("/api/quotes/{ref}/items/{itemID}", h.apiRemoveQuoteItem)
	r.Put("/api/quotes/{ref}/tax-rate", h.apiSetQuoteTaxRate)
	r.Post("/api/quotes/{ref}/send", h.apiSendQuote)
	r.Post("/api/quotes/{ref}/confirm", h.apiConfirmQuote)
	r.Post("/api/quotes/{ref}/reject", h.apiRejectQuote)
	r.Post("/api/quotes/{ref}/reset", h.apiResetQuote)
	r.Post("/api/quotes/{ref}/comments", h.apiAddQuoteComment)

	// Client-facing shared-link endpoints: permissive confirm/reject.
	r.Post("/api/quotes/{ref}/client-confirm", h.apiClientConfirmQuote)
	r.Post("/api/quotes/{ref}/client-reject", h.apiClientRejectQuote)

	// ── Orders ────────────────────────────────────────────────────────────────
	r.Get("/api/orders", h.apiListOrders)
	r.Post("/api/orders", h.apiCreateOrder)
	r.Post("/api/orders/from-quote", h.apiCreateOrderFromQuote)
	r.Get("/api/orders/{ref}", h.apiGetOrder)
	r.Post("/api/orders/{ref}/complete", h.apiCompleteOrder)
	r.Post("/api/orders/{ref}/cancel", h.apiCancelOrder)
	r.Post("/api/orders/{ref}/payments", h.apiRecordPayment)

	// ── Reports ───────────────────────────────────────────────────────────────
	r.Get("/api/reports/outstanding", h.apiOutstandingOrders)
	r.Get("/api/reports/expired-quotes", h.apiExpiredQuotes)
	r.Get("/api/reports/sales-summary", h.apiSalesSummary)

	h.router = r
	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// refParam extracts the {ref} URL parameter (numeric ID or document number).
func refParam(r *http.Request) string {
	return chi.URLParam(r, "ref")
}

// decodeJSON decodes the request body into v and returns false + writes an
// appropriate error response on failure. Returns HTTP 413 when the body
// exceeds the limit set by RequestBodyLimit; HTTP 400 for other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
