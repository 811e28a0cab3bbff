package web

import (
	"net/http"
	"strconv"
)

// apiOutstandingOrders handles GET /api/reports/outstanding.
func (h *Handler) apiOutstandingOrders(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.GetOutstandingOrders(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, rows)
}

// apiExpiredQuotes handles GET /api/reports/expired-quotes.
func (h *Handler) apiExpiredQuotes(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.GetExpiredQuotes(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, rows)
}

// apiSalesSummary handles GET /api/reports/sales-summary?year=2026.
// Omitting year means the current year.
func (h *Handler) apiSalesSummary(w http.ResponseWriter, r *http.Request) {
	year := 0
	if s := r.URL.Query().Get("year"); s != "" {
		y, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, r, "year must be numeric", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		year = y
	}
	summary, err := h.svc.GetSalesSummary(r.Context(), year)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, summary)
}
