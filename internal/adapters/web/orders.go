package web

import (
	"net/http"

	"publimar/internal/app"
	"publimar/internal/core"

	"github.com/shopspring/decimal"
)

// apiListOrders handles GET /api/orders?status=IN_PROCESS.
func (h *Handler) apiListOrders(w http.ResponseWriter, r *http.Request) {
	var statusPtr *string
	if s := r.URL.Query().Get("status"); s != "" {
		statusPtr = &s
	}
	result, err := h.svc.ListOrders(r.Context(), statusPtr)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Orders)
}

// apiGetOrder handles GET /api/orders/{ref}.
func (h *Handler) apiGetOrder(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetOrder(r.Context(), refParam(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Order)
}

// apiCreateOrder handles POST /api/orders.
// Body: { client_id, tax_rate_percent?, down_payment?, estimated_delivery?, lines: [...] }
func (h *Handler) apiCreateOrder(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ClientID          int              `json:"client_id"`
		TaxRatePercent    *decimal.Decimal `json:"tax_rate_percent"`
		DownPayment       decimal.Decimal  `json:"down_payment"`
		EstimatedDelivery string           `json:"estimated_delivery"`
		Lines             []lineBody       `json:"lines"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if len(body.Lines) == 0 {
		writeError(w, r, "at least one line is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	delivery, ok := parseDate(w, r, "estimated_delivery", body.EstimatedDelivery)
	if !ok {
		return
	}

	req := app.CreateOrderRequest{
		ClientID:          body.ClientID,
		TaxRatePercent:    body.TaxRatePercent,
		DownPayment:       body.DownPayment,
		EstimatedDelivery: delivery,
	}
	for _, l := range body.Lines {
		req.Lines = append(req.Lines, l.toRequest())
	}

	result, err := h.svc.CreateOrder(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result.Order)
}

// apiCreateOrderFromQuote handles POST /api/orders/from-quote.
// Body: { quote_ref, down_payment?, estimated_delivery? }
func (h *Handler) apiCreateOrderFromQuote(w http.ResponseWriter, r *http.Request) {
	var body struct {
		QuoteRef          string          `json:"quote_ref"`
		DownPayment       decimal.Decimal `json:"down_payment"`
		EstimatedDelivery string          `json:"estimated_delivery"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.QuoteRef == "" {
		writeError(w, r, "quote_ref is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	delivery, ok := parseDate(w, r, "estimated_delivery", body.EstimatedDelivery)
	if !ok {
		return
	}

	result, err := h.svc.CreateOrderFromQuote(r.Context(), app.OrderFromQuoteRequest{
		QuoteRef:          body.QuoteRef,
		DownPayment:       body.DownPayment,
		EstimatedDelivery: delivery,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result.Order)
}

// apiCompleteOrder handles POST /api/orders/{ref}/complete.
func (h *Handler) apiCompleteOrder(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.CompleteOrder(r.Context(), refParam(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Order)
}

// apiCancelOrder handles POST /api/orders/{ref}/cancel.
func (h *Handler) apiCancelOrder(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.CancelOrder(r.Context(), refParam(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Order)
}

// apiRecordPayment handles POST /api/orders/{ref}/payments.
// Body: { amount, method, bank?, notes? }
func (h *Handler) apiRecordPayment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Amount decimal.Decimal `json:"amount"`
		Method string          `json:"method"`
		Bank   string          `json:"bank"`
		Notes  string          `json:"notes"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.RecordPayment(r.Context(), refParam(r), app.PaymentRequest{
		Amount: body.Amount,
		Method: core.PaymentMethod(body.Method),
		Bank:   body.Bank,
		Notes:  body.Notes,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Order)
}
