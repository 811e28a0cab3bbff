package web

import (
	"net/http"
	"time"

	"publimar/internal/app"
	"publimar/internal/core"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type lineBody struct {
	ProductID       int             `json:"product_id"`
	VariantID       *int            `json:"variant_id"`
	Quantity        int             `json:"quantity"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Notes           string          `json:"notes"`
}

func (b lineBody) toRequest() app.QuoteLineRequest {
	return app.QuoteLineRequest{
		ProductID:       b.ProductID,
		VariantID:       b.VariantID,
		Quantity:        b.Quantity,
		DiscountPercent: b.DiscountPercent,
		Notes:           b.Notes,
	}
}

// parseDate parses an optional YYYY-MM-DD value. Empty input yields the zero
// time.
func parseDate(w http.ResponseWriter, r *http.Request, field, value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, true
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		writeError(w, r, field+" must be YYYY-MM-DD", "BAD_REQUEST", http.StatusBadRequest)
		return time.Time{}, false
	}
	return t, true
}

// apiListQuotes handles GET /api/quotes?status=SENT.
func (h *Handler) apiListQuotes(w http.ResponseWriter, r *http.Request) {
	var statusPtr *string
	if s := r.URL.Query().Get("status"); s != "" {
		statusPtr = &s
	}
	result, err := h.svc.ListQuotes(r.Context(), statusPtr)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Quotes)
}

// apiGetQuote handles GET /api/quotes/{ref}.
func (h *Handler) apiGetQuote(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetQuote(r.Context(), refParam(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Quote)
}

// apiCreateQuote handles POST /api/quotes.
// Body: { client_id, tax_rate_percent?, valid_until?, lines: [{product_id, variant_id?, quantity, discount_percent?, notes?}] }
func (h *Handler) apiCreateQuote(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ClientID       int              `json:"client_id"`
		TaxRatePercent *decimal.Decimal `json:"tax_rate_percent"`
		ValidUntil     string           `json:"valid_until"`
		Lines          []lineBody       `json:"lines"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if len(body.Lines) == 0 {
		writeError(w, r, "at least one line is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	validUntil, ok := parseDate(w, r, "valid_until", body.ValidUntil)
	if !ok {
		return
	}

	req := app.CreateQuoteRequest{
		ClientID:       body.ClientID,
		TaxRatePercent: body.TaxRatePercent,
		ValidUntil:     validUntil,
	}
	for _, l := range body.Lines {
		req.Lines = append(req.Lines, l.toRequest())
	}

	result, err := h.svc.CreateQuote(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result.Quote)
}

// apiAddQuoteItem handles POST /api/quotes/{ref}/items.
func (h *Handler) apiAddQuoteItem(w http.ResponseWriter, r *http.Request) {
	var body lineBody
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.AddQuoteItem(r.Context(), refParam(r), body.toRequest())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Quote)
}

// apiUpdateQuoteItem handles PATCH /api/quotes/{ref}/items/{itemID}.
// Only the fields present in the body are changed.
func (h *Handler) apiUpdateQuoteItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Quantity        *int             `json:"quantity"`
		UnitPrice       *decimal.Decimal `json:"unit_price"`
		DiscountPercent *decimal.Decimal `json:"discount_percent"`
		Notes           *string          `json:"notes"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	patch := core.ItemPatch{
		Quantity:        body.Quantity,
		UnitPrice:       body.UnitPrice,
		DiscountPercent: body.DiscountPercent,
		Notes:           body.Notes,
	}
	result, err := h.svc.UpdateQuoteItem(r.Context(), refParam(r), chi.URLParam(r, "itemID"), patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Quote)
}

// apiRemoveQuoteItem handles DELETE /api/quotes/{ref}/items/{itemID}.
func (h *Handler) apiRemoveQuoteItem(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.RemoveQuoteItem(r.Context(), refParam(r), chi.URLParam(r, "itemID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Quote)
}

// apiSetQuoteTaxRate handles PUT /api/quotes/{ref}/tax-rate.
// Body: { tax_rate_percent }
func (h *Handler) apiSetQuoteTaxRate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TaxRatePercent string `json:"tax_rate_percent"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.SetQuoteTaxRate(r.Context(), refParam(r), body.TaxRatePercent)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Quote)
}

// quoteTransition is the shared shape of the four operator lifecycle handlers.
func (h *Handler) quoteTransition(w http.ResponseWriter, r *http.Request,
	op func(ref string) (*app.QuoteResult, error)) {
	result, err := op(refParam(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Quote)
}

// apiSendQuote handles POST /api/quotes/{ref}/send.
func (h *Handler) apiSendQuote(w http.ResponseWriter, r *http.Request) {
	h.quoteTransition(w, r, func(ref string) (*app.QuoteResult, error) {
		return h.svc.SendQuote(r.Context(), ref)
	})
}

// apiConfirmQuote handles POST /api/quotes/{ref}/confirm.
func (h *Handler) apiConfirmQuote(w http.ResponseWriter, r *http.Request) {
	h.quoteTransition(w, r, func(ref string) (*app.QuoteResult, error) {
		return h.svc.ConfirmQuote(r.Context(), ref)
	})
}

// apiRejectQuote handles POST /api/quotes/{ref}/reject.
func (h *Handler) apiRejectQuote(w http.ResponseWriter, r *http.Request) {
	h.quoteTransition(w, r, func(ref string) (*app.QuoteResult, error) {
		return h.svc.RejectQuote(r.Context(), ref)
	})
}

// apiResetQuote handles POST /api/quotes/{ref}/reset.
func (h *Handler) apiResetQuote(w http.ResponseWriter, r *http.Request) {
	h.quoteTransition(w, r, func(ref string) (*app.QuoteResult, error) {
		return h.svc.ResetQuote(r.Context(), ref)
	})
}

// apiClientConfirmQuote handles POST /api/quotes/{ref}/client-confirm.
// Body: { comment? }
func (h *Handler) apiClientConfirmQuote(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Comment string `json:"comment"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.ClientConfirmQuote(r.Context(), refParam(r), body.Comment)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Quote)
}

// apiClientRejectQuote handles POST /api/quotes/{ref}/client-reject.
// Body: { comment? }
func (h *Handler) apiClientRejectQuote(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Comment string `json:"comment"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.ClientRejectQuote(r.Context(), refParam(r), body.Comment)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Quote)
}

// apiAddQuoteComment handles POST /api/quotes/{ref}/comments.
// Body: { author, text, is_internal? }
func (h *Handler) apiAddQuoteComment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Author     string `json:"author"`
		Text       string `json:"text"`
		IsInternal bool   `json:"is_internal"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.AddQuoteComment(r.Context(), refParam(r), body.Author, body.Text, body.IsInternal)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Quote)
}
