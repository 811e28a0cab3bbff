package web

import (
	"net/http"
	"strconv"

	"publimar/internal/app"

	"github.com/shopspring/decimal"
)

// productIDFromRef resolves the {ref} parameter (numeric ID or product code)
// to a product ID. Writes the error response itself on failure.
func (h *Handler) productIDFromRef(w http.ResponseWriter, r *http.Request) (int, bool) {
	ref := refParam(r)
	if id, err := strconv.Atoi(ref); err == nil {
		return id, true
	}
	result, err := h.svc.GetProduct(r.Context(), ref)
	if err != nil {
		writeServiceError(w, r, err)
		return 0, false
	}
	return result.Product.ID, true
}

// apiListProducts handles GET /api/products.
func (h *Handler) apiListProducts(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListProducts(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Products)
}

// apiGetProduct handles GET /api/products/{ref}. ref is a numeric ID or code.
func (h *Handler) apiGetProduct(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetProduct(r.Context(), refParam(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Product)
}

// apiCreateProduct handles POST /api/products.
// Body: { code, name, description?, base_price?, variants?: [{size, sku?, price, stock}] }
func (h *Handler) apiCreateProduct(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code        string          `json:"code"`
		Name        string          `json:"name"`
		Description string          `json:"description"`
		BasePrice   decimal.Decimal `json:"base_price"`
		Variants    []struct {
			Size  string          `json:"size"`
			SKU   string          `json:"sku"`
			Price decimal.Decimal `json:"price"`
			Stock int             `json:"stock"`
		} `json:"variants"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	req := app.CreateProductRequest{
		Code:        body.Code,
		Name:        body.Name,
		Description: body.Description,
		BasePrice:   body.BasePrice,
	}
	for _, v := range body.Variants {
		req.Variants = append(req.Variants, app.VariantRequest{
			Size: v.Size, SKU: v.SKU, Price: v.Price, Stock: v.Stock,
		})
	}

	result, err := h.svc.CreateProduct(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result.Product)
}

// apiAddVariant handles POST /api/products/{ref}/variants.
func (h *Handler) apiAddVariant(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productIDFromRef(w, r)
	if !ok {
		return
	}
	var body struct {
		Size  string          `json:"size"`
		SKU   string          `json:"sku"`
		Price decimal.Decimal `json:"price"`
		Stock int             `json:"stock"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	variant, err := h.svc.AddVariant(r.Context(), id, app.VariantRequest{
		Size: body.Size, SKU: body.SKU, Price: body.Price, Stock: body.Stock,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, variant)
}

// apiDeactivateProduct handles DELETE /api/products/{ref}.
func (h *Handler) apiDeactivateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productIDFromRef(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeactivateProduct(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// apiReceiveStock handles POST /api/variants/{id}/receive.
// Body: { qty }
func (h *Handler) apiReceiveStock(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var body struct {
		Qty int `json:"qty"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	variant, err := h.svc.ReceiveStock(r.Context(), id, body.Qty)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, variant)
}
