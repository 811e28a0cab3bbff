package web

import (
	"net/http"
	"strconv"

	"publimar/internal/app"

	"github.com/go-chi/chi/v5"
)

// idParam extracts the {id} URL parameter as an int. Returns false and writes
// a 400 response if the parameter is not numeric.
func idParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "invalid id: "+chi.URLParam(r, "id"), "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

type clientBody struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	TaxID   string `json:"tax_id"`
}

func (b clientBody) toRequest() app.ClientRequest {
	return app.ClientRequest{
		Name:    b.Name,
		Email:   b.Email,
		Phone:   b.Phone,
		Address: b.Address,
		TaxID:   b.TaxID,
	}
}

// apiListClients handles GET /api/clients.
func (h *Handler) apiListClients(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListClients(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Clients)
}

// apiGetClient handles GET /api/clients/{id}.
func (h *Handler) apiGetClient(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	result, err := h.svc.GetClient(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Client)
}

// apiCreateClient handles POST /api/clients.
func (h *Handler) apiCreateClient(w http.ResponseWriter, r *http.Request) {
	var body clientBody
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.CreateClient(r.Context(), body.toRequest())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result.Client)
}

// apiUpdateClient handles PUT /api/clients/{id}.
func (h *Handler) apiUpdateClient(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var body clientBody
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.UpdateClient(r.Context(), id, body.toRequest())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Client)
}

// apiDeactivateClient handles DELETE /api/clients/{id}.
func (h *Handler) apiDeactivateClient(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeactivateClient(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
