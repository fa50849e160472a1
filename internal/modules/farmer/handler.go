package farmer

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/agrilinkng/agrilink-backend/internal/domain"
	"github.com/agrilinkng/agrilink-backend/internal/modules/auth"
)

// Handler exposes HTTP endpoints for the farmer registry across the three
// portals.
type Handler struct {
	service Service
}

// NewHandler creates a farmer handler.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the farmer routes. Admin manages the whole registry;
// vendors see only farmers they registered; centers get the NIN lookup.
func (h *Handler) RegisterRoutes(router *chi.Mux, gate *auth.Gate) {
	router.Route("/api/v1/farmers", func(r chi.Router) {
		r.Use(gate.RequireAdmin)
		r.Post("/", h.handleRegister)
		r.Get("/", h.handleList)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
		r.Post("/{id}/toggle-status", h.handleToggleStatus)
	})

	router.Route("/api/v1/vendor/farmers", func(r chi.Router) {
		r.Use(gate.RequireVendor)
		r.Post("/", h.handleVendorRegister)
		r.Get("/", h.handleVendorList)
		r.Get("/{id}", h.handleVendorGet)
	})

	router.With(gate.RequireCenter).Post("/api/v1/center/farmer-lookup", h.handleLookupByNIN)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req SaveFarmerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	f, err := h.service.Register(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, f)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	farmers, err := h.service.List(r.Context(), filterFromQuery(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, farmers)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	f, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, f)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req SaveFarmerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	f, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, f)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"message": "farmer deleted"})
}

func (h *Handler) handleToggleStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	f, err := h.service.ToggleStatus(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, f)
}

// ── Vendor portal ───────────────────────────────────────────────────────────

func (h *Handler) handleVendorRegister(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}

	var req SaveFarmerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	// Vendors always register farmers under themselves.
	req.VendorID = &principal.VendorID

	f, err := h.service.Register(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, f)
}

func (h *Handler) handleVendorList(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}

	filter := filterFromQuery(r)
	filter.VendorID = principal.VendorID

	farmers, err := h.service.List(r.Context(), filter)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, farmers)
}

func (h *Handler) handleVendorGet(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}

	id, err := parseID(r)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	f, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	// A farmer registered by someone else does not exist for this vendor.
	if f.VendorID == nil || *f.VendorID != principal.VendorID {
		respondError(w, domain.NotFound("farmer", id))
		return
	}
	respond(w, http.StatusOK, f)
}

// ── Center portal ───────────────────────────────────────────────────────────

func (h *Handler) handleLookupByNIN(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NIN string `json:"nin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	sum, err := h.service.LookupByNIN(r.Context(), req.NIN)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, sum)
}

func filterFromQuery(r *http.Request) ListFilter {
	return ListFilter{
		Search:      r.URL.Query().Get("search"),
		Status:      domain.Status(r.URL.Query().Get("status")),
		StateID:     queryInt(r, "state_id"),
		LGAID:       queryInt(r, "lga_id"),
		GroupTypeID: queryInt(r, "group_type_id"),
		GroupID:     queryInt(r, "group_id"),
	}
}

func queryInt(r *http.Request, key string) int64 {
	n, _ := strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
	return n
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, err error) {
	respond(w, domain.HTTPStatus(err), map[string]string{"error": err.Error()})
}
