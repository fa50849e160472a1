package incentive

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/agrilinkng/agrilink-backend/internal/domain"
	"github.com/agrilinkng/agrilink-backend/internal/modules/auth"
)

// Handler exposes HTTP endpoints for incentive allocations.
type Handler struct {
	service Service
}

// NewHandler creates an incentive handler.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the incentive routes. Admin manages allocations;
// centers read their own inventory.
func (h *Handler) RegisterRoutes(router *chi.Mux, gate *auth.Gate) {
	router.Route("/api/v1/incentives", func(r chi.Router) {
		r.Use(gate.RequireAdmin)
		r.Post("/", h.handleCreate)
		r.Get("/", h.handleList)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
		r.Get("/{id}/allocation", h.handleAllocation)
	})

	router.Route("/api/v1/center/allocations", func(r chi.Router) {
		r.Use(gate.RequireCenter)
		r.Get("/", h.handleCenterInventory)
		r.Get("/available", h.handleCenterAvailable)
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req SaveIncentiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	i, err := h.service.Create(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, i)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	incentives, err := h.service.List(r.Context(), filterFromQuery(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, incentives)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	i, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, i)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req SaveIncentiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	i, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, i)
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
	respond(w, http.StatusOK, map[string]string{"message": "incentive deleted"})
}

// handleAllocation reports the derived arithmetic for one incentive.
func (h *Handler) handleAllocation(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	disbursed, err := h.service.DisbursedQuantity(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	remaining, err := h.service.RemainingQuantity(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]int{
		"disbursed_quantity": disbursed,
		"remaining_quantity": remaining,
	})
}

func (h *Handler) handleCenterInventory(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}

	lines, err := h.service.Inventory(r.Context(), principal.CenterID, filterFromQuery(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, lines)
}

func (h *Handler) handleCenterAvailable(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}

	lines, err := h.service.Available(r.Context(), principal.CenterID)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, lines)
}

func filterFromQuery(r *http.Request) ListFilter {
	centerID, _ := strconv.ParseInt(r.URL.Query().Get("center_id"), 10, 64)
	return ListFilter{
		CenterID: centerID,
		Search:   r.URL.Query().Get("search"),
		DateFrom: queryDate(r, "from"),
		DateTo:   queryDate(r, "to"),
	}
}

func queryDate(r *http.Request, key string) *time.Time {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil
	}
	return &t
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
