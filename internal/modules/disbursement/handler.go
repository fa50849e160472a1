package disbursement

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/agrilinkng/agrilink-backend/internal/domain"
	"github.com/agrilinkng/agrilink-backend/internal/modules/auth"
)

// Handler exposes HTTP endpoints for disbursements.
type Handler struct {
	service Service
}

// NewHandler creates a disbursement handler.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the disbursement routes. Centers commit and review
// their own hand-outs; admin reads across all centers.
func (h *Handler) RegisterRoutes(router *chi.Mux, gate *auth.Gate) {
	router.Route("/api/v1/center/disbursements", func(r chi.Router) {
		r.Use(gate.RequireCenter)
		r.Post("/", h.handleDisburse)
		r.Get("/", h.handleCenterList)
		r.Get("/{id}", h.handleCenterGet)
	})

	router.Route("/api/v1/disbursements", func(r chi.Router) {
		r.Use(gate.RequireAdmin)
		r.Get("/", h.handleList)
		r.Get("/stats", h.handleStats)
		r.Get("/reference/{reference}", h.handleGetByReference)
		r.Get("/{id}", h.handleGet)
	})
}

func (h *Handler) handleDisburse(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}

	var req DisburseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	receipt, err := h.service.Disburse(r.Context(), principal.CenterID, req, &principal.UserID)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, receipt)
}

func (h *Handler) handleCenterList(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}

	filter := filterFromQuery(r)
	filter.CenterID = principal.CenterID

	disbursements, err := h.service.List(r.Context(), filter)
	if err != nil {
		respondError(w, err)
		return
	}
	stats, err := h.service.Stats(r.Context(), filter)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{
		"disbursements": disbursements,
		"stats":         stats,
	})
}

func (h *Handler) handleCenterGet(w http.ResponseWriter, r *http.Request) {
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

	d, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	// Another center's record does not exist for this one.
	if d.CenterID != principal.CenterID {
		respondError(w, domain.NotFound("disbursement", id))
		return
	}
	respond(w, http.StatusOK, d)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	disbursements, err := h.service.List(r.Context(), filterFromQuery(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, disbursements)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context(), filterFromQuery(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, stats)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	d, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, d)
}

func (h *Handler) handleGetByReference(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.GetByReference(r.Context(), chi.URLParam(r, "reference"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, d)
}

func filterFromQuery(r *http.Request) ListFilter {
	return ListFilter{
		CenterID:    queryInt(r, "center_id"),
		IncentiveID: queryInt(r, "incentive_id"),
		FarmerID:    queryInt(r, "farmer_id"),
		Search:      r.URL.Query().Get("search"),
		DateFrom:    queryDate(r, "from"),
		DateTo:      queryDate(r, "to"),
	}
}

func queryInt(r *http.Request, key string) int64 {
	n, _ := strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
	return n
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
