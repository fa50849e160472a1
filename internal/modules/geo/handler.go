package geo

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/agrilinkng/agrilink-backend/internal/domain"
	"github.com/agrilinkng/agrilink-backend/internal/modules/auth"
)

// Handler exposes HTTP endpoints for state and LGA reference data.
type Handler struct {
	service Service
}

// NewHandler creates a geo handler.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the geo routes.
func (h *Handler) RegisterRoutes(router *chi.Mux, gate *auth.Gate) {
	router.Route("/api/v1/geo", func(r chi.Router) {
		// Reference data is public; registration forms load it before login.
		r.Get("/states", h.handleListStates)
		r.Get("/states/{id}/lgas", h.handleListLGAs)
		r.With(gate.RequireAdmin).Post("/states", h.handleCreateState)
		r.With(gate.RequireAdmin).Post("/lgas", h.handleCreateLGA)
	})
}

func (h *Handler) handleCreateState(w http.ResponseWriter, r *http.Request) {
	var req CreateStateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	state, err := h.service.CreateState(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, state)
}

func (h *Handler) handleListStates(w http.ResponseWriter, r *http.Request) {
	states, err := h.service.ListStates(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, states)
}

func (h *Handler) handleCreateLGA(w http.ResponseWriter, r *http.Request) {
	var req CreateLGARequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	lga, err := h.service.CreateLGA(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, lga)
}

func (h *Handler) handleListLGAs(w http.ResponseWriter, r *http.Request) {
	stateID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid state id"})
		return
	}

	lgas, err := h.service.ListLGAsByState(r.Context(), stateID)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, lgas)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, err error) {
	respond(w, domain.HTTPStatus(err), map[string]string{"error": err.Error()})
}
