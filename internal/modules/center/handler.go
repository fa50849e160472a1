package center

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/agrilinkng/agrilink-backend/internal/domain"
	"github.com/agrilinkng/agrilink-backend/internal/modules/auth"
)

// Handler exposes HTTP endpoints for redemption center administration.
type Handler struct {
	service Service
}

// NewHandler creates a center handler.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the center administration routes.
func (h *Handler) RegisterRoutes(router *chi.Mux, gate *auth.Gate) {
	router.Route("/api/v1/centers", func(r chi.Router) {
		r.Use(gate.RequireAdmin)
		r.Post("/", h.handleRegister)
		r.Get("/", h.handleList)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
		r.Post("/{id}/toggle-status", h.handleToggleStatus)
	})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req CreateCenterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	c, err := h.service.Register(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, c)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		Search: r.URL.Query().Get("search"),
		Status: domain.Status(r.URL.Query().Get("status")),
	}

	centers, err := h.service.List(r.Context(), filter)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, centers)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, c)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req CreateCenterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	c, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, c)
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
	respond(w, http.StatusOK, map[string]string{"message": "center deleted"})
}

func (h *Handler) handleToggleStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	c, err := h.service.ToggleStatus(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, c)
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
