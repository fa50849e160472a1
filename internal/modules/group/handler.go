package group

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/agrilinkng/agrilink-backend/internal/domain"
	"github.com/agrilinkng/agrilink-backend/internal/modules/auth"
)

// Handler exposes HTTP endpoints for group type and group management.
type Handler struct {
	service Service
}

// NewHandler creates a group handler.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the group routes. All of them are admin-only.
func (h *Handler) RegisterRoutes(router *chi.Mux, gate *auth.Gate) {
	router.Route("/api/v1/group-types", func(r chi.Router) {
		r.Use(gate.RequireAdmin)
		r.Post("/", h.handleCreateGroupType)
		r.Get("/", h.handleListGroupTypes)
		r.Get("/{id}", h.handleGetGroupType)
		r.Put("/{id}", h.handleUpdateGroupType)
		r.Delete("/{id}", h.handleDeleteGroupType)
	})
	router.Route("/api/v1/groups", func(r chi.Router) {
		r.Use(gate.RequireAdmin)
		r.Post("/", h.handleCreateGroup)
		r.Get("/", h.handleListGroups)
		r.Get("/{id}", h.handleGetGroup)
		r.Put("/{id}", h.handleUpdateGroup)
		r.Delete("/{id}", h.handleDeleteGroup)
	})
}

func (h *Handler) handleCreateGroupType(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	gt, err := h.service.CreateGroupType(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, gt)
}

func (h *Handler) handleListGroupTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.service.ListGroupTypes(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, types)
}

func (h *Handler) handleGetGroupType(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	gt, err := h.service.GetGroupType(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, gt)
}

func (h *Handler) handleUpdateGroupType(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req CreateGroupTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	gt, err := h.service.UpdateGroupType(r.Context(), id, req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, gt)
}

func (h *Handler) handleDeleteGroupType(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.service.DeleteGroupType(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"message": "group type deleted"})
}

func (h *Handler) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	g, err := h.service.CreateGroup(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, g)
}

func (h *Handler) handleListGroups(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{Search: r.URL.Query().Get("search")}
	if typeID, err := strconv.ParseInt(r.URL.Query().Get("type"), 10, 64); err == nil {
		filter.TypeID = typeID
	}
	switch r.URL.Query().Get("status") {
	case "active":
		active := true
		filter.Active = &active
	case "inactive":
		active := false
		filter.Active = &active
	}

	groups, err := h.service.ListGroups(r.Context(), filter)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, groups)
}

func (h *Handler) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	g, err := h.service.GetGroup(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, g)
}

func (h *Handler) handleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	g, err := h.service.UpdateGroup(r.Context(), id, req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, g)
}

func (h *Handler) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.service.DeleteGroup(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"message": "group deleted"})
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
