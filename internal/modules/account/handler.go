package account

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/agrilinkng/agrilink-backend/internal/domain"
)

// Handler exposes HTTP endpoints for portal credential management.
type Handler struct {
	service Service
}

// NewHandler creates an account handler.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// adminGate is the part of the auth gate these routes use. It is declared
// here rather than imported so that account does not import auth, which
// imports account.
type adminGate interface {
	RequireAdmin(next http.Handler) http.Handler
}

// RegisterRoutes mounts the credential routes. All of them are admin-only.
func (h *Handler) RegisterRoutes(router *chi.Mux, gate adminGate) {
	router.Route("/api/v1/credentials", func(r chi.Router) {
		r.Use(gate.RequireAdmin)
		r.Get("/vendors/{id}", h.handleVendorCredentials)
		r.Post("/vendors/{id}", h.handleSetVendorCredentials)
		r.Get("/centers/{id}", h.handleCenterCredentials)
		r.Post("/centers/{id}", h.handleSetCenterCredentials)
		r.Get("/generate-password", h.handleGeneratePassword)
	})
	router.With(gate.RequireAdmin).Post("/api/v1/accounts/admins", h.handleCreateAdmin)
}

func (h *Handler) handleVendorCredentials(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	info, err := h.service.VendorCredentials(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, info)
}

func (h *Handler) handleSetVendorCredentials(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	u, err := h.service.SetVendorCredentials(r.Context(), id, req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, u)
}

func (h *Handler) handleCenterCredentials(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	info, err := h.service.CenterCredentials(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, info)
}

func (h *Handler) handleSetCenterCredentials(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	u, err := h.service.SetCenterCredentials(r.Context(), id, req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, u)
}

func (h *Handler) handleGeneratePassword(w http.ResponseWriter, r *http.Request) {
	password, err := h.service.GeneratePassword()
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"password": password})
}

func (h *Handler) handleCreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	u, err := h.service.CreateAdmin(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, u)
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
