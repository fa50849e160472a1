package dashboard

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/agrilinkng/agrilink-backend/internal/domain"
	"github.com/agrilinkng/agrilink-backend/internal/modules/auth"
)

// Handler exposes the dashboard endpoints of the three portals.
type Handler struct {
	service Service
}

// NewHandler creates a dashboard handler.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the dashboard routes.
func (h *Handler) RegisterRoutes(router *chi.Mux, gate *auth.Gate) {
	router.Route("/api/v1/dashboard", func(r chi.Router) {
		r.Use(gate.RequireAdmin)
		r.Get("/admin", h.handleAdminOverview)
		r.Get("/centers/{id}", h.handleCenterDetail)
	})

	router.Group(func(r chi.Router) {
		r.Use(gate.RequireVendor)
		r.Get("/api/v1/vendor/dashboard", h.handleVendorOverview)
		r.Get("/api/v1/vendor/profile", h.handleVendorProfile)
	})

	router.Group(func(r chi.Router) {
		r.Use(gate.RequireCenter)
		r.Get("/api/v1/center/dashboard", h.handleCenterOverview)
		r.Get("/api/v1/center/profile", h.handleCenterProfile)
	})
}

func (h *Handler) handleAdminOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.AdminOverview(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, overview)
}

// handleCenterDetail gives the admin the same stats block a center sees on
// its own profile.
func (h *Handler) handleCenterDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	profile, err := h.service.CenterProfile(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, profile)
}

func (h *Handler) handleVendorOverview(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}

	overview, err := h.service.VendorOverview(r.Context(), principal.VendorID)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, overview)
}

func (h *Handler) handleVendorProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}

	profile, err := h.service.VendorProfile(r.Context(), principal.VendorID)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, profile)
}

func (h *Handler) handleCenterOverview(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}

	overview, err := h.service.CenterOverview(r.Context(), principal.CenterID)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, overview)
}

func (h *Handler) handleCenterProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}

	profile, err := h.service.CenterProfile(r.Context(), principal.CenterID)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, profile)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, err error) {
	respond(w, domain.HTTPStatus(err), map[string]string{"error": err.Error()})
}
