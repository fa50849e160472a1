package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/agrilinkng/agrilink-backend/internal/domain"
	"github.com/agrilinkng/agrilink-backend/internal/modules/account"
)

// Handler exposes the login endpoints for the three portals.
type Handler struct {
	service Service
}

// NewHandler creates a new auth handler.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the auth routes on the router.
func (h *Handler) RegisterRoutes(router *chi.Mux, gate *Gate) {
	router.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/admin/login", h.login(account.RoleAdmin))
		r.Post("/vendor/login", h.login(account.RoleVendor))
		r.Post("/center/login", h.login(account.RoleCenter))

		r.Group(func(r chi.Router) {
			r.Use(gate.RequireAny)
			r.Get("/me", h.me)
		})
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string     `json:"token"`
	User  *Principal `json:"user"`
}

func (h *Handler) login(portal account.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}

		req.Username = strings.TrimSpace(strings.ToLower(req.Username))
		if req.Username == "" || req.Password == "" {
			respond(w, http.StatusBadRequest, map[string]string{"error": "username and password are required"})
			return
		}

		token, principal, err := h.service.Login(r.Context(), portal, req.Username, req.Password)
		if err != nil {
			if errors.Is(err, ErrInvalidCredentials) {
				respond(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
				return
			}
			var inactive *domain.InactiveEntityError
			if errors.As(err, &inactive) {
				respond(w, http.StatusUnauthorized, map[string]string{"error": "your account has been deactivated; contact the administrator"})
				return
			}
			respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}

		respond(w, http.StatusOK, loginResponse{Token: token, User: principal})
	}
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFrom(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}
	respond(w, http.StatusOK, principal)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
