package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/agrilinkng/agrilink-backend/internal/domain"
	"github.com/agrilinkng/agrilink-backend/internal/modules/account"
)

type contextKey struct{}

// Gate wraps route groups with token checks. Each Require* method is a
// chi-compatible middleware that resolves the bearer token, re-validates the
// account behind it and stores the principal on the request context.
type Gate struct {
	auth Service
}

// NewGate creates a new access gate backed by the auth service.
func NewGate(auth Service) *Gate {
	return &Gate{auth: auth}
}

// RequireAdmin admits administrator accounts only.
func (g *Gate) RequireAdmin(next http.Handler) http.Handler {
	return g.require(next, account.RoleAdmin)
}

// RequireVendor admits vendor accounts only.
func (g *Gate) RequireVendor(next http.Handler) http.Handler {
	return g.require(next, account.RoleVendor)
}

// RequireCenter admits redemption center accounts only.
func (g *Gate) RequireCenter(next http.Handler) http.Handler {
	return g.require(next, account.RoleCenter)
}

// RequireAny admits any authenticated account regardless of role.
func (g *Gate) RequireAny(next http.Handler) http.Handler {
	return g.require(next)
}

func (g *Gate) require(next http.Handler, roles ...account.Role) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeUnauthorized(w, "missing bearer token")
			return
		}

		principal, err := g.auth.Resolve(r.Context(), token)
		if err != nil {
			var inactive *domain.InactiveEntityError
			if errors.As(err, &inactive) {
				// The linked vendor or center was deactivated after the
				// token was issued. 401 forces the client back to login.
				writeUnauthorized(w, "account is inactive; contact the administrator")
				return
			}
			writeUnauthorized(w, "invalid or expired token")
			return
		}

		if len(roles) > 0 && !hasRole(principal.Role, roles) {
			writeForbidden(w)
			return
		}

		ctx := context.WithValue(r.Context(), contextKey{}, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// PrincipalFrom returns the authenticated principal stored by the gate.
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	principal, ok := ctx.Value(contextKey{}).(*Principal)
	return principal, ok
}

func hasRole(role account.Role, allowed []account.Role) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	respond(w, http.StatusUnauthorized, map[string]string{"error": message})
}

func writeForbidden(w http.ResponseWriter) {
	respond(w, http.StatusForbidden, map[string]string{"error": "you do not have permission to access this resource"})
}
