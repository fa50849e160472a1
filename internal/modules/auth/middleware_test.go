package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrilinkng/agrilink-backend/internal/domain"
	"github.com/agrilinkng/agrilink-backend/internal/modules/account"
)

// gateFixture wires a real service over the fake account store and returns a
// handler that echoes the resolved principal.
func gateFixture(t *testing.T) (*fakeAccounts, Service, *Gate) {
	t.Helper()
	repo := newFakeAccounts()
	svc := NewService(repo, testSecret, time.Hour)
	return repo, svc, NewGate(svc)
}

func echoPrincipal(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFrom(r.Context())
		require.True(t, ok, "principal must be on the context past the gate")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(principal)
	})
}

func login(t *testing.T, svc Service, portal account.Role, username, password string) string {
	t.Helper()
	token, _, err := svc.Login(context.Background(), portal, username, password)
	require.NoError(t, err)
	return token
}

func TestGateRejectsMissingToken(t *testing.T) {
	_, _, gate := gateFixture(t)
	handler := gate.RequireAny(echoPrincipal(t))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing bearer token")
}

func TestGateRejectsMalformedHeader(t *testing.T) {
	_, _, gate := gateFixture(t)
	handler := gate.RequireAny(echoPrincipal(t))

	for _, header := range []string{"Basic abc123", "Bearer", "token-without-scheme"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestGateRejectsInvalidToken(t *testing.T) {
	_, _, gate := gateFixture(t)
	handler := gate.RequireAny(echoPrincipal(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid or expired token")
}

func TestGateAdmitsMatchingRole(t *testing.T) {
	repo, svc, gate := gateFixture(t)
	repo.addUser("admin", "admin-pass", account.RoleAdmin, nil, nil)
	handler := gate.RequireAdmin(echoPrincipal(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+login(t, svc, account.RoleAdmin, "admin", "admin-pass"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var principal Principal
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &principal))
	assert.Equal(t, "admin", principal.Username)
	assert.Equal(t, account.RoleAdmin, principal.Role)
}

func TestGateForbidsWrongRole(t *testing.T) {
	repo, svc, gate := gateFixture(t)
	repo.vendors[1] = domain.StatusActive
	repo.addUser("agent", "agent-pass", account.RoleVendor, ptr(1), nil)
	handler := gate.RequireAdmin(echoPrincipal(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+login(t, svc, account.RoleVendor, "agent", "agent-pass"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// Deactivation takes effect on the next request: the still-valid token is
// answered with 401 so the client falls back to the login screen.
func TestGateForcesLogoutOfDeactivatedVendor(t *testing.T) {
	repo, svc, gate := gateFixture(t)
	repo.vendors[1] = domain.StatusActive
	repo.addUser("agent", "agent-pass", account.RoleVendor, ptr(1), nil)
	handler := gate.RequireVendor(echoPrincipal(t))

	token := login(t, svc, account.RoleVendor, "agent", "agent-pass")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	repo.vendors[1] = domain.StatusInactive

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "account is inactive")
}

func TestGateRequireAnyAdmitsEveryRole(t *testing.T) {
	repo, svc, gate := gateFixture(t)
	repo.vendors[1] = domain.StatusActive
	repo.centers[2] = domain.StatusActive
	repo.addUser("admin", "admin-pass", account.RoleAdmin, nil, nil)
	repo.addUser("agent", "agent-pass", account.RoleVendor, ptr(1), nil)
	repo.addUser("depot", "depot-pass", account.RoleCenter, nil, ptr(2))
	handler := gate.RequireAny(echoPrincipal(t))

	tokens := map[string]string{
		"admin": login(t, svc, account.RoleAdmin, "admin", "admin-pass"),
		"agent": login(t, svc, account.RoleVendor, "agent", "agent-pass"),
		"depot": login(t, svc, account.RoleCenter, "depot", "depot-pass"),
	}
	for name, token := range tokens {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "role %s", name)
	}
}
