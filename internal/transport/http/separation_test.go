package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

/**
 * Test Purpose: Verify strict separation between the customer and admin planes.
 * Scope: NewRouter mode dispatch.
 * Security: An admin endpoint reachable through the customer portal (or vice
 *           versa) would expose privileged operations on the wrong plane. The
 *           wrong plane must answer 404, not 401 or 403, so the route's
 *           existence is not disclosed.
 * Expected: Each mode mounts only its own endpoints; /health and /metrics are
 *           shared.
 * Test Case ID: SEC-HTTP-SEPARATION-01
 */
func TestRouter_PlaneSeparation(t *testing.T) {
	// Route matching never executes handlers, so nil dependencies are safe.
	h := &Handler{
		sessionConfig: SessionConfig{CookieName: "test-session"},
	}

	tests := []struct {
		name        string
		mode        string
		method      string
		path        string
		expectFound bool
	}{
		{"customer has login", "customer", "POST", "/api/v1/auth/login", true},
		{"customer has keys", "customer", "GET", "/api/v1/keys/", true},
		{"customer has team quota", "customer", "GET", "/api/v1/team/quota", true},
		{"customer has realtime sessions", "customer", "POST", "/api/v1/realtime/sessions", true},
		{"customer has theme validate", "customer", "POST", "/api/v1/themes/validate", true},
		{"customer lacks audit", "customer", "GET", "/api/v1/admin/audit", false},
		{"customer lacks refunds", "customer", "POST", "/api/v1/admin/refunds", false},
		{"customer lacks impersonation", "customer", "POST", "/api/v1/admin/impersonation/start", false},
		{"customer has health", "customer", "GET", "/health", true},

		{"admin has login", "admin", "POST", "/api/v1/admin/auth/login", true},
		{"admin has audit", "admin", "GET", "/api/v1/admin/audit", true},
		{"admin has refunds", "admin", "POST", "/api/v1/admin/refunds", true},
		{"admin has impersonation end", "admin", "POST", "/api/v1/admin/impersonation/end", true},
		{"admin lacks customer login", "admin", "POST", "/api/v1/auth/login", false},
		{"admin lacks keys", "admin", "GET", "/api/v1/keys/", false},
		{"admin lacks team", "admin", "POST", "/api/v1/team/invites", false},
		{"admin lacks themes", "admin", "POST", "/api/v1/themes/apply", false},
		{"admin has health", "admin", "GET", "/health", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := NewRateLimiter(100, 100)
			r := NewRouter(h, rl, tt.mode)

			rctx := chi.NewRouteContext()
			found := r.Match(rctx, tt.method, tt.path)
			assert.Equal(t, tt.expectFound, found,
				"mode %s: %s %s", tt.mode, tt.method, tt.path)
		})
	}
}

// TestRouter_WrongPlaneIs404 serves real requests and checks the status code,
// not just route matching. The other plane's routes must be indistinguishable
// from routes that never existed.
func TestRouter_WrongPlaneIs404(t *testing.T) {
	h := &Handler{
		sessionConfig: SessionConfig{CookieName: "test-session"},
	}
	rl := NewRateLimiter(100, 100)

	t.Run("customer portal", func(t *testing.T) {
		r := NewRouter(h, rl, "customer")

		req := httptest.NewRequest("GET", "/api/v1/admin/audit", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)

		req = httptest.NewRequest("POST", "/api/v1/auth/login", nil)
		w = httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.NotEqual(t, http.StatusNotFound, w.Code, "login must exist on the customer portal")
	})

	t.Run("admin portal", func(t *testing.T) {
		r := NewRouter(h, rl, "admin")

		req := httptest.NewRequest("POST", "/api/v1/keys/", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)

		req = httptest.NewRequest("GET", "/api/v1/admin/audit", nil)
		w = httptest.NewRecorder()
		r.ServeHTTP(w, req)
		// Mounted but behind auth middleware.
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

// TestRouter_UnauthenticatedIs401 checks that every route behind the auth
// middleware rejects a request with no bearer token.
func TestRouter_UnauthenticatedIs401(t *testing.T) {
	h := &Handler{
		sessionConfig: SessionConfig{CookieName: "test-session"},
	}
	rl := NewRateLimiter(100, 100)
	r := NewRouter(h, rl, "customer")

	for _, path := range []string{
		"/api/v1/auth/me",
		"/api/v1/keys/",
		"/api/v1/team/quota",
		"/api/v1/themes/defaults",
	} {
		req := httptest.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "path %s", path)
	}
}
