// Copyright 2026 The AgentVox Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/agentvox/agentvox/internal/apikey"
	"github.com/agentvox/agentvox/internal/audit"
	"github.com/agentvox/agentvox/internal/billing"
	"github.com/agentvox/agentvox/internal/identity"
	"github.com/agentvox/agentvox/internal/observability/metrics"
	"github.com/agentvox/agentvox/internal/session"
	"github.com/agentvox/agentvox/internal/team"
)

// Handler holds HTTP handlers and dependencies. A Handler serves exactly one
// plane: the customer portal or the admin portal, selected by router mode.
type Handler struct {
	guard         *session.Guard
	tokens        *session.TokenService
	keys          *apikey.Service
	team          *team.Enforcer
	refunds       *billing.Gate
	auditLog      audit.Store
	users         identity.Repository
	meter         *metrics.Meter
	sessionConfig SessionConfig
	mode          string
}

// SessionConfig holds session cookie configuration
type SessionConfig struct {
	CookieName     string
	CookieSecure   bool
	CookieSameSite http.SameSite
}

// NewHandler creates a new HTTP handler
func NewHandler(
	guard *session.Guard,
	tokens *session.TokenService,
	keys *apikey.Service,
	teamEnforcer *team.Enforcer,
	refunds *billing.Gate,
	auditLog audit.Store,
	users identity.Repository,
	meter *metrics.Meter,
	sessionConfig SessionConfig,
) *Handler {
	return &Handler{
		guard:         guard,
		tokens:        tokens,
		keys:          keys,
		team:          teamEnforcer,
		refunds:       refunds,
		auditLog:      auditLog,
		users:         users,
		meter:         meter,
		sessionConfig: sessionConfig,
	}
}

// NewRouter creates a router for one plane. Mode is "customer" or "admin";
// each plane mounts only its own endpoints, so a route of the other plane is
// a 404 here rather than a 403.
func NewRouter(h *Handler, rateLimiter *RateLimiter, mode string) *chi.Mux {
	h.mode = mode

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RateLimitMiddleware(rateLimiter))
	r.Use(func(handler http.Handler) http.Handler {
		return otelhttp.NewHandler(handler, "http_request",
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	})
	r.Use(metrics.Instrument)
	r.Use(LoggingMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", h.HealthCheck)
	r.Handle("/metrics", metrics.Handler())

	switch mode {
	case "admin":
		r.Route("/api/v1/admin", func(r chi.Router) {
			r.Post("/auth/login", h.Login)
			r.Post("/auth/refresh", h.Refresh)
			r.Post("/auth/logout", h.Logout)

			r.Group(func(r chi.Router) {
				r.Use(h.AuthMiddleware)
				r.Get("/auth/me", h.GetCurrentUser)
				r.Get("/audit", h.QueryAudit)
				r.Post("/impersonation/start", h.StartImpersonation)
				r.Post("/impersonation/end", h.EndImpersonation)
				r.Post("/refunds", h.ProcessRefund)
			})
		})
	default:
		r.Route("/api/v1", func(r chi.Router) {
			r.Post("/auth/login", h.Login)
			r.Post("/auth/refresh", h.Refresh)
			r.Post("/auth/logout", h.Logout)

			// machine clients authenticate with an API key, not a session
			r.With(h.APIKeyMiddleware(apikey.ScopeRealtimeConnect)).
				Post("/realtime/sessions", h.CreateRealtimeSession)

			r.Group(func(r chi.Router) {
				r.Use(h.AuthMiddleware)

				r.Get("/auth/me", h.GetCurrentUser)

				r.Route("/keys", func(r chi.Router) {
					r.Post("/", h.CreateAPIKey)
					r.Get("/", h.ListAPIKeys)
					r.Get("/{keyID}", h.GetAPIKey)
					r.Post("/{keyID}/rotate", h.RotateAPIKey)
					r.Delete("/{keyID}", h.RevokeAPIKey)
				})

				r.Route("/team", func(r chi.Router) {
					r.Get("/quota", h.CheckQuota)
					r.Post("/invites", h.InviteMember)
					r.Post("/invites/{inviteID}/resend", h.ResendInvite)
					r.Post("/invites/{inviteID}/accept", h.AcceptInvite)
					r.Delete("/members/{userID}", h.RemoveMember)
					r.Put("/members/{userID}/roles", h.ChangeRole)
				})

				r.Route("/themes", func(r chi.Router) {
					r.Get("/defaults", h.ListDefaultThemes)
					r.Post("/validate", h.ValidateTheme)
					r.Post("/apply", h.ApplyTheme)
				})
			})
		})
	}

	return r
}

// HealthCheck returns the health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "agentvox",
	})
}

// Helper functions
func (h *Handler) setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.sessionConfig.CookieName,
		Value:    sessionID,
		Path:     "/",
		Secure:   h.sessionConfig.CookieSecure,
		HttpOnly: true,
		SameSite: h.sessionConfig.CookieSameSite,
		MaxAge:   int(session.MaxLifetime / time.Second),
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:   h.sessionConfig.CookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}

func (h *Handler) getSessionFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(h.sessionConfig.CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

func getIPAddress(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
