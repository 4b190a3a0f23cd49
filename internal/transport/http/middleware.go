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
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/agentvox/agentvox/internal/apikey"
	"github.com/agentvox/agentvox/internal/authz"
	"github.com/agentvox/agentvox/internal/observability/logger"
	"github.com/agentvox/agentvox/internal/session"
)

// Plane separation principles:
// 1. Customer and admin portals are separate routers; the other plane's
//    routes do not exist here.
// 2. Tenant context derives exclusively from validated claims, never from
//    request headers.
// 3. Route eligibility is computed from the caller's role namespaces,
//    fail-closed.

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			slog.InfoContext(r.Context(), "http_request_start",
				logger.RequestID(middleware.GetReqID(r.Context())),
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
				logger.RemoteAddr(r.RemoteAddr),
			)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				slog.InfoContext(r.Context(), "http_request_end",
					logger.RequestID(middleware.GetReqID(r.Context())),
					logger.Method(r.Method),
					logger.Path(r.URL.Path),
					logger.RemoteAddr(r.RemoteAddr),
					logger.StatusCode(ww.Status()),
					logger.Duration(time.Since(start).Milliseconds()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// AuthMiddleware validates the bearer token and the session behind it, then
// checks route eligibility for the caller's roles.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			respondError(w, http.StatusUnauthorized, "not authenticated")
			return
		}

		claims, err := h.tokens.Parse(token)
		if err != nil {
			if errors.Is(err, session.ErrTokenExpired) {
				respondError(w, http.StatusUnauthorized, "token expired; use the refresh endpoint")
				return
			}
			respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		if err := claims.Validate(); err != nil {
			respondError(w, http.StatusUnauthorized, err.Error())
			return
		}

		// Tenant context comes from the token. A spoofed tenant header on an
		// authenticated request is rejected outright.
		if r.Header.Get("X-Tenant-ID") != "" {
			slog.WarnContext(r.Context(), "tenant header on authenticated route",
				logger.UserID(claims.Subject),
			)
			respondError(w, http.StatusBadRequest, "X-Tenant-ID header is not allowed; tenant is derived from the token")
			return
		}

		route := strings.TrimPrefix(r.URL.Path, "/api/v1")
		if !authz.CanAccessRoute(claims.Roles, route) {
			h.meter.RecordAuthzDecision(r.Context(), "denied")
			respondError(w, http.StatusForbidden, "access denied")
			return
		}
		h.meter.RecordAuthzDecision(r.Context(), "allowed")

		// Idle and absolute timeouts live on the stored session, not the JWT.
		sessionID := h.getSessionFromCookie(r)
		if sessionID == "" {
			respondError(w, http.StatusUnauthorized, "no session")
			return
		}
		sess, err := h.guard.CheckSession(r.Context(), sessionID)
		if err != nil {
			h.clearSessionCookie(w)
			respondError(w, http.StatusUnauthorized, "invalid or expired session")
			return
		}
		if sess.UserID != claims.Subject {
			respondError(w, http.StatusUnauthorized, "session does not match token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		ctx = context.WithValue(ctx, sessionIDKey, sess.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// APIKeyMiddleware authenticates machine clients by API key and requires the
// given scope on the key.
func (h *Handler) APIKeyMiddleware(scope apikey.Scope) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			secret := r.Header.Get("X-API-Key")
			if secret == "" {
				secret = bearerToken(r)
			}
			if secret == "" {
				respondError(w, http.StatusUnauthorized, "api key required")
				return
			}

			key, err := h.keys.Authenticate(r.Context(), secret, time.Now())
			if err != nil {
				switch {
				case errors.Is(err, apikey.ErrKeyRevoked):
					h.meter.RecordKeyAuth(r.Context(), "revoked")
					respondError(w, http.StatusUnauthorized, "api key revoked")
				case errors.Is(err, apikey.ErrKeyExpiredGrace):
					h.meter.RecordKeyAuth(r.Context(), "expired_grace")
					respondError(w, http.StatusUnauthorized, "api key rotated; grace period over")
				default:
					h.meter.RecordKeyAuth(r.Context(), "invalid")
					respondError(w, http.StatusUnauthorized, "invalid api key")
				}
				return
			}
			h.meter.RecordKeyAuth(r.Context(), "ok")

			if !keyHasScope(key, scope) {
				respondError(w, http.StatusForbidden, "api key lacks scope "+string(scope))
				return
			}

			ctx := context.WithValue(r.Context(), apiKeyCtxKey, key)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

const apiKeyCtxKey contextKey = "api_key"

// GetAPIKey retrieves the authenticated API key from context.
func GetAPIKey(ctx context.Context) *apikey.Key {
	if val, ok := ctx.Value(apiKeyCtxKey).(*apikey.Key); ok {
		return val
	}
	return nil
}

func keyHasScope(key *apikey.Key, scope apikey.Scope) bool {
	for _, s := range key.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
		return auth[len(prefix):]
	}
	return ""
}
