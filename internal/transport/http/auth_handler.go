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
	"log/slog"
	"net/http"

	"github.com/agentvox/agentvox/internal/authz"
	"github.com/agentvox/agentvox/internal/id"
	"github.com/agentvox/agentvox/internal/observability/logger"
	"github.com/agentvox/agentvox/internal/session"
)

// LoginRequest represents login credentials. MFACode is required only when
// the account has MFA enabled.
type LoginRequest struct {
	TenantID string `json:"tenant_id"`
	Email    string `json:"email"`
	Password string `json:"password"`
	MFACode  string `json:"mfa_code,omitempty"`
}

// Login authenticates a user. With MFA enabled and no code supplied the
// response is 401 with mfa_required so the client can prompt for the second
// factor; no tokens are issued on partial success.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TenantID == "" || req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "tenant_id, email and password are required")
		return
	}

	result, err := h.guard.Login(r.Context(), req.TenantID, req.Email, req.Password, req.MFACode, getIPAddress(r))
	if err != nil {
		slog.ErrorContext(r.Context(), "login failed", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}

	h.meter.RecordLogin(r.Context(), string(result.Status))

	switch result.Status {
	case session.StatusMFARequired:
		respondJSON(w, http.StatusUnauthorized, map[string]any{
			"status": "mfa_required",
		})
	case session.StatusDenied:
		respondError(w, http.StatusUnauthorized, "invalid credentials")
	case session.StatusAuthenticated:
		// Admin-plane logins must carry at least one admin namespace role.
		if h.mode == "admin" {
			claims, err := h.tokens.Parse(result.AccessToken)
			if err != nil || !authz.HasAnyNamespace(claims.Roles, authz.NamespaceAdmin) {
				respondError(w, http.StatusForbidden, "admin portal requires an admin role")
				return
			}
		}
		h.setSessionCookie(w, result.Session.ID)
		respondJSON(w, http.StatusOK, map[string]any{
			"status":        "authenticated",
			"access_token":  result.AccessToken,
			"refresh_token": result.RefreshToken,
			"session_id":    result.Session.ID,
		})
	}
}

// RefreshRequest carries a refresh token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh exchanges a refresh token for a new access token without an
// interactive login.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		respondError(w, http.StatusBadRequest, "refresh_token is required")
		return
	}

	access, err := h.guard.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"access_token": access,
	})
}

// Logout destroys the current session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID := h.getSessionFromCookie(r)
	if sessionID != "" {
		if err := h.guard.DeleteSession(r.Context(), sessionID); err != nil {
			slog.WarnContext(r.Context(), "failed to delete session",
				logger.SessionID(sessionID), logger.Error(err))
		}
	}
	h.clearSessionCookie(w)

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "logged out",
	})
}

// GetCurrentUser returns the authenticated identity as seen by the token.
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	resp := map[string]any{
		"user_id":     claims.Subject,
		"tenant_id":   claims.TenantID,
		"email":       claims.Email,
		"username":    claims.PreferredUsername,
		"roles":       claims.Roles,
		"permissions": claims.Permissions,
	}
	if h.users != nil {
		if user, err := h.users.GetByID(r.Context(), claims.Subject); err == nil {
			resp["mfa_enabled"] = user.MFAEnabled
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

// CreateRealtimeSession hands a machine client a short-lived realtime session
// handle. The API key middleware has already authenticated the caller.
func (h *Handler) CreateRealtimeSession(w http.ResponseWriter, r *http.Request) {
	key := GetAPIKey(r.Context())
	if key == nil {
		respondError(w, http.StatusUnauthorized, "api key required")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"session_id": id.NewUUIDv7(),
		"tenant_id":  key.TenantID,
		"key_prefix": key.Prefix,
	})
}
