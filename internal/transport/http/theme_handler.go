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

	"github.com/agentvox/agentvox/internal/audit"
	"github.com/agentvox/agentvox/internal/authz"
	"github.com/agentvox/agentvox/internal/observability/logger"
	"github.com/agentvox/agentvox/internal/theme"
)

// ListDefaultThemes returns the shipped themes.
func (h *Handler) ListDefaultThemes(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"themes": theme.Defaults})
}

// ValidateTheme runs a theme payload through validation without applying it.
// The full error list comes back in one pass.
func (h *Handler) ValidateTheme(w http.ResponseWriter, r *http.Request) {
	var t theme.Theme
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	respondJSON(w, http.StatusOK, theme.Validate(t))
}

// ApplyTheme validates and applies a theme for the caller's tenant. Invalid
// themes are rejected with the validation result; nothing is applied
// partially.
func (h *Handler) ApplyTheme(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if err := authz.Require(claims.Roles, authz.PermThemeManage); err != nil {
		respondError(w, http.StatusForbidden, "access denied")
		return
	}

	var t theme.Theme
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if t.ID == "" {
		respondError(w, http.StatusBadRequest, "theme id is required")
		return
	}

	result := theme.Validate(t)
	if !result.Valid {
		respondJSON(w, http.StatusUnprocessableEntity, result)
		return
	}

	// The apply is only acknowledged once it has an audit record.
	entry, err := audit.Record(audit.ActionThemeApplied, claims.Subject, "user", t.ID, "theme",
		map[string]any{
			"tenant_id":  claims.TenantID,
			"theme_name": t.Name,
			"version":    t.Version,
		}, getIPAddress(r))
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to build audit entry", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "operation failed")
		return
	}
	if err := h.auditLog.Append(r.Context(), entry); err != nil {
		slog.ErrorContext(r.Context(), "failed to audit theme apply", logger.Error(err))
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "theme applied",
		"theme":   t.ID,
	})
}
