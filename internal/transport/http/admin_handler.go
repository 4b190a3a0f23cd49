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
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/agentvox/agentvox/internal/audit"
	"github.com/agentvox/agentvox/internal/authz"
	"github.com/agentvox/agentvox/internal/billing"
)

// QueryAudit handles GET /api/v1/admin/audit
func (h *Handler) QueryAudit(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	if err := authz.Require(claims.Roles, authz.PermAuditView); err != nil {
		respondError(w, http.StatusForbidden, "audit access requires the audit:view permission")
		return
	}

	q := r.URL.Query()
	filter := audit.Filter{
		ActorID:  q.Get("actor_id"),
		TargetID: q.Get("target_id"),
		Action:   audit.Action(q.Get("action")),
	}
	if raw := q.Get("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid since timestamp; use RFC3339")
			return
		}
		filter.Since = t
	}
	if raw := q.Get("until"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid until timestamp; use RFC3339")
			return
		}
		filter.Until = t
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = n
	}

	entries, err := h.auditLog.Query(r.Context(), filter)
	if err != nil {
		slog.Error("audit query failed", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to query audit log")
		return
	}

	out := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		out = append(out, map[string]any{
			"id":          e.ID(),
			"timestamp":   e.Timestamp().Format(time.RFC3339Nano),
			"actor_id":    e.ActorID(),
			"actor_type":  e.ActorType(),
			"action":      e.Action(),
			"target_id":   e.TargetID(),
			"target_type": e.TargetType(),
			"details":     e.Details(),
			"ip_address":  e.IPAddress(),
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"entries": out})
}

// ImpersonationRequest carries the target user and the mandatory reason.
type ImpersonationRequest struct {
	UserID string `json:"user_id"`
	Reason string `json:"reason"`
}

// StartImpersonation handles POST /api/v1/admin/impersonation/start
func (h *Handler) StartImpersonation(w http.ResponseWriter, r *http.Request) {
	h.recordImpersonation(w, r, audit.ActionImpersonationStart)
}

// EndImpersonation handles POST /api/v1/admin/impersonation/end
func (h *Handler) EndImpersonation(w http.ResponseWriter, r *http.Request) {
	h.recordImpersonation(w, r, audit.ActionImpersonationEnd)
}

func (h *Handler) recordImpersonation(w http.ResponseWriter, r *http.Request, action audit.Action) {
	claims := GetClaims(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	if err := authz.Require(claims.Roles, authz.PermImpersonateUser); err != nil {
		respondError(w, http.StatusForbidden, "impersonation requires the impersonate:user permission")
		return
	}

	var req ImpersonationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	entry, err := audit.Record(action, claims.Subject, "admin", req.UserID, "user",
		map[string]any{"reason": req.Reason}, getIPAddress(r))
	if err != nil {
		if errors.Is(err, audit.ErrReasonRequired) {
			respondError(w, http.StatusBadRequest, "impersonation requires a non-empty reason")
			return
		}
		respondError(w, http.StatusBadRequest, "invalid impersonation request")
		return
	}
	if err := h.auditLog.Append(r.Context(), entry); err != nil {
		slog.Error("failed to record impersonation", "error", err, "action", action)
		respondError(w, http.StatusInternalServerError, "failed to record impersonation")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status":  "recorded",
		"action":  action,
		"user_id": req.UserID,
	})
}

// ProcessRefund handles POST /api/v1/admin/refunds
func (h *Handler) ProcessRefund(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	if err := authz.Require(claims.Roles, authz.PermRefundApprove); err != nil {
		respondError(w, http.StatusForbidden, "refunds require the refund:approve permission")
		return
	}

	var req billing.RefundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.refunds.Process(r.Context(), req, claims.Subject, getIPAddress(r)); err != nil {
		var approval *billing.ApprovalRequiredError
		switch {
		case errors.Is(err, billing.ErrInvalidAmount):
			respondError(w, http.StatusBadRequest, "refund amount must be positive")
		case errors.As(err, &approval):
			respondJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":           "approval required",
				"amount_cents":    approval.AmountCents,
				"threshold_cents": approval.ThresholdCents,
			})
		default:
			slog.Error("refund processing failed", "error", err, "refund_id", req.ID)
			respondError(w, http.StatusInternalServerError, "failed to process refund")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"status": "processed", "refund_id": req.ID})
}
