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
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/agentvox/agentvox/internal/authz"
	"github.com/agentvox/agentvox/internal/team"
)

func (h *Handler) teamActor(r *http.Request) team.Actor {
	claims := GetClaims(r.Context())
	return team.Actor{
		ID:    claims.Subject,
		Email: claims.Email,
		Roles: claims.Roles,
		IP:    getIPAddress(r),
	}
}

// CheckQuota reports member headroom for the caller's tenant. The plan is
// resolved from stored tenant state, never from the request.
func (h *Handler) CheckQuota(w http.ResponseWriter, r *http.Request) {
	quota, err := h.team.CheckQuota(r.Context(), GetTenantID(r.Context()))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "quota check failed")
		return
	}
	respondJSON(w, http.StatusOK, quota)
}

// InviteMemberRequest carries the invitation parameters. The roles listed
// here are what the redeemer will receive.
type InviteMemberRequest struct {
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

// InviteMember creates a pending invite, subject to the plan ceiling.
func (h *Handler) InviteMember(w http.ResponseWriter, r *http.Request) {
	var req InviteMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		respondError(w, http.StatusBadRequest, "email is required")
		return
	}

	roles, ok := parseRoleNames(req.Roles)
	if !ok {
		respondError(w, http.StatusBadRequest, "unknown role in request")
		return
	}

	invite, err := h.team.InviteMember(r.Context(), h.teamActor(r), GetTenantID(r.Context()), req.Email, roles)
	if err != nil {
		h.respondTeamError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, invite)
}

// ResendInvite issues a fresh invite with a newly computed expiry.
func (h *Handler) ResendInvite(w http.ResponseWriter, r *http.Request) {
	invite, err := h.team.ResendInvite(r.Context(), h.teamActor(r), GetTenantID(r.Context()), chi.URLParam(r, "inviteID"))
	if err != nil {
		h.respondTeamError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, invite)
}

// AcceptInvite redeems a pending invite as the authenticated caller. The
// membership identity and role set both come from server-side state.
func (h *Handler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	member, err := h.team.AcceptInvite(r.Context(), h.teamActor(r), chi.URLParam(r, "inviteID"))
	if err != nil {
		h.respondTeamError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, member)
}

// RemoveMember removes a member and revokes their sessions.
func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	err := h.team.RemoveMember(r.Context(), h.teamActor(r), GetTenantID(r.Context()), chi.URLParam(r, "userID"))
	if err != nil {
		h.respondTeamError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "member removed"})
}

// ChangeRoleRequest carries the replacement role set.
type ChangeRoleRequest struct {
	Roles []string `json:"roles"`
}

// ChangeRole replaces a member's role set.
func (h *Handler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	var req ChangeRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	roles, ok := parseRoleNames(req.Roles)
	if !ok {
		respondError(w, http.StatusBadRequest, "unknown role in request")
		return
	}

	err := h.team.ChangeRole(r.Context(), h.teamActor(r), GetTenantID(r.Context()), chi.URLParam(r, "userID"), roles)
	if err != nil {
		h.respondTeamError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "roles updated"})
}

func (h *Handler) respondTeamError(w http.ResponseWriter, r *http.Request, err error) {
	var quota *team.QuotaExceededError
	switch {
	case errors.Is(err, authz.ErrAccessDenied):
		respondError(w, http.StatusForbidden, "access denied")
	case errors.Is(err, team.ErrMemberNotFound), errors.Is(err, team.ErrInviteNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, team.ErrSelfRemoval),
		errors.Is(err, team.ErrLastOwner),
		errors.Is(err, team.ErrNoRoles):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, team.ErrInviteMismatch):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, team.ErrInviteExpired):
		respondError(w, http.StatusGone, err.Error())
	case errors.As(err, &quota):
		h.meter.RecordQuotaDenial(r.Context())
		respondError(w, http.StatusForbidden, quota.Error())
	default:
		respondError(w, http.StatusInternalServerError, "operation failed")
	}
}

// Membership roles arrive as "namespace/name" strings.
func parseRoleNames(raw []string) ([]authz.Role, bool) {
	roles := make([]authz.Role, 0, len(raw))
	for _, s := range raw {
		namespace, name, found := strings.Cut(s, "/")
		if !found {
			return nil, false
		}
		role, ok := authz.ParseRole(namespace, name)
		if !ok {
			return nil, false
		}
		roles = append(roles, role)
	}
	return roles, true
}
