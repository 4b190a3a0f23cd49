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

	"github.com/go-chi/chi/v5"

	"github.com/agentvox/agentvox/internal/apikey"
	"github.com/agentvox/agentvox/internal/authz"
)

func (h *Handler) keyActor(r *http.Request) apikey.Actor {
	claims := GetClaims(r.Context())
	return apikey.Actor{
		ID:    claims.Subject,
		Roles: claims.Roles,
		IP:    getIPAddress(r),
	}
}

// CreateAPIKeyRequest carries the creation parameters.
type CreateAPIKeyRequest struct {
	Name   string         `json:"name"`
	Scopes []apikey.Scope `json:"scopes"`
}

// CreateAPIKey issues a new key. The response is the only place the full
// secret ever appears; every later read shows the prefix alone.
func (h *Handler) CreateAPIKey(w http.ResponseWriter, r *http.Request) {
	var req CreateAPIKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.keys.Create(r.Context(), h.keyActor(r), GetTenantID(r.Context()), req.Name, req.Scopes)
	if err != nil {
		h.respondKeyError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// ListAPIKeys lists the tenant's keys, prefixes only.
func (h *Handler) ListAPIKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := h.keys.List(r.Context(), h.keyActor(r), GetTenantID(r.Context()))
	if err != nil {
		h.respondKeyError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"keys": keys})
}

// GetAPIKey returns one key, prefix only.
func (h *Handler) GetAPIKey(w http.ResponseWriter, r *http.Request) {
	key, err := h.keys.Get(r.Context(), h.keyActor(r), chi.URLParam(r, "keyID"))
	if err != nil {
		h.respondKeyError(w, err)
		return
	}
	if key.TenantID != GetTenantID(r.Context()) {
		respondError(w, http.StatusNotFound, "key not found")
		return
	}
	respondJSON(w, http.StatusOK, key)
}

// RotateAPIKey replaces a key, leaving the old secret valid through the grace
// window.
func (h *Handler) RotateAPIKey(w http.ResponseWriter, r *http.Request) {
	created, err := h.keys.Rotate(r.Context(), h.keyActor(r), GetTenantID(r.Context()), chi.URLParam(r, "keyID"))
	if err != nil {
		h.respondKeyError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// RevokeAPIKeyRequest carries the explicit confirmation flag.
type RevokeAPIKeyRequest struct {
	Confirm bool `json:"confirm"`
}

// RevokeAPIKey kills a key immediately and permanently.
func (h *Handler) RevokeAPIKey(w http.ResponseWriter, r *http.Request) {
	var req RevokeAPIKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.keys.Revoke(r.Context(), h.keyActor(r), GetTenantID(r.Context()), chi.URLParam(r, "keyID"), req.Confirm); err != nil {
		h.respondKeyError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "key revoked"})
}

func (h *Handler) respondKeyError(w http.ResponseWriter, err error) {
	var conflict *apikey.ConflictError
	var unknownScopes *apikey.UnknownScopeError
	switch {
	case errors.Is(err, authz.ErrAccessDenied):
		respondError(w, http.StatusForbidden, "access denied")
	case errors.Is(err, apikey.ErrKeyNotFound):
		respondError(w, http.StatusNotFound, "key not found")
	case errors.Is(err, apikey.ErrEmptyScopes),
		errors.Is(err, apikey.ErrConfirmationRequired):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &unknownScopes):
		respondError(w, http.StatusBadRequest, unknownScopes.Error())
	case errors.As(err, &conflict):
		respondError(w, http.StatusConflict, conflict.Error())
	default:
		respondError(w, http.StatusInternalServerError, "operation failed")
	}
}
