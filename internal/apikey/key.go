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

// Package apikey manages the lifecycle of tenant API keys: issuance with
// single disclosure of the secret, rotation with a bounded grace window, and
// immediate terminal revocation.
package apikey

import (
	"context"
	"errors"
	"time"
)

// Domain errors
var (
	ErrKeyNotFound          = errors.New("api key not found")
	ErrKeyRevoked           = errors.New("api key is revoked")
	ErrKeyExpiredGrace      = errors.New("api key rotation grace period has ended")
	ErrEmptyScopes          = errors.New("at least one scope is required")
	ErrConfirmationRequired = errors.New("revocation requires explicit confirmation")
	ErrInvalidSecret        = errors.New("invalid api key secret")
)

// ConflictError rejects a lifecycle transition that the key's current state
// does not allow, before any mutation happens.
type ConflictError struct {
	KeyID  string
	Reason string
}

func (e *ConflictError) Error() string {
	return "api key " + e.KeyID + ": " + e.Reason
}

// UnknownScopeError reports every unrecognized scope by name.
type UnknownScopeError struct {
	Scopes []string
}

func (e *UnknownScopeError) Error() string {
	msg := "unknown scopes:"
	for _, s := range e.Scopes {
		msg += " " + s
	}
	return msg
}

// GracePeriod is how long a rotated-out key keeps authenticating.
const GracePeriod = 24 * time.Hour

// PrefixLength is the stored, displayable prefix of the one-time secret.
const PrefixLength = 8

// Scope is a capability grantable to an API key. Closed vocabulary.
type Scope string

const (
	ScopeRealtimeConnect Scope = "realtime:connect"
	ScopeAgentsRead      Scope = "agents:read"
	ScopeAgentsWrite     Scope = "agents:write"
	ScopeTranscriptsRead Scope = "transcripts:read"
	ScopeUsageRead       Scope = "usage:read"
	ScopeWebhooksManage  Scope = "webhooks:manage"
)

// ValidScopes is the issuance vocabulary.
var ValidScopes = map[Scope]struct{}{
	ScopeRealtimeConnect: {},
	ScopeAgentsRead:      {},
	ScopeAgentsWrite:     {},
	ScopeTranscriptsRead: {},
	ScopeUsageRead:       {},
	ScopeWebhooksManage:  {},
}

// Key is the stored form of an API key. The secret itself is never stored;
// only its hash (for authentication) and an 8-character prefix (for display)
// survive creation.
type Key struct {
	ID             string     `json:"id"`
	TenantID       string     `json:"tenant_id"`
	Name           string     `json:"name"`
	Prefix         string     `json:"prefix"`
	SecretHash     string     `json:"-"`
	Scopes         []Scope    `json:"scopes"`
	IsActive       bool       `json:"is_active"`
	CreatedAt      time.Time  `json:"created_at"`
	RevokedAt      *time.Time `json:"revoked_at,omitempty"`
	RotatedToID    string     `json:"rotated_to_id,omitempty"`
	GracePeriodEnd *time.Time `json:"grace_period_end,omitempty"`
}

// AuthenticatesAt reports whether the key is a valid credential at the given
// instant. A revoked key fails from the instant of revocation; a rotated key
// fails at or after its grace period end, with plain timestamp comparison at
// the boundary.
func (k *Key) AuthenticatesAt(at time.Time) error {
	if !k.IsActive || k.RevokedAt != nil {
		return ErrKeyRevoked
	}
	if k.GracePeriodEnd != nil && !at.Before(*k.GracePeriodEnd) {
		return ErrKeyExpiredGrace
	}
	return nil
}

// CreatedKey is the creation response: the only place the secret appears.
type CreatedKey struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Secret    string    `json:"secret"`
	Prefix    string    `json:"prefix"`
	Scopes    []Scope   `json:"scopes"`
	CreatedAt time.Time `json:"created_at"`
	IsActive  bool      `json:"is_active"`
}

// Repository defines API key persistence. Reads for authentication go
// through GetBySecretHash against the authoritative store.
type Repository interface {
	Create(ctx context.Context, key *Key) error

	GetByID(ctx context.Context, id string) (*Key, error)

	GetBySecretHash(ctx context.Context, hash string) (*Key, error)

	// Update persists lifecycle transitions (rotation, revocation).
	Update(ctx context.Context, key *Key) error

	ListByTenant(ctx context.Context, tenantID string) ([]*Key, error)
}
