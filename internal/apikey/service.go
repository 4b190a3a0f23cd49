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

package apikey

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/agentvox/agentvox/internal/audit"
	"github.com/agentvox/agentvox/internal/authz"
	"github.com/agentvox/agentvox/internal/id"
)

// secretPrefix tags every secret so leaked keys are greppable.
const secretPrefix = "avk_"

// Actor is the authenticated principal performing a management action.
type Actor struct {
	ID    string
	Roles []authz.Role
	IP    string
}

// Service is the API key lifecycle manager.
type Service struct {
	repo     Repository
	cache    *ValidityCache
	recorder audit.Recorder
	now      func() time.Time
}

// NewService creates the lifecycle manager. The cache may be nil, in which
// case every authentication consults the store directly.
func NewService(repo Repository, cache *ValidityCache, recorder audit.Recorder) *Service {
	return &Service{
		repo:     repo,
		cache:    cache,
		recorder: recorder,
		now:      time.Now,
	}
}

// Create issues a new key. Scope validation happens before any state
// mutation; the returned CreatedKey is the only disclosure of the secret.
func (s *Service) Create(ctx context.Context, actor Actor, tenantID, name string, scopes []Scope) (*CreatedKey, error) {
	if err := authz.Require(actor.Roles, authz.PermKeysManage); err != nil {
		return nil, err
	}
	if len(scopes) == 0 {
		return nil, ErrEmptyScopes
	}
	var unknown []string
	for _, scope := range scopes {
		if _, ok := ValidScopes[scope]; !ok {
			unknown = append(unknown, string(scope))
		}
	}
	if len(unknown) > 0 {
		return nil, &UnknownScopeError{Scopes: unknown}
	}

	secret, err := generateSecret()
	if err != nil {
		return nil, err
	}

	key := &Key{
		ID:         id.NewUUIDv7(),
		TenantID:   tenantID,
		Name:       name,
		Prefix:     secret[:PrefixLength],
		SecretHash: hashSecret(secret),
		Scopes:     scopes,
		IsActive:   true,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.repo.Create(ctx, key); err != nil {
		return nil, fmt.Errorf("failed to store api key: %w", err)
	}

	s.audit(ctx, actor, audit.ActionAPIKeyCreated, key.ID, map[string]any{
		"name":   name,
		"scopes": scopeStrings(scopes),
		"prefix": key.Prefix,
	})

	return &CreatedKey{
		ID:        key.ID,
		Name:      key.Name,
		Secret:    secret,
		Prefix:    key.Prefix,
		Scopes:    key.Scopes,
		CreatedAt: key.CreatedAt,
		IsActive:  key.IsActive,
	}, nil
}

// Rotate issues a replacement key and starts the old key's 24h grace window.
// Rotating a revoked or already-rotated key is a conflict, not a silent
// success. Keys outside the actor's tenant are indistinguishable from absent
// keys.
func (s *Service) Rotate(ctx context.Context, actor Actor, tenantID, keyID string) (*CreatedKey, error) {
	if err := authz.Require(actor.Roles, authz.PermKeysManage); err != nil {
		return nil, err
	}

	old, err := s.repo.GetByID(ctx, keyID)
	if err != nil {
		return nil, err
	}
	if old.TenantID != tenantID {
		return nil, ErrKeyNotFound
	}
	if old.RevokedAt != nil || !old.IsActive {
		return nil, &ConflictError{KeyID: keyID, Reason: "cannot rotate a revoked key"}
	}
	if old.RotatedToID != "" {
		return nil, &ConflictError{KeyID: keyID, Reason: "key was already rotated"}
	}

	secret, err := generateSecret()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	replacement := &Key{
		ID:         id.NewUUIDv7(),
		TenantID:   old.TenantID,
		Name:       old.Name,
		Prefix:     secret[:PrefixLength],
		SecretHash: hashSecret(secret),
		Scopes:     old.Scopes,
		IsActive:   true,
		CreatedAt:  now,
	}
	if err := s.repo.Create(ctx, replacement); err != nil {
		return nil, fmt.Errorf("failed to store replacement key: %w", err)
	}

	graceEnd := now.Add(GracePeriod)
	old.RotatedToID = replacement.ID
	old.GracePeriodEnd = &graceEnd
	if err := s.repo.Update(ctx, old); err != nil {
		return nil, fmt.Errorf("failed to mark rotated key: %w", err)
	}
	// the cached record predates the grace window; drop it
	if s.cache != nil {
		s.cache.Invalidate(old.SecretHash)
	}

	s.audit(ctx, actor, audit.ActionAPIKeyRotated, keyID, map[string]any{
		"replacement_id":   replacement.ID,
		"grace_period_end": graceEnd,
	})

	return &CreatedKey{
		ID:        replacement.ID,
		Name:      replacement.Name,
		Secret:    secret,
		Prefix:    replacement.Prefix,
		Scopes:    replacement.Scopes,
		CreatedAt: replacement.CreatedAt,
		IsActive:  true,
	}, nil
}

// Revoke terminates a key immediately. No grace period, no reactivation.
// The confirmed flag is the caller's explicit statement of intent; without
// it nothing is mutated. Keys outside the actor's tenant are indistinguishable
// from absent keys.
func (s *Service) Revoke(ctx context.Context, actor Actor, tenantID, keyID string, confirmed bool) error {
	if err := authz.Require(actor.Roles, authz.PermKeysManage); err != nil {
		return err
	}
	if !confirmed {
		return ErrConfirmationRequired
	}

	key, err := s.repo.GetByID(ctx, keyID)
	if err != nil {
		return err
	}
	if key.TenantID != tenantID {
		return ErrKeyNotFound
	}
	if key.RevokedAt != nil || !key.IsActive {
		return &ConflictError{KeyID: keyID, Reason: "key is already revoked"}
	}

	now := s.now().UTC()
	key.IsActive = false
	key.RevokedAt = &now
	if err := s.repo.Update(ctx, key); err != nil {
		return fmt.Errorf("failed to revoke key: %w", err)
	}
	// revocation beats any cached "active" result, unconditionally
	if s.cache != nil {
		s.cache.Invalidate(key.SecretHash)
	}

	s.audit(ctx, actor, audit.ActionAPIKeyRevoked, keyID, map[string]any{
		"revoked_at": now,
	})
	return nil
}

// Authenticate resolves a presented secret to its key and checks validity at
// the given instant. The cache holds key records, never decisions, so grace
// and revocation boundaries are evaluated fresh on every call.
func (s *Service) Authenticate(ctx context.Context, secret string, at time.Time) (*Key, error) {
	if len(secret) <= PrefixLength {
		return nil, ErrInvalidSecret
	}
	hash := hashSecret(secret)

	var key *Key
	if s.cache != nil {
		key = s.cache.Get(hash)
	}
	if key == nil {
		stored, err := s.repo.GetBySecretHash(ctx, hash)
		if err != nil {
			return nil, err
		}
		key = stored
		if s.cache != nil {
			s.cache.Put(hash, stored)
		}
	}

	if err := key.AuthenticatesAt(at); err != nil {
		return nil, err
	}
	return key, nil
}

// Get returns key metadata. The secret is unrecoverable; only the prefix is
// ever exposed after creation.
func (s *Service) Get(ctx context.Context, actor Actor, keyID string) (*Key, error) {
	if err := authz.Require(actor.Roles, authz.PermKeysView); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, keyID)
}

// List returns all keys for a tenant, metadata only.
func (s *Service) List(ctx context.Context, actor Actor, tenantID string) ([]*Key, error) {
	if err := authz.Require(actor.Roles, authz.PermKeysView); err != nil {
		return nil, err
	}
	return s.repo.ListByTenant(ctx, tenantID)
}

func (s *Service) audit(ctx context.Context, actor Actor, action audit.Action, keyID string, details map[string]any) {
	entry, err := audit.Record(action, actor.ID, "user", keyID, "api_key", details, actor.IP)
	if err != nil {
		slog.ErrorContext(ctx, "failed to build audit entry", slog.Any("error", err))
		return
	}
	if err := s.recorder.Append(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "failed to append audit entry", slog.Any("error", err))
	}
}

// generateSecret draws 32 bytes from the CSPRNG. The first 8 characters of
// the rendered secret double as the stored display prefix.
func generateSecret() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate secret: %w", err)
	}
	return secretPrefix + base64.RawURLEncoding.EncodeToString(raw), nil
}

func hashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

func scopeStrings(scopes []Scope) []string {
	out := make([]string, len(scopes))
	for i, s := range scopes {
		out[i] = string(s)
	}
	return out
}
