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

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/agentvox/agentvox/internal/apikey"
)

// APIKeyRepository implements apikey.Repository. Only the SHA-256 hash of a
// secret ever reaches this table.
type APIKeyRepository struct {
	db *DB
}

// NewAPIKeyRepository creates a new API key repository
func NewAPIKeyRepository(db *DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// Create persists a freshly issued key
func (r *APIKeyRepository) Create(ctx context.Context, key *apikey.Key) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO api_keys (
			id, tenant_id, name, prefix, secret_hash, scopes,
			is_active, created_at, revoked_at, rotated_to_id, grace_period_end
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		key.ID, key.TenantID, key.Name, key.Prefix, key.SecretHash, encodeScopes(key.Scopes),
		key.IsActive, key.CreatedAt, key.RevokedAt, key.RotatedToID, key.GracePeriodEnd,
	)
	if err != nil {
		return fmt.Errorf("failed to insert api key: %w", err)
	}
	return nil
}

// GetByID retrieves a key by ID
func (r *APIKeyRepository) GetByID(ctx context.Context, id string) (*apikey.Key, error) {
	return r.get(ctx, `
		SELECT id, tenant_id, name, prefix, secret_hash, scopes,
			is_active, created_at, revoked_at, rotated_to_id, grace_period_end
		FROM api_keys
		WHERE id = $1
	`, id)
}

// GetBySecretHash retrieves a key by the hash of its secret
func (r *APIKeyRepository) GetBySecretHash(ctx context.Context, hash string) (*apikey.Key, error) {
	return r.get(ctx, `
		SELECT id, tenant_id, name, prefix, secret_hash, scopes,
			is_active, created_at, revoked_at, rotated_to_id, grace_period_end
		FROM api_keys
		WHERE secret_hash = $1
	`, hash)
}

// Update persists lifecycle transitions
func (r *APIKeyRepository) Update(ctx context.Context, key *apikey.Key) error {
	tag, err := r.db.pool.Exec(ctx, `
		UPDATE api_keys SET
			name = $2, is_active = $3, revoked_at = $4,
			rotated_to_id = $5, grace_period_end = $6
		WHERE id = $1
	`, key.ID, key.Name, key.IsActive, key.RevokedAt, key.RotatedToID, key.GracePeriodEnd)
	if err != nil {
		return fmt.Errorf("failed to update api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apikey.ErrKeyNotFound
	}
	return nil
}

// ListByTenant lists all keys for a tenant, newest first
func (r *APIKeyRepository) ListByTenant(ctx context.Context, tenantID string) ([]*apikey.Key, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, tenant_id, name, prefix, secret_hash, scopes,
			is_active, created_at, revoked_at, rotated_to_id, grace_period_end
		FROM api_keys
		WHERE tenant_id = $1
		ORDER BY created_at DESC
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list api keys: %w", err)
	}
	defer rows.Close()

	var keys []*apikey.Key
	for rows.Next() {
		key, err := scanKey(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func (r *APIKeyRepository) get(ctx context.Context, query string, args ...any) (*apikey.Key, error) {
	key, err := scanKey(r.db.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apikey.ErrKeyNotFound
		}
		return nil, err
	}
	return key, nil
}

func scanKey(row pgx.Row) (*apikey.Key, error) {
	var key apikey.Key
	var rawScopes []string
	err := row.Scan(
		&key.ID, &key.TenantID, &key.Name, &key.Prefix, &key.SecretHash, &rawScopes,
		&key.IsActive, &key.CreatedAt, &key.RevokedAt, &key.RotatedToID, &key.GracePeriodEnd,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan api key: %w", err)
	}
	key.Scopes = decodeScopes(rawScopes)
	return &key, nil
}

func encodeScopes(scopes []apikey.Scope) []string {
	out := make([]string, 0, len(scopes))
	for _, s := range scopes {
		out = append(out, string(s))
	}
	return out
}

func decodeScopes(raw []string) []apikey.Scope {
	out := make([]apikey.Scope, 0, len(raw))
	for _, s := range raw {
		out = append(out, apikey.Scope(s))
	}
	return out
}
