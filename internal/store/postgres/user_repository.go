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
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/agentvox/agentvox/internal/identity"
)

// UserRepository implements identity.Repository
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *identity.User) error {
	now := time.Now().UTC()
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO users (
			id, tenant_id, email, username, roles,
			password_hash, mfa_enabled, mfa_secret,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		user.ID, user.TenantID, user.Email, user.Username, encodeRoles(user.Roles),
		user.PasswordHash, user.MFAEnabled, user.MFASecret,
		now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	user.CreatedAt = now
	user.UpdatedAt = now

	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*identity.User, error) {
	return r.get(ctx, `
		SELECT id, tenant_id, email, username, roles,
			password_hash, mfa_enabled, mfa_secret,
			created_at, updated_at
		FROM users
		WHERE id = $1
	`, id)
}

// GetByEmail retrieves a user by email within a tenant
func (r *UserRepository) GetByEmail(ctx context.Context, tenantID, email string) (*identity.User, error) {
	return r.get(ctx, `
		SELECT id, tenant_id, email, username, roles,
			password_hash, mfa_enabled, mfa_secret,
			created_at, updated_at
		FROM users
		WHERE tenant_id = $1 AND email = $2
	`, tenantID, email)
}

// Update persists changes to a user
func (r *UserRepository) Update(ctx context.Context, user *identity.User) error {
	now := time.Now().UTC()
	tag, err := r.db.pool.Exec(ctx, `
		UPDATE users SET
			email = $2, username = $3, roles = $4,
			password_hash = $5, mfa_enabled = $6, mfa_secret = $7,
			updated_at = $8
		WHERE id = $1
	`,
		user.ID, user.Email, user.Username, encodeRoles(user.Roles),
		user.PasswordHash, user.MFAEnabled, user.MFASecret,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}

	user.UpdatedAt = now
	return nil
}

func (r *UserRepository) get(ctx context.Context, query string, args ...any) (*identity.User, error) {
	var user identity.User
	var rawRoles []string

	err := r.db.pool.QueryRow(ctx, query, args...).Scan(
		&user.ID, &user.TenantID, &user.Email, &user.Username, &rawRoles,
		&user.PasswordHash, &user.MFAEnabled, &user.MFASecret,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	roles, err := decodeRoles(rawRoles)
	if err != nil {
		return nil, fmt.Errorf("failed to decode roles for user %s: %w", user.ID, err)
	}
	user.Roles = roles

	return &user, nil
}
