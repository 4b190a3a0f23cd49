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

	"github.com/agentvox/agentvox/internal/team"
)

// InviteRepository implements team.InviteRepository
type InviteRepository struct {
	db *DB
}

// NewInviteRepository creates a new invite repository
func NewInviteRepository(db *DB) *InviteRepository {
	return &InviteRepository{db: db}
}

// Create persists an invite
func (r *InviteRepository) Create(ctx context.Context, inv *team.Invite) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO invites (id, tenant_id, email, invited_by, roles, status, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, inv.ID, inv.TenantID, inv.Email, inv.InvitedBy, encodeRoles(inv.Roles), string(inv.Status), inv.CreatedAt, inv.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to insert invite: %w", err)
	}
	return nil
}

// GetByID retrieves an invite by ID
func (r *InviteRepository) GetByID(ctx context.Context, id string) (*team.Invite, error) {
	var inv team.Invite
	var status string
	var rawRoles []string
	err := r.db.pool.QueryRow(ctx, `
		SELECT id, tenant_id, email, invited_by, roles, status, created_at, expires_at
		FROM invites
		WHERE id = $1
	`, id).Scan(&inv.ID, &inv.TenantID, &inv.Email, &inv.InvitedBy, &rawRoles, &status, &inv.CreatedAt, &inv.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, team.ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}
	if inv.Roles, err = decodeRoles(rawRoles); err != nil {
		return nil, fmt.Errorf("failed to decode invite roles: %w", err)
	}
	inv.Status = team.InviteStatus(status)
	return &inv, nil
}

// ListByTenant lists a tenant's invites, newest first
func (r *InviteRepository) ListByTenant(ctx context.Context, tenantID string) ([]*team.Invite, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, tenant_id, email, invited_by, roles, status, created_at, expires_at
		FROM invites
		WHERE tenant_id = $1
		ORDER BY created_at DESC
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}
	defer rows.Close()

	var invites []*team.Invite
	for rows.Next() {
		var inv team.Invite
		var status string
		var rawRoles []string
		if err := rows.Scan(&inv.ID, &inv.TenantID, &inv.Email, &inv.InvitedBy, &rawRoles, &status, &inv.CreatedAt, &inv.ExpiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan invite: %w", err)
		}
		roles, err := decodeRoles(rawRoles)
		if err != nil {
			return nil, fmt.Errorf("failed to decode invite roles: %w", err)
		}
		inv.Roles = roles
		inv.Status = team.InviteStatus(status)
		invites = append(invites, &inv)
	}
	return invites, rows.Err()
}

// UpdateStatus moves an invite through its lifecycle
func (r *InviteRepository) UpdateStatus(ctx context.Context, id string, status team.InviteStatus) error {
	tag, err := r.db.pool.Exec(ctx, `
		UPDATE invites SET status = $2 WHERE id = $1
	`, id, string(status))
	if err != nil {
		return fmt.Errorf("failed to update invite: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return team.ErrInviteNotFound
	}
	return nil
}

// DeleteExpired removes invites whose deadline passed before the cutoff
func (r *InviteRepository) DeleteExpired(ctx context.Context, before time.Time) (int, error) {
	tag, err := r.db.pool.Exec(ctx, `
		DELETE FROM invites WHERE expires_at < $1 AND status = 'pending'
	`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired invites: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
