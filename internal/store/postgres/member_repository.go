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

	"github.com/agentvox/agentvox/internal/team"
)

// MemberRepository implements team.MemberRepository
type MemberRepository struct {
	db *DB
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db *DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// Add adds a member to a tenant
func (r *MemberRepository) Add(ctx context.Context, m *team.Member) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO members (tenant_id, user_id, email, roles, joined_at)
		VALUES ($1, $2, $3, $4, $5)
	`, m.TenantID, m.UserID, m.Email, encodeRoles(m.Roles), m.JoinedAt)
	if err != nil {
		return fmt.Errorf("failed to insert member: %w", err)
	}
	return nil
}

// Get retrieves one membership
func (r *MemberRepository) Get(ctx context.Context, tenantID, userID string) (*team.Member, error) {
	var m team.Member
	var rawRoles []string
	err := r.db.pool.QueryRow(ctx, `
		SELECT tenant_id, user_id, email, roles, joined_at
		FROM members
		WHERE tenant_id = $1 AND user_id = $2
	`, tenantID, userID).Scan(&m.TenantID, &m.UserID, &m.Email, &rawRoles, &m.JoinedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, team.ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	roles, err := decodeRoles(rawRoles)
	if err != nil {
		return nil, fmt.Errorf("failed to decode roles for member %s: %w", m.UserID, err)
	}
	m.Roles = roles
	return &m, nil
}

// ListByTenant lists a tenant's members
func (r *MemberRepository) ListByTenant(ctx context.Context, tenantID string) ([]*team.Member, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT tenant_id, user_id, email, roles, joined_at
		FROM members
		WHERE tenant_id = $1
		ORDER BY joined_at
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*team.Member
	for rows.Next() {
		var m team.Member
		var rawRoles []string
		if err := rows.Scan(&m.TenantID, &m.UserID, &m.Email, &rawRoles, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		roles, err := decodeRoles(rawRoles)
		if err != nil {
			return nil, fmt.Errorf("failed to decode roles for member %s: %w", m.UserID, err)
		}
		m.Roles = roles
		members = append(members, &m)
	}
	return members, rows.Err()
}

// Update replaces a member's role set
func (r *MemberRepository) Update(ctx context.Context, m *team.Member) error {
	tag, err := r.db.pool.Exec(ctx, `
		UPDATE members SET email = $3, roles = $4
		WHERE tenant_id = $1 AND user_id = $2
	`, m.TenantID, m.UserID, m.Email, encodeRoles(m.Roles))
	if err != nil {
		return fmt.Errorf("failed to update member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return team.ErrMemberNotFound
	}
	return nil
}

// Remove deletes a membership
func (r *MemberRepository) Remove(ctx context.Context, tenantID, userID string) error {
	tag, err := r.db.pool.Exec(ctx, `
		DELETE FROM members WHERE tenant_id = $1 AND user_id = $2
	`, tenantID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return team.ErrMemberNotFound
	}
	return nil
}

// CountByTenant counts a tenant's members
func (r *MemberRepository) CountByTenant(ctx context.Context, tenantID string) (int, error) {
	var count int
	err := r.db.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM members WHERE tenant_id = $1
	`, tenantID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	return count, nil
}
