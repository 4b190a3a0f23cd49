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

// TenantRepository implements team.PlanSource backed by the tenants table.
type TenantRepository struct {
	db *DB
}

// NewTenantRepository creates a new tenant repository
func NewTenantRepository(db *DB) *TenantRepository {
	return &TenantRepository{db: db}
}

// PlanForTenant returns the tenant's stored plan. Tenants without a row get
// the free plan, the most restrictive ceiling.
func (r *TenantRepository) PlanForTenant(ctx context.Context, tenantID string) (team.Plan, error) {
	var plan string
	err := r.db.pool.QueryRow(ctx, `
		SELECT plan FROM tenants WHERE id = $1
	`, tenantID).Scan(&plan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return team.PlanFree, nil
		}
		return "", fmt.Errorf("failed to get tenant plan: %w", err)
	}
	return team.Plan(plan), nil
}

// SetPlan records a plan change for a tenant, creating the row if the tenant
// has never been billed before.
func (r *TenantRepository) SetPlan(ctx context.Context, tenantID string, plan team.Plan) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO tenants (id, plan, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET plan = EXCLUDED.plan
	`, tenantID, string(plan), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set tenant plan: %w", err)
	}
	return nil
}
