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
	"fmt"
	"strings"
	"time"

	"github.com/agentvox/agentvox/internal/audit"
)

const maxAuditQueryLimit = 500

// AuditRepository implements audit.Store. The table is insert-only; this type
// deliberately has no update or delete path.
type AuditRepository struct {
	db *DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Append writes one entry
func (r *AuditRepository) Append(ctx context.Context, entry audit.Entry) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO audit_log (
			id, ts, actor_id, actor_type, action,
			target_id, target_type, details, ip_address
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		entry.ID(), entry.Timestamp(), entry.ActorID(), entry.ActorType(), string(entry.Action()),
		entry.TargetID(), entry.TargetType(), entry.Details(), entry.IPAddress(),
	)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// Query returns entries matching the filter, ordered by id. ULID ids make
// that timestamp order.
func (r *AuditRepository) Query(ctx context.Context, f audit.Filter) ([]audit.Entry, error) {
	var conds []string
	var args []any

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.ActorID != "" {
		add("actor_id = $%d", f.ActorID)
	}
	if f.TargetID != "" {
		add("target_id = $%d", f.TargetID)
	}
	if f.Action != "" {
		add("action = $%d", string(f.Action))
	}
	if !f.Since.IsZero() {
		add("ts >= $%d", f.Since)
	}
	if !f.Until.IsZero() {
		add("ts < $%d", f.Until)
	}

	query := `
		SELECT id, ts, actor_id, actor_type, action,
			target_id, target_type, details, ip_address
		FROM audit_log`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	limit := f.Limit
	if limit <= 0 || limit > maxAuditQueryLimit {
		limit = maxAuditQueryLimit
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY id DESC LIMIT $%d", len(args))

	rows, err := r.db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var id, actorID, actorType, action, targetID, targetType, ip string
		var ts time.Time
		var details map[string]any
		if err := rows.Scan(&id, &ts, &actorID, &actorType, &action, &targetID, &targetType, &details, &ip); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, audit.Rehydrate(id, ts, actorID, actorType, audit.Action(action), targetID, targetType, details, ip))
	}
	return entries, rows.Err()
}
