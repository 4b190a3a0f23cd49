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

// Package team manages tenant memberships: invites, plan quotas, role
// changes, and member removal.
package team

import (
	"context"
	"errors"
	"time"

	"github.com/agentvox/agentvox/internal/authz"
)

// Domain errors.
var (
	ErrMemberNotFound = errors.New("member not found")
	ErrInviteNotFound = errors.New("invite not found")
	ErrInviteExpired  = errors.New("invite has expired")
	ErrInviteMismatch = errors.New("invite was issued to a different email address")
	ErrSelfRemoval    = errors.New("members cannot remove themselves")
	ErrLastOwner      = errors.New("tenant must retain at least one owner")
	ErrNoRoles        = errors.New("membership requires at least one role")
)

// Plan identifies a tenant's billing plan. The member ceiling per plan is
// owned by the billing system and injected here as Limits.
type Plan string

const (
	PlanFree       Plan = "free"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

// PlanSource resolves a tenant's current plan from stored tenant state.
// The plan is never accepted from a request; callers that let clients name
// their own plan would let a free tenant claim an unbounded ceiling.
type PlanSource interface {
	PlanForTenant(ctx context.Context, tenantID string) (Plan, error)
}

// InviteExpiry is how long an invite stays redeemable. Expiry is stored as a
// timestamp and checked at the moment of use; nothing mutates invites on a
// timer.
const InviteExpiry = 7 * 24 * time.Hour

type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "pending"
	InviteStatusAccepted InviteStatus = "accepted"
	InviteStatusExpired  InviteStatus = "expired"
)

// Invite is a pending offer of tenant membership. The granted roles are
// fixed by the inviter at creation; the redeemer never chooses their own.
type Invite struct {
	ID        string       `json:"id"`
	TenantID  string       `json:"tenant_id"`
	Email     string       `json:"email"`
	InvitedBy string       `json:"invited_by"`
	Roles     []authz.Role `json:"roles"`
	Status    InviteStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// Redeemable reports whether the invite can still be accepted at the given
// instant. The expiry boundary is exclusive.
func (i *Invite) Redeemable(at time.Time) bool {
	return i.Status == InviteStatusPending && at.Before(i.ExpiresAt)
}

// Member is a user's membership in a tenant together with their role set.
type Member struct {
	TenantID string       `json:"tenant_id"`
	UserID   string       `json:"user_id"`
	Email    string       `json:"email"`
	Roles    []authz.Role `json:"roles"`
	JoinedAt time.Time    `json:"joined_at"`
}

func (m *Member) hasRole(r authz.Role) bool {
	for _, have := range m.Roles {
		if have == r {
			return true
		}
	}
	return false
}

// MemberRepository persists tenant memberships.
type MemberRepository interface {
	Add(ctx context.Context, member *Member) error
	Get(ctx context.Context, tenantID, userID string) (*Member, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*Member, error)
	Update(ctx context.Context, member *Member) error
	Remove(ctx context.Context, tenantID, userID string) error
	CountByTenant(ctx context.Context, tenantID string) (int, error)
}

// InviteRepository persists invites.
type InviteRepository interface {
	Create(ctx context.Context, invite *Invite) error
	GetByID(ctx context.Context, id string) (*Invite, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*Invite, error)
	UpdateStatus(ctx context.Context, id string, status InviteStatus) error
	DeleteExpired(ctx context.Context, before time.Time) (int, error)
}

// SessionRevoker terminates a user's active sessions. Removing a member
// revokes their sessions as a side effect.
type SessionRevoker interface {
	RevokeAllForUser(ctx context.Context, userID, actorID, ip string) (int, error)
}
