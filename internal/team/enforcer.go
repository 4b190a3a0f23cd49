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

package team

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/agentvox/agentvox/internal/audit"
	"github.com/agentvox/agentvox/internal/authz"
	"github.com/agentvox/agentvox/internal/id"
)

// Actor is the authenticated principal performing a membership action.
type Actor struct {
	ID    string
	Email string
	Roles []authz.Role
	IP    string
}

// Enforcer applies plan quotas and membership rules for a tenant. Plans are
// resolved from stored tenant state through the PlanSource; no operation
// trusts a caller-supplied plan.
type Enforcer struct {
	members  MemberRepository
	invites  InviteRepository
	limits   Limits
	plans    PlanSource
	sessions SessionRevoker
	recorder audit.Recorder
	now      func() time.Time
}

func NewEnforcer(members MemberRepository, invites InviteRepository, limits Limits, plans PlanSource, sessions SessionRevoker, recorder audit.Recorder) *Enforcer {
	return &Enforcer{
		members:  members,
		invites:  invites,
		limits:   limits,
		plans:    plans,
		sessions: sessions,
		recorder: recorder,
		now:      time.Now,
	}
}

// CheckQuota reports member headroom for a tenant under its stored plan.
func (e *Enforcer) CheckQuota(ctx context.Context, tenantID string) (Quota, error) {
	plan, err := e.plans.PlanForTenant(ctx, tenantID)
	if err != nil {
		return Quota{}, fmt.Errorf("resolve plan: %w", err)
	}
	count, err := e.members.CountByTenant(ctx, tenantID)
	if err != nil {
		return Quota{}, fmt.Errorf("count members: %w", err)
	}
	return e.limits.CheckQuota(count, plan), nil
}

// InviteMember creates a pending invite carrying the roles the new member
// will receive. The invite expires exactly seven days after creation.
func (e *Enforcer) InviteMember(ctx context.Context, actor Actor, tenantID, email string, roles []authz.Role) (*Invite, error) {
	if err := authz.Require(actor.Roles, authz.PermTeamManage); err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		return nil, ErrNoRoles
	}

	plan, err := e.plans.PlanForTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("resolve plan: %w", err)
	}
	count, err := e.members.CountByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("count members: %w", err)
	}
	if q := e.limits.CheckQuota(count, plan); !q.Allowed {
		return nil, &QuotaExceededError{Plan: plan, Limit: q.Limit, Current: q.Current}
	}

	now := e.now().UTC()
	invite := &Invite{
		ID:        id.NewUUIDv7(),
		TenantID:  tenantID,
		Email:     email,
		InvitedBy: actor.ID,
		Roles:     roles,
		Status:    InviteStatusPending,
		CreatedAt: now,
		ExpiresAt: now.Add(InviteExpiry),
	}
	if err := e.invites.Create(ctx, invite); err != nil {
		return nil, fmt.Errorf("create invite: %w", err)
	}

	e.record(ctx, actor, audit.ActionMemberInvited, invite.ID, "invite", map[string]any{
		"email":      email,
		"tenant_id":  tenantID,
		"roles":      roleStrings(roles),
		"expires_at": invite.ExpiresAt,
	})
	return invite, nil
}

// ResendInvite issues a fresh invite for the same address and roles. The old
// invite is marked expired; its deadline is never extended in place. Invites
// belonging to other tenants are indistinguishable from absent ones.
func (e *Enforcer) ResendInvite(ctx context.Context, actor Actor, tenantID, inviteID string) (*Invite, error) {
	if err := authz.Require(actor.Roles, authz.PermTeamManage); err != nil {
		return nil, err
	}

	old, err := e.invites.GetByID(ctx, inviteID)
	if err != nil {
		return nil, err
	}
	if old.TenantID != tenantID {
		return nil, ErrInviteNotFound
	}
	if old.Status == InviteStatusPending {
		if err := e.invites.UpdateStatus(ctx, old.ID, InviteStatusExpired); err != nil {
			return nil, fmt.Errorf("expire invite: %w", err)
		}
	}

	now := e.now().UTC()
	fresh := &Invite{
		ID:        id.NewUUIDv7(),
		TenantID:  old.TenantID,
		Email:     old.Email,
		InvitedBy: actor.ID,
		Roles:     old.Roles,
		Status:    InviteStatusPending,
		CreatedAt: now,
		ExpiresAt: now.Add(InviteExpiry),
	}
	if err := e.invites.Create(ctx, fresh); err != nil {
		return nil, fmt.Errorf("create invite: %w", err)
	}

	e.record(ctx, actor, audit.ActionMemberInvited, fresh.ID, "invite", map[string]any{
		"email":      fresh.Email,
		"tenant_id":  fresh.TenantID,
		"expires_at": fresh.ExpiresAt,
		"resend_of":  old.ID,
	})
	return fresh, nil
}

// AcceptInvite redeems a pending invite on behalf of the authenticated
// actor. The member's identity comes from the actor, the granted roles from
// the invite; neither is negotiable at redemption. The quota is re-checked
// at redemption time since the team may have filled up while the invite was
// outstanding.
func (e *Enforcer) AcceptInvite(ctx context.Context, actor Actor, inviteID string) (*Member, error) {
	invite, err := e.invites.GetByID(ctx, inviteID)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(invite.Email, actor.Email) {
		return nil, ErrInviteMismatch
	}
	if len(invite.Roles) == 0 {
		return nil, ErrNoRoles
	}
	now := e.now().UTC()
	if !invite.Redeemable(now) {
		return nil, ErrInviteExpired
	}

	plan, err := e.plans.PlanForTenant(ctx, invite.TenantID)
	if err != nil {
		return nil, fmt.Errorf("resolve plan: %w", err)
	}
	count, err := e.members.CountByTenant(ctx, invite.TenantID)
	if err != nil {
		return nil, fmt.Errorf("count members: %w", err)
	}
	if q := e.limits.CheckQuota(count, plan); !q.Allowed {
		return nil, &QuotaExceededError{Plan: plan, Limit: q.Limit, Current: q.Current}
	}

	member := &Member{
		TenantID: invite.TenantID,
		UserID:   actor.ID,
		Email:    invite.Email,
		Roles:    invite.Roles,
		JoinedAt: now,
	}
	if err := e.members.Add(ctx, member); err != nil {
		return nil, fmt.Errorf("add member: %w", err)
	}
	if err := e.invites.UpdateStatus(ctx, invite.ID, InviteStatusAccepted); err != nil {
		return nil, fmt.Errorf("accept invite: %w", err)
	}

	e.record(ctx, actor, audit.ActionMemberJoined, actor.ID, "user", map[string]any{
		"tenant_id": invite.TenantID,
		"invite_id": invite.ID,
		"roles":     roleStrings(invite.Roles),
	})
	return member, nil
}

// RemoveMember removes a user from a tenant and revokes their sessions.
// Self-removal and removing the last owner are both rejected.
func (e *Enforcer) RemoveMember(ctx context.Context, actor Actor, tenantID, userID string) error {
	if err := authz.Require(actor.Roles, authz.PermTeamManage); err != nil {
		return err
	}
	if actor.ID == userID {
		return ErrSelfRemoval
	}

	target, err := e.members.Get(ctx, tenantID, userID)
	if err != nil {
		return err
	}
	if target.hasRole(authz.RoleOwner) {
		owners, err := e.countOwners(ctx, tenantID)
		if err != nil {
			return err
		}
		if owners <= 1 {
			return ErrLastOwner
		}
	}

	if err := e.members.Remove(ctx, tenantID, userID); err != nil {
		return fmt.Errorf("remove member: %w", err)
	}

	revoked := 0
	if e.sessions != nil {
		revoked, err = e.sessions.RevokeAllForUser(ctx, userID, actor.ID, actor.IP)
		if err != nil {
			slog.WarnContext(ctx, "failed to revoke sessions for removed member",
				slog.String("user_id", userID), slog.Any("error", err))
		}
	}

	e.record(ctx, actor, audit.ActionMemberRemoved, userID, "user", map[string]any{
		"tenant_id":        tenantID,
		"sessions_revoked": revoked,
	})
	return nil
}

// ChangeRole replaces a member's role set and audits the transition.
func (e *Enforcer) ChangeRole(ctx context.Context, actor Actor, tenantID, userID string, roles []authz.Role) error {
	if err := authz.Require(actor.Roles, authz.PermTeamManage); err != nil {
		return err
	}
	if len(roles) == 0 {
		return ErrNoRoles
	}

	member, err := e.members.Get(ctx, tenantID, userID)
	if err != nil {
		return err
	}

	if member.hasRole(authz.RoleOwner) && !hasRole(roles, authz.RoleOwner) {
		owners, err := e.countOwners(ctx, tenantID)
		if err != nil {
			return err
		}
		if owners <= 1 {
			return ErrLastOwner
		}
	}

	oldRoles := roleStrings(member.Roles)
	member.Roles = roles
	if err := e.members.Update(ctx, member); err != nil {
		return fmt.Errorf("update member: %w", err)
	}

	e.record(ctx, actor, audit.ActionRoleChanged, userID, "user", map[string]any{
		"tenant_id": tenantID,
		"old_roles": oldRoles,
		"new_roles": roleStrings(roles),
	})
	return nil
}

func (e *Enforcer) countOwners(ctx context.Context, tenantID string) (int, error) {
	members, err := e.members.ListByTenant(ctx, tenantID)
	if err != nil {
		return 0, fmt.Errorf("list members: %w", err)
	}
	owners := 0
	for _, m := range members {
		if m.hasRole(authz.RoleOwner) {
			owners++
		}
	}
	return owners, nil
}

func (e *Enforcer) record(ctx context.Context, actor Actor, action audit.Action, targetID, targetType string, details map[string]any) {
	entry, err := audit.Record(action, actor.ID, "user", targetID, targetType, details, actor.IP)
	if err != nil {
		slog.ErrorContext(ctx, "failed to build audit entry", slog.Any("error", err))
		return
	}
	if err := e.recorder.Append(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "failed to append audit entry", slog.Any("error", err))
	}
}

func hasRole(roles []authz.Role, want authz.Role) bool {
	for _, r := range roles {
		if r == want {
			return true
		}
	}
	return false
}

func roleStrings(roles []authz.Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, r.String())
	}
	return out
}
