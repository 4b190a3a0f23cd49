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
	"testing"
	"time"

	"github.com/agentvox/agentvox/internal/audit"
	"github.com/agentvox/agentvox/internal/authz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memberKey struct{ tenantID, userID string }

type fakeMembers struct {
	byKey map[memberKey]*Member
}

func newFakeMembers() *fakeMembers {
	return &fakeMembers{byKey: map[memberKey]*Member{}}
}

func (r *fakeMembers) Add(_ context.Context, m *Member) error {
	stored := *m
	r.byKey[memberKey{m.TenantID, m.UserID}] = &stored
	return nil
}

func (r *fakeMembers) Get(_ context.Context, tenantID, userID string) (*Member, error) {
	if m, ok := r.byKey[memberKey{tenantID, userID}]; ok {
		copied := *m
		return &copied, nil
	}
	return nil, ErrMemberNotFound
}

func (r *fakeMembers) ListByTenant(_ context.Context, tenantID string) ([]*Member, error) {
	var out []*Member
	for k, m := range r.byKey {
		if k.tenantID == tenantID {
			copied := *m
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeMembers) Update(_ context.Context, m *Member) error {
	key := memberKey{m.TenantID, m.UserID}
	if _, ok := r.byKey[key]; !ok {
		return ErrMemberNotFound
	}
	stored := *m
	r.byKey[key] = &stored
	return nil
}

func (r *fakeMembers) Remove(_ context.Context, tenantID, userID string) error {
	key := memberKey{tenantID, userID}
	if _, ok := r.byKey[key]; !ok {
		return ErrMemberNotFound
	}
	delete(r.byKey, key)
	return nil
}

func (r *fakeMembers) CountByTenant(_ context.Context, tenantID string) (int, error) {
	count := 0
	for k := range r.byKey {
		if k.tenantID == tenantID {
			count++
		}
	}
	return count, nil
}

type fakeInvites struct {
	byID map[string]*Invite
}

func newFakeInvites() *fakeInvites {
	return &fakeInvites{byID: map[string]*Invite{}}
}

func (r *fakeInvites) Create(_ context.Context, inv *Invite) error {
	stored := *inv
	r.byID[inv.ID] = &stored
	return nil
}

func (r *fakeInvites) GetByID(_ context.Context, id string) (*Invite, error) {
	if inv, ok := r.byID[id]; ok {
		copied := *inv
		return &copied, nil
	}
	return nil, ErrInviteNotFound
}

func (r *fakeInvites) ListByTenant(_ context.Context, tenantID string) ([]*Invite, error) {
	var out []*Invite
	for _, inv := range r.byID {
		if inv.TenantID == tenantID {
			copied := *inv
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeInvites) UpdateStatus(_ context.Context, id string, status InviteStatus) error {
	inv, ok := r.byID[id]
	if !ok {
		return ErrInviteNotFound
	}
	inv.Status = status
	return nil
}

func (r *fakeInvites) DeleteExpired(_ context.Context, before time.Time) (int, error) {
	deleted := 0
	for id, inv := range r.byID {
		if inv.ExpiresAt.Before(before) {
			delete(r.byID, id)
			deleted++
		}
	}
	return deleted, nil
}

type fakePlans struct {
	byTenant map[string]Plan
}

func (p *fakePlans) PlanForTenant(_ context.Context, tenantID string) (Plan, error) {
	if plan, ok := p.byTenant[tenantID]; ok {
		return plan, nil
	}
	return PlanFree, nil
}

type fakeRevoker struct {
	revokedUsers []string
	count        int
}

func (r *fakeRevoker) RevokeAllForUser(_ context.Context, userID, _, _ string) (int, error) {
	r.revokedUsers = append(r.revokedUsers, userID)
	return r.count, nil
}

type captureRecorder struct{ entries []audit.Entry }

func (r *captureRecorder) Append(_ context.Context, e audit.Entry) error {
	r.entries = append(r.entries, e)
	return nil
}

func owner() Actor {
	return Actor{ID: "user-owner", Roles: []authz.Role{authz.RoleOwner}, IP: "10.0.0.1"}
}

type fixture struct {
	enforcer *Enforcer
	members  *fakeMembers
	invites  *fakeInvites
	plans    *fakePlans
	revoker  *fakeRevoker
	recorder *captureRecorder
}

func newFixture() *fixture {
	members := newFakeMembers()
	invites := newFakeInvites()
	plans := &fakePlans{byTenant: map[string]Plan{"tenant-1": PlanPro}}
	revoker := &fakeRevoker{count: 2}
	recorder := &captureRecorder{}
	return &fixture{
		enforcer: NewEnforcer(members, invites, DefaultLimits(), plans, revoker, recorder),
		members:  members,
		invites:  invites,
		plans:    plans,
		revoker:  revoker,
		recorder: recorder,
	}
}

func (f *fixture) addMember(t *testing.T, userID string, roles ...authz.Role) {
	t.Helper()
	require.NoError(t, f.members.Add(context.Background(), &Member{
		TenantID: "tenant-1",
		UserID:   userID,
		Email:    userID + "@example.com",
		Roles:    roles,
		JoinedAt: time.Now().UTC(),
	}))
}

// TestPurpose: Verifies invite expiry arithmetic: expires_at is exactly seven days past creation, and a resend issues a new invite with a freshly computed deadline instead of extending the old one.
// Scope: Unit Test
// Security: Invitation Window Control
// Expected: Created invite carries expires_at = now + 168h; resending five days later yields a distinct invite expiring seven days after the resend, with the old invite marked expired.
// Test Case ID: TEAM-02
func TestEnforcer_InviteExpiry(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	t0 := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	f.enforcer.now = func() time.Time { return t0 }

	invite, err := f.enforcer.InviteMember(ctx, owner(), "tenant-1", "new@example.com", []authz.Role{authz.RoleDeveloper})
	require.NoError(t, err)
	assert.Equal(t, t0.Add(7*24*time.Hour), invite.ExpiresAt)
	assert.True(t, invite.Redeemable(t0.Add(7*24*time.Hour-time.Second)))
	assert.False(t, invite.Redeemable(t0.Add(7*24*time.Hour)), "expiry boundary is exclusive")

	t1 := t0.Add(5 * 24 * time.Hour)
	f.enforcer.now = func() time.Time { return t1 }

	fresh, err := f.enforcer.ResendInvite(ctx, owner(), "tenant-1", invite.ID)
	require.NoError(t, err)
	assert.NotEqual(t, invite.ID, fresh.ID, "resend creates a new record")
	assert.Equal(t, t1.Add(7*24*time.Hour), fresh.ExpiresAt)

	old, err := f.invites.GetByID(ctx, invite.ID)
	require.NoError(t, err)
	assert.Equal(t, InviteStatusExpired, old.Status)
}

// TestPurpose: Verifies the member ceiling comes from the tenant's stored plan and follows plan changes.
// Scope: Unit Test
// Security: Quota Integrity (plan is tenant state, not request input)
// Expected: A free tenant at three members cannot invite a fourth; after the stored plan changes to pro the same invite succeeds.
// Test Case ID: TEAM-05
func TestEnforcer_InviteBlockedByQuota(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.plans.byTenant["tenant-1"] = PlanFree
	f.addMember(t, "u1", authz.RoleOwner)
	f.addMember(t, "u2", authz.RoleDeveloper)
	f.addMember(t, "u3", authz.RoleViewer)

	_, err := f.enforcer.InviteMember(ctx, owner(), "tenant-1", "fourth@example.com", []authz.Role{authz.RoleViewer})
	var quotaErr *QuotaExceededError
	require.ErrorAs(t, err, &quotaErr)
	assert.Equal(t, 3, quotaErr.Limit)
	assert.Equal(t, 3, quotaErr.Current)

	// same team after an upgrade recorded in tenant state
	f.plans.byTenant["tenant-1"] = PlanPro
	_, err = f.enforcer.InviteMember(ctx, owner(), "tenant-1", "fourth@example.com", []authz.Role{authz.RoleViewer})
	assert.NoError(t, err)
}

func TestEnforcer_InviteRequiresTeamManage(t *testing.T) {
	f := newFixture()
	viewer := Actor{ID: "user-v", Roles: []authz.Role{authz.RoleViewer}}

	_, err := f.enforcer.InviteMember(context.Background(), viewer, "tenant-1", "x@example.com", []authz.Role{authz.RoleViewer})
	assert.ErrorIs(t, err, authz.ErrAccessDenied)
}

func TestEnforcer_AcceptInvite(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	t0 := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	f.enforcer.now = func() time.Time { return t0 }

	invite, err := f.enforcer.InviteMember(ctx, owner(), "tenant-1", "new@example.com", []authz.Role{authz.RoleDeveloper})
	require.NoError(t, err)

	redeemer := Actor{ID: "user-new", Email: "new@example.com", IP: "10.0.0.3"}
	member, err := f.enforcer.AcceptInvite(ctx, redeemer, invite.ID)
	require.NoError(t, err)
	assert.Equal(t, "tenant-1", member.TenantID)
	assert.Equal(t, "user-new", member.UserID)

	stored, err := f.invites.GetByID(ctx, invite.ID)
	require.NoError(t, err)
	assert.Equal(t, InviteStatusAccepted, stored.Status)

	// a redeemed invite cannot be redeemed again
	_, err = f.enforcer.AcceptInvite(ctx, redeemer, invite.ID)
	assert.ErrorIs(t, err, ErrInviteExpired)
}

// TestPurpose: Verifies invite redemption binds identity and roles to server-side state: the invite's email gates the redeemer and the invite's recorded roles are what the member receives.
// Scope: Unit Test
// Security: Privilege Escalation Prevention (invite redemption)
// Expected: A caller whose email differs from the invite's is rejected; the matching caller joins with exactly the roles the inviter recorded, regardless of the roles on their own actor.
// Test Case ID: TEAM-06
func TestEnforcer_AcceptInvite_BindsIdentityAndRoles(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	invite, err := f.enforcer.InviteMember(ctx, owner(), "tenant-1", "bob@example.com", []authz.Role{authz.RoleViewer})
	require.NoError(t, err)

	intruder := Actor{ID: "user-m", Email: "mallory@example.com", Roles: []authz.Role{authz.RoleOwner}}
	_, err = f.enforcer.AcceptInvite(ctx, intruder, invite.ID)
	assert.ErrorIs(t, err, ErrInviteMismatch)
	_, err = f.members.Get(ctx, "tenant-1", "user-m")
	assert.ErrorIs(t, err, ErrMemberNotFound, "rejected redemption must not add a member")

	bob := Actor{ID: "user-bob", Email: "Bob@Example.com", Roles: []authz.Role{authz.RoleOwner}}
	member, err := f.enforcer.AcceptInvite(ctx, bob, invite.ID)
	require.NoError(t, err)
	assert.Equal(t, "user-bob", member.UserID)
	assert.Equal(t, []authz.Role{authz.RoleViewer}, member.Roles,
		"granted roles come from the invite, not the redeemer")

	last := f.recorder.entries[len(f.recorder.entries)-1]
	assert.Equal(t, audit.ActionMemberJoined, last.Action())
	assert.Equal(t, "user-bob", last.ActorID())
}

func TestEnforcer_ResendInvite_TenantScoped(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	invite, err := f.enforcer.InviteMember(ctx, owner(), "tenant-1", "new@example.com", []authz.Role{authz.RoleViewer})
	require.NoError(t, err)

	_, err = f.enforcer.ResendInvite(ctx, owner(), "tenant-2", invite.ID)
	assert.ErrorIs(t, err, ErrInviteNotFound)

	stored, err := f.invites.GetByID(ctx, invite.ID)
	require.NoError(t, err)
	assert.Equal(t, InviteStatusPending, stored.Status, "foreign-tenant resend must not expire the invite")
}

func TestEnforcer_AcceptExpiredInvite(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	t0 := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	f.enforcer.now = func() time.Time { return t0 }

	invite, err := f.enforcer.InviteMember(ctx, owner(), "tenant-1", "late@example.com", []authz.Role{authz.RoleViewer})
	require.NoError(t, err)

	f.enforcer.now = func() time.Time { return t0.Add(8 * 24 * time.Hour) }
	late := Actor{ID: "user-late", Email: "late@example.com"}
	_, err = f.enforcer.AcceptInvite(ctx, late, invite.ID)
	assert.ErrorIs(t, err, ErrInviteExpired)
}

// TestPurpose: Verifies member-removal guardrails: the last owner cannot be removed, nobody can remove themself, and a successful removal revokes the member's sessions.
// Scope: Unit Test
// Security: Tenant Lockout Prevention, Session Hygiene
// Expected: Removing the sole owner fails with ErrLastOwner; actor removing their own membership fails with ErrSelfRemoval; removing an ordinary member succeeds and triggers session revocation plus an audit entry.
// Test Case ID: TEAM-03
func TestEnforcer_RemoveMemberGuardrails(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.addMember(t, "user-owner", authz.RoleOwner)
	f.addMember(t, "user-dev", authz.RoleDeveloper)

	err := f.enforcer.RemoveMember(ctx, owner(), "tenant-1", "user-owner")
	assert.ErrorIs(t, err, ErrSelfRemoval, "self-removal beats every other rule")

	admin := Actor{ID: "user-dev", Roles: []authz.Role{authz.RoleOwner}}
	err = f.enforcer.RemoveMember(ctx, admin, "tenant-1", "user-owner")
	assert.ErrorIs(t, err, ErrLastOwner)

	require.NoError(t, f.enforcer.RemoveMember(ctx, owner(), "tenant-1", "user-dev"))
	assert.Equal(t, []string{"user-dev"}, f.revoker.revokedUsers)

	require.NotEmpty(t, f.recorder.entries)
	last := f.recorder.entries[len(f.recorder.entries)-1]
	assert.Equal(t, audit.ActionMemberRemoved, last.Action())
	assert.Equal(t, 2, last.Details()["sessions_revoked"])
}

func TestEnforcer_RemoveMember_SecondOwnerMayGo(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.addMember(t, "user-owner", authz.RoleOwner)
	f.addMember(t, "user-owner-2", authz.RoleOwner)

	assert.NoError(t, f.enforcer.RemoveMember(ctx, owner(), "tenant-1", "user-owner-2"))
}

// TestPurpose: Verifies role changes audit the full before and after role sets and honor last-owner protection.
// Scope: Unit Test
// Security: Privilege Change Traceability
// Expected: Changing a developer to billing records old_roles and new_roles; demoting the sole owner fails with ErrLastOwner.
// Test Case ID: TEAM-04
func TestEnforcer_ChangeRole(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.addMember(t, "user-owner", authz.RoleOwner)
	f.addMember(t, "user-dev", authz.RoleDeveloper)

	err := f.enforcer.ChangeRole(ctx, owner(), "tenant-1", "user-dev", []authz.Role{authz.RoleBilling})
	require.NoError(t, err)

	last := f.recorder.entries[len(f.recorder.entries)-1]
	assert.Equal(t, audit.ActionRoleChanged, last.Action())
	assert.Equal(t, []string{"customer/developer"}, last.Details()["old_roles"])
	assert.Equal(t, []string{"customer/billing"}, last.Details()["new_roles"])

	err = f.enforcer.ChangeRole(ctx, owner(), "tenant-1", "user-owner", []authz.Role{authz.RoleAdmin})
	assert.ErrorIs(t, err, ErrLastOwner, "sole owner cannot be demoted")

	err = f.enforcer.ChangeRole(ctx, owner(), "tenant-1", "user-dev", nil)
	assert.ErrorIs(t, err, ErrNoRoles)
}
