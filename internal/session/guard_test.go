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

package session

import (
	"context"
	"testing"
	"time"

	"github.com/agentvox/agentvox/internal/audit"
	"github.com/agentvox/agentvox/internal/authz"
	"github.com/agentvox/agentvox/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	users map[string]*identity.User // by email
}

func (r *fakeUserRepo) Create(_ context.Context, u *identity.User) error {
	r.users[u.Email] = u
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*identity.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, identity.ErrUserNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, tenantID, email string) (*identity.User, error) {
	if u, ok := r.users[email]; ok && u.TenantID == tenantID {
		return u, nil
	}
	return nil, identity.ErrUserNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, u *identity.User) error {
	r.users[u.Email] = u
	return nil
}

type fakeSessionRepo struct {
	sessions map[string]*Session
}

func (r *fakeSessionRepo) Create(_ context.Context, s *Session) error {
	r.sessions[s.ID] = s
	return nil
}

func (r *fakeSessionRepo) Get(_ context.Context, id string) (*Session, error) {
	if s, ok := r.sessions[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, ErrSessionNotFound
}

func (r *fakeSessionRepo) Touch(_ context.Context, id string, seenAt time.Time) error {
	if s, ok := r.sessions[id]; ok {
		s.LastSeenAt = seenAt
		return nil
	}
	return ErrSessionNotFound
}

func (r *fakeSessionRepo) Delete(_ context.Context, id string) error {
	delete(r.sessions, id)
	return nil
}

func (r *fakeSessionRepo) DeleteByUserID(_ context.Context, userID string) (int, error) {
	n := 0
	for id, s := range r.sessions {
		if s.UserID == userID {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeSessionRepo) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	n := 0
	for id, s := range r.sessions {
		if !s.IsValidAt(now) {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}

type staticMFA struct{ valid string }

func (v staticMFA) Verify(_, code string) bool { return code == v.valid }

type discardRecorder struct{ actions []audit.Action }

func (r *discardRecorder) Append(_ context.Context, e audit.Entry) error {
	r.actions = append(r.actions, e.Action())
	return nil
}

func newTestGuard(t *testing.T, mfaCode string) (*Guard, *fakeUserRepo, *fakeSessionRepo, *discardRecorder) {
	t.Helper()

	hasher := identity.NewPasswordHasher(8192, 1, 1, 16, 32) // light params for tests
	tokens, err := NewTokenService([]byte("0123456789abcdef0123456789abcdef"),
		"https://auth.agentvox.dev", "agentvox-console", 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)

	users := &fakeUserRepo{users: map[string]*identity.User{}}
	sessions := &fakeSessionRepo{sessions: map[string]*Session{}}
	recorder := &discardRecorder{}

	return NewGuard(users, sessions, hasher, tokens, staticMFA{valid: mfaCode}, recorder), users, sessions, recorder
}

func seedUser(t *testing.T, guard *Guard, users *fakeUserRepo, mfaEnabled bool) *identity.User {
	t.Helper()
	hash, err := guard.hasher.Hash("s3cret-pass")
	require.NoError(t, err)

	u := &identity.User{
		ID:           "user-1",
		TenantID:     "tenant-1",
		Email:        "dev@example.com",
		Username:     "dev",
		Roles:        []authz.Role{authz.RoleDeveloper},
		PasswordHash: hash,
		MFAEnabled:   mfaEnabled,
		MFASecret:    "JBSWY3DPEHPK3PXP",
	}
	users.users[u.Email] = u
	return u
}

// TestPurpose: Verifies the MFA gate: valid credentials alone on an MFA-enabled account yield partial success, never tokens.
// Scope: Unit Test
// Security: Two-Factor Enforcement
// Expected: Password-only → StatusMFARequired with empty tokens; password+valid code → StatusAuthenticated with tokens; password+bad code → StatusDenied.
// Test Case ID: SES-01
func TestSession_Guard_MFAGate(t *testing.T) {
	guard, users, _, _ := newTestGuard(t, "424242")
	seedUser(t, guard, users, true)
	ctx := context.Background()

	res, err := guard.Login(ctx, "tenant-1", "dev@example.com", "s3cret-pass", "", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, StatusMFARequired, res.Status)
	assert.Empty(t, res.AccessToken)
	assert.Empty(t, res.RefreshToken)

	res, err = guard.Login(ctx, "tenant-1", "dev@example.com", "s3cret-pass", "000000", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, StatusDenied, res.Status)
	assert.Empty(t, res.AccessToken)

	res, err = guard.Login(ctx, "tenant-1", "dev@example.com", "s3cret-pass", "424242", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, StatusAuthenticated, res.Status)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	require.NotNil(t, res.Session)
}

func TestSession_Guard_LoginWithoutMFA(t *testing.T) {
	guard, users, _, recorder := newTestGuard(t, "")
	seedUser(t, guard, users, false)
	ctx := context.Background()

	res, err := guard.Login(ctx, "tenant-1", "dev@example.com", "wrong", "", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, StatusDenied, res.Status)

	res, err = guard.Login(ctx, "tenant-1", "dev@example.com", "s3cret-pass", "", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, StatusAuthenticated, res.Status)
	assert.Contains(t, recorder.actions, audit.ActionLoginSuccess)
}

// TestPurpose: Verifies unknown accounts and wrong passwords are indistinguishable to the caller.
// Scope: Unit Test
// Security: Account Enumeration Prevention
// Expected: Both cases return StatusDenied with no error.
func TestSession_Guard_NoAccountEnumeration(t *testing.T) {
	guard, users, _, _ := newTestGuard(t, "")
	seedUser(t, guard, users, false)
	ctx := context.Background()

	miss, err := guard.Login(ctx, "tenant-1", "nobody@example.com", "whatever", "", "")
	require.NoError(t, err)
	known, err2 := guard.Login(ctx, "tenant-1", "dev@example.com", "wrong", "", "")
	require.NoError(t, err2)

	assert.Equal(t, miss.Status, known.Status)
}

// TestPurpose: Verifies the refresh flow issues a new access token from a valid refresh token without interactive re-authentication.
// Scope: Unit Test
// Security: Transparent Session Continuation
// Expected: Refresh succeeds with a parseable access token; an access token used as a refresh token is rejected.
// Test Case ID: SES-02
func TestSession_Guard_Refresh(t *testing.T) {
	guard, users, _, _ := newTestGuard(t, "")
	seedUser(t, guard, users, false)
	ctx := context.Background()

	res, err := guard.Login(ctx, "tenant-1", "dev@example.com", "s3cret-pass", "", "")
	require.NoError(t, err)
	require.Equal(t, StatusAuthenticated, res.Status)

	access, err := guard.Refresh(ctx, res.RefreshToken)
	require.NoError(t, err)

	claims, err := guard.tokens.Parse(access)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.NoError(t, claims.Validate())

	// an access token is not an acceptable refresh credential
	_, err = guard.Refresh(ctx, res.AccessToken)
	assert.ErrorIs(t, err, ErrNotARefreshToken)

	_, err = guard.Refresh(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestSession_Guard_CheckSessionExpiry(t *testing.T) {
	guard, users, sessions, _ := newTestGuard(t, "")
	seedUser(t, guard, users, false)
	ctx := context.Background()

	res, err := guard.Login(ctx, "tenant-1", "dev@example.com", "s3cret-pass", "", "")
	require.NoError(t, err)

	got, err := guard.CheckSession(ctx, res.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Session.ID, got.ID)

	// push the session past the idle bound
	sessions.sessions[res.Session.ID].LastSeenAt = time.Now().Add(-31 * time.Minute)
	_, err = guard.CheckSession(ctx, res.Session.ID)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestSession_Guard_RevokeAllForUser(t *testing.T) {
	guard, users, sessions, recorder := newTestGuard(t, "")
	seedUser(t, guard, users, false)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := guard.Login(ctx, "tenant-1", "dev@example.com", "s3cret-pass", "", "")
		require.NoError(t, err)
	}
	require.Len(t, sessions.sessions, 3)

	n, err := guard.RevokeAllForUser(ctx, "user-1", "admin-9", "10.0.0.2")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Empty(t, sessions.sessions)
	assert.Contains(t, recorder.actions, audit.ActionSessionRevoked)
}

// TestPurpose: Verifies issued access tokens carry tagged roles and the permission union in the documented claim shape.
// Scope: Unit Test
// Security: Claim Shape Contract
// Expected: Parsed claims validate, roles keep their namespace, permissions equal the union over the user's roles.
func TestSession_Guard_IssuedClaimShape(t *testing.T) {
	guard, users, _, _ := newTestGuard(t, "")
	u := seedUser(t, guard, users, false)
	u.Roles = []authz.Role{authz.RoleDeveloper, authz.RoleBilling}
	ctx := context.Background()

	res, err := guard.Login(ctx, "tenant-1", "dev@example.com", "s3cret-pass", "", "")
	require.NoError(t, err)

	claims, err := guard.tokens.Parse(res.AccessToken)
	require.NoError(t, err)
	require.NoError(t, claims.Validate())

	assert.Equal(t, "tenant-1", claims.TenantID)
	assert.ElementsMatch(t, u.Roles, claims.Roles)

	union := authz.PermissionUnion(u.Roles)
	require.Len(t, claims.Permissions, len(union))
	for i, p := range union {
		assert.Equal(t, string(p), claims.Permissions[i])
	}
}
