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
	"fmt"
	"log/slog"
	"time"

	"github.com/agentvox/agentvox/internal/audit"
	"github.com/agentvox/agentvox/internal/id"
	"github.com/agentvox/agentvox/internal/identity"
)

// LoginStatus is the outcome of an authentication attempt.
type LoginStatus string

const (
	// StatusAuthenticated grants full access: tokens are issued.
	StatusAuthenticated LoginStatus = "authenticated"

	// StatusMFARequired means the password checked out but the account has
	// MFA enabled and no valid second factor was presented. Never full access.
	StatusMFARequired LoginStatus = "mfa_required"

	// StatusDenied means the credentials or the second factor failed.
	StatusDenied LoginStatus = "denied"
)

// LoginResult carries the outcome and, only on full success, the tokens.
type LoginResult struct {
	Status       LoginStatus
	AccessToken  string
	RefreshToken string
	Session      *Session
}

// MFAVerifier checks a second-factor code against the account's MFA secret.
type MFAVerifier interface {
	Verify(secret, code string) bool
}

// Guard validates credentials and session state. It owns the MFA gate and
// the refresh flow.
type Guard struct {
	users    identity.Repository
	sessions Repository
	hasher   *identity.PasswordHasher
	tokens   *TokenService
	mfa      MFAVerifier
	recorder audit.Recorder
}

// NewGuard creates a session guard.
func NewGuard(users identity.Repository, sessions Repository, hasher *identity.PasswordHasher, tokens *TokenService, mfa MFAVerifier, recorder audit.Recorder) *Guard {
	return &Guard{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		tokens:   tokens,
		mfa:      mfa,
		recorder: recorder,
	}
}

// Login runs the full authentication flow. With MFA enabled on the account,
// a correct password alone yields StatusMFARequired: partial success, no
// tokens. Full access requires password and second factor in the same call.
func (g *Guard) Login(ctx context.Context, tenantID, email, password, mfaCode, ip string) (*LoginResult, error) {
	user, err := g.users.GetByEmail(ctx, tenantID, email)
	if err != nil {
		// Same outcome as a bad password so callers cannot probe for accounts.
		return &LoginResult{Status: StatusDenied}, nil
	}

	ok, err := g.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		g.record(ctx, audit.ActionLoginFailed, user, map[string]any{"stage": "password"}, ip)
		return &LoginResult{Status: StatusDenied}, nil
	}

	if user.MFAEnabled {
		if mfaCode == "" {
			g.record(ctx, audit.ActionMFARequired, user, nil, ip)
			return &LoginResult{Status: StatusMFARequired}, nil
		}
		if !g.mfa.Verify(user.MFASecret, mfaCode) {
			g.record(ctx, audit.ActionLoginFailed, user, map[string]any{"stage": "mfa"}, ip)
			return &LoginResult{Status: StatusDenied}, nil
		}
	}

	access, err := g.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}
	refresh, err := g.tokens.IssueRefreshToken(user)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sess := &Session{
		ID:         id.NewUUIDv7(),
		TenantID:   user.TenantID,
		UserID:     user.ID,
		IPAddress:  ip,
		CreatedAt:  now,
		LastSeenAt: now,
	}
	if err := g.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	g.record(ctx, audit.ActionLoginSuccess, user, nil, ip)
	return &LoginResult{
		Status:       StatusAuthenticated,
		AccessToken:  access,
		RefreshToken: refresh,
		Session:      sess,
	}, nil
}

// Refresh exchanges a valid refresh token for a new access token. The caller
// is never asked to re-authenticate interactively for an expired access
// token alone.
func (g *Guard) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := g.tokens.parseRefresh(refreshToken)
	if err != nil {
		return "", err
	}

	user, err := g.users.GetByID(ctx, claims.Subject)
	if err != nil {
		return "", ErrTokenInvalid
	}

	return g.tokens.IssueAccessToken(user)
}

// CheckSession validates a stored session against both lifetime bounds and
// touches it on success.
func (g *Guard) CheckSession(ctx context.Context, sessionID string) (*Session, error) {
	sess, err := g.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if !sess.IsValidAt(now) {
		return nil, ErrSessionExpired
	}

	if err := g.sessions.Touch(ctx, sessionID, now); err != nil {
		return nil, fmt.Errorf("failed to touch session: %w", err)
	}
	sess.LastSeenAt = now
	return sess, nil
}

// DeleteSession removes one session, ending that login.
func (g *Guard) DeleteSession(ctx context.Context, sessionID string) error {
	return g.sessions.Delete(ctx, sessionID)
}

// RevokeAllForUser deletes every session for a user and audits the sweep.
// Member removal uses this as a side effect.
func (g *Guard) RevokeAllForUser(ctx context.Context, userID, actorID, ip string) (int, error) {
	n, err := g.sessions.DeleteByUserID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke sessions: %w", err)
	}

	entry, err := audit.Record(audit.ActionSessionRevoked, actorID, "user", userID, "user",
		map[string]any{"revoked_count": n}, ip)
	if err != nil {
		slog.ErrorContext(ctx, "failed to build audit entry", slog.Any("error", err))
		return n, nil
	}
	if err := g.recorder.Append(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "failed to append audit entry", slog.Any("error", err))
	}
	return n, nil
}

func (g *Guard) record(ctx context.Context, action audit.Action, user *identity.User, details map[string]any, ip string) {
	entry, err := audit.Record(action, user.ID, "user", user.ID, "user", details, ip)
	if err != nil {
		slog.ErrorContext(ctx, "failed to build audit entry", slog.Any("error", err))
		return
	}
	if err := g.recorder.Append(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "failed to append audit entry", slog.Any("error", err))
	}
}
