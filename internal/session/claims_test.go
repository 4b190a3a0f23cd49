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
	"testing"
	"time"

	"github.com/agentvox/agentvox/internal/authz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completeClaims() Claims {
	now := time.Now()
	return Claims{
		Subject:           "user-1",
		TenantID:          "tenant-1",
		Email:             "dev@example.com",
		PreferredUsername: "dev",
		Roles:             []authz.Role{authz.RoleDeveloper},
		Permissions:       []string{},
		ExpiresAt:         now.Add(time.Hour),
		IssuedAt:          now,
		Issuer:            "https://auth.agentvox.dev",
		Audience:          "agentvox-console",
	}
}

// TestPurpose: Verifies claim validation returns the structured list of every missing claim name, not an opaque failure.
// Scope: Unit Test
// Security: Token Integrity (partial tokens must be diagnosable without leaking validity oracle behavior)
// Expected: A token missing sub, tenant_id, and exp reports exactly those names.
func TestSession_Claims_MissingClaimsAreListed(t *testing.T) {
	c := completeClaims()
	c.Subject = ""
	c.TenantID = ""
	c.ExpiresAt = time.Time{}

	err := c.Validate()
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.ElementsMatch(t, []string{"sub", "tenant_id", "exp"}, vErr.MissingClaims)
}

func TestSession_Claims_CompleteClaimsValidate(t *testing.T) {
	c := completeClaims()
	assert.NoError(t, c.Validate())

	// permissions may be empty but roles may not
	c.Permissions = nil
	assert.NoError(t, c.Validate())

	c.Roles = nil
	err := c.Validate()
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []string{"roles"}, vErr.MissingClaims)
}

// TestPurpose: Verifies the buffered expiry check: a token inside the buffer window counts as expired for pre-emptive refresh.
// Scope: Unit Test
// Security: Session Expiry Handling
// Expected: exp - now <= buffer ⇒ expired; comfortably outside the buffer ⇒ not expired.
func TestSession_Claims_IsExpiredWithBuffer(t *testing.T) {
	c := completeClaims()

	c.ExpiresAt = time.Now().Add(10 * time.Second)
	assert.True(t, c.IsExpired(30*time.Second), "inside buffer counts as expired")
	assert.False(t, c.IsExpired(0), "still strictly valid with no buffer")

	c.ExpiresAt = time.Now().Add(-time.Second)
	assert.True(t, c.IsExpired(0))

	c.ExpiresAt = time.Now().Add(10 * time.Minute)
	assert.False(t, c.IsExpired(30*time.Second))
}

func TestSession_Lifetime_IdleAndAbsoluteAreIndependent(t *testing.T) {
	now := time.Now()

	fresh := &Session{CreatedAt: now.Add(-time.Minute), LastSeenAt: now.Add(-time.Minute)}
	assert.True(t, fresh.IsValidAt(now))

	// idle for 30m, even though the session is young
	idle := &Session{CreatedAt: now.Add(-time.Hour), LastSeenAt: now.Add(-30 * time.Minute)}
	assert.False(t, idle.IsValidAt(now))
	assert.True(t, idle.IsIdle(now))
	assert.False(t, idle.IsOverMaxLifetime(now))

	// active one minute ago, but 8h old in total
	aged := &Session{CreatedAt: now.Add(-8 * time.Hour), LastSeenAt: now.Add(-time.Minute)}
	assert.False(t, aged.IsValidAt(now))
	assert.False(t, aged.IsIdle(now))
	assert.True(t, aged.IsOverMaxLifetime(now))

	// just under both bounds
	edge := &Session{CreatedAt: now.Add(-8*time.Hour + time.Second), LastSeenAt: now.Add(-30*time.Minute + time.Second)}
	assert.True(t, edge.IsValidAt(now))
}
