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
	"fmt"
	"strings"
	"time"

	"github.com/agentvox/agentvox/internal/authz"
)

// Claims is the validated payload of a session token. Every field except
// Permissions is mandatory; Permissions may be empty but must be present in
// the wire form.
type Claims struct {
	Subject           string       `json:"sub"`
	TenantID          string       `json:"tenant_id"`
	Email             string       `json:"email"`
	PreferredUsername string       `json:"preferred_username"`
	Roles             []authz.Role `json:"roles"`
	Permissions       []string     `json:"permissions"`
	ExpiresAt         time.Time    `json:"exp"`
	IssuedAt          time.Time    `json:"iat"`
	Issuer            string       `json:"iss"`
	Audience          string       `json:"aud"`
}

// ValidationError reports every missing claim by name. Callers get the full
// list in one pass rather than fixing claims one rejection at a time.
type ValidationError struct {
	MissingClaims []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("token is missing required claims: %s", strings.Join(e.MissingClaims, ", "))
}

// Validate checks claim completeness. Subject, tenant id, and expiry are the
// hard minimum; the remaining required claims are reported alongside them.
func (c *Claims) Validate() error {
	var missing []string
	if c.Subject == "" {
		missing = append(missing, "sub")
	}
	if c.TenantID == "" {
		missing = append(missing, "tenant_id")
	}
	if c.ExpiresAt.IsZero() {
		missing = append(missing, "exp")
	}
	if c.Email == "" {
		missing = append(missing, "email")
	}
	if c.PreferredUsername == "" {
		missing = append(missing, "preferred_username")
	}
	if len(c.Roles) == 0 {
		missing = append(missing, "roles")
	}
	if c.IssuedAt.IsZero() {
		missing = append(missing, "iat")
	}
	if c.Issuer == "" {
		missing = append(missing, "iss")
	}
	if c.Audience == "" {
		missing = append(missing, "aud")
	}
	if len(missing) > 0 {
		return &ValidationError{MissingClaims: missing}
	}
	return nil
}

// IsExpired reports whether the token expires within the buffer. Callers use
// the buffer for pre-emptive refresh instead of racing exact expiry.
func (c *Claims) IsExpired(buffer time.Duration) bool {
	return time.Until(c.ExpiresAt) <= buffer
}
