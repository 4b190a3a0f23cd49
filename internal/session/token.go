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
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/agentvox/agentvox/internal/authz"
	"github.com/agentvox/agentvox/internal/identity"
)

// Token errors
var (
	ErrTokenInvalid     = errors.New("token is invalid")
	ErrTokenExpired     = errors.New("token expired")
	ErrNotARefreshToken = errors.New("token is not a refresh token")
)

const (
	tokenUseAccess  = "access"
	tokenUseRefresh = "refresh"
)

// wireClaims is the JWT payload. Roles travel as tagged pairs so the
// customer/admin namespaces cannot be confused on the way back in.
type wireClaims struct {
	TenantID          string       `json:"tenant_id"`
	Email             string       `json:"email"`
	PreferredUsername string       `json:"preferred_username"`
	Roles             []authz.Role `json:"roles"`
	Permissions       []string     `json:"permissions"`
	TokenUse          string       `json:"token_use"`
	jwt.RegisteredClaims
}

// TokenService issues and parses first-party session JWTs. These are session
// credentials for our own portals, not an OIDC issuance surface.
type TokenService struct {
	secret     []byte
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenService creates a token service signing with HS256.
func NewTokenService(secret []byte, issuer, audience string, accessTTL, refreshTTL time.Duration) (*TokenService, error) {
	if len(secret) < 32 {
		return nil, errors.New("token signing secret must be at least 32 bytes")
	}
	return &TokenService{
		secret:     secret,
		issuer:     issuer,
		audience:   audience,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// IssueAccessToken signs an access token carrying the user's roles and the
// precomputed permission union.
func (s *TokenService) IssueAccessToken(user *identity.User) (string, error) {
	return s.issue(user, tokenUseAccess, s.accessTTL)
}

// IssueRefreshToken signs a refresh token for the user. Refresh tokens carry
// no permissions; they are only exchangeable for a new access token.
func (s *TokenService) IssueRefreshToken(user *identity.User) (string, error) {
	return s.issue(user, tokenUseRefresh, s.refreshTTL)
}

func (s *TokenService) issue(user *identity.User, use string, ttl time.Duration) (string, error) {
	now := time.Now()
	wire := wireClaims{
		TenantID:          user.TenantID,
		Email:             user.Email,
		PreferredUsername: user.Username,
		TokenUse:          use,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if use == tokenUseAccess {
		wire.Roles = user.Roles
		union := authz.PermissionUnion(user.Roles)
		wire.Permissions = make([]string, len(union))
		for i, p := range union {
			wire.Permissions[i] = string(p)
		}
	} else {
		wire.Roles = []authz.Role{}
		wire.Permissions = []string{}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, wire)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies the signature and returns the claims. Expired tokens come
// back with ErrTokenExpired and the parsed claims, so refresh flows can
// still read the subject out of an expired access token.
func (s *TokenService) Parse(tokenString string) (*Claims, error) {
	var wire wireClaims
	_, err := jwt.ParseWithClaims(tokenString, &wire,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
	)

	expired := false
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			expired = true
		} else {
			return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
		}
	}

	claims := claimsFromWire(&wire)
	if expired {
		return claims, ErrTokenExpired
	}
	return claims, nil
}

// parseRefresh verifies a token and additionally requires the refresh
// token_use marker; an access token presented here is rejected.
func (s *TokenService) parseRefresh(tokenString string) (*Claims, error) {
	var wire wireClaims
	_, err := jwt.ParseWithClaims(tokenString, &wire,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if wire.TokenUse != tokenUseRefresh {
		return nil, ErrNotARefreshToken
	}
	return claimsFromWire(&wire), nil
}

func claimsFromWire(wire *wireClaims) *Claims {
	claims := &Claims{
		Subject:           wire.Subject,
		TenantID:          wire.TenantID,
		Email:             wire.Email,
		PreferredUsername: wire.PreferredUsername,
		Roles:             wire.Roles,
		Permissions:       wire.Permissions,
		Issuer:            wire.Issuer,
	}
	if wire.ExpiresAt != nil {
		claims.ExpiresAt = wire.ExpiresAt.Time
	}
	if wire.IssuedAt != nil {
		claims.IssuedAt = wire.IssuedAt.Time
	}
	if len(wire.Audience) > 0 {
		claims.Audience = wire.Audience[0]
	}
	return claims
}
