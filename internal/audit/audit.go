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

// Package audit produces the immutable compliance trail behind every
// sensitive mutation. Entries are value types constructed exactly once;
// nothing in this package or its stores can alter an entry after creation.
package audit

import (
	"context"
	"errors"
	"time"

	"github.com/agentvox/agentvox/internal/id"
)

// Action is the closed set of auditable actions.
type Action string

const (
	ActionLoginSuccess       Action = "login_success"
	ActionLoginFailed        Action = "login_failed"
	ActionMFARequired        Action = "mfa_required"
	ActionSessionRevoked     Action = "session_revoked"
	ActionAPIKeyCreated      Action = "api_key_created"
	ActionAPIKeyRotated      Action = "api_key_rotated"
	ActionAPIKeyRevoked      Action = "api_key_revoked"
	ActionMemberInvited      Action = "member_invited"
	ActionMemberJoined       Action = "member_joined"
	ActionMemberRemoved      Action = "member_removed"
	ActionRoleChanged        Action = "role_changed"
	ActionImpersonationStart Action = "impersonation_start"
	ActionImpersonationEnd   Action = "impersonation_end"
	ActionRefundProcessed    Action = "refund_processed"
	ActionRefundApproved     Action = "refund_approved"
	ActionThemeApplied       Action = "theme_applied"
	ActionTenantDeleted      Action = "tenant_deleted"
)

// Domain errors
var (
	ErrReasonRequired = errors.New("impersonation requires a non-empty reason")
	ErrMissingActor   = errors.New("audit entry requires actor id and type")
	ErrMissingTarget  = errors.New("audit entry requires target id and type")
	ErrUnknownAction  = errors.New("unknown audit action")
)

var knownActions = map[Action]struct{}{
	ActionLoginSuccess: {}, ActionLoginFailed: {}, ActionMFARequired: {},
	ActionSessionRevoked: {}, ActionAPIKeyCreated: {}, ActionAPIKeyRotated: {},
	ActionAPIKeyRevoked: {}, ActionMemberInvited: {}, ActionMemberJoined: {},
	ActionMemberRemoved: {},
	ActionRoleChanged: {}, ActionImpersonationStart: {}, ActionImpersonationEnd: {},
	ActionRefundProcessed: {}, ActionRefundApproved: {}, ActionThemeApplied: {},
	ActionTenantDeleted: {},
}

// Entry is one immutable audit record. All fields are unexported; the only
// way to build an Entry is Record, and accessors return copies of anything
// mutable. ULID ids make entries sort by timestamp, which is the ordering
// guarantee the log makes (write order is not).
type Entry struct {
	id         string
	timestamp  time.Time
	actorID    string
	actorType  string
	action     Action
	targetID   string
	targetType string
	details    map[string]any
	ipAddress  string
}

// Record constructs an audit entry. The details map is copied on the way in,
// so later mutation of the caller's map cannot reach the entry. Impersonation
// actions are rejected outright when details lack a non-empty "reason".
func Record(action Action, actorID, actorType, targetID, targetType string, details map[string]any, ipAddress string) (Entry, error) {
	if _, ok := knownActions[action]; !ok {
		return Entry{}, ErrUnknownAction
	}
	if actorID == "" || actorType == "" {
		return Entry{}, ErrMissingActor
	}
	if targetID == "" || targetType == "" {
		return Entry{}, ErrMissingTarget
	}
	if action == ActionImpersonationStart || action == ActionImpersonationEnd {
		reason, _ := details["reason"].(string)
		if reason == "" {
			return Entry{}, ErrReasonRequired
		}
	}

	copied := make(map[string]any, len(details))
	for k, v := range details {
		copied[k] = v
	}

	now := time.Now().UTC()
	return Entry{
		id:         id.NewULID(now),
		timestamp:  now,
		actorID:    actorID,
		actorType:  actorType,
		action:     action,
		targetID:   targetID,
		targetType: targetType,
		details:    copied,
		ipAddress:  ipAddress,
	}, nil
}

// ID returns the timestamp-ordered entry id.
func (e Entry) ID() string { return e.id }

// Timestamp returns when the entry was recorded, in UTC.
func (e Entry) Timestamp() time.Time { return e.timestamp }

// ActorID returns who performed the action.
func (e Entry) ActorID() string { return e.actorID }

// ActorType returns the kind of actor (user, api_key, system).
func (e Entry) ActorType() string { return e.actorType }

// Action returns the action enum value.
func (e Entry) Action() Action { return e.action }

// TargetID returns what was acted on.
func (e Entry) TargetID() string { return e.targetID }

// TargetType returns the kind of target.
func (e Entry) TargetType() string { return e.targetType }

// IPAddress returns the origin address of the request.
func (e Entry) IPAddress() string { return e.ipAddress }

// Details returns a copy of the details map. Mutating the copy never reaches
// the entry.
func (e Entry) Details() map[string]any {
	out := make(map[string]any, len(e.details))
	for k, v := range e.details {
		out[k] = v
	}
	return out
}

// Recorder is the append-only sink every manager hands entries to. Append
// must never merge, coalesce, or overwrite entries.
type Recorder interface {
	Append(ctx context.Context, entry Entry) error
}
