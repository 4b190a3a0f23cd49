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

package audit

import (
	"context"
	"log/slog"
	"strings"
)

// SlogRecorder mirrors every audit entry into the structured log stream. It
// is usually wired behind the durable store via Tee, so operators see entries
// in real time while the store remains the source of truth.
type SlogRecorder struct{}

// NewSlogRecorder creates a log-stream audit sink.
func NewSlogRecorder() *SlogRecorder {
	return &SlogRecorder{}
}

// Append logs the entry at INFO with the "audit" component.
func (r *SlogRecorder) Append(ctx context.Context, entry Entry) {
	attrs := []any{
		slog.String("audit_id", entry.ID()),
		slog.String("action", string(entry.Action())),
		slog.String("actor_id", entry.ActorID()),
		slog.String("actor_type", entry.ActorType()),
		slog.String("target_id", entry.TargetID()),
		slog.String("target_type", entry.TargetType()),
		slog.Time("timestamp", entry.Timestamp()),
	}
	if entry.IPAddress() != "" {
		attrs = append(attrs, slog.String("ip_address", entry.IPAddress()))
	}

	details := entry.Details()
	if len(details) > 0 {
		group := []any{}
		for k, v := range details {
			if isSecret(k) {
				v = "[REDACTED]"
			}
			group = append(group, slog.Any(k, v))
		}
		attrs = append(attrs, slog.Group("details", group...))
	}

	slog.InfoContext(ctx, "AUDIT_EVENT", append(attrs, slog.String("component", "audit"))...)
}

// isSecret checks if a detail key likely carries a credential.
func isSecret(key string) bool {
	k := strings.ToLower(key)
	for _, s := range []string{"password", "secret", "token", "key", "credential", "hash", "authorization"} {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}

// Tee appends to a durable store and mirrors into the log stream. Store
// failure is the caller's failure; the log mirror is best effort.
type Tee struct {
	Store  Recorder
	Stream *SlogRecorder
}

// Append writes to the store first, then mirrors.
func (t *Tee) Append(ctx context.Context, entry Entry) error {
	if err := t.Store.Append(ctx, entry); err != nil {
		return err
	}
	if t.Stream != nil {
		t.Stream.Append(ctx, entry)
	}
	return nil
}
