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
	"time"
)

// Filter narrows an audit query. Zero values mean "any".
type Filter struct {
	ActorID  string
	TargetID string
	Action   Action
	Since    time.Time
	Until    time.Time
	Limit    int
}

// Store is a Recorder whose entries can be read back for compliance review.
// Queries return entries ordered by id, which is timestamp order.
type Store interface {
	Recorder
	Query(ctx context.Context, f Filter) ([]Entry, error)
}

// Rehydrate rebuilds an Entry from persisted fields. It exists for stores
// loading rows written by Append; business code records entries through
// Record, which is where validation lives.
func Rehydrate(id string, timestamp time.Time, actorID, actorType string, action Action, targetID, targetType string, details map[string]any, ipAddress string) Entry {
	copied := make(map[string]any, len(details))
	for k, v := range details {
		copied[k] = v
	}
	return Entry{
		id:         id,
		timestamp:  timestamp,
		actorID:    actorID,
		actorType:  actorType,
		action:     action,
		targetID:   targetID,
		targetType: targetType,
		details:    copied,
		ipAddress:  ipAddress,
	}
}
