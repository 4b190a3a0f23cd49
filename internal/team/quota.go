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

import "fmt"

// Unbounded marks a plan with no member ceiling.
const Unbounded = -1

// Limits maps each plan to its member ceiling. The table is business policy
// injected from configuration, not engineering logic; a plan absent from the
// map is treated as unbounded.
type Limits map[Plan]int

// DefaultLimits returns the stock plan table.
func DefaultLimits() Limits {
	return Limits{
		PlanFree:       3,
		PlanPro:        10,
		PlanEnterprise: Unbounded,
	}
}

func (l Limits) ceiling(plan Plan) int {
	limit, ok := l[plan]
	if !ok {
		return Unbounded
	}
	return limit
}

// QuotaExceededError reports a membership mutation blocked by the plan
// ceiling.
type QuotaExceededError struct {
	Plan    Plan
	Limit   int
	Current int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("member quota exceeded: plan %q allows %d members, tenant has %d", e.Plan, e.Limit, e.Current)
}

// Quota is the outcome of a membership headroom check.
type Quota struct {
	Allowed          bool `json:"allowed"`
	NearLimit        bool `json:"near_limit"`
	UpgradeSuggested bool `json:"upgrade_suggested"`
	Limit            int  `json:"limit"`
	Current          int  `json:"current"`
}

// CanAddMember reports whether a tenant with the given member count may add
// one more under its plan.
func (l Limits) CanAddMember(current int, plan Plan) bool {
	limit := l.ceiling(plan)
	return limit == Unbounded || current < limit
}

// CheckQuota evaluates member headroom for a tenant. NearLimit flags the last
// remaining slot; UpgradeSuggested flags a denial that a plan change would
// lift.
func (l Limits) CheckQuota(current int, plan Plan) Quota {
	limit := l.ceiling(plan)
	q := Quota{Limit: limit, Current: current}
	if limit == Unbounded {
		q.Allowed = true
		return q
	}
	q.Allowed = current < limit
	q.NearLimit = q.Allowed && current == limit-1
	q.UpgradeSuggested = !q.Allowed && plan != PlanEnterprise
	return q
}
