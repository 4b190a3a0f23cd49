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

// Package billing holds the refund approval gate. Ledger computation lives in
// the billing system proper; this package only decides whether a refund may
// proceed without a second pair of eyes.
package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/agentvox/agentvox/internal/audit"
)

// ApprovalThresholdCents is the amount above which a refund needs an explicit
// approval before processing. 10000 minor units = $100.
const ApprovalThresholdCents = 10000

// Domain errors
var (
	ErrInvalidAmount = errors.New("refund amount must be positive")
)

// ApprovalRequiredError blocks an over-threshold refund until approved.
type ApprovalRequiredError struct {
	AmountCents    int64
	ThresholdCents int64
}

func (e *ApprovalRequiredError) Error() string {
	return fmt.Sprintf("refund of %d cents exceeds the %d cent threshold and requires approval",
		e.AmountCents, e.ThresholdCents)
}

// RefundRequest is a pending refund in minor currency units.
type RefundRequest struct {
	ID          string `json:"id"`
	TenantID    string `json:"tenant_id"`
	AmountCents int64  `json:"amount_cents"`
	Approved    bool   `json:"approved"`
}

// RequiresApproval reports whether the amount is over the gate threshold.
// Exactly at the threshold processes without approval.
func (r RefundRequest) RequiresApproval() bool {
	return r.AmountCents > ApprovalThresholdCents
}

// Gate applies the approval rule and audits processed refunds.
type Gate struct {
	recorder audit.Recorder
}

// NewGate creates a refund gate.
func NewGate(recorder audit.Recorder) *Gate {
	return &Gate{recorder: recorder}
}

// Process checks the gate and records the refund. Over-threshold refunds
// without the approval flag return ApprovalRequiredError and nothing is
// recorded; there is no partial state to roll back.
func (g *Gate) Process(ctx context.Context, req RefundRequest, actorID string, ip string) error {
	if req.AmountCents <= 0 {
		return ErrInvalidAmount
	}
	if req.RequiresApproval() && !req.Approved {
		return &ApprovalRequiredError{
			AmountCents:    req.AmountCents,
			ThresholdCents: ApprovalThresholdCents,
		}
	}

	entry, err := audit.Record(audit.ActionRefundProcessed, actorID, "user", req.ID, "refund",
		map[string]any{
			"amount_cents": req.AmountCents,
			"approved":     req.Approved,
			"tenant_id":    req.TenantID,
		}, ip)
	if err != nil {
		return fmt.Errorf("failed to record refund: %w", err)
	}
	return g.recorder.Append(ctx, entry)
}
