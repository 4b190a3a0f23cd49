package billing

import (
	"context"
	"testing"

	"github.com/agentvox/agentvox/internal/audit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureRecorder struct {
	entries []audit.Entry
}

func (c *captureRecorder) Append(_ context.Context, e audit.Entry) error {
	c.entries = append(c.entries, e)
	return nil
}

// TestPurpose: Verifies the refund threshold rule: at or below 10000 cents processes immediately, above requires the approval flag.
// Scope: Unit Test
// Security: Financial Authorization Gate
// Expected: 10000 cents passes unapproved; 10001 cents is blocked until Approved is set.
// Test Case ID: BIL-01
func TestBilling_Gate_ThresholdRule(t *testing.T) {
	rec := &captureRecorder{}
	gate := NewGate(rec)
	ctx := context.Background()

	// exactly at the threshold: no approval needed
	err := gate.Process(ctx, RefundRequest{ID: "r-1", TenantID: "t-1", AmountCents: 10000}, "admin-1", "10.0.0.1")
	require.NoError(t, err)

	// one cent over: blocked
	err = gate.Process(ctx, RefundRequest{ID: "r-2", TenantID: "t-1", AmountCents: 10001}, "admin-1", "10.0.0.1")
	var approvalErr *ApprovalRequiredError
	require.ErrorAs(t, err, &approvalErr)
	assert.Equal(t, int64(10001), approvalErr.AmountCents)
	assert.Equal(t, int64(10000), approvalErr.ThresholdCents)

	// same refund, approved: processes
	err = gate.Process(ctx, RefundRequest{ID: "r-2", TenantID: "t-1", AmountCents: 10001, Approved: true}, "admin-1", "10.0.0.1")
	require.NoError(t, err)

	// blocked refund produced no audit entry; the two processed ones did
	require.Len(t, rec.entries, 2)
	for _, e := range rec.entries {
		assert.Equal(t, audit.ActionRefundProcessed, e.Action())
	}
}

func TestBilling_Gate_RejectsNonPositiveAmounts(t *testing.T) {
	gate := NewGate(&captureRecorder{})
	assert.ErrorIs(t, gate.Process(context.Background(),
		RefundRequest{ID: "r-3", AmountCents: 0}, "admin-1", ""), ErrInvalidAmount)
	assert.ErrorIs(t, gate.Process(context.Background(),
		RefundRequest{ID: "r-4", AmountCents: -500}, "admin-1", ""), ErrInvalidAmount)
}

func TestBilling_RequiresApproval(t *testing.T) {
	assert.False(t, RefundRequest{AmountCents: 1}.RequiresApproval())
	assert.False(t, RefundRequest{AmountCents: 10000}.RequiresApproval())
	assert.True(t, RefundRequest{AmountCents: 10001}.RequiresApproval())
}
