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

package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Config holds metrics configuration
type Config struct {
	Enabled bool
}

// Meter wraps the OpenTelemetry meter together with the instrument set the
// service records on.
type Meter struct {
	meter metric.Meter

	AuthzDecisions  metric.Int64Counter
	LoginOutcomes   metric.Int64Counter
	KeyAuthOutcomes metric.Int64Counter
	QuotaDenials    metric.Int64Counter
	RequestDuration metric.Float64Histogram
}

// New creates a new meter instance
func New(ctx context.Context, cfg Config, serviceName string) (*Meter, error) {
	name := serviceName
	if !cfg.Enabled {
		name = "noop"
	}
	m := &Meter{meter: otel.Meter(name)}

	var err error
	if m.AuthzDecisions, err = m.counter("agentvox_authz_decisions_total", "Permission checks by outcome"); err != nil {
		return nil, err
	}
	if m.LoginOutcomes, err = m.counter("agentvox_logins_total", "Login attempts by outcome"); err != nil {
		return nil, err
	}
	if m.KeyAuthOutcomes, err = m.counter("agentvox_apikey_auth_total", "API key authentications by outcome"); err != nil {
		return nil, err
	}
	if m.QuotaDenials, err = m.counter("agentvox_quota_denials_total", "Membership mutations blocked by plan ceilings"); err != nil {
		return nil, err
	}
	if m.RequestDuration, err = m.meter.Float64Histogram(
		"agentvox_request_duration",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, fmt.Errorf("failed to create histogram: %w", err)
	}

	return m, nil
}

// GetMeter returns the underlying meter
func (m *Meter) GetMeter() metric.Meter {
	return m.meter
}

// The Record helpers are safe on a nil Meter so handlers built without
// telemetry, as in tests, record nothing instead of panicking.

// RecordAuthzDecision counts one route authorization decision.
func (m *Meter) RecordAuthzDecision(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	RecordOutcome(ctx, m.AuthzDecisions, outcome)
}

// RecordLogin counts one login attempt by outcome.
func (m *Meter) RecordLogin(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	RecordOutcome(ctx, m.LoginOutcomes, outcome)
}

// RecordKeyAuth counts one API key authentication by outcome.
func (m *Meter) RecordKeyAuth(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	RecordOutcome(ctx, m.KeyAuthOutcomes, outcome)
}

// RecordQuotaDenial counts one membership mutation blocked by a plan ceiling.
func (m *Meter) RecordQuotaDenial(ctx context.Context) {
	if m == nil {
		return
	}
	RecordOutcome(ctx, m.QuotaDenials, "denied")
}

// RecordOutcome increments a counter with a single outcome label.
func RecordOutcome(ctx context.Context, c metric.Int64Counter, outcome string) {
	if c == nil {
		return
	}
	c.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *Meter) counter(name, description string) (metric.Int64Counter, error) {
	counter, err := m.meter.Int64Counter(
		name,
		metric.WithDescription(description),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create counter %s: %w", name, err)
	}
	return counter, nil
}
