// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package prometheus

import (
	"testing"

	dto "github.com/prometheus/client_model/go"

	"github.com/canonical/membership-service/internal/logging"
)

func counterValue(t *testing.T, m *Monitor, event string) float64 {
	t.Helper()

	var metric dto.Metric
	if err := m.securityEvents.WithLabelValues(event).Write(&metric); err != nil {
		t.Fatalf("failed to read counter: %v", err)
	}

	return metric.GetCounter().GetValue()
}

func TestMonitor_IncSecurityEvent(t *testing.T) {
	m := NewMonitor("membership-test", logging.NewNoopLogger())

	before := counterValue(t, m, "forced_logout")

	if err := m.IncSecurityEvent(map[string]string{"event": "forced_logout"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := counterValue(t, m, "forced_logout") - before; got != 1 {
		t.Errorf("expected the counter to grow by 1, got %v", got)
	}
}

func TestMonitor_UninstantiatedMetric(t *testing.T) {
	m := &Monitor{service: "membership-test", logger: logging.NewNoopLogger()}

	if err := m.IncSecurityEvent(map[string]string{"event": "authz_denied"}); err == nil {
		t.Errorf("expected an error for a metric that was never registered")
	}
}
