// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package prometheus

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/canonical/membership-service/internal/logging"
	"github.com/canonical/membership-service/internal/monitoring"
)

var _ monitoring.MonitorInterface = (*Monitor)(nil)

type Monitor struct {
	service string

	responseTime           *prometheus.HistogramVec
	dependencyAvailability *prometheus.GaugeVec
	invitationTransitions  *prometheus.CounterVec
	securityEvents         *prometheus.CounterVec

	logger logging.LoggerInterface
}

func (m *Monitor) GetService() string {
	return m.service
}

func (m *Monitor) SetResponseTimeMetric(tags map[string]string, value float64) error {
	if m.responseTime == nil {
		return fmt.Errorf("metric not instantiated")
	}

	m.responseTime.With(tags).Observe(value)

	return nil
}

func (m *Monitor) SetDependencyAvailability(tags map[string]string, value float64) error {
	if m.dependencyAvailability == nil {
		return fmt.Errorf("metric not instantiated")
	}

	m.dependencyAvailability.With(tags).Set(value)

	return nil
}

func (m *Monitor) IncInvitationTransition(tags map[string]string) error {
	if m.invitationTransitions == nil {
		return fmt.Errorf("metric not instantiated")
	}

	m.invitationTransitions.With(tags).Inc()

	return nil
}

func (m *Monitor) IncSecurityEvent(tags map[string]string) error {
	if m.securityEvents == nil {
		return fmt.Errorf("metric not instantiated")
	}

	m.securityEvents.With(tags).Inc()

	return nil
}

func (m *Monitor) registerHistograms() {
	m.responseTime = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:        "http_response_time_seconds",
			Help:        "http_response_time_seconds",
			ConstLabels: prometheus.Labels{"service": m.service},
		},
		[]string{"route", "status"},
	)

	m.register(m.responseTime)
}

func (m *Monitor) registerGauges() {
	m.dependencyAvailability = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name:        "dependency_available",
			Help:        "dependency_available",
			ConstLabels: prometheus.Labels{"service": m.service},
		},
		[]string{"component"},
	)

	m.register(m.dependencyAvailability)
}

func (m *Monitor) registerCounters() {
	m.invitationTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "invitation_transitions_total",
			Help:        "invitation_transitions_total",
			ConstLabels: prometheus.Labels{"service": m.service},
		},
		[]string{"status"},
	)

	m.securityEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "security_events_total",
			Help:        "security_events_total",
			ConstLabels: prometheus.Labels{"service": m.service},
		},
		[]string{"event"},
	)

	m.register(m.invitationTransitions)
	m.register(m.securityEvents)
}

func (m *Monitor) register(c prometheus.Collector) {
	if err := prometheus.Register(c); err != nil {
		m.logger.Debugf("metric already registered: %v", err)
	}
}

func NewMonitor(service string, logger logging.LoggerInterface) *Monitor {
	m := new(Monitor)

	m.service = service
	m.logger = logger

	m.registerHistograms()
	m.registerGauges()
	m.registerCounters()

	return m
}
