// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package status

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/canonical/membership-service/internal/logging"
	"github.com/canonical/membership-service/internal/monitoring"
	"github.com/canonical/membership-service/internal/tracing"
	"github.com/canonical/membership-service/internal/version"
)

type Status struct {
	Status    string `json:"status"`
	BuildInfo string `json:"buildInfo"`
}

type API struct {
	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *API) RegisterEndpoints(mux chi.Router) {
	mux.Get("/api/v0/status", a.alive)
}

func (a *API) alive(w http.ResponseWriter, r *http.Request) {
	_, span := a.tracer.Start(r.Context(), "status.API.alive")
	defer span.End()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(Status{Status: "ok", BuildInfo: version.Version}); err != nil {
		a.logger.Errorf("failed to encode status: %v", err)
	}
}

func NewAPI(tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *API {
	return &API{
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}
