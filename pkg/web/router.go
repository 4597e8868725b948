// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package web

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"
	middleware "github.com/go-chi/chi/v5/middleware"

	"github.com/canonical/membership-service/internal/db"
	"github.com/canonical/membership-service/internal/logging"
	"github.com/canonical/membership-service/internal/monitoring"
	"github.com/canonical/membership-service/internal/tracing"
	"github.com/canonical/membership-service/pkg/metrics"
	"github.com/canonical/membership-service/pkg/status"
)

// APIInterface is implemented by every package exposing HTTP endpoints
type APIInterface interface {
	RegisterEndpoints(chi.Router)
}

type Config struct {
	AllowedOrigins []string

	// Authentication verifies bearer tokens, Identity resolves the visitor
	Authentication func(http.Handler) http.Handler
	Identity       func(http.Handler) http.Handler

	// Management endpoints run inside a request scoped transaction
	Management []APIInterface
	// Public endpoints commit their own state transitions
	Public []APIInterface
}

func NewRouter(
	cfg Config,
	dbClient db.DBClientInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) http.Handler {
	router := chi.NewMux()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	middlewares := make(chi.Middlewares, 0)
	middlewares = append(
		middlewares,
		middleware.RequestID,
		monitoring.NewMiddleware(monitor, logger).ResponseTime(),
		middlewareCORS(origins),
	)

	router.Use(middlewares...)

	metrics.NewAPI(logger).RegisterEndpoints(router)
	status.NewAPI(tracer, monitor, logger).RegisterEndpoints(router)

	router.Group(func(r chi.Router) {
		if cfg.Authentication != nil {
			r.Use(cfg.Authentication)
		}
		if cfg.Identity != nil {
			r.Use(cfg.Identity)
		}

		for _, api := range cfg.Public {
			api.RegisterEndpoints(r)
		}

		r.Group(func(r chi.Router) {
			r.Use(db.TransactionMiddleware(dbClient, logger))

			for _, api := range cfg.Management {
				api.RegisterEndpoints(r)
			}
		})
	})

	return tracing.HTTPMiddleware(router)
}
