// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"net/http"
	"strings"

	"github.com/canonical/membership-service/internal/apperror"
	"github.com/canonical/membership-service/internal/logging"
	"github.com/canonical/membership-service/internal/monitoring"
	"github.com/canonical/membership-service/internal/tracing"
)

type Middleware struct {
	verifier TokenVerifierInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Authenticate verifies bearer tokens presented by machine clients and stores the
// caller in the request context. Requests without an Authorization header
// are browser requests and pass through untouched, a malformed or invalid bearer
// is rejected.
func (m *Middleware) Authenticate() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := m.tracer.Start(r.Context(), "authentication.Middleware.Authenticate")
			defer span.End()

			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			token, found := m.getBearerToken(r.Header)
			if !found {
				m.unauthorizedResponse(w, "authorization header is not a bearer token")
				return
			}

			caller, err := m.verifier.VerifyToken(ctx, token)
			if err != nil {
				m.logger.Debugf("JWT verification failed: %v", err)
				m.unauthorizedResponse(w, "invalid token")
				return
			}

			ctx = WithCaller(ctx, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (m *Middleware) getBearerToken(headers http.Header) (string, bool) {
	bearer := headers.Get("Authorization")
	if bearer == "" {
		return "", false
	}

	// Only support "Bearer <token>" format (RFC 6750)
	if !strings.HasPrefix(bearer, "Bearer ") {
		return "", false
	}

	return strings.TrimPrefix(bearer, "Bearer "), true
}

func (m *Middleware) unauthorizedResponse(w http.ResponseWriter, message string) {
	if err := apperror.WriteJSON(w, apperror.New(apperror.CodeAuth, message)); err != nil {
		m.logger.Errorf("failed to encode unauthorized response: %v", err)
	}
}

func NewMiddleware(verifier TokenVerifierInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Middleware {
	return &Middleware{
		verifier: verifier,
		tracer:   tracer,
		monitor:  monitor,
		logger:   logger,
	}
}
