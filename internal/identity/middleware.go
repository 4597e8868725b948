// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package identity

import (
	"context"
	"net/http"

	"github.com/canonical/membership-service/internal/logging"
	"github.com/canonical/membership-service/internal/monitoring"
	"github.com/canonical/membership-service/internal/tracing"
	"github.com/canonical/membership-service/internal/types"
	"github.com/canonical/membership-service/pkg/authentication"
)

// HeaderName carries the user a machine client acts on behalf of, it is only
// honoured on requests holding a verified bearer token.
const HeaderName = "X-Kratos-Authenticated-Identity-Id"

type visitorContextKey struct{}

// WithVisitor stores the resolved visitor in the context
func WithVisitor(ctx context.Context, v *types.Visitor) context.Context {
	return context.WithValue(ctx, visitorContextKey{}, v)
}

// VisitorFromContext never returns nil, unresolved requests are anonymous.
func VisitorFromContext(ctx context.Context) *types.Visitor {
	if v, ok := ctx.Value(visitorContextKey{}).(*types.Visitor); ok && v != nil {
		return v
	}
	return &types.Visitor{}
}

type Middleware struct {
	sessions SessionResolverInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewMiddleware(sessions SessionResolverInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Middleware {
	return &Middleware{
		sessions: sessions,
		tracer:   tracer,
		monitor:  monitor,
		logger:   logger,
	}
}

// HTTPMiddleware resolves who is making the request. Machine clients authenticated
// upstream act as the user named in HeaderName, or as themselves. Browsers are
// resolved from their session cookie. A provider failure leaves the request
// anonymous.
func (m *Middleware) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := m.tracer.Start(r.Context(), "identity.Middleware.HTTPMiddleware")
		defer span.End()

		visitor := &types.Visitor{}

		if caller, ok := authentication.CallerFromContext(ctx); ok {
			visitor.Authenticated = true
			visitor.UserID = caller.Subject
			if impersonated := r.Header.Get(HeaderName); impersonated != "" {
				visitor.UserID = impersonated
			}
		} else if cookie := r.Header.Get("Cookie"); cookie != "" {
			v, err := m.sessions.Visitor(ctx, cookie)
			if err != nil {
				m.logger.Warnf("failed to resolve session, continuing anonymously: %v", err)
			} else {
				visitor = v
			}
		}

		next.ServeHTTP(w, r.WithContext(WithVisitor(ctx, visitor)))
	})
}
