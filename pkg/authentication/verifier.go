// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/canonical/membership-service/internal/logging"
	"github.com/canonical/membership-service/internal/monitoring"
	"github.com/canonical/membership-service/internal/tracing"
)

var ErrCallerNotAllowed = errors.New("unauthorized: missing required scope or subject not allowed")

type tokenClaims struct {
	Subject string   `json:"sub"`
	Scope   string   `json:"scope"`
	Scopes  []string `json:"scp"`
}

func (c tokenClaims) scopes() []string {
	return append(strings.Fields(c.Scope), c.Scopes...)
}

type JWTVerifier struct {
	verifier        *oidc.IDTokenVerifier
	allowedSubjects []string
	requiredScope   string

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (v *JWTVerifier) VerifyToken(ctx context.Context, rawToken string) (*Caller, error) {
	ctx, span := v.tracer.Start(ctx, "authentication.JWTVerifier.VerifyToken")
	defer span.End()

	token, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, err
	}

	var claims tokenClaims
	if err := token.Claims(&claims); err != nil {
		v.logger.Debugf("Failed to extract claims: %v", err)
		return nil, err
	}

	return v.authorize(claims)
}

// authorize accepts callers listed in the allowed subjects or holding the
// required scope, with no criteria configured nobody is accepted.
func (v *JWTVerifier) authorize(claims tokenClaims) (*Caller, error) {
	caller := &Caller{Subject: claims.Subject, Scopes: claims.scopes()}

	if slices.Contains(v.allowedSubjects, claims.Subject) {
		return caller, nil
	}

	if v.requiredScope != "" && slices.Contains(caller.Scopes, v.requiredScope) {
		return caller, nil
	}

	v.logger.Security().AuthzFailure(claims.Subject, "jwt_api_access")
	return nil, ErrCallerNotAllowed
}

func NewJWTVerifier(
	verifier *oidc.IDTokenVerifier,
	allowedSubjects []string,
	requiredScope string,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *JWTVerifier {
	v := new(JWTVerifier)

	v.verifier = verifier
	v.allowedSubjects = allowedSubjects
	v.requiredScope = requiredScope

	v.tracer = tracer
	v.monitor = monitor
	v.logger = logger

	return v
}
