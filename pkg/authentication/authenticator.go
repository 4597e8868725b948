// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/canonical/membership-service/internal/logging"
	"github.com/canonical/membership-service/internal/monitoring"
	"github.com/canonical/membership-service/internal/tracing"
)

var otelHTTPClient = http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}

type Config struct {
	Issuer string
	// JWKSURL skips OIDC discovery when set
	JWKSURL         string
	AllowedSubjects []string
	RequiredScope   string
}

// NewJWTAuthenticator builds the bearer token verifier for machine clients.
func NewJWTAuthenticator(
	ctx context.Context,
	cfg Config,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) (TokenVerifierInterface, error) {
	if cfg.Issuer == "" {
		return nil, fmt.Errorf("issuer is required for JWT authentication")
	}

	ctx = oidc.ClientContext(ctx, &otelHTTPClient)
	oidcConfig := &oidc.Config{SkipClientIDCheck: true}

	var verifier *oidc.IDTokenVerifier

	if cfg.JWKSURL != "" {
		logger.Infof("Using manual JWKS URL: %s", cfg.JWKSURL)
		verifier = oidc.NewVerifier(cfg.Issuer, oidc.NewRemoteKeySet(ctx, cfg.JWKSURL), oidcConfig)
	} else {
		logger.Infof("Using OIDC discovery for issuer: %s", cfg.Issuer)
		provider, err := oidc.NewProvider(ctx, cfg.Issuer)
		if err != nil {
			return nil, fmt.Errorf("failed to create OIDC provider: %v", err)
		}
		verifier = provider.Verifier(oidcConfig)
	}

	return NewJWTVerifier(verifier, cfg.AllowedSubjects, cfg.RequiredScope, tracer, monitor, logger), nil
}
