// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package config

import (
	"time"
)

// EnvSpec is the basic environment configuration setup needed for the app to start
type EnvSpec struct {
	OtelGRPCEndpoint string `envconfig:"otel_grpc_endpoint"`
	OtelHTTPEndpoint string `envconfig:"otel_http_endpoint"`
	TracingEnabled   bool   `envconfig:"tracing_enabled" default:"true"`

	LogLevel string `envconfig:"log_level" default:"error"`
	Debug    bool   `envconfig:"debug" default:"false"`

	Port           int      `envconfig:"port" default:"8080"`
	AllowedOrigins []string `envconfig:"allowed_origins"`

	// PublicURL is the externally reachable base URL used to build invitation links
	PublicURL string `envconfig:"public_url" required:"true"`

	DSN string `envconfig:"DSN" required:"true"`

	DBMaxConns        int32         `envconfig:"db_max_conns" default:"25"`
	DBMinConns        int32         `envconfig:"db_min_conns" default:"2"`
	DBMaxConnLifetime time.Duration `envconfig:"db_max_conn_lifetime" default:"1h"`
	DBMaxConnIdleTime time.Duration `envconfig:"db_max_conn_idle_time" default:"30m"`

	InvitationLifetime   time.Duration `envconfig:"invitation_lifetime" default:"168h"`
	PermissionPolicyFile string        `envconfig:"permission_policy_file"`

	KratosPublicURL string `envconfig:"kratos_public_url" required:"true"`
	KratosAdminURL  string `envconfig:"kratos_admin_url" required:"true"`
	HydraAdminURL   string `envconfig:"hydra_admin_url" required:"true"`
	OAuth2ClientID  string `envconfig:"oauth2_client_id" required:"true"`

	ProviderTimeout    time.Duration `envconfig:"provider_timeout" default:"3s"`
	FreshSessionWindow time.Duration `envconfig:"fresh_session_window" default:"15m"`
	// InviteSigningKey signs the stamp tying a sign in to the invite page it started from
	InviteSigningKey string `envconfig:"invite_signing_key" required:"true"`

	SMTPHost     string `envconfig:"smtp_host"`
	SMTPPort     int    `envconfig:"smtp_port" default:"587"`
	SMTPUsername string `envconfig:"smtp_username"`
	SMTPPassword string `envconfig:"smtp_password"`
	SMTPFrom     string `envconfig:"smtp_from" default:"no-reply@localhost"`

	AuthenticationEnabled bool     `envconfig:"authentication_enabled" default:"false"`
	JWTIssuer             string   `envconfig:"jwt_issuer"`
	JWKSURL               string   `envconfig:"jwks_url"`
	AllowedSubjects       []string `envconfig:"allowed_subjects"`
	RequiredScope         string   `envconfig:"required_scope"`

	AuthorizationEnabled bool   `envconfig:"authorization_enabled" default:"false"`
	OpenfgaApiScheme     string `envconfig:"openfga_api_scheme" default:""`
	OpenfgaApiHost       string `envconfig:"openfga_api_host"`
	OpenfgaApiToken      string `envconfig:"openfga_api_token"`
	OpenfgaStoreId       string `envconfig:"openfga_store_id"`
	OpenfgaModelId       string `envconfig:"openfga_authorization_model_id" default:""`
}
