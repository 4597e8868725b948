// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"

	"github.com/canonical/membership-service/internal/authorization"
	"github.com/canonical/membership-service/internal/config"
	"github.com/canonical/membership-service/internal/db"
	"github.com/canonical/membership-service/internal/identity"
	"github.com/canonical/membership-service/internal/logging"
	"github.com/canonical/membership-service/internal/monitoring/prometheus"
	"github.com/canonical/membership-service/internal/notification"
	"github.com/canonical/membership-service/internal/openfga"
	"github.com/canonical/membership-service/internal/ory"
	"github.com/canonical/membership-service/internal/permissions"
	"github.com/canonical/membership-service/internal/storage"
	"github.com/canonical/membership-service/internal/tracing"
	"github.com/canonical/membership-service/pkg/authentication"
	"github.com/canonical/membership-service/pkg/invitation"
	"github.com/canonical/membership-service/pkg/invitejoin"
	"github.com/canonical/membership-service/pkg/organization"
	"github.com/canonical/membership-service/pkg/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "serve starts the web server",
	Long:  `Launch the web application, list of environment variables is available in the readme`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve() error {
	specs := new(config.EnvSpec)
	if err := envconfig.Process("", specs); err != nil {
		return fmt.Errorf("issues with environment sourcing: %s", err)
	}

	if len(specs.InviteSigningKey) < 32 {
		return fmt.Errorf("INVITE_SIGNING_KEY must be at least 32 bytes")
	}

	logger := logging.NewLogger(specs.LogLevel)
	logger.Debugf("env vars: %v", specs)
	defer logger.Sync()

	monitor := prometheus.NewMonitor("membership-service", logger)
	tracer := tracing.NewTracer(tracing.NewConfig(specs.TracingEnabled, specs.OtelGRPCEndpoint, specs.OtelHTTPEndpoint, logger))

	dbClient, err := db.NewDBClient(
		db.Config{
			DSN:             specs.DSN,
			MaxConns:        specs.DBMaxConns,
			MinConns:        specs.DBMinConns,
			MaxConnLifetime: specs.DBMaxConnLifetime,
			MaxConnIdleTime: specs.DBMaxConnIdleTime,
			TracingEnabled:  specs.TracingEnabled,
		},
		tracer,
		monitor,
		logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create database client: %v", err)
	}
	defer dbClient.Close()

	s := storage.NewStorage(dbClient, tracer, monitor, logger)

	policy, err := permissions.LoadPolicy(specs.PermissionPolicyFile)
	if err != nil {
		return fmt.Errorf("failed to load permission policy: %v", err)
	}
	checker := permissions.NewChecker(policy, s, tracer, monitor, logger)

	var authorizer *authorization.Authorizer
	if specs.AuthorizationEnabled {
		ofga := openfga.NewClient(
			openfga.NewConfig(
				specs.OpenfgaApiScheme,
				specs.OpenfgaApiHost,
				specs.OpenfgaStoreId,
				specs.OpenfgaApiToken,
				specs.OpenfgaModelId,
				specs.Debug,
				tracer,
				monitor,
				logger,
			),
		)
		authorizer = authorization.NewAuthorizer(ofga, tracer, monitor, logger)
		logger.Info("Authorization is enabled")
		if err := authorizer.ValidateModel(context.Background()); err != nil {
			return fmt.Errorf("invalid authorization model provided: %v", err)
		}
	} else {
		authorizer = authorization.NewAuthorizer(
			openfga.NewNoopClient(tracer, monitor, logger),
			tracer,
			monitor,
			logger,
		)
		logger.Info("Using noop authorizer")
	}

	oryClient, err := ory.NewClient(
		ory.Config{
			KratosPublicURL: specs.KratosPublicURL,
			KratosAdminURL:  specs.KratosAdminURL,
			HydraAdminURL:   specs.HydraAdminURL,
			OAuth2ClientID:  specs.OAuth2ClientID,
			Timeout:         specs.ProviderTimeout,
		},
		tracer,
		monitor,
		logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create identity provider client: %v", err)
	}

	var sender notification.SenderInterface
	if specs.SMTPHost != "" {
		sender = notification.NewSMTPSender(
			notification.Config{
				Host:     specs.SMTPHost,
				Port:     specs.SMTPPort,
				Username: specs.SMTPUsername,
				Password: specs.SMTPPassword,
				From:     specs.SMTPFrom,
			},
			tracer,
			monitor,
			logger,
		)
	} else {
		sender = notification.NewNoopSender(logger)
		logger.Info("SMTP is not configured, notifications are disabled")
	}

	var verifier authentication.TokenVerifierInterface
	if specs.AuthenticationEnabled {
		verifier, err = authentication.NewJWTAuthenticator(
			context.Background(),
			authentication.Config{
				Issuer:          specs.JWTIssuer,
				JWKSURL:         specs.JWKSURL,
				AllowedSubjects: specs.AllowedSubjects,
				RequiredScope:   specs.RequiredScope,
			},
			tracer,
			monitor,
			logger,
		)
		if err != nil {
			return fmt.Errorf("failed to create JWT authenticator: %v", err)
		}
	} else {
		verifier = authentication.NewNoopVerifier()
		logger.Warn("Bearer token verification is disabled")
	}

	invitationService := invitation.NewService(
		s,
		dbClient,
		checker,
		authorizer,
		sender,
		oryClient,
		specs.PublicURL,
		specs.InvitationLifetime,
		tracer,
		monitor,
		logger,
	)
	organizationService := organization.NewService(s, dbClient, checker, authorizer, tracer, monitor, logger)
	coordinator := invitejoin.NewCoordinator(
		invitationService,
		oryClient,
		specs.PublicURL,
		specs.FreshSessionWindow,
		[]byte(specs.InviteSigningKey),
		tracer,
		monitor,
		logger,
	)

	router := web.NewRouter(
		web.Config{
			AllowedOrigins: specs.AllowedOrigins,
			Authentication: authentication.NewMiddleware(verifier, tracer, monitor, logger).Authenticate(),
			Identity:       identity.NewMiddleware(oryClient, tracer, monitor, logger).HTTPMiddleware,
			Management: []web.APIInterface{
				organization.NewAPI(organizationService, logger),
				invitation.NewAPI(invitationService, logger),
			},
			Public: []web.APIInterface{
				invitejoin.NewAPI(coordinator, logger),
			},
		},
		dbClient,
		tracer,
		monitor,
		logger,
	)
	logger.Infof("Starting HTTP server on port %v", specs.Port)

	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%v", specs.Port),
		WriteTimeout: time.Second * 60,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      router,
	}

	var serverError error
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Security().SystemStartup()
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError = fmt.Errorf("server error: %w", err)
			c <- os.Interrupt
		}
	}()

	<-c

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logger.Security().SystemShutdown()
	if err := srv.Shutdown(ctx); err != nil {
		serverError = fmt.Errorf("server shutdown error: %w", err)
	}

	return serverError
}
