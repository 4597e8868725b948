// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package ory

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	client "github.com/ory/client-go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/canonical/membership-service/internal/apperror"
	"github.com/canonical/membership-service/internal/logging"
	"github.com/canonical/membership-service/internal/monitoring"
	"github.com/canonical/membership-service/internal/tracing"
	"github.com/canonical/membership-service/internal/types"
)

const (
	redirectURIsPath = "/post_logout_redirect_uris"
	// attempts of the conditional removal before giving up on a busy allow-list
	removeAttempts = 3
)

var _ ClientInterface = (*Client)(nil)

type Config struct {
	KratosPublicURL string
	KratosAdminURL  string
	HydraAdminURL   string
	// OAuth2ClientID owns the post logout redirect allow-list
	OAuth2ClientID string
	Timeout        time.Duration
}

type Client struct {
	kratosPublic *client.APIClient
	kratosAdmin  *client.APIClient
	hydraAdmin   *client.APIClient

	kratosPublicURL string
	clientID        string
	timeout         time.Duration

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (c *Client) Visitor(ctx context.Context, cookie string) (*types.Visitor, error) {
	ctx, span := c.tracer.Start(ctx, "ory.Client.Visitor")
	defer span.End()

	if cookie == "" {
		return &types.Visitor{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	session, r, err := c.kratosPublic.FrontendAPI.ToSession(ctx).Cookie(cookie).Execute()
	if err != nil {
		if r != nil && (r.StatusCode == http.StatusUnauthorized || r.StatusCode == http.StatusForbidden) {
			c.availability("kratos", 1)
			return &types.Visitor{}, nil
		}
		c.availability("kratos", 0)
		return nil, apperror.Wrap(apperror.CodeProviderFailure, "failed to resolve session", err)
	}
	c.availability("kratos", 1)

	if !session.GetActive() || session.Identity == nil {
		return &types.Visitor{}, nil
	}

	return &types.Visitor{
		Authenticated:   true,
		UserID:          session.Identity.Id,
		Email:           traitEmail(session.Identity.Traits),
		AuthenticatedAt: session.GetAuthenticatedAt(),
		SessionCookie:   cookie,
	}, nil
}

func (c *Client) UserEmail(ctx context.Context, userID string) (string, error) {
	ctx, span := c.tracer.Start(ctx, "ory.Client.UserEmail")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	identity, r, err := c.kratosAdmin.IdentityAPI.GetIdentity(ctx, userID).Execute()
	if err != nil {
		if r != nil && r.StatusCode == http.StatusNotFound {
			return "", apperror.Wrap(apperror.CodeNotFound, "identity not found", err)
		}
		return "", apperror.Wrap(apperror.CodeProviderFailure, "failed to get identity", err)
	}

	email := traitEmail(identity.Traits)
	if email == "" {
		return "", apperror.New(apperror.CodeNotFound, "identity has no email")
	}

	return email, nil
}

// AddAllowedRedirectURLs appends the URLs missing from the allow-list. Appending
// through JSON patch keeps concurrent registrations from overwriting each other.
func (c *Client) AddAllowedRedirectURLs(ctx context.Context, urls []string) error {
	ctx, span := c.tracer.Start(ctx, "ory.Client.AddAllowedRedirectURLs")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	current, err := c.allowList(ctx)
	if err != nil {
		return err
	}

	var patches []client.JsonPatch
	for _, u := range urls {
		if slices.Contains(current, u) {
			continue
		}
		patches = append(patches, client.JsonPatch{Op: "add", Path: redirectURIsPath + "/-", Value: u})
		current = append(current, u)
	}

	if len(patches) == 0 {
		return nil
	}

	// appending to a missing array is rejected, seed it instead
	if len(current) == len(patches) {
		patches = []client.JsonPatch{{Op: "add", Path: redirectURIsPath, Value: current}}
	}

	return c.patch(ctx, patches)
}

// RemoveAllowedRedirectURL drops a URL with a test-then-remove patch so a
// concurrent change to the list never removes the wrong entry.
func (c *Client) RemoveAllowedRedirectURL(ctx context.Context, u string) error {
	ctx, span := c.tracer.Start(ctx, "ory.Client.RemoveAllowedRedirectURL")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var err error
	for range removeAttempts {
		var current []string
		current, err = c.allowList(ctx)
		if err != nil {
			return err
		}

		idx := slices.Index(current, u)
		if idx < 0 {
			return nil
		}

		path := fmt.Sprintf("%s/%d", redirectURIsPath, idx)
		err = c.patch(ctx, []client.JsonPatch{
			{Op: "test", Path: path, Value: u},
			{Op: "remove", Path: path},
		})
		if err == nil {
			return nil
		}

		c.logger.Debugf("conditional removal of %s failed, retrying: %v", u, err)
	}

	return err
}

func (c *Client) LoginURL(returnTo string) string {
	return c.selfService("login", returnTo)
}

func (c *Client) RegistrationURL(returnTo string) string {
	return c.selfService("registration", returnTo)
}

// LogoutURL creates a Kratos browser logout flow for the session carried by
// cookie. Kratos only honours returnTo when it matches its allowed return URLs,
// the Hydra allow-list is not consulted on this hop.
func (c *Client) LogoutURL(ctx context.Context, cookie, returnTo string) (string, error) {
	ctx, span := c.tracer.Start(ctx, "ory.Client.LogoutURL")
	defer span.End()

	if cookie == "" {
		return "", apperror.New(apperror.CodeAuth, "no browser session to log out")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	flow, r, err := c.kratosPublic.FrontendAPI.CreateBrowserLogoutFlow(ctx).Cookie(cookie).ReturnTo(returnTo).Execute()
	if err != nil {
		if r != nil && r.StatusCode == http.StatusUnauthorized {
			c.availability("kratos", 1)
			return "", apperror.Wrap(apperror.CodeAuth, "session already ended", err)
		}
		c.availability("kratos", 0)
		return "", apperror.Wrap(apperror.CodeProviderFailure, "failed to create logout flow", err)
	}
	c.availability("kratos", 1)

	return flow.LogoutUrl, nil
}

func (c *Client) selfService(flow, returnTo string) string {
	q := url.Values{}
	q.Set("return_to", returnTo)

	return fmt.Sprintf("%s/self-service/%s/browser?%s", strings.TrimSuffix(c.kratosPublicURL, "/"), flow, q.Encode())
}

func (c *Client) allowList(ctx context.Context) ([]string, error) {
	oauth2Client, _, err := c.hydraAdmin.OAuth2API.GetOAuth2Client(ctx, c.clientID).Execute()
	if err != nil {
		c.availability("hydra", 0)
		return nil, apperror.Wrap(apperror.CodeProviderFailure, "failed to read redirect allow-list", err)
	}
	c.availability("hydra", 1)

	return oauth2Client.PostLogoutRedirectUris, nil
}

func (c *Client) patch(ctx context.Context, patches []client.JsonPatch) error {
	_, _, err := c.hydraAdmin.OAuth2API.PatchOAuth2Client(ctx, c.clientID).JsonPatch(patches).Execute()
	if err != nil {
		return apperror.Wrap(apperror.CodeProviderFailure, "failed to update redirect allow-list", err)
	}

	return nil
}

func (c *Client) availability(component string, v float64) {
	if err := c.monitor.SetDependencyAvailability(map[string]string{"component": component}, v); err != nil {
		c.logger.Debugf("failed to set dependency availability: %v", err)
	}
}

func traitEmail(traits any) string {
	m, ok := traits.(map[string]any)
	if !ok {
		return ""
	}

	email, _ := m["email"].(string)
	return email
}

func newAPIClient(serverURL string) *client.APIClient {
	conf := client.NewConfiguration()
	conf.Servers = client.ServerConfigurations{{URL: serverURL}}
	conf.HTTPClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}

	return client.NewAPIClient(conf)
}

func NewClient(cfg Config, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) (*Client, error) {
	if cfg.OAuth2ClientID == "" {
		return nil, errors.New("an OAuth2 client id is required to manage the redirect allow-list")
	}

	c := new(Client)

	c.kratosPublic = newAPIClient(cfg.KratosPublicURL)
	c.kratosAdmin = newAPIClient(cfg.KratosAdminURL)
	c.hydraAdmin = newAPIClient(cfg.HydraAdminURL)

	c.kratosPublicURL = cfg.KratosPublicURL
	c.clientID = cfg.OAuth2ClientID
	c.timeout = cfg.Timeout
	if c.timeout <= 0 {
		c.timeout = 3 * time.Second
	}

	c.tracer = tracer
	c.monitor = monitor
	c.logger = logger

	return c, nil
}
