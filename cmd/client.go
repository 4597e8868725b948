// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/canonical/membership-service/internal/apperror"
	"github.com/canonical/membership-service/internal/identity"
)

var (
	clientID     string
	clientSecret string
	tokenURL     string
	issuerURL    string
	scopes       []string
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&clientID, "client-id", "", "OAuth2 client ID")
	flags.StringVar(&clientSecret, "client-secret", "", "OAuth2 client secret")
	flags.StringVar(&tokenURL, "token-url", "", "Token URL")
	flags.StringVar(&issuerURL, "issuer-url", "", "Issuer URL (for OIDC discovery)")
	flags.StringSliceVar(&scopes, "scopes", []string{}, "Scopes (comma-separated)")
}

// credentials resolves the client credentials configuration, discovering the
// token endpoint from the issuer when no token URL is given.
func credentials(ctx context.Context) (*clientcredentials.Config, error) {
	if clientID == "" || clientSecret == "" {
		return nil, errors.New("--client-id and --client-secret are required")
	}

	endpoint := tokenURL
	if endpoint == "" {
		if issuerURL == "" {
			return nil, errors.New("either --token-url or --issuer-url must be provided")
		}

		provider, err := oidc.NewProvider(ctx, issuerURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create OIDC provider from issuer: %w", err)
		}
		endpoint = provider.Endpoint().TokenURL
	}

	return &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     endpoint,
		Scopes:       scopes,
	}, nil
}

// apiClient talks to the management API as a machine client
type apiClient struct {
	endpoint string
	userID   string
	http     *http.Client
}

// newAPIClient authenticates with client credentials when a client id is set,
// otherwise requests are sent without a bearer token.
func newAPIClient(ctx context.Context) (*apiClient, error) {
	base := &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}

	c := &apiClient{
		endpoint: strings.TrimSuffix(httpEndpoint, "/"),
		userID:   userID,
		http:     base,
	}
	if !strings.HasPrefix(c.endpoint, "http") {
		c.endpoint = "http://" + c.endpoint
	}

	if clientID == "" {
		return c, nil
	}

	cfg, err := credentials(ctx)
	if err != nil {
		return nil, err
	}
	c.http = cfg.Client(context.WithValue(ctx, oauth2.HTTPClient, base))

	return c, nil
}

// do sends body as JSON and decodes a successful answer into out, API errors
// are returned as *apperror.Error.
func (c *apiClient) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	target := c.endpoint + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userID != "" {
		req.Header.Set(identity.HeaderName, c.userID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var e apperror.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Code == "" {
			return fmt.Errorf("api error (status %d)", resp.StatusCode)
		}
		return apperror.New(e.Code, e.Message)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
