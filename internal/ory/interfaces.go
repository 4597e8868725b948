// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package ory

import (
	"context"

	"github.com/canonical/membership-service/internal/types"
)

// ClientInterface is the identity provider as seen by the membership service
type ClientInterface interface {
	// Visitor resolves the browser session carried by the cookie header,
	// an absent or expired session yields an unauthenticated visitor
	Visitor(ctx context.Context, cookie string) (*types.Visitor, error)
	UserEmail(ctx context.Context, userID string) (string, error)

	AddAllowedRedirectURLs(ctx context.Context, urls []string) error
	// RemoveAllowedRedirectURL succeeds when the URL is not registered
	RemoveAllowedRedirectURL(ctx context.Context, url string) error

	LoginURL(returnTo string) string
	RegistrationURL(returnTo string) string
	// LogoutURL ends the browser session carried by cookie and returns to returnTo
	LogoutURL(ctx context.Context, cookie, returnTo string) (string, error)
}
