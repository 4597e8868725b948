// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package invitejoin

import (
	"context"

	"github.com/canonical/membership-service/internal/types"
)

type CoordinatorInterface interface {
	Visit(ctx context.Context, orgID, token, stamp string, redirected bool, visitor *types.Visitor) (*Outcome, error)
	Join(ctx context.Context, orgID, token, stamp string, status types.InvitationStatus, visitor *types.Visitor) (*JoinResult, error)
}

// InvitationsInterface is the public side of the invitation state machine
type InvitationsInterface interface {
	Lookup(ctx context.Context, orgID, token string) (*types.Invitation, error)
	Accept(ctx context.Context, orgID, token, userID string) (*types.Member, error)
	Decline(ctx context.Context, orgID, token string) (*types.Invitation, error)
}

// ProviderInterface is the redirect allow-list and browser flow URLs of the identity provider
type ProviderInterface interface {
	AddAllowedRedirectURLs(ctx context.Context, urls []string) error
	RemoveAllowedRedirectURL(ctx context.Context, url string) error

	LoginURL(returnTo string) string
	RegistrationURL(returnTo string) string
	// LogoutURL ends the browser session carried by cookie and returns to returnTo
	LogoutURL(ctx context.Context, cookie, returnTo string) (string, error)
}
