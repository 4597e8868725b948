// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package invitejoin

import (
	"context"
	"net/url"
	"time"

	"github.com/canonical/membership-service/internal/apperror"
	"github.com/canonical/membership-service/internal/logging"
	"github.com/canonical/membership-service/internal/monitoring"
	"github.com/canonical/membership-service/internal/tracing"
	"github.com/canonical/membership-service/internal/types"
	"github.com/canonical/membership-service/pkg/invitation"
)

// RedirectMarker flags the visit that follows a forced logout
const RedirectMarker = "redirect"

// Outcome is what the invite page shows: either a redirect to follow or the
// invitation with the ways to sign in.
type Outcome struct {
	RedirectTo string `json:"-"`

	Invitation    *types.Invitation `json:"invitation"`
	Authenticated bool              `json:"authenticated"`
	// Stamp is set once the session came back from a sign in started on
	// this page, it must be sent along with the acceptance.
	Stamp           string `json:"stamp,omitempty"`
	LoginURL        string `json:"loginUrl"`
	RegistrationURL string `json:"registrationUrl"`
}

type JoinResult struct {
	Member     *types.Member     `json:"member,omitempty"`
	Invitation *types.Invitation `json:"invitation,omitempty"`
}

type Coordinator struct {
	invitations InvitationsInterface
	provider    ProviderInterface

	publicURL   string
	freshWindow time.Duration
	signingKey  []byte
	now         func() time.Time

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Visit runs when the invite link is opened. Any session that was not signed
// in from this page is logged out first, through a return URL registered with
// the provider for the duration of the round trip.
func (c *Coordinator) Visit(ctx context.Context, orgID, token, stamp string, redirected bool, visitor *types.Visitor) (*Outcome, error) {
	ctx, span := c.tracer.Start(ctx, "invitejoin.Coordinator.Visit")
	defer span.End()

	inv, err := c.invitations.Lookup(ctx, orgID, token)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, apperror.InvalidLink()
	}

	link := invitation.Link(c.publicURL, orgID, token)
	returnURL := link + "&" + RedirectMarker + "=true"

	if redirected {
		if err := c.provider.RemoveAllowedRedirectURL(ctx, returnURL); err != nil {
			c.logger.Warnf("failed to deregister return url for organization %s: %v", orgID, err)
		}
	}

	if visitor.Authenticated {
		if c.signedInHere(visitor, orgID, token, stamp) {
			return &Outcome{Invitation: inv, Authenticated: true, Stamp: stamp}, nil
		}

		// a return visit that is still signed in means the logout did not
		// happen, sending it round again would loop
		if !redirected {
			if to := c.logout(ctx, orgID, returnURL, visitor); to != "" {
				return &Outcome{RedirectTo: to}, nil
			}
		}
	}

	stamped, err := c.issueStamp(orgID, token)
	if err != nil {
		c.logger.Errorf("failed to stamp sign in urls: %v", err)
		return nil, apperror.Wrap(apperror.CodeProviderFailure, "failed to prepare sign in", err)
	}
	signInReturn := link + "&" + url.Values{StampParam: {stamped}}.Encode()

	return &Outcome{
		Invitation:      inv,
		Authenticated:   visitor.Authenticated,
		LoginURL:        c.provider.LoginURL(signInReturn),
		RegistrationURL: c.provider.RegistrationURL(signInReturn),
	}, nil
}

// logout returns where to send the visitor to end their session, or nothing
// when the round trip cannot be set up and the invite is shown as is.
func (c *Coordinator) logout(ctx context.Context, orgID, returnURL string, visitor *types.Visitor) string {
	to, err := c.provider.LogoutURL(ctx, visitor.SessionCookie, returnURL)
	if err != nil {
		c.logger.Errorf("failed to start logout, skipping it: %v", err)
		return ""
	}

	if err := c.provider.AddAllowedRedirectURLs(ctx, []string{returnURL}); err != nil {
		c.logger.Errorf("failed to register return url, skipping logout: %v", err)
		return ""
	}

	c.logger.Security().ForcedLogout(visitor.UserID, orgID)
	if err := c.monitor.IncSecurityEvent(map[string]string{"event": "forced_logout"}); err != nil {
		c.logger.Debugf("failed to record forced logout: %v", err)
	}

	return to
}

// Join resolves the invitation for the visitor. Accepting needs a session
// signed in from the invite page within the fresh-session window, declining
// needs none.
func (c *Coordinator) Join(ctx context.Context, orgID, token, stamp string, status types.InvitationStatus, visitor *types.Visitor) (*JoinResult, error) {
	ctx, span := c.tracer.Start(ctx, "invitejoin.Coordinator.Join")
	defer span.End()

	switch status {
	case types.InvitationAccepted:
		if !visitor.Authenticated || visitor.UserID == "" {
			return nil, apperror.ErrAuth
		}
		if !c.signedInHere(visitor, orgID, token, stamp) {
			return nil, apperror.New(apperror.CodeAuth, "sign in again to accept this invitation")
		}

		member, err := c.invitations.Accept(ctx, orgID, token, visitor.UserID)
		if err != nil {
			return nil, err
		}
		return &JoinResult{Member: member}, nil
	case types.InvitationDeclined:
		inv, err := c.invitations.Decline(ctx, orgID, token)
		if err != nil {
			return nil, err
		}
		return &JoinResult{Invitation: inv}, nil
	default:
		return nil, apperror.New(apperror.CodeInvalidData, "status must be accepted or declined")
	}
}

// signedInHere holds for a session established after the stamp on the sign
// in URLs of this invite was issued, and within the fresh-session window.
func (c *Coordinator) signedInHere(v *types.Visitor, orgID, token, stamp string) bool {
	if !v.Authenticated || v.AuthenticatedAt.IsZero() || stamp == "" {
		return false
	}

	issuedAt, err := c.stampIssuedAt(stamp, orgID, token)
	if err != nil {
		c.logger.Debugf("rejecting sign in stamp for organization %s: %v", orgID, err)
		return false
	}

	if v.AuthenticatedAt.Before(issuedAt) {
		return false
	}

	return c.now().Sub(v.AuthenticatedAt) <= c.freshWindow
}

func NewCoordinator(
	invitations InvitationsInterface,
	provider ProviderInterface,
	publicURL string,
	freshWindow time.Duration,
	signingKey []byte,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Coordinator {
	return &Coordinator{
		invitations: invitations,
		provider:    provider,
		publicURL:   publicURL,
		freshWindow: freshWindow,
		signingKey:  signingKey,
		now:         time.Now,
		tracer:      tracer,
		monitor:     monitor,
		logger:      logger,
	}
}
