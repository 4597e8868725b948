// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package notification

import (
	"context"

	"github.com/canonical/membership-service/internal/types"
)

type SenderInterface interface {
	// SendInviteCreated delivers the invitation link to the invitee
	SendInviteCreated(ctx context.Context, inv *types.Invitation, org *types.Organization, link string) error
	// SendInviteResolved tells the inviter how the invitation ended
	SendInviteResolved(ctx context.Context, inv *types.Invitation, org *types.Organization, inviterEmail string) error
}
