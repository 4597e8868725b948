// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package notification

import (
	"context"

	"github.com/canonical/membership-service/internal/logging"
	"github.com/canonical/membership-service/internal/types"
)

// NoopSender logs notifications instead of delivering them, used when no SMTP host is configured
type NoopSender struct {
	logger logging.LoggerInterface
}

func (n *NoopSender) SendInviteCreated(ctx context.Context, inv *types.Invitation, org *types.Organization, link string) error {
	n.logger.Debugf("skipping invitation e-mail for %s in %s", inv.ID, org.ID)
	return nil
}

func (n *NoopSender) SendInviteResolved(ctx context.Context, inv *types.Invitation, org *types.Organization, inviterEmail string) error {
	n.logger.Debugf("skipping %s notification for %s in %s", inv.Status, inv.ID, org.ID)
	return nil
}

func NewNoopSender(logger logging.LoggerInterface) *NoopSender {
	return &NoopSender{logger: logger}
}
