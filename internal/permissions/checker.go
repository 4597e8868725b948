// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package permissions

import (
	"context"
	"errors"

	"github.com/canonical/membership-service/internal/logging"
	"github.com/canonical/membership-service/internal/monitoring"
	"github.com/canonical/membership-service/internal/storage"
	"github.com/canonical/membership-service/internal/tracing"
	"github.com/canonical/membership-service/internal/types"
)

var _ CheckerInterface = (*Checker)(nil)

// Checker resolves the actor's membership and evaluates it against the policy.
// Any failure while resolving results in a deny.
type Checker struct {
	policy *Policy
	store  MembershipStoreInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (c *Checker) Can(ctx context.Context, orgID, userID, area, action string) bool {
	ctx, span := c.tracer.Start(ctx, "permissions.Checker.Can")
	defer span.End()

	allowed := c.policy.UserCan(c.resolve(ctx, orgID, userID), area, action)
	if !allowed {
		c.logger.Security().AuthzFailure(userID, orgID+"#"+area+":"+action)
		if err := c.monitor.IncSecurityEvent(map[string]string{"event": "authz_denied"}); err != nil {
			c.logger.Debugf("failed to record denied check: %v", err)
		}
	}

	return allowed
}

func (c *Checker) Permissions(ctx context.Context, orgID, userID string) []Permission {
	ctx, span := c.tracer.Start(ctx, "permissions.Checker.Permissions")
	defer span.End()

	return c.policy.GetUserPermissions(c.resolve(ctx, orgID, userID))
}

func (c *Checker) resolve(ctx context.Context, orgID, userID string) *types.Member {
	if orgID == "" || userID == "" {
		return types.NoMembership()
	}

	m, err := c.store.FindMembership(ctx, orgID, userID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			c.logger.Errorf("failed to resolve membership of %s in %s, denying: %v", userID, orgID, err)
		}
		return types.NoMembership()
	}

	return m
}

func NewChecker(policy *Policy, store MembershipStoreInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Checker {
	c := new(Checker)

	c.policy = policy
	c.store = store

	c.tracer = tracer
	c.monitor = monitor
	c.logger = logger

	return c
}
