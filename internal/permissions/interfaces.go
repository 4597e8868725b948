// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package permissions

import (
	"context"

	"github.com/canonical/membership-service/internal/types"
)

// MembershipStoreInterface is the read side of the membership store used to resolve actors
type MembershipStoreInterface interface {
	FindMembership(ctx context.Context, orgID, userID string) (*types.Member, error)
}

// CheckerInterface answers authorization questions for an actor in an organization
type CheckerInterface interface {
	Can(ctx context.Context, orgID, userID, area, action string) bool
	Permissions(ctx context.Context, orgID, userID string) []Permission
}
