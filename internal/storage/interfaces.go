// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"

	"github.com/canonical/membership-service/internal/types"
)

type StorageInterface interface {
	CreateOrganization(ctx context.Context, org *types.Organization) (*types.Organization, error)
	GetOrganization(ctx context.Context, id string) (*types.Organization, error)
	DeleteOrganization(ctx context.Context, id string) error

	FindMembership(ctx context.Context, orgID, userID string) (*types.Member, error)
	UpsertMembership(ctx context.Context, orgID, userID string, roles []types.Role, active bool) (*types.Member, error)
	AddOwner(ctx context.Context, orgID, userID string) (*types.Member, error)
	UpdateMember(ctx context.Context, orgID, userID string, roles []types.Role, isOwner bool) (*types.Member, error)
	DeactivateMember(ctx context.Context, orgID, userID string) error
	ListMembers(ctx context.Context, orgID string) ([]*types.Member, error)

	CreateInvitation(ctx context.Context, inv *types.Invitation) (*types.Invitation, error)
	GetInvitation(ctx context.Context, orgID, id string) (*types.Invitation, error)
	FindInvitationByToken(ctx context.Context, orgID, token string) (*types.Invitation, error)
	ListInvitations(ctx context.Context, orgID string, status types.InvitationStatus) ([]*types.Invitation, error)
	UpdateInvitationRoles(ctx context.Context, orgID, id string, roles []types.Role) (*types.Invitation, error)
	ResolveInvitation(ctx context.Context, orgID, id, token string, status types.InvitationStatus) (*types.Invitation, error)
	DeletePendingInvitation(ctx context.Context, orgID, id string) error
}
