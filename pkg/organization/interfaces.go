// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package organization

import (
	"context"

	"github.com/canonical/membership-service/internal/permissions"
	"github.com/canonical/membership-service/internal/types"
)

type ServiceInterface interface {
	Create(ctx context.Context, actorID, name, avatar string) (*types.Organization, error)
	Get(ctx context.Context, actorID, id string) (*types.Organization, error)
	Delete(ctx context.Context, actorID, id string) error
	TransferOwnership(ctx context.Context, actorID, id, newOwnerID string) error

	ListMembers(ctx context.Context, actorID, id string) ([]*types.Member, error)
	UpdateMemberRoles(ctx context.Context, actorID, id, userID string, roles []types.Role) (*types.Member, error)
	RemoveMember(ctx context.Context, actorID, id, userID string) error
	MyPermissions(ctx context.Context, actorID, id string) ([]permissions.Permission, error)
}

type StorageInterface interface {
	CreateOrganization(ctx context.Context, org *types.Organization) (*types.Organization, error)
	GetOrganization(ctx context.Context, id string) (*types.Organization, error)
	DeleteOrganization(ctx context.Context, id string) error

	FindMembership(ctx context.Context, orgID, userID string) (*types.Member, error)
	AddOwner(ctx context.Context, orgID, userID string) (*types.Member, error)
	UpdateMember(ctx context.Context, orgID, userID string, roles []types.Role, isOwner bool) (*types.Member, error)
	DeactivateMember(ctx context.Context, orgID, userID string) error
	ListMembers(ctx context.Context, orgID string) ([]*types.Member, error)
}

type TxManagerInterface interface {
	WithTx(ctx context.Context, fn func(context.Context) error) error
}

type PermissionsInterface interface {
	Can(ctx context.Context, orgID, userID, area, action string) bool
	Permissions(ctx context.Context, orgID, userID string) []permissions.Permission
}

type AuthzInterface interface {
	SyncMember(ctx context.Context, orgID, userID string, roles []types.Role, isOwner bool) error
	RemoveMember(ctx context.Context, orgID, userID string) error
	DeleteOrganization(ctx context.Context, orgID string) error
}
