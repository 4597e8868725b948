// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package invitation

import (
	"context"

	"github.com/canonical/membership-service/internal/types"
)

type ServiceInterface interface {
	Create(ctx context.Context, orgID, actorID string, invitee types.Invitee, roles []types.Role) (*types.Invitation, string, error)
	UpdateRoles(ctx context.Context, orgID, invitationID, actorID string, roles []types.Role) (*types.Invitation, error)
	Cancel(ctx context.Context, orgID, invitationID, actorID string) error
	ListPending(ctx context.Context, orgID, actorID string) ([]*types.Invitation, error)

	Lookup(ctx context.Context, orgID, token string) (*types.Invitation, error)
	Accept(ctx context.Context, orgID, token, userID string) (*types.Member, error)
	Decline(ctx context.Context, orgID, token string) (*types.Invitation, error)
}

type StorageInterface interface {
	GetOrganization(ctx context.Context, id string) (*types.Organization, error)
	UpsertMembership(ctx context.Context, orgID, userID string, roles []types.Role, active bool) (*types.Member, error)

	CreateInvitation(ctx context.Context, inv *types.Invitation) (*types.Invitation, error)
	GetInvitation(ctx context.Context, orgID, id string) (*types.Invitation, error)
	FindInvitationByToken(ctx context.Context, orgID, token string) (*types.Invitation, error)
	ListInvitations(ctx context.Context, orgID string, status types.InvitationStatus) ([]*types.Invitation, error)
	UpdateInvitationRoles(ctx context.Context, orgID, id string, roles []types.Role) (*types.Invitation, error)
	ResolveInvitation(ctx context.Context, orgID, id, token string, status types.InvitationStatus) (*types.Invitation, error)
	DeletePendingInvitation(ctx context.Context, orgID, id string) error
}

// TxManagerInterface runs fn inside a single database transaction
type TxManagerInterface interface {
	WithTx(ctx context.Context, fn func(context.Context) error) error
	AfterCommit(ctx context.Context, fn func())
}

type PermissionsInterface interface {
	Can(ctx context.Context, orgID, userID, area, action string) bool
}

type AuthzInterface interface {
	SyncMember(ctx context.Context, orgID, userID string, roles []types.Role, isOwner bool) error
}

type NotifierInterface interface {
	SendInviteCreated(ctx context.Context, inv *types.Invitation, org *types.Organization, link string) error
	SendInviteResolved(ctx context.Context, inv *types.Invitation, org *types.Organization, inviterEmail string) error
}

type DirectoryInterface interface {
	UserEmail(ctx context.Context, userID string) (string, error)
}
