// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package organization

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"

	"github.com/canonical/membership-service/internal/apperror"
	"github.com/canonical/membership-service/internal/logging"
	"github.com/canonical/membership-service/internal/monitoring"
	"github.com/canonical/membership-service/internal/permissions"
	"github.com/canonical/membership-service/internal/storage"
	"github.com/canonical/membership-service/internal/tracing"
	"github.com/canonical/membership-service/internal/types"
)

type organizationInput struct {
	Name   string `validate:"required,max=200"`
	Avatar string `validate:"omitempty,url"`
}

type Service struct {
	storage StorageInterface
	tx      TxManagerInterface
	perms   PermissionsInterface
	authz   AuthzInterface

	validate *validator.Validate

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Create makes the actor the owner of a new organization.
func (s *Service) Create(ctx context.Context, actorID, name, avatar string) (*types.Organization, error) {
	ctx, span := s.tracer.Start(ctx, "organization.Service.Create")
	defer span.End()

	if actorID == "" {
		return nil, apperror.ErrAuth
	}

	if err := s.validate.Struct(organizationInput{Name: name, Avatar: avatar}); err != nil {
		return nil, apperror.Wrap(apperror.CodeInvalidData, "invalid organization", err)
	}

	var org *types.Organization
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		created, err := s.storage.CreateOrganization(ctx, &types.Organization{Name: name, Avatar: avatar})
		if err != nil {
			return err
		}

		if _, err := s.storage.AddOwner(ctx, created.ID, actorID); err != nil {
			return err
		}

		org = created
		return nil
	})
	if err != nil {
		return nil, s.storageError(err, "failed to create organization")
	}

	s.mirror(ctx, org.ID, actorID, []types.Role{types.RoleOwner}, true)

	return org, nil
}

func (s *Service) Get(ctx context.Context, actorID, id string) (*types.Organization, error) {
	ctx, span := s.tracer.Start(ctx, "organization.Service.Get")
	defer span.End()

	if err := s.authorize(ctx, id, actorID, permissions.AreaOrganization, permissions.ActionView); err != nil {
		return nil, err
	}

	org, err := s.storage.GetOrganization(ctx, id)
	if err != nil {
		return nil, s.storageError(err, "failed to get organization")
	}

	return org, nil
}

func (s *Service) Delete(ctx context.Context, actorID, id string) error {
	ctx, span := s.tracer.Start(ctx, "organization.Service.Delete")
	defer span.End()

	if err := s.authorize(ctx, id, actorID, permissions.AreaOrganization, permissions.ActionDeleteOrg); err != nil {
		return err
	}

	if err := s.storage.DeleteOrganization(ctx, id); err != nil {
		return s.storageError(err, "failed to delete organization")
	}

	if err := s.authz.DeleteOrganization(ctx, id); err != nil {
		s.logger.Errorf("failed to delete relations of organization %s: %v", id, err)
	}

	return nil
}

// TransferOwnership hands the owner flag and role to another active member.
// The previous owner stays a member, falling back to admin when owner was
// their only role.
func (s *Service) TransferOwnership(ctx context.Context, actorID, id, newOwnerID string) error {
	ctx, span := s.tracer.Start(ctx, "organization.Service.TransferOwnership")
	defer span.End()

	if err := s.authorize(ctx, id, actorID, permissions.AreaOrganization, permissions.ActionTransferOwnership); err != nil {
		return err
	}

	if newOwnerID == "" || newOwnerID == actorID {
		return apperror.New(apperror.CodeInvalidData, "new owner must be another member")
	}

	var previous, next *types.Member
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		target, err := s.storage.FindMembership(ctx, id, newOwnerID)
		if err != nil {
			return err
		}
		if !target.Active {
			return storage.ErrNotFound
		}

		current, err := s.storage.FindMembership(ctx, id, actorID)
		if err != nil {
			return err
		}

		// the old flag goes first, only one active owner may exist at a time
		previous, err = s.storage.UpdateMember(ctx, id, actorID, demote(current.Roles), false)
		if err != nil {
			return err
		}

		next, err = s.storage.UpdateMember(ctx, id, newOwnerID, types.MergeRoles(target.Roles, []types.Role{types.RoleOwner}), true)
		return err
	})
	if err != nil {
		return s.storageError(err, "failed to transfer ownership")
	}

	s.logger.Security().OwnershipTransferred(actorID, id, newOwnerID)

	s.mirror(ctx, id, previous.UserID, previous.Roles, previous.IsOwner)
	s.mirror(ctx, id, next.UserID, next.Roles, next.IsOwner)

	return nil
}

func (s *Service) ListMembers(ctx context.Context, actorID, id string) ([]*types.Member, error) {
	ctx, span := s.tracer.Start(ctx, "organization.Service.ListMembers")
	defer span.End()

	if err := s.authorize(ctx, id, actorID, permissions.AreaMember, permissions.ActionView); err != nil {
		return nil, err
	}

	members, err := s.storage.ListMembers(ctx, id)
	if err != nil {
		return nil, s.storageError(err, "failed to list members")
	}

	return members, nil
}

func (s *Service) UpdateMemberRoles(ctx context.Context, actorID, id, userID string, roles []types.Role) (*types.Member, error) {
	ctx, span := s.tracer.Start(ctx, "organization.Service.UpdateMemberRoles")
	defer span.End()

	if err := s.authorize(ctx, id, actorID, permissions.AreaMember, permissions.ActionUpdateRoles); err != nil {
		return nil, err
	}

	if len(roles) == 0 {
		return nil, apperror.New(apperror.CodeInvalidData, "at least one role is required")
	}
	for _, r := range roles {
		if !r.Valid() {
			return nil, apperror.New(apperror.CodeInvalidData, fmt.Sprintf("unknown role %q", r))
		}
	}

	target, err := s.activeMember(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if target.IsOwner != slices.Contains(roles, types.RoleOwner) {
		return nil, apperror.New(apperror.CodeInvalidData, "the owner role follows ownership, use a transfer to change it")
	}

	updated, err := s.storage.UpdateMember(ctx, id, userID, types.MergeRoles(nil, roles), target.IsOwner)
	if err != nil {
		return nil, s.storageError(err, "failed to update member")
	}

	s.mirror(ctx, id, userID, updated.Roles, updated.IsOwner)

	return updated, nil
}

func (s *Service) RemoveMember(ctx context.Context, actorID, id, userID string) error {
	ctx, span := s.tracer.Start(ctx, "organization.Service.RemoveMember")
	defer span.End()

	if err := s.authorize(ctx, id, actorID, permissions.AreaMember, permissions.ActionRemove); err != nil {
		return err
	}

	target, err := s.activeMember(ctx, id, userID)
	if err != nil {
		return err
	}

	if target.IsOwner {
		return apperror.New(apperror.CodeInvalidData, "the owner cannot be removed, transfer ownership first")
	}

	if err := s.storage.DeactivateMember(ctx, id, userID); err != nil {
		return s.storageError(err, "failed to remove member")
	}

	if err := s.authz.RemoveMember(ctx, id, userID); err != nil {
		s.logger.Errorf("failed to remove relations of %s in organization %s: %v", userID, id, err)
	}

	return nil
}

// MyPermissions lists what the actor may do in the organization, empty for non members.
func (s *Service) MyPermissions(ctx context.Context, actorID, id string) ([]permissions.Permission, error) {
	ctx, span := s.tracer.Start(ctx, "organization.Service.MyPermissions")
	defer span.End()

	if actorID == "" {
		return nil, apperror.ErrAuth
	}

	return s.perms.Permissions(ctx, id, actorID), nil
}

func (s *Service) activeMember(ctx context.Context, orgID, userID string) (*types.Member, error) {
	m, err := s.storage.FindMembership(ctx, orgID, userID)
	if err != nil {
		return nil, s.storageError(err, "failed to load member")
	}
	if !m.Active {
		return nil, apperror.New(apperror.CodeNotFound, "member not found")
	}
	return m, nil
}

func (s *Service) authorize(ctx context.Context, orgID, actorID, area, action string) error {
	if actorID == "" {
		return apperror.ErrAuth
	}

	if !s.perms.Can(ctx, orgID, actorID, area, action) {
		return apperror.ErrForbidden
	}

	return nil
}

func (s *Service) mirror(ctx context.Context, orgID, userID string, roles []types.Role, isOwner bool) {
	if err := s.authz.SyncMember(ctx, orgID, userID, roles, isOwner); err != nil {
		s.logger.Errorf("failed to mirror membership of %s in organization %s: %v", userID, orgID, err)
	}
}

func (s *Service) storageError(err error, message string) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return apperror.ErrNotFound
	case errors.Is(err, storage.ErrDuplicateKey):
		return apperror.Wrap(apperror.CodeInvalidData, "conflicts with an existing record", err)
	}

	s.logger.Errorf("%s: %v", message, err)
	return apperror.Wrap(apperror.CodeDatabaseFailure, message, err)
}

func demote(roles []types.Role) []types.Role {
	out := slices.DeleteFunc(slices.Clone(roles), func(r types.Role) bool { return r == types.RoleOwner })
	if len(out) == 0 {
		return []types.Role{types.RoleAdmin}
	}
	return out
}

func NewService(
	storage StorageInterface,
	tx TxManagerInterface,
	perms PermissionsInterface,
	authz AuthzInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	return &Service{
		storage:  storage,
		tx:       tx,
		perms:    perms,
		authz:    authz,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		tracer:   tracer,
		monitor:  monitor,
		logger:   logger,
	}
}
