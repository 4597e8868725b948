// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package invitation

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/canonical/membership-service/internal/apperror"
	"github.com/canonical/membership-service/internal/logging"
	"github.com/canonical/membership-service/internal/monitoring"
	"github.com/canonical/membership-service/internal/permissions"
	"github.com/canonical/membership-service/internal/storage"
	"github.com/canonical/membership-service/internal/tracing"
	"github.com/canonical/membership-service/internal/types"
)

const (
	tokenBytes          = 32
	invitationLinkRoute = "invite"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type Service struct {
	storage   StorageInterface
	tx        TxManagerInterface
	perms     PermissionsInterface
	authz     AuthzInterface
	notifier  NotifierInterface
	directory DirectoryInterface

	publicURL string
	lifetime  time.Duration

	now      func() time.Time
	newToken func() (string, error)

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Link builds the URL handed to the invitee
func Link(publicURL, orgID, token string) string {
	u, err := url.JoinPath(publicURL, invitationLinkRoute, orgID)
	if err != nil {
		u = strings.TrimSuffix(publicURL, "/") + "/" + invitationLinkRoute + "/" + url.PathEscape(orgID)
	}
	return u + "?" + url.Values{"token": {token}}.Encode()
}

func (s *Service) Link(orgID, token string) string {
	return Link(s.publicURL, orgID, token)
}

func (s *Service) Create(ctx context.Context, orgID, actorID string, invitee types.Invitee, roles []types.Role) (*types.Invitation, string, error) {
	ctx, span := s.tracer.Start(ctx, "invitation.Service.Create")
	defer span.End()

	if err := s.authorize(ctx, orgID, actorID, permissions.ActionCreateInvitation); err != nil {
		return nil, "", err
	}

	if err := validate.Struct(invitee); err != nil {
		return nil, "", apperror.Wrap(apperror.CodeInvalidData, "invalid invitee", err)
	}

	if err := validateRoles(roles); err != nil {
		return nil, "", err
	}

	org, err := s.storage.GetOrganization(ctx, orgID)
	if err != nil {
		return nil, "", s.storageError(err, "failed to load organization")
	}

	token, err := s.newToken()
	if err != nil {
		s.logger.Errorf("failed to generate invitation token: %v", err)
		return nil, "", apperror.Wrap(apperror.CodeDatabaseFailure, "failed to generate invitation token", err)
	}

	created, err := s.storage.CreateInvitation(ctx, &types.Invitation{
		OrganizationID:   orgID,
		InviteeFirstName: invitee.FirstName,
		InviteeLastName:  invitee.LastName,
		InviteeEmail:     invitee.Email,
		Roles:            roles,
		Token:            &token,
		Expires:          s.now().Add(s.lifetime),
		InvitedByUserID:  actorID,
	})
	if err != nil {
		return nil, "", s.storageError(err, "failed to create invitation")
	}

	link := s.Link(orgID, *created.Token)

	s.logger.Security().InvitationCreated(actorID, orgID, created.ID)
	s.transition(types.InvitationPending)

	// the invitee must never get a link to a row that was rolled back
	s.tx.AfterCommit(ctx, func() {
		if err := s.notifier.SendInviteCreated(ctx, created, org, link); err != nil {
			s.logger.Errorf("failed to notify invitee of invitation %s: %v", created.ID, err)
		}
	})

	return created, link, nil
}

func (s *Service) UpdateRoles(ctx context.Context, orgID, invitationID, actorID string, roles []types.Role) (*types.Invitation, error) {
	ctx, span := s.tracer.Start(ctx, "invitation.Service.UpdateRoles")
	defer span.End()

	if err := s.authorize(ctx, orgID, actorID, permissions.ActionUpdateInvitation); err != nil {
		return nil, err
	}

	if err := validateRoles(roles); err != nil {
		return nil, err
	}

	inv, err := s.storage.UpdateInvitationRoles(ctx, orgID, invitationID, roles)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, s.notPendingError(ctx, orgID, invitationID)
	}
	if err != nil {
		return nil, s.storageError(err, "failed to update invitation")
	}

	return inv, nil
}

func (s *Service) Cancel(ctx context.Context, orgID, invitationID, actorID string) error {
	ctx, span := s.tracer.Start(ctx, "invitation.Service.Cancel")
	defer span.End()

	if err := s.authorize(ctx, orgID, actorID, permissions.ActionCancelInvitation); err != nil {
		return err
	}

	err := s.storage.DeletePendingInvitation(ctx, orgID, invitationID)
	if errors.Is(err, storage.ErrNotFound) {
		return s.notPendingError(ctx, orgID, invitationID)
	}
	if err != nil {
		return s.storageError(err, "failed to cancel invitation")
	}

	return nil
}

// ListPending returns every stored pending invitation. Invitations past their
// expiry are still listed until someone presents their token.
func (s *Service) ListPending(ctx context.Context, orgID, actorID string) ([]*types.Invitation, error) {
	ctx, span := s.tracer.Start(ctx, "invitation.Service.ListPending")
	defer span.End()

	if err := s.authorize(ctx, orgID, actorID, permissions.ActionView); err != nil {
		return nil, err
	}

	invitations, err := s.storage.ListInvitations(ctx, orgID, types.InvitationPending)
	if err != nil {
		return nil, s.storageError(err, "failed to list invitations")
	}

	return invitations, nil
}

// Lookup returns the pending, unexpired invitation addressed by the token, or
// nil when there is none. It never writes.
func (s *Service) Lookup(ctx context.Context, orgID, token string) (*types.Invitation, error) {
	ctx, span := s.tracer.Start(ctx, "invitation.Service.Lookup")
	defer span.End()

	inv, err := s.storage.FindInvitationByToken(ctx, orgID, token)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, s.storageError(err, "failed to look up invitation")
	}

	if inv.Status != types.InvitationPending || !s.now().Before(inv.Expires) {
		return nil, nil
	}

	return inv, nil
}

func (s *Service) Accept(ctx context.Context, orgID, token, userID string) (*types.Member, error) {
	ctx, span := s.tracer.Start(ctx, "invitation.Service.Accept")
	defer span.End()

	if userID == "" {
		return nil, apperror.ErrAuth
	}

	inv, err := s.pending(ctx, orgID, token)
	if err != nil {
		return nil, err
	}

	var member *types.Member
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if _, err := s.storage.ResolveInvitation(ctx, orgID, inv.ID, token, types.InvitationAccepted); err != nil {
			return err
		}

		m, err := s.storage.UpsertMembership(ctx, orgID, userID, inv.Roles, true)
		if err != nil {
			return err
		}
		member = m

		return nil
	})

	if errors.Is(err, storage.ErrConflict) {
		return nil, apperror.ErrAlreadyResolved
	}
	if err != nil {
		return nil, s.storageError(err, "failed to accept invitation")
	}

	if err := s.authz.SyncMember(ctx, orgID, userID, member.Roles, member.IsOwner); err != nil {
		s.logger.Errorf("failed to mirror membership of %s in organization %s: %v", userID, orgID, err)
	}

	s.logger.Security().InvitationResolved(userID, orgID, inv.ID, string(types.InvitationAccepted))
	s.transition(types.InvitationAccepted)

	inv.Status = types.InvitationAccepted
	s.notifyResolved(ctx, inv)

	return member, nil
}

func (s *Service) Decline(ctx context.Context, orgID, token string) (*types.Invitation, error) {
	ctx, span := s.tracer.Start(ctx, "invitation.Service.Decline")
	defer span.End()

	inv, err := s.pending(ctx, orgID, token)
	if err != nil {
		return nil, err
	}

	resolved, err := s.storage.ResolveInvitation(ctx, orgID, inv.ID, token, types.InvitationDeclined)
	if errors.Is(err, storage.ErrConflict) {
		return nil, apperror.ErrAlreadyResolved
	}
	if err != nil {
		return nil, s.storageError(err, "failed to decline invitation")
	}

	s.logger.Security().InvitationResolved("", orgID, inv.ID, string(types.InvitationDeclined))
	s.transition(types.InvitationDeclined)
	s.notifyResolved(ctx, resolved)

	return resolved, nil
}

// pending loads the invitation addressed by the token and checks it can still
// be resolved. An invitation found past its expiry is marked expired here.
func (s *Service) pending(ctx context.Context, orgID, token string) (*types.Invitation, error) {
	inv, err := s.storage.FindInvitationByToken(ctx, orgID, token)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperror.ErrNotFound
	}
	if err != nil {
		return nil, s.storageError(err, "failed to look up invitation")
	}

	switch inv.Status {
	case types.InvitationPending:
	case types.InvitationExpired:
		return nil, apperror.ErrExpired
	default:
		return nil, apperror.ErrAlreadyResolved
	}

	if !s.now().Before(inv.Expires) {
		_, err := s.storage.ResolveInvitation(ctx, orgID, inv.ID, token, types.InvitationExpired)
		switch {
		case err == nil:
			s.transition(types.InvitationExpired)
		case errors.Is(err, storage.ErrConflict):
		default:
			s.logger.Errorf("failed to mark invitation %s expired: %v", inv.ID, err)
		}
		return nil, apperror.ErrExpired
	}

	return inv, nil
}

func (s *Service) notPendingError(ctx context.Context, orgID, invitationID string) error {
	inv, err := s.storage.GetInvitation(ctx, orgID, invitationID)
	if errors.Is(err, storage.ErrNotFound) {
		return apperror.ErrNotFound
	}
	if err != nil {
		return s.storageError(err, "failed to load invitation")
	}

	s.logger.Debugf("invitation %s is %s, refusing change", inv.ID, inv.Status)

	return apperror.ErrAlreadyResolved
}

func (s *Service) authorize(ctx context.Context, orgID, actorID, action string) error {
	if actorID == "" {
		return apperror.ErrAuth
	}

	if !s.perms.Can(ctx, orgID, actorID, permissions.AreaInvitation, action) {
		return apperror.ErrForbidden
	}

	return nil
}

func (s *Service) notifyResolved(ctx context.Context, inv *types.Invitation) {
	org, err := s.storage.GetOrganization(ctx, inv.OrganizationID)
	if err != nil {
		s.logger.Errorf("failed to load organization %s for notification: %v", inv.OrganizationID, err)
		return
	}

	email, err := s.directory.UserEmail(ctx, inv.InvitedByUserID)
	if err != nil || email == "" {
		s.logger.Warnf("no email for inviter %s, skipping notification: %v", inv.InvitedByUserID, err)
		return
	}

	if err := s.notifier.SendInviteResolved(ctx, inv, org, email); err != nil {
		s.logger.Errorf("failed to notify inviter of invitation %s: %v", inv.ID, err)
	}
}

func (s *Service) transition(status types.InvitationStatus) {
	if err := s.monitor.IncInvitationTransition(map[string]string{"status": string(status)}); err != nil {
		s.logger.Debugf("failed to record invitation transition: %v", err)
	}
}

func (s *Service) storageError(err error, message string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperror.ErrNotFound
	}
	if errors.Is(err, storage.ErrForeignKeyViolation) {
		return apperror.Wrap(apperror.CodeNotFound, "organization not found", err)
	}

	s.logger.Errorf("%s: %v", message, err)
	return apperror.Wrap(apperror.CodeDatabaseFailure, message, err)
}

func validateRoles(roles []types.Role) error {
	if len(roles) == 0 {
		return apperror.New(apperror.CodeInvalidData, "at least one role is required")
	}

	for _, r := range roles {
		if !r.Valid() {
			return apperror.New(apperror.CodeInvalidData, fmt.Sprintf("unknown role %q", r))
		}
	}

	if slices.Contains(roles, types.RoleOwner) {
		return apperror.New(apperror.CodeInvalidData, "the owner role is granted by ownership transfer")
	}

	return nil
}

func generateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func NewService(
	storage StorageInterface,
	tx TxManagerInterface,
	perms PermissionsInterface,
	authz AuthzInterface,
	notifier NotifierInterface,
	directory DirectoryInterface,
	publicURL string,
	lifetime time.Duration,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	return &Service{
		storage:   storage,
		tx:        tx,
		perms:     perms,
		authz:     authz,
		notifier:  notifier,
		directory: directory,
		publicURL: publicURL,
		lifetime:  lifetime,
		now:       time.Now,
		newToken:  generateToken,
		tracer:    tracer,
		monitor:   monitor,
		logger:    logger,
	}
}
