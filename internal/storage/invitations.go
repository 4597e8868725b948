// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/canonical/membership-service/internal/types"
)

var invitationColumns = []string{
	"id",
	"organization_id",
	"invitee_first_name",
	"invitee_last_name",
	"invitee_email",
	"roles",
	"token",
	"status",
	"expires",
	"invited_by_user_id",
	"created_at",
}

const invitationReturning = "RETURNING id, organization_id, invitee_first_name, invitee_last_name, invitee_email, roles, token, status, expires, invited_by_user_id, created_at"

func (s *Storage) CreateInvitation(ctx context.Context, inv *types.Invitation) (*types.Invitation, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateInvitation")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invitation ID: %w", err)
	}

	row := s.db.Statement(ctx).
		Insert("invitations").
		Columns(
			"id",
			"organization_id",
			"invitee_first_name",
			"invitee_last_name",
			"invitee_email",
			"roles",
			"token",
			"token_digest",
			"status",
			"expires",
			"invited_by_user_id",
		).
		Values(
			id.String(),
			inv.OrganizationID,
			inv.InviteeFirstName,
			inv.InviteeLastName,
			inv.InviteeEmail,
			types.RolesToStrings(inv.Roles),
			inv.Token,
			tokenDigest(derefToken(inv.Token)),
			types.InvitationPending,
			inv.Expires,
			inv.InvitedByUserID,
		).
		Suffix(invitationReturning).
		QueryRowContext(ctx)

	created, err := scanInvitation(row)
	if err != nil {
		return nil, wrap(err, "failed to insert invitation")
	}

	return created, nil
}

func (s *Storage) GetInvitation(ctx context.Context, orgID, id string) (*types.Invitation, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetInvitation")
	defer span.End()

	return s.findInvitation(ctx, sq.Eq{"organization_id": orgID, "id": id})
}

// FindInvitationByToken matches on the token digest, which outlives the token
// itself, so a resolved invitation is still found through its former link.
func (s *Storage) FindInvitationByToken(ctx context.Context, orgID, token string) (*types.Invitation, error) {
	ctx, span := s.tracer.Start(ctx, "storage.FindInvitationByToken")
	defer span.End()

	if token == "" {
		return nil, ErrNotFound
	}

	return s.findInvitation(ctx, sq.Eq{"organization_id": orgID, "token_digest": tokenDigest(token)})
}

func (s *Storage) findInvitation(ctx context.Context, where sq.Eq) (*types.Invitation, error) {
	row := s.db.Statement(ctx).
		Select(invitationColumns...).
		From("invitations").
		Where(where).
		QueryRowContext(ctx)

	inv, err := scanInvitation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}

	return inv, nil
}

// ListInvitations returns the invitations of an organization, an empty status
// returns every status.
func (s *Storage) ListInvitations(ctx context.Context, orgID string, status types.InvitationStatus) ([]*types.Invitation, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListInvitations")
	defer span.End()

	where := sq.Eq{"organization_id": orgID}
	if status != "" {
		where["status"] = status
	}

	rows, err := s.db.Statement(ctx).
		Select(invitationColumns...).
		From("invitations").
		Where(where).
		OrderBy("created_at DESC").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	defer rows.Close()

	var invitations []*types.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		invitations = append(invitations, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return invitations, nil
}

func (s *Storage) UpdateInvitationRoles(ctx context.Context, orgID, id string, roles []types.Role) (*types.Invitation, error) {
	ctx, span := s.tracer.Start(ctx, "storage.UpdateInvitationRoles")
	defer span.End()

	row := s.db.Statement(ctx).
		Update("invitations").
		Set("roles", types.RolesToStrings(roles)).
		Where(sq.Eq{"organization_id": orgID, "id": id, "status": types.InvitationPending}).
		Suffix(invitationReturning).
		QueryRowContext(ctx)

	inv, err := scanInvitation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update invitation roles: %w", err)
	}

	return inv, nil
}

// ResolveInvitation moves a pending invitation to a terminal status and clears
// its token. The update is conditional on the row still being pending with the
// given token, ErrConflict signals that another request resolved it first.
func (s *Storage) ResolveInvitation(ctx context.Context, orgID, id, token string, status types.InvitationStatus) (*types.Invitation, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ResolveInvitation")
	defer span.End()

	if !status.Terminal() {
		return nil, fmt.Errorf("invalid target status %q", status)
	}

	row := s.db.Statement(ctx).
		Update("invitations").
		Set("status", status).
		Set("token", nil).
		Where(sq.Eq{
			"organization_id": orgID,
			"id":              id,
			"token":           token,
			"status":          types.InvitationPending,
		}).
		Suffix(invitationReturning).
		QueryRowContext(ctx)

	inv, err := scanInvitation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to resolve invitation: %w", err)
	}

	return inv, nil
}

func (s *Storage) DeletePendingInvitation(ctx context.Context, orgID, id string) error {
	ctx, span := s.tracer.Start(ctx, "storage.DeletePendingInvitation")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Delete("invitations").
		Where(sq.Eq{"organization_id": orgID, "id": id, "status": types.InvitationPending}).
		ExecContext(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete invitation: %w", err)
	}

	return expectRows(res)
}

// tokenDigest is kept for the lifetime of the row, the token is not.
func tokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func derefToken(token *string) string {
	if token == nil {
		return ""
	}
	return *token
}

func scanInvitation(row scanner) (*types.Invitation, error) {
	var (
		inv   types.Invitation
		roles []string
		token sql.NullString
	)

	err := row.Scan(
		&inv.ID,
		&inv.OrganizationID,
		&inv.InviteeFirstName,
		&inv.InviteeLastName,
		&inv.InviteeEmail,
		pgtype.NewMap().SQLScanner(&roles),
		&token,
		&inv.Status,
		&inv.Expires,
		&inv.InvitedByUserID,
		&inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	inv.Roles = types.RolesFromStrings(roles)
	if token.Valid {
		inv.Token = &token.String
	}

	return &inv, nil
}
