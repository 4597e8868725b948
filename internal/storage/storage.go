// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/canonical/membership-service/internal/db"
	"github.com/canonical/membership-service/internal/logging"
	"github.com/canonical/membership-service/internal/monitoring"
	"github.com/canonical/membership-service/internal/tracing"
	"github.com/canonical/membership-service/internal/types"
)

var _ StorageInterface = (*Storage)(nil)

var (
	organizationColumns = []string{"id", "name", "avatar", "created_at"}
	memberColumns       = []string{"organization_id", "user_id", "roles", "active", "is_owner", "created_at", "updated_at"}
)

type Storage struct {
	db db.DBClientInterface

	logger  logging.LoggerInterface
	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
}

func NewStorage(c db.DBClientInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Storage {
	s := new(Storage)

	s.db = c

	s.logger = logger
	s.tracer = tracer
	s.monitor = monitor

	return s
}

func (s *Storage) CreateOrganization(ctx context.Context, org *types.Organization) (*types.Organization, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateOrganization")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate organization ID: %w", err)
	}

	var created types.Organization
	err = s.db.Statement(ctx).
		Insert("organizations").
		Columns("id", "name", "avatar").
		Values(id.String(), org.Name, org.Avatar).
		Suffix("RETURNING id, name, avatar, created_at").
		QueryRowContext(ctx).
		Scan(&created.ID, &created.Name, &created.Avatar, &created.CreatedAt)

	if err != nil {
		return nil, wrap(err, "failed to insert organization")
	}

	return &created, nil
}

func (s *Storage) GetOrganization(ctx context.Context, id string) (*types.Organization, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetOrganization")
	defer span.End()

	var o types.Organization
	err := s.db.Statement(ctx).
		Select(organizationColumns...).
		From("organizations").
		Where(sq.Eq{"id": id}).
		QueryRowContext(ctx).
		Scan(&o.ID, &o.Name, &o.Avatar, &o.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	return &o, nil
}

// DeleteOrganization relies on ON DELETE CASCADE for members and invitations
func (s *Storage) DeleteOrganization(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "storage.DeleteOrganization")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Delete("organizations").
		Where(sq.Eq{"id": id}).
		ExecContext(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}

	return expectRows(res)
}

func (s *Storage) FindMembership(ctx context.Context, orgID, userID string) (*types.Member, error) {
	ctx, span := s.tracer.Start(ctx, "storage.FindMembership")
	defer span.End()

	row := s.db.Statement(ctx).
		Select(memberColumns...).
		From("members").
		Where(sq.Eq{"organization_id": orgID, "user_id": userID}).
		QueryRowContext(ctx)

	m, err := scanMember(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find membership: %w", err)
	}

	return m, nil
}

// UpsertMembership inserts the member or, when the pair already exists, reactivates
// the row and unions the stored roles with the given ones.
func (s *Storage) UpsertMembership(ctx context.Context, orgID, userID string, roles []types.Role, active bool) (*types.Member, error) {
	ctx, span := s.tracer.Start(ctx, "storage.UpsertMembership")
	defer span.End()

	row := s.db.Statement(ctx).
		Insert("members").
		Columns("organization_id", "user_id", "roles", "active", "is_owner").
		Values(orgID, userID, types.RolesToStrings(roles), active, false).
		Suffix(
			"ON CONFLICT (organization_id, user_id) DO UPDATE SET " +
				"roles = ARRAY(SELECT DISTINCT r FROM unnest(members.roles || EXCLUDED.roles) AS r ORDER BY r), " +
				"active = EXCLUDED.active, updated_at = now() " +
				"RETURNING organization_id, user_id, roles, active, is_owner, created_at, updated_at",
		).
		QueryRowContext(ctx)

	m, err := scanMember(row)
	if err != nil {
		return nil, wrap(err, "failed to upsert membership")
	}

	return m, nil
}

// AddOwner inserts the creator of an organization as its active owner.
func (s *Storage) AddOwner(ctx context.Context, orgID, userID string) (*types.Member, error) {
	ctx, span := s.tracer.Start(ctx, "storage.AddOwner")
	defer span.End()

	row := s.db.Statement(ctx).
		Insert("members").
		Columns("organization_id", "user_id", "roles", "active", "is_owner").
		Values(orgID, userID, types.RolesToStrings([]types.Role{types.RoleOwner}), true, true).
		Suffix("RETURNING organization_id, user_id, roles, active, is_owner, created_at, updated_at").
		QueryRowContext(ctx)

	m, err := scanMember(row)
	if err != nil {
		return nil, wrap(err, "failed to add owner")
	}

	return m, nil
}

func (s *Storage) UpdateMember(ctx context.Context, orgID, userID string, roles []types.Role, isOwner bool) (*types.Member, error) {
	ctx, span := s.tracer.Start(ctx, "storage.UpdateMember")
	defer span.End()

	row := s.db.Statement(ctx).
		Update("members").
		Set("roles", types.RolesToStrings(roles)).
		Set("is_owner", isOwner).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"organization_id": orgID, "user_id": userID, "active": true}).
		Suffix("RETURNING organization_id, user_id, roles, active, is_owner, created_at, updated_at").
		QueryRowContext(ctx)

	m, err := scanMember(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, wrap(err, "failed to update member")
	}

	return m, nil
}

// DeactivateMember soft-removes the member, the row is kept for audit purposes.
func (s *Storage) DeactivateMember(ctx context.Context, orgID, userID string) error {
	ctx, span := s.tracer.Start(ctx, "storage.DeactivateMember")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Update("members").
		Set("active", false).
		Set("is_owner", false).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"organization_id": orgID, "user_id": userID, "active": true}).
		ExecContext(ctx)

	if err != nil {
		return fmt.Errorf("failed to deactivate member: %w", err)
	}

	return expectRows(res)
}

func (s *Storage) ListMembers(ctx context.Context, orgID string) ([]*types.Member, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListMembers")
	defer span.End()

	rows, err := s.db.Statement(ctx).
		Select(memberColumns...).
		From("members").
		Where(sq.Eq{"organization_id": orgID, "active": true}).
		OrderBy("created_at").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*types.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return members, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMember(row scanner) (*types.Member, error) {
	var (
		m     types.Member
		roles []string
	)

	err := row.Scan(
		&m.OrganizationID,
		&m.UserID,
		pgtype.NewMap().SQLScanner(&roles),
		&m.Active,
		&m.IsOwner,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	m.Roles = types.RolesFromStrings(roles)
	return &m, nil
}

func expectRows(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
