// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"slices"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/canonical/membership-service/internal/db"
	"github.com/canonical/membership-service/internal/logging"
	"github.com/canonical/membership-service/internal/monitoring"
	"github.com/canonical/membership-service/internal/tracing"
	"github.com/canonical/membership-service/internal/types"
)

// passthrough lets array arguments reach the mock driver untouched
type passthrough struct{}

func (passthrough) ConvertValue(v any) (driver.Value, error) {
	return v, nil
}

func newTestStorage(t *testing.T) (*Storage, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.ValueConverterOption(passthrough{}))
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	logger := logging.NewNoopLogger()
	tracer := tracing.NewNoopTracer()
	monitor := monitoring.NewNoopMonitor("test", logger)

	return NewStorage(db.NewDBClientFromDB(sqlDB, tracer, monitor, logger), tracer, monitor, logger), mock
}

var (
	memberCols     = []string{"organization_id", "user_id", "roles", "active", "is_owner", "created_at", "updated_at"}
	invitationCols = []string{"id", "organization_id", "invitee_first_name", "invitee_last_name", "invitee_email", "roles", "token", "status", "expires", "invited_by_user_id", "created_at"}
)

func TestStorage_GetOrganization(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name       string
		setupMocks func(sqlmock.Sqlmock)
		wantErr    error
	}{
		{
			name: "found",
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, avatar, created_at FROM organizations WHERE id = $1")).
					WithArgs("org-1").
					WillReturnRows(sqlmock.NewRows([]string{"id", "name", "avatar", "created_at"}).AddRow("org-1", "Acme", "", now))
			},
		},
		{
			name: "not found",
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT (.+) FROM organizations").
					WithArgs("org-1").
					WillReturnRows(sqlmock.NewRows([]string{"id", "name", "avatar", "created_at"}))
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newTestStorage(t)
			tt.setupMocks(mock)

			org, err := s.GetOrganization(context.Background(), "org-1")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr == nil && org.Name != "Acme" {
				t.Errorf("unexpected organization %+v", org)
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})
	}
}

func TestStorage_DeleteOrganization(t *testing.T) {
	s, mock := newTestStorage(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM organizations WHERE id = $1")).
		WithArgs("org-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.DeleteOrganization(context.Background(), "org-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStorage_FindMembership(t *testing.T) {
	now := time.Now()
	s, mock := newTestStorage(t)

	mock.ExpectQuery("SELECT (.+) FROM members WHERE").
		WithArgs("org-1", "user-1").
		WillReturnRows(sqlmock.NewRows(memberCols).AddRow("org-1", "user-1", "{manager,appraiser}", true, false, now, now))

	m, err := s.FindMembership(context.Background(), "org-1", "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !slices.Equal(m.Roles, []types.Role{types.RoleManager, types.RoleAppraiser}) {
		t.Errorf("unexpected roles %v", m.Roles)
	}
	if !m.Active || m.IsOwner {
		t.Errorf("unexpected flags %+v", m)
	}
}

func TestStorage_UpsertMembership(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name       string
		setupMocks func(sqlmock.Sqlmock)
		wantErr    error
	}{
		{
			name: "merges roles on conflict",
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO members (organization_id,user_id,roles,active,is_owner) VALUES ($1,$2,$3,$4,$5) ON CONFLICT (organization_id, user_id) DO UPDATE")).
					WithArgs("org-1", "user-1", sqlmock.AnyArg(), true, false).
					WillReturnRows(sqlmock.NewRows(memberCols).AddRow("org-1", "user-1", "{admin,manager}", true, false, now, now))
			},
		},
		{
			name: "foreign key violation",
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("INSERT INTO members").
					WillReturnError(&pgconn.PgError{Code: "23503"})
			},
			wantErr: ErrForeignKeyViolation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newTestStorage(t)
			tt.setupMocks(mock)

			m, err := s.UpsertMembership(context.Background(), "org-1", "user-1", []types.Role{types.RoleManager}, true)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}

			if tt.wantErr == nil && len(m.Roles) != 2 {
				t.Errorf("unexpected roles %v", m.Roles)
			}
		})
	}
}

func TestStorage_AddOwnerDuplicate(t *testing.T) {
	s, mock := newTestStorage(t)

	mock.ExpectQuery("INSERT INTO members").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	if _, err := s.AddOwner(context.Background(), "org-1", "user-1"); !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestStorage_DeactivateMember(t *testing.T) {
	s, mock := newTestStorage(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE members SET active = $1, is_owner = $2, updated_at = now() WHERE")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.DeactivateMember(context.Background(), "org-1", "user-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestStorage_ListMembers(t *testing.T) {
	now := time.Now()
	s, mock := newTestStorage(t)

	mock.ExpectQuery("SELECT (.+) FROM members WHERE (.+) ORDER BY created_at").
		WillReturnRows(
			sqlmock.NewRows(memberCols).
				AddRow("org-1", "user-1", "{owner}", true, true, now, now).
				AddRow("org-1", "user-2", "{appraiser,manager}", true, false, now, now),
		)

	members, err := s.ListMembers(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}
	if !slices.Equal(members[1].Roles, []types.Role{types.RoleAppraiser, types.RoleManager}) {
		t.Errorf("unexpected roles %v", members[1].Roles)
	}
}

func TestStorage_FindInvitationByToken(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name       string
		token      string
		setupMocks func(sqlmock.Sqlmock)
		wantErr    error
	}{
		{
			name:  "found",
			token: "tok",
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT (.+) FROM invitations WHERE").
					WithArgs("org-1", tokenDigest("tok")).
					WillReturnRows(sqlmock.NewRows(invitationCols).
						AddRow("inv-1", "org-1", "Ada", "Lovelace", "ada@example.com", "{manager}", "tok", "pending", now.Add(time.Hour), "user-1", now))
			},
		},
		{
			name:  "resolved invitation keeps matching its former token",
			token: "used",
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT (.+) FROM invitations WHERE").
					WithArgs("org-1", tokenDigest("used")).
					WillReturnRows(sqlmock.NewRows(invitationCols).
						AddRow("inv-1", "org-1", "Ada", "Lovelace", "ada@example.com", "{manager}", nil, "declined", now.Add(time.Hour), "user-1", now))
			},
		},
		{
			name:       "empty token never matches",
			token:      "",
			setupMocks: func(mock sqlmock.Sqlmock) {},
			wantErr:    ErrNotFound,
		},
		{
			name:  "unknown token",
			token: "nope",
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT (.+) FROM invitations WHERE").
					WillReturnRows(sqlmock.NewRows(invitationCols))
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newTestStorage(t)
			tt.setupMocks(mock)

			inv, err := s.FindInvitationByToken(context.Background(), "org-1", tt.token)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}

			if tt.wantErr == nil {
				// a non-null token and a pending status go together
				if (inv.Token != nil) != (inv.Status == types.InvitationPending) {
					t.Errorf("token %v inconsistent with status %s", inv.Token, inv.Status)
				}
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})
	}
}

func TestStorage_ResolveInvitation(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name       string
		status     types.InvitationStatus
		setupMocks func(sqlmock.Sqlmock)
		wantErr    error
	}{
		{
			name:   "resolves pending invitation",
			status: types.InvitationAccepted,
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("UPDATE invitations SET status = $1, token = $2 WHERE")).
					WillReturnRows(sqlmock.NewRows(invitationCols).
						AddRow("inv-1", "org-1", "Ada", "Lovelace", "ada@example.com", "{manager}", nil, "accepted", now, "user-1", now))
			},
		},
		{
			name:   "lost race",
			status: types.InvitationDeclined,
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("UPDATE invitations").
					WillReturnRows(sqlmock.NewRows(invitationCols))
			},
			wantErr: ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newTestStorage(t)
			tt.setupMocks(mock)

			inv, err := s.ResolveInvitation(context.Background(), "org-1", "inv-1", "tok", tt.status)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}

			if tt.wantErr == nil && inv.Token != nil {
				t.Errorf("expected token to be cleared, got %v", *inv.Token)
			}
		})
	}
}

func TestStorage_ResolveInvitationRejectsPending(t *testing.T) {
	s, _ := newTestStorage(t)

	if _, err := s.ResolveInvitation(context.Background(), "org-1", "inv-1", "tok", types.InvitationPending); err == nil {
		t.Fatal("expected error for non terminal status")
	}
}

func TestStorage_DeletePendingInvitation(t *testing.T) {
	s, mock := newTestStorage(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM invitations WHERE")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.DeletePendingInvitation(context.Background(), "org-1", "inv-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
