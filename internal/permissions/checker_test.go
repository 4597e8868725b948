// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package permissions

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/canonical/membership-service/internal/logging"
	"github.com/canonical/membership-service/internal/monitoring"
	"github.com/canonical/membership-service/internal/storage"
	"github.com/canonical/membership-service/internal/tracing"
	"github.com/canonical/membership-service/internal/types"
)

//go:generate mockgen -build_flags=--mod=mod -package permissions -destination ./mock_interfaces.go -source=./interfaces.go

func TestChecker_Can(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		setupMocks func(*MockMembershipStoreInterface)
		expected   bool
	}{
		{
			name:   "owner can delete",
			userID: "user-1",
			setupMocks: func(s *MockMembershipStoreInterface) {
				s.EXPECT().FindMembership(gomock.Any(), "org-1", "user-1").Return(member(true, types.RoleOwner), nil)
			},
			expected: true,
		},
		{
			name:   "not a member",
			userID: "user-1",
			setupMocks: func(s *MockMembershipStoreInterface) {
				s.EXPECT().FindMembership(gomock.Any(), "org-1", "user-1").Return(nil, storage.ErrNotFound)
			},
		},
		{
			name:   "store failure fails closed",
			userID: "user-1",
			setupMocks: func(s *MockMembershipStoreInterface) {
				s.EXPECT().FindMembership(gomock.Any(), "org-1", "user-1").Return(nil, errors.New("connection reset"))
			},
		},
		{
			name:       "anonymous actor is never looked up",
			userID:     "",
			setupMocks: func(s *MockMembershipStoreInterface) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			store := NewMockMembershipStoreInterface(ctrl)
			tt.setupMocks(store)

			logger := logging.NewNoopLogger()
			c := NewChecker(DefaultPolicy(), store, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test", logger), logger)

			if got := c.Can(context.Background(), "org-1", tt.userID, AreaOrganization, ActionDeleteOrg); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestChecker_CanCountsDenials(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := NewMockMembershipStoreInterface(ctrl)
	store.EXPECT().FindMembership(gomock.Any(), "org-1", "user-1").Return(member(true, types.RoleOwner), nil)
	store.EXPECT().FindMembership(gomock.Any(), "org-1", "user-2").Return(nil, storage.ErrNotFound)

	monitor := monitoring.NewMockMonitorInterface(ctrl)
	monitor.EXPECT().IncSecurityEvent(map[string]string{"event": "authz_denied"}).Return(nil).Times(1)

	logger := logging.NewNoopLogger()
	c := NewChecker(DefaultPolicy(), store, tracing.NewNoopTracer(), monitor, logger)

	if !c.Can(context.Background(), "org-1", "user-1", AreaOrganization, ActionDeleteOrg) {
		t.Fatalf("expected owner to be allowed")
	}
	if c.Can(context.Background(), "org-1", "user-2", AreaOrganization, ActionDeleteOrg) {
		t.Fatalf("expected non member to be denied")
	}
}

func TestChecker_PermissionsOnFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := NewMockMembershipStoreInterface(ctrl)
	store.EXPECT().FindMembership(gomock.Any(), "org-1", "user-1").Return(nil, context.DeadlineExceeded)

	logger := logging.NewNoopLogger()
	c := NewChecker(DefaultPolicy(), store, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test", logger), logger)

	if got := c.Permissions(context.Background(), "org-1", "user-1"); len(got) != 0 {
		t.Errorf("expected empty permissions, got %v", got)
	}
}
