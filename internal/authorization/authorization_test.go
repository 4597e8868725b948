// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"context"
	"errors"
	"testing"

	fga "github.com/openfga/go-sdk"
	"github.com/openfga/go-sdk/client"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"

	"github.com/canonical/membership-service/internal/logging"
	"github.com/canonical/membership-service/internal/monitoring"
	"github.com/canonical/membership-service/internal/openfga"
	"github.com/canonical/membership-service/internal/tracing"
	"github.com/canonical/membership-service/internal/types"
)

//go:generate mockgen -build_flags=--mod=mod -package authorization -destination ./mock_interfaces.go -source=./interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package authorization -destination ./mock_tracing.go -source=../tracing/interfaces.go

func readResponse(token string, tuples ...openfga.Tuple) *client.ClientReadResponse {
	r := &client.ClientReadResponse{ContinuationToken: token}
	for _, t := range tuples {
		r.Tuples = append(r.Tuples, fga.Tuple{Key: fga.TupleKey{User: t.User, Relation: t.Relation, Object: t.Object}})
	}
	return r
}

func newAuthorizer(c AuthzClientInterface) *Authorizer {
	logger := logging.NewNoopLogger()
	return NewAuthorizer(c, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test", logger), logger)
}

func TestAuthorizer_ValidateModel(t *testing.T) {
	testCases := []struct {
		name        string
		setupMocks  func(*MockAuthzClientInterface)
		expectedErr error
	}{
		{
			name: "model matches",
			setupMocks: func(mockClient *MockAuthzClientInterface) {
				mockClient.EXPECT().CompareModel(gomock.Any(), gomock.Any()).Return(true, nil)
			},
		},
		{
			name: "model differs",
			setupMocks: func(mockClient *MockAuthzClientInterface) {
				mockClient.EXPECT().CompareModel(gomock.Any(), gomock.Any()).Return(false, nil)
			},
			expectedErr: ErrInvalidAuthModel,
		},
		{
			name: "client error",
			setupMocks: func(mockClient *MockAuthzClientInterface) {
				mockClient.EXPECT().CompareModel(gomock.Any(), gomock.Any()).Return(false, errors.New("unavailable"))
			},
			expectedErr: errors.New("unavailable"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockClient := NewMockAuthzClientInterface(ctrl)
			mockTracer := NewMockTracingInterface(ctrl)
			logger := logging.NewNoopLogger()

			a := NewAuthorizer(mockClient, mockTracer, monitoring.NewNoopMonitor("test", logger), logger)

			mockTracer.EXPECT().Start(gomock.Any(), "authorization.Authorizer.ValidateModel").
				Return(context.Background(), trace.SpanFromContext(context.Background()))
			tc.setupMocks(mockClient)

			err := a.ValidateModel(context.Background())

			if tc.expectedErr == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tc.expectedErr != nil && (err == nil || err.Error() != tc.expectedErr.Error()) {
				t.Errorf("expected error %v, got %v", tc.expectedErr, err)
			}
		})
	}
}

func TestAuthorizer_SyncMember(t *testing.T) {
	user, object := UserTuple("user-1"), OrganizationTuple("org-1")

	testCases := []struct {
		name        string
		roles       []types.Role
		isOwner     bool
		setupMocks  func(*MockAuthzClientInterface)
		expectedErr bool
	}{
		{
			name:  "new member",
			roles: []types.Role{types.RoleAppraiser},
			setupMocks: func(mockClient *MockAuthzClientInterface) {
				mockClient.EXPECT().ReadTuples(gomock.Any(), user, "", object, "").Return(readResponse(""), nil)
				mockClient.EXPECT().DeleteTuples(gomock.Any(), gomock.Len(0)).Return(nil)
				mockClient.EXPECT().WriteTuples(gomock.Any(), []openfga.Tuple{
					*openfga.NewTuple(user, MEMBER_RELATION, object),
					*openfga.NewTuple(user, "role_appraiser", object),
				}).Return(nil)
			},
		},
		{
			name:    "role change and ownership",
			roles:   []types.Role{types.RoleOwner},
			isOwner: true,
			setupMocks: func(mockClient *MockAuthzClientInterface) {
				mockClient.EXPECT().ReadTuples(gomock.Any(), user, "", object, "").Return(
					readResponse("",
						*openfga.NewTuple(user, MEMBER_RELATION, object),
						*openfga.NewTuple(user, "role_admin", object),
					), nil)
				mockClient.EXPECT().DeleteTuples(gomock.Any(), []openfga.Tuple{
					*openfga.NewTuple(user, "role_admin", object),
				}).Return(nil)
				mockClient.EXPECT().WriteTuples(gomock.Any(), []openfga.Tuple{
					*openfga.NewTuple(user, OWNER_RELATION, object),
					*openfga.NewTuple(user, "role_owner", object),
				}).Return(nil)
			},
		},
		{
			name:  "read failure",
			roles: []types.Role{types.RoleAdmin},
			setupMocks: func(mockClient *MockAuthzClientInterface) {
				mockClient.EXPECT().ReadTuples(gomock.Any(), user, "", object, "").Return(nil, errors.New("unavailable"))
			},
			expectedErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockClient := NewMockAuthzClientInterface(ctrl)
			tc.setupMocks(mockClient)

			err := newAuthorizer(mockClient).SyncMember(context.Background(), "org-1", "user-1", tc.roles, tc.isOwner)
			if (err != nil) != tc.expectedErr {
				t.Errorf("expected error %v, got %v", tc.expectedErr, err)
			}
		})
	}
}

func TestAuthorizer_RemoveMember(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	user, object := UserTuple("user-1"), OrganizationTuple("org-1")
	first := *openfga.NewTuple(user, MEMBER_RELATION, object)
	second := *openfga.NewTuple(user, "role_manager", object)

	mockClient := NewMockAuthzClientInterface(ctrl)
	gomock.InOrder(
		mockClient.EXPECT().ReadTuples(gomock.Any(), user, "", object, "").Return(readResponse("next", first), nil),
		mockClient.EXPECT().ReadTuples(gomock.Any(), user, "", object, "next").Return(readResponse("", second), nil),
		mockClient.EXPECT().DeleteTuples(gomock.Any(), []openfga.Tuple{first, second}).Return(nil),
	)

	if err := newAuthorizer(mockClient).RemoveMember(context.Background(), "org-1", "user-1"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthorizer_DeleteOrganization(t *testing.T) {
	object := OrganizationTuple("org-1")
	tuple := *openfga.NewTuple(UserTuple("user-1"), OWNER_RELATION, object)

	testCases := []struct {
		name        string
		setupMocks  func(*MockAuthzClientInterface)
		expectedErr bool
	}{
		{
			name: "deletes all pages",
			setupMocks: func(mockClient *MockAuthzClientInterface) {
				gomock.InOrder(
					mockClient.EXPECT().ReadTuples(gomock.Any(), "", "", object, "").Return(readResponse("next", tuple), nil),
					mockClient.EXPECT().DeleteTuples(gomock.Any(), []openfga.Tuple{tuple}).Return(nil),
					mockClient.EXPECT().ReadTuples(gomock.Any(), "", "", object, "next").Return(readResponse(""), nil),
				)
			},
		},
		{
			name: "delete failure",
			setupMocks: func(mockClient *MockAuthzClientInterface) {
				mockClient.EXPECT().ReadTuples(gomock.Any(), "", "", object, "").Return(readResponse("", tuple), nil)
				mockClient.EXPECT().DeleteTuples(gomock.Any(), gomock.Any()).Return(errors.New("unavailable"))
			},
			expectedErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockClient := NewMockAuthzClientInterface(ctrl)
			tc.setupMocks(mockClient)

			err := newAuthorizer(mockClient).DeleteOrganization(context.Background(), "org-1")
			if (err != nil) != tc.expectedErr {
				t.Errorf("expected error %v, got %v", tc.expectedErr, err)
			}
		})
	}
}

func TestAuthorizationModelProvider_GetModel(t *testing.T) {
	model := NewAuthorizationModelProvider("v0").GetModel()

	if model.SchemaVersion != "1.1" {
		t.Errorf("unexpected schema version %q", model.SchemaVersion)
	}

	found := false
	for _, td := range model.TypeDefinitions {
		if td.Type == "organization" {
			found = true
		}
	}
	if !found {
		t.Error("organization type missing from model")
	}
}
