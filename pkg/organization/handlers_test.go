// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package organization

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"github.com/canonical/membership-service/internal/apperror"
	"github.com/canonical/membership-service/internal/identity"
	"github.com/canonical/membership-service/internal/logging"
	"github.com/canonical/membership-service/internal/permissions"
	"github.com/canonical/membership-service/internal/types"
)

func TestAPI_Endpoints(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		target         string
		body           string
		setupMocks     func(*MockServiceInterface)
		expectedStatus int
		validateResp   func(*testing.T, *http.Response)
	}{
		{
			name:   "create",
			method: http.MethodPost,
			target: "/api/v0/organizations",
			body:   `{"name":"Acme Appraisals"}`,
			setupMocks: func(svc *MockServiceInterface) {
				svc.EXPECT().Create(gomock.Any(), "user-1", "Acme Appraisals", "").Return(&types.Organization{ID: "org-1", Name: "Acme Appraisals"}, nil)
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, res *http.Response) {
				var org types.Organization
				if err := json.NewDecoder(res.Body).Decode(&org); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				if org.ID != "org-1" {
					t.Errorf("unexpected organization %+v", org)
				}
			},
		},
		{
			name:           "create with malformed body",
			method:         http.MethodPost,
			target:         "/api/v0/organizations",
			body:           `{"name":`,
			setupMocks:     func(svc *MockServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "get forbidden",
			method: http.MethodGet,
			target: "/api/v0/organizations/org-2",
			setupMocks: func(svc *MockServiceInterface) {
				svc.EXPECT().Get(gomock.Any(), "user-1", "org-2").Return(nil, apperror.ErrForbidden)
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:   "delete",
			method: http.MethodDelete,
			target: "/api/v0/organizations/org-1",
			setupMocks: func(svc *MockServiceInterface) {
				svc.EXPECT().Delete(gomock.Any(), "user-1", "org-1").Return(nil)
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name:   "transfer",
			method: http.MethodPost,
			target: "/api/v0/organizations/org-1/transfer",
			body:   `{"user_id":"user-2"}`,
			setupMocks: func(svc *MockServiceInterface) {
				svc.EXPECT().TransferOwnership(gomock.Any(), "user-1", "org-1", "user-2").Return(nil)
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name:   "list members",
			method: http.MethodGet,
			target: "/api/v0/organizations/org-1/members",
			setupMocks: func(svc *MockServiceInterface) {
				svc.EXPECT().ListMembers(gomock.Any(), "user-1", "org-1").Return([]*types.Member{{UserID: "user-1"}}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "update member",
			method: http.MethodPut,
			target: "/api/v0/organizations/org-1/members/user-2",
			body:   `{"roles":["manager"]}`,
			setupMocks: func(svc *MockServiceInterface) {
				svc.EXPECT().UpdateMemberRoles(gomock.Any(), "user-1", "org-1", "user-2", []types.Role{types.RoleManager}).
					Return(&types.Member{UserID: "user-2", Roles: []types.Role{types.RoleManager}, Active: true}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "remove owner",
			method: http.MethodDelete,
			target: "/api/v0/organizations/org-1/members/user-1",
			setupMocks: func(svc *MockServiceInterface) {
				svc.EXPECT().RemoveMember(gomock.Any(), "user-1", "org-1", "user-1").Return(apperror.New(apperror.CodeInvalidData, "the owner cannot be removed"))
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "my permissions",
			method: http.MethodGet,
			target: "/api/v0/organizations/org-1/permissions",
			setupMocks: func(svc *MockServiceInterface) {
				svc.EXPECT().MyPermissions(gomock.Any(), "user-1", "org-1").
					Return([]permissions.Permission{{Area: permissions.AreaOrder, Action: permissions.ActionCreate}}, nil)
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, res *http.Response) {
				var resp PermissionsResponse
				if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				if len(resp.Permissions) != 1 || resp.Permissions[0].String() != "order:create" {
					t.Errorf("unexpected permissions %v", resp.Permissions)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc := NewMockServiceInterface(ctrl)
			tt.setupMocks(svc)

			mux := chi.NewMux()
			NewAPI(svc, logging.NewNoopLogger()).RegisterEndpoints(mux)

			visitor := &types.Visitor{Authenticated: true, UserID: "user-1"}
			req := httptest.NewRequest(tt.method, tt.target, bytes.NewBufferString(tt.body))
			req = req.WithContext(identity.WithVisitor(context.Background(), visitor))
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			res := w.Result()
			defer res.Body.Close()

			if res.StatusCode != tt.expectedStatus {
				body, _ := io.ReadAll(res.Body)
				t.Fatalf("expected status %d, got %d. Body: %s", tt.expectedStatus, res.StatusCode, string(body))
			}

			if tt.validateResp != nil {
				tt.validateResp(t, res)
			}
		})
	}
}
