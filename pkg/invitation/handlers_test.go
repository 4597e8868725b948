// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package invitation

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
	"github.com/canonical/membership-service/internal/types"
)

func TestAPI_Endpoints(t *testing.T) {
	owner := &types.Visitor{Authenticated: true, UserID: "owner-1"}

	tests := []struct {
		name           string
		method         string
		target         string
		body           string
		visitor        *types.Visitor
		setupMocks     func(*MockServiceInterface)
		expectedStatus int
		validateResp   func(*testing.T, *http.Response)
	}{
		{
			name:    "create",
			method:  http.MethodPost,
			target:  "/api/v0/organizations/org-1/invite",
			body:    `{"first_name":"Ada","last_name":"Lovelace","email":"ada@example.com","roles":["appraiser"]}`,
			visitor: owner,
			setupMocks: func(svc *MockServiceInterface) {
				invitee := types.Invitee{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}
				svc.EXPECT().Create(gomock.Any(), "org-1", "owner-1", invitee, []types.Role{types.RoleAppraiser}).
					Return(pendingInvitation(), "https://app.example.com/invite/org-1?token=token-1", nil)
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, res *http.Response) {
				raw, _ := io.ReadAll(res.Body)
				if bytes.Contains(raw, []byte(`"token":`)) {
					t.Errorf("token must not be serialized as a field: %s", raw)
				}

				var resp InvitationResponse
				if err := json.Unmarshal(raw, &resp); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				if resp.Link == "" || resp.Invitation.ID != "inv-1" {
					t.Errorf("unexpected response %+v", resp)
				}
			},
		},
		{
			name:           "create with malformed body",
			method:         http.MethodPost,
			target:         "/api/v0/organizations/org-1/invite",
			body:           `{"roles":`,
			visitor:        owner,
			setupMocks:     func(svc *MockServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:    "create forbidden",
			method:  http.MethodPost,
			target:  "/api/v0/organizations/org-1/invite",
			body:    `{"first_name":"Ada","last_name":"Lovelace","email":"ada@example.com","roles":["admin"]}`,
			visitor: &types.Visitor{Authenticated: true, UserID: "appraiser-1"},
			setupMocks: func(svc *MockServiceInterface) {
				svc.EXPECT().Create(gomock.Any(), "org-1", "appraiser-1", gomock.Any(), gomock.Any()).Return(nil, "", apperror.ErrForbidden)
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:    "update roles",
			method:  http.MethodPut,
			target:  "/api/v0/organizations/org-1/invite/inv-1",
			body:    `{"roles":["manager"]}`,
			visitor: owner,
			setupMocks: func(svc *MockServiceInterface) {
				svc.EXPECT().UpdateRoles(gomock.Any(), "org-1", "inv-1", "owner-1", []types.Role{types.RoleManager}).Return(pendingInvitation(), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:    "cancel resolved invitation",
			method:  http.MethodDelete,
			target:  "/api/v0/organizations/org-1/invite/inv-1",
			visitor: owner,
			setupMocks: func(svc *MockServiceInterface) {
				svc.EXPECT().Cancel(gomock.Any(), "org-1", "inv-1", "owner-1").Return(apperror.ErrAlreadyResolved)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:    "cancel",
			method:  http.MethodDelete,
			target:  "/api/v0/organizations/org-1/invite/inv-1",
			visitor: owner,
			setupMocks: func(svc *MockServiceInterface) {
				svc.EXPECT().Cancel(gomock.Any(), "org-1", "inv-1", "owner-1").Return(nil)
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name:    "public lookup",
			method:  http.MethodGet,
			target:  "/api/v0/organizations/org-1/invitations?token=token-1&status=pending",
			visitor: &types.Visitor{},
			setupMocks: func(svc *MockServiceInterface) {
				svc.EXPECT().Lookup(gomock.Any(), "org-1", "token-1").Return(pendingInvitation(), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:    "public lookup with mismatched status",
			method:  http.MethodGet,
			target:  "/api/v0/organizations/org-1/invitations?token=token-1&status=accepted",
			visitor: &types.Visitor{},
			setupMocks: func(svc *MockServiceInterface) {
				svc.EXPECT().Lookup(gomock.Any(), "org-1", "token-1").Return(pendingInvitation(), nil)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:    "public lookup of unknown token",
			method:  http.MethodGet,
			target:  "/api/v0/organizations/org-2/invitations?token=token-1",
			visitor: &types.Visitor{},
			setupMocks: func(svc *MockServiceInterface) {
				svc.EXPECT().Lookup(gomock.Any(), "org-2", "token-1").Return(nil, nil)
			},
			expectedStatus: http.StatusNotFound,
			validateResp: func(t *testing.T, res *http.Response) {
				var resp apperror.ErrorResponse
				if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				if resp.Message != apperror.InvalidLink().Message {
					t.Errorf("unexpected message %q", resp.Message)
				}
			},
		},
		{
			name:    "list pending",
			method:  http.MethodGet,
			target:  "/api/v0/organizations/org-1/invitations",
			visitor: owner,
			setupMocks: func(svc *MockServiceInterface) {
				svc.EXPECT().ListPending(gomock.Any(), "org-1", "owner-1").Return([]*types.Invitation{pendingInvitation()}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:    "list pending anonymously",
			method:  http.MethodGet,
			target:  "/api/v0/organizations/org-1/invitations",
			visitor: &types.Visitor{},
			setupMocks: func(svc *MockServiceInterface) {
				svc.EXPECT().ListPending(gomock.Any(), "org-1", "").Return(nil, apperror.ErrAuth)
			},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc := NewMockServiceInterface(ctrl)
			tt.setupMocks(svc)

			api := NewAPI(svc, logging.NewNoopLogger())

			mux := chi.NewMux()
			api.RegisterEndpoints(mux)

			req := httptest.NewRequest(tt.method, tt.target, bytes.NewBufferString(tt.body))
			req = req.WithContext(identity.WithVisitor(context.Background(), tt.visitor))
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
