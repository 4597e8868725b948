// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package invitejoin

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
	tests := []struct {
		name           string
		method         string
		target         string
		body           string
		setupMocks     func(*MockCoordinatorInterface)
		expectedStatus int
		validateResp   func(*testing.T, *http.Response)
	}{
		{
			name:   "page shows invitation",
			method: http.MethodGet,
			target: "/invite/O1?token=T",
			setupMocks: func(c *MockCoordinatorInterface) {
				c.EXPECT().Visit(gomock.Any(), "O1", "T", "", false, gomock.Any()).Return(&Outcome{
					Invitation:      pending(),
					LoginURL:        "https://kratos.example.com/login",
					RegistrationURL: "https://kratos.example.com/registration",
				}, nil)
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, res *http.Response) {
				var body map[string]any
				if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				for _, k := range []string{"invitation", "authenticated", "loginUrl", "registrationUrl"} {
					if _, ok := body[k]; !ok {
						t.Errorf("missing %s in response", k)
					}
				}
			},
		},
		{
			name:   "page forces logout",
			method: http.MethodGet,
			target: "/invite/O1?token=T",
			setupMocks: func(c *MockCoordinatorInterface) {
				c.EXPECT().Visit(gomock.Any(), "O1", "T", "", false, gomock.Any()).Return(&Outcome{RedirectTo: testLogoutURL}, nil)
			},
			expectedStatus: http.StatusSeeOther,
			validateResp: func(t *testing.T, res *http.Response) {
				if loc := res.Header.Get("Location"); loc != testLogoutURL {
					t.Errorf("unexpected location %s", loc)
				}
			},
		},
		{
			name:   "sign in return carries the stamp",
			method: http.MethodGet,
			target: "/invite/O1?token=T&stamp=S",
			setupMocks: func(c *MockCoordinatorInterface) {
				c.EXPECT().Visit(gomock.Any(), "O1", "T", "S", false, gomock.Any()).Return(&Outcome{Invitation: pending(), Authenticated: true, Stamp: "S"}, nil)
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, res *http.Response) {
				var body map[string]any
				if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				if body["stamp"] != "S" {
					t.Errorf("expected the stamp to be handed back, got %v", body["stamp"])
				}
			},
		},
		{
			name:   "return visit carries the marker",
			method: http.MethodGet,
			target: "/invite/O1?token=T&redirect=true",
			setupMocks: func(c *MockCoordinatorInterface) {
				c.EXPECT().Visit(gomock.Any(), "O1", "T", "", true, gomock.Any()).Return(&Outcome{Invitation: pending()}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "expired link looks like any invalid link",
			method: http.MethodGet,
			target: "/invite/O1?token=T",
			setupMocks: func(c *MockCoordinatorInterface) {
				c.EXPECT().Visit(gomock.Any(), "O1", "T", "", false, gomock.Any()).Return(nil, apperror.ErrExpired)
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
			name:   "join accepts",
			method: http.MethodPost,
			target: "/api/v0/organizations/O1/join",
			body:   `{"token":"T","status":"accepted","stamp":"S"}`,
			setupMocks: func(c *MockCoordinatorInterface) {
				c.EXPECT().Join(gomock.Any(), "O1", "T", "S", types.InvitationAccepted, gomock.Any()).
					Return(&JoinResult{Member: &types.Member{OrganizationID: "O1", UserID: "U3", Active: true}}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "join already resolved",
			method: http.MethodPost,
			target: "/api/v0/organizations/O1/join",
			body:   `{"token":"T","status":"declined"}`,
			setupMocks: func(c *MockCoordinatorInterface) {
				c.EXPECT().Join(gomock.Any(), "O1", "T", "", types.InvitationDeclined, gomock.Any()).Return(nil, apperror.ErrAlreadyResolved)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "join with unknown status",
			method:         http.MethodPost,
			target:         "/api/v0/organizations/O1/join",
			body:           `{"token":"T","status":"expired"}`,
			setupMocks:     func(c *MockCoordinatorInterface) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "join without token",
			method:         http.MethodPost,
			target:         "/api/v0/organizations/O1/join",
			body:           `{"status":"accepted"}`,
			setupMocks:     func(c *MockCoordinatorInterface) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "join requires a fresh session",
			method: http.MethodPost,
			target: "/api/v0/organizations/O1/join",
			body:   `{"token":"T","status":"accepted"}`,
			setupMocks: func(c *MockCoordinatorInterface) {
				c.EXPECT().Join(gomock.Any(), "O1", "T", "", types.InvitationAccepted, gomock.Any()).Return(nil, apperror.ErrAuth)
			},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			coordinator := NewMockCoordinatorInterface(ctrl)
			tt.setupMocks(coordinator)

			mux := chi.NewMux()
			NewAPI(coordinator, logging.NewNoopLogger()).RegisterEndpoints(mux)

			req := httptest.NewRequest(tt.method, tt.target, bytes.NewBufferString(tt.body))
			req = req.WithContext(identity.WithVisitor(context.Background(), freshVisitor("U3")))
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
