// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"

	"github.com/canonical/membership-service/internal/logging"
	"github.com/canonical/membership-service/internal/monitoring"
	"github.com/canonical/membership-service/internal/tracing"
)

//go:generate mockgen -build_flags=--mod=mod -package authentication -destination ./mock_tracer.go -source=../../internal/tracing/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package authentication -destination ./mock_verifier.go -source=./interfaces.go

func TestMiddleware_Authenticate(t *testing.T) {
	tests := []struct {
		name               string
		authHeader         string
		setupMocks         func(*MockTokenVerifierInterface)
		expectedStatusCode int
		expectedSubject    string
	}{
		{
			name:               "Missing token - browser request passes through",
			authHeader:         "",
			setupMocks:         func(*MockTokenVerifierInterface) {},
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "Invalid token format - rejects request",
			authHeader:         "InvalidToken",
			setupMocks:         func(*MockTokenVerifierInterface) {},
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name:       "Token verification fails - rejects request",
			authHeader: "Bearer invalid-token",
			setupMocks: func(mockVerifier *MockTokenVerifierInterface) {
				mockVerifier.EXPECT().VerifyToken(gomock.Any(), "invalid-token").Return(nil, fmt.Errorf("invalid token"))
			},
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name:       "Valid token",
			authHeader: "Bearer valid-token",
			setupMocks: func(mockVerifier *MockTokenVerifierInterface) {
				mockVerifier.EXPECT().VerifyToken(gomock.Any(), "valid-token").Return(&Caller{Subject: "operator-cli"}, nil)
			},
			expectedStatusCode: http.StatusOK,
			expectedSubject:    "operator-cli",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockTracer := NewMockTracingInterface(ctrl)
			mockVerifier := NewMockTokenVerifierInterface(ctrl)
			logger := logging.NewNoopLogger()

			ctx := context.Background()
			mockTracer.EXPECT().Start(gomock.Any(), "authentication.Middleware.Authenticate").Return(ctx, trace.SpanFromContext(ctx))
			tt.setupMocks(mockVerifier)

			middleware := NewMiddleware(mockVerifier, mockTracer, monitoring.NewNoopMonitor("test", logger), logger)

			var subject string
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if c, ok := CallerFromContext(r.Context()); ok {
					subject = c.Subject
				}
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()

			middleware.Authenticate()(handler).ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatusCode {
				t.Errorf("expected status %d, got %d", tt.expectedStatusCode, rr.Code)
			}

			if subject != tt.expectedSubject {
				t.Errorf("expected subject %q, got %q", tt.expectedSubject, subject)
			}
		})
	}
}

func TestMiddleware_GetBearerToken(t *testing.T) {
	tests := []struct {
		name          string
		authHeader    string
		expectedToken string
		expectedFound bool
	}{
		{"No Authorization header", "", "", false},
		{"Bearer token", "Bearer my-token-123", "my-token-123", true},
		{"Raw token without Bearer prefix", "my-token-123", "", false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			logger := logging.NewNoopLogger()
			middleware := NewMiddleware(NewNoopVerifier(), tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test", logger), logger)

			headers := http.Header{}
			if test.authHeader != "" {
				headers.Set("Authorization", test.authHeader)
			}

			token, found := middleware.getBearerToken(headers)

			if token != test.expectedToken {
				t.Errorf("expected token %q, got %q", test.expectedToken, token)
			}
			if found != test.expectedFound {
				t.Errorf("expected found %v, got %v", test.expectedFound, found)
			}
		})
	}
}

func TestJWTVerifier_Authorize(t *testing.T) {
	tests := []struct {
		name            string
		allowedSubjects []string
		requiredScope   string
		claims          tokenClaims
		expectedErr     bool
	}{
		{"allowed subject", []string{"cli"}, "", tokenClaims{Subject: "cli"}, false},
		{"scope string", nil, "membership:admin", tokenClaims{Subject: "svc", Scope: "openid membership:admin"}, false},
		{"scope list", nil, "membership:admin", tokenClaims{Subject: "svc", Scopes: []string{"membership:admin"}}, false},
		{"missing scope", nil, "membership:admin", tokenClaims{Subject: "svc", Scope: "openid"}, true},
		{"nothing configured", nil, "", tokenClaims{Subject: "svc"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := logging.NewNoopLogger()
			v := NewJWTVerifier(nil, tt.allowedSubjects, tt.requiredScope, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test", logger), logger)

			caller, err := v.authorize(tt.claims)
			if (err != nil) != tt.expectedErr {
				t.Fatalf("expected error %v, got %v", tt.expectedErr, err)
			}
			if err == nil && caller.Subject != tt.claims.Subject {
				t.Errorf("unexpected caller %+v", caller)
			}
		})
	}
}
