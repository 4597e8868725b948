// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"errors"
)

// NoopVerifier accepts any non empty token and uses it as the caller subject,
// meant for local development only.
type NoopVerifier struct{}

func NewNoopVerifier() *NoopVerifier {
	return &NoopVerifier{}
}

func (n *NoopVerifier) VerifyToken(ctx context.Context, rawToken string) (*Caller, error) {
	if rawToken == "" {
		return nil, errors.New("empty token")
	}

	return &Caller{Subject: rawToken}, nil
}
