// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
)

type TokenVerifierInterface interface {
	// VerifyToken validates a raw JWT presented by a machine client and returns
	// the caller it identifies when the caller is allowed to use the API
	VerifyToken(ctx context.Context, rawToken string) (*Caller, error)
}
