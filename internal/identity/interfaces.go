// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package identity

import (
	"context"

	"github.com/canonical/membership-service/internal/types"
)

type SessionResolverInterface interface {
	Visitor(ctx context.Context, cookie string) (*types.Visitor, error)
}
