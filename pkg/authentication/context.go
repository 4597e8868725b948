// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import "context"

// Caller is a machine client authenticated with a bearer token
type Caller struct {
	Subject string
	Scopes  []string
}

type callerContextKey struct{}

func WithCaller(ctx context.Context, c *Caller) context.Context {
	return context.WithValue(ctx, callerContextKey{}, c)
}

// CallerFromContext returns the authenticated machine client, if any.
func CallerFromContext(ctx context.Context) (*Caller, bool) {
	c, ok := ctx.Value(callerContextKey{}).(*Caller)
	return c, ok && c != nil
}
