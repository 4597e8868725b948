// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package db

import (
	"context"

	sq "github.com/Masterminds/squirrel"
)

type DBClientInterface interface {
	// Statement runs on the transaction carried by ctx, or on the pool
	Statement(context.Context) sq.StatementBuilderType
	// WithTx implements the TxManagerInterface of the services
	WithTx(context.Context, func(context.Context) error) error
	// AfterCommit runs the hook once the transaction carried by ctx commits
	AfterCommit(context.Context, func())
	Close()
}
