// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound            = errors.New("resource not found")
	ErrDuplicateKey        = errors.New("duplicate key violation")
	ErrForeignKeyViolation = errors.New("foreign key violation")
	// ErrConflict is returned when a conditional update matched no row because
	// another request changed it first.
	ErrConflict = errors.New("conditional update lost to a concurrent change")
)

const (
	pgErrCodeUniqueViolation     = "23505"
	pgErrCodeForeignKeyViolation = "23503"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsDuplicateKeyError checks if the error is a PostgreSQL unique constraint violation.
func IsDuplicateKeyError(err error) bool {
	return pgCode(err) == pgErrCodeUniqueViolation
}

// IsForeignKeyViolation checks if the error is a PostgreSQL foreign key violation.
func IsForeignKeyViolation(err error) bool {
	return pgCode(err) == pgErrCodeForeignKeyViolation
}

// wrap turns driver errors into package sentinels, keeping the operation as context.
func wrap(err error, op string) error {
	switch {
	case IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", op, ErrDuplicateKey)
	case IsForeignKeyViolation(err):
		return fmt.Errorf("%s: %w", op, ErrForeignKeyViolation)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
