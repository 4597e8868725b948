// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/canonical/membership-service/internal/logging"
	"github.com/canonical/membership-service/internal/monitoring"
	"github.com/canonical/membership-service/internal/tracing"
)

const defaultTxTimeout = 60 * time.Second

type lazyTxContextKey struct{}

type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	TracingEnabled  bool
}

// lazyTx begins the underlying transaction on first statement only,
// so handlers that never touch the database never open one.
type lazyTx struct {
	db          *sql.DB
	tx          *sql.Tx
	committed   bool
	cancel      context.CancelFunc
	afterCommit []func()
}

func (lt *lazyTx) get() (*sql.Tx, error) {
	if lt.tx != nil {
		return lt.tx, nil
	}

	// detached from the request context so a client disconnect does not
	// roll back work the handler already decided to commit
	ctx, cancel := context.WithTimeout(context.Background(), defaultTxTimeout)
	tx, err := lt.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		cancel()
		return nil, err
	}

	lt.tx = tx
	lt.cancel = cancel
	return tx, nil
}

func lazyTxFromContext(ctx context.Context) *lazyTx {
	if lt, ok := ctx.Value(lazyTxContextKey{}).(*lazyTx); ok {
		return lt
	}
	return nil
}

type DBClient struct {
	pool *pgxpool.Pool
	db   *sql.DB

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Statement returns a dollar-placeholder builder bound to the transaction carried
// by ctx, or to the pool when there is none.
func (d *DBClient) Statement(ctx context.Context) sq.StatementBuilderType {
	builder := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	if lt := lazyTxFromContext(ctx); lt != nil {
		tx, err := lt.get()
		if err == nil {
			return builder.RunWith(tx)
		}
		d.logger.Errorf("failed to begin transaction, running without one: %v", err)
	}

	return builder.RunWith(d.db)
}

// WithTx runs fn inside a transaction committed when fn returns nil.
// Nested calls join the enclosing transaction and leave the commit to it.
func (d *DBClient) WithTx(ctx context.Context, fn func(context.Context) error) error {
	ctx, span := d.tracer.Start(ctx, "db.DBClient.WithTx")
	defer span.End()

	if lazyTxFromContext(ctx) != nil {
		return fn(ctx)
	}

	lt := &lazyTx{db: d.db}

	defer func() {
		if lt.tx != nil && !lt.committed {
			if err := lt.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
				d.logger.Errorf("failed to rollback transaction: %v", err)
			}
		}
		if lt.cancel != nil {
			lt.cancel()
		}
	}()

	if err := fn(context.WithValue(ctx, lazyTxContextKey{}, lt)); err != nil {
		return err
	}

	if lt.tx != nil {
		if err := lt.tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		lt.committed = true
	}

	for _, hook := range lt.afterCommit {
		hook()
	}

	return nil
}

// AfterCommit defers fn until the transaction carried by ctx commits, it is
// dropped on rollback. Without a transaction fn runs right away.
func (d *DBClient) AfterCommit(ctx context.Context, fn func()) {
	lt := lazyTxFromContext(ctx)
	if lt == nil {
		fn()
		return
	}

	lt.afterCommit = append(lt.afterCommit, fn)
}

func (d *DBClient) Close() {
	if d.db != nil {
		_ = d.db.Close()
	}

	if d.pool != nil {
		d.pool.Close()
	}
}

// NewDBClient opens a pgx pool and exposes it through database/sql for squirrel.
func NewDBClient(cfg Config, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) (*DBClient, error) {
	config, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("invalid DSN: %w", err)
	}

	if cfg.TracingEnabled {
		config.ConnConfig.Tracer = otelpgx.NewTracer()
	}

	config.MaxConns = cfg.MaxConns
	config.MinConns = cfg.MinConns
	config.MaxConnLifetime = cfg.MaxConnLifetime
	config.MaxConnLifetimeJitter = cfg.MaxConnLifetime / 10
	config.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("failed to create db pool: %w", err)
	}

	if cfg.TracingEnabled {
		if err := otelpgx.RecordStats(pool); err != nil {
			return nil, fmt.Errorf("failed to start metrics collection for database: %w", err)
		}
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	if err := sqlDB.Ping(); err != nil {
		availability(monitor, logger, 0)
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}
	availability(monitor, logger, 1)

	d := NewDBClientFromDB(sqlDB, tracer, monitor, logger)
	d.pool = pool

	return d, nil
}

// NewDBClientFromDB wraps an already opened database handle.
func NewDBClientFromDB(sqlDB *sql.DB, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *DBClient {
	d := new(DBClient)
	d.db = sqlDB

	d.tracer = tracer
	d.monitor = monitor
	d.logger = logger

	return d
}

func availability(monitor monitoring.MonitorInterface, logger logging.LoggerInterface, v float64) {
	if err := monitor.SetDependencyAvailability(map[string]string{"component": "postgres"}, v); err != nil {
		logger.Debugf("failed to set dependency availability: %v", err)
	}
}
