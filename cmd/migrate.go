// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/canonical/membership-service/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [up|down [version]|status|check]",
	Short: "Run database migrations",
	Long:  `Run the embedded database migrations, the DSN defaults to the DSN environment variable`,
	Args:  migrateArgs,
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().String("dsn", os.Getenv("DSN"), "PostgreSQL DSN connection string")
	migrateCmd.Flags().StringP("format", "f", "text", "Output format (text or json)")

	rootCmd.AddCommand(migrateCmd)
}

func migrateArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.RangeArgs(0, 2)(cmd, args); err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}

	switch args[0] {
	case "up", "status", "check":
		if len(args) == 2 {
			return fmt.Errorf("%q does not take a version", args[0])
		}
	case "down":
		if len(args) == 2 {
			if v, err := strconv.ParseInt(args[1], 10, 64); err != nil || v < 0 {
				return fmt.Errorf("invalid version number: %q", args[1])
			}
		}
	default:
		return fmt.Errorf("invalid migration command: %q", args[0])
	}

	return nil
}

// migrator runs one goose command and reports in text or json
type migrator struct {
	provider *goose.Provider
	json     bool
	out      io.Writer
}

func runMigrate(cmd *cobra.Command, args []string) error {
	command := "up"
	if len(args) > 0 {
		command = args[0]
	}

	version := int64(-1)
	if len(args) > 1 {
		version, _ = strconv.ParseInt(args[1], 10, 64)
	}

	dsn, _ := cmd.Flags().GetString("dsn")
	format, _ := cmd.Flags().GetString("format")

	if dsn == "" {
		return errors.New("a DSN is required, use --dsn or the DSN environment variable")
	}

	config, err := pgx.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("DSN validation failed: %v", err)
	}

	db := stdlib.OpenDB(*config)
	defer db.Close()

	ctx := cmd.Context()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("DB connection failed: %v", err)
	}

	var opts []goose.ProviderOption
	if format == "json" {
		opts = append(opts, goose.WithLogger(goose.NopLogger()))
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.EmbedMigrations, opts...)
	if err != nil {
		return fmt.Errorf("failed to create goose provider: %w", err)
	}

	m := &migrator{provider: provider, json: format == "json", out: cmd.OutOrStdout()}

	switch command {
	case "down":
		return m.down(ctx, version)
	case "status":
		return m.status(ctx)
	case "check":
		return m.check(ctx)
	default:
		return m.up(ctx)
	}
}

func (m *migrator) up(ctx context.Context) error {
	results, err := m.provider.Up(ctx)
	if err != nil {
		return err
	}
	return m.applied(results)
}

func (m *migrator) down(ctx context.Context, version int64) error {
	if version < 0 {
		result, err := m.provider.Down(ctx)
		if err != nil {
			return err
		}
		return m.applied([]*goose.MigrationResult{result})
	}

	results, err := m.provider.DownTo(ctx, version)
	if err != nil {
		return err
	}
	return m.applied(results)
}

func (m *migrator) applied(results []*goose.MigrationResult) error {
	if !m.json {
		return nil
	}
	if results == nil {
		results = []*goose.MigrationResult{}
	}
	return json.NewEncoder(m.out).Encode(map[string]any{"applied": results})
}

func (m *migrator) status(ctx context.Context) error {
	statuses, err := m.provider.Status(ctx)
	if err != nil {
		return err
	}
	if m.json {
		return json.NewEncoder(m.out).Encode(statuses)
	}

	w := tabwriter.NewWriter(m.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "APPLIED AT\tMIGRATION")
	for _, s := range statuses {
		appliedAt := "Pending"
		if s.State == goose.StateApplied {
			appliedAt = s.AppliedAt.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%s\t%s\n", appliedAt, s.Source.Path)
	}
	return w.Flush()
}

func (m *migrator) check(ctx context.Context) error {
	pending, err := m.provider.HasPending(ctx)
	if err != nil {
		return fmt.Errorf("failed to check pending migrations: %w", err)
	}

	current, err := m.provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}

	if m.json {
		status := "ok"
		if pending {
			status = "pending"
		}
		return json.NewEncoder(m.out).Encode(map[string]any{"status": status, "version": current})
	}

	if pending {
		return fmt.Errorf("migrations are pending: current version %d", current)
	}

	fmt.Fprintf(m.out, "Database is up to date (version %d)\n", current)
	return nil
}
