package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/target/catalog-admin/internal/bootstrap"
	"github.com/target/catalog-admin/internal/migrate"
)

const defaultMigrationTimeout = 5 * time.Minute

func runDashboard(ctx *commandContext, args []string) error {
	var out outputOptions
	if _, err := parseOutput(newFlagSet("dashboard", ctx.Stderr), &out, args); err != nil {
		return err
	}

	stats, err := ctx.App.Dashboard.Stats(ctx.Ctx)
	if err != nil {
		return err
	}
	return render(ctx.Stdout, out, stats, func(tw *tabwriter.Writer) error {
		rows := [][2]any{
			{"Products:", stats.TotalProducts},
			{"Active products:", stats.ActiveProducts},
			{"Categories:", stats.Categories},
		}
		if stats.UsersIncluded {
			rows = append(rows, [2]any{"Active users:", stats.ActiveUsers})
		}
		for _, r := range rows {
			if err := row(tw, r[0], r[1]); err != nil {
				return err
			}
		}
		return nil
	})
}

type migrateOptions struct {
	Timeout time.Duration
	Status  bool
}

func parseMigrateFlags(ctx *commandContext, args []string) (migrateOptions, error) {
	opts := migrateOptions{Timeout: defaultMigrationTimeout}
	fs := newFlagSet("migrate", ctx.Stderr)
	fs.DurationVar(&opts.Timeout, "timeout", defaultMigrationTimeout, "Maximum duration to wait for migrations to complete")
	fs.BoolVar(&opts.Status, "status", false, "List pending migrations without applying them")
	if _, err := parseArgs(fs, args); err != nil {
		return migrateOptions{}, err
	}
	if opts.Timeout <= 0 {
		return migrateOptions{}, fmt.Errorf("%w: --timeout must be greater than zero", errUsage)
	}
	return opts, nil
}

// runMigrations prepares the client_kv schema for the postgres storage
// backend. It does not need a session.
func runMigrations(ctx *commandContext, args []string) error {
	opts, err := parseMigrateFlags(ctx, args)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithTimeout(ctx.Ctx, opts.Timeout)
	defer cancel()

	db, err := bootstrap.ConnectDB(runCtx, bootstrap.DatabaseConfig{
		DBConfig: ctx.Config.Postgres,
		Logger:   ctx.Logger,
	})
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			ctx.Logger.Warn("db close failed", "error", closeErr)
		}
	}()

	if opts.Status {
		pending, pendErr := migrate.Pending(runCtx, db)
		if pendErr != nil {
			return pendErr
		}
		if len(pending) == 0 {
			return writeln(ctx.Stdout, "Schema is up to date")
		}
		for _, v := range pending {
			if err := writef(ctx.Stdout, "pending %s\n", v); err != nil {
				return err
			}
		}
		return nil
	}

	applied, err := bootstrap.RunMigrations(runCtx, db, ctx.Logger)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("migrations did not finish within %s: %w", opts.Timeout, err)
		}
		return err
	}
	return writef(ctx.Stdout, "Applied %d migration(s)\n", len(applied))
}
