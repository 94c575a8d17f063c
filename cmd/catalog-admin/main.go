// Command catalog-admin is the operator CLI for the catalog API. It keeps a
// signed-in session between runs and refreshes it transparently.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/target/catalog-admin/config"
	"github.com/target/catalog-admin/internal/bootstrap"
	domainauth "github.com/target/catalog-admin/internal/domain/auth"
	apperrors "github.com/target/catalog-admin/internal/errors"
	obserrors "github.com/target/catalog-admin/internal/observability/errors"
	"github.com/target/catalog-admin/internal/ports"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
	exitExpired = 3
)

const (
	programName = "catalog-admin"
	expiredHint = "session expired; run `catalog-admin login`"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	// needsApp is false for commands that do not talk to the catalog API.
	needsApp bool
	run      commandFn
}

// environment is everything run needs from the process.
type environment struct {
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader
	Logger *slog.Logger
	Config config.AppConfig
	// KV overrides the configured storage backend.
	KV ports.KVStore
	// AppOptions lets tests inject a transport.
	AppOptions func(*bootstrap.AppOptions)
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader
	App    *bootstrap.App

	expired bool
}

var errUsage = errors.New("usage")

func main() {
	cfg, cfgErr := bootstrap.LoadConfig()
	logger := bootstrap.InitLogger(cfg.Logging, os.Stderr)
	if cfgErr != nil {
		logger.ErrorContext(context.Background(), "load config", "error", cfgErr)
		os.Exit(exitFailure) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], environment{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Stdin:  os.Stdin,
		Logger: logger,
		Config: cfg,
	})
	stop()
	os.Exit(code) //nolint:forbidigo // CLI must propagate command status to callers
}

func run(ctx context.Context, args []string, env environment) int {
	logger := env.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		_ = printUsage(env.Stdout)
		if len(args) == 0 {
			return exitUsage
		}
		return exitOK
	}

	cmd, ok := commands()[args[0]]
	if !ok {
		_ = writef(env.Stderr, "unknown command %q\n\n", args[0])
		_ = printUsage(env.Stderr)
		return exitUsage
	}

	cmdCtx := &commandContext{
		Ctx:    ctx,
		Logger: logger,
		Config: env.Config,
		Stdout: env.Stdout,
		Stderr: env.Stderr,
		Stdin:  env.Stdin,
	}

	if cmd.needsApp {
		opts := bootstrap.AppOptions{Config: env.Config, Logger: logger, KV: env.KV}
		if env.AppOptions != nil {
			env.AppOptions(&opts)
		}
		app, err := bootstrap.NewApp(ctx, opts)
		if err != nil {
			return cmdCtx.fail(cmd.name, err)
		}
		defer func() {
			if closeErr := app.Close(); closeErr != nil {
				logger.WarnContext(ctx, "close storage failed", "error", closeErr)
			}
		}()
		cmdCtx.App = app
		unsubscribe := app.Session.Subscribe(cmdCtx.onSessionEvent)
		defer unsubscribe()
	}

	if err := cmd.run(cmdCtx, args[1:]); err != nil {
		return cmdCtx.fail(cmd.name, err)
	}
	return exitOK
}

func (c *commandContext) onSessionEvent(e domainauth.Event) {
	if e.Kind == domainauth.EventCleared && e.Reason.Expired() {
		c.expired = true
	}
}

// fail reports err and returns the exit code for it.
func (c *commandContext) fail(name string, err error) int {
	switch {
	case errors.Is(err, flag.ErrHelp):
		return exitOK
	case errors.Is(err, errUsage):
		_ = writef(c.Stderr, "%v\n", err)
		return exitUsage
	case c.expired || apperrors.IsSessionExpired(err):
		_ = writeln(c.Stderr, expiredHint)
		return exitExpired
	}

	c.Logger.DebugContext(c.Ctx, "command failed",
		"command", name,
		"error", err,
		"error_class", obserrors.Classify(err),
	)
	_ = writef(c.Stderr, "error: %s\n", apperrors.UserMessage(err, err.Error()))
	fields := apperrors.GetFields(err)
	for _, field := range slices.Sorted(maps.Keys(fields)) {
		_ = writef(c.Stderr, "  %s: %s\n", field, fields[field])
	}
	return exitFailure
}

func commands() map[string]command {
	list := []command{
		{name: "login", description: "Sign in and store the session", needsApp: true, run: runLogin},
		{name: "logout", description: "Sign out and erase the stored session", needsApp: true, run: runLogout},
		{name: "register", description: "Create an account (does not sign in)", needsApp: true, run: runRegister},
		{name: "whoami", description: "Show the signed-in identity", needsApp: true, run: runWhoami},
		{name: "health", description: "Check the auth service", needsApp: true, run: runHealth},
		{name: "dashboard", description: "Show catalog summary statistics", needsApp: true, run: runDashboard},
		{name: "products", description: "Browse and manage products", needsApp: true, run: runProducts},
		{name: "users", description: "Browse and manage users", needsApp: true, run: runUsers},
		{name: "migrate", description: "Apply postgres storage migrations", run: runMigrations},
	}
	out := make(map[string]command, len(list))
	for _, c := range list {
		out[c.name] = c
	}
	return out
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: %s <command> [flags]\n\n", programName); err != nil {
		return err
	}
	if err := writef(w, "Available commands:\n"); err != nil {
		return err
	}
	cmds := commands()
	for _, name := range slices.Sorted(maps.Keys(cmds)) {
		if err := writef(w, "  %-12s %s\n", name, cmds[name].description); err != nil {
			return err
		}
	}
	return writef(w, "\nCommon flags: --output json|table, --query <jmespath>\n")
}

// subcommand dispatches args[0] within a command group.
func subcommand(ctx *commandContext, group string, subs map[string]commandFn, args []string) error {
	names := slices.Sorted(maps.Keys(subs))
	if len(args) == 0 {
		return fmt.Errorf("%w: %s %s <%s>", errUsage, programName, group, joinNames(names))
	}
	fn, ok := subs[args[0]]
	if !ok {
		return fmt.Errorf("%w: unknown %s command %q (expected one of %s)", errUsage, group, args[0], joinNames(names))
	}
	return fn(ctx, args[1:])
}

func joinNames(names []string) string { return strings.Join(names, "|") }

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	_, err := fmt.Fprintln(w, args...)
	return err
}
