package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	domainauth "github.com/target/catalog-admin/internal/domain/auth"
)

type loginOptions struct {
	Username      string
	Password      string
	PasswordStdin bool
}

func runLogin(ctx *commandContext, args []string) error {
	var opts loginOptions
	fs := newFlagSet("login", ctx.Stderr)
	fs.StringVar(&opts.Username, "username", "", "Account username")
	fs.StringVar(&opts.Password, "password", "", "Account password (prefer --password-stdin)")
	fs.BoolVar(&opts.PasswordStdin, "password-stdin", false, "Read the password from stdin")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}

	if opts.Username == "" {
		u, err := readLine(ctx.Stdin, ctx.Stderr, "Username: ")
		if err != nil {
			return err
		}
		opts.Username = u
	}
	if opts.Password == "" {
		prompt := "Password: "
		if opts.PasswordStdin {
			prompt = ""
		}
		p, err := readLine(ctx.Stdin, ctx.Stderr, prompt)
		if err != nil {
			return err
		}
		opts.Password = p
	}

	sess, err := ctx.App.Auth.Login(ctx.Ctx, domainauth.Credentials{
		Username: strings.TrimSpace(opts.Username),
		Password: opts.Password,
	})
	if err != nil {
		return err
	}
	return writef(ctx.Stdout, "Signed in as %s\n", sess.Identity.DisplayName())
}

func runLogout(ctx *commandContext, args []string) error {
	fs := newFlagSet("logout", ctx.Stderr)
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	if err := ctx.App.Auth.Logout(ctx.Ctx); err != nil {
		return err
	}
	return writeln(ctx.Stdout, "Signed out")
}

func runRegister(ctx *commandContext, args []string) error {
	var reg domainauth.Registration
	fs := newFlagSet("register", ctx.Stderr)
	fs.StringVar(&reg.Username, "username", "", "Username (at least 3 characters)")
	fs.StringVar(&reg.Email, "email", "", "Email address")
	fs.StringVar(&reg.Password, "password", "", "Password (at least 6 characters)")
	fs.StringVar(&reg.ConfirmPassword, "confirm-password", "", "Repeat the password")
	fs.StringVar(&reg.FirstName, "first-name", "", "First name (optional)")
	fs.StringVar(&reg.LastName, "last-name", "", "Last name (optional)")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}

	if err := ctx.App.Auth.Register(ctx.Ctx, reg); err != nil {
		return err
	}
	return writef(ctx.Stdout, "Registered %s. Run `%s login` to sign in.\n", reg.Username, programName)
}

// whoamiView is the printable form of the current session.
type whoamiView struct {
	Authenticated bool                 `json:"authenticated"`
	Identity      *domainauth.Identity `json:"identity,omitempty"`
	Role          domainauth.Role      `json:"role"`
	Admin         bool                 `json:"admin"`
	ExpiresAt     *time.Time           `json:"expiresAt,omitempty"`
}

func runWhoami(ctx *commandContext, args []string) error {
	var out outputOptions
	fs := newFlagSet("whoami", ctx.Stderr)
	addOutputFlags(fs, &out)
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	if err := out.validate(); err != nil {
		return err
	}

	sess := ctx.App.Auth.CurrentSession()
	view := whoamiView{
		Authenticated: sess.IsAuthenticated(),
		Identity:      sess.Identity,
		Role:          ctx.App.Auth.Role(),
		Admin:         ctx.App.Auth.IsAdmin(),
	}
	if !sess.ExpiresAt.IsZero() {
		view.ExpiresAt = &sess.ExpiresAt
	}

	return render(ctx.Stdout, out, view, func(tw *tabwriter.Writer) error {
		if !view.Authenticated {
			return row(tw, "Not signed in")
		}
		rows := [][2]any{
			{"User", view.Identity.DisplayName()},
			{"Username", view.Identity.Username},
			{"Email", orDash(view.Identity.Email)},
			{"Roles", orDash(strings.Join(view.Identity.Roles, ", "))},
			{"Role", view.Role},
		}
		if view.ExpiresAt != nil {
			rows = append(rows, [2]any{"Token expires", view.ExpiresAt.Local().Format(time.RFC1123)})
		}
		for _, r := range rows {
			if err := row(tw, fmt.Sprintf("%s:", r[0]), r[1]); err != nil {
				return err
			}
		}
		return nil
	})
}

func runHealth(ctx *commandContext, args []string) error {
	fs := newFlagSet("health", ctx.Stderr)
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	msg, err := ctx.App.Auth.Health(ctx.Ctx)
	if err != nil {
		return err
	}
	return writeln(ctx.Stdout, msg)
}
