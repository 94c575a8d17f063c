package main

import (
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/target/catalog-admin/internal/domain/model"
	"github.com/target/catalog-admin/internal/service"
)

// dateLayouts are accepted by --start and --end.
var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", time.DateOnly}

func runUsers(ctx *commandContext, args []string) error {
	return subcommand(ctx, "users", map[string]commandFn{
		"list":            runUsersList,
		"get":             runUsersGet,
		"search":          runUsersSearch,
		"profile":         runUsersProfile,
		"update-profile":  runUsersUpdateProfile,
		"activate":        runUsersActivate,
		"deactivate":      runUsersDeactivate,
		"count-active":    runUsersCountActive,
		"by-role":         runUsersByRole,
		"created-between": runUsersCreatedBetween,
	}, args)
}

func userTable(items []model.User) tableFn {
	return func(tw *tabwriter.Writer) error {
		if err := row(tw, "ID", "USERNAME", "EMAIL", "NAME", "ROLES", "ACTIVE"); err != nil {
			return err
		}
		for _, u := range items {
			name := strings.TrimSpace(u.FirstName + " " + u.LastName)
			err := row(tw, u.ID, u.Username, orDash(u.Email), orDash(name), orDash(strings.Join(u.Roles, ",")), u.IsActive())
			if err != nil {
				return err
			}
		}
		return nil
	}
}

// parseOutput parses fs with output flags and returns the positional args.
func parseOutput(fs *flag.FlagSet, out *outputOptions, args []string) ([]string, error) {
	addOutputFlags(fs, out)
	positional, err := parseArgs(fs, args)
	if err != nil {
		return nil, err
	}
	if err := out.validate(); err != nil {
		return nil, err
	}
	return positional, nil
}

func runUsersList(ctx *commandContext, args []string) error {
	var (
		out  outputOptions
		opts service.ListUsersOptions
	)
	fs := newFlagSet("users list", ctx.Stderr)
	fs.IntVar(&opts.Page, "page", 0, "Zero-based page number")
	fs.IntVar(&opts.Size, "size", 0, "Page size (10, 20, 50 or 100)")
	fs.StringVar(&opts.Sort, "sort", "", "Sort expression, e.g. username,asc")
	fs.BoolVar(&opts.ActiveOnly, "active", false, "Only active users")
	fs.BoolVar(&opts.All, "all", false, "Every user, unpaged")
	if _, err := parseOutput(fs, &out, args); err != nil {
		return err
	}

	page, err := ctx.App.Users.List(ctx.Ctx, opts)
	if err != nil {
		return err
	}
	return render(ctx.Stdout, out, page, pageTable(page, userTable(page.Content)))
}

func runUsersGet(ctx *commandContext, args []string) error {
	var out outputOptions
	positional, err := parseOutput(newFlagSet("users get", ctx.Stderr), &out, args)
	if err != nil {
		return err
	}
	id, err := parseID(positional, "user")
	if err != nil {
		return err
	}

	u, err := ctx.App.Users.Get(ctx.Ctx, id)
	if err != nil {
		return err
	}
	return render(ctx.Stdout, out, u, userTable([]model.User{*u}))
}

func runUsersSearch(ctx *commandContext, args []string) error {
	var out outputOptions
	positional, err := parseOutput(newFlagSet("users search", ctx.Stderr), &out, args)
	if err != nil {
		return err
	}

	items, err := ctx.App.Users.Search(ctx.Ctx, strings.Join(positional, " "))
	if err != nil {
		return err
	}
	return render(ctx.Stdout, out, items, userTable(items))
}

func runUsersProfile(ctx *commandContext, args []string) error {
	var out outputOptions
	if _, err := parseOutput(newFlagSet("users profile", ctx.Stderr), &out, args); err != nil {
		return err
	}

	u, err := ctx.App.Users.Profile(ctx.Ctx)
	if err != nil {
		return err
	}
	return render(ctx.Stdout, out, u, userTable([]model.User{*u}))
}

// runUsersUpdateProfile edits the caller's own account. Flags that are not
// given keep the current values.
func runUsersUpdateProfile(ctx *commandContext, args []string) error {
	var (
		out outputOptions
		in  model.UserUpdate
	)
	fs := newFlagSet("users update-profile", ctx.Stderr)
	fs.StringVar(&in.Username, "username", "", "New username")
	fs.StringVar(&in.Email, "email", "", "New email")
	fs.StringVar(&in.FirstName, "first-name", "", "New first name")
	fs.StringVar(&in.LastName, "last-name", "", "New last name")
	if _, err := parseOutput(fs, &out, args); err != nil {
		return err
	}

	current, err := ctx.App.Users.Profile(ctx.Ctx)
	if err != nil {
		return err
	}
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if !set["username"] {
		in.Username = current.Username
	}
	if !set["email"] {
		in.Email = current.Email
	}
	if !set["first-name"] {
		in.FirstName = current.FirstName
	}
	if !set["last-name"] {
		in.LastName = current.LastName
	}

	u, err := ctx.App.Users.UpdateProfile(ctx.Ctx, in)
	if err != nil {
		return err
	}
	return render(ctx.Stdout, out, u, userTable([]model.User{*u}))
}

func runUsersActivate(ctx *commandContext, args []string) error {
	return setUserActive(ctx, "activate", args, true)
}

func runUsersDeactivate(ctx *commandContext, args []string) error {
	return setUserActive(ctx, "deactivate", args, false)
}

func setUserActive(ctx *commandContext, name string, args []string, active bool) error {
	positional, err := parseArgs(newFlagSet("users "+name, ctx.Stderr), args)
	if err != nil {
		return err
	}
	id, err := parseID(positional, "user")
	if err != nil {
		return err
	}
	if err := ctx.App.Users.SetActive(ctx.Ctx, id, active); err != nil {
		return err
	}
	return writef(ctx.Stdout, "User %d %sd\n", id, name)
}

func runUsersCountActive(ctx *commandContext, args []string) error {
	var out outputOptions
	if _, err := parseOutput(newFlagSet("users count-active", ctx.Stderr), &out, args); err != nil {
		return err
	}

	n, err := ctx.App.Users.CountActive(ctx.Ctx)
	if err != nil {
		return err
	}
	return render(ctx.Stdout, out, model.ActiveUserCount{ActiveUserCount: n}, func(tw *tabwriter.Writer) error {
		return row(tw, "Active users:", n)
	})
}

func runUsersByRole(ctx *commandContext, args []string) error {
	var out outputOptions
	positional, err := parseOutput(newFlagSet("users by-role", ctx.Stderr), &out, args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return fmt.Errorf("%w: %s users by-role <role>", errUsage, programName)
	}

	items, err := ctx.App.Users.ByRole(ctx.Ctx, positional[0])
	if err != nil {
		return err
	}
	return render(ctx.Stdout, out, items, userTable(items))
}

func runUsersCreatedBetween(ctx *commandContext, args []string) error {
	var (
		out        outputOptions
		start, end string
	)
	fs := newFlagSet("users created-between", ctx.Stderr)
	fs.StringVar(&start, "start", "", "Start date (YYYY-MM-DD or RFC 3339)")
	fs.StringVar(&end, "end", "", "End date (YYYY-MM-DD or RFC 3339)")
	if _, err := parseOutput(fs, &out, args); err != nil {
		return err
	}
	from, err := parseDate("start", start)
	if err != nil {
		return err
	}
	to, err := parseDate("end", end)
	if err != nil {
		return err
	}

	items, err := ctx.App.Users.CreatedBetween(ctx.Ctx, from, to)
	if err != nil {
		return err
	}
	return render(ctx.Stdout, out, items, userTable(items))
}

func parseDate(flagName, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: --%s is required", errUsage, flagName)
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: --%s %q is not a date", errUsage, flagName, value)
}
