// Package useradm implements the operator commands: creating an account
// directly against the store, flushing the user cache and pinging the
// dependencies.
package useradm

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"

	"github.com/BakeNecko/sidus-heroes/internal/flagx"
	"github.com/BakeNecko/sidus-heroes/internal/server/models"
	"github.com/BakeNecko/sidus-heroes/internal/server/services"
)

var ErrUsage = errors.New("usage: useradm <create|flush-cache|ping> [flags]")

type SignUpper interface {
	SignUp(ctx context.Context, in services.SignUpInput) (*models.PublicUser, error)
}

type Flusher interface {
	Flush(ctx context.Context) error
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	auth   SignUpper
	cache  Flusher
	checks map[string]Pinger
	out    io.Writer
	in     *bufio.Reader

	// getPassword is swapped in tests.
	getPassword func(w io.Writer, in *bufio.Reader) (string, error)
}

func NewApp(as SignUpper, c Flusher, checks map[string]Pinger, in io.Reader, out io.Writer) *App {
	return &App{
		auth:        as,
		cache:       c,
		checks:      checks,
		out:         out,
		in:          bufio.NewReader(in),
		getPassword: GetPassword,
	}
}

// Run executes a single command. args are the words after the command name.
func (a *App) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "create":
		return a.create(ctx, args)
	case "flush-cache":
		if err := a.cache.Flush(ctx); err != nil {
			return fmt.Errorf("flush cache: %w", err)
		}
		fmt.Fprintln(a.out, "Cache flushed")
		return nil
	case "ping":
		return a.ping(ctx)
	}
	return ErrUsage
}

func (a *App) create(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	username := fs.String("u", "", "username")
	email := fs.String("e", "", "email")
	if err := fs.Parse(flagx.FilterArgs(args, []string{"-u", "-e"})); err != nil {
		return err
	}
	if *username == "" || *email == "" {
		return fmt.Errorf("%w: create needs -u <username> and -e <email>", ErrUsage)
	}

	password, err := a.getPassword(a.out, a.in)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	user, err := a.auth.SignUp(ctx, services.SignUpInput{UserName: *username, Email: *email, Password: password})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Created user %d (%s)\n", user.ID, user.UserName)
	return nil
}

func (a *App) ping(ctx context.Context) error {
	names := make([]string, 0, len(a.checks))
	for name := range a.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		if err := a.checks[name].Ping(ctx); err != nil {
			fmt.Fprintf(a.out, "%s: FAIL (%v)\n", name, err)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		fmt.Fprintf(a.out, "%s: OK\n", name)
	}
	return errors.Join(errs...)
}
