// Package cli implements the operator command line: bootstrapping accounts
// (including the first administrator), hashing passwords offline and
// generating signing secrets.
package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/andreacfromtheapp/random-word-api-sub000/internal/common"
	"github.com/andreacfromtheapp/random-word-api-sub000/internal/cryptox"
	"github.com/andreacfromtheapp/random-word-api-sub000/internal/flagx"
	"github.com/andreacfromtheapp/random-word-api-sub000/internal/logging"
	"github.com/andreacfromtheapp/random-word-api-sub000/internal/server/config"
	"github.com/andreacfromtheapp/random-word-api-sub000/internal/server/repositories/repomanager"
	"github.com/andreacfromtheapp/random-word-api-sub000/internal/server/services"
)

const usage = `usage: cli <command> [flags]

commands:
  create-user [-u name] [-admin]   create an account; prompts for the password
  hash-password                    print the Argon2id hash of a password
  gen-secret [-n bytes]            print a random hex secret for JWT_SECRET

The server flags (-d, -c, ...) and environment select the database.
`

const defaultSecretBytes = 32

var ErrUsage = errors.New("invalid usage")

type App struct {
	config *config.Config
	logger logging.Logger
	hasher *cryptox.PasswordHasher
	in     *bufio.Reader
	out    io.Writer
}

func NewApp(cfg *config.Config, l logging.Logger, in io.Reader, out io.Writer) *App {
	return &App{
		config: cfg,
		logger: l.With("module", "cli"),
		hasher: cryptox.NewPasswordHasher(cryptox.DefaultParams, cfg.HashConcurrency),
		in:     bufio.NewReader(in),
		out:    out,
	}
}

// Run executes the command named by args[0].
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return ErrUsage
	}

	cmd, rest := args[0], args[1:]

	switch cmd {
	case "create-user":
		return a.CreateUser(ctx, rest)
	case "hash-password":
		return a.HashPassword(ctx)
	case "gen-secret":
		return a.GenSecret(rest)
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return nil
	default:
		fmt.Fprint(a.out, usage)
		return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
	}
}

// commandFlags parses the flags of one command; server flags mixed into args
// are skipped.
func commandFlags(name string, args []string, define func(fs *flag.FlagSet)) error {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	define(fs)

	var allowed []string
	fs.VisitAll(func(f *flag.Flag) { allowed = append(allowed, "-"+f.Name, "--"+f.Name) })

	if err := fs.Parse(flagx.FilterArgs(args, allowed)); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return nil
}

// readNewPassword prompts twice and returns the password once both entries
// match.
func (a *App) readNewPassword() ([]byte, error) {
	pw, err := GetPassword(a.in, "Enter password: ", a.out)
	if err != nil {
		return nil, err
	}
	confirm, err := GetPassword(a.in, "Repeat password: ", a.out)
	if err != nil {
		common.WipeByteArray(pw)
		return nil, err
	}
	defer common.WipeByteArray(confirm)

	if !bytes.Equal(pw, confirm) {
		common.WipeByteArray(pw)
		return nil, errors.New("passwords do not match")
	}
	return pw, nil
}

func (a *App) CreateUser(ctx context.Context, args []string) error {
	var (
		username string
		isAdmin  bool
	)
	err := commandFlags("create-user", args, func(fs *flag.FlagSet) {
		fs.StringVar(&username, "u", "", "username")
		fs.BoolVar(&isAdmin, "admin", false, "grant administrator role")
	})
	if err != nil {
		return err
	}

	if username == "" {
		username, err = GetSimpleText(a.in, "Username", a.out)
		if err != nil {
			return err
		}
	}

	pw, err := a.readNewPassword()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	db, rm, err := repomanager.Open(ctx, a.config.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}

	settings, err := config.NewSettingsStore(a.config.Settings())
	if err != nil {
		return err
	}

	svc := services.NewAuthService(db, rm, a.hasher, settings, a.logger)
	u, err := svc.CreateUser(ctx, username, string(pw), isAdmin)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "created user %s (id=%s, admin=%t)\n", u.UserName, u.ID, u.IsAdmin)
	return nil
}

func (a *App) HashPassword(ctx context.Context) error {
	pw, err := a.readNewPassword()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	encoded, err := a.hasher.Hash(ctx, string(pw))
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, encoded)
	return nil
}

func (a *App) GenSecret(args []string) error {
	var size int
	err := commandFlags("gen-secret", args, func(fs *flag.FlagSet) {
		fs.IntVar(&size, "n", defaultSecretBytes, "secret size in bytes")
	})
	if err != nil {
		return err
	}
	if size < 16 {
		return fmt.Errorf("%w: secret must be at least 16 bytes, got %d", ErrUsage, size)
	}

	s, err := common.MakeRandHexString(size)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, s)
	return nil
}
