// Package ops implements claimsctl, the operator tool: schema migrations,
// database checks, analyst accounts and an e-mail smoke test.
package ops

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dmitrijs2005/claimdesk/internal/common"
	"github.com/dmitrijs2005/claimdesk/internal/dbx"
	"github.com/dmitrijs2005/claimdesk/internal/flagx"
	"github.com/dmitrijs2005/claimdesk/internal/logging"
	"github.com/dmitrijs2005/claimdesk/internal/server/config"
	"github.com/dmitrijs2005/claimdesk/internal/server/notify"
	"github.com/dmitrijs2005/claimdesk/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/claimdesk/internal/server/services"
)

var ErrUnknownCommand = errors.New("unknown command")

type command struct {
	usage string
	run   func(a *App, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"migrate":     {"apply pending database migrations", (*App).migrate},
	"dbcheck":     {"ping the database and print schema version and row counts", (*App).dbcheck},
	"analyst-add": {"create an analyst account: analyst-add -email <address>", (*App).analystAdd},
	"mailtest":    {"send a test e-mail: mailtest -to <address>", (*App).mailtest},
}

// App holds what the commands share. The function fields are seams for
// tests.
type App struct {
	config      *config.Config
	logger      logging.Logger
	out         io.Writer
	in          *bufio.Reader
	repomanager repomanager.RepositoryManager

	openDB    func(ctx context.Context, dsn string, opts dbx.PoolOptions) (*sql.DB, error)
	newSender func(cfg *config.Config, logger logging.Logger) notify.Sender
}

func NewApp(c *config.Config, logger logging.Logger, in io.Reader, out io.Writer) *App {
	return &App{
		config:      c,
		logger:      logger,
		out:         out,
		in:          bufio.NewReader(in),
		repomanager: repomanager.NewPostgresRepositoryManager(),
		openDB:      dbx.Open,
		newSender:   notify.NewSender,
	}
}

// Run executes the named command. An empty name or "help" prints usage.
func (a *App) Run(ctx context.Context, name string, args []string) error {
	if name == "" || name == "help" {
		a.usage()
		return nil
	}
	cmd, ok := commands[name]
	if !ok {
		a.usage()
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	return cmd.run(a, ctx, args)
}

func (a *App) usage() {
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)

	fmt.Fprintln(a.out, "usage: claimsctl <command> [flags]")
	for _, n := range names {
		fmt.Fprintf(a.out, "  %-12s %s\n", n, commands[n].usage)
	}
}

func (a *App) db(ctx context.Context) (*sql.DB, error) {
	db, err := a.openDB(ctx, a.config.DatabaseDSN, dbx.PoolOptions{MaxOpenConns: 2, MaxIdleConns: 1})
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	return db, nil
}

// commandFlags parses only the named flags out of args; the rest belong to
// the config flag set.
func commandFlags(name string, args []string, define func(fs *flag.FlagSet)) error {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	define(fs)

	var allowed []string
	fs.VisitAll(func(f *flag.Flag) { allowed = append(allowed, "-"+f.Name) })
	return fs.Parse(flagx.FilterArgs(args, allowed))
}

func (a *App) migrate(ctx context.Context, _ []string) error {
	db, err := a.db(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := a.repomanager.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}
	fmt.Fprintln(a.out, "migrations applied")
	return nil
}

var checkedTables = []string{"claim_forms", "documents", "claim_status_updates", "analysts"}

func (a *App) dbcheck(ctx context.Context, _ []string) error {
	db, err := a.db(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	var version string
	if err := db.QueryRowContext(ctx, `SELECT version()`).Scan(&version); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	fmt.Fprintf(a.out, "server: %s\n", version)

	schema, err := a.repomanager.SchemaVersion(ctx, db)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "schema: %d\n", schema)

	for _, table := range checkedTables {
		var n int64
		if err := db.QueryRowContext(ctx, `SELECT count(*) FROM `+table).Scan(&n); err != nil {
			return fmt.Errorf("count %s: %w", table, err)
		}
		fmt.Fprintf(a.out, "%-22s %d\n", table, n)
	}
	return nil
}

func (a *App) analystAdd(ctx context.Context, args []string) error {
	var email string
	if err := commandFlags("analyst-add", args, func(fs *flag.FlagSet) {
		fs.StringVar(&email, "email", "", "analyst e-mail")
	}); err != nil {
		return err
	}

	if strings.TrimSpace(email) == "" {
		var err error
		if email, err = GetSimpleText(a.in, "Analyst e-mail", a.out); err != nil {
			return err
		}
	}

	pw, err := GetPassword(a.out, "Password: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)
	confirm, err := GetPassword(a.out, "Repeat password: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)
	if !bytes.Equal(pw, confirm) {
		return errors.New("passwords do not match")
	}

	db, err := a.db(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	analyst, err := services.NewAnalystService(db, a.repomanager, a.config).Create(ctx, email, string(pw))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "analyst %s created (id %d)\n", analyst.Email, analyst.ID)
	return nil
}

func (a *App) mailtest(ctx context.Context, args []string) error {
	var to string
	if err := commandFlags("mailtest", args, func(fs *flag.FlagSet) {
		fs.StringVar(&to, "to", "", "recipient address")
	}); err != nil {
		return err
	}
	if !strings.Contains(to, "@") {
		return errors.New("mailtest: -to <address> is required")
	}

	n, err := notify.NewNotifier(a.newSender(a.config, a.logger), notify.Options{
		PortalBaseURL: a.config.PortalBaseURL,
		Team:          a.config.EmailFromName,
	}, a.logger)
	if err != nil {
		return err
	}

	if _, err := n.Test(ctx, to); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "test e-mail sent to %s via %s\n", to, a.config.EmailDriver)
	return nil
}
