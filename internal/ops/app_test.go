package ops

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/claimdesk/internal/common"
	"github.com/dmitrijs2005/claimdesk/internal/dbx"
	"github.com/dmitrijs2005/claimdesk/internal/logging"
	"github.com/dmitrijs2005/claimdesk/internal/server/config"
	"github.com/dmitrijs2005/claimdesk/internal/server/models"
	"github.com/dmitrijs2005/claimdesk/internal/server/notify"
	"github.com/dmitrijs2005/claimdesk/internal/server/repositories/analysts"
	"github.com/dmitrijs2005/claimdesk/internal/server/repositories/repomanager"
)

type fakeAnalystsRepo struct {
	created *models.Analyst
	err     error
}

func (f *fakeAnalystsRepo) Create(_ context.Context, a *models.Analyst) (*models.Analyst, error) {
	if f.err != nil {
		return nil, f.err
	}
	a.ID = 1
	f.created = a
	return a, nil
}

func (f *fakeAnalystsRepo) GetByEmail(context.Context, string) (*models.Analyst, error) {
	return nil, common.ErrorNotFound
}

// fakeRepoManager overrides only what the commands use.
type fakeRepoManager struct {
	repomanager.RepositoryManager
	migrated   bool
	migrateErr error
	analysts   *fakeAnalystsRepo
}

func (f *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error {
	f.migrated = true
	return f.migrateErr
}

func (f *fakeRepoManager) SchemaVersion(context.Context, *sql.DB) (int64, error) {
	return 4, nil
}

func (f *fakeRepoManager) Analysts(dbx.DBTX) analysts.Repository { return f.analysts }

type fakeSender struct {
	got []notify.Message
	err error
}

func (f *fakeSender) Send(_ context.Context, msg notify.Message) (bool, error) {
	f.got = append(f.got, msg)
	return f.err == nil, f.err
}

type fixture struct {
	app    *App
	out    *bytes.Buffer
	mock   sqlmock.Sqlmock
	rm     *fakeRepoManager
	sender *fakeSender
}

func newFixture(t *testing.T, input string) *fixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.EmailDriver = config.EmailDriverLog

	out := &bytes.Buffer{}
	f := &fixture{
		out:    out,
		mock:   mock,
		rm:     &fakeRepoManager{analysts: &fakeAnalystsRepo{}},
		sender: &fakeSender{},
	}
	f.app = NewApp(cfg, logging.Nop{}, strings.NewReader(input), out)
	f.app.repomanager = f.rm
	f.app.openDB = func(context.Context, string, dbx.PoolOptions) (*sql.DB, error) { return db, nil }
	f.app.newSender = func(*config.Config, logging.Logger) notify.Sender { return f.sender }
	return f
}

func stubPasswords(t *testing.T, answers ...string) {
	t.Helper()
	old := readPassword
	t.Cleanup(func() { readPassword = old })
	readPassword = func(int) ([]byte, error) {
		if len(answers) == 0 {
			return nil, errors.New("no more input")
		}
		pw := answers[0]
		answers = answers[1:]
		return []byte(pw), nil
	}
}

func TestRun_Usage(t *testing.T) {
	f := newFixture(t, "")

	require.NoError(t, f.app.Run(context.Background(), "", nil))
	for _, name := range []string{"analyst-add", "dbcheck", "mailtest", "migrate"} {
		assert.Contains(t, f.out.String(), name)
	}

	err := f.app.Run(context.Background(), "frobnicate", nil)
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestMigrate(t *testing.T) {
	f := newFixture(t, "")
	f.mock.ExpectClose()

	require.NoError(t, f.app.Run(context.Background(), "migrate", nil))
	assert.True(t, f.rm.migrated)
	assert.Contains(t, f.out.String(), "migrations applied")
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestMigrate_Error(t *testing.T) {
	f := newFixture(t, "")
	f.rm.migrateErr = errors.New("dirty database")

	err := f.app.Run(context.Background(), "migrate", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dirty database")
}

func TestMigrate_DBUnavailable(t *testing.T) {
	f := newFixture(t, "")
	f.app.openDB = func(context.Context, string, dbx.PoolOptions) (*sql.DB, error) {
		return nil, errors.New("connection refused")
	}

	err := f.app.Run(context.Background(), "migrate", nil)
	require.Error(t, err)
	assert.False(t, f.rm.migrated)
}

func TestDBCheck(t *testing.T) {
	f := newFixture(t, "")
	f.mock.ExpectQuery(`SELECT version\(\)`).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("PostgreSQL 16.2"))
	for i, table := range checkedTables {
		f.mock.ExpectQuery(`SELECT count\(\*\) FROM ` + table).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(i + 1))
	}
	f.mock.ExpectClose()

	require.NoError(t, f.app.Run(context.Background(), "dbcheck", nil))
	require.NoError(t, f.mock.ExpectationsWereMet())

	out := f.out.String()
	assert.Contains(t, out, "PostgreSQL 16.2")
	assert.Contains(t, out, "schema: 4")
	assert.Contains(t, out, "claim_forms")
	assert.Contains(t, out, "analysts")
}

func TestAnalystAdd(t *testing.T) {
	f := newFixture(t, "")
	stubPasswords(t, "correct horse", "correct horse")
	f.mock.ExpectClose()

	err := f.app.Run(context.Background(), "analyst-add", []string{"-email", "Reviewer@Example.com", "-d", "postgres://ignored"})
	require.NoError(t, err)

	require.NotNil(t, f.rm.analysts.created)
	assert.Equal(t, "reviewer@example.com", f.rm.analysts.created.Email)
	assert.NotEmpty(t, f.rm.analysts.created.PasswordHash)
	assert.Contains(t, f.out.String(), "analyst reviewer@example.com created")
}

func TestAnalystAdd_PromptsForEmail(t *testing.T) {
	f := newFixture(t, "reviewer@example.com\n")
	stubPasswords(t, "correct horse", "correct horse")

	require.NoError(t, f.app.Run(context.Background(), "analyst-add", nil))
	assert.Equal(t, "reviewer@example.com", f.rm.analysts.created.Email)
}

func TestAnalystAdd_Failures(t *testing.T) {
	t.Run("passwords differ", func(t *testing.T) {
		f := newFixture(t, "")
		stubPasswords(t, "correct horse", "battery staple")

		err := f.app.Run(context.Background(), "analyst-add", []string{"-email", "a@example.com"})
		require.Error(t, err)
		assert.Nil(t, f.rm.analysts.created)
	})

	t.Run("short password", func(t *testing.T) {
		f := newFixture(t, "")
		stubPasswords(t, "short", "short")

		err := f.app.Run(context.Background(), "analyst-add", []string{"-email", "a@example.com"})
		assert.ErrorIs(t, err, common.ErrorValidation)
	})

	t.Run("already exists", func(t *testing.T) {
		f := newFixture(t, "")
		stubPasswords(t, "correct horse", "correct horse")
		f.rm.analysts.err = common.ErrorAlreadyExists

		err := f.app.Run(context.Background(), "analyst-add", []string{"-email", "a@example.com"})
		assert.ErrorIs(t, err, common.ErrorAlreadyExists)
	})

	t.Run("terminal error", func(t *testing.T) {
		f := newFixture(t, "")
		stubPasswords(t)

		err := f.app.Run(context.Background(), "analyst-add", []string{"-email", "a@example.com"})
		require.Error(t, err)
	})
}

func TestMailtest(t *testing.T) {
	f := newFixture(t, "")

	require.NoError(t, f.app.Run(context.Background(), "mailtest", []string{"-to", "ops@example.com"}))
	require.Len(t, f.sender.got, 1)
	assert.Equal(t, "ops@example.com", f.sender.got[0].To)
	assert.NotEmpty(t, f.sender.got[0].Subject)

	err := f.app.Run(context.Background(), "mailtest", nil)
	require.Error(t, err)

	f.sender.err = common.ErrorNotification
	err = f.app.Run(context.Background(), "mailtest", []string{"-to=ops@example.com"})
	assert.ErrorIs(t, err, common.ErrorNotification)
}

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(bufioReader("hello world\n"), "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)

	got, err = GetSimpleText(bufioReader("lastline"), "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "lastline", got)

	_, err = GetSimpleText(bufioReader(""), "Name?", &out)
	require.Error(t, err)
}
