// Package server wires the claimdesk components together: database pool and
// migrations, object storage, e-mail, services, and the HTTP and gRPC
// servers, and runs them until a termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/claimdesk/internal/dbx"
	"github.com/dmitrijs2005/claimdesk/internal/logging"
	"github.com/dmitrijs2005/claimdesk/internal/server/config"
	"github.com/dmitrijs2005/claimdesk/internal/server/httpapi"
	"github.com/dmitrijs2005/claimdesk/internal/server/notify"
	"github.com/dmitrijs2005/claimdesk/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/claimdesk/internal/server/services"
	"github.com/dmitrijs2005/claimdesk/internal/server/storage"

	gs "github.com/dmitrijs2005/claimdesk/internal/server/grpc"
)

// Version is set at build time.
var Version = "dev"

type App struct {
	config          *config.Config
	logger          logging.Logger
	db              *sql.DB
	claimService    *services.ClaimService
	documentService *services.DocumentService
	analystService  *services.AnalystService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stdout, c.LogLevel)

	db, err := dbx.Open(ctx, c.DatabaseDSN, dbx.PoolOptions{MaxOpenConns: c.DBMaxOpenConns, MaxIdleConns: c.DBMaxIdleConns})
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	store, err := storage.NewS3Store(ctx, storage.Options{
		AccessKey:    c.S3RootUser,
		SecretKey:    c.S3RootPassword,
		Bucket:       c.S3Bucket,
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	notifier, err := notify.NewNotifier(notify.NewSender(c, logger), notify.Options{
		PortalBaseURL: c.PortalBaseURL,
		Team:          c.EmailFromName,
	}, logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("notifier init error: %w", err)
	}

	return &App{
		config:          c,
		logger:          logger,
		db:              db,
		claimService:    services.NewClaimService(db, rm, notifier, logger),
		documentService: services.NewDocumentService(db, rm, store, notifier, logger, c),
		analystService:  services.NewAnalystService(db, rm, c),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	e := httpapi.NewEcho(&httpapi.Dependencies{
		Claims:         app.claimService,
		Documents:      app.documentService,
		Analysts:       app.analystService,
		DB:             app.db,
		Logger:         app.logger,
		MaxUploadBytes: app.config.MaxUploadBytes,
		AllowOrigins:   []string{app.config.PortalBaseURL},
		Version:        Version,
	})

	if err := httpapi.NewServer(app.config.HTTPAddr, e, app.logger).Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewHealthServer(app.config.GRPCHealthAddr, app.logger, app.db)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until a signal arrives or one of the servers fails, then stops
// both and closes the database pool.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "version", Version)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
