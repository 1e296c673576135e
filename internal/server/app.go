// Package server assembles the application: configuration, database and
// migrations, master key and cipher, blob store, services and the HTTP
// server, with graceful shutdown on OS signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/mini-page/Secura/internal/cryptox"
	"github.com/mini-page/Secura/internal/logging"
	"github.com/mini-page/Secura/internal/server/config"
	"github.com/mini-page/Secura/internal/server/httpapi"
	"github.com/mini-page/Secura/internal/server/repositories/repomanager"
	"github.com/mini-page/Secura/internal/server/services"
	"github.com/mini-page/Secura/internal/server/storage"
)

type App struct {
	config       *config.Config
	logger       logging.Logger
	db           *sql.DB
	userService  *services.UserService
	vaultService *services.VaultService
	auditService *services.AuditService
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	keys := cryptox.NewMasterKeyProvider(cfg.MasterKeyBase64, cfg.MasterKeyFile)
	masterKey, err := keys.Key()
	if err != nil {
		return nil, fmt.Errorf("master key error: %w", err)
	}
	cipher, err := cryptox.NewCipher(masterKey)
	if err != nil {
		return nil, fmt.Errorf("cipher init error: %w", err)
	}

	blobs, err := storage.NewBlobStore(storage.Config{
		Backend:        storage.Backend(cfg.StorageBackend),
		LocalPath:      cfg.StorageLocalPath,
		S3Bucket:       cfg.S3Bucket,
		S3Region:       cfg.S3Region,
		S3AccessKey:    cfg.S3AccessKey,
		S3SecretKey:    cfg.S3SecretKey,
		S3BaseEndpoint: cfg.S3BaseEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("blob store init error: %w", err)
	}

	as := services.NewAuditService(db, rm, logger)
	us := services.NewUserService(db, rm, as, logger, cfg)
	vs := services.NewVaultService(db, rm, cipher, blobs, as, logger, cfg.MaxUploadBytes)

	return &App{
		config:       cfg,
		logger:       logger,
		db:           db,
		userService:  us,
		vaultService: vs,
		auditService: as,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config.EndpointAddr, app.logger,
		app.userService, app.vaultService, app.auditService,
		app.config.JWTSecret, app.config.MaxUploadBytes)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
