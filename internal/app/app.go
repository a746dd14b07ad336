// Package app initializes and runs the main application service.
// It configures logging, storage, the session manager, authentication,
// and routing, and handles graceful shutdown.
package app

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dtechoracle/linkNest/internal/auth"
	"github.com/dtechoracle/linkNest/internal/config"
	"github.com/dtechoracle/linkNest/internal/db/memorystorage"
	"github.com/dtechoracle/linkNest/internal/db/postgresdb"
	"github.com/dtechoracle/linkNest/internal/db/sqlitedb"
	"github.com/dtechoracle/linkNest/internal/db/storage"
	"github.com/dtechoracle/linkNest/internal/ipchecker"
	"github.com/dtechoracle/linkNest/internal/links"
	"github.com/dtechoracle/linkNest/internal/logger"
	"github.com/dtechoracle/linkNest/internal/models"
	"github.com/dtechoracle/linkNest/internal/profile"
	"github.com/dtechoracle/linkNest/internal/router"
	"github.com/dtechoracle/linkNest/internal/session"
)

// App encapsulates the configuration, HTTP handler and storage backend
// needed to run the LinkNest service.
type App struct {
	cfg         *config.Config
	db          storage.Storage
	httpHandler http.Handler
}

// New initializes a new instance of App by:
// - loading configuration
// - initializing logger
// - selecting and setting up storage
// - constructing the session manager and binding the profile/link replicas
// - setting up the router and middleware
func New() (*App, error) {
	var err error
	app := &App{}

	app.cfg, err = config.New()
	if err != nil {
		return nil, err
	}

	err = logger.Init(app.cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	app.db, err = getStorageByType(app.cfg)
	if err != nil {
		return nil, err
	}

	authCookieSigningSecretKey, err := base64.URLEncoding.DecodeString(app.cfg.AuthCookieSigningSecretKey)
	if err != nil {
		return nil, err
	}

	sessions := session.New()

	profiles := profile.New(app.db)
	profiles.Bind(sessions)

	linkCollection := links.New(app.db)
	linkCollection.Bind(sessions)

	ipChecker, err := ipchecker.New(app.cfg.TrustedSubnet)
	if err != nil {
		return nil, err
	}

	app.httpHandler = router.New(
		app.db,
		profiles,
		linkCollection,
		sessions,
		auth.New(
			app.db,
			app.cfg.AuthCookieName,
			authCookieSigningSecretKey,
		),
		ipChecker,
		app.cfg.PublicBaseURL,
	)

	return app, nil
}

// Run starts the HTTP server with graceful shutdown support.
// It listens for system signals and cleans up resources upon termination.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Log.Infoln("server running", "RunAddr", a.cfg.RunAddr)

	server := &http.Server{
		Addr:    a.cfg.RunAddr,
		Handler: a.httpHandler,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Log.Infoln("Received shutdown signal. Closing storage and exiting...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		return a.db.Close()

	case err := <-serverErrCh:
		return fmt.Errorf("server error: %w", err)
	}
}

// Close finalizes resources used by App such as logging.
func (a *App) Close() {
	if err := logger.Sync(); err != nil {
		fmt.Println("Logger sync error:", err)
	}
}

func getAvailableStorageType(cfg *config.Config) int {
	if cfg.DatabaseDSN != "" {
		return models.StorageTypePostgresql
	}

	if cfg.SQLiteFile != "" {
		return models.StorageTypeSqlite
	}

	return models.StorageTypeMemory
}

func getStorageByType(cfg *config.Config) (storage.Storage, error) {
	switch getAvailableStorageType(cfg) {
	case models.StorageTypeUnknown:
		return nil, errors.New("unknown storage type")

	case models.StorageTypePostgresql:
		return postgresdb.New(
			context.Background(),
			cfg.DatabaseDSN,
			cfg.DBConnectionTimeout,
			filepath.Join(cfg.MigrationsDir, "postgres"),
		)

	case models.StorageTypeSqlite:
		return sqlitedb.New(cfg.SQLiteFile, filepath.Join(cfg.MigrationsDir, "sqlite"))
	}

	return memorystorage.New()
}
