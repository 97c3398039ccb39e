// Package server wires the application together: it loads configuration,
// opens the storage backend, runs migrations and serves the HTTP API until
// the process is told to stop.
package server

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/secureledger/vault/internal/cryptox"
	"github.com/secureledger/vault/internal/logging"
	"github.com/secureledger/vault/internal/server/config"
	"github.com/secureledger/vault/internal/server/httpapi"
	"github.com/secureledger/vault/internal/server/repositories/repomanager"
	"github.com/secureledger/vault/internal/server/services"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	manager repomanager.RepositoryManager
	vault   *services.VaultService
}

func NewApp(cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	cipher, err := loadCipher(cfg)
	if err != nil {
		return nil, err
	}

	driver, manager := selectBackend(cfg.DatabaseDSN)

	var db *sql.DB
	if driver == "pgx" {
		db, err = sql.Open(driver, cfg.DatabaseDSN)
	} else {
		db, err = repomanager.OpenSQLite(cfg.DatabaseDSN)
	}
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	tokens := services.NewTokenService(db, manager, cfg)
	vault := services.NewVaultService(db, manager, cipher, tokens)

	return &App{config: cfg, logger: logger, db: db, manager: manager, vault: vault}, nil
}

// loadCipher turns the configured hex key into a ready AEAD cipher. The raw
// key bytes are zeroed once the cipher holds its own key schedule.
func loadCipher(cfg *config.Config) (*cryptox.Cipher, error) {
	if cfg.MasterKeyHex == "" {
		return nil, errors.New("master key is not configured")
	}

	key, err := hex.DecodeString(cfg.MasterKeyHex)
	if err != nil {
		return nil, errors.New("master key is not valid hex")
	}

	cipher, err := cryptox.NewCipher(key)
	if err != nil {
		return nil, err
	}

	for i := range key {
		key[i] = 0
	}
	return cipher, nil
}

func selectBackend(dsn string) (string, repomanager.RepositoryManager) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "pgx", repomanager.NewPostgresRepositoryManager()
	}
	return "sqlite", repomanager.NewSQLiteRepositoryManager()
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

func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	if err := app.manager.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	api := httpapi.NewServer(app.vault, app.logger)
	srv := &http.Server{
		Addr:    app.config.EndpointAddr,
		Handler: api.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "HTTP server listening", "addr", app.config.EndpointAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(ctx, "shutdown error", "error", err.Error())
	}

	return app.db.Close()
}
