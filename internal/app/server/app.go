// Package server собирает и запускает HTTP-сервер PixelVault.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/exp/slog"

	"pixelvault/internal/app/server/api"
	"pixelvault/internal/app/server/config"
	"pixelvault/internal/domain/session"
	"pixelvault/internal/infrastructure/storage/postgres"
)

const readHeaderTimeout = 10 * time.Second

type App struct {
	cfg *config.Config
	log *slog.Logger
}

func NewApp(cfg *config.Config, log *slog.Logger) *App {
	return &App{cfg: cfg, log: log}
}

// Run работает до отмены ctx, затем мягко останавливает сервер.
func (a *App) Run(ctx context.Context) error {
	storage, err := postgres.New(ctx, a.cfg)
	if err != nil {
		return fmt.Errorf("storage init: %w", err)
	}
	defer storage.Close()

	srv := &http.Server{
		Addr:              a.cfg.Server.RunAddress,
		Handler:           api.NewFromStorage(storage, a.cfg, a.log),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	sweeper := session.NewSweeper(
		postgres.NewSessionRepository(storage.Pool(), a.log),
		a.cfg.Session.SweepInterval,
		a.log,
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sweeper.Run(ctx)
	}()

	serveErr := make(chan error, 1)
	go func() {
		a.log.Info("server started", "address", srv.Addr, "env", a.cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		cancel()
		wg.Wait()
		return fmt.Errorf("listen: %w", err)
	}

	a.log.Info("shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer stop()

	err = srv.Shutdown(shutdownCtx)
	wg.Wait()
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	a.log.Info("server stopped")
	return nil
}
