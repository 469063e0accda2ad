package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/specialistvlad/wfplan/internal/ctxlog"
)

// startServer runs handler on addr in the background.
func (app *App) startServer(ctx context.Context, addr string, handler http.Handler) <-chan error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Configuring HTTP server.", "address", addr)

	app.httpServer = &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	failed := make(chan error, 1)
	go func() {
		logger.Info("🩺 Allocation server starting", "address", addr)
		// ListenAndServe returns ErrServerClosed on graceful shutdown.
		if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Allocation server failed unexpectedly", "error", err)
			failed <- err
		}
		close(failed)
	}()
	return failed
}

func (app *App) closeServer(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Closing HTTP server...")

	if app.httpServer == nil {
		logger.Debug("HTTP server was not running.")
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	logger.Info("🩺 Shutting down allocation server...")
	if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Allocation server shutdown failed", "error", err)
		return err
	}

	logger.Debug("HTTP server shut down gracefully.")
	return nil
}
