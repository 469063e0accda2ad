package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/specialistvlad/wfplan/internal/allocator"
	"github.com/specialistvlad/wfplan/internal/ctxlog"
	"github.com/specialistvlad/wfplan/internal/resources"
)

// runAllocator serves the allocation API until ctx is cancelled.
func (app *App) runAllocator(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	logger.Info("Starting resource allocation server.")

	entries, err := resources.Load(ctx, app.config.ResourcesPath)
	if err != nil {
		return err
	}
	reg, err := allocator.NewRegistry(entries)
	if err != nil {
		return fmt.Errorf("sanity check failed for %s: %w", app.config.ResourcesPath, err)
	}
	logger.Info("Resources loaded.", "count", len(entries), "resources", resources.Compress(resources.IDs(entries)))

	persister, err := allocator.OpenBoltPersister(app.config.StatePath, 0o600)
	if err != nil {
		return err
	}
	defer persister.Close()
	if err := persister.CheckClean(); err != nil {
		return fmt.Errorf("sanity check failed for %s: %w", app.config.StatePath, err)
	}
	logger.Info("Sanity check passed: no jobs allocated.")

	metrics := allocator.NewMetrics()
	srv := allocator.NewServer(ctx, reg, metrics)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		persister.Run(runCtx, reg, app.config.SaveInterval, metrics.SetPersisted)
	}()

	failed := app.startServer(ctx, app.config.ListenAddr, srv)

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown requested.")
	case serveErr = <-failed:
	}

	closeErr := app.closeServer(ctx)
	cancel()
	wg.Wait()

	st := reg.Status()
	logger.Info("Server stopped.", "total", st.Total, "used", st.Used, "available", st.Available)
	if serveErr != nil {
		return serveErr
	}
	return closeErr
}
