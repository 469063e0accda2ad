package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/wfplan/internal/config"
	"github.com/specialistvlad/wfplan/internal/ctxlog"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	ctx        context.Context
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	model      *config.Model
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It configures an
// isolated logger writing to logW and loads the planning configuration.
// Command output goes to outW.
func NewApp(ctx context.Context, outW, logW io.Writer, cfg *Config, loader config.Loader) (*App, error) {
	logger, err := newLogger(cfg, logW)
	if err != nil {
		return nil, err
	}
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Logger configured successfully.")

	model := config.NewModel()
	if len(cfg.ConfigPaths) > 0 {
		loaded, err := loader.Load(ctx, cfg.ConfigPaths...)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		model = loaded
		logger.Debug("Configuration loaded and translated into unified model.")
	} else {
		logger.Debug("No configuration files given, using built-in defaults.")
	}

	return &App{
		ctx:    ctx,
		outW:   outW,
		logger: logger,
		config: cfg,
		model:  model,
	}, nil
}

// Model returns the loaded configuration. This is primarily for testing.
func (app *App) Model() *config.Model {
	return app.model
}
