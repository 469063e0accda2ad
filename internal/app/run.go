package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/wfplan/internal/ctxlog"
)

// Run executes the configured command. ctx cancellation stops long-running
// commands such as the allocator.
func (app *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, app.logger)
	app.logger.Debug("App.Run method started.", "command", app.config.Command)

	var err error
	switch app.config.Command {
	case CommandPlan:
		err = app.runPlan(ctx)
	case CommandEstimate:
		err = app.runEstimate(ctx)
	case CommandCalibrate:
		err = app.runCalibrate(ctx)
	case CommandAllocator:
		err = app.runAllocator(ctx)
	default:
		err = fmt.Errorf("unknown command %q", app.config.Command)
	}

	app.logger.Debug("App.Run method finished.", "error", err)
	return err
}
