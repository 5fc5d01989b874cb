package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/xlaunch/internal/ctxlog"
	"github.com/specialistvlad/xlaunch/internal/emit"
)

// Run reduces every launch descriptor, writes the derived files, and then
// starts (or, in dry-run mode, prints) the launcher invocation.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "documents", a.config.Documents, "bindings", len(a.config.Bindings))

	plan, err := a.emitter.Run(ctx, a.config.Documents)
	if err != nil {
		return fmt.Errorf("preprocessing failed: %w", err)
	}

	changed := 0
	for _, r := range plan.Results {
		if r.Changed {
			changed++
		}
	}
	a.logger.Info("Launch descriptors ready.", "total", len(plan.Results), "derived", changed)

	argv := emit.Args(a.config.Launch, plan.Files())
	if err := a.runner.Run(ctx, argv); err != nil {
		return err
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}
