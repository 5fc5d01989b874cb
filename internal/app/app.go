package app

import (
	"io"
	"log/slog"
	"os"

	"github.com/specialistvlad/xlaunch/internal/emit"
	"github.com/specialistvlad/xlaunch/internal/launcher"
	"github.com/specialistvlad/xlaunch/internal/macro"
)

// App encapsulates the preprocessor's dependencies and configuration.
type App struct {
	logger  *slog.Logger
	config  *Config
	emitter *emit.Emitter
	runner  *launcher.Runner
}

// NewApp builds an App. outW receives the dry-run vector and the launcher's
// stdout; logW receives the logs.
func NewApp(outW, logW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	emitter := emit.New(cfg.Bindings, emit.Options{
		DerivedSuffix: cfg.DerivedSuffix,
		Macro:         macro.Options{LookupEnv: cfg.LookupEnv},
	})

	return &App{
		logger:  logger,
		config:  cfg,
		emitter: emitter,
		runner: &launcher.Runner{
			DryRun: cfg.DryRun,
			Stdin:  os.Stdin,
			Stdout: outW,
			Stderr: logW,
		},
	}
}
