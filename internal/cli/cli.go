package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"

	"github.com/specialistvlad/xlaunch/internal/app"
	"github.com/specialistvlad/xlaunch/internal/argstore"
	"github.com/specialistvlad/xlaunch/internal/config"
	"github.com/specialistvlad/xlaunch/internal/emit"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// ExitCode returns the process exit code for this error.
func (e *ExitError) ExitCode() int {
	return e.Code
}

func usageError(format string, args ...any) *ExitError {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := pflag.NewFlagSet("xlaunch", pflag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.SortFlags = false

	flagSet.Usage = func() {
		fmt.Fprint(output, `
xlaunch - resolves launch descriptors and starts the CoCo launcher.

Usage:
  xlaunch [options] -x FILE [-x FILE...] [name:=value...]

Arguments:
  name:=value
    Binds launch argument "name"; $(arg name) resolves to value. Command-line
    bindings take precedence over <arg> declarations in the descriptors.

Options:
`)
		flagSet.PrintDefaults()
	}

	files := flagSet.StringArrayP("config-file", "x", nil, "Xml file with the configurations of the application (repeatable).")
	disabled := flagSet.StringArrayP("disabled", "d", nil, "Component disabled in the execution (repeatable).")
	profiling := flagSet.IntP("profiling", "p", 0, "Enable the collection of statistics of the executions.")
	graph := flagSet.StringP("graph", "g", "", "Create the graph of the components and of their connections.")
	xmlTemplate := flagSet.StringP("xml_template", "t", "", "Print the xml template for all the components contained in the library.")
	webServer := flagSet.IntP("web_server", "w", 0, "Port of the statistics web server. Not forwarded unless set here or in the driver config.")
	webRoot := flagSet.StringP("web_root", "r", "", "Document root for the web server.")
	latency := flagSet.StringP("latency", "l", "", "The two tasks between which to measure latency.")
	ros := flagSet.Bool("ros", false, "Start the ROS launcher instead of the plain one.")
	var dryRun bool
	flagSet.BoolVarP(&dryRun, "none", "n", false, "Print the launcher invocation instead of running it.")
	flagSet.BoolVar(&dryRun, "dry-run", false, "Same as --none.")
	driverConfig := flagSet.String("driver-config", "", "YAML file with driver defaults (default $"+config.EnvVar+").")
	logFormatFlag := flagSet.String("log-format", "", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, usageError("%s", err.Error())
	}
	slog.Debug("Arguments parsed successfully.")

	if len(*files) == 0 {
		slog.Debug("No launch descriptor provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	bindings, err := argstore.ParseBindings(flagSet.Args())
	if err != nil {
		return nil, false, usageError("%s", err.Error())
	}

	fileCfg, err := config.Load(*driverConfig)
	if err != nil {
		return nil, false, usageError("%s", err.Error())
	}
	slog.Debug("Driver config loaded.", "config", fileCfg)

	launch := emit.LaunchOptions{
		Executable: fileCfg.Launcher,
		Disabled:   *disabled,
		WebServer:  fileCfg.WebServer,
	}
	if *ros {
		launch.Executable = fileCfg.ROSLauncher
	}
	if flagSet.Changed("profiling") {
		launch.Profiling = profiling
	}
	if flagSet.Changed("graph") {
		launch.Graph = graph
	}
	if flagSet.Changed("xml_template") {
		launch.XMLTemplate = xmlTemplate
	}
	if flagSet.Changed("web_server") {
		launch.WebServer = webServer
	}
	if flagSet.Changed("web_root") {
		launch.WebRoot = webRoot
	}
	if flagSet.Changed("latency") {
		launch.Latency = latency
	}

	logFormat := fileCfg.LogFormat
	if *logFormatFlag != "" {
		logFormat = *logFormatFlag
	}
	logLevel := fileCfg.LogLevel
	if *logLevelFlag != "" {
		logLevel = *logLevelFlag
	}

	cfg, err := app.NewConfig(app.Config{
		Documents:     *files,
		Bindings:      bindings,
		Launch:        launch,
		DerivedSuffix: fileCfg.DerivedSuffix,
		DryRun:        dryRun,
		LogFormat:     strings.ToLower(logFormat),
		LogLevel:      strings.ToLower(logLevel),
	})
	if err != nil {
		return nil, false, usageError("%s", err.Error())
	}

	slog.Debug("CLI parser finished successfully.", "documents", cfg.Documents, "dry_run", cfg.DryRun)
	return cfg, false, nil
}
