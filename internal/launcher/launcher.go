// Package launcher starts the external launcher executable with the
// assembled argument vector, or prints the vector in dry-run mode.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/specialistvlad/xlaunch/internal/ctxlog"
)

// Default executables of the external launcher.
const (
	DefaultExecutable    = "coco_launcher"
	DefaultROSExecutable = "ros_coco_launcher"
)

// stopGrace is how long a cancelled launcher gets to exit after SIGINT
// before it is killed.
const stopGrace = 5 * time.Second

// ExitError reports a launcher that ran and exited non-zero.
type ExitError struct {
	Executable string
	Code       int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Executable, e.Code)
}

// ExitCode is the launcher's exit status, propagated as the driver's own.
func (e *ExitError) ExitCode() int {
	return e.Code
}

// Runner runs or prints launcher invocations.
type Runner struct {
	DryRun bool
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Format renders argv on one line with every element quoted.
func Format(argv []string) string {
	return fmt.Sprintf("%q", argv)
}

// Run executes argv, or prints it when DryRun is set.
func (r *Runner) Run(ctx context.Context, argv []string) error {
	logger := ctxlog.FromContext(ctx)
	if len(argv) == 0 || argv[0] == "" {
		return errors.New("launcher executable is not set")
	}

	if r.DryRun {
		logger.Debug("Dry run, printing launcher invocation.", "argv", argv)
		_, err := fmt.Fprintln(r.Stdout, Format(argv))
		return err
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = stopGrace

	logger.Info("Starting launcher.", "executable", argv[0], "args", argv[1:])
	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		logger.Warn("Launcher exited with failure.", "executable", argv[0], "code", exitErr.ExitCode())
		return &ExitError{Executable: argv[0], Code: exitErr.ExitCode()}
	}
	if err != nil {
		return fmt.Errorf("failed to run %s: %w", argv[0], err)
	}
	logger.Info("Launcher finished.", "executable", argv[0])
	return nil
}
