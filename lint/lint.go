// Package lint runs arduino-lint against the library working tree.
package lint

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/cli/safeexec"
	"github.com/libship/libship/logging"
)

// Mode selects the library-manager compliance ruleset.
type Mode string

const (
	// ModeSubmit applies the rules for first submission to the library manager.
	ModeSubmit Mode = "submit"
	// ModeUpdate applies the rules for updating an already indexed library.
	ModeUpdate Mode = "update"
	// ModeOff skips linting entirely.
	ModeOff Mode = "off"

	binaryName = "arduino-lint"
)

// ParseMode validates a lint mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSubmit, ModeUpdate, ModeOff:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unsupported lint mode: %q", s)
}

// Failure carries the linter's captured output.
type Failure struct {
	Stdout string
	Stderr string
	Err    error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("code style validation failed: %s", f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Runner invokes arduino-lint as a blocking subprocess.
type Runner struct {
	Mode   Mode
	Path   string
	bin    string // overridden in tests
	logger *logging.Logger
}

// New returns a Runner for the library at path.
func New(mode Mode, path string, logger *logging.Logger) *Runner {
	return &Runner{Mode: mode, Path: path, logger: logger}
}

// Args returns the arduino-lint invocation arguments.
func (r *Runner) Args() []string {
	return []string{
		"--compliance", "specification",
		"--library-manager", string(r.Mode),
		"--project-type", "library",
		r.Path,
	}
}

// Run executes the linter. Mode off is a no-op. A non-zero exit becomes a
// Failure with the captured output; no retries.
func (r *Runner) Run(ctx context.Context) error {
	if r.Mode == ModeOff {
		r.logger.Info("Lint skipped", slog.String("mode", string(r.Mode)))
		return nil
	}

	bin := r.bin
	if bin == "" {
		var err error
		bin, err = safeexec.LookPath(binaryName)
		if err != nil {
			return fmt.Errorf("%s not found: %w", binaryName, err)
		}
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, r.Args()...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Debug("Running linter", slog.String("bin", bin), slog.Any("args", r.Args()))
	if err := cmd.Run(); err != nil {
		return &Failure{
			Stdout: stdout.String(),
			Stderr: stderr.String(),
			Err:    err,
		}
	}

	r.logger.Info("Code style validation passed", slog.String("mode", string(r.Mode)))
	if stdout.Len() > 0 {
		r.logger.Debug("Linter output", slog.String("stdout", stdout.String()))
	}
	return nil
}
