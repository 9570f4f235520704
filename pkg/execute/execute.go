// pkg/execute/execute.go

package execute

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	cerr "github.com/cockroachdb/errors"
	"github.com/netbootworks/ztpctl/pkg/telemetry"
	"github.com/netbootworks/ztpctl/pkg/ztp_err"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Options configures one command execution. Shell execution is deliberately
// not offered; callers pass argv directly.
type Options struct {
	Command string
	Args    []string
	Dir     string
	Env     []string // appended to os.Environ(); e.g. LD_LIBRARY_PATH for podman
	Timeout time.Duration
	Retries int
	Delay   time.Duration
	Capture bool
	DryRun  bool
}

const defaultTimeout = 3 * time.Minute

// Run executes a command with structured logging, bounded retries, and
// captured output.
func Run(ctx context.Context, opts Options) (string, error) {
	logger := otelzap.Ctx(ctx)
	cmdStr := opts.Command + " " + strings.Join(opts.Args, " ")

	if ctx == nil {
		ctx = context.Background()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	runCtx, span := telemetry.Start(runCtx, "execute.Run",
		attribute.String("command", opts.Command),
		attribute.String("args", strings.Join(opts.Args, " ")),
	)
	defer span.End()

	if opts.DryRun {
		logger.Info("Dry run, command not executed", zap.String("command", cmdStr))
		return "", nil
	}

	logger.Debug("Executing command", zap.String("command", cmdStr))

	attempts := opts.Retries
	if attempts < 1 {
		attempts = 1
	}

	var output string
	var err error
	for i := 1; i <= attempts; i++ {
		cmd := exec.CommandContext(runCtx, opts.Command, opts.Args...)
		if opts.Dir != "" {
			cmd.Dir = opts.Dir
		}
		if len(opts.Env) > 0 {
			cmd.Env = append(os.Environ(), opts.Env...)
		}

		var buf bytes.Buffer
		cmd.Stdout = &buf
		cmd.Stderr = &buf

		err = cmd.Run()
		output = buf.String()

		if err == nil {
			logger.Debug("Command succeeded", zap.String("command", cmdStr))
			break
		}

		span.RecordError(err)
		logger.Warn("Command failed",
			zap.Int("attempt", i),
			zap.String("command", cmdStr),
			zap.String("summary", ztp_err.ExtractSummary(output, 2)),
			zap.Error(err),
		)

		if i < attempts {
			time.Sleep(opts.Delay)
		}
	}

	if err != nil {
		return output, cerr.Wrapf(err, "command %q failed after %d attempt(s)", cmdStr, attempts)
	}

	if opts.Capture {
		return output, nil
	}
	return "", nil
}

// RunSimple executes a command with defaults, discarding output.
func RunSimple(ctx context.Context, cmd string, args ...string) error {
	_, err := Run(ctx, Options{Command: cmd, Args: args})
	return err
}

// Capture executes a command and returns its combined output.
func Capture(ctx context.Context, cmd string, args ...string) (string, error) {
	return Run(ctx, Options{Command: cmd, Args: args, Capture: true})
}
