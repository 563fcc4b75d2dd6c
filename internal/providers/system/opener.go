package system

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/Datash/backend/internal/infrastructure/resilience"
)

// ErrNoOpener is returned when the platform has no known open command
var ErrNoOpener = errors.New("no file opener for platform")

// ExecOpener opens URLs and files with the platform's default handler
type ExecOpener struct {
	command func(ctx context.Context, target string) (*exec.Cmd, error)
	logger  *zap.Logger
}

// NewExecOpener creates an opener for the running platform
func NewExecOpener(logger *zap.Logger) *ExecOpener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExecOpener{command: platformCommand(runtime.GOOS), logger: logger}
}

// Open starts the handler and does not wait for it to exit
func (o *ExecOpener) Open(ctx context.Context, target string) error {
	cmd, err := o.command(ctx, target)
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", cmd.Path, err)
	}

	o.logger.Debug("Opener started", zap.String("command", cmd.Path), zap.String("target", target))
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}

func platformCommand(goos string) func(ctx context.Context, target string) (*exec.Cmd, error) {
	return func(ctx context.Context, target string) (*exec.Cmd, error) {
		// the handler outlives the request that triggered it
		ctx = context.WithoutCancel(ctx)

		switch goos {
		case "darwin":
			return exec.CommandContext(ctx, "open", target), nil
		case "windows":
			return exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", target), nil
		case "linux", "freebsd", "openbsd", "netbsd":
			return exec.CommandContext(ctx, "xdg-open", target), nil
		default:
			return nil, fmt.Errorf("%w: %s", ErrNoOpener, goos)
		}
	}
}

// LogOpener only records what would be opened. Used for headless hosts.
type LogOpener struct {
	logger *zap.Logger
}

// NewLogOpener creates a log-only opener
func NewLogOpener(logger *zap.Logger) *LogOpener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogOpener{logger: logger}
}

// Open logs target
func (o *LogOpener) Open(ctx context.Context, target string) error {
	o.logger.Info("Open requested", zap.String("target", target))
	return nil
}

// Opener is anything that can hand a target to a viewer
type Opener interface {
	Open(ctx context.Context, target string) error
}

// GuardedOpener stops invoking a repeatedly failing opener for a while
type GuardedOpener struct {
	inner   Opener
	breaker *resilience.Breaker
}

// NewGuardedOpener wraps inner with breaker
func NewGuardedOpener(inner Opener, breaker *resilience.Breaker) *GuardedOpener {
	return &GuardedOpener{inner: inner, breaker: breaker}
}

// Open calls the wrapped opener unless the breaker is open
func (o *GuardedOpener) Open(ctx context.Context, target string) error {
	return o.breaker.Do(ctx, func(ctx context.Context) error {
		return o.inner.Open(ctx, target)
	})
}
