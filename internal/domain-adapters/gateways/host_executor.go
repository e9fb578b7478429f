package gateways

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/plugpack/plugpack/internal/domain/entities"
	"github.com/plugpack/plugpack/internal/domain/interfaces"
)

const (
	defaultCustomizeBin = "calibre-customize"
	defaultDebugBin     = "calibre-debug"
)

// HostExecutor runs the host application's plugin tooling for the dev
// workflow: reinstall the plugin from the working tree, then relaunch the
// host in debug/GUI mode.
type HostExecutor struct {
	defaultTimeout time.Duration
	logger         interfaces.Logger
}

// NewHostExecutor creates a new host executor
func NewHostExecutor(logger interfaces.Logger) *HostExecutor {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &HostExecutor{
		defaultTimeout: 10 * time.Minute,
		logger:         logger,
	}
}

// ExecResult contains the result of a host command execution
type ExecResult struct {
	Success  bool
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
	Error    error
}

// Run executes a host binary with args in workDir
func (e *HostExecutor) Run(ctx context.Context, bin string, args []string, workDir string, timeout time.Duration) *ExecResult {
	startTime := time.Now()
	result := &ExecResult{}

	if timeout == 0 {
		timeout = e.defaultTimeout
	}

	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	//nolint:gosec // G204: The binary and args come from the manifest's dev configuration
	cmd := exec.CommandContext(execCtx, bin, args...)
	if workDir != "" {
		cmd.Dir = workDir
	}
	cmd.Env = os.Environ()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	e.logger.Debug("running host command",
		interfaces.F("bin", bin),
		interfaces.F("args", args))

	err := cmd.Run()
	result.Duration = time.Since(startTime)
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	if err != nil {
		result.Error = err
		var exitErr *exec.ExitError
		switch {
		case errors.As(err, &exitErr):
			result.ExitCode = exitErr.ExitCode()
		case execCtx.Err() == context.DeadlineExceeded:
			result.Error = fmt.Errorf("command timeout after %v", timeout)
			result.ExitCode = -1
		default:
			result.ExitCode = -1
		}
		return result
	}

	result.Success = true
	result.ExitCode = 0
	return result
}

// InstallPlugin installs the plugin from dir into the local host
// installation (calibre-customize -b <dir>)
func (e *HostExecutor) InstallPlugin(ctx context.Context, dev entities.DevConfig, dir string) error {
	bin := dev.CustomizeBin
	if bin == "" {
		bin = defaultCustomizeBin
	}

	result := e.Run(ctx, bin, []string{"-b", dir}, dir, e.devTimeout(dev))
	if !result.Success {
		return fmt.Errorf("plugin install failed (exit %d): %w\nStderr: %s",
			result.ExitCode, result.Error, result.Stderr)
	}

	if result.Stdout != "" {
		fmt.Fprintf(os.Stderr, "Install output: %s\n", result.Stdout)
	}

	return nil
}

// LaunchDebugGUI relaunches the host in debug/GUI mode (calibre-debug -g).
// The call blocks until the host exits or the dev timeout elapses.
func (e *HostExecutor) LaunchDebugGUI(ctx context.Context, dev entities.DevConfig, dir string) error {
	bin := dev.DebugBin
	if bin == "" {
		bin = defaultDebugBin
	}

	args := append([]string{"-g"}, dev.ExtraArgs...)

	result := e.Run(ctx, bin, args, dir, e.devTimeout(dev))
	if !result.Success {
		return fmt.Errorf("debug launch failed (exit %d): %w\nStderr: %s",
			result.ExitCode, result.Error, result.Stderr)
	}

	return nil
}

func (e *HostExecutor) devTimeout(dev entities.DevConfig) time.Duration {
	if dev.TimeoutMinutes > 0 {
		return time.Duration(dev.TimeoutMinutes) * time.Minute
	}
	return e.defaultTimeout
}
