// Package hooks runs user-configured commands before and after a run.
package hooks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// Lifecycle points.
const (
	BeforeRun = "before_run"
	AfterRun  = "after_run"
)

// HookConfig defines a single hook command.
type HookConfig struct {
	Command          string `yaml:"command"`
	WorkingDirectory string `yaml:"working_directory,omitempty"`
	ExitCodes        []int  `yaml:"exit_codes,omitempty"`
	ErrorOnFail      bool   `yaml:"error_on_fail,omitempty"`
}

// HooksConfig holds all lifecycle hooks.
type HooksConfig struct {
	BeforeRun []HookConfig `yaml:"before_run,omitempty"`
	AfterRun  []HookConfig `yaml:"after_run,omitempty"`
}

// Runner executes hook commands at lifecycle points.
type Runner struct {
	// Output receives the combined output of every hook. Nil discards it.
	Output io.Writer
	// Env is appended to the process environment of every hook.
	Env []string
}

// Execute runs all hooks for a given lifecycle point in order.
func (r *Runner) Execute(ctx context.Context, name string, hooks []HookConfig) error {
	for i, h := range hooks {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("hook %s: context canceled: %w", name, err)
		}

		if err := r.runHook(ctx, name, i, h); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) runHook(ctx context.Context, name string, index int, h HookConfig) error {
	if strings.TrimSpace(h.Command) == "" {
		return fmt.Errorf("hook %s[%d]: empty command", name, index)
	}

	parts := strings.Fields(h.Command)
	//nolint:gosec // hook commands come from the operator's own config file
	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)
	cmd.Env = append(os.Environ(), r.Env...)
	if h.WorkingDirectory != "" {
		cmd.Dir = h.WorkingDirectory
	}

	output, err := cmd.CombinedOutput()
	if r.Output != nil && len(output) > 0 {
		fmt.Fprintf(r.Output, "[hook:%s] %s", name, output) //nolint:errcheck
	}

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			// Non-exit error (e.g. command not found)
			if h.ErrorOnFail {
				return fmt.Errorf("hook %s[%d]: %w", name, index, err)
			}
			slog.Warn("Hook failed, continuing", "hook", name, "index", index, "error", err)
			return nil
		}
		exitCode = exitErr.ExitCode()
	}

	if isAcceptableExit(exitCode, h.ExitCodes) {
		slog.Debug("Hook completed", "hook", name, "index", index, "exit_code", exitCode)
		return nil
	}
	if h.ErrorOnFail {
		return fmt.Errorf("hook %s[%d]: command exited with code %d", name, index, exitCode)
	}
	slog.Warn("Hook exited with unexpected code, continuing", "hook", name, "index", index, "exit_code", exitCode)
	return nil
}

// isAcceptableExit checks whether exitCode is in the allowed list.
// An empty allowedCodes list defaults to allowing only exit code 0.
func isAcceptableExit(exitCode int, allowedCodes []int) bool {
	if len(allowedCodes) == 0 {
		return exitCode == 0
	}
	for _, code := range allowedCodes {
		if exitCode == code {
			return true
		}
	}
	return false
}
