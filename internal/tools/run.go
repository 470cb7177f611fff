// Package tools provides the side-effecting collaborators the agent executes
// plans with: shell commands, file operations, and a background static file
// server.
package tools

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/joescharf/golem/internal/models"
)

// DefaultCommandTimeout bounds every shell command execution.
const DefaultCommandTimeout = 30 * time.Second

// Runner executes shell commands with a bounded timeout.
type Runner struct {
	WorkDir string
	Timeout time.Duration
	log     *zap.SugaredLogger
}

// NewRunner creates a Runner rooted at workDir with the default timeout.
func NewRunner(workDir string, log *zap.SugaredLogger) *Runner {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Runner{WorkDir: workDir, Timeout: DefaultCommandTimeout, log: log}
}

// Run executes command through the shell and captures its outcome. Timeout
// expiry is reported in the result, never as an error.
func (r *Runner) Run(ctx context.Context, command string) models.CommandResult {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = r.WorkDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	res := models.CommandResult{
		Command: command,
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
	}
	if ctx.Err() == context.DeadlineExceeded {
		res.TimedOut = true
		res.ExitCode = -1
		r.log.Debugw("command timed out", "command", command, "timeout", timeout)
		return res
	}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	} else if err != nil {
		// Command never started (e.g. shell missing)
		res.ExitCode = -1
		res.Stderr = err.Error()
	}

	r.log.Debugw("command finished", "command", command, "exit", res.ExitCode)
	return res
}

// FormatCommandResult renders a command outcome as user-visible text.
func FormatCommandResult(res models.CommandResult) string {
	if res.TimedOut {
		return fmt.Sprintf("Command timed out after %s: %s", DefaultCommandTimeout, res.Command)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Command: %s\n", res.Command)
	fmt.Fprintf(&sb, "Exit code: %d\n", res.ExitCode)
	if res.Stdout != "" {
		fmt.Fprintf(&sb, "Output:\n%s\n", res.Stdout)
	}
	if res.Stderr != "" {
		fmt.Fprintf(&sb, "Error:\n%s\n", res.Stderr)
	}
	return strings.TrimRight(sb.String(), "\n")
}
