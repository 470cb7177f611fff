// Package safety implements the command allow-list gate. Commands that do
// not match an allowed prefix are held pending until the user confirms or
// cancels them.
package safety

import (
	"strings"
	"sync"
	"time"

	"github.com/joescharf/golem/internal/models"
)

// DefaultAllowedPrefixes are the commands considered safe to run without
// confirmation. Matching is case-insensitive on the trimmed command text, so
// trailing arguments never affect the decision.
var DefaultAllowedPrefixes = []string{
	"ls",
	"cat",
	"pwd",
	"python -m http.server",
	"python -c",
	"pip show",
	"pip list",
	"ollama list",
	"go version",
}

// Decision is the gate's verdict for a requested command.
type Decision struct {
	Allowed bool
	Reason  string // set when confirmation is required
}

// Gate classifies commands against the allow-list and holds at most one
// pending command. Safe for concurrent use.
type Gate struct {
	mu       sync.Mutex
	prefixes []string
	pending  *models.PendingCommand
}

// NewGate creates a gate with the given allowed prefixes. Nil or empty
// prefixes fall back to the defaults.
func NewGate(prefixes []string) *Gate {
	if len(prefixes) == 0 {
		prefixes = DefaultAllowedPrefixes
	}
	return &Gate{prefixes: prefixes}
}

// IsAllowed reports whether command matches one of the allowed prefixes.
func (g *Gate) IsAllowed(command string) bool {
	cmd := strings.ToLower(strings.TrimSpace(command))
	if cmd == "" {
		return false
	}
	for _, p := range g.prefixes {
		if strings.HasPrefix(cmd, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// Evaluate classifies command. Disallowed commands are stored as the pending
// command; a previously pending command is overwritten, the latest request
// wins.
func (g *Gate) Evaluate(command string) Decision {
	if g.IsAllowed(command) {
		return Decision{Allowed: true}
	}

	reason := "not in safe allowlist"
	g.mu.Lock()
	g.pending = &models.PendingCommand{
		Command:  command,
		Reason:   reason,
		QueuedAt: time.Now().UTC(),
	}
	g.mu.Unlock()

	return Decision{Allowed: false, Reason: reason}
}

// ConfirmPending clears and returns the pending command for execution.
// ok is false when nothing is pending.
func (g *Gate) ConfirmPending() (command string, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending == nil {
		return "", false
	}
	command = g.pending.Command
	g.pending = nil
	return command, true
}

// CancelPending discards the pending command without executing it.
// ok is false when nothing is pending.
func (g *Gate) CancelPending() (ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending == nil {
		return false
	}
	g.pending = nil
	return true
}

// Pending returns a copy of the currently pending command, or nil.
func (g *Gate) Pending() *models.PendingCommand {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending == nil {
		return nil
	}
	cp := *g.pending
	return &cp
}
