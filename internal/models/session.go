package models

import "time"

// Chat message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is a single entry in the session's conversation history.
type ChatMessage struct {
	ID        string
	Role      string
	Content   string
	CreatedAt time.Time
}

// PendingCommand is a shell command held by the safety gate until the user
// confirms or cancels it. A session has at most one.
type PendingCommand struct {
	Command  string
	Reason   string
	QueuedAt time.Time
}

// CommandResult captures the outcome of one shell command execution.
type CommandResult struct {
	Command  string
	ExitCode int
	Stdout   string
	Stderr   string
	TimedOut bool
}
