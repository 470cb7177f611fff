package plan

import (
	"context"
	"fmt"

	"github.com/joescharf/golem/internal/models"
	"github.com/joescharf/golem/internal/tools"
)

// FileCreator writes a file in full-overwrite mode.
type FileCreator interface {
	CreateFile(path, content string) error
}

// CommandRunner executes a shell command with a bounded timeout.
type CommandRunner interface {
	Run(ctx context.Context, command string) models.CommandResult
}

// Searcher runs a web search and returns formatted text (including graceful
// not-configured and failure messages).
type Searcher interface {
	Search(ctx context.Context, query string) string
}

// Toolbox holds the collaborators actions run against.
type Toolbox struct {
	Files  FileCreator
	Runner CommandRunner
	Search Searcher
}

// Action is one executable step of a plan. Run returns the user-visible
// result text; an empty string contributes nothing to the plan result.
type Action interface {
	Run(ctx context.Context, tb *Toolbox) string
}

// CreateFile writes content to a path.
type CreateFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

func (a CreateFile) Run(_ context.Context, tb *Toolbox) string {
	if err := tb.Files.CreateFile(a.Path, a.Content); err != nil {
		return fmt.Sprintf("Failed to create %s: %v", a.Path, err)
	}
	return fmt.Sprintf("Created: %s", a.Path)
}

// RunCommand executes a shell command.
type RunCommand struct {
	Command string `json:"command"`
}

func (a RunCommand) Run(ctx context.Context, tb *Toolbox) string {
	res := tb.Runner.Run(ctx, a.Command)
	return tools.FormatCommandResult(res)
}

// WebSearch queries the web-search collaborator.
type WebSearch struct {
	Query string `json:"query"`
}

func (a WebSearch) Run(ctx context.Context, tb *Toolbox) string {
	if tb.Search == nil {
		return "Web search is not configured."
	}
	return tb.Search.Search(ctx, a.Query)
}

// Reply is the planner's user-facing message.
type Reply struct {
	Text string `json:"text"`
}

func (a Reply) Run(_ context.Context, _ *Toolbox) string {
	return a.Text
}

// Invalid stands in for an action that failed validation or named an unknown
// tool. Its message appears inline in the plan result.
type Invalid struct {
	Msg string
}

func (a Invalid) Run(_ context.Context, _ *Toolbox) string {
	return a.Msg
}
