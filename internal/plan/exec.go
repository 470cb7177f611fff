package plan

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Executor runs plans sequentially against a toolbox. Actions execute in
// listed order; a failing action contributes an error entry and execution
// continues with the remaining actions.
type Executor struct {
	tb  Toolbox
	log *zap.SugaredLogger
}

// NewExecutor creates an executor over the given toolbox.
func NewExecutor(tb Toolbox, log *zap.SugaredLogger) *Executor {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Executor{tb: tb, log: log}
}

// Execute runs every action and joins the non-empty results with newlines.
func (e *Executor) Execute(ctx context.Context, p *Plan) string {
	outputs := make([]string, 0, len(p.Actions))
	for i, a := range p.Actions {
		out := a.Run(ctx, &e.tb)
		e.log.Debugw("action executed", "index", i, "type", actionName(a), "output_len", len(out))
		if out != "" {
			outputs = append(outputs, out)
		}
	}
	return strings.Join(outputs, "\n")
}

func actionName(a Action) string {
	switch a.(type) {
	case CreateFile:
		return ToolCreateFile
	case RunCommand:
		return ToolRunCommand
	case WebSearch:
		return ToolWebSearch
	case Reply:
		return ToolReply
	default:
		return "invalid"
	}
}
