// Package plan implements the protocol between the planner model and the
// executor: model output is either a JSON action plan or a plain reply, and
// plans execute fail-soft, one action at a time.
package plan

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Tool names recognized in plan JSON.
const (
	ToolCreateFile = "create_file"
	ToolRunCommand = "run_command"
	ToolWebSearch  = "web_search"
	ToolReply      = "reply"
)

// Plan is an ordered list of actions parsed from planner output.
type Plan struct {
	Actions []Action
}

// envelope is the wire shape of a plan.
type envelope struct {
	Type    string            `json:"type"`
	Actions []json.RawMessage `json:"actions"`
}

// actionHeader carries just the discriminator field.
type actionHeader struct {
	Tool string `json:"tool"`
}

// decoders maps a tool name to its action decoder. Adding an action kind
// means adding a type and one entry here.
var decoders = map[string]func(json.RawMessage) Action{
	ToolCreateFile: decodeCreateFile,
	ToolRunCommand: decodeRunCommand,
	ToolWebSearch:  decodeWebSearch,
	ToolReply:      decodeReply,
}

// Parse decides between a structured plan and a plain reply. It returns
// (plan, true) only when the trimmed text is a JSON object with type "plan";
// everything else — free text, malformed JSON, other JSON shapes — returns
// (nil, false) so the caller treats the output as a plain reply. Parse never
// fails: the upstream model is not a reliable JSON emitter.
func Parse(raw string) (*Plan, bool) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, false
	}

	var env envelope
	if err := json.Unmarshal([]byte(trimmed), &env); err != nil {
		return nil, false
	}
	if env.Type != "plan" {
		return nil, false
	}

	p := &Plan{Actions: make([]Action, 0, len(env.Actions))}
	for _, raw := range env.Actions {
		p.Actions = append(p.Actions, decodeAction(raw))
	}
	return p, true
}

// decodeAction resolves one action. Unknown tools and validation failures
// become Invalid actions so the error surfaces in execution order instead of
// aborting the plan.
func decodeAction(raw json.RawMessage) Action {
	var hdr actionHeader
	if err := json.Unmarshal(raw, &hdr); err != nil {
		return Invalid{Msg: fmt.Sprintf("malformed action: %v", err)}
	}

	decode, ok := decoders[hdr.Tool]
	if !ok {
		return Invalid{Msg: fmt.Sprintf("unknown tool in plan: %s", hdr.Tool)}
	}
	return decode(raw)
}

func decodeCreateFile(raw json.RawMessage) Action {
	var a CreateFile
	if err := json.Unmarshal(raw, &a); err != nil {
		return Invalid{Msg: fmt.Sprintf("malformed create_file action: %v", err)}
	}
	if a.Path == "" {
		return Invalid{Msg: "create_file missing 'path'"}
	}
	return a
}

func decodeRunCommand(raw json.RawMessage) Action {
	var a RunCommand
	if err := json.Unmarshal(raw, &a); err != nil {
		return Invalid{Msg: fmt.Sprintf("malformed run_command action: %v", err)}
	}
	if a.Command == "" {
		return Invalid{Msg: "run_command missing 'command'"}
	}
	return a
}

func decodeWebSearch(raw json.RawMessage) Action {
	var a WebSearch
	if err := json.Unmarshal(raw, &a); err != nil {
		return Invalid{Msg: fmt.Sprintf("malformed web_search action: %v", err)}
	}
	if a.Query == "" {
		return Invalid{Msg: "web_search missing 'query'"}
	}
	return a
}

func decodeReply(raw json.RawMessage) Action {
	var a Reply
	if err := json.Unmarshal(raw, &a); err != nil {
		return Invalid{Msg: fmt.Sprintf("malformed reply action: %v", err)}
	}
	return a
}
