package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/joescharf/golem/internal/llm"
	"github.com/joescharf/golem/internal/models"
)

// systemPrompt frames the primary reply model.
const systemPrompt = `You are golem, a conversational automation agent with access to tools for
file creation, shell execution, and web research.

Guidelines:
- Analyze the request before acting and be explicit about what you did.
- Use web search only for current information the user asked for.
- When asked to create files or projects, actually create them with the file tools.
- Remember user preferences and project context from the provided agent state.
- Ask for clarification when a request is ambiguous.

When the program needs to take actions you MUST respond with a single JSON
object (and nothing else) matching the plan schema from the planner
instructions. If no actions are needed, respond with normal text.`

// plannerPrompt frames the planner model. Its output is either plain text or
// a single JSON plan object.
const plannerPrompt = `You are the planner for a local automation agent.

Return either:
1) A normal assistant response (plain text) if no actions are needed.
OR
2) A SINGLE JSON object (and nothing else) with this schema:

{
  "type": "plan",
  "actions": [
    {"tool": "create_file", "path": "relative/or/absolute/path", "content": "file content"},
    {"tool": "run_command", "command": "command to execute"},
    {"tool": "web_search", "query": "search query"},
    {"tool": "reply", "text": "final user-facing message"}
  ]
}

Rules:
- Use web_search ONLY if the user explicitly asks for news, current events, or a web search.
- If the user asks to create or build files, you MUST output the JSON plan, not plain text.
- Start your response with { and end with } for JSON plans.`

// stateSnapshot is the session state handed to the model as context.
type stateSnapshot struct {
	CurrentModel      string   `json:"current_model"`
	PlannerModel      string   `json:"planner_model"`
	LastServedFolder  string   `json:"last_served_folder,omitempty"`
	LastServedPort    int      `json:"last_served_port,omitempty"`
	RagEnabled        bool     `json:"rag_enabled"`
	RetrievedMemories []string `json:"retrieved_memories,omitempty"`
}

// historyText renders a chat history window as one line per message.
func historyText(msgs []*models.ChatMessage) string {
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		lines = append(lines, fmt.Sprintf("%s: %s", strings.ToUpper(m.Role), m.Content))
	}
	return strings.Join(lines, "\n")
}

// buildPlannerMessages assembles the planner invocation context: planner
// framing, state snapshot, recent history, then the user input.
func buildPlannerMessages(input string, history []*models.ChatMessage, state stateSnapshot) []llm.Message {
	stateJSON, _ := json.Marshal(state)
	return []llm.Message{
		{Role: llm.RoleSystem, Content: plannerPrompt},
		{Role: llm.RoleSystem, Content: fmt.Sprintf("Agent state (JSON): %s", stateJSON)},
		{Role: llm.RoleSystem, Content: fmt.Sprintf("Recent chat history (for context):\n%s", historyText(history))},
		{Role: llm.RoleUser, Content: input},
	}
}

// buildReplyMessages assembles the conversational invocation context: same
// retrieval augmentation as the planner, no plan framing, no history window.
func buildReplyMessages(input string, state stateSnapshot) []llm.Message {
	stateJSON, _ := json.Marshal(state)
	return []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleSystem, Content: fmt.Sprintf("Agent state (JSON): %s", stateJSON)},
		{Role: llm.RoleUser, Content: input},
	}
}
