package agent

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/joescharf/golem/internal/memory"
	"github.com/joescharf/golem/internal/models"
	"github.com/joescharf/golem/internal/tools"
)

// route dispatches explicit slash directives. It returns (result, true) when
// the input matched a directive; otherwise the input falls through to the
// model-planning path. Matching is case-insensitive on the trimmed input.
func (s *Session) route(ctx context.Context, input string) (string, bool) {
	lower := strings.ToLower(input)

	switch {
	case lower == "/models" || lower == "/model list":
		return s.handleModelList(), true

	case lower == "/model" || lower == "/model show" || lower == "/model current":
		return fmt.Sprintf("Current model: %s", s.modelName), true

	case strings.HasPrefix(lower, "/model "):
		return s.handleModelSet(ctx, strings.TrimSpace(input[len("/model "):])), true

	case lower == "/planner" || lower == "/planner show":
		return fmt.Sprintf("Planner model: %s", s.plannerModelName), true

	case strings.HasPrefix(lower, "/planner "):
		return s.handlePlannerSet(ctx, strings.TrimSpace(input[len("/planner "):])), true

	case strings.HasPrefix(lower, "/remember "):
		return s.handleRemember(ctx, strings.TrimSpace(input[len("/remember "):])), true

	case strings.HasPrefix(lower, "/memories"):
		return s.handleMemories(ctx, strings.TrimSpace(input[len("/memories"):])), true

	case strings.HasPrefix(lower, "/rag"):
		return s.handleRag(ctx, strings.TrimSpace(input[len("/rag"):])), true

	case strings.HasPrefix(lower, "/temp"):
		return s.handleTemperature(ctx, strings.TrimSpace(input[len("/temp"):])), true

	case strings.HasPrefix(lower, "/serve"):
		return s.handleServe(ctx, strings.Fields(input)), true

	case lower == "/pwd" || lower == "/cwd":
		return s.handlePwd(), true

	case strings.HasPrefix(lower, "/files"):
		return s.handleFiles(strings.TrimSpace(input[len("/files"):])), true

	case strings.HasPrefix(lower, "/open "):
		return s.handleOpen(strings.TrimSpace(input[len("/open "):])), true

	case lower == "/confirm":
		return s.handleConfirm(ctx), true

	case lower == "/cancel":
		return s.handleCancel(), true

	case strings.HasPrefix(lower, "/run "):
		return s.handleRun(ctx, strings.TrimSpace(input[len("/run "):])), true

	case strings.HasPrefix(lower, "/search "):
		return s.handleSearch(ctx, strings.TrimSpace(input[len("/search "):])), true
	}

	return "", false
}

// --- model selection ---

func (s *Session) handleModelList() string {
	var sb strings.Builder
	sb.WriteString("Available models:\n")
	for _, m := range s.cfg.AvailableModels {
		fmt.Fprintf(&sb, "- %s\n", m)
	}
	fmt.Fprintf(&sb, "\nCurrent: %s\n\nUse: /model <name>", s.modelName)
	return sb.String()
}

func (s *Session) handleModelSet(ctx context.Context, name string) string {
	if name == "" {
		return "Usage: /model <model-name>"
	}
	s.modelName = name
	s.setPrefString(ctx, "model_name", name)
	return fmt.Sprintf("Model set to: %s", name)
}

func (s *Session) handlePlannerSet(ctx context.Context, name string) string {
	if name == "" {
		return "Usage: /planner <model-name>"
	}
	s.plannerModelName = name
	s.setPrefString(ctx, "planner_model_name", name)
	return fmt.Sprintf("Planner model set to: %s", name)
}

// --- retrieval memory ---

func (s *Session) handleRemember(ctx context.Context, text string) string {
	if !s.ragEnabled {
		return "Memory is disabled. Enable it with /rag on."
	}
	switch err := s.memory.Add(ctx, text, models.MemoryKindManual); {
	case err == nil:
		return "Saved to memory."
	case errors.Is(err, memory.ErrEmptyText):
		return "Usage: /remember <text>"
	case errors.Is(err, memory.ErrNoEmbedding):
		return "Could not create embeddings (is the embedding backend running?)."
	default:
		return fmt.Sprintf("Failed to save memory: %v", err)
	}
}

func (s *Session) handleMemories(ctx context.Context, query string) string {
	if !s.ragEnabled {
		return "Memory is disabled. Enable it with /rag on."
	}
	if query == "" {
		return "Usage: /memories <query>"
	}
	items := s.memory.Query(ctx, query, s.cfg.MemoriesK)
	if len(items) == 0 {
		return "No relevant memories found."
	}
	var sb strings.Builder
	sb.WriteString("Retrieved memories:")
	for _, item := range items {
		fmt.Fprintf(&sb, "\n- %s", item)
	}
	return sb.String()
}

func (s *Session) handleRag(ctx context.Context, arg string) string {
	switch strings.ToLower(arg) {
	case "":
		if s.ragEnabled {
			return "Memory retrieval is on."
		}
		return "Memory retrieval is off."
	case "on":
		s.ragEnabled = true
		s.setPref(ctx, "rag_enabled", true)
		return "Memory retrieval enabled."
	case "off":
		s.ragEnabled = false
		s.setPref(ctx, "rag_enabled", false)
		return "Memory retrieval disabled."
	default:
		return "Usage: /rag [on|off]"
	}
}

// --- sampling temperature ---

func (s *Session) handleTemperature(ctx context.Context, arg string) string {
	if arg == "" {
		return fmt.Sprintf("Temperature: %.2f", s.temperature)
	}
	v, err := strconv.ParseFloat(arg, 64)
	if err != nil || v < 0 || v > 2 {
		return "Usage: /temp <value between 0 and 2>"
	}
	s.temperature = v
	s.setPref(ctx, "temperature", v)
	return fmt.Sprintf("Temperature set to: %.2f", v)
}

// --- background static server ---

func (s *Session) handleServe(ctx context.Context, parts []string) string {
	// parts[0] is "/serve"
	if len(parts) >= 2 && strings.EqualFold(parts[1], "stop") {
		if s.server.Stop() {
			return "Server stopped."
		}
		return "No server is currently running."
	}

	folder := ""
	port := 0
	portSet := false
	if len(parts) >= 2 {
		folder = parts[1]
	}
	if len(parts) >= 3 {
		p, err := strconv.Atoi(parts[2])
		if err != nil || p < 0 {
			return fmt.Sprintf("Port must be a number. Example: /serve site %d", s.cfg.DefaultServePort)
		}
		port = p
		portSet = true
	}

	// Fall back to last-used preferences, then configuration
	if folder == "" {
		if v, ok := s.getPrefString(ctx, "last_served_folder"); ok && v != "" {
			folder = v
		} else {
			folder = s.cfg.DefaultServeFolder
		}
	}
	if !portSet {
		if v, ok := s.getPrefInt(ctx, "last_served_port"); ok && v > 0 {
			port = v
		} else {
			port = s.cfg.DefaultServePort
		}
	}

	addr, err := s.server.Start(folder, port)
	if err != nil {
		if strings.Contains(err.Error(), "already running") {
			return "A server is already running. Use /serve stop first."
		}
		return fmt.Sprintf("Failed to start server: %v", err)
	}

	s.setPrefString(ctx, "last_served_folder", folder)
	s.setPref(ctx, "last_served_port", s.server.Port())

	return fmt.Sprintf("Serving %q at %s\nStop with: /serve stop", folder, addr)
}

// --- read-only introspection ---

func (s *Session) handlePwd() string {
	cwd, err := s.files.Cwd()
	if err != nil {
		return fmt.Sprintf("Failed to resolve working directory: %v", err)
	}
	return cwd
}

func (s *Session) handleFiles(folder string) string {
	out, err := s.files.ListDir(folder)
	if err != nil {
		return err.Error()
	}
	return out
}

func (s *Session) handleOpen(path string) string {
	if path == "" {
		return "Usage: /open <file-path>"
	}
	out, err := s.files.ReadFileText(path)
	if err != nil {
		return err.Error()
	}
	return out
}

// --- safety gate ---

func (s *Session) handleConfirm(ctx context.Context) string {
	cmd, ok := s.gate.ConfirmPending()
	if !ok {
		return "No pending command."
	}
	return tools.FormatCommandResult(s.runner.Run(ctx, cmd))
}

func (s *Session) handleCancel() string {
	if !s.gate.CancelPending() {
		return "No pending command."
	}
	return "Pending command canceled."
}

func (s *Session) handleRun(ctx context.Context, cmd string) string {
	if cmd == "" {
		return "Usage: /run <command>"
	}

	decision := s.gate.Evaluate(cmd)
	if decision.Allowed {
		return tools.FormatCommandResult(s.runner.Run(ctx, cmd))
	}

	return fmt.Sprintf(
		"Command requires confirmation.\nReason: %s\nPending: %s\n\nUse /confirm to run it or /cancel to discard.",
		decision.Reason, cmd,
	)
}

// --- explicit search ---

func (s *Session) handleSearch(ctx context.Context, query string) string {
	if query == "" {
		return "Usage: /search <query>"
	}
	if s.search == nil {
		return "Web search is not configured."
	}
	return s.search.Search(ctx, query)
}
