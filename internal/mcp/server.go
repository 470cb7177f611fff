package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/joescharf/golem/internal/memory"
	"github.com/joescharf/golem/internal/models"
	"github.com/joescharf/golem/internal/plan"
	"github.com/joescharf/golem/internal/safety"
	"github.com/joescharf/golem/internal/tools"
)

// Server exposes the agent's memory, search, and tool layer as MCP tools.
type Server struct {
	memory *memory.Store
	gate   *safety.Gate
	runner *tools.Runner
	files  tools.Files
	search plan.Searcher
}

// NewServer creates the MCP server wrapper with all required dependencies.
// search may be nil when no web search backend is configured.
func NewServer(mem *memory.Store, gate *safety.Gate, runner *tools.Runner, search plan.Searcher) *Server {
	return &Server{
		memory: mem,
		gate:   gate,
		runner: runner,
		search: search,
	}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("golem", "1.0.0", server.WithToolCapabilities(true))

	srv.AddTool(s.rememberTool())
	srv.AddTool(s.memoriesTool())
	srv.AddTool(s.searchTool())
	srv.AddTool(s.runTool())
	srv.AddTool(s.createFileTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := s.MCPServer()
	stdioServer := server.NewStdioServer(srv)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

// ---------------------------------------------------------------------------
// Tool definitions and handlers
// ---------------------------------------------------------------------------

// golem_remember
func (s *Server) rememberTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("golem_remember",
		mcp.WithDescription("Save a fact to the agent's long-term memory so it can be retrieved in later conversations."),
		mcp.WithString("text", mcp.Required(), mcp.Description("The fact to remember")),
	)
	return tool, s.handleRemember
}

func (s *Server) handleRemember(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: text"), nil
	}

	if err := s.memory.Add(ctx, text, models.MemoryKindManual); err != nil {
		if errors.Is(err, memory.ErrNoEmbedding) {
			return mcp.NewToolResultError("embedding backend unavailable"), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to save memory: %v", err)), nil
	}
	return mcp.NewToolResultText(`{"saved": true}`), nil
}

// golem_memories
func (s *Server) memoriesTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("golem_memories",
		mcp.WithDescription("Retrieve the memories most relevant to a query. Returns a JSON array of memory texts, best match first."),
		mcp.WithString("query", mcp.Required(), mcp.Description("What to look for")),
	)
	return tool, s.handleMemories
}

func (s *Server) handleMemories(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	items := s.memory.Query(ctx, query, 6)
	data, err := json.Marshal(items)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal memories: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// golem_search
func (s *Server) searchTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("golem_search",
		mcp.WithDescription("Run a web search and return a formatted summary of the top results."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query")),
	)
	return tool, s.handleSearch
}

func (s *Server) handleSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}
	if s.search == nil {
		return mcp.NewToolResultError("web search is not configured"), nil
	}
	return mcp.NewToolResultText(s.search.Search(ctx, query)), nil
}

// golem_run
func (s *Server) runTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("golem_run",
		mcp.WithDescription("Execute a shell command. Only commands on the safe allowlist run; anything else is refused because there is no interactive confirmation over MCP."),
		mcp.WithString("command", mcp.Required(), mcp.Description("Shell command to execute")),
	)
	return tool, s.handleRun
}

func (s *Server) handleRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	command, err := request.RequireString("command")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: command"), nil
	}

	// No confirmation channel here, so gated commands are refused outright
	// rather than parked as pending.
	if !s.gate.IsAllowed(command) {
		return mcp.NewToolResultError(fmt.Sprintf("command not in safe allowlist: %s", command)), nil
	}

	res := s.runner.Run(ctx, command)
	result := map[string]any{
		"command":   res.Command,
		"exit_code": res.ExitCode,
		"stdout":    res.Stdout,
		"stderr":    res.Stderr,
		"timed_out": res.TimedOut,
	}
	data, err := json.Marshal(result)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// golem_create_file
func (s *Server) createFileTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("golem_create_file",
		mcp.WithDescription("Create or overwrite a file with the given content. Parent directories are created as needed."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Target file path")),
		mcp.WithString("content", mcp.Description("File content (empty creates an empty file)")),
	)
	return tool, s.handleCreateFile
}

func (s *Server) handleCreateFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: path"), nil
	}
	content := request.GetString("content", "")

	if err := s.files.CreateFile(path, content); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create %s: %v", path, err)), nil
	}

	data, _ := json.Marshal(map[string]any{"path": path, "bytes": len(content)})
	return mcp.NewToolResultText(string(data)), nil
}
