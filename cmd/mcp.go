package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/golem/internal/llm"
	"github.com/joescharf/golem/internal/mcp"
	"github.com/joescharf/golem/internal/memory"
	"github.com/joescharf/golem/internal/safety"
	"github.com/joescharf/golem/internal/tools"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server for editor/agent integration",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

This exposes golem's memory, search, and tool layer to MCP clients.
Configure in a client with:

  {
    "mcpServers": {
      "golem": { "command": "golem", "args": ["mcp"] }
    }
  }

Available tools: golem_remember, golem_memories, golem_search, golem_run,
golem_create_file`,
	RunE: func(cmd *cobra.Command, args []string) error {
		embed := llm.NewOllamaEmbedder(
			llm.NewOllamaClient(viper.GetString("llm.host")),
			viper.GetString("embed.model"),
		)
		mem := memory.NewStore(getStore(), embed, logger)
		gate := safety.NewGate(viper.GetStringSlice("safety.allowed_prefixes"))
		runner := tools.NewRunner(viper.GetString("workdir"), logger)

		srv := mcp.NewServer(mem, gate, runner, newSearcher())
		return srv.ServeStdio(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
