package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/joescharf/golem/internal/output"
	"github.com/joescharf/golem/internal/store"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui        *output.UI
	logger    *zap.SugaredLogger
	dataStore store.Store

	verbose bool

	buildVersion string
	buildCommit  string
	buildDate    string
)

var rootCmd = &cobra.Command{
	Use:   "golem",
	Short: "Conversational automation agent with tools and memory",
	Long: `golem is a local-first conversational agent. It plans tool use with an
LLM, executes shell commands behind a safety gate, creates files, serves
static folders, searches the web, and remembers facts across sessions.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	rootCmd.Version = fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	// Bare `golem` drops into the chat loop.
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return chatRun(cmd)
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/golem/config.yaml)")
}

func initConfig() {
	// .env is loaded first so API keys land in the environment before
	// AutomaticEnv picks them up.
	_ = godotenv.Load()

	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".config", "golem")
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("GOLEM")
	viper.AutomaticEnv()

	// Defaults via viper.SetDefault()
	home, _ := os.UserHomeDir()
	defaultConfigDir := filepath.Join(home, ".config", "golem")

	viper.SetDefault("db_path", filepath.Join(defaultConfigDir, "golem.db"))
	viper.SetDefault("workdir", "")
	viper.SetDefault("llm.backend", "ollama")
	viper.SetDefault("llm.host", "http://localhost:11434")
	viper.SetDefault("llm.model", "llama3.1:8b")
	viper.SetDefault("llm.planner_model", "qwen2.5:7b")
	viper.SetDefault("llm.models", []string{"llama3.1:8b", "qwen2.5:7b", "claude-3-5-haiku-latest"})
	viper.SetDefault("llm.temperature", 0.7)
	viper.SetDefault("llm.planner_temperature", 0.0)
	viper.SetDefault("anthropic.api_key", "")
	viper.SetDefault("embed.model", "nomic-embed-text")
	viper.SetDefault("rag.enabled", true)
	viper.SetDefault("rag.retrieval_k", 3)
	viper.SetDefault("rag.memories_k", 6)
	viper.SetDefault("tavily.api_key", "")
	viper.SetDefault("safety.allowed_prefixes", []string{})
	viper.SetDefault("history.max", 20)
	viper.SetDefault("history.context_window", 6)
	viper.SetDefault("serve.folder", ".")
	viper.SetDefault("serve.port", 8000)

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose

	if verbose {
		l, err := zap.NewDevelopment()
		if err == nil {
			logger = l.Sugar()
		}
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
}

// getStore returns the shared store, initializing it on first call. If the
// database cannot be opened the agent runs on an in-memory store so a broken
// data directory never blocks a conversation.
func getStore() store.Store {
	if dataStore != nil {
		return dataStore
	}

	dbPath := viper.GetString("db_path")
	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		ui.Warning("Could not open database at %s (%v); state will not persist", dbPath, err)
		dataStore = store.NewMemStore()
		return dataStore
	}

	if err := s.Migrate(rootCmd.Context()); err != nil {
		_ = s.Close()
		ui.Warning("Could not migrate database at %s (%v); state will not persist", dbPath, err)
		dataStore = store.NewMemStore()
		return dataStore
	}

	dataStore = s
	return dataStore
}
