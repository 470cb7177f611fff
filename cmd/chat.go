package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joescharf/golem/internal/output"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive chat loop. Plain text goes to the model; slash
directives are handled locally. Type 'help' for the directive list, 'exit'
to quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return chatRun(cmd)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func chatRun(cmd *cobra.Command) error {
	session, err := buildSession()
	if err != nil {
		return err
	}
	defer session.Close()

	ui.Info("golem %s. Type 'help' for directives, 'exit' to quit.", buildVersion)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Fprintf(ui.Out, "%s> ", output.RoleColor("user"))
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit", "/exit", "/quit":
			ui.Info("Bye.")
			return nil
		case "help", "/help":
			printDirectiveHelp()
			continue
		}

		reply := session.Process(cmd.Context(), line)
		if reply != "" {
			fmt.Fprintf(ui.Out, "%s> %s\n", output.RoleColor("assistant"), reply)
		}
	}

	return scanner.Err()
}

// printDirectiveHelp renders the directive table.
func printDirectiveHelp() {
	table := ui.Table([]string{"Directive", "Description"})
	rows := [][]string{
		{"/models", "List available models"},
		{"/model <name>", "Switch the chat model"},
		{"/planner <name>", "Switch the planner model"},
		{"/temp <0-2>", "Set sampling temperature"},
		{"/remember <text>", "Save a fact to long-term memory"},
		{"/memories <query>", "Retrieve relevant memories"},
		{"/rag [on|off]", "Toggle memory retrieval"},
		{"/run <command>", "Run a shell command (gated)"},
		{"/confirm", "Run the pending gated command"},
		{"/cancel", "Discard the pending gated command"},
		{"/serve [folder] [port]", "Serve a folder over HTTP"},
		{"/serve stop", "Stop the running server"},
		{"/pwd", "Print the working directory"},
		{"/files [folder]", "List a folder"},
		{"/open <path>", "Preview a text file"},
		{"/search <query>", "Web search"},
	}
	for _, row := range rows {
		table.Append(row)
	}
	if err := table.Render(); err != nil {
		ui.Error("render help: %v", err)
	}
}
