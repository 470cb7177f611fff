package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <request...>",
	Short: "Process a single request and exit",
	Long: `Send one request through the agent and print the response. The request
goes through the same pipeline as chat: directives, planning, and tools all
work, and conversation state persists between invocations.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return askRun(cmd, strings.Join(args, " "))
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func askRun(cmd *cobra.Command, input string) error {
	session, err := buildSession()
	if err != nil {
		return err
	}
	defer session.Close()

	reply := session.Process(cmd.Context(), input)
	if reply != "" {
		fmt.Fprintln(ui.Out, reply)
	}
	return nil
}
