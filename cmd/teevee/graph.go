package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/teevee/internal/cli"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the flow graph visualization",
	Long: `Outputs a Mermaid diagram (graph TD) of the dialogue states. Dotted edges
are the redirects a macro can force. With --session the states that session
visited are highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		sessionID, _ := cmd.Flags().GetString("session")
		return cli.Graph(cmd.Context(), cmd.OutOrStdout(), cfg, sessionID)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("session", "s", "", "Highlight the path of this session")
}
