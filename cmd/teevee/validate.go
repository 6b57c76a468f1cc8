package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/teevee/internal/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the flow for consistency",
	Long: `Crawls the flow from its entry state and reports dead links, unknown
macros, states that cannot fail over and unreachable states.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := cli.Validate(cmd.OutOrStdout(), cfg); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
