package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/teevee/internal/cli"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load the CSV dataset into the SQLite catalog",
	Long: `Reads movies_metadata.csv, keywords.csv and credits.csv from the data
directory and replaces the contents of the SQLite catalog (--db).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		debug, _ := cmd.Flags().GetBool("debug")
		logger, err := cli.NewLogger(os.Stderr, cfg, debug)
		if err != nil {
			return err
		}
		n, err := cli.Import(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d movies into %s\n", n, cfg.DBPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
