package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/teevee"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of teevee",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "teevee version %s\n", strings.TrimSpace(teevee.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
