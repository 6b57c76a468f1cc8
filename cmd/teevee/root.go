package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/teevee/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "teevee",
	Short: "teevee is a chatbot that interviews you about movies",
	Long: `teevee asks your name, a movie you have seen and what you liked about it,
answering from a catalog of movie metadata. Without a subcommand it runs the
interview on the terminal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "YAML configuration file")
	pf.String("data", "", "Directory holding the movie dataset CSV files")
	pf.String("catalog", "", "Catalog backend: csv or sqlite")
	pf.String("db", "", "SQLite catalog path")
	pf.String("flow", "", "Flow document replacing the built-in interview")
	pf.String("store", "", "Session store: memory, file or redis")
	pf.String("log-level", "", "Log level: debug, info, warn or error")
	pf.Bool("debug", false, "Log every turn at debug level")
}

// loadConfig layers the config file, the environment and the flags the user
// actually set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	for name, dst := range map[string]*string{
		"data":         &cfg.DataDir,
		"catalog":      &cfg.Catalog,
		"db":           &cfg.DBPath,
		"flow":         &cfg.FlowPath,
		"store":        &cfg.Store,
		"log-level":    &cfg.LogLevel,
		"tagger":       &cfg.Tagger,
		"ner-url":      &cfg.NERURL,
		"metrics-addr": &cfg.MetricsAddr,
	} {
		if flags.Lookup(name) != nil && flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	if flags.Lookup("seed") != nil && flags.Changed("seed") {
		cfg.Seed, _ = flags.GetUint64("seed")
	}
	return cfg, cfg.Validate()
}
