package main

import (
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/aretw0/teevee/internal/cli"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the movie interview",
	Long: `Starts an interview on the terminal. With --session the conversation is
saved after every turn and resumed on the next run with the same id.
Type "exit" or "quit", or press Ctrl+C, to leave.`,
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

		sessionID, _ := cmd.Flags().GetString("session")
		if sessionID == "" {
			sessionID = uuid.NewString()
			logger.Debug("generated session id", "session_id", sessionID)
		}
		fresh, _ := cmd.Flags().GetBool("fresh")
		headless, _ := cmd.Flags().GetBool("headless")
		jsonMode, _ := cmd.Flags().GetBool("json")

		app, err := cli.NewApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer app.Close()

		return cli.Run(cmd.Context(), app, cli.RunOptions{
			SessionID: sessionID,
			Fresh:     fresh,
			Headless:  headless,
			JSON:      jsonMode,
			Input:     cmd.InOrStdin(),
			Output:    cmd.OutOrStdout(),
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	f := runCmd.Flags()
	f.StringP("session", "s", "", "Session id to save and resume (a new one is generated when empty)")
	f.Bool("fresh", false, "Discard the saved state of --session first")
	f.Bool("headless", false, "Run in headless mode (no banner, no prompt marker)")
	f.Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	f.String("tagger", "", "Entity tagger: lexicon or http")
	f.String("ner-url", "", "Endpoint of the HTTP entity tagger")
	f.String("metrics-addr", "", "Serve /metrics and /graph on this address while running")
	f.Uint64("seed", 0, "Seed for the bot's random choices (0 picks one)")

	// Running the interview is the default action.
	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}
