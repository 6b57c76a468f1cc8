package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/teevee/internal/cli"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the introspection endpoints",
	Long: `Serves /healthz, /info, /graph, /graph.json and /metrics until interrupted.
With --mcp, speaks the Model Context Protocol on stdin/stdout instead, offering
the get_graph, validate_graph, list_sessions and inspect_session tools.
It exposes no conversation API.`,
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
		addr, _ := cmd.Flags().GetString("addr")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app, err := cli.NewApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer app.Close()
		if useMCP, _ := cmd.Flags().GetBool("mcp"); useMCP {
			return cli.ServeMCP(ctx, app, cmd.InOrStdin(), cmd.OutOrStdout())
		}
		return cli.Serve(ctx, app, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
	serveCmd.Flags().Bool("mcp", false, "Serve MCP over stdio instead of HTTP")
}
