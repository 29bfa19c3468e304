package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/competitor-discovery/internal/pipeline"
	"github.com/jonathan/competitor-discovery/internal/server"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web interface",
	Long:  `Start an HTTP server with the single-page interface, its JSON and streaming endpoints, PDF downloads and Prometheus metrics.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = servePort
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner, closeRunner := pipeline.Build(ctx, cfg, log)
	defer func() {
		if err := closeRunner(); err != nil {
			log.WithError(err).Warn("failed to close llm client")
		}
	}()

	srv := server.New(cfg, runner, log)
	return srv.Start(ctx)
}
