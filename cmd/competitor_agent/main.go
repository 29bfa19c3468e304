// Package main provides the entry point for the competitor discovery CLI and web server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jonathan/competitor-discovery/internal/config"
	"github.com/jonathan/competitor-discovery/internal/observability"
	"github.com/jonathan/competitor-discovery/internal/pipeline"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "competitor_agent",
	Short: "Competitor Discovery & Comparison AI",
	Long: `competitor_agent finds a product's competitors, compares them with a language model,
tracks their published changelogs and exports the results as PDF reports by download or email.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to competitor.yaml or competitor.json (optional)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed progress information")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads configuration and builds the logger every command shares.
// Credential warnings are logged, never fatal.
func setup() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	log, err := observability.NewLogger(level, cfg.Log.File)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	for _, w := range cfg.Warnings() {
		log.Warn(w)
	}
	return cfg, log, nil
}

// progressPrinter returns a callback that prints step messages in verbose mode.
func progressPrinter(printer *observability.Printer) pipeline.ProgressCallback {
	if !verbose {
		return nil
	}
	return func(event pipeline.ProgressEvent) {
		printer.PrintStep(event.Step, event.Message)
	}
}

// writeFile writes data to path unless path is empty.
func writeFile(path string, data []byte) error {
	if path == "" {
		return nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
