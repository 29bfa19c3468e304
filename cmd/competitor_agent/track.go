package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/competitor-discovery/internal/observability"
	"github.com/jonathan/competitor-discovery/internal/pipeline"
	"github.com/jonathan/competitor-discovery/internal/tracking"
	"github.com/jonathan/competitor-discovery/internal/types"
)

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Summarize recent updates published by competitors",
	Long: `For each competitor, finds its changelog or release notes, collects the latest
entries and asks the language model for a short summary. The combined markdown is
printed to stdout and rendered to PDF when any competitor produced output.`,
	RunE: runTrack,
}

var (
	trackCompetitors string
	trackMaxItems    int
	trackParallel    bool
	trackOut         string
	trackMarkdown    string
	trackEmail       string
)

func init() {
	trackCmd.Flags().StringVarP(&trackCompetitors, "competitors", "c", "", "Comma separated competitor names")
	trackCmd.Flags().IntVar(&trackMaxItems, "max-items", 0, "Maximum updates per competitor (0 uses discovery.max_items)")
	trackCmd.Flags().BoolVar(&trackParallel, "parallel", false, "Probe changelog paths concurrently (overrides discovery.parallel)")
	trackCmd.Flags().StringVarP(&trackOut, "out", "o", types.TrackingFilename, "Where to write the PDF report (empty to skip)")
	trackCmd.Flags().StringVar(&trackMarkdown, "markdown", "", "Also write the markdown report to this file")
	trackCmd.Flags().StringVar(&trackEmail, "email", "", "Email the PDF report to this address")

	_ = trackCmd.MarkFlagRequired("competitors")

	rootCmd.AddCommand(trackCmd)
}

func runTrack(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("parallel") {
		cfg.Discovery.Parallel = trackParallel
	}

	ctx := cmd.Context()
	runner, closeRunner := pipeline.Build(ctx, cfg, log)
	defer func() {
		if err := closeRunner(); err != nil {
			log.WithError(err).Warn("failed to close llm client")
		}
	}()

	printer := observability.NewPrinter(os.Stderr)
	onProgress := progressPrinter(printer)
	if onProgress != nil {
		onProgress = withEvidence(printer, onProgress)
	}

	session, err := runner.Track(ctx, types.NewSession(uuid.NewString()), types.TrackingRequest{
		Competitors: trackCompetitors,
		MaxItems:    trackMaxItems,
	}, onProgress)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), session.Tracking)

	if err := writeFile(trackMarkdown, []byte(session.Tracking)); err != nil {
		return err
	}
	doc, ok := session.Document(types.ArtifactTracking)
	if !ok {
		log.Warn("no tracking report was produced")
		return nil
	}
	if err := writeFile(trackOut, doc); err != nil {
		return err
	}
	if trackOut != "" {
		log.WithField("path", trackOut).Info("tracking report written")
	}

	if trackEmail == "" {
		return nil
	}
	receipt, err := runner.Send(ctx, session, types.SendRequest{Recipient: trackEmail, Artifact: types.ArtifactTracking}, nil)
	if err != nil {
		return err
	}
	printer.PrintDelivery(receipt.Recipient, receipt.Filename, receipt.Sent)
	return nil
}

// withEvidence also prints each competitor's evidence once summaries are in.
func withEvidence(printer *observability.Printer, next pipeline.ProgressCallback) pipeline.ProgressCallback {
	return func(event pipeline.ProgressEvent) {
		next(event)
		if sections, ok := event.Content.([]tracking.Section); ok {
			for _, s := range sections {
				printer.PrintEvidence(s.Name, s.Evidence)
			}
		}
	}
}
