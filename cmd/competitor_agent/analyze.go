package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/competitor-discovery/internal/observability"
	"github.com/jonathan/competitor-discovery/internal/pipeline"
	"github.com/jonathan/competitor-discovery/internal/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Discover and compare a product's competitors",
	Long: `Looks up a short description of the product, asks the language model for its top
competitors and a markdown comparison table over the chosen aspects, and renders the
report to PDF. The markdown report is printed to stdout.`,
	RunE: runAnalyze,
}

var (
	analyzeProduct  string
	analyzeNiche    string
	analyzeAspects  []string
	analyzeOut      string
	analyzeMarkdown string
	analyzeEmail    string
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeProduct, "product", "p", "", "Name of your product or tool")
	analyzeCmd.Flags().StringVarP(&analyzeNiche, "niche", "n", "", "Niche or industry of the product")
	analyzeCmd.Flags().StringSliceVarP(&analyzeAspects, "aspect", "a", nil, "Aspect to compare (repeatable; defaults to Pricing, Features, User Interface)")
	analyzeCmd.Flags().StringVarP(&analyzeOut, "out", "o", types.AnalysisFilename, "Where to write the PDF report (empty to skip)")
	analyzeCmd.Flags().StringVar(&analyzeMarkdown, "markdown", "", "Also write the markdown report to this file")
	analyzeCmd.Flags().StringVar(&analyzeEmail, "email", "", "Email the PDF report to this address")

	_ = analyzeCmd.MarkFlagRequired("product")
	_ = analyzeCmd.MarkFlagRequired("niche")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	runner, closeRunner := pipeline.Build(ctx, cfg, log)
	defer func() {
		if err := closeRunner(); err != nil {
			log.WithError(err).Warn("failed to close llm client")
		}
	}()

	printer := observability.NewPrinter(os.Stderr)
	session, err := runner.Analyze(ctx, types.NewSession(uuid.NewString()), types.AnalysisRequest{
		Product: analyzeProduct,
		Niche:   analyzeNiche,
		Aspects: analyzeAspects,
	}, progressPrinter(printer))
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), session.Analysis)

	if err := writeFile(analyzeMarkdown, []byte(session.Analysis)); err != nil {
		return err
	}
	if doc, ok := session.Document(types.ArtifactAnalysis); ok {
		if err := writeFile(analyzeOut, doc); err != nil {
			return err
		}
		if analyzeOut != "" {
			log.WithField("path", analyzeOut).Info("analysis report written")
		}
	}

	if analyzeEmail == "" {
		return nil
	}
	receipt, err := runner.Send(ctx, session, types.SendRequest{Recipient: analyzeEmail, Artifact: types.ArtifactAnalysis}, nil)
	if err != nil {
		return err
	}
	printer.PrintDelivery(receipt.Recipient, receipt.Filename, receipt.Sent)
	return nil
}
