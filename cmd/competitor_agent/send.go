package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/competitor-discovery/internal/delivery"
	"github.com/jonathan/competitor-discovery/internal/observability"
	"github.com/jonathan/competitor-discovery/internal/types"
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Email a previously rendered PDF report",
	Long:  `Sends a PDF written by analyze or track as an attachment, using the SMTP settings from the environment or config file.`,
	RunE:  runSend,
}

var (
	sendTo   string
	sendFile string
	sendKind string
)

func init() {
	sendCmd.Flags().StringVar(&sendTo, "to", "", "Recipient email address")
	sendCmd.Flags().StringVarP(&sendFile, "file", "f", "", "Path to the PDF report")
	sendCmd.Flags().StringVar(&sendKind, "kind", string(types.ArtifactAnalysis), "Report kind: analysis or tracking (sets the attachment name)")

	_ = sendCmd.MarkFlagRequired("to")
	_ = sendCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, _ []string) error {
	kind, err := types.ParseArtifactKind(sendKind)
	if err != nil {
		return err
	}
	req := types.SendRequest{Recipient: strings.TrimSpace(sendTo), Artifact: kind}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid recipient %q: %w", sendTo, err)
	}

	doc, err := os.ReadFile(sendFile)
	if err != nil {
		return fmt.Errorf("failed to read report: %w", err)
	}

	cfg, log, err := setup()
	if err != nil {
		return err
	}

	mailer := delivery.NewMailer(cfg.Email, log.WithField("component", "delivery"))
	receipt := mailer.Deliver(cmd.Context(), req.Recipient, doc, kind.Filename())

	observability.NewPrinter(cmd.OutOrStdout()).PrintDelivery(receipt.Recipient, receipt.Filename, receipt.Sent)
	if !receipt.Sent {
		return fmt.Errorf("email was not sent: %w", receipt.Err)
	}
	return nil
}
