// Package observability provides logging, user-facing error reporting and
// formatted output for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/competitor-discovery/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// previewLines is how many report lines a preview box shows
	previewLines = 12
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most width runes, marking the cut with "...".
func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}

// PrintEvidence outputs the update evidence discovered for one competitor.
func (p *Printer) PrintEvidence(name string, evidence []types.UpdateEvidence) {
	title := fmt.Sprintf("UPDATES FOUND: %s", name)
	if len(evidence) == 0 {
		p.printBox(title, "No update evidence found.")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Evidence items: %d\n\n", len(evidence)))

	count := min(len(evidence), maxItemsToShow)
	for i := 0; i < count; i++ {
		item := evidence[i]
		sb.WriteString(fmt.Sprintf("• %s\n", item.Text))
		source := item.Source
		if source == "" {
			source = "(no link)"
		}
		sb.WriteString(fmt.Sprintf("  %s\n", source))
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(evidence) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more", len(evidence)-maxItemsToShow))
	}

	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintReportPreview outputs the first lines of a generated report.
func (p *Printer) PrintReportPreview(title, report string) {
	report = strings.TrimSpace(report)
	if report == "" {
		return
	}

	lines := strings.Split(report, "\n")
	shown := lines
	if len(lines) > previewLines {
		shown = lines[:previewLines]
	}

	content := strings.Join(shown, "\n")
	if len(lines) > previewLines {
		content += fmt.Sprintf("\n... and %d more lines", len(lines)-previewLines)
	}

	p.printBox(strings.ToUpper(title), content)
}

// PrintDelivery outputs the result of an email delivery.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintDelivery(recipient, filename string, sent bool) {
	if sent {
		fmt.Fprintf(p.out, "✅ Sent %s to %s\n", filename, recipient)
		return
	}
	fmt.Fprintf(p.out, "❌ Could not send %s to %s\n", filename, recipient)
}

// PrintStep outputs a one-line progress message.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintStep(step, message string) {
	fmt.Fprintf(p.out, "[%s] %s\n", step, message)
}
