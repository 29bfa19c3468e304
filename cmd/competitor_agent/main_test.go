package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/competitor-discovery/internal/observability"
	"github.com/jonathan/competitor-discovery/internal/pipeline"
	"github.com/jonathan/competitor-discovery/internal/tracking"
	"github.com/jonathan/competitor-discovery/internal/types"
)

// execute runs the root command in-process with args.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Cleanup(func() { resetFlags(rootCmd) })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

// resetFlags restores every flag to its default so runs do not leak into each other.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func TestRootCommand_Subcommands(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"analyze", "track", "send", "serve"})
}

func TestCommands_RequiredFlags(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		errorString string
	}{
		{"analyze without product", []string{"analyze", "--niche", "notes"}, `"product"`},
		{"analyze without niche", []string{"analyze", "--product", "Notion"}, `"niche"`},
		{"track without competitors", []string{"track"}, `"competitors"`},
		{"send without file", []string{"send", "--to", "me@example.com"}, `"file"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "required flag")
			assert.Contains(t, err.Error(), tt.errorString)
		})
	}
}

func TestTrack_BlankCompetitorList(t *testing.T) {
	_, err := execute(t, "track", "--competitors", " , ", "--out", "")

	require.Error(t, err)
	var verr *pipeline.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "competitors", verr.Field)
}

func TestSend_InvalidRecipient(t *testing.T) {
	_, err := execute(t, "send", "--to", "not-an-email", "--file", "report.pdf")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid recipient")
}

func TestSend_UnknownKind(t *testing.T) {
	_, err := execute(t, "send", "--to", "me@example.com", "--file", "report.pdf", "--kind", "slides")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown artifact")
}

func TestSend_MissingFile(t *testing.T) {
	_, err := execute(t, "send", "--to", "me@example.com", "--file", "missing.pdf")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read report")
}

func TestSetup_BadConfigFile(t *testing.T) {
	report := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, os.WriteFile(report, []byte("%PDF-1.3"), 0o644))

	_, err := execute(t, "send", "--config", "/nonexistent/competitor.yaml", "--to", "me@example.com", "--file", report)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")

	require.NoError(t, writeFile(path, []byte("# Report")))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Report", string(got))

	assert.NoError(t, writeFile("", []byte("ignored")))
	assert.Error(t, writeFile(filepath.Join(t.TempDir(), "missing", "report.md"), nil))
}

func TestProgressPrinter(t *testing.T) {
	var buf bytes.Buffer
	printer := observability.NewPrinter(&buf)

	verbose = false
	assert.Nil(t, progressPrinter(printer))

	verbose = true
	t.Cleanup(func() { verbose = false })
	onProgress := withEvidence(printer, progressPrinter(printer))
	onProgress(pipeline.ProgressEvent{
		Step:    "summarize_updates",
		Message: "Updates fetched successfully",
		Content: []tracking.Section{{
			Name:     "Notion",
			Evidence: []types.UpdateEvidence{{Source: "https://notion.so/releases", Text: "Offline mode"}},
		}},
	})

	out := buf.String()
	assert.Contains(t, out, "[summarize_updates] Updates fetched successfully")
	assert.Contains(t, out, "UPDATES FOUND: Notion")
	assert.Contains(t, out, "Offline mode")
}
