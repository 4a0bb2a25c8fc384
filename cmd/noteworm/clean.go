package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bamsammich/noteworm/internal/engine"
	"github.com/bamsammich/noteworm/internal/frontmatter"
)

func (a *app) cleanCmd() *cobra.Command {
	var (
		source  string
		testRun bool
	)

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Scan note front matter and report its properties",
		Long: `Clean walks the source vault and scans the front matter of every Markdown
note. Each property line is printed with its line number; lines that are not
simple properties and YAML decoding problems are listed under the note.
Clean never modifies files.`,
		Args: cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.runClean(source, testRun)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&source, "source", "s", ".", "vault to scan")
	f.BoolVarP(&testRun, "test-run", "t", false, "report only (clean never writes)")

	return cmd
}

func (a *app) runClean(source string, testRun bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Debug("starting clean", "source", source, "test_run", testRun)

	entries, err := engine.Walk(ctx, source, engine.WalkOptions{})
	if err != nil {
		slog.Error("clean failed", "source", source, "error", err)
		return &exitError{code: 2}
	}

	var notes, failed int
	for _, e := range entries {
		if !e.Kind.IsNote() {
			slog.Debug("not a note", "path", e.RelPath, "kind", e.Kind)
			continue
		}
		doc, err := frontmatter.ScanFile(e.AbsPath)
		if err != nil {
			slog.Warn("scan failed", "path", e.RelPath, "error", err)
			failed++
			continue
		}
		notes++
		printDocument(a.stdout, e.RelPath, doc)
	}

	slog.Info("clean complete", "notes", notes, "failed", failed)
	if failed > 0 {
		return &exitError{code: 1}
	}
	return nil
}

// printDocument writes one note's front matter as an indented listing.
func printDocument(w io.Writer, relPath string, doc frontmatter.Document) {
	fmt.Fprintln(w, relPath)
	if !doc.HasFrontMatter {
		fmt.Fprintln(w, "  (no front matter)")
		return
	}
	for _, p := range doc.Properties {
		fmt.Fprintf(w, "  %d: %s = %q\n", p.Line, p.Key, p.Value)
	}
	for _, l := range doc.Unmatched {
		fmt.Fprintf(w, "  %d: ? %s\n", l.Line, l.Text)
	}
	if !doc.Terminated {
		fmt.Fprintln(w, "  (unterminated front matter)")
	}
	if doc.YAMLErr != nil {
		fmt.Fprintf(w, "  yaml: %v\n", doc.YAMLErr)
	}
}
