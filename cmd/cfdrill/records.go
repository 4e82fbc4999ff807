package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/cfdrill/internal/model"
	"github.com/verte-zerg/cfdrill/internal/stats"
	"github.com/verte-zerg/cfdrill/internal/statsui"
)

var (
	statsText        bool
	statsLast        int
	statsCurveWindow int

	historyOutput string
	historyYes    bool
)

func newUpsolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upsolve",
		Short: "Show the upsolve backlog",
		Args:  cobra.NoArgs,
		RunE:  runUpsolveListCmd,
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List upsolve batches",
		Args:  cobra.NoArgs,
		RunE:  runUpsolveListCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show <batch>",
		Short: "Show the problems of a batch",
		Args:  cobra.ExactArgs(1),
		RunE:  runUpsolveShowCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "done <batch> <problem>",
		Short: "Toggle a backlog problem as completed",
		Args:  cobra.ExactArgs(2),
		RunE:  runUpsolveDoneCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <batch>",
		Short: "Delete an upsolve batch",
		Args:  cobra.ExactArgs(1),
		RunE:  runUpsolveDeleteCmd,
	})
	return cmd
}

func runUpsolveListCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	progress, err := a.backlog.Summaries(cmd.Context())
	if err != nil {
		return err
	}
	var b bytes.Buffer
	if err := stats.RenderBacklog(&b, progress); err != nil {
		return err
	}
	return writeOut(cmd, "%s", b.String())
}

func runUpsolveShowCmd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	batch, err := a.findBatch(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	var b bytes.Buffer
	fmt.Fprintf(&b, "Batch %s, tags %s\n\n", batch.ID, strings.Join(batch.Tags, ", "))
	if err := stats.RenderProblems(&b, batch.Problems, batch.CompletedProblems); err != nil {
		return err
	}
	return writeOut(cmd, "%s", b.String())
}

func runUpsolveDoneCmd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	batch, err := a.findBatch(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	token := strings.ToUpper(strings.TrimSpace(args[1]))
	if err := a.backlog.ToggleCompleted(cmd.Context(), batch.ID, token); err != nil {
		return err
	}
	state := "completed"
	if batch.IsCompleted(token) {
		state = "not completed"
	}
	return writeOut(cmd, "%s marked %s\n", token, state)
}

func runUpsolveDeleteCmd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	batch, err := a.findBatch(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if err := a.backlog.Delete(cmd.Context(), batch.ID); err != nil {
		return err
	}
	return writeOut(cmd, "Deleted batch %s\n", batch.ID)
}

// findBatch resolves a batch id or a unique prefix of one.
func (a *app) findBatch(ctx context.Context, ref string) (model.UpsolveBatch, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.UpsolveBatch{}, fmt.Errorf("batch id must not be empty")
	}
	batches, err := a.backlog.List(ctx)
	if err != nil {
		return model.UpsolveBatch{}, err
	}
	return matchBatch(batches, ref)
}

func matchBatch(batches []model.UpsolveBatch, ref string) (model.UpsolveBatch, error) {
	var matches []model.UpsolveBatch
	for _, b := range batches {
		if b.ID == ref {
			return b, nil
		}
		if strings.HasPrefix(b.ID, ref) {
			matches = append(matches, b)
		}
	}
	switch len(matches) {
	case 0:
		return model.UpsolveBatch{}, fmt.Errorf("no upsolve batch matches %q", ref)
	case 1:
		return matches[0], nil
	default:
		return model.UpsolveBatch{}, fmt.Errorf("%q matches %d batches, use a longer prefix", ref, len(matches))
	}
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().BoolVar(&statsText, "text", false, "print a text report instead of the TUI")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow <= 0 {
		return fmt.Errorf("--curve-window must be > 0")
	}
	cfg := stats.ReportConfig{
		Last:            statsLast,
		CurveWindow:     statsCurveWindow,
		WeakMinSessions: defaultWeakMinSessions,
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if statsText || !isTerminal() {
		return renderTextReport(cmd.Context(), cmd.OutOrStdout(), a, cfg)
	}
	m := statsui.NewModel(a.history, a.backlog, cfg)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func renderTextReport(ctx context.Context, w io.Writer, a *app, cfg stats.ReportConfig) error {
	report, err := stats.BuildReport(ctx, a.history, a.backlog, cfg)
	if err != nil {
		return err
	}
	var b bytes.Buffer
	if err := stats.RenderSummary(&b, report.Summary); err != nil {
		return err
	}
	if err := stats.RenderTopTags(&b, report.Summary.TopTags); err != nil {
		return err
	}
	if err := stats.RenderWeakTags(&b, report.Weak); err != nil {
		return err
	}
	if err := stats.RenderCurves(&b, report.Records, report.Window); err != nil {
		return err
	}
	if err := stats.RenderHistory(&b, report.Recent); err != nil {
		return err
	}
	if err := stats.RenderBacklog(&b, report.Backlog); err != nil {
		return err
	}
	if _, err := w.Write(b.Bytes()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Export or clear session history",
	}
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write session history as JSON",
		Args:  cobra.NoArgs,
		RunE:  runHistoryExportCmd,
	}
	exportCmd.Flags().StringVarP(&historyOutput, "output", "o", "", "output file (default: stdout)")
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all session history",
		Args:  cobra.NoArgs,
		RunE:  runHistoryClearCmd,
	}
	clearCmd.Flags().BoolVar(&historyYes, "yes", false, "confirm deletion")
	cmd.AddCommand(exportCmd, clearCmd)
	return cmd
}

func runHistoryExportCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if historyOutput == "" {
		return a.history.Export(cmd.Context(), cmd.OutOrStdout())
	}
	if err := os.MkdirAll(filepath.Dir(historyOutput), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(historyOutput)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", historyOutput, err)
	}
	if err := a.history.Export(cmd.Context(), f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", historyOutput, err)
	}
	logErrf("Wrote %s\n", historyOutput)
	return nil
}

func runHistoryClearCmd(cmd *cobra.Command, _ []string) error {
	if !historyYes {
		return fmt.Errorf("--yes is required to delete all session history")
	}
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.history.Clear(cmd.Context()); err != nil {
		return err
	}
	return writeOut(cmd, "Session history cleared\n")
}
