package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/cfdrill/internal/identity"
	"github.com/verte-zerg/cfdrill/internal/model"
	"github.com/verte-zerg/cfdrill/internal/stats"
	"github.com/verte-zerg/cfdrill/internal/training"
	"github.com/verte-zerg/cfdrill/internal/tui"
)

var (
	startTags        []string
	startRecommended bool
	startRating      int
	startRefresh     bool
	startNoTUI       bool
)

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <handle>",
		Short: "Bind a Codeforces handle",
		Args:  cobra.ExactArgs(1),
		RunE:  runLoginCmd,
	}
}

func runLoginCmd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	profile, err := a.identity.Bind(cmd.Context(), args[0])
	if err != nil {
		return withHint(err)
	}
	return writeOut(cmd, "Logged in as %s\n", describeProfile(profile))
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the bound handle",
		Args:  cobra.NoArgs,
		RunE:  runLogoutCmd,
	}
}

func runLogoutCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.identity.Unbind(cmd.Context()); err != nil {
		return err
	}
	return writeOut(cmd, "Logged out\n")
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the bound handle",
		Args:  cobra.NoArgs,
		RunE:  runWhoamiCmd,
	}
}

func runWhoamiCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	profile, err := a.identity.Current(cmd.Context())
	if err != nil {
		return withHint(err)
	}
	return writeOut(cmd, "%s\n", describeProfile(profile))
}

func newTagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List recognized tags",
		Args:  cobra.NoArgs,
		RunE:  runTagsCmd,
	}
}

func runTagsCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	rating := model.DefaultRating
	if profile, err := a.identity.Current(cmd.Context()); err == nil {
		rating = identity.EffectiveRating(profile)
	} else if !errors.Is(err, model.ErrNotBound) {
		return err
	}

	recommended := map[string]bool{}
	for _, tag := range training.RecommendedTags(rating) {
		recommended[tag] = true
	}
	weak := map[string]bool{}
	records, err := a.history.List(cmd.Context())
	if err != nil {
		return err
	}
	for _, tr := range stats.WeakTags(records, defaultWeakMinSessions, 3) {
		weak[tr.Tag] = true
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Rating %d, problems rated %s\n\n", rating, training.Band(rating))
	for _, tag := range training.AvailableTags() {
		mark := "  "
		if recommended[tag] {
			mark = "* "
		}
		line := mark + tag
		if weak[tag] {
			line += " (needs work)"
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n* recommended for your rating\n")
	return writeOut(cmd, "%s", b.String())
}

func newStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Generate a new training session",
		Args:  cobra.NoArgs,
		RunE:  runStartCmd,
	}
	cmd.Flags().StringSliceVar(&startTags, "tags", nil, "comma-separated tags (see: cfdrill tags)")
	cmd.Flags().BoolVar(&startRecommended, "recommended", false, "add the tags recommended for your rating")
	cmd.Flags().IntVar(&startRating, "rating", 0, "rating to build the problem band from")
	cmd.Flags().BoolVar(&startRefresh, "refresh", false, "refresh the bound handle's rating first")
	cmd.Flags().BoolVar(&startNoTUI, "no-tui", false, "print the problem list instead of opening the TUI")
	return cmd
}

func runStartCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	rating, err := a.resolveRating(cmd)
	if err != nil {
		return err
	}
	tags, err := resolveTags(startTags, startRecommended, rating)
	if err != nil {
		return err
	}

	logErrln("Fetching problems...")
	if _, err := a.engine.Generate(cmd.Context(), tags, rating); err != nil {
		return withHint(err)
	}
	if !startNoTUI && isTerminal() {
		return runSessionTUI(cmd, a)
	}
	return printStatus(cmd, a)
}

func (a *app) resolveRating(cmd *cobra.Command) (int, error) {
	if cmd.Flags().Changed("rating") {
		if startRating <= 0 {
			return 0, fmt.Errorf("--rating must be > 0")
		}
		return startRating, nil
	}
	var (
		profile model.UserProfile
		err     error
	)
	if startRefresh {
		profile, err = a.identity.Refresh(cmd.Context())
	} else {
		profile, err = a.identity.Current(cmd.Context())
	}
	if errors.Is(err, model.ErrNotBound) {
		logErrf("No handle bound, using rating %d. Bind one with: cfdrill login <handle>\n", model.DefaultRating)
		return model.DefaultRating, nil
	}
	if err != nil {
		return 0, withHint(err)
	}
	return identity.EffectiveRating(profile), nil
}

// resolveTags merges explicit tags with the recommended set for rating.
func resolveTags(tags []string, recommended bool, rating int) ([]string, error) {
	out := append([]string(nil), tags...)
	if recommended {
		out = append(out, training.RecommendedTags(rating)...)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("--tags must list at least one tag (or use --recommended)")
	}
	return out, nil
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the active session",
		Args:  cobra.NoArgs,
		RunE:  runStatusCmd,
	}
}

func runStatusCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	return printStatus(cmd, a)
}

func newSolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "solve <problem>",
		Short: "Toggle a problem of the active session as solved",
		Args:  cobra.ExactArgs(1),
		RunE:  runSolveCmd,
	}
}

func runSolveCmd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	token := strings.ToUpper(strings.TrimSpace(args[0]))
	if err := a.engine.ToggleSolved(cmd.Context(), token); err != nil {
		if last := a.engine.LastSummary(); errors.Is(err, model.ErrNoActiveSession) && !last.Empty() {
			return writeOut(cmd, "%s", describeSummary(last))
		}
		return withHint(err)
	}
	snap := a.engine.Snapshot(time.Now())
	state := "unsolved"
	for _, s := range snap.Solved {
		if s == token {
			state = "solved"
		}
	}
	return writeOut(cmd, "%s marked %s (%d/%d)\n", token, state, len(snap.Solved), len(snap.Problems))
}

func newEndCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "end",
		Short: "End the active session",
		Args:  cobra.NoArgs,
		RunE:  runEndCmd,
	}
}

func runEndCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	summary, err := a.engine.End(cmd.Context(), model.EndManual)
	if err != nil {
		return err
	}
	if summary.Empty() {
		return withHint(model.ErrNoActiveSession)
	}
	return writeOut(cmd, "%s", describeSummary(summary))
}

func runSessionTUI(cmd *cobra.Command, a *app) error {
	m := tui.NewModel(a.engine, time.Now)
	program := tea.NewProgram(m, tea.WithAltScreen())
	final, err := program.Run()
	if err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	if fm, ok := final.(*tui.Model); ok && fm.Ended() {
		return writeOut(cmd, "%s", describeSummary(fm.Summary()))
	}
	if snap := a.engine.Snapshot(time.Now()); snap.State == model.StateActive {
		return writeOut(cmd, "Session still running, %s left. Resume with: cfdrill\n", stats.FormatDuration(snap.Remaining))
	}
	return nil
}

func printStatus(cmd *cobra.Command, a *app) error {
	snap := a.engine.Snapshot(time.Now())
	if snap.State != model.StateActive {
		return writeOut(cmd, "No active session.\nStart one with: cfdrill start --tags <tag,...> (see: cfdrill tags)\n")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Session %s\n", snap.SessionID)
	fmt.Fprintf(&b, "Rating %d, band %s, tags %s\n", snap.UserRating, training.Band(snap.UserRating), strings.Join(snap.Tags, ", "))
	fmt.Fprintf(&b, "Solved %d/%d, %s left\n\n", len(snap.Solved), len(snap.Problems), stats.FormatDuration(snap.Remaining))
	if err := stats.RenderProblems(&b, snap.Problems, snap.Solved); err != nil {
		return err
	}
	b.WriteString("Toggle a problem with: cfdrill solve <problem>\n")
	return writeOut(cmd, "%s", b.String())
}

func describeProfile(p model.UserProfile) string {
	if p.Rating == nil {
		return fmt.Sprintf("%s (unrated, using %d)", p.Handle, model.DefaultRating)
	}
	if p.Rank != "" {
		return fmt.Sprintf("%s (%s, %d)", p.Handle, p.Rank, *p.Rating)
	}
	return fmt.Sprintf("%s (%d)", p.Handle, *p.Rating)
}

func describeSummary(s model.TerminationSummary) string {
	title := "Session ended"
	if s.Reason == model.EndExpired {
		title = "Time is up"
	}
	out := fmt.Sprintf("%s: solved %d/%d (%d%%)\n", title, s.SolvedCount, s.TotalCount, stats.Percent(s.SolvedCount, s.TotalCount))
	if s.UnsolvedMovedToUpsolve {
		out += "Unsolved problems were moved to the upsolve backlog. See: cfdrill upsolve\n"
	}
	return out
}

func writeOut(cmd *cobra.Command, format string, args ...any) error {
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), format, args...); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
