package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"rigup/internal/session"
	"rigup/internal/tui"
)

// runEngine drives one resolve or install run with the output mode the
// terminal supports: a live progress table on a TTY, a status spinner plus
// a final table otherwise, and pure JSON with --json.
func runEngine(cmd *cobra.Command, a *app, phase string, noProgress bool, run func(context.Context) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	mode := tui.DetectMode(cmd.OutOrStdout(), noProgress, outputJSON)

	var runErr error
	switch mode {
	case tui.ModeTUI:
		model := tui.NewProgressModel(phase, progressColumns())
		for _, snap := range a.sess.Snapshot(a.cat) {
			if !snap.Status.Selected() {
				continue
			}
			name := snap.DisplayName
			if name == "" {
				name = snap.ID
			}
			model.AddRow(snap.ID, []string{name, "pending", "-", "-"})
		}
		if err := tui.RunWithWork(cmd.OutOrStdout(), model, func(send func(tea.Msg)) {
			stop := make(chan struct{})
			done := make(chan struct{})
			go func() {
				tui.ForwardEvents(a.sess.Events(), send, stop)
				close(done)
			}()
			runErr = run(ctx)
			close(stop)
			<-done
		}); err != nil {
			return err
		}

	default:
		status := tui.NewStatusWriter(cmd.ErrOrStderr())
		status.Update(phase + "...")
		runErr = run(ctx)
		status.Stop()
	}
	if runErr != nil {
		return runErr
	}

	if outputJSON {
		if err := writeRunJSON(cmd, a); err != nil {
			return err
		}
	} else {
		writeRunTable(cmd, a)
	}
	return failureSummary(a)
}

func progressColumns() []tui.Column {
	return []tui.Column{
		{Header: "NAME", Width: 18},
		{Header: "STATUS", Width: 18},
		{Header: "VERSION", Width: 14},
		{Header: "DETAIL", Width: 44},
	}
}

func writeRunTable(cmd *cobra.Command, a *app) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tVERSION\tDETAIL")
	for _, snap := range a.sess.Snapshot(a.cat) {
		if !snap.Status.Selected() {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			snap.ID,
			snap.Status,
			tui.NonEmptyOrDash(snap.Version),
			tui.NonEmptyOrDash(snap.Detail),
		)
	}
	w.Flush()
}

func writeRunJSON(cmd *cobra.Command, a *app) error {
	type runEntry struct {
		ID      string `json:"id"`
		Status  string `json:"status"`
		Version string `json:"version,omitempty"`
		Detail  string `json:"detail,omitempty"`
	}
	payload := struct {
		DryRun  bool       `json:"dry_run"`
		Entries []runEntry `json:"entries"`
	}{DryRun: a.sess.DryRun()}

	for _, snap := range a.sess.Snapshot(a.cat) {
		if !snap.Status.Selected() {
			continue
		}
		payload.Entries = append(payload.Entries, runEntry{
			ID:      snap.ID,
			Status:  snap.Status.String(),
			Version: snap.Version,
			Detail:  snap.Detail,
		})
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode run json: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

// failureSummary turns entry-scoped failures into a process exit code.
func failureSummary(a *app) error {
	var failed, cancelled []string
	for _, snap := range a.sess.Snapshot(a.cat) {
		switch snap.Status {
		case session.StatusResolutionFailed, session.StatusFailed:
			failed = append(failed, snap.ID)
		case session.StatusCancelled:
			cancelled = append(cancelled, snap.ID)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d entries failed: %s",
			len(failed), len(a.sess.SelectedIDs()), strings.Join(failed, ", "))
	}
	if len(cancelled) > 0 {
		return fmt.Errorf("cancelled with %d entries unfinished", len(cancelled))
	}
	return nil
}
