package execute

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"rigup/internal/plan"
)

// Execution failure kinds.
var (
	ErrProcessExit  = errors.New("process exited non-zero")
	ErrProfileWrite = errors.New("profile write failed")
)

// Outcome classifies one action's result.
type Outcome string

const (
	OutcomeOK        Outcome = "ok"
	OutcomeFailed    Outcome = "failed"
	OutcomeSimulated Outcome = "simulated"
	OutcomeSkipped   Outcome = "skipped"
)

// ActionResult is the recorded outcome of one plan action.
type ActionResult struct {
	Action  plan.Action
	Outcome Outcome
	Message string
}

// Report aggregates an entry's execution. Err is the first failure (or the
// cancellation cause); later actions appear as skipped.
type Report struct {
	EntryID string
	Results []ActionResult
	Err     error
}

// Cancelled reports whether the run stopped because of cancellation rather
// than an action failure.
func (r Report) Cancelled() bool {
	return errors.Is(r.Err, context.Canceled) || errors.Is(r.Err, context.DeadlineExceeded)
}

type Logger interface {
	Printf(format string, v ...any)
}

type noopLogger struct{}

func (noopLogger) Printf(string, ...any) {}

// Executor runs action plans. One executor serves all entries; each call
// to Run handles a single entry's plan strictly in order.
type Executor struct {
	Runner     Runner
	Downloader Downloader
	Logger     Logger

	// LogOutput receives live subprocess output when set.
	LogOutput io.Writer
}

// New builds an executor with real subprocess and HTTP collaborators.
func New() *Executor {
	return &Executor{
		Runner:     CmdRunner{},
		Downloader: NewHTTPDownloader(),
		Logger:     noopLogger{},
	}
}

func (x *Executor) logf(format string, v ...any) {
	if x == nil || x.Logger == nil {
		return
	}
	x.Logger.Printf(format, v...)
}

// Run executes the plan. A failing action aborts the rest of this plan
// only. With dryRun set nothing is spawned, written, or downloaded; every
// action is recorded as simulated with its rendered operation.
func (x *Executor) Run(ctx context.Context, p plan.Plan, dryRun bool) Report {
	if ctx == nil {
		ctx = context.Background()
	}
	report := Report{EntryID: p.EntryID}

	for i, action := range p.Actions {
		if err := ctx.Err(); err != nil {
			report.Err = err
			report.Results = append(report.Results, skipRemaining(p.Actions[i:], "cancelled")...)
			break
		}

		if dryRun {
			report.Results = append(report.Results, ActionResult{
				Action:  action,
				Outcome: OutcomeSimulated,
				Message: "would execute: " + plan.Describe(action),
			})
			continue
		}

		message, err := x.apply(ctx, action)
		if err != nil {
			// Cancellation mid-action is not an action failure.
			if ctxErr := ctx.Err(); ctxErr != nil {
				err = ctxErr
			}
			x.logf("entry=%s action=%s failed: %v", p.EntryID, action.Kind, err)
			report.Err = err
			report.Results = append(report.Results, ActionResult{
				Action:  action,
				Outcome: OutcomeFailed,
				Message: err.Error(),
			})
			report.Results = append(report.Results, skipRemaining(p.Actions[i+1:], "previous action failed")...)
			break
		}

		x.logf("entry=%s action=%s ok: %s", p.EntryID, action.Kind, message)
		report.Results = append(report.Results, ActionResult{
			Action:  action,
			Outcome: OutcomeOK,
			Message: message,
		})
	}

	return report
}

func skipRemaining(actions []plan.Action, reason string) []ActionResult {
	results := make([]ActionResult, 0, len(actions))
	for _, a := range actions {
		results = append(results, ActionResult{Action: a, Outcome: OutcomeSkipped, Message: reason})
	}
	return results
}

func (x *Executor) apply(ctx context.Context, action plan.Action) (string, error) {
	switch action.Kind {
	case plan.KindInstallPackages, plan.KindRunShell, plan.KindLocalInstall:
		return x.runShell(ctx, action.Command)

	case plan.KindDownload:
		n, err := x.Downloader.Download(ctx, action.URL, action.Dest)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("downloaded %s (%d bytes)", action.Dest, n), nil

	case plan.KindExtract:
		if err := os.MkdirAll(action.Dest, 0o755); err != nil {
			return "", fmt.Errorf("ensure install dir: %w", err)
		}
		return x.runShell(ctx, action.Command)

	case plan.KindAppendPath:
		added, err := AppendPathLine(action.Dest, action.Line)
		if err != nil {
			return "", err
		}
		if !added {
			return "path already configured in " + action.Dest, nil
		}
		return "appended to " + action.Dest, nil

	case plan.KindShowNote:
		return action.Note, nil

	default:
		return "", fmt.Errorf("unknown action kind %q", action.Kind)
	}
}

// runShell executes a rendered command through the system shell.
func (x *Executor) runShell(ctx context.Context, command string) (string, error) {
	res, err := x.Runner.Run(ctx, "sh", []string{"-c", command}, x.LogOutput, x.LogOutput)
	if err != nil {
		detail := strings.TrimSpace(string(res.Stderr))
		if detail == "" {
			detail = err.Error()
		}
		return "", fmt.Errorf("%w: %s: %s", ErrProcessExit, command, detail)
	}
	return command, nil
}
