package plan

import (
	"fmt"
	"path/filepath"
	"strings"

	"rigup/internal/catalog"
	"rigup/internal/resolve"
	"rigup/internal/sysinfo"
)

// Kind identifies a concrete action in an entry's plan.
type Kind string

const (
	KindInstallPackages Kind = "install-packages"
	KindDownload        Kind = "download"
	KindExtract         Kind = "extract"
	KindLocalInstall    Kind = "local-install"
	KindRunShell        Kind = "run-shell"
	KindAppendPath      Kind = "append-path"
	KindShowNote        Kind = "show-note"
)

// Action is one fully-rendered step of an install plan. Everything needed
// to execute (or describe, for dry runs) is resolved at build time; only
// filesystem state checks happen later.
type Action struct {
	Kind    Kind
	Label   string // short human description
	Command string // shell command (install-packages, extract, local-install, run-shell)
	URL     string // download source
	Dest    string // download target file / extract target dir / profile file
	Line    string // append-path line
	Note    string // show-note text
}

// Plan is the ordered action sequence for a single entry. Built fresh for
// every execution request, never persisted.
type Plan struct {
	EntryID string
	Actions []Action
}

// Options configures plan construction.
type Options struct {
	// DownloadDir receives fetched artifacts.
	DownloadDir string
}

// Build converts a resolved entry into its action sequence: pre steps in
// catalog order, the primary install, then post steps in catalog order.
// No reordering, no cross-entry deduplication.
func Build(entry catalog.Entry, profile sysinfo.Profile, res resolve.Resolution, opts Options) Plan {
	installRoot := catalog.InstallRoot(entry, profile)

	p := Plan{EntryID: entry.ID}
	for _, step := range entry.Steps {
		if step.EffectivePhase() == catalog.PhasePre {
			p.Actions = append(p.Actions, stepActions(step, profile, installRoot)...)
		}
	}

	p.Actions = append(p.Actions, primaryActions(entry, profile, res, installRoot, opts)...)

	for _, step := range entry.Steps {
		if step.EffectivePhase() == catalog.PhasePost {
			p.Actions = append(p.Actions, stepActions(step, profile, installRoot)...)
		}
	}
	return p
}

func stepActions(step catalog.Step, profile sysinfo.Profile, installRoot string) []Action {
	switch step.Kind {
	case catalog.StepPackage:
		actions := make([]Action, 0, len(step.Packages))
		for _, pkg := range step.Packages {
			cmd, ok := profile.Manager.InstallCommand([]string{pkg})
			if !ok {
				actions = append(actions, Action{
					Kind: KindShowNote,
					Note: fmt.Sprintf("package manager unknown; install %s manually", pkg),
				})
				continue
			}
			actions = append(actions, Action{
				Kind:    KindInstallPackages,
				Label:   "install dependency " + pkg,
				Command: cmd,
			})
		}
		return actions

	case catalog.StepPathHint:
		rendered := catalog.Expand(step.Value, profile, installRoot)
		line := fmt.Sprintf("export PATH=\"$PATH:%s\"", rendered)
		if profile.FishShell() {
			line = "fish_add_path " + rendered
		}
		return []Action{{
			Kind:  KindAppendPath,
			Label: "add " + rendered + " to PATH",
			Dest:  profile.ShellProfile,
			Line:  line,
		}}

	case catalog.StepShell:
		cmd := catalog.Expand(step.Command, profile, installRoot)
		return []Action{{Kind: KindRunShell, Label: "run shell command", Command: cmd}}

	case catalog.StepNote:
		return []Action{{Kind: KindShowNote, Note: step.Value}}
	}
	return nil
}

func primaryActions(entry catalog.Entry, profile sysinfo.Profile, res resolve.Resolution, installRoot string, opts Options) []Action {
	if entry.Source.Kind == catalog.SourcePackageManager {
		return []Action{{
			Kind:    KindInstallPackages,
			Label:   "install " + entry.ID + " via " + profile.Manager.String(),
			Command: res.Command,
		}}
	}

	archivePath := filepath.Join(opts.DownloadDir, res.FileName)
	actions := []Action{{
		Kind:  KindDownload,
		Label: "download " + res.FileName,
		URL:   res.URL,
		Dest:  archivePath,
	}}

	if cmd, ok := localInstallCommand(profile.Manager, archivePath); ok {
		actions = append(actions, Action{
			Kind:    KindLocalInstall,
			Label:   "install downloaded package",
			Command: cmd,
		})
		return actions
	}

	if cmd, ok := extractCommand(archivePath, installRoot); ok {
		actions = append(actions, Action{
			Kind:    KindExtract,
			Label:   "extract into " + installRoot,
			Command: cmd,
			Dest:    installRoot,
		})
		return actions
	}

	actions = append(actions, Action{
		Kind: KindShowNote,
		Note: fmt.Sprintf("artifact saved to %s; no automatic install for this format", archivePath),
	})
	return actions
}

// localInstallCommand applies only when the artifact is a package the host
// manager can install directly.
func localInstallCommand(mgr sysinfo.Manager, archivePath string) (string, bool) {
	switch {
	case strings.HasSuffix(archivePath, ".deb") && mgr == sysinfo.ManagerApt:
		return mgr.LocalInstallCommand(archivePath)
	case strings.HasSuffix(archivePath, ".rpm") && mgr == sysinfo.ManagerDnf:
		return mgr.LocalInstallCommand(archivePath)
	}
	return "", false
}

func extractCommand(archivePath, installRoot string) (string, bool) {
	switch {
	case strings.HasSuffix(archivePath, ".tar.gz"), strings.HasSuffix(archivePath, ".tgz"):
		return fmt.Sprintf("tar -xzf %s -C %s", shellQuote(archivePath), shellQuote(installRoot)), true
	case strings.HasSuffix(archivePath, ".tar.xz"):
		return fmt.Sprintf("tar -xJf %s -C %s", shellQuote(archivePath), shellQuote(installRoot)), true
	case strings.HasSuffix(archivePath, ".zip"):
		return fmt.Sprintf("unzip -o -q %s -d %s", shellQuote(archivePath), shellQuote(installRoot)), true
	}
	return "", false
}

// shellQuote single-quotes s for sh, escaping embedded single quotes.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Describe renders a one-line description of an action for logs and
// dry-run reports.
func Describe(a Action) string {
	switch a.Kind {
	case KindDownload:
		return fmt.Sprintf("download %s -> %s", a.URL, a.Dest)
	case KindAppendPath:
		return fmt.Sprintf("append to %s: %s", a.Dest, a.Line)
	case KindShowNote:
		return "note: " + a.Note
	default:
		return a.Command
	}
}
