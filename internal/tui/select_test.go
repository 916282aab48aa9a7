package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"rigup/internal/catalog"
	"rigup/internal/session"
)

func testEngine() (*session.Engine, catalog.Catalog) {
	cat := catalog.Catalog{Version: 1, Software: []catalog.Entry{
		{ID: "golang", DisplayName: "Go", Default: true, Source: catalog.Source{Kind: catalog.SourceOfficial, IndexURL: "https://go.dev/dl/"}},
		{ID: "ripgrep", DisplayName: "ripgrep", Source: catalog.Source{Kind: catalog.SourcePackageManager, Packages: map[string][]string{"apt": {"ripgrep"}}}},
	}}
	eng := &session.Engine{Catalog: cat, Session: session.New(cat)}
	return eng, cat
}

func pressKey(t *testing.T, m installerModel, key string) installerModel {
	t.Helper()
	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	if key == " " {
		msg = tea.KeyMsg{Type: tea.KeySpace}
	}
	updated, _ := m.Update(msg)
	return updated.(installerModel)
}

func TestInstallerToggleSelection(t *testing.T) {
	eng, cat := testEngine()
	m := newInstallerModel(cat, eng)

	m = pressKey(t, m, "j")
	m = pressKey(t, m, " ")
	if st, _ := eng.Session.Status("ripgrep"); st != session.StatusSelected {
		t.Fatalf("ripgrep status %s after toggle", st)
	}

	m = pressKey(t, m, " ")
	if st, _ := eng.Session.Status("ripgrep"); st != session.StatusNotSelected {
		t.Fatalf("ripgrep status %s after second toggle", st)
	}
}

func TestInstallerSelectAllAndNone(t *testing.T) {
	eng, cat := testEngine()
	m := newInstallerModel(cat, eng)

	m = pressKey(t, m, "a")
	if got := len(eng.Session.SelectedIDs()); got != 2 {
		t.Fatalf("selected %d after a", got)
	}
	m = pressKey(t, m, "n")
	if got := len(eng.Session.SelectedIDs()); got != 0 {
		t.Fatalf("selected %d after n", got)
	}
}

func TestInstallerDryRunToggle(t *testing.T) {
	eng, cat := testEngine()
	m := newInstallerModel(cat, eng)

	m = pressKey(t, m, "d")
	if !eng.Session.DryRun() {
		t.Fatal("dry run not enabled")
	}
	if !strings.Contains(m.View(), "DRY RUN") {
		t.Fatal("view missing dry run indicator")
	}
}

func TestInstallerViewShowsRows(t *testing.T) {
	eng, cat := testEngine()
	m := newInstallerModel(cat, eng)

	view := m.View()
	if !strings.Contains(view, "Go") || !strings.Contains(view, "ripgrep") {
		t.Fatalf("view missing entries:\n%s", view)
	}
	if !strings.Contains(view, "[x]") {
		t.Fatal("default entry should render selected")
	}
	if !strings.Contains(view, "STATUS") || !strings.Contains(view, "VERSION") {
		t.Fatalf("view missing headers:\n%s", view)
	}
}

func TestInstallerProgressEventsReachLog(t *testing.T) {
	eng, cat := testEngine()
	m := newInstallerModel(cat, eng)

	updated, cmd := m.Update(progressMsg{EntryID: "golang", Status: session.StatusResolved, Detail: "1.22.0"})
	m = updated.(installerModel)
	if cmd == nil {
		t.Fatal("expected the model to keep listening for events")
	}
	if len(m.logLines) != 1 || !strings.Contains(m.logLines[0], "golang: resolved") {
		t.Fatalf("log lines %v", m.logLines)
	}
}

func TestInstallerQuitReleasesEventListener(t *testing.T) {
	eng, cat := testEngine()
	m := newInstallerModel(cat, eng)

	m = pressKey(t, m, "q")
	select {
	case <-m.done:
	default:
		t.Fatal("quit should release the event listener")
	}
	if msg := listenEvents(eng.Session.Events(), m.done)(); msg != nil {
		t.Fatalf("listener should return nil after quit, got %v", msg)
	}
}

func TestInstallerQuitMidRunWaitsForRunDone(t *testing.T) {
	eng, cat := testEngine()
	m := newInstallerModel(cat, eng)
	m.running = true

	m = pressKey(t, m, "q")
	select {
	case <-m.done:
		t.Fatal("listener released while the run is still finishing")
	default:
	}

	updated, _ := m.Update(runDoneMsg{})
	m = updated.(installerModel)
	select {
	case <-m.done:
	default:
		t.Fatal("run completion during quit should release the listener")
	}
}

func TestEventFields(t *testing.T) {
	fields := EventFields(session.ProgressEvent{EntryID: "golang", Status: session.StatusResolved, Detail: "1.22.0"})
	if fields["STATUS"] != "resolved" || fields["VERSION"] != "1.22.0" {
		t.Fatalf("unexpected fields %v", fields)
	}

	fields = EventFields(session.ProgressEvent{EntryID: "neovim", Status: session.StatusResolutionFailed, Detail: "no matching asset"})
	if fields["STATUS"] != "resolution-failed" || fields["DETAIL"] != "no matching asset" {
		t.Fatalf("unexpected fields %v", fields)
	}
}
