package session

import (
	"context"
	"errors"
	"testing"

	"rigup/internal/catalog"
	"rigup/internal/resolve"
)

func testCatalog() catalog.Catalog {
	return catalog.Catalog{
		Version: 1,
		Software: []catalog.Entry{
			{ID: "golang", DisplayName: "Go", Default: true, Source: catalog.Source{Kind: catalog.SourceOfficial, IndexURL: "https://go.dev/dl/"}},
			{ID: "ripgrep", DisplayName: "ripgrep", Source: catalog.Source{Kind: catalog.SourcePackageManager, Packages: map[string][]string{"apt": {"ripgrep"}}}},
			{ID: "neovim", DisplayName: "Neovim", Source: catalog.Source{Kind: catalog.SourceGitHub, Repo: "neovim/neovim", AssetPattern: "nvim"}},
		},
	}
}

func mustStatus(t *testing.T, s *Session, id string, want Status) {
	t.Helper()
	got, ok := s.Status(id)
	if !ok {
		t.Fatalf("unknown entry %s", id)
	}
	if got != want {
		t.Fatalf("%s status = %s, want %s", id, got, want)
	}
}

func TestNewSelectsDefaults(t *testing.T) {
	s := New(testCatalog())
	mustStatus(t, s, "golang", StatusSelected)
	mustStatus(t, s, "ripgrep", StatusNotSelected)

	ids := s.SelectedIDs()
	if len(ids) != 1 || ids[0] != "golang" {
		t.Fatalf("selected ids = %v", ids)
	}
}

func TestToggle(t *testing.T) {
	s := New(testCatalog())

	if err := s.Toggle("ripgrep"); err != nil {
		t.Fatal(err)
	}
	mustStatus(t, s, "ripgrep", StatusSelected)

	if err := s.Toggle("ripgrep"); err != nil {
		t.Fatal(err)
	}
	mustStatus(t, s, "ripgrep", StatusNotSelected)

	if err := s.Toggle("nope"); !errors.Is(err, ErrUnknownEntry) {
		t.Fatalf("expected ErrUnknownEntry, got %v", err)
	}
}

func TestToggleRejectedInFlight(t *testing.T) {
	s := New(testCatalog())
	if !s.BeginResolve("golang") {
		t.Fatal("claim failed")
	}
	if err := s.Toggle("golang"); !errors.Is(err, ErrEntryBusy) {
		t.Fatalf("expected ErrEntryBusy, got %v", err)
	}
	s.FinishResolve("golang", resolve.Resolution{Version: "1.22.0"}, nil)
	if err := s.Toggle("golang"); err != nil {
		t.Fatalf("toggle after resolve: %v", err)
	}
	mustStatus(t, s, "golang", StatusNotSelected)
}

func TestSelectAllDeselectAll(t *testing.T) {
	s := New(testCatalog())
	s.SelectAll()
	if got := len(s.SelectedIDs()); got != 3 {
		t.Fatalf("selected %d entries", got)
	}

	if !s.BeginResolve("neovim") {
		t.Fatal("claim failed")
	}
	s.DeselectAll()
	mustStatus(t, s, "golang", StatusNotSelected)
	mustStatus(t, s, "neovim", StatusResolving)
}

func TestBeginResolveAtMostOnce(t *testing.T) {
	s := New(testCatalog())
	if !s.BeginResolve("golang") {
		t.Fatal("first claim failed")
	}
	if s.BeginResolve("golang") {
		t.Fatal("second claim should fail while resolving")
	}
	s.FinishResolve("golang", resolve.Resolution{Version: "1.22.0"}, nil)
	if !s.BeginResolve("golang") {
		t.Fatal("re-resolve after success should be allowed")
	}
}

func TestBeginInstallRequiresResolved(t *testing.T) {
	s := New(testCatalog())
	if s.BeginInstall("golang") {
		t.Fatal("install must not start from selected")
	}
	s.BeginResolve("golang")
	if s.BeginInstall("golang") {
		t.Fatal("install must not start mid-resolution")
	}
	s.FinishResolve("golang", resolve.Resolution{Version: "1.22.0"}, nil)
	if !s.BeginInstall("golang") {
		t.Fatal("install should start from resolved")
	}
}

func TestFinishResolveFailure(t *testing.T) {
	s := New(testCatalog())
	s.BeginResolve("golang")
	s.FinishResolve("golang", resolve.Resolution{}, resolve.ErrPatternNotFound)
	mustStatus(t, s, "golang", StatusResolutionFailed)

	// Failed resolution loops back to resolving on retry.
	if !s.BeginResolve("golang") {
		t.Fatal("retry after failure should be allowed")
	}
}

func TestFinishResolveCancelled(t *testing.T) {
	s := New(testCatalog())
	s.BeginResolve("golang")
	s.FinishResolve("golang", resolve.Resolution{}, context.Canceled)
	mustStatus(t, s, "golang", StatusCancelled)
}

func TestTerminalEntryRestartsFromScratch(t *testing.T) {
	s := New(testCatalog())
	s.BeginResolve("golang")
	s.FinishResolve("golang", resolve.Resolution{Version: "1.22.0"}, nil)
	s.BeginInstall("golang")
	s.FinishInstall("golang", errors.New("boom"), false)
	mustStatus(t, s, "golang", StatusFailed)

	if !s.BeginResolve("golang") {
		t.Fatal("failed entry should be re-runnable")
	}
	mustStatus(t, s, "golang", StatusResolving)
}

func TestDryRunFlag(t *testing.T) {
	s := New(testCatalog())
	if s.DryRun() {
		t.Fatal("dry run should default off")
	}
	if !s.ToggleDryRun() {
		t.Fatal("toggle should report on")
	}
	if !s.DryRun() {
		t.Fatal("flag not set")
	}
}

func TestEventsStream(t *testing.T) {
	s := New(testCatalog())
	// Drain seed state: New emits nothing, so the first event is the toggle.
	if err := s.Toggle("ripgrep"); err != nil {
		t.Fatal(err)
	}
	select {
	case ev := <-s.Events():
		if ev.EntryID != "ripgrep" || ev.Status != StatusSelected {
			t.Fatalf("unexpected event %+v", ev)
		}
	default:
		t.Fatal("no event emitted")
	}
}

func TestSnapshotCarriesVersionAndNames(t *testing.T) {
	cat := testCatalog()
	s := New(cat)
	s.BeginResolve("golang")
	s.FinishResolve("golang", resolve.Resolution{Version: "1.22.0", URL: "https://go.dev/dl/go1.22.0.linux-amd64.tar.gz"}, nil)

	snaps := s.Snapshot(cat)
	if len(snaps) != 3 {
		t.Fatalf("snapshot size %d", len(snaps))
	}
	if snaps[0].ID != "golang" || snaps[0].Version != "1.22.0" || snaps[0].DisplayName != "Go" {
		t.Fatalf("unexpected snapshot %+v", snaps[0])
	}
	if snaps[0].Status != StatusResolved {
		t.Fatalf("snapshot status %s", snaps[0].Status)
	}
}
