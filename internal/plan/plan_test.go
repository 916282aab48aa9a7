package plan

import (
	"strings"
	"testing"

	"rigup/internal/catalog"
	"rigup/internal/resolve"
	"rigup/internal/sysinfo"
)

func testProfile() sysinfo.Profile {
	return sysinfo.Profile{
		DistroID:     "ubuntu",
		Manager:      sysinfo.ManagerApt,
		Arch:         "amd64",
		XArch:        "x86_64",
		Home:         "/home/dev",
		Shell:        "/bin/bash",
		ShellProfile: "/home/dev/.bashrc",
	}
}

func kinds(p Plan) []Kind {
	out := make([]Kind, 0, len(p.Actions))
	for _, a := range p.Actions {
		out = append(out, a.Kind)
	}
	return out
}

func TestBuildOrdering(t *testing.T) {
	entry := catalog.Entry{
		ID:         "golang",
		InstallDir: "~/.local",
		Source: catalog.Source{
			Kind:     catalog.SourceOfficial,
			IndexURL: "https://go.dev/dl/",
		},
		Steps: []catalog.Step{
			{Kind: catalog.StepShell, Command: "rm -rf <install_root>/go", Phase: catalog.PhasePre},
			{Kind: catalog.StepPathHint, Value: "<install_root>/go/bin"},
			{Kind: catalog.StepNote, Value: "done"},
		},
	}
	res := resolve.Resolution{
		Version:  "1.22.0",
		URL:      "https://go.dev/dl/go1.22.0.linux-amd64.tar.gz",
		FileName: "go1.22.0.linux-amd64.tar.gz",
	}

	p := Build(entry, testProfile(), res, Options{DownloadDir: "/home/dev/Downloads/rigup"})

	want := []Kind{KindRunShell, KindDownload, KindExtract, KindAppendPath, KindShowNote}
	got := kinds(p)
	if len(got) != len(want) {
		t.Fatalf("expected %d actions, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("action %d = %s, want %s (all: %v)", i, got[i], want[i], got)
		}
	}

	if p.Actions[0].Command != "rm -rf /home/dev/.local/go" {
		t.Fatalf("pre shell not expanded: %q", p.Actions[0].Command)
	}
	if p.Actions[1].Dest != "/home/dev/Downloads/rigup/go1.22.0.linux-amd64.tar.gz" {
		t.Fatalf("unexpected download dest %q", p.Actions[1].Dest)
	}
	if !strings.Contains(p.Actions[2].Command, "tar -xzf") || !strings.Contains(p.Actions[2].Command, "/home/dev/.local") {
		t.Fatalf("unexpected extract command %q", p.Actions[2].Command)
	}
	if p.Actions[3].Line != `export PATH="$PATH:/home/dev/.local/go/bin"` {
		t.Fatalf("unexpected path line %q", p.Actions[3].Line)
	}
	if p.Actions[3].Dest != "/home/dev/.bashrc" {
		t.Fatalf("unexpected profile dest %q", p.Actions[3].Dest)
	}
}

func TestBuildPackageSource(t *testing.T) {
	entry := catalog.Entry{
		ID:     "ripgrep",
		Source: catalog.Source{Kind: catalog.SourcePackageManager, Packages: map[string][]string{"apt": {"ripgrep"}}},
	}
	res := resolve.Resolution{Version: "14.1.0", Command: "sudo apt update && sudo apt install -y ripgrep"}

	p := Build(entry, testProfile(), res, Options{})
	if len(p.Actions) != 1 {
		t.Fatalf("expected single action, got %v", kinds(p))
	}
	if p.Actions[0].Kind != KindInstallPackages || p.Actions[0].Command != res.Command {
		t.Fatalf("unexpected action %+v", p.Actions[0])
	}
}

func TestBuildPackageDepsExpandInOrder(t *testing.T) {
	entry := catalog.Entry{
		ID:     "toolbox",
		Source: catalog.Source{Kind: catalog.SourcePackageManager, Packages: map[string][]string{"apt": {"toolbox"}}},
		Steps: []catalog.Step{
			{Kind: catalog.StepPackage, Packages: []string{"git", "curl", "make"}},
		},
	}
	res := resolve.Resolution{Command: "sudo apt update && sudo apt install -y toolbox"}

	p := Build(entry, testProfile(), res, Options{})
	if len(p.Actions) != 4 {
		t.Fatalf("expected 4 actions, got %v", kinds(p))
	}
	for i, pkg := range []string{"git", "curl", "make"} {
		a := p.Actions[i]
		if a.Kind != KindInstallPackages {
			t.Fatalf("action %d kind %s", i, a.Kind)
		}
		if !strings.HasSuffix(a.Command, "install -y "+pkg) {
			t.Fatalf("action %d command %q does not target %s", i, a.Command, pkg)
		}
	}
}

func TestBuildPackageDepsUnknownManager(t *testing.T) {
	profile := testProfile()
	profile.Manager = sysinfo.ManagerUnknown

	entry := catalog.Entry{
		ID:     "thing",
		Source: catalog.Source{Kind: catalog.SourceGitHub, Repo: "o/thing", AssetPattern: "x"},
		Steps:  []catalog.Step{{Kind: catalog.StepPackage, Packages: []string{"git"}}},
	}
	res := resolve.Resolution{URL: "https://dl.example/thing.tar.gz", FileName: "thing.tar.gz", Version: "1.0"}

	p := Build(entry, profile, res, Options{DownloadDir: "/tmp"})
	if p.Actions[0].Kind != KindShowNote {
		t.Fatalf("unknown manager should degrade dependency step to a note, got %s", p.Actions[0].Kind)
	}
}

func TestBuildLocalInstallForDeb(t *testing.T) {
	entry := catalog.Entry{
		ID:     "vscode",
		Source: catalog.Source{Kind: catalog.SourceGitHub, Repo: "o/r", AssetPattern: `\.deb$`},
	}
	res := resolve.Resolution{URL: "https://dl.example/code.deb", FileName: "code.deb", Version: "1.90"}

	p := Build(entry, testProfile(), res, Options{DownloadDir: "/tmp/dl"})
	got := kinds(p)
	if len(got) != 2 || got[0] != KindDownload || got[1] != KindLocalInstall {
		t.Fatalf("expected download+local-install, got %v", got)
	}
	if p.Actions[1].Command != "sudo apt install -y '/tmp/dl/code.deb'" {
		t.Fatalf("unexpected local install command %q", p.Actions[1].Command)
	}
}

func TestBuildUnknownArtifactFormat(t *testing.T) {
	entry := catalog.Entry{
		ID:     "binary",
		Source: catalog.Source{Kind: catalog.SourceGitHub, Repo: "o/r", AssetPattern: "bin"},
	}
	res := resolve.Resolution{URL: "https://dl.example/tool-linux", FileName: "tool-linux", Version: "2.0"}

	p := Build(entry, testProfile(), res, Options{DownloadDir: "/tmp/dl"})
	got := kinds(p)
	if len(got) != 2 || got[1] != KindShowNote {
		t.Fatalf("expected download+note for raw binary, got %v", got)
	}
}

func TestBuildFishPathLine(t *testing.T) {
	profile := testProfile()
	profile.Shell = "/usr/bin/fish"
	profile.ShellProfile = "/home/dev/.config/fish/config.fish"

	entry := catalog.Entry{
		ID:         "golang",
		InstallDir: "~/.local",
		Source:     catalog.Source{Kind: catalog.SourceOfficial},
		Steps:      []catalog.Step{{Kind: catalog.StepPathHint, Value: "<install_root>/go/bin"}},
	}
	res := resolve.Resolution{URL: "https://x/go.tar.gz", FileName: "go.tar.gz"}

	p := Build(entry, profile, res, Options{DownloadDir: "/tmp"})
	last := p.Actions[len(p.Actions)-1]
	if last.Line != "fish_add_path /home/dev/.local/go/bin" {
		t.Fatalf("unexpected fish line %q", last.Line)
	}
}

func TestExtractCommandQuotesApostrophes(t *testing.T) {
	cmd, ok := extractCommand("/tmp/dl/go.tar.gz", "/home/o'brien/.local")
	if !ok {
		t.Fatal("expected an extract command")
	}
	if !strings.Contains(cmd, `'/home/o'\''brien/.local'`) {
		t.Fatalf("install root not shell-quoted: %q", cmd)
	}
	if !strings.Contains(cmd, "tar -xzf '/tmp/dl/go.tar.gz'") {
		t.Fatalf("archive path not quoted: %q", cmd)
	}
}

func TestDescribe(t *testing.T) {
	if got := Describe(Action{Kind: KindDownload, URL: "u", Dest: "d"}); got != "download u -> d" {
		t.Fatalf("describe download: %q", got)
	}
	if got := Describe(Action{Kind: KindShowNote, Note: "hi"}); got != "note: hi" {
		t.Fatalf("describe note: %q", got)
	}
	if got := Describe(Action{Kind: KindRunShell, Command: "ls"}); got != "ls" {
		t.Fatalf("describe shell: %q", got)
	}
}
