package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleCatalog = `
version: 1
software:
  - id: golang
    display_name: Go
    category: languages
    default: true
    install_dir: ~/.local
    source:
      kind: official_source
      index_url: https://go.dev/dl/
      version_regex: go([0-9.]+[0-9])\.linux
      download_url_regex: /dl/go[0-9.]+\.linux-{arch}\.tar\.gz
    setup_steps:
      - kind: path_hint
        value: <install_root>/go/bin
  - id: ripgrep
    display_name: ripgrep
    source:
      kind: package_manager
      packages:
        apt: [ripgrep]
        pacman: [ripgrep]
  - id: lazygit
    display_name: lazygit
    source:
      kind: github
      repo: jesseduffield/lazygit
      asset_pattern: lazygit_.*_linux_{xarch}\.tar\.gz$
    setup_steps:
      - kind: package
        packages: [git]
      - kind: note
        value: enjoy
`

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rigup.yaml")
	if err := os.WriteFile(path, []byte(sampleCatalog), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(c.Software) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(c.Software))
	}

	entry, ok := c.Get("golang")
	if !ok {
		t.Fatal("golang entry missing")
	}
	if entry.Source.Kind != SourceOfficial {
		t.Fatalf("unexpected source kind %q", entry.Source.Kind)
	}
	if entry.InstallDir != "~/.local" {
		t.Fatalf("unexpected install dir %q", entry.InstallDir)
	}

	if got := c.IDs(); strings.Join(got, ",") != "golang,ripgrep,lazygit" {
		t.Fatalf("unexpected id order: %v", got)
	}
	if got := c.DefaultIDs(); strings.Join(got, ",") != "golang" {
		t.Fatalf("unexpected defaults: %v", got)
	}
}

func TestLoadMissingFileUsesEmbedded(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("load embedded: %v", err)
	}
	if len(c.Software) == 0 {
		t.Fatal("embedded catalog is empty")
	}
	if _, ok := c.Get("golang"); !ok {
		t.Fatal("embedded catalog missing golang entry")
	}
}

func TestStepEffectivePhase(t *testing.T) {
	cases := []struct {
		step Step
		want Phase
	}{
		{Step{Kind: StepPackage}, PhasePre},
		{Step{Kind: StepPathHint}, PhasePost},
		{Step{Kind: StepNote}, PhasePost},
		{Step{Kind: StepShell}, PhasePost},
		{Step{Kind: StepShell, Phase: PhasePre}, PhasePre},
		{Step{Kind: StepPackage, Phase: PhasePost}, PhasePost},
	}
	for _, tc := range cases {
		if got := tc.step.EffectivePhase(); got != tc.want {
			t.Errorf("EffectivePhase(%s/%s) = %s, want %s", tc.step.Kind, tc.step.Phase, got, tc.want)
		}
	}
}

func TestParseRejectsInvalidYAML(t *testing.T) {
	if _, err := Parse([]byte(": not yaml")); err == nil {
		t.Fatal("expected error for invalid yaml")
	}
}

func TestValidateFindings(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "duplicate id",
			yaml: `
software:
  - {id: a, display_name: A, source: {kind: package_manager, packages: {apt: [a]}}}
  - {id: a, display_name: A2, source: {kind: package_manager, packages: {apt: [a]}}}
`,
			want: "duplicate id",
		},
		{
			name: "bad regex",
			yaml: `
software:
  - id: b
    display_name: B
    source:
      kind: official_source
      index_url: https://example.com/
      version_regex: "go([0-9"
      download_url_regex: ok
`,
			want: "does not compile",
		},
		{
			name: "bad repo",
			yaml: `
software:
  - {id: c, display_name: C, source: {kind: github, repo: nope, asset_pattern: x}}
`,
			want: "owner/name",
		},
		{
			name: "unknown source kind",
			yaml: `
software:
  - {id: d, display_name: D, source: {kind: mystery}}
`,
			want: "unknown source kind",
		},
		{
			name: "unknown manager",
			yaml: `
software:
  - {id: e, display_name: E, source: {kind: package_manager, packages: {brew: [e]}}}
`,
			want: "unknown package manager",
		},
		{
			name: "step missing command",
			yaml: `
software:
  - id: f
    display_name: F
    source: {kind: package_manager, packages: {apt: [f]}}
    setup_steps:
      - kind: shell
`,
			want: "needs a command",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestValidateAcceptsPlaceholderRegex(t *testing.T) {
	yaml := `
software:
  - id: g
    display_name: G
    source:
      kind: github
      repo: owner/name
      asset_pattern: tool_.*_linux_{xarch}\.tar\.gz$
`
	if _, err := Parse([]byte(yaml)); err != nil {
		t.Fatalf("placeholder pattern should validate: %v", err)
	}
}
