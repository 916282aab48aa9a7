package catalog

import (
	"testing"

	"rigup/internal/sysinfo"
)

func testProfile() sysinfo.Profile {
	return sysinfo.Profile{
		DistroID: "ubuntu",
		Manager:  sysinfo.ManagerApt,
		Arch:     "amd64",
		XArch:    "x86_64",
		Home:     "/home/dev",
		Shell:    "/bin/bash",
	}
}

func TestExpand(t *testing.T) {
	p := testProfile()
	cases := []struct {
		in   string
		root string
		want string
	}{
		{"go1.22.linux-{arch}.tar.gz", "", "go1.22.linux-amd64.tar.gz"},
		{"nvim-linux-{xarch}", "", "nvim-linux-x86_64"},
		{"tool-{xarch_dash}", "", "tool-x86-64"},
		{"<install_root>/go/bin", "/home/dev/.local", "/home/dev/.local/go/bin"},
		{"{home}/bin", "", "/home/dev/bin"},
		{"literal {braces} stay", "", "literal {braces} stay"},
		{"go[0-9.]{2,}", "", "go[0-9.]{2,}"},
		{"", "", ""},
	}
	for _, tc := range cases {
		if got := Expand(tc.in, p, tc.root); got != tc.want {
			t.Errorf("Expand(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestExpandIdempotent(t *testing.T) {
	p := testProfile()
	once := Expand("path-{arch}-{xarch}", p, "/root/x")
	twice := Expand(once, p, "/root/x")
	if once != twice {
		t.Fatalf("expansion not idempotent: %q vs %q", once, twice)
	}
}

func TestInstallRoot(t *testing.T) {
	p := testProfile()

	entry := Entry{InstallDir: "~/.local/opt"}
	if got := InstallRoot(entry, p); got != "/home/dev/.local/opt" {
		t.Fatalf("tilde expansion failed: %q", got)
	}

	if got := InstallRoot(Entry{}, p); got != "/home/dev" {
		t.Fatalf("empty install dir should fall back to home, got %q", got)
	}

	if got := InstallRoot(Entry{InstallDir: "/opt/tools"}, p); got != "/opt/tools" {
		t.Fatalf("absolute dir should pass through, got %q", got)
	}

	if got := InstallRoot(Entry{InstallDir: "{home}/sdk"}, p); got != "/home/dev/sdk" {
		t.Fatalf("placeholder install dir failed: %q", got)
	}
}

func TestExpandTilde(t *testing.T) {
	if got := ExpandTilde("~", "/home/dev"); got != "/home/dev" {
		t.Fatalf("bare tilde: %q", got)
	}
	if got := ExpandTilde("~/x/y", "/home/dev"); got != "/home/dev/x/y" {
		t.Fatalf("tilde prefix: %q", got)
	}
	if got := ExpandTilde("no~tilde", "/home/dev"); got != "no~tilde" {
		t.Fatalf("interior tilde should stay: %q", got)
	}
}
