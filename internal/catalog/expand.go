package catalog

import (
	"path/filepath"
	"strings"

	"rigup/internal/sysinfo"
)

// installRootToken is the placeholder path hints use to refer to the entry's
// expanded install directory.
const installRootToken = "<install_root>"

// Expand substitutes the documented placeholders in a catalog template.
// Unknown {...} sequences are left verbatim: catalogs may legitimately
// contain braces (regex quantifiers, shell expansions). Expanding an
// already-expanded string is a no-op.
func Expand(template string, profile sysinfo.Profile, installRoot string) string {
	r := strings.NewReplacer(
		"{arch}", profile.Arch,
		"{xarch}", profile.XArch,
		"{xarch_dash}", strings.ReplaceAll(profile.XArch, "_", "-"),
		"{home}", profile.Home,
		installRootToken, installRoot,
	)
	return r.Replace(template)
}

// InstallRoot resolves an entry's install directory: tilde and placeholder
// expansion, defaulting to the home directory when unset.
func InstallRoot(entry Entry, profile sysinfo.Profile) string {
	dir := strings.TrimSpace(entry.InstallDir)
	if dir == "" {
		return profile.Home
	}
	dir = Expand(dir, profile, profile.Home)
	return ExpandTilde(dir, profile.Home)
}

// ExpandTilde rewrites ~ and ~/rest against the given home directory.
func ExpandTilde(path, home string) string {
	if path == "~" {
		return home
	}
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		return filepath.Join(home, rest)
	}
	return path
}
