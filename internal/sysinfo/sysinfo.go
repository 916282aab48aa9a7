package sysinfo

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Profile captures the host facts the resolver and executor need: the
// distribution, its package manager, CPU architecture spellings, and where
// PATH edits should land.
type Profile struct {
	DistroID     string
	Manager      Manager
	Arch         string // common spelling: amd64, arm64, 386
	XArch        string // kernel spelling: x86_64, aarch64, x86
	Home         string
	Shell        string
	ShellProfile string
}

// Detect builds a Profile for the current host. Detection never fails hard:
// an unreadable os-release or unknown shell degrades to fallbacks and the
// package manager may come back ManagerUnknown.
func Detect() (Profile, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Profile{}, fmt.Errorf("resolve home directory: %w", err)
	}

	distroID, idLike := "", ""
	if data, err := os.ReadFile("/etc/os-release"); err == nil {
		distroID, idLike = ParseOSRelease(string(data))
	}

	mgr := ManagerFor(distroID, idLike)
	if mgr == ManagerUnknown {
		mgr = probeManager(exec.LookPath)
	}

	shell := os.Getenv("SHELL")
	return Profile{
		DistroID:     distroID,
		Manager:      mgr,
		Arch:         CommonArch(runtime.GOARCH),
		XArch:        KernelArch(runtime.GOARCH),
		Home:         home,
		Shell:        shell,
		ShellProfile: filepath.Join(home, ShellProfileName(shell)),
	}, nil
}

// ParseOSRelease extracts the ID and ID_LIKE fields from os-release content.
func ParseOSRelease(content string) (id, idLike string) {
	for _, line := range strings.Split(content, "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok {
			continue
		}
		value = strings.Trim(value, `"`)
		switch key {
		case "ID":
			id = value
		case "ID_LIKE":
			idLike = value
		}
	}
	return id, idLike
}

// ShellProfileName maps a login shell to the profile file rigup appends
// PATH lines to. Unknown shells fall back to .bashrc.
func ShellProfileName(shell string) string {
	switch {
	case strings.Contains(shell, "zsh"):
		return ".zshrc"
	case strings.Contains(shell, "fish"):
		return filepath.Join(".config", "fish", "config.fish")
	default:
		return ".bashrc"
	}
}

// FishShell reports whether the profile's shell wants fish_add_path rather
// than a POSIX export line.
func (p Profile) FishShell() bool {
	return strings.Contains(p.Shell, "fish")
}

// CommonArch converts a GOARCH value to the spelling most download URLs use.
func CommonArch(goarch string) string {
	switch goarch {
	case "amd64":
		return "amd64"
	case "arm64":
		return "arm64"
	case "386":
		return "386"
	default:
		return goarch
	}
}

// KernelArch converts a GOARCH value to the uname -m spelling.
func KernelArch(goarch string) string {
	switch goarch {
	case "amd64":
		return "x86_64"
	case "arm64":
		return "aarch64"
	case "386":
		return "x86"
	default:
		return goarch
	}
}
