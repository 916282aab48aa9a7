package sysinfo

import (
	"context"
	"fmt"
	"strings"
)

// Manager identifies the host package manager. It is a closed set: anything
// we cannot map reports ManagerUnknown and callers surface an explicit
// unsupported-distro error instead of silently skipping work.
type Manager int

const (
	ManagerUnknown Manager = iota
	ManagerApt
	ManagerDnf
	ManagerPacman
)

func (m Manager) String() string {
	switch m {
	case ManagerApt:
		return "apt"
	case ManagerDnf:
		return "dnf"
	case ManagerPacman:
		return "pacman"
	default:
		return "unknown"
	}
}

var (
	debianIDs = []string{"ubuntu", "debian", "linuxmint", "pop", "ubuntu-budgie", "kdeneon"}
	fedoraIDs = []string{"fedora", "rhel", "centos", "rocky"}
	archIDs   = []string{"arch", "manjaro", "endeavouros", "artix"}
)

// ManagerFor maps os-release ID/ID_LIKE values to a package manager.
func ManagerFor(id, idLike string) Manager {
	for _, d := range debianIDs {
		if id == d {
			return ManagerApt
		}
	}
	for _, f := range fedoraIDs {
		if id == f {
			return ManagerDnf
		}
	}
	for _, a := range archIDs {
		if id == a {
			return ManagerPacman
		}
	}

	switch {
	case strings.Contains(idLike, "debian"), strings.Contains(idLike, "ubuntu"):
		return ManagerApt
	case strings.Contains(idLike, "fedora"), strings.Contains(idLike, "rhel"):
		return ManagerDnf
	case strings.Contains(idLike, "arch"):
		return ManagerPacman
	}
	return ManagerUnknown
}

// probeManager checks PATH for a known manager binary when os-release gave
// no usable answer.
func probeManager(lookPath func(string) (string, error)) Manager {
	probes := []struct {
		bin string
		mgr Manager
	}{
		{"apt", ManagerApt},
		{"dnf", ManagerDnf},
		{"pacman", ManagerPacman},
		{"yum", ManagerDnf},
	}
	for _, p := range probes {
		if _, err := lookPath(p.bin); err == nil {
			return p.mgr
		}
	}
	return ManagerUnknown
}

// InstallCommand renders the non-interactive install command for the given
// packages. The second return is false for an empty package list or an
// unknown manager.
func (m Manager) InstallCommand(packages []string) (string, bool) {
	if len(packages) == 0 {
		return "", false
	}
	joined := strings.Join(packages, " ")
	switch m {
	case ManagerApt:
		return "sudo apt update && sudo apt install -y " + joined, true
	case ManagerDnf:
		return "sudo dnf install -y " + joined, true
	case ManagerPacman:
		return "sudo pacman -Sy --noconfirm " + joined, true
	default:
		return "", false
	}
}

// LocalInstallCommand renders the command that installs a downloaded .deb or
// .rpm artifact through the package manager.
func (m Manager) LocalInstallCommand(path string) (string, bool) {
	switch m {
	case ManagerApt:
		return fmt.Sprintf("sudo apt install -y '%s'", path), true
	case ManagerDnf:
		return fmt.Sprintf("sudo dnf install -y '%s'", path), true
	default:
		return "", false
	}
}

// Prober abstracts the package-manager queries used for version lookups so
// tests never spawn real processes.
type Prober interface {
	Output(ctx context.Context, command string, args ...string) ([]byte, error)
}

// PackageVersion asks the package manager for the candidate version of a
// package. Best effort: any failure reports ok=false and callers fall back
// to a placeholder version.
func (m Manager) PackageVersion(ctx context.Context, prober Prober, pkg string) (string, bool) {
	if prober == nil {
		return "", false
	}
	var (
		command string
		args    []string
		field   string
	)
	switch m {
	case ManagerApt:
		command, args, field = "apt-cache", []string{"policy", pkg}, "Candidate"
	case ManagerDnf:
		command, args, field = "dnf", []string{"info", "-q", pkg}, "Version"
	case ManagerPacman:
		command, args, field = "pacman", []string{"-Si", pkg}, "Version"
	default:
		return "", false
	}

	out, err := prober.Output(ctx, command, args...)
	if err != nil {
		return "", false
	}
	for _, line := range strings.Split(string(out), "\n") {
		if !strings.Contains(line, field) {
			continue
		}
		_, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" || value == "(none)" {
			return "", false
		}
		return value, true
	}
	return "", false
}
