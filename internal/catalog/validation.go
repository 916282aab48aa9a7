package catalog

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Validate checks structural catalog problems: duplicate or missing ids,
// unknown kinds, incomplete sources, and regexes that do not compile.
// All findings are aggregated into a single error.
func (c Catalog) Validate() error {
	var problems []string

	seen := make(map[string]bool, len(c.Software))
	for i, entry := range c.Software {
		label := entry.ID
		if label == "" {
			label = fmt.Sprintf("entry %d", i+1)
			problems = append(problems, fmt.Sprintf("%s: missing id", label))
		}
		if seen[entry.ID] && entry.ID != "" {
			problems = append(problems, fmt.Sprintf("%s: duplicate id", label))
		}
		seen[entry.ID] = true

		if entry.DisplayName == "" {
			problems = append(problems, fmt.Sprintf("%s: missing display_name", label))
		}

		problems = append(problems, validateSource(label, entry.Source)...)

		for j, step := range entry.Steps {
			problems = append(problems, validateStep(label, j, step)...)
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.New("invalid catalog:\n  " + strings.Join(problems, "\n  "))
}

func validateSource(label string, src Source) []string {
	var problems []string
	switch src.Kind {
	case SourcePackageManager:
		if len(src.Packages) == 0 {
			problems = append(problems, fmt.Sprintf("%s: package_manager source needs a packages map", label))
		}
		for mgr, pkgs := range src.Packages {
			switch mgr {
			case "apt", "dnf", "pacman":
			default:
				problems = append(problems, fmt.Sprintf("%s: unknown package manager %q", label, mgr))
			}
			if len(pkgs) == 0 {
				problems = append(problems, fmt.Sprintf("%s: empty package list for %q", label, mgr))
			}
		}
	case SourceOfficial:
		if src.IndexURL == "" {
			problems = append(problems, fmt.Sprintf("%s: official_source needs index_url", label))
		}
		problems = append(problems, checkRegex(label, "version_regex", src.VersionRegex)...)
		problems = append(problems, checkRegex(label, "download_url_regex", src.DownloadURLRegex)...)
	case SourceGitHub:
		if parts := strings.Split(src.Repo, "/"); len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			problems = append(problems, fmt.Sprintf("%s: github repo must be owner/name, got %q", label, src.Repo))
		}
		problems = append(problems, checkRegex(label, "asset_pattern", src.AssetPattern)...)
	case "":
		problems = append(problems, fmt.Sprintf("%s: missing source kind", label))
	default:
		problems = append(problems, fmt.Sprintf("%s: unknown source kind %q", label, src.Kind))
	}
	return problems
}

func validateStep(label string, index int, step Step) []string {
	var problems []string
	where := fmt.Sprintf("%s: setup step %d", label, index+1)

	switch step.Kind {
	case StepPackage:
		if len(step.Packages) == 0 {
			problems = append(problems, where+": package step needs packages")
		}
	case StepPathHint:
		if step.Value == "" {
			problems = append(problems, where+": path_hint step needs a value")
		}
	case StepShell:
		if step.Command == "" {
			problems = append(problems, where+": shell step needs a command")
		}
	case StepNote:
		if step.Value == "" {
			problems = append(problems, where+": note step needs a value")
		}
	default:
		problems = append(problems, fmt.Sprintf("%s: unknown kind %q", where, step.Kind))
	}

	switch step.Phase {
	case "", PhasePre, PhasePost:
	default:
		problems = append(problems, fmt.Sprintf("%s: unknown phase %q", where, step.Phase))
	}
	return problems
}

func checkRegex(label, field, pattern string) []string {
	if pattern == "" {
		return []string{fmt.Sprintf("%s: missing %s", label, field)}
	}
	// Placeholders are substituted before compilation at resolve time;
	// compile with neutral stand-ins to catch syntax errors early.
	probe := strings.NewReplacer("{arch}", "amd64", "{xarch}", "x86_64", "{xarch_dash}", "x86-64").Replace(pattern)
	if _, err := regexp.Compile(probe); err != nil {
		return []string{fmt.Sprintf("%s: %s does not compile: %v", label, field, err)}
	}
	return nil
}
