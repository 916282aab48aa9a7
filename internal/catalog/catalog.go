package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SourceKind discriminates how an entry's artifact is obtained.
type SourceKind string

const (
	SourcePackageManager SourceKind = "package_manager"
	SourceOfficial       SourceKind = "official_source"
	SourceGitHub         SourceKind = "github"
)

// Source describes where an entry comes from. Exactly one kind is active;
// the remaining fields are ignored for other kinds.
type Source struct {
	Kind SourceKind `yaml:"kind"`

	// package_manager: package names keyed by manager (apt, dnf, pacman).
	Packages map[string][]string `yaml:"packages,omitempty"`

	// official_source: index page scraped with two regexes. The version
	// regex contributes its first capture group; the download regex match
	// is resolved relative to the index URL.
	IndexURL         string `yaml:"index_url,omitempty"`
	VersionRegex     string `yaml:"version_regex,omitempty"`
	DownloadURLRegex string `yaml:"download_url_regex,omitempty"`

	// github: latest release of owner/name, assets filtered by pattern.
	Repo         string `yaml:"repo,omitempty"`
	AssetPattern string `yaml:"asset_pattern,omitempty"`
}

// StepKind discriminates setup steps.
type StepKind string

const (
	StepPackage  StepKind = "package"
	StepPathHint StepKind = "path_hint"
	StepShell    StepKind = "shell"
	StepNote     StepKind = "note"
)

// Phase says whether a step runs before or after the primary install action.
type Phase string

const (
	PhasePre  Phase = "pre"
	PhasePost Phase = "post"
)

// Step is one pre- or post-install action attached to an entry. Catalog
// order is preserved within each phase.
type Step struct {
	Kind     StepKind `yaml:"kind"`
	Phase    Phase    `yaml:"phase,omitempty"`
	Packages []string `yaml:"packages,omitempty"`
	Value    string   `yaml:"value,omitempty"`
	Command  string   `yaml:"command,omitempty"`
}

// EffectivePhase applies the default phase when the catalog omits one:
// package dependencies run before the install, everything else after.
func (s Step) EffectivePhase() Phase {
	if s.Phase != "" {
		return s.Phase
	}
	if s.Kind == StepPackage {
		return PhasePre
	}
	return PhasePost
}

// Entry is one installable piece of software. Immutable after load.
type Entry struct {
	ID          string `yaml:"id"`
	DisplayName string `yaml:"display_name"`
	Description string `yaml:"description,omitempty"`
	Category    string `yaml:"category,omitempty"`
	Default     bool   `yaml:"default,omitempty"`
	InstallDir  string `yaml:"install_dir,omitempty"`
	Source      Source `yaml:"source"`
	Steps       []Step `yaml:"setup_steps,omitempty"`
}

// Catalog is the parsed set of entries, in file order.
type Catalog struct {
	Version  int     `yaml:"version"`
	Software []Entry `yaml:"software"`
}

//go:embed default.yaml
var defaultCatalog []byte

// Load reads and validates the catalog at path. When the file does not
// exist the embedded default catalog is used instead.
func Load(path string) (Catalog, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			contents = defaultCatalog
		} else {
			return Catalog{}, fmt.Errorf("read catalog: %w", err)
		}
	}
	return Parse(contents)
}

// Parse decodes and validates catalog YAML.
func Parse(contents []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(contents, &c); err != nil {
		return Catalog{}, fmt.Errorf("unmarshal catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

// Get returns the entry with the given id.
func (c Catalog) Get(id string) (Entry, bool) {
	for _, e := range c.Software {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// IDs returns all entry identifiers in catalog order.
func (c Catalog) IDs() []string {
	ids := make([]string, 0, len(c.Software))
	for _, e := range c.Software {
		ids = append(ids, e.ID)
	}
	return ids
}

// DefaultIDs returns the identifiers of entries enabled by default.
func (c Catalog) DefaultIDs() []string {
	var ids []string
	for _, e := range c.Software {
		if e.Default {
			ids = append(ids, e.ID)
		}
	}
	return ids
}
