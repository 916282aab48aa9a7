package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

// AppPaths captures canonical on-disk locations for rigup.
type AppPaths struct {
	Home        string
	CatalogFile string
	StateDir    string
	LogsDir     string
	DownloadDir string
}

// Resolve determines rigup's file locations. catalogFlag overrides catalog
// discovery; otherwise ./rigup.yaml wins over the user config location,
// and an empty CatalogFile means "use the embedded default catalog".
func Resolve(catalogFlag string) (AppPaths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return AppPaths{}, fmt.Errorf("detect user home: %w", err)
	}

	stateDir := filepath.Join(home, ".local", "state", "rigup")
	p := AppPaths{
		Home:        home,
		StateDir:    stateDir,
		LogsDir:     filepath.Join(stateDir, "logs"),
		DownloadDir: filepath.Join(home, "Downloads", "rigup"),
	}

	if catalogFlag != "" {
		abs, err := filepath.Abs(catalogFlag)
		if err != nil {
			return AppPaths{}, fmt.Errorf("resolve catalog path: %w", err)
		}
		p.CatalogFile = abs
		return p, nil
	}
	p.CatalogFile = discoverCatalog(home)
	return p, nil
}

// discoverCatalog checks the working directory first, then the user config
// directory. Returns "" when neither exists so the embedded catalog is used.
func discoverCatalog(home string) string {
	if ok, _ := FileExists("rigup.yaml"); ok {
		if abs, err := filepath.Abs("rigup.yaml"); err == nil {
			return abs
		}
	}
	userCatalog := filepath.Join(home, ".config", "rigup", "rigup.yaml")
	if ok, _ := FileExists(userCatalog); ok {
		return userCatalog
	}
	return ""
}

// EnsureStateDirs creates the state and logs directories.
func (p AppPaths) EnsureStateDirs() error {
	for _, dir := range []string{p.StateDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// FileExists reports whether a path exists and is a regular file.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// DirExists reports whether a path exists and is a directory.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}
