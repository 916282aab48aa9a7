package resolve

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"rigup/internal/catalog"
	"rigup/internal/sysinfo"
)

type Logger interface {
	Printf(format string, v ...any)
}

type noopLogger struct{}

func (noopLogger) Printf(string, ...any) {}

// Resolution is the concrete outcome for one entry: either a download URL
// with a version, or (for package-manager sources) a rendered install
// command. Produced only by the Resolver.
type Resolution struct {
	Version  string
	URL      string
	FileName string
	Command  string
}

// Display returns the URL or command, whichever the resolution carries.
func (r Resolution) Display() string {
	if r.URL != "" {
		return r.URL
	}
	return r.Command
}

// Resolver turns catalog entries into Resolutions. Safe for concurrent use.
type Resolver struct {
	Client      *http.Client
	Profile     sysinfo.Profile
	Prober      sysinfo.Prober
	Logger      Logger
	GitHubAPI   string
	GitHubToken string
}

const defaultGitHubAPI = "https://api.github.com"

// New builds a resolver with the default HTTP client and prober.
func New(profile sysinfo.Profile) *Resolver {
	return &Resolver{
		Client:    &http.Client{Timeout: 30 * time.Second},
		Profile:   profile,
		Prober:    sysinfo.CmdProber{},
		Logger:    noopLogger{},
		GitHubAPI: defaultGitHubAPI,
	}
}

func (r *Resolver) logf(format string, v ...any) {
	if r == nil || r.Logger == nil {
		return
	}
	r.Logger.Printf(format, v...)
}

// Resolve produces the Resolution for one entry. Package-manager sources
// never touch the network; the other kinds do exactly one metadata fetch.
// A fetch aborted by cancellation surfaces as the context's error, not a
// network failure, so callers can tell a cancelled run from a broken source.
func (r *Resolver) Resolve(ctx context.Context, entry catalog.Entry) (Resolution, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := r.resolveKind(ctx, entry)
	if err != nil && ctx.Err() != nil {
		return Resolution{}, ctx.Err()
	}
	return res, err
}

func (r *Resolver) resolveKind(ctx context.Context, entry catalog.Entry) (Resolution, error) {
	switch entry.Source.Kind {
	case catalog.SourcePackageManager:
		return r.resolvePackage(ctx, entry)
	case catalog.SourceOfficial:
		return r.resolveOfficial(ctx, entry)
	case catalog.SourceGitHub:
		return r.resolveGitHub(ctx, entry)
	default:
		return Resolution{}, fmt.Errorf("entry %s: unknown source kind %q", entry.ID, entry.Source.Kind)
	}
}

// resolvePackage maps the entry's per-manager package list to an install
// command. Deterministic and network-free; the version lookup through the
// package manager is best effort.
func (r *Resolver) resolvePackage(ctx context.Context, entry catalog.Entry) (Resolution, error) {
	mgr := r.Profile.Manager
	packages, ok := entry.Source.Packages[mgr.String()]
	if !ok || len(packages) == 0 {
		return Resolution{}, fmt.Errorf("%w: entry %s has no package mapping for %s", ErrUnsupportedDistro, entry.ID, mgr)
	}

	command, ok := mgr.InstallCommand(packages)
	if !ok {
		return Resolution{}, fmt.Errorf("%w: no install command for %s", ErrUnsupportedDistro, mgr)
	}

	version, ok := mgr.PackageVersion(ctx, r.Prober, packages[0])
	if !ok {
		version = "unknown"
	}

	r.logf("resolve entry=%s kind=package manager=%s version=%s", entry.ID, mgr, version)
	return Resolution{Version: version, Command: command}, nil
}

// fetchText GETs a URL and returns the body as a string. All transport and
// HTTP-status failures are reported as ErrNetwork.
func (r *Resolver) fetchText(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: build request for %s: %v", ErrNetwork, url, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: fetch %s: %v", ErrNetwork, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: fetch %s: %s", ErrNetwork, url, resp.Status)
	}

	body, err := readAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", ErrNetwork, url, err)
	}
	return body, nil
}

const userAgent = "rigup/1.0"

// Index pages are text; anything past this is not something we scrape.
const maxIndexBytes = 8 << 20

func readAll(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxIndexBytes))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
