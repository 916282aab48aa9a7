package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"

	"rigup/internal/catalog"
	"rigup/internal/sysinfo"
)

type githubAsset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

type githubRelease struct {
	TagName string        `json:"tag_name"`
	Assets  []githubAsset `json:"assets"`
}

// resolveGitHub queries the latest release and picks the asset that best
// matches the entry's pattern and the host platform.
func (r *Resolver) resolveGitHub(ctx context.Context, entry catalog.Entry) (Resolution, error) {
	src := entry.Source
	endpoint := fmt.Sprintf("%s/repos/%s/releases/latest", strings.TrimSuffix(r.githubAPI(), "/"), src.Repo)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Resolution{}, fmt.Errorf("%w: build request for %s: %v", ErrNetwork, endpoint, err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", userAgent)
	if r.GitHubToken != "" {
		req.Header.Set("Authorization", "Bearer "+r.GitHubToken)
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return Resolution{}, fmt.Errorf("%w: fetch %s: %v", ErrNetwork, endpoint, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden, resp.StatusCode == http.StatusTooManyRequests:
		return Resolution{}, fmt.Errorf("%w: github api returned %s for %s", ErrRateLimited, resp.Status, src.Repo)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return Resolution{}, fmt.Errorf("%w: github api returned %s for %s", ErrNetwork, resp.Status, src.Repo)
	}

	var release githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return Resolution{}, fmt.Errorf("%w: decode release for %s: %v", ErrNetwork, src.Repo, err)
	}

	pattern := catalog.Expand(src.AssetPattern, r.Profile, "")
	asset, err := selectAsset(release.Assets, pattern, r.Profile)
	if err != nil {
		return Resolution{}, fmt.Errorf("entry %s: %w", entry.ID, err)
	}

	version := strings.TrimPrefix(release.TagName, "v")
	if version == "" {
		version = release.TagName
	}

	r.logf("resolve entry=%s kind=github repo=%s version=%s asset=%s", entry.ID, src.Repo, version, asset.Name)
	return Resolution{
		Version:  version,
		URL:      asset.BrowserDownloadURL,
		FileName: asset.Name,
	}, nil
}

func (r *Resolver) githubAPI() string {
	if r.GitHubAPI != "" {
		return r.GitHubAPI
	}
	return defaultGitHubAPI
}

// selectAsset filters release assets by pattern, then ranks the survivors:
// a platform arch match dominates, then the package format the host's
// manager can install directly, then generic archives. Ties keep release
// asset order.
func selectAsset(assets []githubAsset, pattern string, profile sysinfo.Profile) (githubAsset, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return githubAsset{}, fmt.Errorf("compile asset pattern: %w", err)
	}

	var matched []githubAsset
	for _, a := range assets {
		if re.MatchString(a.Name) {
			matched = append(matched, a)
		}
	}
	if len(matched) == 0 {
		return githubAsset{}, fmt.Errorf("%w: no release asset matches %q", ErrNoMatchingAsset, pattern)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return assetScore(matched[i].Name, profile) > assetScore(matched[j].Name, profile)
	})
	return matched[0], nil
}

func assetScore(name string, profile sysinfo.Profile) int {
	score := 0
	lower := strings.ToLower(name)

	var archHit bool
	switch profile.XArch {
	case "x86_64":
		archHit = strings.Contains(lower, "x86_64") || strings.Contains(lower, "x86-64") ||
			strings.Contains(lower, "amd64") || strings.Contains(lower, "x64")
	case "aarch64":
		archHit = strings.Contains(lower, "aarch64") || strings.Contains(lower, "arm64") ||
			strings.Contains(lower, "arm-64")
	case "x86":
		archHit = strings.Contains(lower, "i386") || strings.Contains(lower, "386") ||
			strings.Contains(lower, "x86")
	default:
		archHit = strings.Contains(lower, strings.ToLower(profile.XArch))
	}
	if archHit {
		score += 100
	}

	preferredExt := ""
	switch profile.Manager {
	case sysinfo.ManagerApt:
		preferredExt = ".deb"
	case sysinfo.ManagerDnf:
		preferredExt = ".rpm"
	}

	switch {
	case preferredExt != "" && strings.HasSuffix(name, preferredExt):
		score += 50
	case strings.HasSuffix(name, ".deb"), strings.HasSuffix(name, ".rpm"):
		score += 20
	case strings.HasSuffix(name, ".AppImage"):
		score += 10
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tar.xz"), strings.HasSuffix(name, ".zip"):
		score += 5
	}

	return score
}
