package resolve

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"regexp"

	"rigup/internal/catalog"
)

// resolveOfficial scrapes a vendor index page: the version regex yields the
// latest version (first capture group of the first match), the download
// regex yields the artifact URL, resolved relative to the index.
func (r *Resolver) resolveOfficial(ctx context.Context, entry catalog.Entry) (Resolution, error) {
	src := entry.Source

	body, err := r.fetchText(ctx, src.IndexURL)
	if err != nil {
		return Resolution{}, err
	}

	versionPattern := catalog.Expand(src.VersionRegex, r.Profile, "")
	downloadPattern := catalog.Expand(src.DownloadURLRegex, r.Profile, "")

	version, downloadURL, err := extractOfficial(body, src.IndexURL, versionPattern, downloadPattern)
	if err != nil {
		return Resolution{}, fmt.Errorf("entry %s: %w", entry.ID, err)
	}

	r.logf("resolve entry=%s kind=official version=%s url=%s", entry.ID, version, downloadURL)
	return Resolution{
		Version:  version,
		URL:      downloadURL,
		FileName: path.Base(downloadURL),
	}, nil
}

// extractOfficial applies the two patterns to an already-fetched index body.
// Kept separate from the fetch so pattern behavior is testable offline.
func extractOfficial(body, indexURL, versionPattern, downloadPattern string) (string, string, error) {
	versionRe, err := regexp.Compile(versionPattern)
	if err != nil {
		return "", "", fmt.Errorf("compile version regex: %w", err)
	}
	downloadRe, err := regexp.Compile(downloadPattern)
	if err != nil {
		return "", "", fmt.Errorf("compile download url regex: %w", err)
	}

	match := versionRe.FindStringSubmatch(body)
	if len(match) < 2 {
		return "", "", fmt.Errorf("%w: version regex %q matched nothing on %s", ErrPatternNotFound, versionPattern, indexURL)
	}
	version := match[1]

	download := downloadRe.FindString(body)
	if download == "" {
		return "", "", fmt.Errorf("%w: download url regex %q matched nothing on %s", ErrPatternNotFound, downloadPattern, indexURL)
	}

	return version, resolveAgainst(indexURL, download), nil
}

// resolveAgainst joins a possibly-relative download match with the index
// URL. A match that fails to parse is returned verbatim.
func resolveAgainst(indexURL, download string) string {
	base, err := url.Parse(indexURL)
	if err != nil {
		return download
	}
	ref, err := url.Parse(download)
	if err != nil {
		return download
	}
	return base.ResolveReference(ref).String()
}
