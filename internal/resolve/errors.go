package resolve

import "errors"

// Failure kinds surfaced to the UI. Wrapped with detail via fmt.Errorf so
// callers classify with errors.Is and still get a full message.
var (
	ErrUnsupportedDistro = errors.New("unsupported distro")
	ErrNetwork           = errors.New("network error")
	ErrPatternNotFound   = errors.New("pattern not found")
	ErrRateLimited       = errors.New("rate limited")
	ErrNoMatchingAsset   = errors.New("no matching asset")
)

// Kind returns a short machine-friendly label for a resolution failure.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnsupportedDistro):
		return "unsupported-distro"
	case errors.Is(err, ErrRateLimited):
		return "rate-limited"
	case errors.Is(err, ErrPatternNotFound):
		return "pattern-not-found"
	case errors.Is(err, ErrNoMatchingAsset):
		return "no-matching-asset"
	case errors.Is(err, ErrNetwork):
		return "network-error"
	default:
		return "error"
	}
}
