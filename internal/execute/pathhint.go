package execute

import (
	"fmt"
	"os"
	"strings"
)

const pathHintMarker = "# added by rigup"

// AppendPathLine appends line to the shell profile at path unless an
// identical line is already present. Returns whether the file changed.
func AppendPathLine(path, line string) (bool, error) {
	content, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("%w: read %s: %v", ErrProfileWrite, path, err)
	}

	for _, existing := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(existing) == strings.TrimSpace(line) {
			return false, nil
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return false, fmt.Errorf("%w: open %s: %v", ErrProfileWrite, path, err)
	}
	defer f.Close()

	prefix := "\n"
	if len(content) == 0 {
		prefix = ""
	}
	if _, err := fmt.Fprintf(f, "%s%s\n%s\n", prefix, pathHintMarker, line); err != nil {
		return false, fmt.Errorf("%w: append to %s: %v", ErrProfileWrite, path, err)
	}
	return true, nil
}
