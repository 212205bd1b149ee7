package web

import "strings"

// sanitizeReturnToPath keeps redirect targets on this site. Anything that is
// not a local absolute path falls back to the root.
func sanitizeReturnToPath(path string) string {
	if path == "" {
		return "/"
	}

	if !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") {
		return "/"
	}

	return path
}
