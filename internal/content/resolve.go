package content

import (
	"os"
	"path/filepath"
	"strings"
)

// ResolveSource finds the Markdown source file behind a site URL, trying the
// path patterns Hugo uses to map content files to pages. Returns the
// content-relative path and whether a source file was found.
func (s *Store) ResolveSource(urlPath string) (string, bool) {
	cleaned := strings.Trim(urlPath, "/")

	var candidates []string
	if cleaned == "" {
		candidates = []string{"_index.md", "index.md"}
	} else {
		candidates = []string{
			cleaned + ".md",
			cleaned + "/index.md",
			cleaned + "/_index.md",
			"posts/" + cleaned + ".md",
			"blog/" + cleaned + ".md",
		}
	}

	for _, c := range candidates {
		if _, err := os.Stat(filepath.Join(s.root, filepath.FromSlash(c))); err == nil {
			return c, true
		}
	}
	return "", false
}
