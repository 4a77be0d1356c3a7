package server

import (
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/hugocms/internal/logfields"
)

// siteHandler serves the rendered site from the manager's public directory,
// injecting the admin toolbar into HTML pages.
type siteHandler struct {
	manager  SiteManager
	fragment string
}

func (h *siteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	publicDir := h.manager.PublicDir()
	if publicDir == "" {
		writeError(w, http.StatusServiceUnavailable, "site not built yet")
		return
	}

	file, ok := resolveSiteFile(publicDir, r.URL.Path)
	if !ok {
		writeError(w, http.StatusNotFound, "page not found")
		return
	}

	if strings.HasSuffix(file, ".html") {
		h.serveHTML(w, r, file)
		return
	}
	http.ServeFile(w, r, file)
}

func (h *siteHandler) serveHTML(w http.ResponseWriter, r *http.Request, file string) {
	page, err := os.ReadFile(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read page")
		return
	}
	injected, err := injectAdminControls(page, h.fragment)
	if err != nil {
		slog.Warn("Admin toolbar injection failed, serving page unmodified",
			logfields.Path(file), logfields.Error(err))
		injected = page
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(injected)
}

// resolveSiteFile maps a request path to a file under publicDir, trying the
// pretty-URL shapes Hugo emits: the literal path, path.html, and
// path/index.html. Traversal outside publicDir is rejected.
func resolveSiteFile(publicDir, urlPath string) (string, bool) {
	cleaned := strings.TrimPrefix(path.Clean("/"+urlPath), "/")
	if !filepath.IsLocal(cleaned) && cleaned != "" {
		return "", false
	}

	candidates := []string{cleaned}
	if cleaned != "" && !strings.Contains(path.Base(cleaned), ".") {
		candidates = append(candidates, cleaned+".html")
	}
	candidates = append(candidates, path.Join(cleaned, "index.html"))

	for _, c := range candidates {
		full := filepath.Join(publicDir, filepath.FromSlash(c))
		info, err := os.Stat(full)
		if err != nil || info.IsDir() {
			continue
		}
		return full, true
	}
	return "", false
}
