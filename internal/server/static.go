package server

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed assets
var assetsFS embed.FS

// adminControlsFragment is the toolbar markup injected into served pages.
func adminControlsFragment() string {
	data, err := assetsFS.ReadFile("assets/admin_controls.html")
	if err != nil {
		// The fragment is compiled in; a missing file is a packaging bug.
		panic(err)
	}
	return string(data)
}

// staticHandler serves the embedded admin assets under /admin/static/.
func staticHandler() http.Handler {
	sub, err := fs.Sub(assetsFS, "assets")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/admin/static/", http.FileServer(http.FS(sub)))
}

// adminIndex returns the embedded admin UI page.
func adminIndex() []byte {
	data, err := assetsFS.ReadFile("assets/admin.html")
	if err != nil {
		panic(err)
	}
	return data
}
