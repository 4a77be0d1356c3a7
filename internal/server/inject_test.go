package server

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInjectAdminControls(t *testing.T) {
	page := []byte("<html><head><title>t</title></head><body><p>hello</p></body></html>")
	out, err := injectAdminControls(page, `<div id="bar">x</div>`)
	require.NoError(t, err)
	require.Contains(t, string(out), "<p>hello</p>")
	require.Contains(t, string(out), `<div id="bar">x</div>`)

	// The fragment lands inside the body.
	require.Regexp(t, `(?s)<body>.*<div id="bar">x</div>.*</body>`, string(out))
}

func TestInjectAdminControls_FragmentFromAssets(t *testing.T) {
	fragment := adminControlsFragment()
	require.Contains(t, fragment, "hugocms-admin-bar")

	out, err := injectAdminControls([]byte("<html><body></body></html>"), fragment)
	require.NoError(t, err)
	require.Contains(t, string(out), "hugocms-admin-bar")
	require.Contains(t, string(out), "/admin/static/admin.js")
}
