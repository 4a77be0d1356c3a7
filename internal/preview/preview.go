// Package preview renders Markdown bodies to HTML for the editor's draft
// preview, without requiring a full site build.
package preview

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
)

// md is shared; goldmark.Markdown is safe for concurrent use.
var md = goldmark.New(
	// Content authors own the repository, so raw HTML passthrough matches
	// what Hugo will render.
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// Render converts a Markdown body (front matter already removed) to HTML.
func Render(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := md.Convert(body, &buf); err != nil {
		return nil, fmt.Errorf("render markdown preview: %w", err)
	}
	return buf.Bytes(), nil
}
