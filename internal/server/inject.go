package server

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// injectAdminControls parses an HTML page and appends the admin controls
// fragment to its body, so every served page carries the edit toolbar.
// Pages without a body element come back unchanged.
func injectAdminControls(page []byte, fragment string) ([]byte, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse HTML page: %w", err)
	}

	body := findElement(doc, "body")
	if body == nil {
		return page, nil
	}

	nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		return nil, fmt.Errorf("parse admin controls fragment: %w", err)
	}
	for _, n := range nodes {
		body.AppendChild(n)
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return nil, fmt.Errorf("render HTML page: %w", err)
	}
	return buf.Bytes(), nil
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}
