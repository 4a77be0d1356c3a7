// Package frontmatter parses, serializes, and patches YAML front matter
// blocks in Markdown documents.
//
// Patch is the heart of the package: it rewrites edited fields into an
// existing document while preserving the original author's formatting
// conventions (field order, quoting, spacing, comments).
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// Delimiter is the front matter marker line.
const Delimiter = "---"

// ErrMissingClosingDelimiter indicates the document opened a front matter
// block but never closed it.
var ErrMissingClosingDelimiter = errors.New("front matter opening delimiter found but closing delimiter is missing")

// Style captures formatting details needed for stable rewriting.
type Style struct {
	// HasTrailingNewline records whether the original document ended with a
	// newline, so rewrites can preserve its absence.
	HasTrailingNewline bool
	// HadCRLF records whether the original used Windows line endings.
	// Output is always normalized to LF; this exists for diagnostics.
	HadCRLF bool
}

// Split separates a `---` delimited YAML front matter block from the
// Markdown body. Line endings are normalized to LF before splitting; the
// original trailing-newline shape is captured in Style.
//
// If the document does not open with a delimiter, had is false and body is
// the (normalized) full input.
func Split(content []byte) (fm []byte, body []byte, had bool, style Style, err error) {
	style = Style{
		HasTrailingNewline: len(content) > 0 && content[len(content)-1] == '\n',
		HadCRLF:            bytes.Contains(content, []byte("\r\n")),
	}
	norm := NormalizeNewlines(content)

	open := []byte(Delimiter + "\n")
	if !bytes.HasPrefix(norm, open) {
		return nil, norm, false, style, nil
	}

	rest := norm[len(open):]
	if bytes.HasPrefix(rest, open) {
		// Empty front matter block.
		return []byte{}, rest[len(open):], true, style, nil
	}

	closeSeq := []byte("\n" + Delimiter + "\n")
	idx := bytes.Index(rest, closeSeq)
	if idx < 0 {
		// A document ending exactly in "\n---" closes the block with an
		// empty body.
		tail := []byte("\n" + Delimiter)
		if bytes.HasSuffix(rest, tail) {
			return rest[:len(rest)-len(tail)+1], []byte{}, true, style, nil
		}
		return nil, nil, false, style, ErrMissingClosingDelimiter
	}

	return rest[:idx+1], rest[idx+len(closeSeq):], true, style, nil
}

// ParseYAML parses raw YAML front matter (without delimiters) into a map.
func ParseYAML(fm []byte) (map[string]any, error) {
	if len(fm) == 0 {
		return map[string]any{}, nil
	}
	var fields map[string]any
	if err := yaml.Unmarshal(fm, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// Parse splits a document and parses its front matter in one step.
// Documents without front matter yield an empty field map.
func Parse(content []byte) (fields map[string]any, body []byte, err error) {
	fm, body, had, _, err := Split(content)
	if err != nil {
		return nil, nil, err
	}
	if !had {
		return map[string]any{}, body, nil
	}
	fields, err = ParseYAML(fm)
	if err != nil {
		return nil, nil, err
	}
	return fields, body, nil
}

// NormalizeNewlines converts CRLF and lone CR line endings to LF.
func NormalizeNewlines(b []byte) []byte {
	b = bytes.ReplaceAll(b, []byte("\r\n"), []byte("\n"))
	return bytes.ReplaceAll(b, []byte("\r"), []byte("\n"))
}
