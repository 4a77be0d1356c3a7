package frontmatter

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// Patch rewrites a document with updated front matter fields and a new body
// while preserving the original front matter formatting:
//
//   - original field order is kept; only lines whose key appears in fields
//     are rewritten
//   - the spacing between the colon and the value is preserved per line
//   - double-quoting style is preserved per line (quoted stays quoted,
//     unquoted stays unquoted)
//   - comment and other non-mapping lines are kept verbatim; blank lines
//     inside the block are dropped
//   - indented lines belong to nested structures and pass through untouched
//   - a short original date value is kept when the replacement is a verbose
//     browser timestamp, so round-tripping an edit form does not mangle dates
//   - fields absent from the original are appended in sorted order
//
// Output always uses LF line endings. The presence or absence of a trailing
// newline follows the original document. When the original has no front
// matter block (or it cannot be parsed), Patch falls back to Render.
func Patch(original []byte, fields map[string]any, body []byte) ([]byte, error) {
	fmRaw, _, had, style, err := Split(original)
	if err != nil || !had {
		return Render(fields, body)
	}
	origFields, err := ParseYAML(fmRaw)
	if err != nil {
		return Render(fields, body)
	}

	body = NormalizeNewlines(body)

	raw := strings.TrimSuffix(string(fmRaw), "\n")
	var lines []string
	if raw != "" {
		lines = strings.Split(raw, "\n")
	}

	out := make([]string, 0, len(lines)+len(fields))
	for _, line := range lines {
		idx := strings.Index(line, ":")
		if idx < 0 {
			if strings.TrimSpace(line) != "" {
				out = append(out, line)
			}
			continue
		}

		rawKey := line[:idx]
		key := strings.TrimSpace(rawKey)
		val, editing := fields[key]
		indented := strings.TrimLeft(rawKey, " \t") != rawKey
		if !editing || indented {
			if strings.TrimSpace(line) != "" {
				out = append(out, line)
			}
			continue
		}

		out = append(out, key+":"+patchedValue(key, line[idx+1:], val))
	}

	for _, k := range sortedNewKeys(fields, origFields) {
		out = append(out, k+": "+appendedValue(fields[k]))
	}

	var buf bytes.Buffer
	buf.WriteString(Delimiter + "\n")
	for _, l := range out {
		buf.WriteString(l)
		buf.WriteByte('\n')
	}
	buf.WriteString(Delimiter + "\n\n")
	buf.Write(body)

	res := buf.Bytes()
	if style.HasTrailingNewline {
		if len(res) == 0 || res[len(res)-1] != '\n' {
			res = append(res, '\n')
		}
	} else {
		res = bytes.TrimRight(res, "\n")
	}
	return res, nil
}

// patchedValue formats a replacement value using the formatting of the
// original `key: value` line (spacing after the colon, quoting style).
func patchedValue(key, origValuePart string, newVal any) string {
	hasQuotes := strings.Contains(origValuePart, `"`)

	spacing := " "
	if trimmed := strings.TrimLeft(origValuePart, " \t"); trimmed != "" {
		spacing = origValuePart[:len(origValuePart)-len(trimmed)]
	}

	newValue := stringify(newVal)

	// Date guard: edit forms tend to echo dates back as verbose timestamps
	// ("Mon Jan 02 2006 15:04:05 GMT+0000 ..."). If the original was a plain
	// short date, keep it rather than letting the verbose form replace it.
	if key == "date" {
		origVal := strings.Trim(strings.TrimSpace(origValuePart), `"`)
		if origVal != "" && len(origVal) <= 10 && strings.Contains(newValue, "GMT") {
			newValue = origVal
		}
	}

	quoted := len(newValue) >= 2 && strings.HasPrefix(newValue, `"`) && strings.HasSuffix(newValue, `"`)
	switch {
	case hasQuotes && !quoted:
		newValue = `"` + newValue + `"`
	case !hasQuotes && quoted:
		newValue = newValue[1 : len(newValue)-1]
	}
	return spacing + newValue
}

// appendedValue formats a value for a key the original block did not have.
// String values are quoted unless they are purely numeric.
func appendedValue(v any) string {
	s := stringify(v)
	if str, ok := v.(string); ok && !isDigits(str) {
		return `"` + s + `"`
	}
	return s
}

func sortedNewKeys(fields, origFields map[string]any) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if _, ok := origFields[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
