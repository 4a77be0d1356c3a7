package content

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// asciiFolder strips combining marks after canonical decomposition, so
// "Crème Brûlée" folds to "Creme Brulee" before slug cleanup.
var asciiFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify turns an arbitrary page title or filename into a URL- and
// filesystem-safe slug: accents folded, lowercased, non-alphanumeric runs
// collapsed to single hyphens.
func Slugify(s string) string {
	folded, _, err := transform.String(asciiFolder, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	lastHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// SlugifyPath slugifies every segment of a slash-separated content path and
// appends the .md extension. Returns "" when nothing usable remains.
func SlugifyPath(rel string) string {
	rel = strings.TrimSuffix(strings.ReplaceAll(rel, "\\", "/"), ".md")

	var segments []string
	for _, p := range strings.Split(rel, "/") {
		// Underscore prefixes are significant to Hugo (_index.md).
		prefix := ""
		if strings.HasPrefix(p, "_") {
			prefix = "_"
			p = p[1:]
		}
		if s := Slugify(p); s != "" {
			segments = append(segments, prefix+s)
		}
	}
	if len(segments) == 0 {
		return ""
	}
	return strings.Join(segments, "/") + ".md"
}
