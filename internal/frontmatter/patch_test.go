package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPatch_PreservesOrderAndQuoting(t *testing.T) {
	original := []byte("---\ntitle: \"Hello\"\ndate: 2024-01-01\ndraft: false\n---\nOld body.\n")
	fields := map[string]any{
		"title": "Goodbye",
		"date":  "2024-01-01",
		"draft": "true",
	}

	out, err := Patch(original, fields, []byte("New body.\n"))
	require.NoError(t, err)
	require.Equal(t, "---\ntitle: \"Goodbye\"\ndate: 2024-01-01\ndraft: true\n---\n\nNew body.\n", string(out))
}

func TestPatch_PreservesColonSpacing(t *testing.T) {
	original := []byte("---\ntitle:   Widely Spaced\n---\nBody.\n")
	out, err := Patch(original, map[string]any{"title": "Still Spaced"}, []byte("Body.\n"))
	require.NoError(t, err)
	require.Contains(t, string(out), "title:   Still Spaced\n")
}

func TestPatch_AddsQuotesWhenOriginalQuoted(t *testing.T) {
	original := []byte("---\nsummary: \"old\"\n---\nBody.\n")
	out, err := Patch(original, map[string]any{"summary": "new"}, []byte("Body.\n"))
	require.NoError(t, err)
	require.Contains(t, string(out), "summary: \"new\"\n")
}

func TestPatch_StripsQuotesWhenOriginalUnquoted(t *testing.T) {
	original := []byte("---\nsummary: old\n---\nBody.\n")
	out, err := Patch(original, map[string]any{"summary": `"new"`}, []byte("Body.\n"))
	require.NoError(t, err)
	require.Contains(t, string(out), "summary: new\n")
}

func TestPatch_DateGuardKeepsShortDate(t *testing.T) {
	original := []byte("---\ndate: 2024-01-01\n---\nBody.\n")
	verbose := "Mon Jan 01 2024 00:00:00 GMT+0000 (Coordinated Universal Time)"

	out, err := Patch(original, map[string]any{"date": verbose}, []byte("Body.\n"))
	require.NoError(t, err)
	require.Contains(t, string(out), "date: 2024-01-01\n")
	require.NotContains(t, string(out), "GMT")
}

func TestPatch_DateGuardKeepsQuotingToo(t *testing.T) {
	original := []byte("---\ndate: \"2024-01-01\"\n---\nBody.\n")
	verbose := "Mon Jan 01 2024 00:00:00 GMT+0000 (Coordinated Universal Time)"

	out, err := Patch(original, map[string]any{"date": verbose}, []byte("Body.\n"))
	require.NoError(t, err)
	require.Contains(t, string(out), "date: \"2024-01-01\"\n")
}

func TestPatch_VerboseDateAcceptedWhenOriginalVerbose(t *testing.T) {
	original := []byte("---\ndate: 2024-01-01T10:00:00+02:00\n---\nBody.\n")
	out, err := Patch(original, map[string]any{"date": "2025-06-30T08:00:00+02:00"}, []byte("Body.\n"))
	require.NoError(t, err)
	require.Contains(t, string(out), "date: 2025-06-30T08:00:00+02:00\n")
}

func TestPatch_KeepsCommentsDropsBlankLines(t *testing.T) {
	original := []byte("---\n# editorial note\ntitle: Old\n\nweight: 3\n---\nBody.\n")
	out, err := Patch(original, map[string]any{"title": "New"}, []byte("Body.\n"))
	require.NoError(t, err)
	require.Equal(t, "---\n# editorial note\ntitle: New\nweight: 3\n---\n\nBody.\n", string(out))
}

func TestPatch_UntouchedFieldsKeptVerbatim(t *testing.T) {
	original := []byte("---\ntitle: Old\nlayout:    wide   \n---\nBody.\n")
	out, err := Patch(original, map[string]any{"title": "New"}, []byte("Body.\n"))
	require.NoError(t, err)
	require.Contains(t, string(out), "layout:    wide   \n")
}

func TestPatch_IndentedNestedLinesPassThrough(t *testing.T) {
	original := []byte("---\ntitle: Old\nmenu:\n  main:\n    weight: 10\n---\nBody.\n")
	out, err := Patch(original, map[string]any{"title": "New", "main": "oops"}, []byte("Body.\n"))
	require.NoError(t, err)
	require.Contains(t, string(out), "menu:\n  main:\n    weight: 10\n")
}

func TestPatch_AppendsNewKeysSorted(t *testing.T) {
	original := []byte("---\ntitle: Old\n---\nBody.\n")
	fields := map[string]any{
		"title":  "New",
		"weight": "42",
		"author": "jane",
	}

	out, err := Patch(original, fields, []byte("Body.\n"))
	require.NoError(t, err)
	// New keys appended after the original ones, sorted, strings quoted and
	// numeric strings left bare.
	require.Equal(t, "---\ntitle: New\nauthor: \"jane\"\nweight: 42\n---\n\nBody.\n", string(out))
}

func TestPatch_NoFrontMatterFallsBackToRender(t *testing.T) {
	original := []byte("Just a body.\n")
	out, err := Patch(original, map[string]any{"title": "New"}, []byte("Edited body.\n"))
	require.NoError(t, err)
	require.Equal(t, "---\ntitle: New\n---\n\nEdited body.\n", string(out))
}

func TestPatch_MalformedFrontMatterFallsBackToRender(t *testing.T) {
	original := []byte("---\ntitle: [unclosed\n---\nBody.\n")
	out, err := Patch(original, map[string]any{"title": "New"}, []byte("Body.\n"))
	require.NoError(t, err)
	require.Equal(t, "---\ntitle: New\n---\n\nBody.\n", string(out))
}

func TestPatch_PreservesMissingTrailingNewline(t *testing.T) {
	original := []byte("---\ntitle: Old\n---\nbody without newline")
	out, err := Patch(original, map[string]any{"title": "New"}, []byte("still no newline"))
	require.NoError(t, err)
	require.Equal(t, "---\ntitle: New\n---\n\nstill no newline", string(out))
}

func TestPatch_NormalizesCRLFInput(t *testing.T) {
	original := []byte("---\r\ntitle: Old\r\n---\r\nBody.\r\n")
	out, err := Patch(original, map[string]any{"title": "New"}, []byte("Body.\r\n"))
	require.NoError(t, err)
	require.Equal(t, "---\ntitle: New\n---\n\nBody.\n", string(out))
	require.NotContains(t, string(out), "\r")
}
