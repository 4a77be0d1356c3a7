package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplit_NoFrontMatter(t *testing.T) {
	fm, body, had, _, err := Split([]byte("# Just a heading\n"))
	require.NoError(t, err)
	require.False(t, had)
	require.Nil(t, fm)
	require.Equal(t, "# Just a heading\n", string(body))
}

func TestSplit_BasicDocument(t *testing.T) {
	doc := "---\ntitle: Hello\ndate: 2024-01-01\n---\nBody text.\n"
	fm, body, had, style, err := Split([]byte(doc))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, "title: Hello\ndate: 2024-01-01\n", string(fm))
	require.Equal(t, "Body text.\n", string(body))
	require.True(t, style.HasTrailingNewline)
	require.False(t, style.HadCRLF)
}

func TestSplit_EmptyBlock(t *testing.T) {
	fm, body, had, _, err := Split([]byte("---\n---\nBody.\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Empty(t, fm)
	require.Equal(t, "Body.\n", string(body))
}

func TestSplit_CRLFNormalized(t *testing.T) {
	doc := "---\r\ntitle: Hello\r\n---\r\nBody.\r\n"
	fm, body, had, style, err := Split([]byte(doc))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, "title: Hello\n", string(fm))
	require.Equal(t, "Body.\n", string(body))
	require.True(t, style.HadCRLF)
}

func TestSplit_MissingClosingDelimiter(t *testing.T) {
	_, _, _, _, err := Split([]byte("---\ntitle: Hello\nBody without closer\n"))
	require.ErrorIs(t, err, ErrMissingClosingDelimiter)
}

func TestSplit_ClosingDelimiterAtEOF(t *testing.T) {
	fm, body, had, _, err := Split([]byte("---\ntitle: Hello\n---"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, "title: Hello\n", string(fm))
	require.Empty(t, body)
}

func TestSplit_NoTrailingNewline(t *testing.T) {
	_, _, _, style, err := Split([]byte("---\ntitle: x\n---\nbody"))
	require.NoError(t, err)
	require.False(t, style.HasTrailingNewline)
}

func TestParse_FieldsAndBody(t *testing.T) {
	doc := "---\ntitle: Hello\ntags:\n  - a\n  - b\n---\nBody.\n"
	fields, body, err := Parse([]byte(doc))
	require.NoError(t, err)
	require.Equal(t, "Hello", fields["title"])
	require.Equal(t, []any{"a", "b"}, fields["tags"])
	require.Equal(t, "Body.\n", string(body))
}

func TestParse_NoFrontMatterYieldsEmptyMap(t *testing.T) {
	fields, body, err := Parse([]byte("plain body\n"))
	require.NoError(t, err)
	require.Empty(t, fields)
	require.Equal(t, "plain body\n", string(body))
}

func TestParseYAML_Invalid(t *testing.T) {
	_, err := ParseYAML([]byte("title: [unclosed\n"))
	require.Error(t, err)
}
