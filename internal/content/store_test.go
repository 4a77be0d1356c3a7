package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	site := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(site, "content", "posts"), 0o750))

	write := func(rel, data string) {
		require.NoError(t, os.WriteFile(filepath.Join(site, "content", filepath.FromSlash(rel)), []byte(data), 0o644))
	}
	write("_index.md", "---\ntitle: Home\n---\nWelcome.\n")
	write("about.md", "---\ntitle: \"About\"\ndate: 2024-01-01\n---\nAbout us.\n")
	write("posts/first.md", "---\ntitle: First Post\n---\nHello.\n")
	write("posts/notes.txt", "not markdown\n")

	return NewStore(site, "content")
}

func TestList_MarkdownOnly(t *testing.T) {
	s := newTestStore(t)
	files, err := s.List()
	require.NoError(t, err)

	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	require.Equal(t, []string{"_index.md", "about.md", "posts/first.md"}, paths)
	require.Equal(t, "first.md", files[2].Name)
}

func TestList_MissingContentDir(t *testing.T) {
	s := NewStore(t.TempDir(), "content")
	_, err := s.List()
	require.Error(t, err)
}

func TestRead_ParsesFrontMatterAndBody(t *testing.T) {
	s := newTestStore(t)
	doc, err := s.Read("about.md")
	require.NoError(t, err)
	require.Equal(t, "About", doc.Fields["title"])
	require.Equal(t, "About us.\n", doc.Body)
}

func TestRead_RejectsTraversal(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Read("../hugo.toml")
	require.Error(t, err)
	require.Contains(t, err.Error(), "escapes")
}

func TestSave_PreservesFormatting(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save("about.md", map[string]any{"title": "Company", "date": "2024-01-01"}, "New text.\n"))

	data, err := os.ReadFile(filepath.Join(s.Root(), "about.md"))
	require.NoError(t, err)
	require.Equal(t, "---\ntitle: \"Company\"\ndate: 2024-01-01\n---\n\nNew text.\n", string(data))
}

func TestSave_MissingFile(t *testing.T) {
	s := newTestStore(t)
	err := s.Save("nope.md", map[string]any{"title": "x"}, "body")
	require.Error(t, err)
}

func TestCreate_WritesNewFileAndReturnsURL(t *testing.T) {
	s := newTestStore(t)
	url, err := s.Create("posts/second", map[string]any{"title": "Second"}, "Body.\n")
	require.NoError(t, err)
	require.Equal(t, "/posts/second", url)

	data, err := os.ReadFile(filepath.Join(s.Root(), "posts", "second.md"))
	require.NoError(t, err)
	require.Equal(t, "---\ntitle: Second\n---\n\nBody.\n", string(data))
}

func TestCreate_RefusesExisting(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Create("about.md", map[string]any{"title": "dup"}, "x")
	require.ErrorIs(t, err, ErrExists)
}

func TestCreate_MakesParentDirectories(t *testing.T) {
	s := newTestStore(t)
	url, err := s.Create("docs/guides/setup", map[string]any{"title": "Setup"}, "Steps.\n")
	require.NoError(t, err)
	require.Equal(t, "/docs/guides/setup", url)
	require.FileExists(t, filepath.Join(s.Root(), "docs", "guides", "setup.md"))
}

func TestPageURL(t *testing.T) {
	require.Equal(t, "/posts/hello", PageURL("posts/hello.md"))
	require.Equal(t, "/posts", PageURL("posts/index.md"))
	require.Equal(t, "/posts", PageURL("posts/_index.md"))
	require.Equal(t, "/", PageURL("index.md"))
	require.Equal(t, "/", PageURL("_index.md"))
}

func TestResolveSource(t *testing.T) {
	s := newTestStore(t)

	rel, ok := s.ResolveSource("/about/")
	require.True(t, ok)
	require.Equal(t, "about.md", rel)

	rel, ok = s.ResolveSource("/first")
	require.True(t, ok)
	require.Equal(t, "posts/first.md", rel)

	rel, ok = s.ResolveSource("/")
	require.True(t, ok)
	require.Equal(t, "_index.md", rel)

	_, ok = s.ResolveSource("/no-such-page")
	require.False(t, ok)
}

func TestCreate_SlugifiesPath(t *testing.T) {
	s := newTestStore(t)
	url, err := s.Create("posts/My First Draft!", map[string]any{"title": "My First Draft!"}, "x\n")
	require.NoError(t, err)
	require.Equal(t, "/posts/my-first-draft", url)
	require.FileExists(t, filepath.Join(s.Root(), "posts", "my-first-draft.md"))

	_, err = s.Create("!!!", map[string]any{"title": "x"}, "")
	require.Error(t, err)
}

func TestSlugifyPath(t *testing.T) {
	require.Equal(t, "posts/my-post.md", SlugifyPath("Posts/My Post.md"))
	require.Equal(t, "posts/_index.md", SlugifyPath("posts/_index"))
	require.Equal(t, "", SlugifyPath("///"))
}

func TestSlugify(t *testing.T) {
	require.Equal(t, "hello-world", Slugify("Hello, World!"))
	require.Equal(t, "creme-brulee", Slugify("Crème Brûlée"))
	require.Equal(t, "2024-roadmap", Slugify("  2024 Roadmap  "))
	require.Equal(t, "", Slugify("!!!"))
}
