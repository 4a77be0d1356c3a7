package gitrepo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/hugocms/internal/config"
)

func testSignature() *object.Signature {
	return &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()}
}

// initUpstream creates a seed repository with one commit and returns the path
// of a bare clone acting as the remote.
func initUpstream(t *testing.T) string {
	t.Helper()

	seed := t.TempDir()
	repo, err := git.PlainInit(seed, false)
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(seed, "content"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(seed, "content", "index.md"), []byte("---\ntitle: Home\n---\nWelcome.\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(seed, "hugo.toml"), []byte("baseURL = \"https://example.com/\"\n"), 0o644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(".")
	require.NoError(t, err)
	_, err = wt.Commit("initial", &git.CommitOptions{Author: testSignature()})
	require.NoError(t, err)

	bare := t.TempDir()
	_, err = git.PlainClone(bare, true, &git.CloneOptions{URL: seed})
	require.NoError(t, err)
	return bare
}

func newTestClient(t *testing.T, upstream string) *Client {
	t.Helper()
	cfg := &config.Config{
		Repository: config.RepositoryConfig{URL: upstream, Branch: "master"},
		WorkingDir: t.TempDir(),
		Commit:     config.CommitConfig{Message: "Update content via CMS", AuthorName: "hugocms", AuthorEmail: "hugocms@localhost"},
	}
	return NewClient(cfg)
}

func TestClone_CreatesWorkingCopy(t *testing.T) {
	upstream := initUpstream(t)
	c := newTestClient(t, upstream)

	require.NoError(t, c.Clone(context.Background()))
	require.True(t, c.Exists())
	require.FileExists(t, filepath.Join(c.Dir(), "content", "index.md"))
}

func TestSync_ClonesWhenMissing(t *testing.T) {
	upstream := initUpstream(t)
	c := newTestClient(t, upstream)

	require.False(t, c.Exists())
	require.NoError(t, c.Sync(context.Background()))
	require.True(t, c.Exists())
}

func TestSync_PullsUpstreamChanges(t *testing.T) {
	upstream := initUpstream(t)
	c := newTestClient(t, upstream)
	require.NoError(t, c.Clone(context.Background()))

	// Push a new commit from a second clone.
	other := t.TempDir()
	repo, err := git.PlainClone(other, false, &git.CloneOptions{URL: upstream})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(other, "content", "about.md"), []byte("---\ntitle: About\n---\nAbout.\n"), 0o644))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(".")
	require.NoError(t, err)
	_, err = wt.Commit("add about", &git.CommitOptions{Author: testSignature()})
	require.NoError(t, err)
	require.NoError(t, repo.Push(&git.PushOptions{}))

	require.NoError(t, c.Sync(context.Background()))
	require.FileExists(t, filepath.Join(c.Dir(), "content", "about.md"))
}

func TestSync_UpToDateIsNotAnError(t *testing.T) {
	upstream := initUpstream(t)
	c := newTestClient(t, upstream)
	require.NoError(t, c.Clone(context.Background()))
	require.NoError(t, c.Sync(context.Background()))
}

func TestCommitAndPush_CleanWorktreeIsNoop(t *testing.T) {
	upstream := initUpstream(t)
	c := newTestClient(t, upstream)
	require.NoError(t, c.Clone(context.Background()))

	pushed, err := c.CommitAndPush(context.Background(), "")
	require.NoError(t, err)
	require.False(t, pushed)
}

func TestCommitAndPush_PushesLocalEdit(t *testing.T) {
	upstream := initUpstream(t)
	c := newTestClient(t, upstream)
	require.NoError(t, c.Clone(context.Background()))

	path := filepath.Join(c.Dir(), "content", "index.md")
	require.NoError(t, os.WriteFile(path, []byte("---\ntitle: Edited\n---\nEdited.\n"), 0o644))

	pushed, err := c.CommitAndPush(context.Background(), "edit home page")
	require.NoError(t, err)
	require.True(t, pushed)

	remote, err := git.PlainOpen(upstream)
	require.NoError(t, err)
	ref, err := remote.Head()
	require.NoError(t, err)
	commit, err := remote.CommitObject(ref.Hash())
	require.NoError(t, err)
	require.Equal(t, "edit home page", commit.Message)
	require.Equal(t, "hugocms", commit.Author.Name)
}

func TestClone_UnknownBranchClassifiedNotFound(t *testing.T) {
	upstream := initUpstream(t)
	cfg := &config.Config{
		Repository: config.RepositoryConfig{URL: upstream, Branch: "no-such-branch"},
		WorkingDir: t.TempDir(),
	}
	c := NewClient(cfg)

	err := c.Clone(context.Background())
	require.Error(t, err)
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
}

func TestRemoveClone(t *testing.T) {
	upstream := initUpstream(t)
	c := newTestClient(t, upstream)
	require.NoError(t, c.Clone(context.Background()))
	require.NoError(t, c.RemoveClone())
	require.False(t, c.Exists())
}

func TestClassify(t *testing.T) {
	var auth *AuthError
	require.True(t, errors.As(Classify("clone", "u", errors.New("authentication required")), &auth))

	var rl *RateLimitError
	require.True(t, errors.As(Classify("push", "u", errors.New("429 too many requests")), &rl))

	var nt *NetworkTimeoutError
	require.True(t, errors.As(Classify("pull", "u", errors.New("read tcp: i/o timeout")), &nt))

	plain := Classify("pull", "u", errors.New("object parse failure"))
	require.Contains(t, plain.Error(), "git pull u")
}
