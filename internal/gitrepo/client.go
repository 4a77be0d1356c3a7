// Package gitrepo wraps go-git operations for the content repository:
// clone, pull, commit, and push against a single configured remote.
package gitrepo

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"git.home.luguber.info/inful/hugocms/internal/config"
	"git.home.luguber.info/inful/hugocms/internal/logfields"
)

// Client handles git operations for the configured content repository.
type Client struct {
	repo   config.RepositoryConfig
	commit config.CommitConfig
	dir    string
}

// NewClient creates a client cloning into cfg.RepoDir().
func NewClient(cfg *config.Config) *Client {
	return &Client{
		repo:   cfg.Repository,
		commit: cfg.Commit,
		dir:    cfg.RepoDir(),
	}
}

// Dir returns the local clone directory.
func (c *Client) Dir() string { return c.dir }

// Exists reports whether a clone is already present.
func (c *Client) Exists() bool {
	_, err := os.Stat(filepath.Join(c.dir, git.GitDirName))
	return err == nil
}

// Clone clones the repository, replacing any existing directory contents.
func (c *Client) Clone(ctx context.Context) error {
	slog.Debug("Cloning repository", logfields.URL(c.repo.URL), logfields.Branch(c.repo.Branch), logfields.Path(c.dir))

	if err := os.RemoveAll(c.dir); err != nil {
		return fmt.Errorf("remove existing clone directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.dir), 0o750); err != nil {
		return fmt.Errorf("create working directory: %w", err)
	}

	auth, err := authMethod(c.repo.Auth)
	if err != nil {
		return fmt.Errorf("setup authentication: %w", err)
	}

	opts := &git.CloneOptions{URL: c.repo.URL, Auth: auth}
	if c.repo.Branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(c.repo.Branch)
		opts.SingleBranch = true
	}

	repository, err := git.PlainCloneContext(ctx, c.dir, false, opts)
	if err != nil {
		return Classify("clone", c.repo.URL, err)
	}

	if ref, herr := repository.Head(); herr == nil {
		slog.Info("Repository cloned",
			logfields.URL(c.repo.URL),
			logfields.Branch(c.repo.Branch),
			slog.String("commit", shortHash(ref.Hash())))
	} else {
		slog.Info("Repository cloned", logfields.URL(c.repo.URL), logfields.Branch(c.repo.Branch))
	}
	return nil
}

// Sync pulls the latest changes, cloning first when no local copy exists.
func (c *Client) Sync(ctx context.Context) error {
	if !c.Exists() {
		slog.Debug("No local clone, cloning", logfields.URL(c.repo.URL))
		return c.Clone(ctx)
	}

	repository, err := git.PlainOpen(c.dir)
	if err != nil {
		return fmt.Errorf("open repository: %w", err)
	}
	worktree, err := repository.Worktree()
	if err != nil {
		return fmt.Errorf("get worktree: %w", err)
	}

	auth, err := authMethod(c.repo.Auth)
	if err != nil {
		return fmt.Errorf("setup authentication: %w", err)
	}

	opts := &git.PullOptions{RemoteName: "origin", Auth: auth}
	if c.repo.Branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(c.repo.Branch)
	}

	err = worktree.PullContext(ctx, opts)
	switch {
	case err == nil:
		if ref, herr := repository.Head(); herr == nil {
			slog.Info("Repository updated", logfields.Branch(c.repo.Branch), slog.String("commit", shortHash(ref.Hash())))
		}
		return nil
	case err == git.NoErrAlreadyUpToDate:
		slog.Info("Repository already up to date", logfields.Branch(c.repo.Branch))
		return nil
	default:
		return Classify("pull", c.repo.URL, err)
	}
}

// CommitAndPush stages all changes, commits with the given message, and
// pushes to the configured branch. Returns false when the worktree was clean
// and there was nothing to do.
func (c *Client) CommitAndPush(ctx context.Context, message string) (bool, error) {
	repository, err := git.PlainOpen(c.dir)
	if err != nil {
		return false, fmt.Errorf("open repository: %w", err)
	}
	worktree, err := repository.Worktree()
	if err != nil {
		return false, fmt.Errorf("get worktree: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return false, fmt.Errorf("worktree status: %w", err)
	}
	if status.IsClean() {
		slog.Info("No changes to commit")
		return false, nil
	}

	if err := worktree.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return false, fmt.Errorf("stage changes: %w", err)
	}

	if message == "" {
		message = c.commit.Message
	}
	hash, err := worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  c.commit.AuthorName,
			Email: c.commit.AuthorEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return false, fmt.Errorf("commit changes: %w", err)
	}

	auth, err := authMethod(c.repo.Auth)
	if err != nil {
		return false, fmt.Errorf("setup authentication: %w", err)
	}
	if err := repository.PushContext(ctx, &git.PushOptions{RemoteName: "origin", Auth: auth}); err != nil {
		if err == git.NoErrAlreadyUpToDate {
			return true, nil
		}
		return false, Classify("push", c.repo.URL, err)
	}

	slog.Info("Changes committed and pushed",
		logfields.Branch(c.repo.Branch),
		slog.String("commit", shortHash(hash)))
	return true, nil
}

// RemoveClone deletes the local clone directory.
func (c *Client) RemoveClone() error {
	if err := os.RemoveAll(c.dir); err != nil {
		return fmt.Errorf("remove clone directory: %w", err)
	}
	slog.Info("Clone removed", logfields.Path(c.dir))
	return nil
}

func shortHash(h plumbing.Hash) string {
	s := h.String()
	if len(s) > 8 {
		return s[:8]
	}
	return s
}
