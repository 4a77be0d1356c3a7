// Package site orchestrates the checked-out repository, the Hugo build, and
// the content watcher behind a single manager the HTTP layer talks to.
package site

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"git.home.luguber.info/inful/hugocms/internal/config"
	"git.home.luguber.info/inful/hugocms/internal/content"
	"git.home.luguber.info/inful/hugocms/internal/gitrepo"
	"git.home.luguber.info/inful/hugocms/internal/hugo"
	"git.home.luguber.info/inful/hugocms/internal/logfields"
	"git.home.luguber.info/inful/hugocms/internal/metrics"
	"git.home.luguber.info/inful/hugocms/internal/watcher"
)

// Status is a snapshot of the manager's state for the admin API.
type Status struct {
	Ready         bool      `json:"ready"`
	RepoCloned    bool      `json:"repo_cloned"`
	Built         bool      `json:"built"`
	HugoAvailable bool      `json:"hugo_available"`
	RepoURL       string    `json:"repo_url"`
	Branch        string    `json:"branch"`
	AuthType      string    `json:"auth_type"`
	LastSync      time.Time `json:"last_sync,omitzero"`
	LastBuild     time.Time `json:"last_build,omitzero"`
	LastError     string    `json:"last_error,omitempty"`
}

// Manager owns the site lifecycle: cloning and syncing the repository,
// running builds, publishing edits, and reacting to content changes.
type Manager struct {
	cfg      *config.Config
	runner   *hugo.Runner
	recorder metrics.Recorder

	mu        sync.Mutex
	git       *gitrepo.Client
	store     *content.Store
	watch     *watcher.Watcher
	ready     bool
	built     bool
	publicDir string
	lastSync  time.Time
	lastBuild time.Time
	lastError string
}

// NewManager wires a manager from configuration. Call Setup before use.
func NewManager(cfg *config.Config, recorder metrics.Recorder) *Manager {
	if recorder == nil {
		recorder = metrics.NewNoopRecorder()
	}
	return &Manager{
		cfg:      cfg,
		git:      gitrepo.NewClient(cfg),
		runner:   &hugo.Runner{},
		recorder: recorder,
	}
}

// client returns the current git client; Configure may swap it.
func (m *Manager) client() *gitrepo.Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.git
}

// Setup clones (or updates) the repository, validates the site layout, runs
// the initial build, and starts the content watcher when enabled.
func (m *Manager) Setup(ctx context.Context) error {
	if err := m.Sync(ctx); err != nil {
		return err
	}
	repoDir := m.client().Dir()
	if err := hugo.ValidateSite(repoDir); err != nil {
		return fmt.Errorf("repository is not a Hugo site: %w", err)
	}

	m.mu.Lock()
	m.store = content.NewStore(repoDir, m.cfg.ContentDir)
	m.ready = true
	m.mu.Unlock()

	if _, err := m.Build(ctx); err != nil {
		// An initial build failure leaves the CMS usable for editing;
		// the site just has no rendered preview yet.
		slog.Warn("Initial build failed", logfields.Error(err))
	}

	if m.cfg.Watcher.IsEnabled() {
		if err := m.startWatcher(); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) startWatcher() error {
	w, err := watcher.New(watcher.Config{
		Dir:         filepath.Join(m.client().Dir(), m.cfg.ContentDir),
		QuietWindow: m.cfg.Watcher.QuietWindow.Std(),
		MaxDelay:    m.cfg.Watcher.MaxDelay.Std(),
		OnChange: func(paths []string) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if _, err := m.Build(ctx); err != nil {
				slog.Error("Rebuild after content change failed", logfields.Error(err))
			}
		},
	})
	if err != nil {
		return fmt.Errorf("start content watcher: %w", err)
	}
	w.Start()

	m.mu.Lock()
	m.watch = w
	m.mu.Unlock()
	return nil
}

func (m *Manager) stopWatcher() {
	m.mu.Lock()
	w := m.watch
	m.watch = nil
	m.mu.Unlock()
	if w != nil {
		w.Stop()
	}
}

// Store returns the content store, or nil before Setup succeeds.
func (m *Manager) Store() *content.Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store
}

// PublicDir returns the rendered site directory, empty until a build succeeds.
func (m *Manager) PublicDir() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.publicDir
}

// Status reports the current lifecycle state.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Status{
		Ready:         m.ready,
		RepoCloned:    m.git.Exists(),
		Built:         m.built,
		HugoAvailable: m.runner.Available(),
		RepoURL:       m.cfg.Repository.URL,
		Branch:        m.cfg.Repository.Branch,
		AuthType:      authType(m.cfg.Repository.Auth),
		LastSync:      m.lastSync,
		LastBuild:     m.lastBuild,
		LastError:     m.lastError,
	}
}

// Configure swaps the repository settings at runtime and re-runs Setup over
// a fresh clone. Settings are held in memory only; nothing is written back
// to the configuration file.
func (m *Manager) Configure(ctx context.Context, repo config.RepositoryConfig) error {
	if err := (&config.Config{Repository: repo}).Validate(); err != nil {
		return err
	}
	slog.Info("Reconfiguring repository", logfields.URL(repo.URL), logfields.Branch(repo.Branch))
	m.stopWatcher()

	m.mu.Lock()
	m.cfg.Repository = repo
	m.ready = false
	m.built = false
	m.publicDir = ""
	m.store = nil
	m.git = gitrepo.NewClient(m.cfg)
	m.mu.Unlock()

	if err := m.client().RemoveClone(); err != nil {
		return err
	}
	return m.Setup(ctx)
}

func authType(a *config.AuthConfig) string {
	if a == nil || a.Type == "" {
		return "none"
	}
	return a.Type
}

// Sync pulls the latest content from the remote, cloning when needed.
func (m *Manager) Sync(ctx context.Context) error {
	err := m.client().Sync(ctx)
	m.recorder.RecordSync(err == nil)

	m.mu.Lock()
	if err != nil {
		m.lastError = err.Error()
	} else {
		m.lastSync = time.Now()
		m.lastError = ""
	}
	m.mu.Unlock()
	return err
}

// Build renders the site with Hugo and records the public directory.
func (m *Manager) Build(ctx context.Context) (*hugo.BuildResult, error) {
	start := time.Now()
	res, err := m.runner.Build(ctx, m.client().Dir())
	m.recorder.RecordBuild(time.Since(start), err == nil)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.lastError = err.Error()
		return nil, err
	}
	m.built = true
	m.publicDir = res.PublicDir
	m.lastBuild = time.Now()
	m.lastError = ""
	return res, nil
}

// Publish syncs with the remote first, then commits and pushes local edits.
// Returns false when there was nothing to publish.
func (m *Manager) Publish(ctx context.Context, message string) (bool, error) {
	start := time.Now()
	pushed, err := m.publish(ctx, message)
	m.recorder.RecordPublish(time.Since(start), err == nil)
	return pushed, err
}

func (m *Manager) publish(ctx context.Context, message string) (bool, error) {
	// Pull first so the push does not race concurrent remote commits.
	if err := m.Sync(ctx); err != nil {
		return false, fmt.Errorf("sync before publish: %w", err)
	}
	pushed, err := m.client().CommitAndPush(ctx, message)
	if err != nil {
		m.mu.Lock()
		m.lastError = err.Error()
		m.mu.Unlock()
		return false, err
	}
	return pushed, nil
}

// ClearCache discards the local clone and rebuilds from a fresh checkout.
// The watcher is stopped during the swap and restarted afterwards.
func (m *Manager) ClearCache(ctx context.Context) error {
	slog.Info("Clearing local site cache")
	m.stopWatcher()

	m.mu.Lock()
	m.ready = false
	m.built = false
	m.publicDir = ""
	m.store = nil
	m.mu.Unlock()

	if err := m.client().RemoveClone(); err != nil {
		return err
	}
	return m.Setup(ctx)
}

// Close stops background activity. The manager is not usable afterwards.
func (m *Manager) Close() {
	m.stopWatcher()
}
