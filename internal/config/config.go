// Package config loads and validates the hugocms configuration.
//
// Sources are merged in order: YAML config file (optional), .env files via
// godotenv, HUGOCMS_* environment variables, then defaults. Environment
// variables win over the config file so deployments can keep credentials out
// of versioned files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AuthConfig describes how to authenticate against the content repository.
type AuthConfig struct {
	Type     string `yaml:"type"` // none|token|basic|ssh
	Token    string `yaml:"token,omitempty"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	KeyPath  string `yaml:"key_path,omitempty"`
}

// RepositoryConfig identifies the git repository holding the Hugo site.
type RepositoryConfig struct {
	URL    string      `yaml:"url"`
	Branch string      `yaml:"branch"`
	Auth   *AuthConfig `yaml:"auth,omitempty"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Listen string `yaml:"listen"`
	// AllowedHosts restricts the Host header when non-empty.
	AllowedHosts []string `yaml:"allowed_hosts,omitempty"`
}

// Duration wraps time.Duration so YAML files can say "500ms" or "5m".
// Bare integers are taken as seconds.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err == nil {
		parsed, perr := time.ParseDuration(raw)
		if perr != nil {
			return fmt.Errorf("invalid duration %q: %w", raw, perr)
		}
		*d = Duration(parsed)
		return nil
	}
	var seconds int64
	if err := value.Decode(&seconds); err == nil {
		*d = Duration(time.Duration(seconds) * time.Second)
		return nil
	}
	return fmt.Errorf("invalid duration %q", value.Value)
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// WatcherConfig controls the content file watcher. The watcher is on unless
// the config file says otherwise, so Enabled is a pointer to tell "unset"
// apart from an explicit false.
type WatcherConfig struct {
	Enabled     *bool    `yaml:"enabled"`
	QuietWindow Duration `yaml:"quiet_window"`
	MaxDelay    Duration `yaml:"max_delay"`
}

// IsEnabled reports whether the watcher should run.
func (w WatcherConfig) IsEnabled() bool {
	return w.Enabled == nil || *w.Enabled
}

// SyncConfig controls scheduled repository syncs. Interval 0 disables them.
type SyncConfig struct {
	Interval Duration `yaml:"interval"`
}

// CommitConfig holds defaults for publish commits.
type CommitConfig struct {
	Message     string `yaml:"message"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Config is the root configuration for hugocms.
type Config struct {
	Repository RepositoryConfig `yaml:"repository"`
	WorkingDir string           `yaml:"working_dir"`
	ContentDir string           `yaml:"content_dir"`
	Server     ServerConfig     `yaml:"server"`
	Watcher    WatcherConfig    `yaml:"watcher"`
	Sync       SyncConfig       `yaml:"sync"`
	AuditDB    string           `yaml:"audit_db"`
	Commit     CommitConfig     `yaml:"commit"`
	LogLevel   string           `yaml:"log_level"`
	LogFormat  string           `yaml:"log_format"`
}

// RepoDir returns the directory the repository is cloned into.
// The clone lives in a subdirectory so clearing it never removes
// sibling state (audit DB, temp files) in the working directory.
func (c *Config) RepoDir() string {
	return filepath.Join(c.WorkingDir, "repo")
}

// Load reads configuration from the given YAML file (optional) and the
// environment, applies defaults, and validates the result.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config file %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// Config file is optional; environment alone is a valid setup.
		default:
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadEnvFiles loads .env / .env.local without overriding the process
// environment. Missing files are not an error.
func loadEnvFiles() {
	for _, p := range []string{".env", ".env.local"} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("HUGOCMS_GIT_REPO_URL"); v != "" {
		c.Repository.URL = v
	}
	if v := os.Getenv("HUGOCMS_GIT_BRANCH"); v != "" {
		c.Repository.Branch = v
	}
	if v := os.Getenv("HUGOCMS_GIT_TOKEN"); v != "" {
		if c.Repository.Auth == nil {
			c.Repository.Auth = &AuthConfig{Type: "token"}
		}
		c.Repository.Auth.Token = v
		if c.Repository.Auth.Type == "" || c.Repository.Auth.Type == "none" {
			c.Repository.Auth.Type = "token"
		}
	}
	if v := os.Getenv("HUGOCMS_WORKING_DIR"); v != "" {
		c.WorkingDir = v
	}
	if v := os.Getenv("HUGOCMS_LISTEN"); v != "" {
		c.Server.Listen = v
	}
	if v := os.Getenv("HUGOCMS_ALLOWED_HOSTS"); v != "" {
		hosts := strings.Split(v, ",")
		c.Server.AllowedHosts = c.Server.AllowedHosts[:0]
		for _, h := range hosts {
			if h = strings.TrimSpace(h); h != "" {
				c.Server.AllowedHosts = append(c.Server.AllowedHosts, h)
			}
		}
	}
	if v := os.Getenv("HUGOCMS_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("HUGOCMS_LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
}

func (c *Config) applyDefaults() {
	if c.Repository.Branch == "" {
		c.Repository.Branch = "main"
	}
	if c.Repository.Auth == nil {
		c.Repository.Auth = &AuthConfig{Type: "none"}
	}
	if c.WorkingDir == "" {
		c.WorkingDir = filepath.Join(os.TempDir(), "hugocms-work")
	}
	if c.ContentDir == "" {
		c.ContentDir = "content"
	}
	if c.Server.Listen == "" {
		c.Server.Listen = ":5000"
	}
	if c.Watcher.QuietWindow <= 0 {
		c.Watcher.QuietWindow = Duration(500 * time.Millisecond)
	}
	if c.Watcher.MaxDelay <= 0 {
		c.Watcher.MaxDelay = Duration(5 * time.Second)
	}
	if c.AuditDB == "" {
		c.AuditDB = filepath.Join(c.WorkingDir, "audit.db")
	}
	if c.Commit.Message == "" {
		c.Commit.Message = "Update content via CMS"
	}
	if c.Commit.AuthorName == "" {
		c.Commit.AuthorName = "hugocms"
	}
	if c.Commit.AuthorEmail == "" {
		c.Commit.AuthorEmail = "hugocms@localhost"
	}
	c.LogLevel = string(NormalizeLogLevel(c.LogLevel))
	c.LogFormat = string(NormalizeLogFormat(c.LogFormat))
}

// Validate checks invariants that later stages rely on.
func (c *Config) Validate() error {
	if c.Repository.URL == "" {
		return fmt.Errorf("repository.url is required (set it in the config file or HUGOCMS_GIT_REPO_URL)")
	}
	if c.Repository.Auth != nil {
		switch c.Repository.Auth.Type {
		case "", "none", "ssh":
		case "token":
			if c.Repository.Auth.Token == "" {
				return fmt.Errorf("repository.auth: token authentication requires a token")
			}
		case "basic":
			if c.Repository.Auth.Username == "" || c.Repository.Auth.Password == "" {
				return fmt.Errorf("repository.auth: basic authentication requires username and password")
			}
		default:
			return fmt.Errorf("repository.auth: unsupported authentication type %q", c.Repository.Auth.Type)
		}
	}
	if c.Watcher.MaxDelay < c.Watcher.QuietWindow {
		return fmt.Errorf("watcher.max_delay must be >= watcher.quiet_window")
	}
	return nil
}
