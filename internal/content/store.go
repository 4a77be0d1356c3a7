// Package content manages the Markdown files of the site's content tree:
// listing, reading, format-preserving saves, and creation of new pages.
package content

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/hugocms/internal/frontmatter"
	"git.home.luguber.info/inful/hugocms/internal/logfields"
)

// File describes one Markdown content file.
type File struct {
	// Path is relative to the content root, slash-separated.
	Path string `json:"path"`
	Name string `json:"name"`
}

// Document is a parsed content file.
type Document struct {
	Fields map[string]any `json:"frontmatter"`
	Body   string         `json:"content"`
}

// ErrExists is returned by Create when the target file is already present.
var ErrExists = errors.New("already exists")

// Store provides access to the content tree of a checked-out site.
type Store struct {
	root string
}

// NewStore creates a store over siteDir/contentDir.
func NewStore(siteDir, contentDir string) *Store {
	return &Store{root: filepath.Join(siteDir, contentDir)}
}

// Root returns the absolute content root directory.
func (s *Store) Root() string { return s.root }

// List walks the content tree and returns all Markdown files in lexical order.
func (s *Store) List() ([]File, error) {
	var files []File
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		files = append(files, File{Path: filepath.ToSlash(rel), Name: d.Name()})
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("content directory does not exist: %w", err)
		}
		return nil, fmt.Errorf("walk content directory: %w", err)
	}
	return files, nil
}

// Read loads and parses one content file.
func (s *Store) Read(rel string) (*Document, error) {
	abs, err := s.abs(rel)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read content file %s: %w", rel, err)
	}
	fields, body, err := frontmatter.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse content file %s: %w", rel, err)
	}
	return &Document{Fields: fields, Body: string(body)}, nil
}

// Save rewrites an existing content file with updated front matter fields and
// body, preserving the original front matter formatting. The file must exist;
// use Create for new pages.
func (s *Store) Save(rel string, fields map[string]any, body string) error {
	abs, err := s.abs(rel)
	if err != nil {
		return err
	}
	original, err := os.ReadFile(abs)
	if err != nil {
		return fmt.Errorf("read content file %s: %w", rel, err)
	}
	out, err := frontmatter.Patch(original, fields, []byte(body))
	if err != nil {
		return fmt.Errorf("patch front matter of %s: %w", rel, err)
	}
	if err := os.WriteFile(abs, out, 0o644); err != nil {
		return fmt.Errorf("write content file %s: %w", rel, err)
	}
	slog.Info("Content file saved", logfields.File(rel))
	return nil
}

// Create writes a new content file with freshly serialized front matter and
// returns the site URL of the new page. Existing files are not overwritten.
func (s *Store) Create(rel string, fields map[string]any, body string) (string, error) {
	rel = SlugifyPath(rel)
	if rel == "" {
		return "", fmt.Errorf("content path has no usable characters")
	}
	abs, err := s.abs(rel)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(abs); err == nil {
		return "", fmt.Errorf("content file %s: %w", rel, ErrExists)
	}
	out, err := frontmatter.Render(fields, []byte(body))
	if err != nil {
		return "", fmt.Errorf("render front matter for %s: %w", rel, err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o750); err != nil {
		return "", fmt.Errorf("create content subdirectory: %w", err)
	}
	if err := os.WriteFile(abs, out, 0o644); err != nil {
		return "", fmt.Errorf("write content file %s: %w", rel, err)
	}
	slog.Info("Content file created", logfields.File(rel))
	return PageURL(rel), nil
}

// PageURL maps a content-relative Markdown path to its Hugo page URL.
func PageURL(rel string) string {
	u := strings.TrimSuffix(filepath.ToSlash(rel), ".md")
	u = strings.TrimSuffix(u, "/index")
	u = strings.TrimSuffix(u, "/_index")
	if u == "index" || u == "_index" {
		u = ""
	}
	return "/" + strings.TrimPrefix(u, "/")
}

// abs resolves a content-relative path, rejecting traversal outside the root.
func (s *Store) abs(rel string) (string, error) {
	rel = filepath.FromSlash(strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(rel)), "/"))
	if rel == "" || rel == "." {
		return "", fmt.Errorf("empty content path")
	}
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("content path %q escapes the content directory", rel)
	}
	return filepath.Join(s.root, rel), nil
}
