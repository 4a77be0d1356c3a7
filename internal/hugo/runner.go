// Package hugo validates Hugo site layouts and runs the hugo binary to
// render the static site.
package hugo

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/hugocms/internal/logfields"
)

// configFileNames are the configuration files Hugo recognizes at a site root.
var configFileNames = []string{
	"config.toml", "config.yaml", "config.yml",
	"hugo.toml", "hugo.yaml", "hugo.yml",
}

// ValidateSite checks that dir looks like a Hugo site: a recognized
// configuration file plus a content directory.
func ValidateSite(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("site path does not exist: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("site path %s is not a directory", dir)
	}

	hasConfig := false
	for _, name := range configFileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			hasConfig = true
			break
		}
	}
	if !hasConfig {
		return fmt.Errorf("no Hugo configuration file found in %s", dir)
	}

	if _, err := os.Stat(filepath.Join(dir, "content")); err != nil {
		return fmt.Errorf("no content directory found in %s", dir)
	}
	return nil
}

// Runner invokes the external hugo binary.
type Runner struct {
	// Binary is the hugo executable; defaults to "hugo" from PATH.
	Binary string
}

// BuildResult carries the outcome of a successful build.
type BuildResult struct {
	PublicDir string
	Stdout    string
	Duration  time.Duration
}

// Available reports whether the hugo binary can be found.
func (r *Runner) Available() bool {
	_, err := exec.LookPath(r.binary())
	return err == nil
}

func (r *Runner) binary() string {
	if r.Binary != "" {
		return r.Binary
	}
	return "hugo"
}

// Build runs hugo in siteDir and returns the public output directory.
// A non-zero exit wraps the captured output in the returned error.
func (r *Runner) Build(ctx context.Context, siteDir string) (*BuildResult, error) {
	if _, err := os.Stat(siteDir); err != nil {
		return nil, fmt.Errorf("site directory does not exist: %w", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.binary())
	cmd.Dir = siteDir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Info("Running Hugo build", logfields.Path(siteDir))
	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		exitCode := -1
		if ee, ok := err.(*exec.ExitError); ok {
			exitCode = ee.ExitCode()
		}
		return nil, fmt.Errorf("hugo build failed (exit code %d): %w\nstdout: %s\nstderr: %s",
			exitCode, err, strings.TrimSpace(stdout.String()), strings.TrimSpace(stderr.String()))
	}

	slog.Info("Hugo build completed", slog.Duration("duration", elapsed))
	return &BuildResult{
		PublicDir: filepath.Join(siteDir, "public"),
		Stdout:    stdout.String(),
		Duration:  elapsed,
	}, nil
}
