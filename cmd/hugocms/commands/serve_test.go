package commands

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/hugocms/internal/config"
)

func TestServe_SurvivesSetupFailure(t *testing.T) {
	cfg := &config.Config{
		Repository: config.RepositoryConfig{
			URL:    filepath.Join(t.TempDir(), "no-such-repo.git"),
			Branch: "master",
		},
		WorkingDir: t.TempDir(),
		ContentDir: "content",
		Server:     config.ServerConfig{Listen: "127.0.0.1:0"},
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	// The clone fails, but the server must still come up so the repository
	// can be reconfigured over the admin API. A clean shutdown on context
	// cancellation means serving started.
	cmd := &ServeCmd{NoMetrics: true, NoAudit: true}
	require.NoError(t, cmd.serve(ctx, cfg))
}
