package commands

import (
	"context"
	"fmt"
	"time"

	"git.home.luguber.info/inful/hugocms/internal/config"
	"git.home.luguber.info/inful/hugocms/internal/gitrepo"
	"git.home.luguber.info/inful/hugocms/internal/hugo"
)

// CheckCmd implements the 'check' command: validates the configuration and
// verifies the repository can be cloned and looks like a Hugo site.
type CheckCmd struct {
	Timeout time.Duration `help:"Clone timeout" default:"2m"`
}

func (c *CheckCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	configureLogging(cfg, root.Verbose)
	fmt.Println("Configuration OK")

	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()

	client := gitrepo.NewClient(cfg)
	if err := client.Clone(ctx); err != nil {
		return fmt.Errorf("repository access check failed: %w", err)
	}
	fmt.Println("Repository clone OK")
	defer func() { _ = client.RemoveClone() }()

	if err := hugo.ValidateSite(client.Dir()); err != nil {
		return fmt.Errorf("site layout check failed: %w", err)
	}
	fmt.Println("Hugo site layout OK")

	runner := &hugo.Runner{}
	if !runner.Available() {
		fmt.Println("Warning: hugo binary not found in PATH; builds will fail")
		return nil
	}
	if _, err := runner.Build(ctx, client.Dir()); err != nil {
		return fmt.Errorf("test build failed: %w", err)
	}
	fmt.Println("Test build OK")
	return nil
}
