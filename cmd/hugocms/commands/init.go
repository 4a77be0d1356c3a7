package commands

import (
	"fmt"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/hugocms/internal/logfields"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite an existing configuration file"`
}

const starterConfig = `# hugocms configuration
repository:
  url: https://example.com/you/your-hugo-site.git
  branch: main
  auth:
    type: none # none|token|basic|ssh
    # token: set via HUGOCMS_GIT_TOKEN instead of committing it here

working_dir: /var/lib/hugocms

server:
  listen: ":5000"
  # allowed_hosts:
  #   - cms.example.com

watcher:
  enabled: true
  quiet_window: 500ms
  max_delay: 5s

sync:
  interval: 5m

commit:
  message: Update content via CMS
  author_name: hugocms
  author_email: hugocms@localhost

log_level: info
log_format: text
`

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	if _, err := os.Stat(root.Config); err == nil && !i.Force {
		return fmt.Errorf("configuration file %s already exists (use --force to overwrite)", root.Config)
	}
	if err := os.WriteFile(root.Config, []byte(starterConfig), 0o644); err != nil {
		return fmt.Errorf("write configuration file: %w", err)
	}
	slog.Info("Configuration file written", logfields.Path(root.Config))
	fmt.Printf("Wrote %s. Edit repository.url, then run: hugocms serve -c %s\n", root.Config, root.Config)
	return nil
}
