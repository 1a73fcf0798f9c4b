package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goinupdeals/snackdeals/internal/config"
)

var (
	configForce bool
	configPath  string
)

// starterConfig mirrors the built-in defaults. Durations use Go syntax
// ("45s", "3m", "6h").
const starterConfig = `store:
  driver: libsql
  path: snackdeals.db
  # For a remote Turso database instead of a local file:
  # url: libsql://snackdeals-yourorg.turso.io
  # auth_token: ""

catalog:
  endpoint: https://webservices.amazon.com
  marketplace: https://www.amazon.com
  access_key: ""
  secret_key: ""
  partner_tag: ""

bluesky:
  host: https://bsky.social
  handle: ""
  app_password: ""
  post_interval: 6h

sweep:
  # keywords:
  #   - snack box
  #   - trail mix
  item_count: 10
  min_price: "5.00"
  min_discount: 15
  top_deals: 5
  keyword_cooldown: 45s
  error_cooldown: 3m

throttle:
  min_interval: 15s
  max_retries: 3
  base_backoff: 30s
  floor_increment: 5s

server:
  host: 127.0.0.1
  port: 8080

logging:
  level: info
`

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	Long: `Write a starter config file with the built-in defaults to the
per-user config directory (or the path given with --path).

Credentials are left blank; fill them in or supply them via
SNACKDEALS_* environment variables.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			dir, err := config.DefaultConfigDir()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory: %w", err)
			}
			path = filepath.Join(dir, "config.yaml")
		}

		if !configForce {
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
			}
		}

		if err := os.WriteFile(path, []byte(starterConfig), 0o600); err != nil {
			return fmt.Errorf("write config file: %w", err)
		}

		fmt.Printf("Wrote starter config to %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		shown := *cfg
		// Credentials stay out of terminal scrollback.
		shown.Catalog.SecretKey = redact(shown.Catalog.SecretKey)
		shown.Bluesky.AppPassword = redact(shown.Bluesky.AppPassword)
		shown.Store.AuthToken = redact(shown.Store.AuthToken)

		data, err := yaml.Marshal(&shown)
		if err != nil {
			return fmt.Errorf("encode config: %w", err)
		}
		fmt.Print(string(data))
		return nil
	},
}

func redact(value string) string {
	if value == "" {
		return ""
	}
	return "********"
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing config file")
	configInitCmd.Flags().StringVar(&configPath, "path", "", "destination file (default is the per-user config directory)")
}
