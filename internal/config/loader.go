package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const envPrefix = "SNACKDEALS"

// DefaultKeywords is the stock snack keyword list swept when no override
// is configured.
var DefaultKeywords = []string{
	"snack box",
	"rice krispies treats",
	"granola bars",
	"chips snacks",
	"cookies snacks",
	"trail mix",
	"popcorn snacks",
	"pretzels snacks",
	"crackers snacks",
	"fruit snacks",
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment variables. An explicit path must exist; the default config
// file locations are optional.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := DefaultConfigDir(); err == nil {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	return &cfg, nil
}

// Default returns the built-in configuration without consulting files or
// the environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	hook := viper.DecodeHook(mapstructure.StringToTimeDurationHookFunc())
	_ = v.Unmarshal(&cfg, hook)
	return &cfg
}

// DefaultConfigDir returns the per-user configuration directory.
func DefaultConfigDir() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, "snackdeals"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "snackdeals"), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.driver", "libsql")
	v.SetDefault("store.path", "snackdeals.db")
	v.SetDefault("store.url", "")
	v.SetDefault("store.auth_token", "")

	v.SetDefault("catalog.endpoint", "https://webservices.amazon.com")
	v.SetDefault("catalog.marketplace", "https://www.amazon.com")
	// Credential keys default empty so environment overrides bind.
	v.SetDefault("catalog.access_key", "")
	v.SetDefault("catalog.secret_key", "")
	v.SetDefault("catalog.partner_tag", "")

	v.SetDefault("bluesky.host", "https://bsky.social")
	v.SetDefault("bluesky.handle", "")
	v.SetDefault("bluesky.app_password", "")
	v.SetDefault("bluesky.post_interval", "6h")

	v.SetDefault("sweep.keywords", DefaultKeywords)
	v.SetDefault("sweep.item_count", 10)
	v.SetDefault("sweep.min_price", "5.00")
	v.SetDefault("sweep.min_discount", 15)
	v.SetDefault("sweep.top_deals", 5)
	v.SetDefault("sweep.keyword_cooldown", "45s")
	v.SetDefault("sweep.error_cooldown", "3m")

	v.SetDefault("throttle.min_interval", "15s")
	v.SetDefault("throttle.max_retries", 3)
	v.SetDefault("throttle.base_backoff", "30s")
	v.SetDefault("throttle.floor_increment", "5s")

	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("logging.level", "info")
}
