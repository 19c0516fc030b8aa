package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/wordcanvas/pkg/actions"
	"github.com/matzehuels/wordcanvas/pkg/cache"
	"github.com/matzehuels/wordcanvas/pkg/canvas"
	"github.com/matzehuels/wordcanvas/pkg/pipeline"
)

// =============================================================================
// Config File
// =============================================================================

// Config is the contents of config.toml. Every field is optional; flags
// override whatever the file sets.
type Config struct {
	API       APIConfig               `toml:"api"`
	Drawing   DrawingConfig           `toml:"drawing"`
	WordCloud actions.WordCloudConfig `toml:"wordcloud"`
	Cache     CacheConfig             `toml:"cache"`
	Server    ServerConfig            `toml:"server"`
}

// APIConfig locates the canvas server.
type APIConfig struct {
	BaseURL      string        `toml:"base_url"`
	PollInterval time.Duration `toml:"poll_interval"`
}

// DrawingConfig controls live drawing and raster output.
type DrawingConfig struct {
	Speed float64 `toml:"speed"`
	Scale float64 `toml:"scale"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend         string `toml:"backend"`
	Dir             string `toml:"dir"`
	RedisAddr       string `toml:"redis_addr"`
	RedisPassword   string `toml:"redis_password"`
	RedisDB         int    `toml:"redis_db"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
	Prefix          string `toml:"prefix"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr    string        `toml:"addr"`
	Timeout time.Duration `toml:"timeout"`
}

const (
	defaultServerAddr    = ":8080"
	defaultServerTimeout = 30 * time.Second
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL:      canvas.DefaultBaseURL,
			PollInterval: canvas.DefaultPollInterval,
		},
		Drawing: DrawingConfig{
			Speed: pipeline.DefaultSpeed,
			Scale: pipeline.DefaultScale,
		},
		Cache: CacheConfig{
			Backend: cache.BackendFile,
		},
		Server: ServerConfig{
			Addr:    defaultServerAddr,
			Timeout: defaultServerTimeout,
		},
	}
}

// LoadConfig reads path on top of the defaults. A missing file is only an
// error when required is set, i.e. when the user named it explicitly.
func LoadConfig(path string, required bool) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("load config %s: unknown key %q", path, undecoded[0].String())
	}
	return cfg, nil
}

// WriteConfig encodes cfg as TOML.
func WriteConfig(w io.Writer, cfg Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}

// CacheOptions converts the [cache] section for cache.Open. dir is used
// when the section does not name a directory.
func (c Config) CacheOptions(dir string) cache.Config {
	cc := cache.Config{
		Backend: c.Cache.Backend,
		Dir:     c.Cache.Dir,
		Redis: cache.RedisOptions{
			Addr:     c.Cache.RedisAddr,
			Password: c.Cache.RedisPassword,
			DB:       c.Cache.RedisDB,
		},
		Mongo: cache.MongoOptions{
			URI:        c.Cache.MongoURI,
			Database:   c.Cache.MongoDatabase,
			Collection: c.Cache.MongoCollection,
		},
		Prefix: c.Cache.Prefix,
	}
	if cc.Dir == "" {
		cc.Dir = dir
	}
	return cc
}

// PipelineOptions returns pipeline options seeded from the config.
func (c Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		WordCloud: c.WordCloud,
		Speed:     c.Drawing.Speed,
		Scale:     c.Drawing.Scale,
	}
}

// =============================================================================
// Paths
// =============================================================================

// configPath returns the config file location using XDG standard
// (~/.config/wordcanvas/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// cacheDir returns the cache directory using XDG standard (~/.cache/wordcanvas/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Commands
// =============================================================================

// configCommand creates the config inspection command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return WriteConfig(cmd.OutOrStdout(), c.Config)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.configFile
			if path == "" {
				p, err := configPath()
				if err != nil {
					return err
				}
				path = p
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	return cmd
}
