// Package cli implements the pdftemplater command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/buildinfo"
	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/cache"
	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/client"
	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/config"
	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/snapshot"
	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "pdftemplater"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	out        io.Writer
	configPath string
	cfg        config.Config
}

// New creates a new CLI instance with a default logger. Command output goes
// to stdout.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		out:    os.Stdout,
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetOutput redirects command output.
func (c *CLI) SetOutput(w io.Writer) {
	c.out = w
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "pdftemplater builds Typst PDF templates from grid layouts",
		Long:         `pdftemplater turns component layouts into Typst markup, compiles them to PDF through the compile service, and manages stored templates.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/pdftemplater/config.toml)")

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.compileCommand())
	root.AddCommand(c.templatesCommand())
	root.AddCommand(c.snapshotCommand())
	root.AddCommand(c.outlineCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Backend Factories
// =============================================================================

func (c *CLI) newClient() (*client.Client, error) {
	return client.New(client.Options{
		BaseURL:  c.cfg.API.BaseURL,
		Timeout:  c.cfg.API.Timeout.Std(),
		Attempts: c.cfg.API.Attempts,
	})
}

func (c *CLI) newRedis() redis.UniversalClient {
	return redis.NewClient(&redis.Options{
		Addr:     c.cfg.Redis.Addr,
		Password: c.cfg.Redis.Password,
		DB:       c.cfg.Redis.DB,
	})
}

// newPreviewCache opens the configured preview cache. A file cache that
// cannot be created degrades to no caching.
func (c *CLI) newPreviewCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.cfg.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendMemory:
		return cache.NewMemoryCache(c.cfg.Cache.MaxEntries), nil
	case config.BackendRedis:
		return cache.NewRedisCache(c.newRedis(), c.cfg.Redis.Prefix+"preview:"), nil
	}
	dir, err := c.previewCacheDir()
	if err != nil {
		c.Logger.Warn("preview cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

func (c *CLI) previewCacheDir() (string, error) {
	if c.cfg.Cache.Dir != "" {
		return c.cfg.Cache.Dir, nil
	}
	dir, err := config.CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "previews"), nil
}

func (c *CLI) newSnapshotStore() (snapshot.Store, error) {
	if c.cfg.Snapshot.Backend == config.BackendRedis {
		return snapshot.NewRedisStore(c.newRedis(), c.cfg.Redis.Prefix), nil
	}
	return snapshot.NewFileStore(c.cfg.Snapshot.Dir)
}

func (c *CLI) newRepository(ctx context.Context) (store.Repository, error) {
	if c.cfg.Server.Store != config.BackendMongo {
		return store.NewMemoryStore(), nil
	}
	repo, err := store.NewMongoStore(ctx, store.MongoConfig{
		URI:        c.cfg.Mongo.URI,
		Database:   c.cfg.Mongo.Database,
		Collection: c.cfg.Mongo.Collection,
	})
	if err != nil {
		return nil, fmt.Errorf("open template store: %w", err)
	}
	return repo, nil
}
