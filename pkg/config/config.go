// Package config loads pdftemplater settings from a TOML file.
//
// The default location is $XDG_CONFIG_HOME/pdftemplater/config.toml, or
// ~/.config/pdftemplater/config.toml when XDG_CONFIG_HOME is unset. A
// missing file yields [Default]; keys present in the file override the
// defaults one by one.
//
//	[api]
//	base_url = "http://localhost:1234"
//	timeout = "30s"
//	attempts = 3
//
//	[snapshot]
//	backend = "redis"
//
//	[redis]
//	addr = "localhost:6379"
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/client"
	perrors "github.com/nathanaelcunningham/typst-pdftemplater/pkg/errors"
	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/layout"
)

const appName = "pdftemplater"

// Backend names.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
	BackendMongo  = "mongo"
	BackendNone   = "none"
)

// Duration is a time.Duration written as a Go duration string ("30s").
type Duration time.Duration

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full settings tree.
type Config struct {
	API      API      `toml:"api"`
	Snapshot Snapshot `toml:"snapshot"`
	Cache    Cache    `toml:"cache"`
	Server   Server   `toml:"server"`
	Redis    Redis    `toml:"redis"`
	Mongo    Mongo    `toml:"mongo"`
	Grid     Grid     `toml:"grid"`
}

// API configures the storage and compile service client.
type API struct {
	BaseURL  string   `toml:"base_url"`
	Timeout  Duration `toml:"timeout"`
	Attempts int      `toml:"attempts"`
}

// Snapshot selects where the editor snapshot lives: "file" or "redis".
type Snapshot struct {
	Backend string `toml:"backend"`
	Dir     string `toml:"dir"`
}

// Cache configures the preview cache: "file", "memory", "redis" or "none".
type Cache struct {
	Backend    string   `toml:"backend"`
	Dir        string   `toml:"dir"`
	TTL        Duration `toml:"ttl"`
	MaxEntries int      `toml:"max_entries"`
}

// Server configures the storage service. Store is "memory" or "mongo".
type Server struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins"`
	Store          string   `toml:"store"`
}

type Redis struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

type Mongo struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Grid is the page grid new templates start with.
type Grid struct {
	Columns int     `toml:"columns"`
	Gap     float64 `toml:"gap"`
}

// GridConfig converts g to the layout form.
func (g Grid) GridConfig() layout.GridConfig {
	return layout.GridConfig{Columns: g.Columns, Gap: g.Gap}
}

// Default returns the built-in settings.
func Default() Config {
	grid := layout.DefaultGridConfig()
	return Config{
		API: API{
			BaseURL:  client.DefaultBaseURL,
			Timeout:  Duration(client.DefaultTimeout),
			Attempts: client.DefaultAttempts,
		},
		Snapshot: Snapshot{Backend: BackendFile},
		Cache: Cache{
			Backend:    BackendFile,
			TTL:        Duration(time.Hour),
			MaxEntries: 256,
		},
		Server: Server{
			Addr:           ":1234",
			AllowedOrigins: []string{"http://localhost:3000"},
			Store:          BackendMemory,
		},
		Redis: Redis{Addr: "localhost:6379", Prefix: appName + ":"},
		Mongo: Mongo{URI: "mongodb://localhost:27017", Database: appName, Collection: "templates"},
		Grid:  Grid{Columns: grid.Columns, Gap: grid.Gap},
	}
}

// Dir returns the configuration directory.
func Dir() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// CacheDir returns the cache directory (~/.cache/pdftemplater/).
func CacheDir() (string, error) {
	if home := os.Getenv("XDG_CACHE_HOME"); home != "" {
		return filepath.Join(home, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// DefaultPath returns the default config file path.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads path over the defaults. An empty path means DefaultPath. A
// missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, perrors.Wrap(perrors.ErrCodeInvalidFormat, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, perrors.New(perrors.ErrCodeInvalidFormat, "%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks backend names and value ranges.
func (c Config) Validate() error {
	var errs []error
	if err := perrors.ValidateURL(c.API.BaseURL); err != nil {
		errs = append(errs, err)
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, invalid("api.timeout must be positive"))
	}
	if c.API.Attempts < 1 {
		errs = append(errs, invalid("api.attempts must be at least 1"))
	}
	if !oneOf(c.Snapshot.Backend, BackendFile, BackendRedis) {
		errs = append(errs, invalid("snapshot.backend %q is not file or redis", c.Snapshot.Backend))
	}
	if !oneOf(c.Cache.Backend, BackendFile, BackendMemory, BackendRedis, BackendNone) {
		errs = append(errs, invalid("cache.backend %q is not file, memory, redis or none", c.Cache.Backend))
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, invalid("cache.ttl must not be negative"))
	}
	if !oneOf(c.Server.Store, BackendMemory, BackendMongo) {
		errs = append(errs, invalid("server.store %q is not memory or mongo", c.Server.Store))
	}
	if c.Grid.Columns < 1 {
		errs = append(errs, invalid("grid.columns must be at least 1"))
	}
	if c.Grid.Gap < 0 {
		errs = append(errs, invalid("grid.gap must not be negative"))
	}
	return errors.Join(errs...)
}

func invalid(format string, args ...any) error {
	return perrors.New(perrors.ErrCodeInvalidInput, format, args...)
}

func oneOf(v string, options ...string) bool { return slices.Contains(options, v) }
