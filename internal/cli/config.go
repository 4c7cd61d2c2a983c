package cli

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/modkit/pkg/errors"
)

const configFile = "modkit.toml"

// Config is the content of modkit.toml.
//
//	mod_dirs = ["data/mods", "~/.local/share/cdda/mods"]
//	replacements = "data/json/obsolete_mods.json"
//	mod_list = "save/mods.json"
//	strict = true
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "24h"
//
//	[server]
//	addr = ":8080"
type Config struct {
	ModDirs      []string `toml:"mod_dirs"`
	Replacements string   `toml:"replacements"`
	ModList      string   `toml:"mod_list"`
	Strict       bool     `toml:"strict"`

	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// CacheConfig selects the manifest cache backend.
type CacheConfig struct {
	Backend   string   `toml:"backend"` // file, redis or none
	RedisAddr string   `toml:"redis_addr"`
	Scope     string   `toml:"scope"` // key prefix for shared backends
	TTL       duration `toml:"ttl"`
}

// ServerConfig configures modkit serve.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// duration decodes TOML strings such as "90s" or "24h".
type duration struct{ time.Duration }

func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func defaultConfig() *Config {
	return &Config{
		ModDirs: []string{filepath.Join("data", "mods")},
		ModList: "mods.json",
		Cache: CacheConfig{
			Backend:   "file",
			RedisAddr: "localhost:6379",
			TTL:       duration{7 * 24 * time.Hour},
		},
		Server: ServerConfig{Addr: "localhost:8080"},
	}
}

// loadConfig reads path, or the default config file when path is empty.
// A missing default file yields the defaults; a missing explicit file is
// an error.
func loadConfig(path string, logger *log.Logger) (*Config, error) {
	cfg := defaultConfig()
	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(dir, configFile)
	}

	md, err := toml.DecodeFile(path, cfg)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return defaultConfig(), nil
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "config file %s not found", path)
		}
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		logger.Warn("Unknown config keys ignored", "file", path, "keys", strings.Join(keys, ", "))
	}

	switch cfg.Cache.Backend {
	case "file", "redis", "none":
	default:
		return nil, errs.New(errs.ErrCodeInvalidConfig, "config %s: unknown cache backend %q", path, cfg.Cache.Backend)
	}
	logger.Debug("Loaded config", "file", path)
	return cfg, nil
}
