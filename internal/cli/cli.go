// Package cli implements the modkit command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/modkit/pkg/buildinfo"
	"github.com/matzehuels/modkit/pkg/cache"
	"github.com/matzehuels/modkit/pkg/json"
	"github.com/matzehuels/modkit/pkg/modinfo"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "modkit"
)

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

	configPath string
	config     *Config
	out        io.Writer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetOutput redirects command output (tables, DOT, reformatted JSON).
func (c *CLI) SetOutput(w io.Writer) { c.out = w }

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "modkit inspects game mod manifests and their dependencies",
		Long:         `modkit loads mod manifests (modinfo.json), checks dependencies, conflicts and cycles, resolves load orders and validates or reformats JSON data files.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(c.configPath, c.Logger)
			if err != nil {
				return err
			}
			c.config = cfg
			json.SetStrict(cfg.Strict)
			registerHooks(c.Logger)
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/modkit/modkit.toml)")

	root.AddCommand(c.checkCommand())
	root.AddCommand(c.depsCommand())
	root.AddCommand(c.orderCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.fmtCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())
	root.AddCommand(c.versionCommand())

	return root
}

// cfg returns the loaded config, or defaults when a command runs without
// the root pre-run (tests).
func (c *CLI) cfg() *Config {
	if c.config == nil {
		c.config = defaultConfig()
	}
	return c.config
}

// =============================================================================
// Loading mods
// =============================================================================

// newCache builds the cache backend named by the config.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg := c.cfg()
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case "none":
		return cache.NewNullCache(), nil
	case "redis":
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: os.Getenv("MODKIT_REDIS_PASSWORD"),
			Prefix:   appName + ":",
		})
		if err != nil {
			c.Logger.Warn("Redis cache unavailable, continuing without cache", "addr", cfg.Cache.RedisAddr, "err", err)
			return cache.NewNullCache(), nil
		}
		return rc, nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// newScanner returns a scanner over the configured cache.
func (c *CLI) newScanner(ctx context.Context, noCache bool) (*modinfo.Scanner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	s := &modinfo.Scanner{Cache: cc, TTL: c.cfg().Cache.TTL.Duration}
	if scope := c.cfg().Cache.Scope; scope != "" {
		s.Keyer = cache.NewScopedKeyer(nil, scope+":")
	}
	return s, nil
}

// loadFlags are the flags shared by every command that loads mods.
type loadFlags struct {
	dirs    []string
	noCache bool
}

func (f *loadFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&f.dirs, "dir", "d", nil, "mod directory (repeatable, overrides config)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the manifest cache")
}

// loadMods scans the mod directories and builds the tree. Problems found
// along the way are logged as warnings.
func (c *CLI) loadMods(ctx context.Context, f loadFlags) (*modinfo.Scanner, *modinfo.Result, error) {
	logger := loggerFromContext(ctx)
	cfg := c.cfg()

	dirs := f.dirs
	if len(dirs) == 0 {
		dirs = cfg.ModDirs
	}
	repl, err := modinfo.LoadReplacements(cfg.Replacements)
	if err != nil {
		return nil, nil, err
	}

	s, err := c.newScanner(ctx, f.noCache)
	if err != nil {
		return nil, nil, err
	}

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, "Loading mods...")
	spinner.Start()
	res, err := s.Load(ctx, dirs, repl)
	spinner.Stop()
	if err != nil {
		return nil, nil, err
	}
	prog.done(fmt.Sprintf("Loaded %d mods from %d directories", res.Registry.Len(), len(dirs)))

	for _, o := range res.Registry.Overrides() {
		logger.Info("Mod overridden", "id", o.ID, "old", o.Old, "new", o.New)
	}
	for _, p := range res.Problems {
		logger.Warn(p.Error())
	}
	return s, res, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/modkit/).
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

// configDir returns the config directory using XDG standard (~/.config/modkit/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
