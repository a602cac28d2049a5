// Package cli implements the studio command-line interface.
//
// Commands work on build files (JSON documents of the instance tree):
//
//   - inspect, validate: summarise and check a build
//   - insert, move, delete: edit a build through the editor, remembering the
//     selection between invocations
//   - render: draw the instance tree as SVG or DOT
//   - tui: browse and edit a build interactively
//   - breakpoints, units: reference tables for styling
//   - serve: run the HTTP API
//   - cache: manage the render cache
//
// All commands support --verbose (-v) for debug logging and --config for a
// TOML configuration file.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/studio/pkg/buildinfo"
	"github.com/matzehuels/studio/pkg/cache"
	"github.com/matzehuels/studio/pkg/config"
	"github.com/matzehuels/studio/pkg/session"
)

// appName is used for directories and display.
const appName = "studio"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger     *log.Logger
	configPath string
}

// New creates a CLI logging to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Studio edits and serves website builds",
		Long:         `Studio manages the instance tree of a website build: inspect and validate build files, edit them from the command line or an interactive tree view, render the tree, and serve the editor API.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to a TOML config file")

	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.insertCommand())
	root.AddCommand(c.moveCommand())
	root.AddCommand(c.deleteCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.tuiCommand())
	root.AddCommand(c.breakpointsCommand())
	root.AddCommand(c.unitsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig returns the defaults overlaid with --config, if given.
func (c *CLI) loadConfig() (config.Config, error) {
	if c.configPath == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return cfg, err
	}
	c.Logger.Debug("config loaded", "path", c.configPath)
	return cfg, nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// newSessionStore opens the store remembering selections per build file.
// The directory comes from [session] dir, defaulting to
// ~/.config/studio/sessions.
func (c *CLI) newSessionStore() (*session.CLIStore, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	return session.NewCLIStore(cfg.Session.Dir)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/studio/).
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
