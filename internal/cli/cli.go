// Package cli implements the wiring command-line interface.
//
// The commands read a YAML harness description, build and validate the
// wiring model, and write diagrams or the JSON model next to the input.
//
// # Commands
//
//   - render: build the harness and write SVG, PDF, PNG, DOT or JSON output
//   - check: validate only and print the diagnostics
//   - colors: list the color table
//   - inspect: browse devices and their pinouts interactively
//   - serve: run the HTTP API
//   - cache: manage the artifact cache
//
// # Configuration
//
// Settings come from the config file (--config, else the XDG default
// location), WIRING_* environment variables, then flags.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/wiring/internal/config"
	"github.com/matzehuels/wiring/pkg/buildinfo"
	"github.com/matzehuels/wiring/pkg/cache"
	"github.com/matzehuels/wiring/pkg/color"
	"github.com/matzehuels/wiring/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "wiring"

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
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
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
		Use:   appName,
		Short: "Wiring builds and validates wiring-harness models",
		Long: `Wiring turns a YAML description of devices and the cables between them into a
validated wiring model, reporting every inconsistency it finds, and draws one
pinout diagram per connection group.`,
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
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/wiring/config.toml)")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.colorsCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// settings returns the loaded configuration, or the defaults before the root
// pre-run has executed.
func (c *CLI) settings() *config.Config {
	if c.cfg == nil {
		return config.Default()
	}
	return c.cfg
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(ch, newKeyer(), c.Logger), nil
}

// newKeyer scopes artifact keys to the running build version and commit.
func newKeyer() cache.Keyer {
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.Version+"@"+buildinfo.Commit+":")
}

// newCache selects Redis when a URL is configured, the file cache otherwise.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg := c.settings().Cache
	if noCache || !cfg.Enabled {
		return cache.NewNullCache(), nil
	}
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.RedisURL, appName+":")
		if err != nil {
			return nil, fmt.Errorf("connect redis cache: %w", err)
		}
		return rc, nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Warn("cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the configured cache directory or the XDG default
// (~/.cache/wiring/).
func (c *CLI) cacheDir() (string, error) {
	if dir := c.settings().Cache.Dir; dir != "" {
		return dir, nil
	}
	return cache.DefaultDir()
}

// =============================================================================
// Options Helpers
// =============================================================================

// loadColors returns the color table named by path, or the built-in table.
func loadColors(path string) (*color.Table, error) {
	if path == "" {
		return color.Default(), nil
	}
	t, err := color.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load palette: %w", err)
	}
	return t, nil
}

// baseOptions seeds pipeline options from the configuration.
func (c *CLI) baseOptions() (pipeline.Options, error) {
	cfg := c.settings()
	colors, err := loadColors(cfg.Palette)
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		Strict:     cfg.Strict,
		Colors:     colors,
		Formats:    append([]string(nil), cfg.Formats...),
		Combine:    cfg.Combine,
		Font:       cfg.Render.Font,
		Background: cfg.Render.Background,
		TitleColor: cfg.Render.TitleColor,
	}, nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
