// Package cli implements the tagrel command-line interface.
//
// This package provides commands for building a relational tagging graph
// (tags, aliases, connections to entities), querying it (paths, distances,
// descendant searches), rendering it with Graphviz, and serving it over
// HTTP. The CLI is built using cobra and supports verbose logging via the
// charmbracelet/log library.
//
// Between invocations the graph lives as a serialized snapshot in the
// configured store backend (file by default, redis or mongo for shared
// setups); every mutating command loads the snapshot, applies its change,
// and writes it back.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/tagrel/tagrel/pkg/buildinfo"
	"github.com/tagrel/tagrel/pkg/tags"
)

const (
	// appName is the application name used for directories and display.
	appName = "tagrel"

	// snapshotKey is the store key under which the graph snapshot lives.
	snapshotKey = "graph"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config Config
}

// New creates a new CLI instance with a default logger and the config
// loaded from the default path (falling back to defaults when absent).
func New(w io.Writer, level log.Level) *CLI {
	c := &CLI{Logger: newLogger(w, level)}
	cfg, err := LoadConfig("")
	if err != nil {
		c.Logger.Warn("falling back to default config", "err", err)
		cfg = DefaultConfig()
	}
	c.Config = cfg
	return c
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "tagrel",
		Short:        "Tagrel manages relational tagging graphs",
		Long:         `Tagrel is a CLI tool for organizing arbitrary data with relational tags: tags connect to each other and to entities, so membership, hierarchy, and proximity can all be queried from one graph.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.tagCommand())
	root.AddCommand(c.aliasCommand())
	root.AddCommand(c.connectCommand())
	root.AddCommand(c.disconnectCommand())
	root.AddCommand(c.loadCommand())
	root.AddCommand(c.pathCommand())
	root.AddCommand(c.searchCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newGraph creates an empty graph configured per the CLI config.
func (c *CLI) newGraph() *tags.Graph {
	return tags.New(tags.Options{
		CaseSensitive: c.Config.CaseSensitive,
		Logger:        c.Logger,
	})
}

// dataDir returns the data directory using XDG standard (~/.local/share/tagrel/).
func dataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName), nil
}

// configDir returns the config directory using XDG standard (~/.config/tagrel/).
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
