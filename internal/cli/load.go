package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/tagrel/tagrel/pkg/tags"
)

// loadCommand creates the load command for bulk tag creation.
func (c *CLI) loadCommand() *cobra.Command {
	var typeName string

	cmd := &cobra.Command{
		Use:   "load <file>",
		Short: "Bulk-create tags from a TOML or JSON hierarchy file",
		Long: `Bulk-create tags from a hierarchy file.

The file maps tag names to related tag names, either one name or a
list. JSON files may instead hold a flat array of names with no
relationships. The file format is chosen by extension (.toml, .json).

Example (colors.toml):

	color = ["red", "orange", "yellow"]
	fruit = ["apple", "banana", "orange"]`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ := tags.ToTagChild
			if typeName != "" {
				parsed, err := tags.ParseConnType(typeName)
				if err != nil {
					return err
				}
				typ = parsed
			}

			return c.withGraph(cmd.Context(), func(g *tags.Graph) (bool, error) {
				prog := newProgress(c.Logger)
				loaded, err := loadHierarchyFile(g, args[0], typ)
				if err != nil {
					return false, err
				}
				prog.done(fmt.Sprintf("Loaded %d tags", loaded))
				return true, nil
			})
		},
	}

	cmd.Flags().StringVarP(&typeName, "type", "t", "", "tag-tag connection type for hierarchy edges (default TO_TAG_CHILD)")
	return cmd
}

// loadHierarchyFile reads a hierarchy from disk and loads it into the graph,
// returning the total tag count afterwards.
func loadHierarchyFile(g *tags.Graph, path string, typ tags.ConnType) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	var hierarchy map[string]any
	switch ext := filepath.Ext(path); ext {
	case ".toml":
		if err := toml.Unmarshal(data, &hierarchy); err != nil {
			return 0, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
		// A flat array of names is accepted alongside the hierarchy form.
		var names []string
		if err := json.Unmarshal(data, &names); err == nil {
			loaded, err := g.LoadNames(names)
			if err != nil {
				return 0, err
			}
			return len(loaded), nil
		}
		if err := json.Unmarshal(data, &hierarchy); err != nil {
			return 0, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return 0, fmt.Errorf("unsupported hierarchy format %q (want .toml or .json)", ext)
	}

	loaded, err := g.Load(hierarchy, typ)
	if err != nil {
		return 0, err
	}
	return len(loaded), nil
}
