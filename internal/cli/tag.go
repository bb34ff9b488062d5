package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tagrel/tagrel/pkg/tags"
)

// tagCommand creates the tag management command.
func (c *CLI) tagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage tags",
	}

	cmd.AddCommand(c.tagNewCommand())
	cmd.AddCommand(c.tagListCommand())
	cmd.AddCommand(c.tagShowCommand())
	cmd.AddCommand(c.tagRenameCommand())
	cmd.AddCommand(c.tagDeleteCommand())
	cmd.AddCommand(c.tagClearCommand())

	return cmd
}

// tagNewCommand creates the "tag new" subcommand.
func (c *CLI) tagNewCommand() *cobra.Command {
	var getIfExists bool

	cmd := &cobra.Command{
		Use:   "new <name>...",
		Short: "Create one or more tags",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withGraph(cmd.Context(), func(g *tags.Graph) (bool, error) {
				for _, name := range args {
					t, err := g.NewTag(name, getIfExists)
					if err != nil {
						return false, err
					}
					printSuccess("Created tag %s", StyleHighlight.Render(t.Name()))
				}
				return true, nil
			})
		},
	}

	cmd.Flags().BoolVar(&getIfExists, "exist-ok", false, "reuse an existing tag instead of failing")
	return cmd
}

// tagListCommand creates the "tag list" subcommand.
func (c *CLI) tagListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withGraph(cmd.Context(), func(g *tags.Graph) (bool, error) {
				all := g.Tags()
				if len(all) == 0 {
					printInfo("No tags yet")
					return false, nil
				}
				for _, t := range all {
					line := StyleValue.Render(t.Name())
					if aliases := extraAliases(t); len(aliases) > 0 {
						line += " " + StyleDim.Render("("+strings.Join(aliases, ", ")+")")
					}
					fmt.Println(line)
				}
				printDetail("%d tags", len(all))
				return false, nil
			})
		},
	}
}

// tagShowCommand creates the "tag show" subcommand.
func (c *CLI) tagShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show a tag with its aliases and connections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withGraph(cmd.Context(), func(g *tags.Graph) (bool, error) {
				t, err := g.Get(args[0], false)
				if err != nil {
					return false, err
				}

				printKeyValue("name", t.Name())
				if aliases := extraAliases(t); len(aliases) > 0 {
					printKeyValue("aliases", strings.Join(aliases, ", "))
				}
				conns := t.Connections()
				printKeyValue("connections", fmt.Sprintf("%d", len(conns)))
				for _, conn := range conns {
					fmt.Println("  " + StyleDim.Render(iconArrow) + " " + describeConn(conn))
				}
				return false, nil
			})
		},
	}
}

// tagRenameCommand creates the "tag rename" subcommand.
func (c *CLI) tagRenameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <name> <new-name>",
		Short: "Rename a tag, keeping the old name as an alias",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withGraph(cmd.Context(), func(g *tags.Graph) (bool, error) {
				if err := g.Rename(args[0], args[1]); err != nil {
					return false, err
				}
				printSuccess("Renamed %s %s %s",
					StyleDim.Render(args[0]), iconArrow, StyleHighlight.Render(args[1]))
				return true, nil
			})
		},
	}
}

// tagDeleteCommand creates the "tag delete" subcommand.
func (c *CLI) tagDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>...",
		Short: "Delete tags and all of their connections",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withGraph(cmd.Context(), func(g *tags.Graph) (bool, error) {
				for _, name := range args {
					g.Delete(name)
					printSuccess("Deleted tag %s", StyleDim.Render(name))
				}
				return true, nil
			})
		},
	}
}

// tagClearCommand creates the "tag clear" subcommand.
func (c *CLI) tagClearCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every tag from the graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear the graph without --yes")
			}
			return c.withGraph(cmd.Context(), func(g *tags.Graph) (bool, error) {
				n := g.Clear()
				printSuccess("Removed %d tags", n)
				return true, nil
			})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm clearing the whole graph")
	return cmd
}

// extraAliases returns a tag's aliases without its primary name.
func extraAliases(t *tags.Tag) []string {
	var extra []string
	for _, alias := range t.Aliases() {
		if alias != t.Name() {
			extra = append(extra, alias)
		}
	}
	return extra
}

// describeConn formats one connection for display.
func describeConn(conn *tags.Connection) string {
	target := ""
	if t, ok := conn.Target.(*tags.Tag); ok {
		target = StyleHighlight.Render(t.Name())
	} else {
		target = StyleValue.Render(fmt.Sprintf("%v", conn.Target))
	}
	out := StyleDim.Render(conn.Type.String()) + " " + target
	if conn.Weight != nil {
		out += " " + StyleDim.Render(fmt.Sprintf("(weight %g)", *conn.Weight))
	}
	return out
}
