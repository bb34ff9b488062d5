package cli

import (
	"github.com/spf13/cobra"

	"github.com/tagrel/tagrel/pkg/tags"
)

// aliasCommand creates the alias management command.
func (c *CLI) aliasCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alias",
		Short: "Manage tag aliases",
	}

	cmd.AddCommand(c.aliasAddCommand())
	cmd.AddCommand(c.aliasRemoveCommand())

	return cmd
}

// aliasAddCommand creates the "alias add" subcommand.
func (c *CLI) aliasAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <tag> <alias>",
		Short: "Register an alias for a tag",
		Long: `Register an alias for a tag.

An alias held by another tag is moved, unless it is that tag's primary
name, which is an error.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withGraph(cmd.Context(), func(g *tags.Graph) (bool, error) {
				if err := g.Alias(args[0], args[1]); err != nil {
					return false, err
				}
				printSuccess("Added alias %s %s %s",
					StyleHighlight.Render(args[1]), iconArrow, StyleValue.Render(args[0]))
				return true, nil
			})
		},
	}
}

// aliasRemoveCommand creates the "alias remove" subcommand.
func (c *CLI) aliasRemoveCommand() *cobra.Command {
	var (
		force    bool
		renameTo string
	)

	cmd := &cobra.Command{
		Use:   "remove <alias>",
		Short: "Remove an alias",
		Long: `Remove an alias.

Removing a tag's only remaining name would orphan it, and removing the
primary name would leave the tag unnamed; both are refused unless
--rename-to supplies a replacement name, or --force accepts orphaning.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withGraph(cmd.Context(), func(g *tags.Graph) (bool, error) {
				opts := tags.RemoveAliasOptions{
					ErrorIfLast:   !force,
					SkipIfMissing: true,
					RenameTo:      renameTo,
				}
				if err := g.RemoveAlias(args[0], opts); err != nil {
					return false, err
				}
				printSuccess("Removed alias %s", StyleDim.Render(args[0]))
				return true, nil
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "allow orphaning a tag by removing its last name")
	cmd.Flags().StringVar(&renameTo, "rename-to", "", "rename the tag before removing the alias")
	return cmd
}
