package cli

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tagrel/tagrel/pkg/tags"
)

// pathCommand creates the path command for shortest-path queries.
func (c *CLI) pathCommand() *cobra.Command {
	var fromEnt, toEnt string

	cmd := &cobra.Command{
		Use:   "path [from] [to]",
		Short: "Find the shortest path between two nodes",
		Long: `Find the shortest path between two nodes, ignoring connection
direction. Endpoints are tag names, or entity JSON values via --from-ent
and --to-ent. The distance is the number of connections on the path;
aliases of the same tag have distance 0.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withGraph(cmd.Context(), func(g *tags.Graph) (bool, error) {
				from, to, err := pathEndpoints(args, fromEnt, toEnt)
				if err != nil {
					return false, err
				}

				path := g.Path(from, to)
				if len(path) == 0 {
					printInfo("No path found")
					return false, nil
				}

				steps := make([]string, 0, len(path))
				for _, node := range path {
					if t, ok := node.(*tags.Tag); ok {
						steps = append(steps, StyleHighlight.Render(t.Name()))
					} else {
						steps = append(steps, StyleValue.Render(fmt.Sprintf("%v", node)))
					}
				}
				fmt.Println(strings.Join(steps, StyleDim.Render(" "+iconArrow+" ")))
				printDetail("distance %d", len(path)-1)
				return false, nil
			})
		},
	}

	cmd.Flags().StringVar(&fromEnt, "from-ent", "", "start entity as JSON")
	cmd.Flags().StringVar(&toEnt, "to-ent", "", "end entity as JSON")
	return cmd
}

// pathEndpoints maps positional tag names and entity flags onto the two
// path endpoints.
func pathEndpoints(args []string, fromEnt, toEnt string) (any, any, error) {
	var endpoints []any
	for _, raw := range []string{fromEnt, toEnt} {
		if raw == "" {
			continue
		}
		e, err := tags.DecodeEntity([]byte(raw))
		if err != nil {
			return nil, nil, err
		}
		endpoints = append(endpoints, e)
	}
	for _, name := range args {
		endpoints = append(endpoints, name)
	}
	if len(endpoints) != 2 {
		return nil, nil, fmt.Errorf("exactly two endpoints are required (tags or --from-ent/--to-ent)")
	}

	// Entity flags are positional too: --from-ent comes first, --to-ent last.
	from, to := endpoints[0], endpoints[1]
	if fromEnt == "" && toEnt != "" {
		from, to = endpoints[1], endpoints[0]
	}
	return from, to, nil
}

// searchCommand creates the search command group.
func (c *CLI) searchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search the graph",
	}

	cmd.AddCommand(c.searchEntitiesCommand())
	cmd.AddCommand(c.searchTagsCommand())

	return cmd
}

// searchEntitiesCommand creates the "search entities" subcommand.
func (c *CLI) searchEntitiesCommand() *cobra.Command {
	var direction string

	cmd := &cobra.Command{
		Use:   "entities <tag>",
		Short: "Find entities under a tag and its descendants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, err := parseDirectionFlag(direction)
			if err != nil {
				return err
			}
			return c.withGraph(cmd.Context(), func(g *tags.Graph) (bool, error) {
				paths, err := g.SearchEntityPathsByTag(args[0], typ)
				if err != nil {
					return false, err
				}
				if len(paths) == 0 {
					printInfo("No entities found")
					return false, nil
				}
				for _, p := range paths {
					fmt.Println(StyleValue.Render(fmt.Sprintf("%v", p.End())) +
						" " + StyleDim.Render(describePath(p)))
				}
				printDetail("%d entities", len(paths))
				return false, nil
			})
		},
	}

	cmd.Flags().StringVarP(&direction, "direction", "d", "", "tag-tag direction to follow (default TO_TAG_CHILD)")
	return cmd
}

// searchTagsCommand creates the "search tags" subcommand.
func (c *CLI) searchTagsCommand() *cobra.Command {
	var (
		direction string
		pattern   string
	)

	cmd := &cobra.Command{
		Use:   "tags <entity-json>",
		Short: "Find the tags of an entity, including ancestors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, err := parseDirectionFlag(direction)
			if err != nil {
				return err
			}
			var query any
			if pattern != "" {
				re, err := regexp.Compile(pattern)
				if err != nil {
					return fmt.Errorf("invalid query pattern: %w", err)
				}
				query = re
			}

			return c.withGraph(cmd.Context(), func(g *tags.Graph) (bool, error) {
				entity, err := tags.DecodeEntity([]byte(args[0]))
				if err != nil {
					return false, err
				}
				found, err := g.SearchTagsOfEntity(entity, query, typ)
				if err != nil {
					return false, err
				}
				if len(found) == 0 {
					printInfo("No tags found")
					return false, nil
				}
				for _, t := range found {
					fmt.Println(StyleHighlight.Render(t.Name()))
				}
				printDetail("%d tags", len(found))
				return false, nil
			})
		},
	}

	cmd.Flags().StringVarP(&direction, "direction", "d", "", "tag-tag direction to follow (default TO_TAG_PARENT)")
	cmd.Flags().StringVarP(&pattern, "query", "q", "", "regular expression to narrow tag names")
	return cmd
}

func parseDirectionFlag(raw string) (tags.ConnType, error) {
	if raw == "" {
		return 0, nil
	}
	return tags.ParseConnType(raw)
}

// describePath formats a search path as a node chain.
func describePath(p tags.SearchPath) string {
	nodes := p.Nodes()
	parts := make([]string, 0, len(nodes))
	for _, node := range nodes {
		if t, ok := node.(*tags.Tag); ok {
			parts = append(parts, t.Name())
		} else {
			parts = append(parts, fmt.Sprintf("%v", node))
		}
	}
	return strings.Join(parts, " "+iconArrow+" ")
}
