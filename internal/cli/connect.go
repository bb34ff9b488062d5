package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tagrel/tagrel/pkg/tags"
)

// connectCommand creates the connect command.
func (c *CLI) connectCommand() *cobra.Command {
	var (
		typeName  string
		entity    string
		weight    float64
		weightSet bool
	)

	cmd := &cobra.Command{
		Use:   "connect <tag> [other-tag]",
		Short: "Connect a tag to another tag or to an entity",
		Long: `Connect a tag to another tag or to an entity.

Tag-tag connections default to TO_TAG_CHILD, making the first tag the
parent. Entity values are given as JSON with --ent, so strings need
quoting: --ent '"ball"'. Reconnecting an existing pair overwrites its
type and weight.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			weightSet = cmd.Flags().Changed("weight")
			return c.withGraph(cmd.Context(), func(g *tags.Graph) (bool, error) {
				source, err := g.Get(args[0], false)
				if err != nil {
					return false, err
				}
				target, typ, err := resolveTarget(g, args, entity, typeName)
				if err != nil {
					return false, err
				}

				var w *float64
				if weightSet {
					w = tags.Weight(weight)
				}
				conn, err := g.Connect(source, target, typ, w)
				if err != nil {
					return false, err
				}
				printSuccess("Connected %s %s %s",
					StyleHighlight.Render(source.Name()), iconArrow, describeConn(conn))
				return true, nil
			})
		},
	}

	cmd.Flags().StringVarP(&typeName, "type", "t", "", "connection type (e.g. TO_TAG_CHILD, TO_TAG_UNDIRECTED)")
	cmd.Flags().StringVarP(&entity, "ent", "e", "", "entity value as JSON")
	cmd.Flags().Float64VarP(&weight, "weight", "w", 0, "connection weight")
	return cmd
}

// disconnectCommand creates the disconnect command.
func (c *CLI) disconnectCommand() *cobra.Command {
	var (
		entity    string
		entityAll bool
	)

	cmd := &cobra.Command{
		Use:   "disconnect <tag> [other-tag]",
		Short: "Remove a connection, or all of an entity's connections",
		Long: `Remove the connection between a tag and another tag or entity.

With --all-tags, the single argument is an entity JSON value instead of
a tag name, and every tag is disconnected from it.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withGraph(cmd.Context(), func(g *tags.Graph) (bool, error) {
				if entityAll {
					e, err := tags.DecodeEntity([]byte(args[0]))
					if err != nil {
						return false, err
					}
					g.DisconnectEntity(e)
					printSuccess("Disconnected entity %s from all tags", StyleValue.Render(fmt.Sprintf("%v", e)))
					return true, nil
				}

				source, err := g.Get(args[0], false)
				if err != nil {
					return false, err
				}
				target, _, err := resolveTarget(g, args, entity, "")
				if err != nil {
					return false, err
				}
				g.Disconnect(source, target)
				printSuccess("Disconnected %s", StyleHighlight.Render(source.Name()))
				return true, nil
			})
		},
	}

	cmd.Flags().StringVarP(&entity, "ent", "e", "", "entity value as JSON")
	cmd.Flags().BoolVar(&entityAll, "all-tags", false, "treat the argument as an entity and sever all its tags")
	return cmd
}

// resolveTarget picks the connection target from a second tag argument or an
// --ent flag, plus the effective connection type.
func resolveTarget(g *tags.Graph, args []string, entity, typeName string) (any, tags.ConnType, error) {
	var target any
	switch {
	case len(args) == 2 && entity != "":
		return nil, 0, fmt.Errorf("pass either a second tag or --ent, not both")
	case len(args) == 2:
		t, err := g.Get(args[1], true)
		if err != nil {
			return nil, 0, err
		}
		target = t
	case entity != "":
		e, err := tags.DecodeEntity([]byte(entity))
		if err != nil {
			return nil, 0, err
		}
		target = e
	default:
		return nil, 0, fmt.Errorf("a second tag or --ent is required")
	}

	var typ tags.ConnType
	if typeName != "" {
		parsed, err := tags.ParseConnType(typeName)
		if err != nil {
			return nil, 0, err
		}
		typ = parsed
	} else if _, ok := target.(*tags.Tag); ok {
		// CLI default mirrors hierarchy loading: first argument is the parent.
		typ = tags.ToTagChild
	}
	return target, typ, nil
}
