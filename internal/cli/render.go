package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tagrel/tagrel/pkg/render/nodelink"
	"github.com/tagrel/tagrel/pkg/tags"
)

// renderDOT builds the DOT form of a graph.
func renderDOT(g *tags.Graph, weights, aliases bool) string {
	return nodelink.ToDOT(g, nodelink.Options{Weights: weights, Aliases: aliases})
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output      string
		showWeights bool
		showAliases bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the graph as a DOT or SVG diagram",
		Long: `Render the graph as a node-link diagram.

Tags are drawn as boxes and entities as dashed ellipses. The output
format follows the file extension: .dot writes Graphviz source, .svg
renders it. Without --output, DOT is written to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withGraph(cmd.Context(), func(g *tags.Graph) (bool, error) {
				dot := renderDOT(g, showWeights, showAliases)

				if output == "" {
					fmt.Print(dot)
					return false, nil
				}

				switch ext := filepath.Ext(output); ext {
				case ".dot":
					if err := os.WriteFile(output, []byte(dot), 0o644); err != nil {
						return false, err
					}
				case ".svg":
					spinner := newSpinnerWithContext(cmd.Context(), "Rendering diagram...")
					spinner.Start()
					svg, err := nodelink.RenderSVG(dot)
					if err != nil {
						spinner.StopWithError("Rendering failed")
						return false, err
					}
					spinner.Stop()
					if err := os.WriteFile(output, svg, 0o644); err != nil {
						return false, err
					}
				default:
					return false, fmt.Errorf("unsupported output format %q (want .dot or .svg)", ext)
				}

				printSuccess("Rendered %d tags", len(g.Tags()))
				printFile(output)
				return false, nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.dot or .svg; default DOT to stdout)")
	cmd.Flags().BoolVar(&showWeights, "weights", false, "label edges with connection weights")
	cmd.Flags().BoolVar(&showAliases, "aliases", false, "include aliases in tag labels")
	return cmd
}
