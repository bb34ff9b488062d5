package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tagrel/tagrel/pkg/tags"
)

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the graph as JSON to a file or stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withGraph(cmd.Context(), func(g *tags.Graph) (bool, error) {
				text, err := g.SaveJSON()
				if err != nil {
					return false, err
				}
				if output == "" {
					fmt.Println(text)
					return false, nil
				}
				if err := os.WriteFile(output, []byte(text), 0o644); err != nil {
					return false, err
				}
				printSuccess("Exported %d tags", len(g.Tags()))
				printFile(output)
				return false, nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

// importCommand creates the import command.
func (c *CLI) importCommand() *cobra.Command {
	var skipBad bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Merge a graph JSON file into the stored graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return c.withGraph(cmd.Context(), func(g *tags.Graph) (bool, error) {
				loaded, err := g.LoadJSON(string(data), true, skipBad)
				if err != nil {
					return false, err
				}
				printSuccess("Imported %d tags", len(loaded))
				return true, nil
			})
		},
	}

	cmd.Flags().BoolVar(&skipBad, "skip-bad-conns", false, "skip malformed connections instead of failing")
	return cmd
}
