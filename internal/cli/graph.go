package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/modkit/pkg/errors"
	"github.com/matzehuels/modkit/pkg/render/nodelink"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"
	formatPNG = "png"
)

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		f      loadFlags
		output string
		format string
		opts   nodelink.Options
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Draw the dependency graph",
		Long: `Draw the dependency graph as Graphviz DOT, SVG or PNG.

Unavailable mods are filled red and conflicts are drawn as dashed red lines.
SVG and PNG are rendered in-process; DOT can be piped to external tools.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var render func(string) ([]byte, error)
			switch format {
			case formatDOT:
				render = func(dot string) ([]byte, error) { return []byte(dot), nil }
			case formatSVG:
				render = func(dot string) ([]byte, error) { return nodelink.RenderSVG(ctx, dot) }
			case formatPNG:
				if output == "" {
					return errs.New(errs.ErrCodeInvalidInput, "png output requires --output")
				}
				render = func(dot string) ([]byte, error) { return nodelink.RenderPNG(ctx, dot) }
			default:
				return errs.New(errs.ErrCodeInvalidInput, "unknown format %q (want dot, svg or png)", format)
			}

			_, res, err := c.loadMods(ctx, f)
			if err != nil {
				return err
			}
			spinner := newSpinnerWithContext(ctx, "Rendering graph...")
			spinner.Start()
			out, err := render(nodelink.ToDOT(res.Tree, res.Registry, opts))
			if err != nil {
				spinner.StopWithError("Rendering failed")
				return err
			}

			if output == "" {
				spinner.Stop()
				_, err := c.out.Write(out)
				return err
			}
			if err := os.WriteFile(output, out, 0o644); err != nil {
				spinner.StopWithError("Rendering failed")
				return fmt.Errorf("write %s: %w", output, err)
			}
			spinner.StopWithSuccess(fmt.Sprintf("Rendered %d mods", res.Tree.Len()))
			printFile(output)
			return nil
		},
	}

	f.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", formatDOT, "output format: dot, svg, png")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "include names and errors in labels")
	cmd.Flags().StringSliceVar(&opts.Focus, "focus", nil, "only draw these mods and their relatives")
	return cmd
}
