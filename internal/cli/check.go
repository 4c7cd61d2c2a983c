package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/modkit/pkg/errors"
	"github.com/matzehuels/modkit/pkg/modinfo"
)

// checkCommand creates the check command: load every mod and report which
// ones cannot be activated.
func (c *CLI) checkCommand() *cobra.Command {
	var (
		f    loadFlags
		fail bool
	)

	cmd := &cobra.Command{
		Use:   "check [dirs...]",
		Short: "Load mods and report missing dependencies, conflicts and cycles",
		Long: `Load every manifest under the mod directories, build the dependency tree
and print one row per mod with its availability.

Directories given as arguments are scanned in addition to --dir; when neither
is given the mod_dirs from the config file are used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f.dirs = append(f.dirs, args...)
			_, res, err := c.loadMods(cmd.Context(), f)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, modTable(res))
			unavailable := reportUnavailable(c, res)
			if n := len(res.Problems); n > 0 {
				printWarning("%d manifest problems, see the log above", n)
			}

			if fail && (unavailable > 0 || len(res.Problems) > 0) {
				return errs.New(errs.ErrCodeGraph, "%d of %d mods unavailable, %d manifest problems",
					unavailable, res.Registry.Len(), len(res.Problems))
			}
			return nil
		},
	}

	f.register(cmd)
	cmd.Flags().BoolVar(&fail, "fail", false, "exit non-zero when any mod is unavailable or a manifest failed to load")
	return cmd
}

// reportUnavailable prints the error lines of every unavailable mod and
// returns how many there are.
func reportUnavailable(c *CLI, res *modinfo.Result) int {
	count := 0
	for _, id := range res.Tree.Keys() {
		n := res.Tree.Node(id)
		if n.IsAvailable() {
			continue
		}
		count++
		fmt.Fprintf(c.out, "%s %s\n", StyleError.Render(iconError), id)
		for _, line := range strings.Split(n.ErrorString(), "\n") {
			fmt.Fprintln(c.out, "  "+StyleDim.Render(line))
		}
	}
	if count == 0 {
		fmt.Fprintf(c.out, "%s all %d mods available\n", StyleSuccess.Render(iconSuccess), res.Registry.Len())
	}
	return count
}
