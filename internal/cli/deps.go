package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/modkit/pkg/errors"
	"github.com/matzehuels/modkit/pkg/modinfo"
)

// depsCommand creates the deps command.
func (c *CLI) depsCommand() *cobra.Command {
	var f loadFlags

	cmd := &cobra.Command{
		Use:   "deps <id>",
		Short: "Show the dependencies and dependents of one mod",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if err := errs.ValidateModID(id); err != nil {
				return err
			}
			_, res, err := c.loadMods(cmd.Context(), f)
			if err != nil {
				return err
			}
			n := res.Tree.Node(id)
			if n == nil {
				return errs.New(errs.ErrCodeModNotFound, "mod %q is not installed", id)
			}

			name := nameOf(res.Registry)
			fmt.Fprintln(c.out, StyleTitle.Render(fmt.Sprintf("%s (%s)", name(id), id)))
			if !n.IsAvailable() {
				for _, line := range strings.Split(n.ErrorString(), "\n") {
					fmt.Fprintln(c.out, "  "+StyleError.Render(line))
				}
			}
			printIDs(c, "Dependencies", n.Dependencies(), name)
			printIDs(c, "Dependents", n.Dependents(), name)
			return nil
		},
	}

	f.register(cmd)
	return cmd
}

func printIDs(c *CLI, title string, ids []string, name func(string) string) {
	fmt.Fprintln(c.out)
	if len(ids) == 0 {
		fmt.Fprintln(c.out, StyleDim.Render("No "+strings.ToLower(title)))
		return
	}
	fmt.Fprintln(c.out, listTable(strings.TrimSuffix(title, "s"), ids, name))
}

// nameOf returns a lookup from mod id to display name.
func nameOf(reg *modinfo.Registry) func(string) string {
	return func(id string) string {
		if m, ok := reg.Get(id); ok {
			return m.DisplayName()
		}
		return StyleDim.Render("(not installed)")
	}
}
