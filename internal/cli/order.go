package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/modkit/pkg/errors"
	"github.com/matzehuels/modkit/pkg/modinfo"
)

// orderCommand creates the order command: resolve a load order with every
// dependency before the mods that need it.
func (c *CLI) orderCommand() *cobra.Command {
	var (
		f        loadFlags
		fromList bool
		save     string
	)

	cmd := &cobra.Command{
		Use:   "order [ids...]",
		Short: "Resolve the load order for a selection of mods",
		Long: `Resolve the load order for the given mods: dependencies first, each mod once.

With --from-list the active mod list (mod_list in the config) is read and
used as the selection, after rewriting obsolete ids and dropping mods that
are not installed. --save writes the resolved order as a mod list.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			s, res, err := c.loadMods(ctx, f)
			if err != nil {
				return err
			}

			selected := args
			if fromList {
				list, err := modinfo.LoadList(c.cfg().ModList)
				if err != nil {
					return err
				}
				list, changed := res.Registry.Replace(list)
				if changed {
					logger.Info("Obsolete mods replaced in mod list", "file", c.cfg().ModList)
				}
				valid := res.Registry.RemoveInvalid(list)
				if dropped := len(list) - len(valid); dropped > 0 {
					logger.Warn("Mods in mod list are not installed", "count", dropped)
				}
				selected = append(valid, selected...)
			}
			if len(selected) == 0 {
				return errs.New(errs.ErrCodeInvalidInput, "no mods selected")
			}

			order, err := s.Resolve(ctx, res, selected)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, listTable("Mod", order, nameOf(res.Registry)))

			if save != "" {
				if err := modinfo.SaveListFile(save, order); err != nil {
					return fmt.Errorf("save mod list: %w", err)
				}
				printSuccess("Saved %d mods", len(order))
				printFile(save)
			}
			return nil
		},
	}

	f.register(cmd)
	cmd.Flags().BoolVar(&fromList, "from-list", false, "start from the configured mod list")
	cmd.Flags().StringVar(&save, "save", "", "write the order as a mod list (e.g. mods.json)")
	return cmd
}
