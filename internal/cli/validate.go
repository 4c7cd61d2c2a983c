package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/modkit/pkg/json"
	"github.com/matzehuels/modkit/pkg/modinfo"
)

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate <file...>",
		Short: "Parse JSON files and report errors with their position",
		Long: `Parse each file completely and report the first error with its line, column
and surrounding context.

Manifests (modinfo.json) are also loaded as mods, so missing ids, bad
directives and self-dependencies are reported. With --strict, members the
loader never reads are errors.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			strict = strict || c.cfg().Strict

			var first error
			failed := 0
			for _, path := range args {
				err := validateFile(path, strict)
				if err == nil {
					logger.Debug("Valid", "file", path)
					continue
				}
				failed++
				if first == nil {
					first = err
				}
				fmt.Fprintf(c.out, "%s %s\n", StyleError.Render(iconError), path)
				fmt.Fprintln(c.out, err.Error())
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed validation: %w", failed, len(args), first)
			}
			printSuccess("%d files valid", len(args))
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "report members that are never read")
	return cmd
}

func validateFile(path string, strict bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Reformat(io.Discard, data, false, json.WithPath(path)); err != nil {
		return err
	}
	if filepath.Base(path) == modinfo.ManifestName {
		_, err := modinfo.Decode(data, path, json.WithStrict(strict))
		return err
	}
	return nil
}

// fmtCommand creates the fmt command.
func (c *CLI) fmtCommand() *cobra.Command {
	var compact, write bool

	cmd := &cobra.Command{
		Use:   "fmt <file...>",
		Short: "Reformat JSON files",
		Long: `Reformat JSON files with the same writer modkit uses for its own output.
Member order and number spelling are kept. Short arrays stay on one line.

Without -w the result is printed; with -w changed files are rewritten.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			changed := 0
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				var buf bytes.Buffer
				if err := json.Reformat(&buf, data, !compact, json.WithPath(path)); err != nil {
					return err
				}
				if !write {
					if _, err := c.out.Write(buf.Bytes()); err != nil {
						return err
					}
					continue
				}
				if bytes.Equal(buf.Bytes(), data) {
					continue
				}
				if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				changed++
				printFile(path)
			}
			if write {
				printSuccess("Reformatted %d of %d files", changed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&compact, "compact", false, "write without whitespace")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "rewrite files in place")
	return cmd
}
