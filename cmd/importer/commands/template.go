package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/bulkimport/internal/core"
)

func templateCmd() *cobra.Command {
	var (
		kind     string
		describe bool
	)

	cmd := &cobra.Command{
		Use:   "template --kind <kind>",
		Short: "Print a header-only template file for a kind",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if kind == "" {
				for _, def := range core.All() {
					fmt.Fprintf(out, "%-10s %s\n", def.Kind, def.Label)
				}
				return nil
			}

			k, err := parseKind(kind)
			if err != nil {
				return err
			}

			if describe {
				text, err := core.Describe(k)
				if err != nil {
					return err
				}
				fmt.Fprint(out, text)
				return nil
			}

			text, err := core.Template(k, cfg.Import.CellDelimiter())
			if err != nil {
				return err
			}
			fmt.Fprint(out, text)
			return nil
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "", "entity kind; omit to list kinds")
	cmd.Flags().BoolVar(&describe, "describe", false, "list fields with type and required flag instead")

	return cmd
}
