package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (a *app) templatesCmd() *cobra.Command {
	var builtin bool
	cmd := &cobra.Command{
		Use:     "templates",
		Aliases: []string{"ls"},
		Short:   "List registered templates and their source files",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, sheets, err := a.buildEngine(cmd.ErrOrStderr(), builtin)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, sheet := range sheets {
				for _, tpl := range sheet.Templates {
					fmt.Fprintf(tw, "%s\t%s\n", tpl.Key, sheet.Source)
				}
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&builtin, "builtin", false, "include the bundled stylesheets")
	return cmd
}
