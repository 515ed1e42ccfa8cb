package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"doimeta/internal/report"
)

func newLicensesCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "licenses",
		Short: "List the licenses the configured registry knows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}

			list, err := reg.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("listing licenses: %w", err)
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), "", list)
			}

			rows := make([][]string, len(list))
			for i, l := range list {
				rows[i] = []string{l.ID, l.Title, l.URL}
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(report.Table([]string{"ID", "Title", "URL"}, rows), "\n"))

			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the list as JSON")

	return cmd
}
