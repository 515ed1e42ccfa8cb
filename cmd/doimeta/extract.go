package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"doimeta/internal/report"
)

func newExtractCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "extract [record.json]",
		Short: "Show the internal metadata record and per-field diagnostics",
		Long: `Run field extraction only and print the internal metadata record as JSON.

Fields that could not be derived are listed in a markdown table on stderr,
including optional fields that fell back to their defaults.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}

			records, err := readRecords(path, cmd.InOrStdin())
			if err != nil {
				return err
			}

			p, err := a.processor()
			if err != nil {
				return err
			}

			if len(records) > 1 {
				a.log.Warn("extract shows the first record only", "records", len(records))
			}

			md, errs, err := p.Extractor().Extract(cmd.Context(), records[0])

			if table := report.FieldErrors(errs); table != "" {
				fmt.Fprint(cmd.ErrOrStderr(), table)
			}

			if err != nil {
				return err
			}

			return writeJSON(cmd.OutOrStdout(), output, md)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write JSON to this file instead of stdout")

	return cmd
}
