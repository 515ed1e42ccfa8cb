package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"doimeta/internal/extensions"
	"doimeta/internal/locale"
	"doimeta/internal/models"
	"doimeta/internal/normalizer"
	"doimeta/internal/report"
)

func newBuildCmd(a *app) *cobra.Command {
	var (
		doi     string
		output  string
		lang    string
		summary bool
	)

	cmd := &cobra.Command{
		Use:   "build [record.json]",
		Short: "Build the DataCite registration document for dataset records",
		Long: `Build the DataCite registration document for each input record and print
it as JSON.

The DOI is taken from --doi, then the record's doi field, then the configured
prefix joined with the record's name. A record that lacks required metadata
is reported with a table of the failed fields.

Examples:
  doimeta build dataset.json --publisher "Natural History Museum" --site-url https://data.example.org
  curl -s "$CKAN/api/3/action/package_show?id=beetles" | doimeta build --prefix 10.5072`,
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

			if doi != "" && len(records) > 1 {
				return errors.New("--doi can only be used with a single record")
			}

			p, err := a.processor()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if lang != "" {
				ctx = locale.WithLanguage(ctx, lang)
			}

			docs := make([]models.Document, 0, len(records))

			for i, rec := range records {
				doc, err := p.Process(ctx, rec)
				if err != nil {
					var merr *normalizer.MetadataError
					if errors.As(err, &merr) {
						fmt.Fprint(cmd.ErrOrStderr(), report.FieldErrors(merr.Fields))
					}

					return fmt.Errorf("record %d: %w", i, err)
				}

				id := doi
				if id == "" {
					id = extensions.DOIFor(rec, a.cfg.DOI.Prefix)
				}

				doc.SetIdentifier(id)
				docs = append(docs, doc)

				if summary {
					fmt.Fprint(cmd.ErrOrStderr(), report.Document(doc))
				}

				a.log.Info("built document", "record", i, "identifier", id, "keys", len(doc))
			}

			if len(docs) == 1 {
				return writeJSON(cmd.OutOrStdout(), output, docs[0])
			}

			return writeJSON(cmd.OutOrStdout(), output, docs)
		},
	}

	cmd.Flags().StringVar(&doi, "doi", "", "DOI to register the record under")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write JSON to this file instead of stdout")
	cmd.Flags().StringVar(&lang, "language", "", "language of this request, overriding the configured locale")
	cmd.Flags().BoolVar(&summary, "summary", false, "print a table of each document's keys to stderr")

	return cmd
}
