package normalizer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"doimeta/internal/license"
	"doimeta/internal/locale"
	"doimeta/internal/models"
)

const (
	testPublisher = "Natural History Museum"
	testSiteURL   = "https://data.example.org/"
)

type stubSettings struct {
	publisher string
	siteURL   string
}

func (s stubSettings) Publisher() (string, error) {
	if s.publisher == "" {
		return "", errors.New("publisher not configured")
	}

	return s.publisher, nil
}

func (s stubSettings) SiteURL() (string, error) {
	if s.siteURL == "" {
		return "", errors.New("site url not configured")
	}

	return s.siteURL, nil
}

type failingRegistry struct {
	err   error
	panic bool
}

func (r failingRegistry) Lookup(context.Context, string) (license.License, bool, error) {
	if r.panic {
		panic("registry exploded")
	}

	return license.License{}, false, r.err
}

func (r failingRegistry) List(context.Context) ([]license.License, error) {
	return nil, r.err
}

func fixedNow() time.Time {
	return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
}

func testCollaborators(t *testing.T, exts ...Extension) Collaborators {
	t.Helper()

	lang, err := locale.NewStaticResolver("en")
	require.NoError(t, err)

	return Collaborators{
		Settings: stubSettings{publisher: testPublisher, siteURL: testSiteURL},
		Licenses: license.NewStaticRegistry(license.License{
			ID:    "odc-by",
			Title: "Open Data Commons Attribution License",
			URL:   "http://www.opendefinition.org/licenses/odc-by",
		}),
		Locale:     lang,
		Extensions: exts,
		Now:        fixedNow,
	}
}

const testAuthors = `[{'author_name': 'Ada Lovelace', 'author_name_type': 'Personal',
 'author_affiliation': 'Analytical Society', 'author_affiliation_identifier': 'https://ror.org/000000000',
 'author_affiliation_identifier_type': 'ROR', 'author_identifier': '0000-0001-2345-6789',
 'author_identifier_type': 'ORCID'}]`

func validRecord() models.Record {
	return models.Record{
		"id":                 "0b7a4d3c",
		"title":              "Beetle collection",
		"type":               "dataset",
		"author":             testAuthors,
		"doi_date_published": "2021-05-10",
		"metadata_created":   "2020-01-02T03:04:05.123456",
		"metadata_modified":  "2020-02-03",
		"tag_string":         "beetles,insects",
		"tags":               []any{"insects", map[string]any{"name": "coleoptera"}},
		"resources": []any{
			map[string]any{"size": 1024, "format": "CSV"},
			map[string]any{"size": 2048.0, "format": "JSON"},
			map[string]any{"size": nil, "format": "CSV"},
		},
		"license_id": "odc-by",
		"notes":      "Pinned specimens.",
		"version":    "1.0",

		"related_resource": "[]",
	}
}

func extract(t *testing.T, rec models.Record, exts ...Extension) (*models.Metadata, FieldErrors, error) {
	t.Helper()

	return NewExtractor(testCollaborators(t, exts...)).Extract(context.Background(), rec)
}
