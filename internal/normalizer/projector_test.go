package normalizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doimeta/internal/models"
)

func requiredMetadata() *models.Metadata {
	md := models.NewMetadata()
	md.Creators = []models.Creator{{Name: "Ada Lovelace", NameType: "Personal"}}
	md.Titles = []models.Title{{Title: "Beetle collection"}}
	md.Publisher = models.StringPtr(testPublisher)
	md.PublicationYear = models.StringPtr("2021")
	md.ResourceType = models.StringPtr("dataset")

	return md
}

func TestProject_RequiredKeys(t *testing.T) {
	doc := NewProjector(nil, nil).Project(requiredMetadata())

	assert.Equal(t, []models.Creator{{Name: "Ada Lovelace", NameType: "Personal"}}, doc["creators"])
	assert.Equal(t, []models.Title{{Title: "Beetle collection"}}, doc["titles"])
	assert.Equal(t, testPublisher, doc["publisher"])
	assert.Equal(t, "2021", doc["publicationYear"])
	assert.Equal(t, models.Types{ResourceType: "dataset", ResourceTypeGeneral: "Dataset"}, doc[models.DocTypes])
	assert.Equal(t, "http://datacite.org/schema/kernel-4", doc[models.DocSchemaVersion])
	assert.Len(t, doc, 6)
}

func TestProject_OmitsEmptyOptionalKeys(t *testing.T) {
	md := requiredMetadata()
	md.Subjects = []models.Subject{}
	md.Language = ""
	md.Version = 3
	md.Sizes = nil
	md.Formats = []string{"CSV"}
	md.RightsList = []models.Rights{{Rights: models.StringPtr("")}}

	doc := NewProjector(nil, nil).Project(md)

	for _, key := range []string{"subjects", "language", "version", "sizes", "dates", "geoLocations"} {
		assert.False(t, doc.Has(key), "unexpected key %s", key)
	}

	assert.Equal(t, []string{"CSV"}, doc["formats"])
	assert.Equal(t, md.RightsList, doc["rightsList"])
}

func TestProject_Dates(t *testing.T) {
	md := requiredMetadata()
	md.Dates = []models.Date{
		{DateType: "Created", Date: time.Date(2020, 1, 2, 3, 4, 5, 123456000, time.UTC)},
		{DateType: "Issued", Date: time.Date(2021, 5, 10, 0, 0, 0, 0, time.UTC)},
	}

	doc := NewProjector(nil, nil).Project(md)

	assert.Equal(t, []models.DocumentDate{
		{DateType: "Created", Date: "2020-01-02T03:04:05Z"},
		{DateType: "Issued", Date: "2021-05-10"},
	}, doc["dates"])

	// the record keeps its typed dates
	assert.Equal(t, 2020, md.Dates[0].Date.Year())
}

func TestProject_ExtensionsRunInOrder(t *testing.T) {
	appendTo := func(s string) Extension {
		return ExtensionFuncs{
			ID: s,
			Document: func(_ *models.Metadata, doc models.Document) models.Document {
				prev, _ := doc["trail"].(string)
				doc["trail"] = prev + s

				return doc
			},
		}
	}

	doc := NewProjector(Extensions{appendTo("a"), appendTo("b"), appendTo("c")}, nil).Project(requiredMetadata())
	assert.Equal(t, "abc", doc["trail"])
}

func TestProject_ExtensionSeesRecord(t *testing.T) {
	var seen *models.Metadata

	ext := ExtensionFuncs{
		ID: "spy",
		Document: func(md *models.Metadata, doc models.Document) models.Document {
			seen = md
			return nil
		},
	}

	md := requiredMetadata()
	doc := NewProjector(Extensions{ext}, nil).Project(md)

	require.NotNil(t, doc)
	assert.Empty(t, doc)
	assert.Same(t, md, seen)
}

func TestHasValue(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want bool
	}{
		{"nil", nil, false},
		{"empty string", "", false},
		{"string", "1.0", true},
		{"empty slice", []string{}, false},
		{"nil slice", []string(nil), false},
		{"slice", []string{"a"}, true},
		{"empty map", map[string]any{}, false},
		{"map", map[string]any{"a": 1}, true},
		{"int", 3, false},
		{"float", 1.5, false},
		{"bool", true, false},
		{"struct", models.Types{ResourceType: "x"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasValue(tt.v))
		})
	}
}
