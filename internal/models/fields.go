// Package models defines the data structures that flow through the DOI metadata pipeline.
package models

// Field names a key of the internal metadata record.
type Field string

// Required metadata keys.
const (
	FieldCreators        Field = "creators"
	FieldTitles          Field = "titles"
	FieldPublisher       Field = "publisher"
	FieldPublicationYear Field = "publicationYear"
	FieldResourceType    Field = "resourceType"
)

// Optional metadata keys.
const (
	FieldSubjects             Field = "subjects"
	FieldContributors         Field = "contributors"
	FieldDates                Field = "dates"
	FieldLanguage             Field = "language"
	FieldAlternateIdentifiers Field = "alternateIdentifiers"
	FieldRelatedIdentifiers   Field = "relatedIdentifiers"
	FieldSizes                Field = "sizes"
	FieldFormats              Field = "formats"
	FieldVersion              Field = "version"
	FieldRightsList           Field = "rightsList"
	FieldDescriptions         Field = "descriptions"
	FieldGeoLocations         Field = "geoLocations"
	FieldFundingReferences    Field = "fundingReferences"
)

// RequiredFields must resolve to a non-null value or extraction fails.
var RequiredFields = []Field{
	FieldCreators,
	FieldTitles,
	FieldPublisher,
	FieldPublicationYear,
	FieldResourceType,
}

// OptionalFields default to an empty value when they cannot be derived.
var OptionalFields = []Field{
	FieldSubjects,
	FieldContributors,
	FieldDates,
	FieldLanguage,
	FieldAlternateIdentifiers,
	FieldRelatedIdentifiers,
	FieldSizes,
	FieldFormats,
	FieldVersion,
	FieldRightsList,
	FieldDescriptions,
	FieldGeoLocations,
	FieldFundingReferences,
}

// AllFields returns every metadata key, required ones first.
func AllFields() []Field {
	all := make([]Field, 0, len(RequiredFields)+len(OptionalFields))
	all = append(all, RequiredFields...)

	return append(all, OptionalFields...)
}

// IsRequired reports whether f belongs to the required partition.
func (f Field) IsRequired() bool {
	for _, r := range RequiredFields {
		if r == f {
			return true
		}
	}

	return false
}

// IsOptional reports whether f belongs to the optional partition.
func (f Field) IsOptional() bool {
	for _, o := range OptionalFields {
		if o == f {
			return true
		}
	}

	return false
}

func (f Field) String() string {
	return string(f)
}
