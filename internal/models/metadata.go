package models

import "time"

// Affiliation is an organisation a creator belongs to.
type Affiliation struct {
	Name                        string `json:"name"`
	AffiliationIdentifier       string `json:"affiliationIdentifier"`
	AffiliationIdentifierScheme string `json:"affiliationIdentifierScheme"`
}

// NameIdentifier uniquely identifies a person or organisation, e.g. an ORCID.
type NameIdentifier struct {
	NameIdentifier       string `json:"nameIdentifier"`
	NameIdentifierScheme string `json:"nameIdentifierScheme"`
}

// Creator is a person or organisation responsible for producing the dataset.
type Creator struct {
	Name            string           `json:"name"`
	NameType        string           `json:"nameType"`
	Affiliation     []Affiliation    `json:"affiliation"`
	NameIdentifiers []NameIdentifier `json:"nameIdentifiers"`
}

// Contributor is a creator tagged with the role they played.
type Contributor struct {
	ContributorType string `json:"contributorType"`
	Creator
}

// Title of the dataset.
type Title struct {
	Title string `json:"title"`
}

// Subject is a free-text keyword.
type Subject struct {
	Subject string `json:"subject"`
}

// Date is a typed point in the dataset's lifecycle.
type Date struct {
	DateType string    `json:"dateType"`
	Date     time.Time `json:"date"`
}

// DateString renders t the way the registration schema expects: a plain
// calendar date when there is no time component, otherwise a second-precision
// timestamp.
func DateString(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(time.DateOnly)
	}

	return t.Truncate(time.Second).Format(time.RFC3339)
}

// AlternateIdentifier is another identifier for the same resource.
type AlternateIdentifier struct {
	AlternateIdentifier     string `json:"alternateIdentifier"`
	AlternateIdentifierType string `json:"alternateIdentifierType"`
}

// RelatedIdentifier links the dataset to another resource.
type RelatedIdentifier struct {
	RelatedIdentifier     string `json:"relatedIdentifier"`
	RelatedIdentifierType string `json:"relatedIdentifierType"`
	RelationType          string `json:"relationType"`
}

// Rights describes the licence the dataset is published under. Either Rights
// is set (free text) or RightsURI and RightsIdentifier are.
type Rights struct {
	Rights                 *string `json:"rights,omitempty"`
	RightsURI              string  `json:"rightsUri,omitempty"`
	RightsIdentifier       string  `json:"rightsIdentifier,omitempty"`
	RightsIdentifierScheme string  `json:"rightsIdentifierScheme,omitempty"`
}

// Description is a typed block of descriptive text.
type Description struct {
	Description     string `json:"description"`
	DescriptionType string `json:"descriptionType"`
}

// GeoLocationPoint is a single longitude/latitude pair.
type GeoLocationPoint struct {
	PointLongitude string `json:"pointLongitude"`
	PointLatitude  string `json:"pointLatitude"`
}

// GeoLocationBox is a bounding box.
type GeoLocationBox struct {
	WestBoundLongitude string `json:"westBoundLongitude"`
	EastBoundLongitude string `json:"eastBoundLongitude"`
	SouthBoundLatitude string `json:"southBoundLatitude"`
	NorthBoundLatitude string `json:"northBoundLatitude"`
}

// GeoLocation carries exactly one of Point or Box.
type GeoLocation struct {
	Point *GeoLocationPoint `json:"geoLocationPoint,omitempty"`
	Box   *GeoLocationBox   `json:"geoLocationBox,omitempty"`
}

// FundingReference names a funder of the work.
type FundingReference struct {
	FunderName           string `json:"funderName"`
	FunderIdentifier     string `json:"funderIdentifier"`
	FunderIdentifierType string `json:"funderIdentifierType"`
}

// Metadata is the normalized internal metadata record. Required fields use
// nil to mean "not resolved"; optional fields default to their zero value.
type Metadata struct {
	// required
	Creators        []Creator `json:"creators"`
	Titles          []Title   `json:"titles"`
	Publisher       *string   `json:"publisher"`
	PublicationYear *string   `json:"publicationYear"`
	ResourceType    *string   `json:"resourceType"`

	// optional
	Subjects             []Subject             `json:"subjects"`
	Contributors         []Contributor         `json:"contributors"`
	Dates                []Date                `json:"dates"`
	Language             string                `json:"language"`
	AlternateIdentifiers []AlternateIdentifier `json:"alternateIdentifiers"`
	RelatedIdentifiers   []RelatedIdentifier   `json:"relatedIdentifiers"`
	Sizes                []string              `json:"sizes"`
	Formats              []string              `json:"formats"`
	Version              any                   `json:"version"`
	RightsList           []Rights              `json:"rightsList"`
	Descriptions         []Description         `json:"descriptions"`
	GeoLocations         []GeoLocation         `json:"geoLocations"`
	FundingReferences    []FundingReference    `json:"fundingReferences"`
}

// NewMetadata returns a record holding the default value of every field.
// Creators and titles start as empty lists, not null.
func NewMetadata() *Metadata {
	return &Metadata{
		Creators: []Creator{},
		Titles:   []Title{},
	}
}

// IsNull reports whether field f holds no usable value. Titles count as null
// when no entry carries a title.
func (m *Metadata) IsNull(f Field) bool {
	switch f {
	case FieldCreators:
		return m.Creators == nil
	case FieldTitles:
		for _, t := range m.Titles {
			if t.Title != "" {
				return false
			}
		}

		return true
	case FieldPublisher:
		return m.Publisher == nil
	case FieldPublicationYear:
		return m.PublicationYear == nil
	case FieldResourceType:
		return m.ResourceType == nil
	default:
		return m.Value(f) == nil
	}
}

// Value returns the value of field f, or nil for an unknown field. Nil slices
// and pointers come back as an untyped nil.
func (m *Metadata) Value(f Field) any {
	switch f {
	case FieldCreators:
		return nilIfEmpty(m.Creators == nil, m.Creators)
	case FieldTitles:
		return nilIfEmpty(m.Titles == nil, m.Titles)
	case FieldPublisher:
		return derefOrNil(m.Publisher)
	case FieldPublicationYear:
		return derefOrNil(m.PublicationYear)
	case FieldResourceType:
		return derefOrNil(m.ResourceType)
	case FieldSubjects:
		return nilIfEmpty(m.Subjects == nil, m.Subjects)
	case FieldContributors:
		return nilIfEmpty(m.Contributors == nil, m.Contributors)
	case FieldDates:
		return nilIfEmpty(m.Dates == nil, m.Dates)
	case FieldLanguage:
		return m.Language
	case FieldAlternateIdentifiers:
		return nilIfEmpty(m.AlternateIdentifiers == nil, m.AlternateIdentifiers)
	case FieldRelatedIdentifiers:
		return nilIfEmpty(m.RelatedIdentifiers == nil, m.RelatedIdentifiers)
	case FieldSizes:
		return nilIfEmpty(m.Sizes == nil, m.Sizes)
	case FieldFormats:
		return nilIfEmpty(m.Formats == nil, m.Formats)
	case FieldVersion:
		return m.Version
	case FieldRightsList:
		return nilIfEmpty(m.RightsList == nil, m.RightsList)
	case FieldDescriptions:
		return nilIfEmpty(m.Descriptions == nil, m.Descriptions)
	case FieldGeoLocations:
		return nilIfEmpty(m.GeoLocations == nil, m.GeoLocations)
	case FieldFundingReferences:
		return nilIfEmpty(m.FundingReferences == nil, m.FundingReferences)
	}

	return nil
}

func nilIfEmpty(isNil bool, v any) any {
	if isNil {
		return nil
	}

	return v
}

func derefOrNil(s *string) any {
	if s == nil {
		return nil
	}

	return *s
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
