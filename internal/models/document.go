package models

// Document keys that are not metadata fields.
const (
	DocTypes         = "types"
	DocSchemaVersion = "schemaVersion"
	DocIdentifier    = "identifier"
)

// Document is the registration-schema document handed to the service's
// serializer. Required keys are always present; optional keys only when they
// carry a value.
type Document map[string]any

// Types is the resource type block.
type Types struct {
	ResourceType        string `json:"resourceType"`
	ResourceTypeGeneral string `json:"resourceTypeGeneral"`
}

// DocumentDate is a date entry with its value already rendered as a string.
type DocumentDate struct {
	DateType string `json:"dateType"`
	Date     string `json:"date"`
}

// Identifier is the persistent identifier block.
type Identifier struct {
	Identifier     string `json:"identifier"`
	IdentifierType string `json:"identifierType"`
}

// Has reports whether key is present.
func (d Document) Has(key string) bool {
	_, ok := d[key]

	return ok
}

// Keys returns the keys of d in no particular order.
func (d Document) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}

	return keys
}

// SetIdentifier attaches a DOI to the document. An empty doi is ignored.
func (d Document) SetIdentifier(doi string) {
	if doi == "" {
		return
	}

	d[DocIdentifier] = Identifier{Identifier: doi, IdentifierType: "DOI"}
}
