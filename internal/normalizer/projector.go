package normalizer

import (
	"reflect"

	"doimeta/internal/logger"
	"doimeta/internal/models"
)

// Fixed values of every projected document.
const (
	SchemaVersion       = "http://datacite.org/schema/kernel-4"
	ResourceTypeGeneral = "Dataset"
)

// Projector shapes a metadata record into the registration document.
type Projector struct {
	extensions Extensions
	logger     *logger.Logger
}

// NewProjector creates a projector that runs exts after every projection.
func NewProjector(exts Extensions, log *logger.Logger) *Projector {
	if log == nil {
		log = logger.Discard()
	}

	return &Projector{extensions: exts, logger: log}
}

// Project builds the document for md. Required keys are always written;
// optional keys only when HasValue holds for them.
func (p *Projector) Project(md *models.Metadata) models.Document {
	if md == nil {
		md = &models.Metadata{}
	}

	doc := models.Document{
		string(models.FieldCreators):        md.Creators,
		string(models.FieldTitles):          md.Titles,
		string(models.FieldPublisher):       deref(md.Publisher),
		string(models.FieldPublicationYear): deref(md.PublicationYear),
		models.DocTypes: models.Types{
			ResourceType:        deref(md.ResourceType),
			ResourceTypeGeneral: ResourceTypeGeneral,
		},
		models.DocSchemaVersion: SchemaVersion,
	}

	for _, f := range models.OptionalFields {
		v := md.Value(f)
		if !HasValue(v) {
			continue
		}

		if f == models.FieldDates {
			v = documentDates(md.Dates)
		}

		doc[string(f)] = v
	}

	doc = p.extensions.applyDocument(md, doc)

	p.logger.Debug("projected document", "keys", len(doc))

	return doc
}

// HasValue reports whether v is non-nil with a nonzero length. Values with no
// notion of length count as absent.
func HasValue(v any) bool {
	if v == nil {
		return false
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array, reflect.String, reflect.Chan:
		return rv.Len() > 0
	}

	return false
}

func documentDates(dates []models.Date) []models.DocumentDate {
	out := make([]models.DocumentDate, len(dates))
	for i, d := range dates {
		out[i] = models.DocumentDate{DateType: d.DateType, Date: models.DateString(d.Date)}
	}

	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
