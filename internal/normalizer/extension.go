package normalizer

import (
	"doimeta/internal/models"
)

// Extension customizes the pipeline without forking it. BuildMetadata runs
// after base extraction and may rewrite any field; it should Resolve the
// error of every field it repairs. BuildDocument runs after projection.
// Both receive the current state and return the state the next extension
// sees. Implementations must be safe for concurrent use.
type Extension interface {
	Name() string
	BuildMetadata(src models.Record, md *models.Metadata, errs FieldErrors) (*models.Metadata, FieldErrors)
	BuildDocument(md *models.Metadata, doc models.Document) models.Document
}

// Extensions is the ordered set of extensions, fixed at startup.
type Extensions []Extension

func (exts Extensions) applyMetadata(src models.Record, md *models.Metadata, errs FieldErrors) (*models.Metadata, FieldErrors) {
	for _, ext := range exts {
		md, errs = ext.BuildMetadata(src, md, errs)

		if md == nil {
			md = &models.Metadata{}
		}

		if errs == nil {
			errs = FieldErrors{}
		}
	}

	return md, errs
}

func (exts Extensions) applyDocument(md *models.Metadata, doc models.Document) models.Document {
	for _, ext := range exts {
		doc = ext.BuildDocument(md, doc)

		if doc == nil {
			doc = models.Document{}
		}
	}

	return doc
}

// ExtensionFuncs adapts plain functions to Extension. A nil func passes its
// input through unchanged.
type ExtensionFuncs struct {
	ID       string
	Metadata func(src models.Record, md *models.Metadata, errs FieldErrors) (*models.Metadata, FieldErrors)
	Document func(md *models.Metadata, doc models.Document) models.Document
}

// Name implements Extension.
func (f ExtensionFuncs) Name() string {
	return f.ID
}

// BuildMetadata implements Extension.
func (f ExtensionFuncs) BuildMetadata(src models.Record, md *models.Metadata, errs FieldErrors) (*models.Metadata, FieldErrors) {
	if f.Metadata == nil {
		return md, errs
	}

	return f.Metadata(src, md, errs)
}

// BuildDocument implements Extension.
func (f ExtensionFuncs) BuildDocument(md *models.Metadata, doc models.Document) models.Document {
	if f.Document == nil {
		return doc
	}

	return f.Document(md, doc)
}
