// Package extensions holds the built-in pipeline extensions.
package extensions

import (
	"strings"

	"doimeta/internal/config"
	"doimeta/internal/models"
	"doimeta/internal/normalizer"
)

// FromConfig returns the extensions enabled by cfg in their fixed order.
func FromConfig(cfg config.ExtensionsConfig) normalizer.Extensions {
	var exts normalizer.Extensions

	if cfg.Defaults.ResourceType != "" || cfg.Defaults.TitleFromName {
		exts = append(exts, &Defaults{
			ResourceType:  cfg.Defaults.ResourceType,
			TitleFromName: cfg.Defaults.TitleFromName,
		})
	}

	if cfg.ResourceTypeGeneral != "" {
		exts = append(exts, &GeneralType{Value: cfg.ResourceTypeGeneral})
	}

	return exts
}

// Defaults fills required fields the record could not supply.
type Defaults struct {
	// ResourceType is used when the record has no usable type.
	ResourceType string
	// TitleFromName uses the record's URL name when it has no title.
	TitleFromName bool
}

// Name implements normalizer.Extension.
func (d *Defaults) Name() string {
	return "defaults"
}

// BuildMetadata implements normalizer.Extension.
func (d *Defaults) BuildMetadata(src models.Record, md *models.Metadata, errs normalizer.FieldErrors) (*models.Metadata, normalizer.FieldErrors) {
	if d.ResourceType != "" && md.IsNull(models.FieldResourceType) {
		md.ResourceType = models.StringPtr(d.ResourceType)
		errs.Resolve(models.FieldResourceType)
	}

	if d.TitleFromName && md.IsNull(models.FieldTitles) {
		if name, ok := src.String("name"); ok && strings.TrimSpace(name) != "" {
			md.Titles = []models.Title{{Title: name}}
			errs.Resolve(models.FieldTitles)
		}
	}

	return md, errs
}

// BuildDocument implements normalizer.Extension.
func (d *Defaults) BuildDocument(_ *models.Metadata, doc models.Document) models.Document {
	return doc
}

// GeneralType replaces the general resource type of every document.
type GeneralType struct {
	Value string
}

// Name implements normalizer.Extension.
func (g *GeneralType) Name() string {
	return "resource-type-general"
}

// BuildMetadata implements normalizer.Extension.
func (g *GeneralType) BuildMetadata(_ models.Record, md *models.Metadata, errs normalizer.FieldErrors) (*models.Metadata, normalizer.FieldErrors) {
	return md, errs
}

// BuildDocument implements normalizer.Extension.
func (g *GeneralType) BuildDocument(_ *models.Metadata, doc models.Document) models.Document {
	if types, ok := doc[models.DocTypes].(models.Types); ok {
		types.ResourceTypeGeneral = g.Value
		doc[models.DocTypes] = types
	}

	return doc
}

// DOIFor returns the DOI to register src under: its own doi field, or prefix
// joined with its URL name. It returns "" when neither is available.
func DOIFor(src models.Record, prefix string) string {
	if doi, ok := src.String("doi"); ok && doi != "" {
		return doi
	}

	name, ok := src.String("name")
	if !ok || name == "" || prefix == "" {
		return ""
	}

	return strings.TrimRight(prefix, "/") + "/" + name
}
