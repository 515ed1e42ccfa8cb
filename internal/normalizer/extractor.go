package normalizer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"doimeta/internal/license"
	"doimeta/internal/locale"
	"doimeta/internal/logger"
	"doimeta/internal/models"
)

var tracer = otel.Tracer("doimeta/internal/normalizer")

var (
	errNoSettings = errors.New("no settings provider configured")
	errNoRegistry = errors.New("no license registry configured")
	errNoLocale   = errors.New("no locale resolver configured")
)

// Settings supplies deployment-wide values. It is read-only.
type Settings interface {
	Publisher() (string, error)
	SiteURL() (string, error)
}

// Collaborators are the read-only dependencies of the pipeline, built once
// at startup and shared by every invocation.
type Collaborators struct {
	Settings   Settings
	Licenses   license.Registry
	Locale     locale.Resolver
	Extensions Extensions
	Logger     *logger.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Extractor derives the internal metadata record from a source record.
type Extractor struct {
	settings   Settings
	licenses   license.Registry
	locale     locale.Resolver
	extensions Extensions
	logger     *logger.Logger
	now        func() time.Time
}

// NewExtractor creates an extractor.
func NewExtractor(c Collaborators) *Extractor {
	log := c.Logger
	if log == nil {
		log = logger.Discard()
	}

	now := c.Now
	if now == nil {
		now = time.Now
	}

	return &Extractor{
		settings:   c.Settings,
		licenses:   c.Licenses,
		locale:     c.Locale,
		extensions: c.Extensions,
		logger:     log,
		now:        now,
	}
}

// Extract builds the metadata record for src. Failures on individual fields
// are collected in the returned FieldErrors; the error result is a
// *MetadataError when any required field is unresolved, in which case no
// record is returned.
func (e *Extractor) Extract(ctx context.Context, src models.Record) (*models.Metadata, FieldErrors, error) {
	ctx, span := tracer.Start(ctx, "normalizer.Extract")
	defer span.End()

	md, errs := e.extract(ctx, src)
	md, errs = e.extensions.applyMetadata(src, md, errs)

	// catches fields an extension nulled without reporting why
	for _, f := range models.RequiredFields {
		if md.IsNull(f) && !errs.Has(f) {
			errs.Set(f, ErrRequiredFieldNull)
		}
	}

	if required := errs.Required(); len(required) > 0 {
		merr := &MetadataError{Fields: required}

		e.logger.Error(merr.Error())

		for _, f := range merr.Keys() {
			e.logger.Error("required field failed", "field", f.String(), "error", required[f])
		}

		span.RecordError(merr)
		span.SetStatus(codes.Error, "required metadata missing")

		return nil, errs, merr
	}

	if optional := errs.Optional(); len(optional) > 0 {
		keys := optional.Fields()
		names := make([]string, len(keys))

		for i, f := range keys {
			names[i] = f.String()
			e.logger.Debug("optional field failed", "field", f.String(), "error", optional[f])
		}

		e.logger.Debug("could not extract metadata for the following optional keys: " + strings.Join(names, ", "))
		span.SetAttributes(attribute.StringSlice("doi.optional_errors", names))
	}

	return md, errs, nil
}

func (e *Extractor) extract(ctx context.Context, src models.Record) (*models.Metadata, FieldErrors) {
	md := models.NewMetadata()
	errs := FieldErrors{}

	// required
	derive(errs, models.FieldCreators, &md.Creators, func() ([]models.Creator, error) {
		return parseCreators(src.Value("author"))
	})
	derive(errs, models.FieldTitles, &md.Titles, func() ([]models.Title, error) {
		return parseTitles(src)
	})
	derive(errs, models.FieldPublisher, &md.Publisher, e.publisher)
	derive(errs, models.FieldPublicationYear, &md.PublicationYear, func() (*string, error) {
		return models.StringPtr(publicationYear(src, e.now)), nil
	})
	derive(errs, models.FieldResourceType, &md.ResourceType, func() (*string, error) {
		return parseResourceType(src)
	})

	// optional
	derive(errs, models.FieldSubjects, &md.Subjects, func() ([]models.Subject, error) {
		return parseSubjects(src)
	})
	derive(errs, models.FieldContributors, &md.Contributors, func() ([]models.Contributor, error) {
		return parseContributors(src.Value("author"))
	})

	dates, err := safely(func() ([]models.Date, error) { return parseDates(src) })
	md.Dates = dates
	errs.Set(models.FieldDates, err)

	derive(errs, models.FieldLanguage, &md.Language, func() (string, error) {
		return e.language(ctx)
	})
	derive(errs, models.FieldAlternateIdentifiers, &md.AlternateIdentifiers, func() ([]models.AlternateIdentifier, error) {
		return e.alternateIdentifiers(src)
	})

	// unlike funder, a missing related_resource is reported
	derive(errs, models.FieldRelatedIdentifiers, &md.RelatedIdentifiers, func() ([]models.RelatedIdentifier, error) {
		return parseRelatedIdentifiers(src.Value("related_resource"))
	})

	derive(errs, models.FieldSizes, &md.Sizes, func() ([]string, error) {
		return parseSizes(src)
	})
	derive(errs, models.FieldFormats, &md.Formats, func() ([]string, error) {
		return parseFormats(src)
	})

	// filtered out downstream when empty
	md.Version = src.Value("version")

	derive(errs, models.FieldRightsList, &md.RightsList, func() ([]models.Rights, error) {
		return e.rights(ctx, src)
	})

	md.Descriptions = []models.Description{{
		DescriptionType: "Other",
		Description:     textOf(src.Value("notes")),
	}}

	derive(errs, models.FieldGeoLocations, &md.GeoLocations, func() ([]models.GeoLocation, error) {
		return parseGeoLocations(src)
	})

	if raw := src.Value("funder"); !isBlank(raw) {
		derive(errs, models.FieldFundingReferences, &md.FundingReferences, func() ([]models.FundingReference, error) {
			return parseFundingReferences(raw)
		})
	}

	return md, errs
}

// derive runs fn in isolation. On success its value is stored in dst; on
// failure dst keeps its default and the error is recorded against f.
func derive[T any](errs FieldErrors, f models.Field, dst *T, fn func() (T, error)) {
	v, err := safely(fn)
	if err != nil {
		errs.Set(f, err)
		return
	}

	*dst = v
}

func safely[T any](fn func() (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T

			v = zero
			err = fmt.Errorf("%w: %v", ErrFieldPanic, r)
		}
	}()

	return fn()
}

func parseTitles(src models.Record) ([]models.Title, error) {
	title, ok := src.StringOr("title", "")
	if !ok {
		return nil, fmt.Errorf("title: %w %T", ErrUnexpectedType, src.Value("title"))
	}

	return []models.Title{{Title: title}}, nil
}

func (e *Extractor) publisher() (*string, error) {
	if e.settings == nil {
		return nil, errNoSettings
	}

	p, err := e.settings.Publisher()
	if err != nil {
		return nil, err
	}

	return models.StringPtr(p), nil
}

// publicationYear is the year the DOI was first published, or the current
// year when that date is absent or does not start with four digits.
func publicationYear(src models.Record, now func() time.Time) string {
	if published, ok := src.String("doi_date_published"); ok {
		if year, ok := yearPrefix(published); ok {
			return year
		}
	}

	return strconv.Itoa(now().Year())
}

func yearPrefix(s string) (string, bool) {
	if len(s) < 4 {
		return "", false
	}

	for i := 0; i < 4; i++ {
		if s[i] < '0' || s[i] > '9' {
			return "", false
		}
	}

	return s[:4], true
}

func parseResourceType(src models.Record) (*string, error) {
	switch v := src.Value("type").(type) {
	case nil:
		return nil, nil
	case string:
		return models.StringPtr(v), nil
	default:
		return nil, fmt.Errorf("type: %w %T", ErrUnexpectedType, v)
	}
}

func (e *Extractor) language(ctx context.Context) (string, error) {
	if e.locale == nil {
		return "", errNoLocale
	}

	return e.locale.Language(ctx)
}

func (e *Extractor) alternateIdentifiers(src models.Record) ([]models.AlternateIdentifier, error) {
	if e.settings == nil {
		return nil, errNoSettings
	}

	site, err := e.settings.SiteURL()
	if err != nil {
		return nil, err
	}

	raw, ok := src["id"]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrMissingKey, "id")
	}

	id, err := scalarString(raw)
	if err != nil {
		return nil, fmt.Errorf("id: %w", err)
	}

	if id == "" {
		return nil, fmt.Errorf("%w %q", ErrMissingKey, "id")
	}

	return []models.AlternateIdentifier{{
		AlternateIdentifierType: "URL",
		AlternateIdentifier:     strings.TrimRight(site, "/") + "/dataset/" + id,
	}}, nil
}
