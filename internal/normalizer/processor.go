// Package normalizer turns catalogue dataset records into DOI registration
// documents.
package normalizer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"doimeta/internal/logger"
	"doimeta/internal/models"
)

// DocumentValidator checks a projected document before it is handed on.
type DocumentValidator interface {
	Validate(doc models.Document) error
}

// Processor runs the full pipeline: extract, then project, then validate.
type Processor struct {
	extractor *Extractor
	projector *Projector
	validator DocumentValidator
	logger    *logger.Logger
}

// NewProcessor creates a new processor instance. validator may be nil.
func NewProcessor(c Collaborators, validator DocumentValidator) *Processor {
	log := c.Logger
	if log == nil {
		log = logger.Discard()
	}

	return &Processor{
		extractor: NewExtractor(c),
		projector: NewProjector(c.Extensions, log),
		validator: validator,
		logger:    log,
	}
}

// Extractor returns the extractor the processor runs.
func (p *Processor) Extractor() *Extractor {
	return p.extractor
}

// Process builds the registration document for src.
func (p *Processor) Process(ctx context.Context, src models.Record) (models.Document, error) {
	id, _ := src.String("id")

	ctx, span := tracer.Start(ctx, "normalizer.Process",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("ckan.package_id", id)),
	)
	defer span.End()

	// 1. Extract the metadata record
	md, _, err := p.extractor.Extract(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}

	// 2. Project it into the document
	doc := p.projector.Project(md)

	// 3. Validate the result
	if p.validator != nil {
		if err := p.validator.Validate(doc); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "document failed validation")

			return nil, fmt.Errorf("validation failed: %w", err)
		}
	}

	return doc, nil
}
