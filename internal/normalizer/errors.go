package normalizer

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"

	"doimeta/internal/models"
)

// Extraction errors.
var (
	ErrRequiredMetadata  = errors.New("could not extract required metadata")
	ErrRequiredFieldNull = errors.New("required field cannot be null")
	ErrMissingKey        = errors.New("missing key")
	ErrUnexpectedType    = errors.New("unexpected value type")
	ErrFieldPanic        = errors.New("field derivation panicked")
)

// FieldErrors maps a metadata field to the reason it could not be derived.
type FieldErrors map[models.Field]error

// Set records err against f. A nil err is ignored.
func (fe FieldErrors) Set(f models.Field, err error) {
	if err == nil {
		return
	}

	fe[f] = err
}

// Resolve removes the error recorded against f. Extensions call this after
// repairing a field.
func (fe FieldErrors) Resolve(f models.Field) {
	delete(fe, f)
}

// Has reports whether an error is recorded against f.
func (fe FieldErrors) Has(f models.Field) bool {
	return fe[f] != nil
}

// Required returns the errors recorded against required fields.
func (fe FieldErrors) Required() FieldErrors {
	return fe.filter(models.Field.IsRequired)
}

// Optional returns the errors recorded against optional fields.
func (fe FieldErrors) Optional() FieldErrors {
	return fe.filter(models.Field.IsOptional)
}

// Fields returns the keys in field-declaration order; unknown keys follow, sorted.
func (fe FieldErrors) Fields() []models.Field {
	keys := make([]models.Field, 0, len(fe))

	for _, f := range models.AllFields() {
		if fe.Has(f) {
			keys = append(keys, f)
		}
	}

	var unknown []models.Field

	for f := range fe {
		if !f.IsRequired() && !f.IsOptional() {
			unknown = append(unknown, f)
		}
	}

	sort.Slice(unknown, func(i, j int) bool { return unknown[i] < unknown[j] })

	return append(keys, unknown...)
}

func (fe FieldErrors) filter(keep func(models.Field) bool) FieldErrors {
	out := FieldErrors{}

	for f, err := range fe {
		if err != nil && keep(f) {
			out[f] = err
		}
	}

	return out
}

// FieldError ties a cause to the field it was raised for.
type FieldError struct {
	Field models.Field
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// MetadataError is returned when one or more required fields could not be
// derived. It reports every failed field, not just the first.
type MetadataError struct {
	Fields FieldErrors
}

func (e *MetadataError) Error() string {
	keys := e.Keys()
	names := make([]string, len(keys))

	for i, k := range keys {
		names[i] = string(k)
	}

	return fmt.Sprintf("could not extract metadata for the following required keys: %s", strings.Join(names, ", "))
}

// Keys returns the failed fields in declaration order.
func (e *MetadataError) Keys() []models.Field {
	return e.Fields.Fields()
}

// Causes returns every per-field cause as a single multi-error.
func (e *MetadataError) Causes() error {
	var merr *multierror.Error

	for _, f := range e.Keys() {
		merr = multierror.Append(merr, &FieldError{Field: f, Err: e.Fields[f]})
	}

	return merr.ErrorOrNil()
}

// Unwrap exposes the per-field causes to errors.Is and errors.As.
func (e *MetadataError) Unwrap() []error {
	errs := make([]error, 0, len(e.Fields)+1)
	errs = append(errs, ErrRequiredMetadata)

	for _, f := range e.Keys() {
		errs = append(errs, &FieldError{Field: f, Err: e.Fields[f]})
	}

	return errs
}
