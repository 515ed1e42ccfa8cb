// Package validator checks registration documents against the DataCite
// kernel-4 JSON Schema before they leave the service.
package validator

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"doimeta/internal/models"
)

const schemaURL = "https://schema.datacite.org/meta/kernel-4/doimeta.json"

//go:embed datacite-kernel-4.json
var kernel4 string

// ErrInvalidDocument is returned when a document does not satisfy the schema.
var ErrInvalidDocument = errors.New("document does not match the registration schema")

// ValidationError is a single schema violation.
type ValidationError struct {
	// Location is the JSON pointer of the offending value, "" for the root.
	Location string
	Message  string
}

func (e ValidationError) String() string {
	loc := e.Location
	if loc == "" {
		loc = "/"
	}

	return fmt.Sprintf("%s: %s", loc, e.Message)
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Errors  []ValidationError
	IsValid bool
}

// Err returns nil for a valid result, otherwise an error wrapping
// ErrInvalidDocument that lists every violation.
func (r *ValidationResult) Err() error {
	if r.IsValid {
		return nil
	}

	lines := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		lines[i] = e.String()
	}

	return fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(lines, "; "))
}

// SchemaValidator validates documents against the embedded kernel-4 schema.
// It is safe for concurrent use.
type SchemaValidator struct {
	schema *jsonschema.Schema
}

// NewSchemaValidator compiles the embedded schema.
func NewSchemaValidator() (*SchemaValidator, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020

	if err := c.AddResource(schemaURL, strings.NewReader(kernel4)); err != nil {
		return nil, fmt.Errorf("schema load failed: %w", err)
	}

	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("schema compile failed: %w", err)
	}

	return &SchemaValidator{schema: compiled}, nil
}

// Validate implements normalizer.DocumentValidator.
func (v *SchemaValidator) Validate(doc models.Document) error {
	result, err := v.Check(doc)
	if err != nil {
		return err
	}

	return result.Err()
}

// Check validates doc and reports every violation found.
func (v *SchemaValidator) Check(doc models.Document) (*ValidationResult, error) {
	instance, err := toInstance(doc)
	if err != nil {
		return nil, err
	}

	result := &ValidationResult{IsValid: true, Errors: []ValidationError{}}

	err = v.schema.Validate(instance)
	if err == nil {
		return result, nil
	}

	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	result.IsValid = false

	for _, be := range verr.BasicOutput().Errors {
		// the root entry only says that a sub-schema failed
		if be.Error == "" || strings.HasPrefix(be.Error, "doesn't validate with") {
			continue
		}

		result.Errors = append(result.Errors, ValidationError{
			Location: be.InstanceLocation,
			Message:  be.Error,
		})
	}

	if len(result.Errors) == 0 {
		result.Errors = append(result.Errors, ValidationError{Location: verr.InstanceLocation, Message: verr.Message})
	}

	sort.SliceStable(result.Errors, func(i, j int) bool {
		return result.Errors[i].Location < result.Errors[j].Location
	})

	return result, nil
}

// toInstance converts the typed document into the generic JSON value tree
// the schema library validates.
func toInstance(doc models.Document) (any, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var instance any
	if err := dec.Decode(&instance); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	return instance, nil
}
