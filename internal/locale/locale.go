// Package locale resolves the language tag of the current request.
package locale

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// ErrInvalidTag is returned for strings that are not BCP 47 language tags.
var ErrInvalidTag = errors.New("invalid language tag")

// Resolver returns the active language for ctx.
type Resolver interface {
	Language(ctx context.Context) (string, error)
}

// Canonicalize parses a BCP 47 tag, accepting POSIX-style underscores
// ("pt_BR"), and returns its canonical form ("pt-BR").
func Canonicalize(tag string) (string, error) {
	t, err := language.Parse(strings.ReplaceAll(strings.TrimSpace(tag), "_", "-"))
	if err != nil {
		return "", fmt.Errorf("%w %q: %w", ErrInvalidTag, tag, err)
	}

	return t.String(), nil
}

// StaticResolver always returns the same language.
type StaticResolver struct {
	tag string
}

// NewStaticResolver validates tag and returns a resolver for it.
func NewStaticResolver(tag string) (*StaticResolver, error) {
	canonical, err := Canonicalize(tag)
	if err != nil {
		return nil, err
	}

	return &StaticResolver{tag: canonical}, nil
}

// Language implements Resolver.
func (r *StaticResolver) Language(context.Context) (string, error) {
	return r.tag, nil
}

type ctxKey struct{}

// WithLanguage returns a context carrying tag as the request language.
func WithLanguage(ctx context.Context, tag string) context.Context {
	return context.WithValue(ctx, ctxKey{}, tag)
}

// ContextResolver reads the language from the context, falling back to a
// default resolver when the context carries none.
type ContextResolver struct {
	fallback Resolver
}

// NewContextResolver creates a context resolver. fallback may be nil.
func NewContextResolver(fallback Resolver) *ContextResolver {
	return &ContextResolver{fallback: fallback}
}

// Language implements Resolver.
func (r *ContextResolver) Language(ctx context.Context) (string, error) {
	if tag, ok := ctx.Value(ctxKey{}).(string); ok && tag != "" {
		return Canonicalize(tag)
	}

	if r.fallback == nil {
		return "", errors.New("no language in context and no fallback configured")
	}

	return r.fallback.Language(ctx)
}
