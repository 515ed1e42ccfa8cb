package normalizer

import (
	"fmt"
	"sort"
	"strings"

	"doimeta/internal/models"
)

func parseSubjects(src models.Record) ([]models.Subject, error) {
	tagString, ok := src.StringOr("tag_string", "")
	if !ok {
		return nil, fmt.Errorf("tag_string: %w %T", ErrUnexpectedType, src.Value("tag_string"))
	}

	// Tags are kept as written; only empty ones are dropped.
	seen := make(map[string]struct{})
	add := func(tag string) {
		if tag != "" {
			seen[tag] = struct{}{}
		}
	}

	for _, tag := range strings.Split(tagString, ",") {
		add(tag)
	}

	switch tags := src.Value("tags").(type) {
	case nil:
	case []string:
		for _, tag := range tags {
			add(tag)
		}
	case []any:
		for i, item := range tags {
			name, err := tagName(item)
			if err != nil {
				return nil, fmt.Errorf("tags %d: %w", i, err)
			}

			add(name)
		}
	default:
		return nil, fmt.Errorf("tags: %w %T", ErrUnexpectedType, tags)
	}

	names := make([]string, 0, len(seen))
	for tag := range seen {
		names = append(names, tag)
	}

	sort.Strings(names)

	subjects := make([]models.Subject, len(names))
	for i, name := range names {
		subjects[i] = models.Subject{Subject: name}
	}

	return subjects, nil
}

func tagName(item any) (string, error) {
	switch t := item.(type) {
	case string:
		return t, nil
	case map[string]any:
		name, ok := t["name"]
		if !ok {
			return "", fmt.Errorf("%w %q", ErrMissingKey, "name")
		}

		s, ok := name.(string)
		if !ok {
			return "", fmt.Errorf("name: %w %T", ErrUnexpectedType, name)
		}

		return s, nil
	}

	return "", fmt.Errorf("%w %T", ErrUnexpectedType, item)
}
