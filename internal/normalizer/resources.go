package normalizer

import (
	"fmt"
	"sort"

	"doimeta/internal/models"
)

func resourcesOf(src models.Record) ([]map[string]any, error) {
	switch res := src.Value("resources").(type) {
	case nil:
		return nil, nil
	case []map[string]any:
		return res, nil
	case []any:
		out := make([]map[string]any, 0, len(res))

		for i, item := range res {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("resources %d: %w %T", i, ErrUnexpectedType, item)
			}

			out = append(out, m)
		}

		return out, nil
	default:
		return nil, fmt.Errorf("resources: %w %T", ErrUnexpectedType, res)
	}
}

// parseSizes reports the total size of all resources in whole kilobytes.
func parseSizes(src models.Record) ([]string, error) {
	resources, err := resourcesOf(src)
	if err != nil {
		return nil, err
	}

	var total float64

	for i, r := range resources {
		if isBlank(r["size"]) {
			continue
		}

		n, err := number(r["size"])
		if err != nil {
			return nil, fmt.Errorf("resources %d size: %w", i, err)
		}

		total += n
	}

	return []string{fmt.Sprintf("%d kb", int64(total/1024))}, nil
}

func parseFormats(src models.Record) ([]string, error) {
	resources, err := resourcesOf(src)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})

	for i, r := range resources {
		switch f := r["format"].(type) {
		case nil:
		case string:
			if f != "" {
				seen[f] = struct{}{}
			}
		default:
			return nil, fmt.Errorf("resources %d format: %w %T", i, ErrUnexpectedType, f)
		}
	}

	formats := make([]string, 0, len(seen))
	for f := range seen {
		formats = append(formats, f)
	}

	sort.Strings(formats)

	return formats, nil
}
