package normalizer

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// isBlank reports whether a source value should be treated as not supplied.
func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	}

	return false
}

// textOf renders v as free text. It never fails.
func textOf(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	}

	return fmt.Sprint(v)
}

// scalarString converts a decoded scalar to its string form. nil becomes "".
func scalarString(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(t), nil
	}

	return "", fmt.Errorf("%w %T", ErrUnexpectedType, v)
}

// number converts a decoded numeric value, or a numeric string, to float64.
func number(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case int64:
		return float64(t), nil
	case int:
		return float64(t), nil
	case json.Number:
		return t.Float64()
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: not a number %q", ErrUnexpectedType, t)
		}

		return f, nil
	}

	return 0, fmt.Errorf("%w %T", ErrUnexpectedType, v)
}

// coordinate renders a float the way catalogue front-ends print coordinates:
// shortest round-trip digits, always with a fractional part, switching to
// exponent form outside [1e-4, 1e16).
func coordinate(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("%w: coordinate %v", ErrUnexpectedType, f)
	}

	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64), nil
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}

	return s, nil
}

// entryReader pulls string fields out of one literal mapping, keeping the
// first failure.
type entryReader struct {
	entry map[string]any
	err   error
}

func (r *entryReader) text(key string) string {
	if r.err != nil {
		return ""
	}

	v, ok := r.entry[key]
	if !ok {
		r.err = fmt.Errorf("%w %q", ErrMissingKey, key)
		return ""
	}

	s, err := scalarString(v)
	if err != nil {
		r.err = fmt.Errorf("%s: %w", key, err)
		return ""
	}

	return s
}
