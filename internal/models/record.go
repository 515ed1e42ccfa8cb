package models

// Record is a dataset record as stored by the catalogue. No schema is enforced:
// any key may be absent, nil, or hold a value of an unexpected type.
type Record map[string]any

// Has reports whether key is present, even if its value is nil.
func (r Record) Has(key string) bool {
	_, ok := r[key]

	return ok
}

// Value returns the raw value stored under key.
func (r Record) Value(key string) any {
	return r[key]
}

// String returns the value under key if it is a string.
func (r Record) String(key string) (string, bool) {
	s, ok := r[key].(string)

	return s, ok
}

// StringOr returns the string under key, or def when the key is absent or nil.
// The second result is false when a non-nil, non-string value is stored.
func (r Record) StringOr(key, def string) (string, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return def, true
	}

	s, ok := v.(string)

	return s, ok
}
