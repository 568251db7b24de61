package tetration

import "fmt"

// Record is a single result row. Endpoint schemas vary, so a record is an
// open mapping, but its values are constrained to the JSON value tree
// (string, float64, bool, nil, sequence, mapping) so rendering code has a
// precise contract to work against.
type Record map[string]any

// Validate checks that every value in the record is a well-formed JSON
// value tree.
func (r Record) Validate() error {
	for key, value := range r {
		if err := validateValue(value); err != nil {
			return fmt.Errorf("record field %q: %w", key, err)
		}
	}
	return nil
}

func validateValue(v any) error {
	switch val := v.(type) {
	case nil, string, bool, float64:
		return nil
	case []any:
		for i, item := range val {
			if err := validateValue(item); err != nil {
				return fmt.Errorf("index %d: %w", i, err)
			}
		}
		return nil
	case map[string]any:
		for key, item := range val {
			if err := validateValue(item); err != nil {
				return fmt.Errorf("key %q: %w", key, err)
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported value type %T", v)
	}
}

// String returns the named field as a string, or "" if absent or not a
// string.
func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Float returns the named field as a float64.
func (r Record) Float(key string) (float64, bool) {
	f, ok := r[key].(float64)
	return f, ok
}

// Bool returns the named field as a bool.
func (r Record) Bool(key string) (bool, bool) {
	b, ok := r[key].(bool)
	return b, ok
}

// Map returns the named field as a nested mapping.
func (r Record) Map(key string) (map[string]any, bool) {
	m, ok := r[key].(map[string]any)
	return m, ok
}
