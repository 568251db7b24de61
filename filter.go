package tetration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// Operator identifies a leaf filter predicate.
type Operator string

// Supported leaf operators.
const (
	OpEq          Operator = "eq"
	OpNeq         Operator = "neq"
	OpContains    Operator = "contains"
	OpNotContains Operator = "not_contains"
	OpGt          Operator = "gt"
	OpLt          Operator = "lt"
	OpGte         Operator = "gte"
	OpLte         Operator = "lte"
	OpIn          Operator = "in"
)

// Filter is a boolean predicate tree serialized into the search filter
// grammar. The tree is closed: the only implementations are Leaf,
// Composite and Not, so serialization can handle every case exhaustively.
//
// Child order is preserved exactly as constructed; serialization is
// deterministic so that identical logical queries produce identical
// request bodies (and therefore identical signatures).
type Filter interface {
	isFilter()
}

// Leaf is a single field predicate. Field order in the struct matches the
// wire grammar: {"type": ..., "field": ..., "value": ...}.
type Leaf struct {
	Type  Operator `json:"type"`
	Field string   `json:"field"`
	Value any      `json:"value"`
}

func (*Leaf) isFilter() {}

// Composite combines child filters with a boolean connective.
type Composite struct {
	Type    string   `json:"type"` // "and" or "or"
	Filters []Filter `json:"filters"`
}

func (*Composite) isFilter() {}

// Not negates a single child filter.
type Not struct {
	Type   string `json:"type"` // always "not"
	Filter Filter `json:"filter"`
}

func (*Not) isFilter() {}

// newLeaf validates operator/value compatibility before the leaf can reach
// a request body. Malformed filters never go on the wire.
func newLeaf(field string, op Operator, value any) (*Leaf, error) {
	if field == "" {
		return nil, &InvalidFilterError{Operator: op, Reason: "field must not be empty"}
	}

	switch op {
	case OpEq, OpNeq:
		if !isScalar(value) {
			return nil, &InvalidFilterError{Field: field, Operator: op, Reason: "value must be a scalar"}
		}
	case OpContains, OpNotContains:
		if _, ok := value.(string); !ok {
			return nil, &InvalidFilterError{Field: field, Operator: op, Reason: "value must be a string"}
		}
	case OpGt, OpLt, OpGte, OpLte:
		if !isNumeric(value) {
			return nil, &InvalidFilterError{Field: field, Operator: op, Reason: "value must be numeric"}
		}
	case OpIn:
		if !isSequence(value) {
			return nil, &InvalidFilterError{Field: field, Operator: op, Reason: "value must be a sequence"}
		}
	default:
		return nil, &InvalidFilterError{Field: field, Operator: op, Reason: "unsupported operator"}
	}

	return &Leaf{Type: op, Field: field, Value: value}, nil
}

// Eq matches records whose field equals value.
func Eq(field string, value any) (*Leaf, error) { return newLeaf(field, OpEq, value) }

// Neq matches records whose field does not equal value.
func Neq(field string, value any) (*Leaf, error) { return newLeaf(field, OpNeq, value) }

// Contains matches records whose field contains the given substring.
func Contains(field, value string) (*Leaf, error) { return newLeaf(field, OpContains, value) }

// NotContains matches records whose field does not contain the substring.
func NotContains(field, value string) (*Leaf, error) { return newLeaf(field, OpNotContains, value) }

// Gt matches records whose field is greater than value.
func Gt(field string, value any) (*Leaf, error) { return newLeaf(field, OpGt, value) }

// Lt matches records whose field is less than value.
func Lt(field string, value any) (*Leaf, error) { return newLeaf(field, OpLt, value) }

// Gte matches records whose field is greater than or equal to value.
func Gte(field string, value any) (*Leaf, error) { return newLeaf(field, OpGte, value) }

// Lte matches records whose field is less than or equal to value.
func Lte(field string, value any) (*Leaf, error) { return newLeaf(field, OpLte, value) }

// In matches records whose field equals any of the given values.
func In(field string, values ...any) (*Leaf, error) {
	// A single argument may itself be the sequence; a single scalar is
	// rejected by validation rather than silently wrapped.
	if len(values) == 1 {
		return newLeaf(field, OpIn, values[0])
	}
	return newLeaf(field, OpIn, []any(values))
}

// And combines filters so that all must match. The signature requires at
// least one child, so an empty composite is unrepresentable.
func And(first Filter, rest ...Filter) *Composite {
	return &Composite{Type: "and", Filters: append([]Filter{first}, rest...)}
}

// Or combines filters so that at least one must match.
func Or(first Filter, rest ...Filter) *Composite {
	return &Composite{Type: "or", Filters: append([]Filter{first}, rest...)}
}

// Negate inverts a filter.
func Negate(f Filter) *Not {
	return &Not{Type: "not", Filter: f}
}

// isScalar reports whether v is a string, bool, number or nil.
func isScalar(v any) bool {
	if v == nil {
		return true
	}
	switch v.(type) {
	case string, bool:
		return true
	}
	return isNumeric(v)
}

func isNumeric(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, json.Number:
		return true
	}
	return false
}

func isSequence(v any) bool {
	if v == nil {
		return false
	}
	k := reflect.TypeOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}

// marshalFilter serializes a filter to its exact wire bytes, without the
// HTML escaping encoding/json applies by default. Field values routinely
// contain characters like '&' and '<' that must survive verbatim.
func marshalFilter(f Filter) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(f); err != nil {
		return nil, fmt.Errorf("serializing filter: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
