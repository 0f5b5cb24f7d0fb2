package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
)

const (
	deferredKey = "$expr"
	literalKey  = "$lit"
)

// ParameterKind tags the variant stored in Parameters.
type ParameterKind int

const (
	LiteralKind ParameterKind = iota
	DeferredKind
)

func (k ParameterKind) String() string {
	switch k {
	case LiteralKind:
		return "literal"
	case DeferredKind:
		return "deferred"
	default:
		return fmt.Sprintf("ParameterKind(%d)", int(k))
	}
}

// Parameters holds discovered parameters either as a literal value or as
// unevaluated expression source that is resolved when the service is configured.
// Persisted as the raw value, or as {"$expr": "<source>"} for deferred expressions.
// A literal that would read back as one of the wrapper objects is persisted
// as {"$lit": <value>}.
type Parameters struct {
	kind   ParameterKind
	value  interface{}
	source string
}

// Literal wraps an already evaluated value. Numbers are stored as int64
// (uint64 above the int64 range) or float64, and slices and string keyed
// maps as []interface{} and map[string]interface{}, matching what a
// decoded value looks like.
func Literal(value interface{}) Parameters {
	return Parameters{kind: LiteralKind, value: normalize(value)}
}

// Deferred wraps expression source to be evaluated later.
func Deferred(source string) Parameters {
	return Parameters{kind: DeferredKind, source: source}
}

func (p Parameters) Kind() ParameterKind { return p.kind }

// Value returns the literal value; nil for deferred parameters.
func (p Parameters) Value() interface{} { return p.value }

// Source returns the expression source; empty for literals.
func (p Parameters) Source() string { return p.source }

// IsDeferred reports whether evaluation is still pending.
func (p Parameters) IsDeferred() bool { return p.kind == DeferredKind }

// Equal compares kind and content.
func (p Parameters) Equal(other Parameters) bool {
	if p.kind != other.kind {
		return false
	}

	if p.kind == DeferredKind {
		return p.source == other.source
	}

	return reflect.DeepEqual(p.value, other.value)
}

func (p Parameters) String() string {
	if p.kind == DeferredKind {
		return "expr(" + p.source + ")"
	}

	return fmt.Sprintf("%v", p.value)
}

func (p Parameters) MarshalJSON() ([]byte, error) {
	if p.kind == DeferredKind {
		return json.Marshal(map[string]string{deferredKey: p.source})
	}

	if isWrapper(p.value) {
		return json.Marshal(map[string]interface{}{literalKey: p.value})
	}

	return json.Marshal(p.value)
}

func (p *Parameters) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*p = Literal(nil)
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParameters, err)
	}

	if m, ok := raw.(map[string]interface{}); ok && len(m) == 1 {
		if src, ok := m[deferredKey].(string); ok {
			*p = Deferred(src)
			return nil
		}

		if v, ok := m[literalKey]; ok {
			*p = Literal(v)
			return nil
		}
	}

	*p = Literal(raw)

	return nil
}

// isWrapper reports whether v encodes like {"$expr": ...} or {"$lit": ...}.
func isWrapper(v interface{}) bool {
	m, ok := v.(map[string]interface{})
	if !ok || len(m) != 1 {
		return false
	}

	_, expr := m[deferredKey]
	_, lit := m[literalKey]

	return expr || lit
}

func normalize(v interface{}) interface{} {
	switch n := v.(type) {
	case nil, bool, string, int64, []byte:
		return v
	case json.Number:
		return normalizeNumber(n)
	case float64:
		return normalizeFloat(n)
	case float32:
		return normalizeFloat(float64(n))
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case uint:
		return normalizeUint(uint64(n))
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		return normalizeUint(n)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(n))
		for k, item := range n {
			out[k] = normalize(item)
		}

		return out
	case []interface{}:
		out := make([]interface{}, len(n))
		for i, item := range n {
			out[i] = normalize(item)
		}

		return out
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]interface{}, rv.Len())
		for i := range out {
			out[i] = normalize(rv.Index(i).Interface())
		}

		return out
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v
		}

		out := make(map[string]interface{}, rv.Len())
		iter := rv.MapRange()

		for iter.Next() {
			out[iter.Key().String()] = normalize(iter.Value().Interface())
		}

		return out
	default:
		return v
	}
}

func normalizeNumber(n json.Number) interface{} {
	if i, err := n.Int64(); err == nil {
		return i
	}

	if u, err := strconv.ParseUint(n.String(), 10, 64); err == nil {
		return u
	}

	f, err := n.Float64()
	if err != nil {
		return n.String()
	}

	return normalizeFloat(f)
}

// normalizeFloat maps integral floats to int64; JSON cannot tell 80.0 from 80.
func normalizeFloat(f float64) interface{} {
	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
		return int64(f)
	}

	return f
}

func normalizeUint(u uint64) interface{} {
	if u <= math.MaxInt64 {
		return int64(u)
	}

	return u
}
