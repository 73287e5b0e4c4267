package conf

import (
	"fmt"
	"strconv"
)

// ============================================================================
// VALUES & RECORDS — What a configuration line turns into
// ============================================================================
// A Value is one of three shapes: a bare string ("NIRCam.A.1st.sensitivity"),
// a number (3.5) or a min/max pair (-10 10). Pairs also carry the folded
// "_0"/"_1" coefficient keys produced by the beam package.
// ============================================================================

// Kind identifies which field of a Value is populated.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindPair
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindPair:
		return "pair"
	}
	return "unknown"
}

// Value is a scalar string, a number, or a two-element numeric tuple.
type Value struct {
	kind Kind
	str  string
	num  float64
	pair [2]float64
}

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number returns a numeric value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Pair returns a two-element numeric value.
func Pair(a, b float64) Value { return Value{kind: KindPair, pair: [2]float64{a, b}} }

// Kind reports the shape of v.
func (v Value) Kind() Kind { return v.kind }

// IsNumber reports whether v is a single number.
func (v Value) IsNumber() bool { return v.kind == KindNumber }

// Str returns the string payload and whether v is a string.
func (v Value) Str() (string, bool) { return v.str, v.kind == KindString }

// Float returns the numeric payload and whether v is a number.
func (v Value) Float() (float64, bool) { return v.num, v.kind == KindNumber }

// Tuple returns the pair payload and whether v is a pair.
func (v Value) Tuple() ([2]float64, bool) { return v.pair, v.kind == KindPair }

// String formats v the way it is echoed in diagnostics: "F444W", "3.5", "(-10, 10)".
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return formatFloat(v.num)
	case KindPair:
		return fmt.Sprintf("(%s, %s)", formatFloat(v.pair[0]), formatFloat(v.pair[1]))
	}
	return v.str
}

// Interface returns v as a plain Go value (string, float64 or [2]float64).
func (v Value) Interface() any {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindPair:
		return v.pair
	}
	return v.str
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// ============================================================================
// RECORD — insertion-ordered key/value map
// ============================================================================

// Record is a flat key → Value mapping that remembers the order in which keys
// were first set. Setting an existing key replaces its value in place.
type Record struct {
	keys   []string
	values map[string]Value
}

// NewRecord returns an empty Record.
func NewRecord() *Record {
	return &Record{values: make(map[string]Value)}
}

// Set stores v under key.
func (r *Record) Set(key string, v Value) {
	if r.values == nil {
		r.values = make(map[string]Value)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (Value, bool) {
	if r == nil {
		return Value{}, false
	}
	v, ok := r.values[key]
	return v, ok
}

// Has reports whether key is present.
func (r *Record) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Delete removes key. Missing keys are ignored.
func (r *Record) Delete(key string) {
	if r == nil {
		return
	}
	if _, ok := r.values[key]; !ok {
		return
	}
	delete(r.values, key)
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of keys.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Map returns a plain map copy, handy for comparisons and serialization.
func (r *Record) Map() map[string]Value {
	out := make(map[string]Value, r.Len())
	if r == nil {
		return out
	}
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// Equal reports whether v and o hold the same shape and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num == o.num
	case KindPair:
		return v.pair == o.pair
	}
	return v.str == o.str
}
