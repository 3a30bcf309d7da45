package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ValueKind tags the variant held by a Value.
type ValueKind uint8

const (
	KindInvalid ValueKind = iota
	KindString
	KindNumber
	KindBool
	KindList
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	default:
		return "invalid"
	}
}

// Value is a constraint value: a string, a number, a bool or a list of values.
// The zero Value is invalid and never equal to anything, itself included.
type Value struct {
	kind ValueKind
	str  string
	num  float64
	b    bool
	list []Value
}

func String(s string) Value { return Value{kind: KindString, str: s} }
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }
func List(vs ...Value) Value { return Value{kind: KindList, list: append([]Value(nil), vs...)} }
func (v Value) Kind() ValueKind { return v.kind }

// FromAny converts a decoded JSON value (string, float64, bool, []interface{})
// into a Value. Anything else yields the invalid Value.
func FromAny(x interface{}) Value {
	switch t := x.(type) {
	case string:
		return String(t)
	case float64:
		return Number(t)
	case int:
		return Number(float64(t))
	case int64:
		return Number(float64(t))
	case bool:
		return Bool(t)
	case []interface{}:
		vs := make([]Value, 0, len(t))
		for _, e := range t {
			vs = append(vs, FromAny(e))
		}
		return List(vs...)
	case []string:
		vs := make([]Value, 0, len(t))
		for _, e := range t {
			vs = append(vs, String(e))
		}
		return List(vs...)
	default:
		return Value{}
	}
}

// Equal reports scalar equality, or positional equality for lists.
func (v Value) Equal(o Value) bool {
	if v.kind == KindInvalid || v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.b == o.b
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func (v Value) Interface() interface{} {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindList:
		out := make([]interface{}, 0, len(v.list))
		for _, e := range v.list {
			out = append(out, e.Interface())
		}
		return out
	}
	return nil
}

func (v Value) String() string {
	return fmt.Sprintf("%v", v.Interface())
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON never fails on a well-formed JSON document: objects and nulls
// decode to the invalid Value so that a bad profile field disables only the
// constraint it sits on.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*v = FromAny(raw)
	return nil
}

// Constraints is an open key to value map declared by a user or a listing.
type Constraints map[string]Value

// ConstraintsFromMap converts a decoded JSON object into Constraints.
func ConstraintsFromMap(m map[string]interface{}) Constraints {
	if m == nil {
		return nil
	}
	out := make(Constraints, len(m))
	for k, x := range m {
		out[k] = FromAny(x)
	}
	return out
}
