package params

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindMap:
		return "map"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is a request parameter value. The zero Value is null.
type Value struct {
	kind  Kind
	str   string
	num   float64
	i     int64
	exact bool
	b     bool
	m     Params
}

// Constructors for each variant.

func String(s string) Value  { return Value{kind: KindString, str: s} }
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }
func Int(i int64) Value      { return Value{kind: KindNumber, num: float64(i), i: i, exact: true} }
func Bool(b bool) Value      { return Value{kind: KindBool, b: b} }
func Null() Value            { return Value{} }
func Object(p Params) Value  { return Value{kind: KindMap, m: p} }

func (v Value) Kind() Kind     { return v.kind }
func (v Value) IsNull() bool   { return v.kind == KindNull }
func (v Value) Map() Params    { return v.m }
func (v Value) Float() float64 { return v.num }

// Int64 returns the exact integer held by a number built from an integer.
func (v Value) Int64() (int64, bool) {
	if v.kind != KindNumber || !v.exact {
		return 0, false
	}
	return v.i, true
}

// Text returns the default textual representation used for form encoding.
// Nested maps render as their JSON text; non-finite numbers use strconv's spelling.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		if v.exact {
			return strconv.FormatInt(v.i, 10)
		}
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindMap:
		raw, err := EncodeJSON(v.m)
		if err != nil {
			return fmt.Sprintf("%v", v.m)
		}
		return string(raw)
	default:
		return "null"
	}
}

func (v Value) String() string { return v.Text() }

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		if v.exact {
			return strconv.AppendInt(nil, v.i, 10), nil
		}
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return nil, fmt.Errorf("unsupported number %v", v.num)
		}
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	case KindMap:
		if v.m == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(map[string]Value(v.m))
	default:
		return []byte("null"), nil
	}
}

// FromAny converts decoded YAML/JSON data into a Value.
func FromAny(raw any) (Value, error) {
	switch t := raw.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case int:
		return Int(int64(t)), nil
	case int8:
		return Int(int64(t)), nil
	case int16:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint:
		return fromUint(uint64(t)), nil
	case uint8:
		return Int(int64(t)), nil
	case uint16:
		return Int(int64(t)), nil
	case uint32:
		return Int(int64(t)), nil
	case uint64:
		return fromUint(t), nil
	case float32:
		return Number(float64(t)), nil
	case float64:
		return Number(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("parse number %q: %w", t.String(), err)
		}
		return Number(f), nil
	case map[string]any:
		p, err := FromMap(t)
		if err != nil {
			return Value{}, err
		}
		return Object(p), nil
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			key, ok := k.(string)
			if !ok {
				return Value{}, fmt.Errorf("map key %v is %T, want string", k, k)
			}
			m[key] = val
		}
		p, err := FromMap(m)
		if err != nil {
			return Value{}, err
		}
		return Object(p), nil
	default:
		return Value{}, fmt.Errorf("unsupported parameter type %T", raw)
	}
}

// fromUint keeps values that fit in int64 exact.
func fromUint(u uint64) Value {
	if u > math.MaxInt64 {
		return Number(float64(u))
	}
	return Int(int64(u))
}
