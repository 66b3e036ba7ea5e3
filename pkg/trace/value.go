package trace

import (
	"strconv"
	"time"
)

// ValueType indicates the scalar kind of an attribute value.
type ValueType uint8

const (
	TypeString ValueType = iota
	TypeInt
	TypeFloat
	TypeTimestamp
)

// String returns the type name.
func (t ValueType) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeTimestamp:
		return "timestamp"
	default:
		return "string"
	}
}

// Value is a typed scalar attribute value. Str always carries the literal
// text the value was parsed from; the typed fields carry the coerced value
// when Type says so. Fields are exported so values round-trip through the
// cache file codec.
type Value struct {
	Type  ValueType `msgpack:"t"`
	Str   string    `msgpack:"s"`
	Int   int64     `msgpack:"i,omitempty"`
	Float float64   `msgpack:"f,omitempty"`
	Time  time.Time `msgpack:"ts,omitempty"`
}

// StringValue returns a string-typed value.
func StringValue(s string) Value {
	return Value{Type: TypeString, Str: s}
}

// IntValue returns an integer-typed value.
func IntValue(i int64) Value {
	return Value{Type: TypeInt, Str: strconv.FormatInt(i, 10), Int: i}
}

// FloatValue returns a float-typed value.
func FloatValue(f float64) Value {
	return Value{Type: TypeFloat, Str: strconv.FormatFloat(f, 'g', -1, 64), Float: f}
}

// TimestampValue returns a timestamp-typed value.
func TimestampValue(ts time.Time) Value {
	return Value{Type: TypeTimestamp, Str: ts.Format(time.RFC3339Nano), Time: ts}
}

// String returns the literal text of the value.
func (v Value) String() string {
	return v.Str
}

// Equal reports whether two values have the same type and payload.
// Timestamps compare with time.Time.Equal so location differences
// do not matter.
func (v Value) Equal(o Value) bool {
	if v.Type != o.Type {
		return false
	}
	switch v.Type {
	case TypeInt:
		return v.Int == o.Int
	case TypeFloat:
		return v.Float == o.Float
	case TypeTimestamp:
		return v.Time.Equal(o.Time)
	default:
		return v.Str == o.Str
	}
}

// MarshalYAML renders the value as a plain scalar, so metadata dumps
// read like the source log rather than like this struct.
func (v Value) MarshalYAML() (interface{}, error) {
	switch v.Type {
	case TypeInt:
		return v.Int, nil
	case TypeFloat:
		return v.Float, nil
	case TypeTimestamp:
		return v.Time.Format(time.RFC3339Nano), nil
	default:
		return v.Str, nil
	}
}
