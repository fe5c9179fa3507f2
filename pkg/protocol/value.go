package protocol

import (
	"fmt"
	"reflect"
)

// ValueKind tags an encoded prop value.
type ValueKind uint8

const (
	ValueNull    ValueKind = 0x00 // Prop removed
	ValueString  ValueKind = 0x01
	ValueBool    ValueKind = 0x02
	ValueInt     ValueKind = 0x03
	ValueFloat   ValueKind = 0x04
	ValueHandler ValueKind = 0x05 // Event handler attached on the server
)

// Value is a prop value as it travels on the wire. Functions cannot be
// sent, so handlers travel as a marker and fire back as event frames.
type Value struct {
	Kind  ValueKind
	Str   string
	Bool  bool
	Int   int64
	Float float64
}

// ValueOf converts a Go prop value. Unknown types are sent as their
// fmt.Sprint text.
func ValueOf(v any) Value {
	switch x := v.(type) {
	case nil:
		return Value{Kind: ValueNull}
	case string:
		return Value{Kind: ValueString, Str: x}
	case bool:
		return Value{Kind: ValueBool, Bool: x}
	case float32:
		return Value{Kind: ValueFloat, Float: float64(x)}
	case float64:
		return Value{Kind: ValueFloat, Float: x}
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Value{Kind: ValueInt, Int: rv.Int()}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Value{Kind: ValueInt, Int: int64(rv.Uint())}
	case reflect.Func:
		return Value{Kind: ValueHandler}
	}
	return Value{Kind: ValueString, Str: fmt.Sprint(v)}
}

// Interface returns the Go value: nil, string, bool, int64 or float64.
// Handlers come back as nil; the replaying side installs its own.
func (v Value) Interface() any {
	switch v.Kind {
	case ValueString:
		return v.Str
	case ValueBool:
		return v.Bool
	case ValueInt:
		return v.Int
	case ValueFloat:
		return v.Float
	}
	return nil
}

// String formats the value for logs.
func (v Value) String() string {
	switch v.Kind {
	case ValueNull:
		return "null"
	case ValueHandler:
		return "handler"
	}
	return fmt.Sprint(v.Interface())
}

// EncodeValue appends v to e.
func EncodeValue(e *Encoder, v Value) {
	e.WriteByte(byte(v.Kind))
	switch v.Kind {
	case ValueString:
		e.WriteString(v.Str)
	case ValueBool:
		e.WriteBool(v.Bool)
	case ValueInt:
		e.WriteSvarint(v.Int)
	case ValueFloat:
		e.WriteFloat64(v.Float)
	}
}

// DecodeValue reads a value written by EncodeValue.
func DecodeValue(d *Decoder) (Value, error) {
	kind, err := d.ReadByte()
	if err != nil {
		return Value{}, err
	}
	v := Value{Kind: ValueKind(kind)}
	switch v.Kind {
	case ValueNull, ValueHandler:
	case ValueString:
		v.Str, err = d.ReadString()
	case ValueBool:
		v.Bool, err = d.ReadBool()
	case ValueInt:
		v.Int, err = d.ReadSvarint()
	case ValueFloat:
		v.Float, err = d.ReadFloat64()
	default:
		return Value{}, fmt.Errorf("%w: value kind 0x%02x", ErrUnknownOp, kind)
	}
	return v, err
}
