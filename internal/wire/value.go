package wire

import (
	"fmt"
	"math"
)

// VarType is the wire tag for a variable payload kind. The byte values are
// part of the client protocol and must never be renumbered.
type VarType byte

const (
	TypeNull   VarType = 0
	TypeBool   VarType = 1
	TypeInt    VarType = 2
	TypeDouble VarType = 3
	TypeString VarType = 4
	TypeObject VarType = 5
	TypeArray  VarType = 6

	// TypeUndefined marks a variable whose type should be inferred from its
	// runtime value at encode time. It never appears on the wire.
	TypeUndefined VarType = 0xFF
)

func (t VarType) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeDouble:
		return "double"
	case TypeString:
		return "string"
	case TypeObject:
		return "object"
	case TypeArray:
		return "array"
	case TypeUndefined:
		return "undefined"
	default:
		return fmt.Sprintf("vartype(%d)", byte(t))
	}
}

// Value is the closed set of payload kinds a variable can hold. Exactly one
// concrete type exists per wire tag, so the encode and decode switches are
// exhaustive.
type Value interface {
	Type() VarType
	isValue()
}

// Null is the explicit null payload.
type Null struct{}

// Bool is a boolean payload.
type Bool bool

// Int is a 32-bit signed integer payload.
type Int int32

// Double is a 64-bit float payload.
type Double float64

// String is a UTF-8 string payload.
type String string

// Object is an opaque nested payload, carried as a raw blob. The presence
// layer does not interpret its contents.
type Object []byte

// Array is a heterogeneous list of values.
type Array []Value

func (Null) Type() VarType   { return TypeNull }
func (Bool) Type() VarType   { return TypeBool }
func (Int) Type() VarType    { return TypeInt }
func (Double) Type() VarType { return TypeDouble }
func (String) Type() VarType { return TypeString }
func (Object) Type() VarType { return TypeObject }
func (Array) Type() VarType  { return TypeArray }

func (Null) isValue()   {}
func (Bool) isValue()   {}
func (Int) isValue()    {}
func (Double) isValue() {}
func (String) isValue() {}
func (Object) isValue() {}
func (Array) isValue()  {}

// ValueOf converts a runtime Go value to its wire Value. It implements the
// inference rule used for variables declared with TypeUndefined: nil maps to
// Null, bool/int/float64/string/[]byte map to their obvious kinds, and a
// []any maps element-wise to an Array. Any other runtime type is a fatal
// encoding error.
func ValueOf(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case int:
		return intValue(int64(x))
	case int32:
		return Int(x), nil
	case int64:
		return intValue(x)
	case float64:
		return Double(x), nil
	case string:
		return String(x), nil
	case []byte:
		return Object(x), nil
	case []any:
		arr := make(Array, 0, len(x))
		for i, el := range x {
			ev, err := ValueOf(el)
			if err != nil {
				return nil, fmt.Errorf("array element %d: %w", i, err)
			}
			arr = append(arr, ev)
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrBadValueType, v)
	}
}

// intValue narrows a Go integer to the 32-bit wire kind. A value outside
// int32 range cannot be represented and is an encoding error, never a
// silent truncation.
func intValue(v int64) (Value, error) {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return nil, fmt.Errorf("%w: %d overflows int32", ErrBadValueType, v)
	}
	return Int(int32(v)), nil
}

// Native returns the plain Go representation of v: nil, bool, int32,
// float64, string, []byte, or []any.
func Native(v Value) any {
	switch x := v.(type) {
	case Null:
		return nil
	case Bool:
		return bool(x)
	case Int:
		return int32(x)
	case Double:
		return float64(x)
	case String:
		return string(x)
	case Object:
		return []byte(x)
	case Array:
		out := make([]any, 0, len(x))
		for _, el := range x {
			out = append(out, Native(el))
		}
		return out
	default:
		return nil
	}
}
