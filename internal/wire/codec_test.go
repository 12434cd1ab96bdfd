package wire

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestWriter_FieldSequence(t *testing.T) {
	w := NewWriter()
	_ = w.WriteByte(0x7f)
	w.WriteBool(true)
	w.WriteShort(-2)
	w.WriteInt(70000)
	w.WriteDouble(1.5)
	w.WriteString("hi")
	if w.Err() != nil {
		t.Fatalf("unexpected error: %v", w.Err())
	}

	r := NewReader(w.Bytes())
	b, err := r.ReadByte()
	if err != nil || b != 0x7f {
		t.Errorf("byte = %v, %v", b, err)
	}
	bl, err := r.ReadBool()
	if err != nil || !bl {
		t.Errorf("bool = %v, %v", bl, err)
	}
	s, err := r.ReadShort()
	if err != nil || s != -2 {
		t.Errorf("short = %v, %v", s, err)
	}
	i, err := r.ReadInt()
	if err != nil || i != 70000 {
		t.Errorf("int = %v, %v", i, err)
	}
	d, err := r.ReadDouble()
	if err != nil || d != 1.5 {
		t.Errorf("double = %v, %v", d, err)
	}
	str, err := r.ReadString()
	if err != nil || str != "hi" {
		t.Errorf("string = %q, %v", str, err)
	}
	testutil.AssertEqual(t, "remaining", r.Remaining(), 0)
}

func TestValue_RoundTrip(t *testing.T) {
	tests := map[string]Value{
		"null":         Null{},
		"bool true":    Bool(true),
		"bool false":   Bool(false),
		"int":          Int(-12345),
		"int max":      Int(math.MaxInt32),
		"double":       Double(3.14159),
		"double zero":  Double(0),
		"string":       String("hello world"),
		"string empty": String(""),
		"object":       Object([]byte{0x01, 0x02, 0x03}),
		"array empty":  Array{},
		"array mixed":  Array{Int(1), String("a"), Bool(false), Null{}, Double(2.5)},
		"array nested": Array{Array{Int(1)}, Object([]byte{0xff})},
	}

	for name, v := range tests {
		t.Run(name, func(t *testing.T) {
			w := NewWriter()
			if err := w.WriteValue(v); err != nil {
				t.Fatalf("encode: %v", err)
			}

			r := NewReader(w.Bytes())
			got, err := r.ReadValue()
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !reflect.DeepEqual(got, v) {
				t.Errorf("round trip = %#v, expected %#v", got, v)
			}
			testutil.AssertEqual(t, "remaining", r.Remaining(), 0)
		})
	}
}

func TestValueOf(t *testing.T) {
	tests := map[string]struct {
		in     any
		exp    Value
		expErr error
	}{
		"nil":             {in: nil, exp: Null{}},
		"bool":            {in: true, exp: Bool(true)},
		"int":             {in: 7, exp: Int(7)},
		"int32":           {in: int32(-9), exp: Int(-9)},
		"int64":           {in: int64(40), exp: Int(40)},
		"float64":         {in: 2.5, exp: Double(2.5)},
		"string":          {in: "x", exp: String("x")},
		"bytes":           {in: []byte{1}, exp: Object([]byte{1})},
		"any slice":       {in: []any{1, "a"}, exp: Array{Int(1), String("a")}},
		"value":           {in: Int(3), exp: Int(3)},
		"int64 min":       {in: int64(math.MinInt32), exp: Int(math.MinInt32)},
		"int64 max":       {in: int64(math.MaxInt32), exp: Int(math.MaxInt32)},
		"struct":          {in: struct{ X int }{1}, expErr: ErrBadValueType},
		"map":             {in: map[string]int{}, expErr: ErrBadValueType},
		"bad array":       {in: []any{make(chan int)}, expErr: ErrBadValueType},
		"int64 overflow":  {in: int64(1) << 40, expErr: ErrBadValueType},
		"int64 underflow": {in: int64(math.MinInt32) - 1, expErr: ErrBadValueType},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ValueOf(tt.in)
			if tt.expErr != nil {
				if !errors.Is(err, tt.expErr) {
					t.Errorf("error = %v, expected %v", err, tt.expErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.exp) {
				t.Errorf("got %#v, expected %#v", got, tt.exp)
			}
		})
	}
}

func TestReader_Truncated(t *testing.T) {
	w := NewWriter()
	_ = w.WriteValue(String("hello"))
	frame := w.Bytes()

	// Every proper prefix of the frame must fail with ErrTruncated.
	for n := 0; n < len(frame); n++ {
		r := NewReader(frame[:n])
		_, err := r.ReadValue()
		if !errors.Is(err, ErrTruncated) {
			t.Errorf("prefix %d: error = %v, expected ErrTruncated", n, err)
		}
	}
}

func TestReader_BadTypeTag(t *testing.T) {
	r := NewReader([]byte{0x42})
	_, err := r.ReadValue()
	if !errors.Is(err, ErrBadTypeTag) {
		t.Errorf("error = %v, expected ErrBadTypeTag", err)
	}
}

func TestWriter_StringTooLong(t *testing.T) {
	w := NewWriter()
	w.WriteString(strings.Repeat("a", math.MaxUint16+1))
	if !errors.Is(w.Err(), ErrStringTooLong) {
		t.Errorf("error = %v, expected ErrStringTooLong", w.Err())
	}

	// The failure is sticky: later writes produce nothing.
	before := len(w.Bytes())
	w.WriteInt(1)
	testutil.AssertEqual(t, "buffer length", len(w.Bytes()), before)
}

func TestWriter_ArrayTooLong(t *testing.T) {
	w := NewWriter()
	err := w.WriteValue(make(Array, math.MaxInt16+1))
	if !errors.Is(err, ErrTooManyElements) {
		t.Errorf("error = %v, expected ErrTooManyElements", err)
	}
	if !errors.Is(w.Err(), ErrTooManyElements) {
		t.Errorf("sticky error = %v, expected ErrTooManyElements", w.Err())
	}

	// The failure is sticky: later writes produce nothing.
	before := len(w.Bytes())
	w.WriteInt(1)
	testutil.AssertEqual(t, "buffer length", len(w.Bytes()), before)
}

func TestWriter_ArrayAtLimit(t *testing.T) {
	w := NewWriter()
	if err := w.WriteValue(make(Array, math.MaxInt16)); err != nil {
		t.Fatalf("encode: %v", err)
	}

	r := NewReader(w.Bytes())
	got, err := r.ReadValue()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	arr, ok := got.(Array)
	if !ok {
		t.Fatalf("decoded %T, expected Array", got)
	}
	testutil.AssertEqual(t, "element count", len(arr), math.MaxInt16)
	testutil.AssertEqual(t, "remaining", r.Remaining(), 0)
}

func TestNative(t *testing.T) {
	v := Array{Int(1), String("a"), Null{}}
	got := Native(v)
	exp := []any{int32(1), "a", nil}
	if !reflect.DeepEqual(got, exp) {
		t.Errorf("got %#v, expected %#v", got, exp)
	}
}
