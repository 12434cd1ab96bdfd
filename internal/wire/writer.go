package wire

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Writer encodes a fixed sequence of typed fields into a byte frame. All
// multi-byte fields are big-endian. Writes never fail except for values that
// cannot be represented (oversized strings or arrays, uninferable types);
// the first such failure is sticky and surfaced by Err and the Write*
// return values.
type Writer struct {
	buf []byte
	err error
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the encoded frame. It is invalid to use the frame if Err
// returns non-nil.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Err returns the first encoding failure, if any.
func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) fail(err error) error {
	if w.err == nil {
		w.err = err
	}
	return w.err
}

// WriteByte appends a single byte. The error mirrors Err and is sticky.
func (w *Writer) WriteByte(b byte) error {
	if w.err != nil {
		return w.err
	}
	w.buf = append(w.buf, b)
	return nil
}

// WriteBool appends a boolean as one byte (0 or 1).
func (w *Writer) WriteBool(b bool) {
	if b {
		w.WriteByte(1)
	} else {
		w.WriteByte(0)
	}
}

// WriteShort appends a 16-bit signed integer.
func (w *Writer) WriteShort(v int16) {
	if w.err != nil {
		return
	}
	w.buf = binary.BigEndian.AppendUint16(w.buf, uint16(v))
}

// WriteInt appends a 32-bit signed integer.
func (w *Writer) WriteInt(v int32) {
	if w.err != nil {
		return
	}
	w.buf = binary.BigEndian.AppendUint32(w.buf, uint32(v))
}

// WriteDouble appends a 64-bit IEEE 754 float.
func (w *Writer) WriteDouble(v float64) {
	if w.err != nil {
		return
	}
	w.buf = binary.BigEndian.AppendUint64(w.buf, math.Float64bits(v))
}

// WriteString appends a UTF-8 string with a 16-bit length prefix.
func (w *Writer) WriteString(s string) {
	if w.err != nil {
		return
	}
	if len(s) > math.MaxUint16 {
		w.fail(fmt.Errorf("%w: %d bytes", ErrStringTooLong, len(s)))
		return
	}
	w.buf = binary.BigEndian.AppendUint16(w.buf, uint16(len(s)))
	w.buf = append(w.buf, s...)
}

// WriteBlob appends an opaque byte blob with a 32-bit length prefix.
func (w *Writer) WriteBlob(b []byte) {
	if w.err != nil {
		return
	}
	w.buf = binary.BigEndian.AppendUint32(w.buf, uint32(len(b)))
	w.buf = append(w.buf, b...)
}

// WriteValue appends a tagged value: one type tag byte followed by the
// type-dependent payload. Null has no payload; an Array carries a 16-bit
// element count followed by each element encoded the same way.
func (w *Writer) WriteValue(v Value) error {
	if w.err != nil {
		return w.err
	}
	if v == nil {
		v = Null{}
	}

	w.WriteByte(byte(v.Type()))
	switch x := v.(type) {
	case Null:
	case Bool:
		w.WriteBool(bool(x))
	case Int:
		w.WriteInt(int32(x))
	case Double:
		w.WriteDouble(float64(x))
	case String:
		w.WriteString(string(x))
	case Object:
		w.WriteBlob(x)
	case Array:
		if len(x) > math.MaxInt16 {
			return w.fail(fmt.Errorf("%w: %d elements", ErrTooManyElements, len(x)))
		}
		w.WriteShort(int16(len(x)))
		for _, el := range x {
			if err := w.WriteValue(el); err != nil {
				return err
			}
		}
	default:
		return w.fail(fmt.Errorf("%w: %T", ErrBadValueType, v))
	}

	return w.err
}
