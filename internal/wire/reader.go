package wire

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Reader decodes the field sequences produced by Writer. Every read returns
// an explicit error; a frame ending mid-field yields ErrTruncated.
type Reader struct {
	buf []byte
	off int
}

// NewReader returns a Reader over a frame.
func NewReader(frame []byte) *Reader {
	return &Reader{buf: frame}
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.off
}

func (r *Reader) take(n int) ([]byte, error) {
	if r.Remaining() < n {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrTruncated, n, r.Remaining())
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

// ReadByte consumes a single byte.
func (r *Reader) ReadByte() (byte, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadBool consumes a one-byte boolean. Any non-zero byte is true.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadByte()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

// ReadShort consumes a 16-bit signed integer.
func (r *Reader) ReadShort() (int16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return int16(binary.BigEndian.Uint16(b)), nil
}

// ReadInt consumes a 32-bit signed integer.
func (r *Reader) ReadInt() (int32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b)), nil
}

// ReadDouble consumes a 64-bit IEEE 754 float.
func (r *Reader) ReadDouble() (float64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
}

// ReadString consumes a length-prefixed UTF-8 string.
func (r *Reader) ReadString() (string, error) {
	b, err := r.take(2)
	if err != nil {
		return "", err
	}
	data, err := r.take(int(binary.BigEndian.Uint16(b)))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ReadBlob consumes a length-prefixed opaque blob. The returned slice is a
// copy and safe to retain.
func (r *Reader) ReadBlob() ([]byte, error) {
	b, err := r.take(4)
	if err != nil {
		return nil, err
	}
	n := int(int32(binary.BigEndian.Uint32(b)))
	if n < 0 {
		return nil, fmt.Errorf("%w: negative blob length %d", ErrTruncated, n)
	}
	data, err := r.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, data)
	return out, nil
}

// ReadValue consumes one tagged value written by Writer.WriteValue.
func (r *Reader) ReadValue() (Value, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return nil, err
	}

	switch VarType(tag) {
	case TypeNull:
		return Null{}, nil
	case TypeBool:
		b, err := r.ReadBool()
		return Bool(b), err
	case TypeInt:
		n, err := r.ReadInt()
		return Int(n), err
	case TypeDouble:
		d, err := r.ReadDouble()
		return Double(d), err
	case TypeString:
		s, err := r.ReadString()
		return String(s), err
	case TypeObject:
		b, err := r.ReadBlob()
		return Object(b), err
	case TypeArray:
		n, err := r.ReadShort()
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, fmt.Errorf("%w: negative array length %d", ErrTruncated, n)
		}
		arr := make(Array, 0, n)
		for i := 0; i < int(n); i++ {
			el, err := r.ReadValue()
			if err != nil {
				return nil, fmt.Errorf("array element %d: %w", i, err)
			}
			arr = append(arr, el)
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("%w: 0x%02x", ErrBadTypeTag, tag)
	}
}
