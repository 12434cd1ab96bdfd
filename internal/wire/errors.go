package wire

import "errors"

var (
	// ErrBadValueType reports a runtime value whose kind matches none of the
	// wire tags during inference.
	ErrBadValueType = errors.New("value type not representable on the wire")

	// ErrBadTypeTag reports an unrecognized type tag byte during decode.
	ErrBadTypeTag = errors.New("unrecognized wire type tag")

	// ErrTruncated reports a frame that ended before a field was complete.
	ErrTruncated = errors.New("truncated wire data")

	// ErrStringTooLong reports a string longer than the 16-bit length prefix
	// can carry.
	ErrStringTooLong = errors.New("string exceeds wire length limit")

	// ErrTooManyElements reports a collection larger than the 16-bit count
	// prefix can carry.
	ErrTooManyElements = errors.New("element count exceeds wire limit")
)
