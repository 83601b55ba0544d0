// Package msg implements the messages exchanged between simulated processes
// and the binary encoding of their arguments.
//
// A message body is a plain concatenation of encoded arguments. Each argument
// starts with a one byte tag followed by a tag specific payload:
//
//	'A' int32, 4 bytes, little endian
//	'B' int64, 8 bytes, least significant byte first
//	'C' text, raw bytes followed by a single zero byte
//	'D' vector of int, reserved
//	'E' end of stream, reserved
//
// There are no length prefixes, so a body can only be decoded front to back.
package msg

import (
	"encoding/binary"

	"github.com/maxmuv/dos/sim/simerr"
)

// Tag identifies the type of an encoded argument.
type Tag byte

// The argument tags. TagVectorInt and TagEOF are reserved for protocol
// extension and never produced by this package.
const (
	TagInt Tag = 'A' + iota
	TagInt64
	TagString
	TagVectorInt
	TagEOF
)

const (
	intSize   = 4
	int64Size = 8
)

// Arg is one encoded argument: a tag byte and its payload.
type Arg []byte

// Tag returns the tag of the argument.
func (a Arg) Tag() Tag {
	if len(a) == 0 {
		return 0
	}

	return Tag(a[0])
}

// Int encodes a 32-bit integer.
func Int(v int32) Arg {
	a := make(Arg, 1+intSize)
	a[0] = byte(TagInt)
	binary.LittleEndian.PutUint32(a[1:], uint32(v))

	return a
}

// Int64 encodes a 64-bit integer.
func Int64(v int64) Arg {
	a := make(Arg, 1+int64Size)
	a[0] = byte(TagInt64)
	binary.LittleEndian.PutUint64(a[1:], uint64(v))

	return a
}

// String encodes a text value. Text containing a zero byte is truncated at
// that byte when decoded.
func String(s string) Arg {
	a := make(Arg, 0, len(s)+2)
	a = append(a, byte(TagString))
	a = append(a, s...)
	a = append(a, 0)

	return a
}

// Encode encodes an int, int32, int64 or string. Plain ints are encoded as
// 32-bit integers. Any other type yields simerr.NotExpectedType.
func Encode(v any) (Arg, error) {
	switch v := v.(type) {
	case int:
		return Int(int32(v)), nil
	case int32:
		return Int(v), nil
	case int64:
		return Int64(v), nil
	case string:
		return String(v), nil
	default:
		return nil, simerr.NotExpectedType
	}
}
