package msg

import (
	"encoding/binary"
	"fmt"

	"github.com/maxmuv/dos/sim/simerr"
)

// DecodeError is the panic value raised by the Must* readers. It carries the
// result code and where in the body the read was attempted.
type DecodeError struct {
	Code   simerr.Code
	Want   Tag
	Offset int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %c at offset %d: %s", e.Want, e.Offset, e.Code)
}

// Unwrap returns the result code.
func (e *DecodeError) Unwrap() error {
	return e.Code
}

// ReadString decodes a text argument at the cursor.
func (m *Message) ReadString() (string, error) {
	s, next, err := decodeString(m.Body, m.cursor)
	if err != nil {
		return "", err
	}

	m.cursor = next

	return s, nil
}

// decodeString reads the text argument starting at offset at of body and
// returns the offset that follows it.
func decodeString(body []byte, at int) (string, int, error) {
	if at >= len(body) {
		return "", at, simerr.ReadAttemptOutOfBounds
	}

	if Tag(body[at]) != TagString {
		return "", at, simerr.NotExpectedType
	}

	start := at + 1
	end := start
	for end < len(body) && body[end] != 0 {
		end++
	}

	return string(body[start:end]), min(end+1, len(body)), nil
}

// ReadInt decodes a 32-bit integer argument at the cursor. The tag and all
// four payload bytes must lie inside the body, that is cursor+4 < len(body).
func (m *Message) ReadInt() (int32, error) {
	if err := m.check(TagInt, intSize); err != nil {
		return 0, err
	}

	v := binary.LittleEndian.Uint32(m.Body[m.cursor+1:])
	m.cursor += 1 + intSize

	return int32(v), nil
}

// ReadInt64 decodes a 64-bit integer argument at the cursor. It requires
// cursor+8 < len(body).
func (m *Message) ReadInt64() (int64, error) {
	if err := m.check(TagInt64, int64Size); err != nil {
		return 0, err
	}

	v := binary.LittleEndian.Uint64(m.Body[m.cursor+1:])
	m.cursor += 1 + int64Size

	return int64(v), nil
}

func (m *Message) check(want Tag, size int) error {
	if m.cursor < len(m.Body) && Tag(m.Body[m.cursor]) != want {
		return simerr.NotExpectedType
	}

	if !(m.cursor+size < len(m.Body)) {
		return simerr.ReadAttemptOutOfBounds
	}

	return nil
}

// PeekString decodes the text argument at the cursor without consuming it.
func (m *Message) PeekString() (string, error) {
	saved := m.cursor
	s, err := m.ReadString()
	m.cursor = saved

	return s, err
}

// MustString is ReadString that panics with a *DecodeError on failure.
func (m *Message) MustString() string {
	offset := m.cursor

	s, err := m.ReadString()
	if err != nil {
		panic(&DecodeError{Code: simerr.CodeOf(err), Want: TagString, Offset: offset})
	}

	return s
}

// MustInt is ReadInt that panics with a *DecodeError on failure.
func (m *Message) MustInt() int32 {
	offset := m.cursor

	v, err := m.ReadInt()
	if err != nil {
		panic(&DecodeError{Code: simerr.CodeOf(err), Want: TagInt, Offset: offset})
	}

	return v
}

// MustInt64 is ReadInt64 that panics with a *DecodeError on failure.
func (m *Message) MustInt64() int64 {
	offset := m.cursor

	v, err := m.ReadInt64()
	if err != nil {
		panic(&DecodeError{Code: simerr.CodeOf(err), Want: TagInt64, Offset: offset})
	}

	return v
}
