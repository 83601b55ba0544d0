// Package simerr defines the result codes returned by the network, queue and
// registration operations of the simulator.
package simerr

import (
	"errors"
	"fmt"
)

// Code is a result code. Every Code except OK is an error.
type Code int

// The result codes. The numeric values are stable.
const (
	OK Code = iota
	NotExpectedType
	ReadAttemptOutOfBounds
	ObjectIsNull
	ResourceNotFound
	ResourceInUse
	PrematureEndOfStream
	SizeTooBig
	YetNotImplemented
	DuplicateItems
	ItemNotFound
	QueueIsEmpty
	SocketError
	ConnectionFailed
	ConnectionInUse
	TimeOut
)

var codeNames = [...]string{
	OK:                     "ok",
	NotExpectedType:        "not expected type",
	ReadAttemptOutOfBounds: "read attempt out of bounds",
	ObjectIsNull:           "object is null",
	ResourceNotFound:       "resource not found",
	ResourceInUse:          "resource in use",
	PrematureEndOfStream:   "premature end of stream",
	SizeTooBig:             "size too big",
	YetNotImplemented:      "not implemented",
	DuplicateItems:         "duplicate items",
	ItemNotFound:           "item not found",
	QueueIsEmpty:           "queue is empty",
	SocketError:            "socket error",
	ConnectionFailed:       "connection failed",
	ConnectionInUse:        "connection in use",
	TimeOut:                "timeout",
}

// String returns the human readable name of the code.
func (c Code) String() string {
	if c < 0 || int(c) >= len(codeNames) {
		return fmt.Sprintf("code(%d)", int(c))
	}

	return codeNames[c]
}

// Error implements the error interface.
func (c Code) Error() string {
	return c.String()
}

// CodeOf extracts the result code carried by err. A nil error is OK. Errors
// that do not wrap a Code map to YetNotImplemented.
func CodeOf(err error) Code {
	if err == nil {
		return OK
	}

	var c Code
	if errors.As(err, &c) {
		return c
	}

	return YetNotImplemented
}
