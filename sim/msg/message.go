package msg

import (
	"github.com/maxmuv/dos/sim/id"
	"github.com/maxmuv/dos/sim/timing"
)

// Broadcast is the address that stands for "all registered nodes" as a
// destination and for "the system" as a source.
const Broadcast = -1

// SystemPrefix marks system messages, such as the periodic time broadcast,
// that every handler may claim.
const SystemPrefix = "*"

// TimeText is the text of the messages sent by the network timers.
const TimeText = SystemPrefix + "TIME"

// A Message is a piece of information that is transferred between processes.
// The network layer fills in the addressing and timing fields when it
// delivers a copy of the message.
type Message struct {
	ID           string
	From, To     int
	SendTime     timing.VTimeInTick
	DeliveryTime timing.VTimeInTick
	Body         []byte

	cursor int
}

// New creates a message from the given arguments, addressed from and to
// Broadcast.
func New(args ...Arg) *Message {
	return MsgBuilder{}.
		WithSrc(Broadcast).
		WithDst(Broadcast).
		WithArgs(args...).
		Build()
}

// Append adds one more argument at the end of the body.
func (m *Message) Append(a Arg) {
	m.Body = append(m.Body, a...)
}

// Clone returns a copy of the message with a new ID and a rewound cursor.
// The body is copied so the two messages do not share memory.
func (m *Message) Clone() *Message {
	c := *m
	c.ID = id.Generate()
	c.Body = append([]byte(nil), m.Body...)
	c.cursor = 0

	return &c
}

// Rewind moves the read cursor back to the first argument.
func (m *Message) Rewind() {
	m.cursor = 0
}

// Cursor returns the offset of the next byte to decode.
func (m *Message) Cursor() int {
	return m.cursor
}

// Remaining returns the number of bytes not yet decoded.
func (m *Message) Remaining() int {
	if m.cursor >= len(m.Body) {
		return 0
	}

	return len(m.Body) - m.cursor
}

// Text returns the leading text argument, or an empty string if the message
// does not start with one. It only reads the body, so it can be called
// while the owner of the message is decoding it.
func (m *Message) Text() string {
	s, _, err := decodeString(m.Body, 0)
	if err != nil {
		return ""
	}

	return s
}

// MsgBuilder can build messages.
type MsgBuilder struct {
	src, dst int
	args     []Arg
}

// WithSrc sets the source node of the message.
func (b MsgBuilder) WithSrc(src int) MsgBuilder {
	b.src = src
	return b
}

// WithDst sets the destination node of the message.
func (b MsgBuilder) WithDst(dst int) MsgBuilder {
	b.dst = dst
	return b
}

// WithArgs appends arguments to the message body, in order.
func (b MsgBuilder) WithArgs(args ...Arg) MsgBuilder {
	b.args = append(append([]Arg(nil), b.args...), args...)
	return b
}

// Build creates a new message.
func (b MsgBuilder) Build() *Message {
	size := 0
	for _, a := range b.args {
		size += len(a)
	}

	m := &Message{
		ID:   id.Generate(),
		From: b.src,
		To:   b.dst,
		Body: make([]byte, 0, size),
	}

	for _, a := range b.args {
		m.Append(a)
	}

	return m
}
