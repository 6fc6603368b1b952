// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syncipc

// Kind tells the receiving side how to route a message.
type Kind uint8

const (
	// KindAsync is fire-and-forget traffic, delivered by the owning
	// thread's message loop.
	KindAsync Kind = iota
	// KindCall expects exactly one KindReply carrying the same ID.
	KindCall
	// KindReply answers the KindCall with the same ID.
	KindReply
	// KindReplyError answers the KindCall with the same ID when its
	// handler failed. Payload carries the handler's error text.
	KindReplyError
)

func (k Kind) String() string {
	switch k {
	case KindAsync:
		return "async"
	case KindCall:
		return "call"
	case KindReply:
		return "reply"
	case KindReplyError:
		return "reply-error"
	}
	return "unknown"
}

// Message is the unit moved by a Transport.
// ID is unique per channel direction; a reply reuses the ID of its call.
// Type is an application routing tag and is never inspected by the core.
type Message struct {
	ID      uint32 `msgpack:"i"`
	Kind    Kind   `msgpack:"k"`
	Type    uint32 `msgpack:"t"`
	Payload []byte `msgpack:"p"`
}

// Deserializer consumes a reply payload and writes typed output values.
// Apply is invoked exactly once for a reply that completes a call, on the
// I/O goroutine of the channel, and never for a call that timed out or was
// cancelled. It must not call back into the channel.
// A payload of the wrong shape is reported with an error wrapping
// ErrShapeMismatch.
type Deserializer interface {
	Apply(payload []byte) error
}

// DeserializerFunc adapts an ordinary function to Deserializer.
type DeserializerFunc func(payload []byte) error

// Apply calls f(payload).
func (f DeserializerFunc) Apply(payload []byte) error {
	return f(payload)
}

// discardReply accepts any reply payload.
var discardReply Deserializer = DeserializerFunc(func([]byte) error { return nil })
